package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/icon-project/govote/client"
	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/module"
	"github.com/icon-project/govote/server"
)

func RpcPersistentPreRunE(vc *viper.Viper, rpcClient *client.ClientV1) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := ValidateFlagsWithViper(vc, cmd.Flags()); err != nil {
			return err
		}
		*rpcClient = *client.NewClientV1(vc.GetString("uri"))
		return nil
	}
}

func AddRpcRequiredFlags(c *cobra.Command) {
	pFlags := c.PersistentFlags()
	pFlags.String("uri", "http://127.0.0.1:9080/api/v1", "URI of JSON-RPC API")
	MarkAnnotationCustom(pFlags, "uri")
}

func parseUint64(name, s string) (uint64, error) {
	v, err := common.ParseUint(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%s", name, s)
	}
	return v, nil
}

func parseAddress(s string) (common.Address, error) {
	addr, err := common.NewAddressFromString(s)
	if err != nil {
		return addr, fmt.Errorf("invalid address=%s", s)
	}
	return addr, nil
}

func NewRpcCmd(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	var rpcClient client.ClientV1
	rootCmd, vc := NewCommand(parentCmd, parentVc, "rpc", "JSON-RPC API")
	rootCmd.PersistentPreRunE = RpcPersistentPreRunE(vc, &rpcClient)
	AddRpcRequiredFlags(rootCmd)
	BindPFlags(vc, rootCmd.PersistentFlags())

	NewMonitorCmd(rootCmd, vc, &rpcClient)

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "nonce ADDRESS",
			Short: "Get the next nonce of the signer",
			Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				addr, err := parseAddress(args[0])
				if err != nil {
					return err
				}
				nonce, err := rpcClient.GetNonce(addr)
				if err != nil {
					return err
				}
				fmt.Println(nonce)
				return nil
			},
		},
		&cobra.Command{
			Use:   "valid ADDRESS",
			Short: "Check whether the address is a valid signer",
			Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				addr, err := parseAddress(args[0])
				if err != nil {
					return err
				}
				valid, err := rpcClient.IsValidSigner(addr)
				if err != nil {
					return err
				}
				fmt.Println(valid)
				return nil
			},
		},
		&cobra.Command{
			Use:   "signer ADDRESS",
			Short: "Get the signer",
			Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				addr, err := parseAddress(args[0])
				if err != nil {
					return err
				}
				s, err := rpcClient.GetSigner(addr)
				if err != nil {
					return err
				}
				return JsonPrettyPrintln(os.Stdout, s)
			},
		},
		&cobra.Command{
			Use:   "proposal ID",
			Short: "Get the proposal",
			Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseUint64("id", args[0])
				if err != nil {
					return err
				}
				p, err := rpcClient.GetProposal(id)
				if err != nil {
					return err
				}
				return JsonPrettyPrintln(os.Stdout, p)
			},
		},
		&cobra.Command{
			Use:   "resolve ID",
			Short: "Check whether the proposal is registered",
			Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseUint64("id", args[0])
				if err != nil {
					return err
				}
				ok, err := rpcClient.ResolveProposal(id)
				if err != nil {
					return err
				}
				fmt.Println(ok)
				return nil
			},
		},
	)
	return rootCmd, vc
}

func NewMonitorCmd(parentCmd *cobra.Command, parentVc *viper.Viper, rpcClient *client.ClientV1) *cobra.Command {
	monitorCmd := &cobra.Command{
		Use:   "monitor [TYPE...]",
		Short: "Monitor events",
		Long:  "Print events of the types(signer_added, signer_removed, proposal_registered, vote_forwarded)",
		RunE: func(cmd *cobra.Command, args []string) error {
			param := &server.EventRequest{}
			for _, arg := range args {
				param.Types = append(param.Types, module.EventType(arg))
			}
			fs := cmd.Flags()
			if s, _ := fs.GetString("signer"); s != "" {
				addr, err := parseAddress(s)
				if err != nil {
					return err
				}
				param.Signer = &addr
			}
			if s, _ := fs.GetString("proposal"); s != "" {
				id, err := parseUint64("proposal", s)
				if err != nil {
					return err
				}
				v := common.NewHexUint64(id)
				param.ProposalID = &v
			}

			cancelCh := make(chan bool)
			errCh := make(chan error, 1)
			err := rpcClient.MonitorEvents(param, func(e *module.Event) {
				if err := JsonPrettyPrintln(os.Stdout, e); err != nil {
					select {
					case errCh <- err:
					default:
					}
				}
			}, cancelCh)
			if err != nil {
				return err
			}
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			select {
			case <-sigCh:
				err = nil
			case err = <-errCh:
			}
			close(cancelCh)
			return err
		},
	}
	parentCmd.AddCommand(monitorCmd)
	flags := monitorCmd.Flags()
	flags.String("signer", "", "Address of the signer")
	flags.String("proposal", "", "Id of the proposal")
	return monitorCmd
}

func NewVoteCmd(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	var rpcClient client.ClientV1
	rootCmd, vc := NewCommand(parentCmd, parentVc, "vote", "Sign and submit votes")
	AddKeyStoreFlags(rootCmd)
	BindPFlags(vc, rootCmd.PersistentFlags())

	signCmd := &cobra.Command{
		Use:   "sign PROPOSAL OPTION NONCE",
		Short: "Print parameter of gov_submitVote signed with the keystore",
		Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			vs, err := parseVoteArgs(args)
			if err != nil {
				return err
			}
			w, err := WalletFromViper(vc)
			if err != nil {
				return err
			}
			param, err := client.SignVote(w, vs[0], vs[1], vs[2])
			if err != nil {
				return err
			}
			return JsonPrettyPrintln(os.Stdout, param)
		},
	}

	hashCmd := &cobra.Command{
		Use:   "hash PROPOSAL OPTION NONCE",
		Short: "Print hashes of the vote message",
		Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(3)),
		PersistentPreRunE: RpcPersistentPreRunE(vc, &rpcClient),
		RunE: func(cmd *cobra.Command, args []string) error {
			vs, err := parseVoteArgs(args)
			if err != nil {
				return err
			}
			h, err := rpcClient.GetVoteMessageHash(vs[0], vs[1], vs[2])
			if err != nil {
				return err
			}
			return JsonPrettyPrintln(os.Stdout, h)
		},
	}
	AddRpcRequiredFlags(hashCmd)

	submitCmd := &cobra.Command{
		Use:   "submit PROPOSAL OPTION",
		Short: "Submit vote signed with the keystore",
		Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(2)),
		PersistentPreRunE: RpcPersistentPreRunE(vc, &rpcClient),
		RunE: func(cmd *cobra.Command, args []string) error {
			vs, err := parseVoteArgs(args)
			if err != nil {
				return err
			}
			w, err := WalletFromViper(vc)
			if err != nil {
				return err
			}
			var nonce uint64
			if s, _ := cmd.Flags().GetString("nonce"); s != "" {
				if nonce, err = parseUint64("nonce", s); err != nil {
					return err
				}
			} else if nonce, err = rpcClient.GetNonce(w.Address()); err != nil {
				return err
			}
			param, err := client.SignVote(w, vs[0], vs[1], nonce)
			if err != nil {
				return err
			}
			r, err := rpcClient.SubmitVote(param)
			if err != nil {
				return err
			}
			return JsonPrettyPrintln(os.Stdout, r)
		},
	}
	AddRpcRequiredFlags(submitCmd)
	submitCmd.Flags().String("nonce", "", "Nonce of the vote(default: the next nonce of the signer)")

	for _, c := range []*cobra.Command{hashCmd, submitCmd} {
		BindPFlags(vc, c.PersistentFlags())
	}
	rootCmd.AddCommand(signCmd, hashCmd, submitCmd)
	return rootCmd, vc
}

func parseVoteArgs(args []string) ([]uint64, error) {
	names := []string{"proposal", "option", "nonce"}
	vs := make([]uint64, len(args))
	for i, arg := range args {
		v, err := parseUint64(names[i], arg)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return vs, nil
}

func formatUint64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
