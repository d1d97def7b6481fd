package cli

import (
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/icon-project/govote/node"
	"github.com/icon-project/govote/service/proposal"
	"github.com/icon-project/govote/service/signer"
)

const (
	TableCellDisplayNil = "-"
	DefaultMaxColWidth  = 60
)

func AdminPersistentPreRunE(vc *viper.Viper, adminClient *node.AdminClient) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		nodeSock := vc.GetString("node_sock")
		if nodeSock == "" {
			cfg := &ServerConfig{}
			cfg.FilePath = vc.GetString("config")
			if err := MergeWithViper(vc, cfg); err != nil {
				return err
			}
			cfg.FillEmpty()
			nodeSock = cfg.ResolveAbsolute(cfg.AdminSocket)
			vc.Set("node_sock", nodeSock)
		}
		if err := ValidateFlagsWithViper(vc, cmd.Flags()); err != nil {
			return err
		}
		*adminClient = *node.NewAdminClient(nodeSock)
		return nil
	}
}

func AddAdminRequiredFlags(c *cobra.Command) {
	pFlags := c.PersistentFlags()
	pFlags.String("base_dir", "",
		"Data directory(default:[configuration file path]/.govote)")
	pFlags.StringP("node_sock", "s", "",
		"Admin socket path(default:[base_dir]/cli.sock)")
	pFlags.StringP("config", "c", "", "Parsing configuration file")
}

func SignersToTable(l []*signer.Signer, maxColWidth uint) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.AddRow("Address", "Valid", "Nonce")
	for _, s := range l {
		table.AddRow(s.Address.String(), s.Valid, formatUint64(s.Nonce))
	}
	return table
}

func ProposalsToTable(l []*proposal.Info, maxColWidth uint) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.AddRow("ID", "Title", "Closed", "Options")
	for _, p := range l {
		title := p.Title
		if title == "" {
			title = TableCellDisplayNil
		}
		opts := make([]string, len(p.Options))
		for i, o := range p.Options {
			tally := TableCellDisplayNil
			if i < len(p.Tally) {
				tally = formatUint64(p.Tally[i])
			}
			opts[i] = fmt.Sprintf("%d:%s(%s)", i, o, tally)
		}
		table.AddRow(formatUint64(p.ID), title, p.Closed, strings.Join(opts, " "))
	}
	return table
}

func printTable(cmd *cobra.Command, table *uitable.Table) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), table)
	return err
}

func NewSystemCmd(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	var adminClient node.AdminClient
	rootCmd, vc := NewCommand(parentCmd, parentVc, "system", "System information")
	rootCmd.PersistentPreRunE = AdminPersistentPreRunE(vc, &adminClient)
	AddAdminRequiredFlags(rootCmd)
	BindPFlags(vc, rootCmd.PersistentFlags())
	rootCmd.Args = cobra.NoArgs
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		v := &node.SystemView{}
		if _, err := adminClient.Get(node.UrlSystem, v); err != nil {
			return err
		}
		return JsonPrettyPrintln(cmd.OutOrStdout(), v)
	}
	return rootCmd, vc
}

func NewSignerCmd(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	var adminClient node.AdminClient
	rootCmd, vc := NewCommand(parentCmd, parentVc, "signer", "Manage signers")
	rootCmd.PersistentPreRunE = AdminPersistentPreRunE(vc, &adminClient)
	AddAdminRequiredFlags(rootCmd)
	BindPFlags(vc, rootCmd.PersistentFlags())

	signerUrl := func(addr string) (string, error) {
		if _, err := parseAddress(addr); err != nil {
			return "", err
		}
		return node.UrlAdmin + node.UrlSigners + "/" + addr, nil
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List signers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := make([]*signer.Signer, 0)
			if _, err := adminClient.Get(node.UrlAdmin+node.UrlSigners, &l); err != nil {
				return err
			}
			if j, _ := cmd.Flags().GetBool("json"); j {
				return JsonPrettyPrintln(cmd.OutOrStdout(), l)
			}
			return printTable(cmd, SignersToTable(l, DefaultMaxColWidth))
		},
	}
	listCmd.Flags().Bool("json", false, "Print as JSON")

	rootCmd.AddCommand(
		listCmd,
		&cobra.Command{
			Use:   "add ADDRESS",
			Short: "Authorize the address as a signer",
			Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				reqUrl, err := signerUrl(args[0])
				if err != nil {
					return err
				}
				s := &signer.Signer{}
				if _, err = adminClient.Post(reqUrl, s); err != nil {
					return err
				}
				return JsonPrettyPrintln(cmd.OutOrStdout(), s)
			},
		},
		&cobra.Command{
			Use:   "remove ADDRESS",
			Short: "Deactivate the signer",
			Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				reqUrl, err := signerUrl(args[0])
				if err != nil {
					return err
				}
				s := &signer.Signer{}
				if _, err = adminClient.Delete(reqUrl, s); err != nil {
					return err
				}
				return JsonPrettyPrintln(cmd.OutOrStdout(), s)
			},
		},
	)
	return rootCmd, vc
}

func NewProposalCmd(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	var adminClient node.AdminClient
	rootCmd, vc := NewCommand(parentCmd, parentVc, "proposal", "Manage proposals")
	rootCmd.PersistentPreRunE = AdminPersistentPreRunE(vc, &adminClient)
	AddAdminRequiredFlags(rootCmd)
	BindPFlags(vc, rootCmd.PersistentFlags())

	proposalUrl := func(id string) (string, error) {
		v, err := parseUint64("id", id)
		if err != nil {
			return "", err
		}
		return node.UrlAdmin + node.UrlProposals + "/" + formatUint64(v), nil
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := make([]*proposal.Info, 0)
			if _, err := adminClient.Get(node.UrlAdmin+node.UrlProposals, &l); err != nil {
				return err
			}
			if j, _ := cmd.Flags().GetBool("json"); j {
				return JsonPrettyPrintln(cmd.OutOrStdout(), l)
			}
			return printTable(cmd, ProposalsToTable(l, DefaultMaxColWidth))
		},
	}
	listCmd.Flags().Bool("json", false, "Print as JSON")

	createCmd := &cobra.Command{
		Use:   "create TITLE [OPTION...]",
		Short: "Create a proposal",
		Long:  "Create a proposal. Default options of the server are used if no option is given",
		Args:  ArgsWithDefaultErrorFunc(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			param := &node.CreateProposalParam{
				Title:   args[0],
				Options: args[1:],
			}
			info := &proposal.Info{}
			if _, err := adminClient.PostWithJson(node.UrlAdmin+node.UrlProposals, param, info); err != nil {
				return err
			}
			return JsonPrettyPrintln(cmd.OutOrStdout(), info)
		},
	}

	closeCmd := &cobra.Command{
		Use:   "close ID",
		Short: "Close the proposal",
		Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqUrl, err := proposalUrl(args[0])
			if err != nil {
				return err
			}
			info := &proposal.Info{}
			if _, err = adminClient.Post(reqUrl+"/close", info); err != nil {
				return err
			}
			return JsonPrettyPrintln(cmd.OutOrStdout(), info)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Get the proposal",
		Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqUrl, err := proposalUrl(args[0])
			if err != nil {
				return err
			}
			info := &proposal.Info{}
			if _, err = adminClient.Get(reqUrl, info); err != nil {
				return err
			}
			return JsonPrettyPrintln(cmd.OutOrStdout(), info)
		},
	}
	rootCmd.AddCommand(listCmd, createCmd, closeCmd, getCmd)
	return rootCmd, vc
}
