package cli

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/wallet"
	"github.com/icon-project/govote/module"
)

const DefaultKeyStorePass = "govote"

// passwordSource is the password of a keystore given by one of the flags.
// Precedence is interactive, then secret file, then plain password.
type passwordSource struct {
	interactive bool
	secret      string
	password    string
}

func (ps *passwordSource) bind(fs *pflag.FlagSet, passwordUsage string) {
	fs.BoolVarP(&ps.interactive, "interactive", "i", false, "Interactive mode for password input")
	fs.StringVarP(&ps.secret, "secret", "s", "", "KeySecret file path")
	fs.StringVarP(&ps.password, "password", "p", DefaultKeyStorePass, passwordUsage)
}

func promptPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	defer fmt.Println()
	pb, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, errors.Wrap(err, "FailToReadPassword")
	}
	return pb, nil
}

func (ps *passwordSource) get(prompt string) ([]byte, error) {
	switch {
	case ps.interactive:
		return promptPassword(prompt)
	case ps.secret != "":
		pb, err := os.ReadFile(ps.secret)
		if err != nil {
			return nil, errors.Wrapf(err, "FailToReadSecret(file=%s)", ps.secret)
		}
		return pb, nil
	default:
		return []byte(ps.password), nil
	}
}

func (ps *passwordSource) open(file, prompt string) (module.Wallet, error) {
	kb, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "FailToReadKeyStore(file=%s)", file)
	}
	pb, err := ps.get(prompt)
	if err != nil {
		return nil, err
	}
	return wallet.NewFromKeyStore(kb, pb)
}

func saveKeyStore(cmd *cobra.Command, w module.Wallet, pb []byte, out string) error {
	ks, err := wallet.KeyStoreFromWallet(w, pb)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, ks, 0600); err != nil {
		return errors.Wrapf(err, "FailToWriteKeyStore(file=%s)", out)
	}
	cmd.Printf("%s ==> %s\n", w.Address(), out)
	return nil
}

func NewKeystoreCmd(c string) *cobra.Command {
	cmd := &cobra.Command{Use: c, Short: "Keystore manipulation"}
	cmd.AddCommand(
		newKeystoreGenCmd("gen"),
		newKeystoreVerifyCmd("verify"),
		newKeystorePubKeyCmd("pubkey"),
		newKeystoreAddrCmd("addr"),
		newKeystoreEncryptCmd("encrypt"),
	)
	return cmd
}

func newKeystoreGenCmd(c string) *cobra.Command {
	var ps passwordSource
	cmd := &cobra.Command{Use: c, Short: "Generate keystore", Args: cobra.NoArgs}
	out := cmd.Flags().StringP("out", "o", "keystore.json", "Output file path")
	ps.bind(cmd.Flags(), "Password for the keystore")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		pb, err := ps.get("Password: ")
		if err != nil {
			return err
		}
		return saveKeyStore(cmd, wallet.New(), pb, *out)
	}
	return cmd
}

func newKeystoreVerifyCmd(c string) *cobra.Command {
	var ps passwordSource
	cmd := &cobra.Command{
		Use:   c + " KEYSTORE...",
		Short: "Verify keystore with the password",
		Args:  ArgsWithDefaultErrorFunc(cobra.MinimumNArgs(1)),
	}
	ps.bind(cmd.Flags(), "Password for the keystore")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		for _, file := range args {
			if w, err := ps.open(file, "Password: "); err != nil {
				cmd.Printf("FAIL %s err=%v\n", file, err)
			} else {
				cmd.Printf("SUCCESS %s %s\n", file, w.Address())
			}
		}
		return nil
	}
	return cmd
}

func newKeystoreEncryptCmd(c string) *cobra.Command {
	var ps passwordSource
	cmd := &cobra.Command{Use: c, Short: "Re-encrypt keystore", Args: cobra.NoArgs}
	flags := cmd.Flags()
	ksFile := flags.StringP("keystore", "k", "keystore.json", "Keystore file path")
	out := flags.StringP("out", "o", "keystore_new.json", "Output file path")
	newPass := flags.StringP("newpassword", "n", DefaultKeyStorePass, "Password for the new keystore")
	ps.bind(flags, "Password for the old keystore")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		w, err := ps.open(*ksFile, "Old Password: ")
		if err != nil {
			return err
		}
		npb := []byte(*newPass)
		if ps.interactive {
			if npb, err = promptPassword("New Password: "); err != nil {
				return err
			}
		}
		return saveKeyStore(cmd, w, npb, *out)
	}
	return cmd
}

func newKeystorePubKeyCmd(c string) *cobra.Command {
	var ps passwordSource
	cmd := &cobra.Command{Use: c, Short: "Print public key of keystore", Args: cobra.NoArgs}
	ksFile := cmd.Flags().StringP("keystore", "k", "keystore.json", "Keystore file path")
	ps.bind(cmd.Flags(), "Password for the keystore")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		w, err := ps.open(*ksFile, "Password: ")
		if err != nil {
			return err
		}
		cmd.Println("0x" + hex.EncodeToString(w.PublicKey()))
		return nil
	}
	return cmd
}

func newKeystoreAddrCmd(c string) *cobra.Command {
	return &cobra.Command{
		Use:   c + " KEYSTORE...",
		Short: "Print address of keystore",
		Args:  ArgsWithDefaultErrorFunc(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, file := range args {
				kb, err := os.ReadFile(file)
				if err != nil {
					return errors.Wrapf(err, "FailToReadKeyStore(file=%s)", file)
				}
				addr, err := wallet.ReadAddressFromKeyStore(kb)
				if err != nil {
					return err
				}
				cmd.Printf("%s %s\n", addr, file)
			}
			return nil
		},
	}
}

// AddKeyStoreFlags adds flags selecting the keystore signing votes.
func AddKeyStoreFlags(c *cobra.Command) {
	flags := c.PersistentFlags()
	flags.StringP("key_store", "k", "", "KeyStore file for wallet")
	flags.String("key_secret", "", "Secret(password) file for KeyStore")
	flags.String("key_password", "", "Password for the KeyStore file")
	_ = MarkAnnotationCustom(flags, "key_store")
}

// WalletFromViper loads the wallet of the keystore given by key_store.
// The secret file takes precedence over the password.
func WalletFromViper(vc *viper.Viper) (module.Wallet, error) {
	ps := passwordSource{
		secret:   vc.GetString("key_secret"),
		password: vc.GetString("key_password"),
	}
	if ps.password == "" {
		ps.password = DefaultKeyStorePass
	}
	return ps.open(vc.GetString("key_store"), "")
}
