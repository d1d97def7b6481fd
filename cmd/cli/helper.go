package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/icon-project/govote/common/errors"
)

// FlagAnnotationCustom marks a flag which must be given either on the
// command line or through viper (config file or environment).
const FlagAnnotationCustom = "custom"

const (
	vcKeyEnvPrefix = "env_prefix"
	vcKeyPFlags    = "pflags"
)

// NewCommand creates a sub command of parentCmd and its viper. The viper
// inherits the environment prefix and persistent flags of the parent.
func NewCommand(parentCmd *cobra.Command, parentVc *viper.Viper, use, short string) (*cobra.Command, *viper.Viper) {
	c := &cobra.Command{Use: use, Short: short}
	c.SetFlagErrorFunc(DefaultFlagErrorFunc)
	if parentCmd != nil {
		parentCmd.AddCommand(c)
	}

	envPrefix := strings.ReplaceAll(c.CommandPath(), " ", "_")
	var inherited *pflag.FlagSet
	if parentVc != nil {
		if p, ok := parentVc.Get(vcKeyEnvPrefix).(string); ok {
			envPrefix = p
		}
		inherited, _ = parentVc.Get(vcKeyPFlags).(*pflag.FlagSet)
	}
	vc := NewViper(envPrefix)
	if inherited != nil {
		_ = BindPFlags(vc, inherited)
	}
	return c, vc
}

func NewViper(envPrefix string) *viper.Viper {
	vc := viper.New()
	vc.SetEnvPrefix(envPrefix)
	vc.AutomaticEnv()
	vc.Set(vcKeyEnvPrefix, envPrefix)
	return vc
}

// BindPFlags binds the flags to the viper and remembers them, so commands
// created with the viper as a parent get the same bindings.
func BindPFlags(vc *viper.Viper, fs *pflag.FlagSet) error {
	bound, ok := vc.Get(vcKeyPFlags).(*pflag.FlagSet)
	if !ok {
		bound = pflag.NewFlagSet(vcKeyPFlags, pflag.ContinueOnError)
		vc.Set(vcKeyPFlags, bound)
	}
	bound.AddFlagSet(fs)
	return vc.BindPFlags(fs)
}

func MarkAnnotationCustom(fs *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		if err := fs.SetAnnotation(name, cobra.BashCompCustom, []string{FlagAnnotationCustom}); err != nil {
			return err
		}
	}
	return nil
}

func hasAnnotation(f *pflag.Flag, key, value string) bool {
	v, ok := f.Annotations[key]
	return ok && len(v) > 0 && v[0] == value
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func missingFlagsError(names []string) error {
	if len(names) == 0 {
		return nil
	}
	return errors.Errorf(`required flag(s) "%s" not set`, strings.Join(names, `", "`))
}

// ValidateFlags fails if a required flag or one of flagNames isn't given
// on the command line.
func ValidateFlags(fs *pflag.FlagSet, flagNames ...string) error {
	var missing []string
	fs.VisitAll(func(f *pflag.Flag) {
		required := hasAnnotation(f, cobra.BashCompOneRequiredFlag, "true") || contains(flagNames, f.Name)
		if required && !f.Changed {
			missing = append(missing, f.Name)
		}
	})
	return missingFlagsError(missing)
}

// ValidateFlagsWithViper is ValidateFlags for custom flags. A flag given
// through viper with other than the default value is regarded as set.
func ValidateFlagsWithViper(vc *viper.Viper, fs *pflag.FlagSet, flagNames ...string) error {
	var missing []string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		if !hasAnnotation(f, cobra.BashCompCustom, FlagAnnotationCustom) && !contains(flagNames, f.Name) {
			return
		}
		if vc.GetString(f.Name) == f.DefValue {
			missing = append(missing, f.Name)
		}
	})
	return missingFlagsError(missing)
}

// ViperDecodeOptJson makes viper decode with json tags. A json.RawMessage
// field takes either an inline object or the path of a JSON file.
func ViperDecodeOptJson(c *mapstructure.DecoderConfig) {
	c.TagName = "json"
	rawMessage := reflect.TypeOf(json.RawMessage{})
	c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		func(from reflect.Type, to reflect.Type, input interface{}) (interface{}, error) {
			if to != rawMessage {
				return input, nil
			}
			switch {
			case from.Kind() == reflect.Map && from.Key().Kind() == reflect.String:
				return json.Marshal(input)
			case from.Kind() == reflect.String && input != "":
				return os.ReadFile(input.(string))
			}
			return input, nil
		},
		c.DecodeHook)
}

func ArgsWithErrorFunc(arg cobra.PositionalArgs,
	errFunc func(cmd *cobra.Command, err error) error) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := arg(cmd, args); err != nil {
			return errFunc(cmd, err)
		}
		return nil
	}
}

func ArgsWithDefaultErrorFunc(arg cobra.PositionalArgs) cobra.PositionalArgs {
	return ArgsWithErrorFunc(arg, DefaultArgErrorFunc)
}

func DefaultArgErrorFunc(cmd *cobra.Command, err error) error {
	cmd.Println("Usage: " + cmd.UseLine())
	return err
}

func DefaultFlagErrorFunc(cmd *cobra.Command, err error) error {
	var names []string
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Shorthand != "" {
			names = append(names, fmt.Sprintf("--%s or -%s", f.Name, f.Shorthand))
		} else {
			names = append(names, "--"+f.Name)
		}
	})
	cmd.Println("Available Flags: " + strings.Join(names, ", "))
	return err
}

func marshalPretty(v interface{}) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "FailToMarshal(type=%T)", v)
	}
	return b, nil
}

func JsonPrettyPrintln(w io.Writer, v interface{}) error {
	b, err := marshalPretty(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// JsonPrettySaveFile writes v as indented JSON, creating the directory of
// the file if it doesn't exist.
func JsonPrettySaveFile(filename string, perm os.FileMode, v interface{}) error {
	b, err := marshalPretty(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return errors.Wrapf(err, "FailToCreateDirectory(file=%s)", filename)
	}
	if err := os.WriteFile(filename, b, perm); err != nil {
		return errors.Wrapf(err, "FailToSave(file=%s)", filename)
	}
	return nil
}
