package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewGenerateMarkdownCommand adds "doc [FILE]" which writes the markdown
// reference of every command under the root.
func NewGenerateMarkdownCommand(parentCmd *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "doc [FILE]",
		Short: "Generate markdown for the command line interface",
		Args:  ArgsWithDefaultErrorFunc(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := cmd.Root().Name() + ".md"
			if len(args) > 0 {
				filePath = args[0]
			}
			f, err := os.Create(filePath)
			if err != nil {
				return err
			}
			defer f.Close()
			return GenerateMarkdown(cmd.Root(), f)
		},
	}
	if parentCmd != nil {
		parentCmd.AddCommand(c)
	}
	return c
}

func isDocumented(cmd *cobra.Command) bool {
	return !cmd.Hidden && cmd.Name() != "help"
}

type mdWriter struct {
	w   io.Writer
	err error
}

func (m *mdWriter) line(args ...interface{}) {
	if m.err == nil {
		_, m.err = fmt.Fprintln(m.w, args...)
	}
}

func (m *mdWriter) table(header ...string) {
	m.line("|" + strings.Join(header, " | ") + "|")
	m.line("|" + strings.Repeat("---|", len(header)))
}

func (m *mdWriter) commandRow(cmd *cobra.Command) {
	if !isDocumented(cmd) {
		return
	}
	p := cmd.CommandPath()
	desc := cmd.Short
	if cmd.Deprecated != "" {
		desc = "[deprecated] " + desc
	}
	m.line(fmt.Sprintf("| [%s](#%s) | %s |", p, strings.ReplaceAll(p, " ", "-"), desc))
}

func (m *mdWriter) flagRow(f *pflag.Flag) {
	name := "--" + f.Name
	if f.Shorthand != "" && f.ShorthandDeprecated == "" {
		name += ", -" + f.Shorthand
	}
	m.line("|", name, "|", f.DefValue, "|", f.Usage, "|")
}

func (m *mdWriter) flags(title string, fs *pflag.FlagSet) {
	m.line("###", title)
	m.table("Name,shorthand", "Default", "Description")
	fs.VisitAll(m.flagRow)
	m.line()
}

func (m *mdWriter) commands(title string, cmds []*cobra.Command) {
	m.line("###", title)
	m.table("Command", "Description")
	for _, c := range cmds {
		m.commandRow(c)
	}
	m.line()
}

// GenerateMarkdown writes the reference of cmd and its sub commands.
func GenerateMarkdown(cmd *cobra.Command, w io.Writer) error {
	m := &mdWriter{w: w}
	writeCommand(m, cmd)
	return m.err
}

func writeCommand(m *mdWriter, cmd *cobra.Command) {
	if !isDocumented(cmd) {
		return
	}
	if !cmd.HasParent() {
		name := cmd.Name()
		m.line("#", strings.ToUpper(name[:1])+name[1:])
		m.line()
	}
	m.line("##", cmd.CommandPath())
	m.line()

	m.line("### Description")
	if cmd.Deprecated != "" {
		m.line(fmt.Sprintf("Command %q is deprecated, %s", cmd.Name(), cmd.Deprecated))
	}
	if cmd.Long != "" {
		m.line(cmd.Long)
	} else {
		m.line(cmd.Short)
	}
	m.line()

	m.line("### Usage")
	m.line("`", cmd.UseLine(), "`")
	m.line()

	if cmd.HasLocalFlags() || cmd.HasPersistentFlags() {
		m.flags("Options", cmd.NonInheritedFlags())
	}
	if cmd.HasInheritedFlags() {
		m.flags("Inherited Options", cmd.InheritedFlags())
	}
	if cmd.HasAvailableSubCommands() {
		m.commands("Child commands", cmd.Commands())
	}
	if cmd.HasParent() {
		m.commands("Parent command", []*cobra.Command{cmd.Parent()})
		m.commands("Related commands", cmd.Parent().Commands())
	}

	for _, c := range cmd.Commands() {
		writeCommand(m, c)
	}
}
