package main

import (
	"os"

	"github.com/icon-project/govote/cmd/cli"
)

var (
	version = "unknown"
	build   = "unknown"
)

func main() {
	rootCmd, rootVc := cli.NewCommand(nil, nil, "govote", "Govote CLI")
	rootVc.Set("env_prefix", "GOVOTE")
	rootCmd.SilenceUsage = true

	cli.NewServerCmd(rootCmd, rootVc, version, build, logoLines)
	cli.NewSystemCmd(rootCmd, rootVc)
	cli.NewSignerCmd(rootCmd, rootVc)
	cli.NewProposalCmd(rootCmd, rootVc)
	cli.NewVoteCmd(rootCmd, rootVc)
	cli.NewRpcCmd(rootCmd, rootVc)
	rootCmd.AddCommand(cli.NewKeystoreCmd("ks"))
	cli.NewGenerateMarkdownCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var logoLines = []string{
	"  ____  _____     _____ _____ _____",
	" / ___|/ _ \\ \\   / / _ \\_   _| ____|",
	"| |  _| | | \\ \\ / / | | || | |  _|",
	"| |_| | |_| |\\ V /| |_| || | | |___",
	" \\____|\\___/  \\_/  \\___/ |_| |_____|",
}
