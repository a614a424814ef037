package main

import (
	"github.com/spf13/cobra"

	"github.com/davidbrazdil/minsfi-abiverify/internal/replshell"
)

func newReplCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively type IR text and verify it on demand",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			replshell.New(cfg).Start(cmd.OutOrStdout())
			return nil
		},
	}
}
