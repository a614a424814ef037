package main

import (
	"fmt"
	"io"
	"os"

	"github.com/kr/pretty"
	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/davidbrazdil/minsfi-abiverify/internal/verify"
)

func newCheckCmd(flags *rootFlags) *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Verify a single module, reading from path or stdin when path is \"-\" or omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			m, err := parseModule(path)
			if err != nil {
				return err
			}
			if trace {
				pretty.Println(m)
			}

			v := verify.New(cfg)
			v.Check(m)
			v.Flush(cmd.ErrOrStderr())
			if !v.Passed() {
				return errors.New("module rejected")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "module accepted, no diagnostics")
			return nil
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "pretty-print the parsed module before verifying it")
	return cmd
}

func parseModule(path string) (*ir.Module, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "reading stdin")
		}
		m, err := asm.ParseString("<stdin>", string(data))
		if err != nil {
			return nil, errors.Wrap(err, "parsing module")
		}
		return m, nil
	}
	m, err := asm.ParseFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing module %q", path)
	}
	return m, nil
}
