package main

import (
	"github.com/spf13/cobra"

	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
)

// rootFlags holds the persistent CLI flags layered on top of an optional
// config file, per SPEC_FULL.md's Configuration section.
type rootFlags struct {
	configPath   string
	allowDbgMeta bool
	streaming    bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "abiverify",
		Short: "Verify LLVM-IR modules against the portable ABI subset",
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML configuration file")
	root.PersistentFlags().BoolVar(&flags.allowDbgMeta, "allow-debug-metadata", false, "admit dbg.declare/dbg.value intrinsics and llvm.dbg.* named metadata")
	root.PersistentFlags().BoolVar(&flags.streaming, "streaming", false, "tolerate function declarations without bodies")

	root.AddCommand(newCheckCmd(&flags))
	root.AddCommand(newReplCmd(&flags))
	return root
}

// loadConfig resolves the effective Config for a command invocation: the
// config file (if any) overlaid with explicit flag overrides.
func (f *rootFlags) loadConfig() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if f.allowDbgMeta {
		cfg.AllowDebugMetadata = true
	}
	if f.streaming {
		cfg.StreamingMode = true
	}
	return cfg, nil
}
