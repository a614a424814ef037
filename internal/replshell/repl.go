// Package replshell implements an interactive shell for typing a module's
// worth of IR text one line at a time and checking it on demand — an
// enrichment beyond spec.md's batch-verifier scope (SPEC_FULL.md's
// MODULE MAP), built the way the pack's own REPL is built.
package replshell

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/llir/llvm/asm"
	"github.com/peterh/liner"

	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
	"github.com/davidbrazdil/minsfi-abiverify/internal/verify"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Shell is a line-editing loop that accumulates IR text and verifies it
// against cfg on demand.
type Shell struct {
	cfg     config.Config
	buf     []string
	history string
}

// New constructs a Shell around cfg.
func New(cfg config.Config) *Shell {
	return &Shell{
		cfg:     cfg,
		history: filepath.Join(os.TempDir(), ".abiverify_history"),
	}
}

// Start runs the shell until the user quits or sends EOF.
func (s *Shell) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	if f, err := os.Open(s.history); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetMultiLineMode(true)
	line.SetCompleter(func(prefix string) (c []string) {
		for _, cmd := range []string{":help", ":quit", ":check", ":clear", ":show"} {
			if strings.HasPrefix(cmd, prefix) {
				c = append(c, cmd)
			}
		}
		return
	})

	fmt.Fprintf(out, "%s\n", bold("abiverify repl"))
	fmt.Fprintln(out, "Type IR lines, then :check to verify the accumulated module. :help for commands.")

	for {
		input, err := line.Prompt("abi> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nbye"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}
		input = strings.TrimRight(input, "\n")
		line.AppendHistory(input)

		trimmed := strings.TrimSpace(input)
		if strings.HasPrefix(trimmed, ":") {
			if s.handleCommand(trimmed, out) {
				break
			}
			continue
		}
		s.buf = append(s.buf, input)
	}

	if f, err := os.Create(s.history); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// handleCommand processes a colon-command and reports whether the shell
// should exit.
func (s *Shell) handleCommand(cmd string, out io.Writer) bool {
	switch {
	case cmd == ":quit" || cmd == ":q":
		fmt.Fprintln(out, green("bye"))
		return true
	case cmd == ":help" || cmd == ":h":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :check   parse and verify the accumulated module text")
		fmt.Fprintln(out, "  :show    print the accumulated module text")
		fmt.Fprintln(out, "  :clear   discard the accumulated module text")
		fmt.Fprintln(out, "  :quit    exit")
	case cmd == ":show":
		fmt.Fprintln(out, strings.Join(s.buf, "\n"))
	case cmd == ":clear":
		s.buf = nil
	case cmd == ":check":
		s.check(out)
	default:
		fmt.Fprintf(out, "%s: unknown command %q\n", yellow("warning"), cmd)
	}
	return false
}

func (s *Shell) check(out io.Writer) {
	src := strings.Join(s.buf, "\n")
	m, err := asm.ParseString("<repl>", src)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("parse error"), err)
		return
	}
	v := verify.New(s.cfg)
	v.Check(m)
	if v.Passed() {
		fmt.Fprintln(out, green("module accepted, no diagnostics"))
		return
	}
	v.Flush(out)
}
