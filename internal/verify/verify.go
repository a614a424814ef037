// Package verify implements the ABI verifier of spec.md: a Module Checker
// and a Function Checker sharing a single Diagnostic Reporter, run in that
// fixed order over an in-memory github.com/llir/llvm/ir.Module.
package verify

import (
	"io"

	"github.com/llir/llvm/ir"

	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
	"github.com/davidbrazdil/minsfi-abiverify/internal/diag"
	"github.com/davidbrazdil/minsfi-abiverify/internal/intrinsic"
)

// Verifier ties the Module Checker, Function Checker, and Intrinsic
// Registry together behind the single entry point a host CLI calls once per
// module (spec.md §2, §5).
type Verifier struct {
	cfg config.Config
	reg *intrinsic.Registry
	rep *diag.Reporter
}

// New constructs a Verifier. The Reporter is Owned by the Verifier: callers
// that need to inspect or reuse it across runs should use NewWithReporter
// instead.
func New(cfg config.Config) *Verifier {
	return NewWithReporter(cfg, diag.New(diag.Owned))
}

// NewWithReporter constructs a Verifier around a caller-supplied Reporter
// (diag.Borrowed), letting a host "analysis" command run the Verifier
// repeatedly and inspect accumulated diagnostics between runs.
func NewWithReporter(cfg config.Config, rep *diag.Reporter) *Verifier {
	return &Verifier{
		cfg: cfg,
		reg: intrinsic.New(cfg.AllowDebugMetadata),
		rep: rep,
	}
}

// Check runs the Module Checker (which internally invokes the Function
// Checker on every defined function) and returns the Reporter holding the
// accumulated diagnostics. Diagnostics for globals and aliases precede all
// function-body diagnostics; each function's body diagnostics follow that
// function's own module-level diagnostics, and named-metadata, inline-
// assembly and entry-point diagnostics come after every function. Module-
// level and function-body diagnostics are therefore not kept in two
// separate groups.
func (v *Verifier) Check(m *ir.Module) *diag.Reporter {
	if v.rep.Owner() == diag.Owned {
		v.rep.Reset()
	}
	CheckModule(v.cfg, v.reg, v.rep, m)
	return v.rep
}

// Passed reports whether the most recent Check produced no fatal
// diagnostics.
func (v *Verifier) Passed() bool {
	return !v.rep.CheckFatal()
}

// Flush writes accumulated diagnostics to w per spec.md §6's "sequence of
// diagnostic records" output contract.
func (v *Verifier) Flush(w io.Writer) {
	v.rep.Flush(w)
}

// Reporter returns the Verifier's underlying Reporter.
func (v *Verifier) Reporter() *diag.Reporter {
	return v.rep
}
