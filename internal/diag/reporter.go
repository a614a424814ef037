// Package diag implements the Diagnostic Reporter collaborator shared by the
// Module and Function checkers (spec.md §5, §7): an ordered, append-only
// buffer of diagnostic records with a fatal-halt barrier at the end of each
// pass.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Severity distinguishes a hard rejection from an advisory warning. Only
// Error-severity records cause Reporter.CheckFatal to halt; spec.md itself
// never emits Warning, but sanity-check-style passes in the wider ecosystem
// do, so the distinction is kept rather than collapsed.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "Warning"
	}
	return "Error"
}

// Record is a single diagnostic: a severity and a stable, human-readable
// message. Message text is an API contract — the end-to-end scenarios in
// spec.md §8 anchor on specific substrings, so message formatting lives in
// internal/verify, never improvised in this package.
type Record struct {
	Severity Severity
	Message  string
}

func (r Record) String() string {
	return fmt.Sprintf("%s: %s", r.Severity, r.Message)
}

// Owner records whether the Reporter is owned (created and destroyed) by
// the pass that holds it, or merely borrowed from a caller who outlives it.
// Destruction in Go has no observable effect beyond Reset, but the
// distinction is kept explicit per spec.md §9's design note on reporter
// ownership, rather than left as an undocumented convention.
type Owner int

const (
	// Borrowed means the caller constructed and will reuse the Reporter
	// across multiple verification runs.
	Borrowed Owner = iota
	// Owned means the pass constructed the Reporter itself and nothing
	// outside the pass may observe it after the pass completes.
	Owned
)

// Reporter accumulates diagnostics for a single verification run. It is not
// safe for concurrent use — the verifier is single-threaded by design
// (spec.md §5) and the Reporter inherits that assumption.
type Reporter struct {
	owner   Owner
	records []Record
}

// New constructs a Reporter with the given ownership discipline.
func New(owner Owner) *Reporter {
	return &Reporter{owner: owner}
}

// Errorf appends an Error-severity record.
func (r *Reporter) Errorf(format string, args ...interface{}) {
	r.records = append(r.records, Record{Severity: Error, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a Warning-severity record.
func (r *Reporter) Warnf(format string, args ...interface{}) {
	r.records = append(r.records, Record{Severity: Warning, Message: fmt.Sprintf(format, args...)})
}

// Records returns the accumulated diagnostics in emission order.
func (r *Reporter) Records() []Record {
	return r.records
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (r *Reporter) HasErrors() bool {
	for _, rec := range r.records {
		if rec.Severity == Error {
			return true
		}
	}
	return false
}

// CheckFatal is the barrier point consulted at the end of each pass
// (spec.md §5): it reports whether the run must be treated as rejected.
// It does not itself terminate the process — that decision belongs to the
// host CLI (cmd/abiverify), consistent with spec.md's "Exit codes ... as
// driven by the host tool".
func (r *Reporter) CheckFatal() bool {
	return r.HasErrors()
}

// Reset clears accumulated diagnostics so a Borrowed Reporter can be reused
// across a host "analysis" command's repeated invocations.
func (r *Reporter) Reset() {
	r.records = r.records[:0]
}

// Owner reports the ownership discipline this Reporter was constructed with.
func (r *Reporter) Owner() Owner {
	return r.owner
}

// Flush writes every accumulated record to w with a colored severity
// prefix. Whether color codes are emitted is decided by fatih/color's
// process-wide setting (detected from the process's standard output and
// environment), not by inspecting w.
func (r *Reporter) Flush(w io.Writer) {
	for _, rec := range r.records {
		prefix := color.RedString(rec.Severity.String())
		if rec.Severity == Warning {
			prefix = color.YellowString(rec.Severity.String())
		}
		fmt.Fprintf(w, "%s: %s\n", prefix, rec.Message)
	}
}
