// Package config holds the process-wide flags of the original checker as an
// explicit, constructed-once record instead of package-level globals.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SeqCst is the ordinal of the sequentially-consistent memory order in the
// atomic-ordering enum admitted by the underlying IR. It is the only member
// currently admitted by AdmittedMemoryOrders' default; see the comment there.
const SeqCst = 6

// NumRMWOperations is the exclusive upper bound (the "Num" sentinel) of the
// atomicrmw operation enum admitted by the underlying IR: Invalid=0 precedes
// the first real operation, Add=1, and Num=7 follows the last (Xchg=6). An
// admitted operation ordinal must fall strictly between Invalid and Num.
const NumRMWOperations = 7

// Config is threaded explicitly through the Module and Function checkers.
// No field here is read from a package-level global.
type Config struct {
	// AllowDebugMetadata admits dbg.declare/dbg.value intrinsics, named
	// metadata under the llvm.dbg. prefix, and per-instruction !dbg
	// attachments.
	AllowDebugMetadata bool `yaml:"allow_debug_metadata"`

	// StreamingMode tolerates function declarations (no body) because
	// bodies may still be in flight from a streaming loader.
	StreamingMode bool `yaml:"streaming_mode"`

	// VectorLengths maps an element bit width to the set of vector
	// lengths admitted for that element. Populated from the IR dialect
	// specification; spec.md §9 Open Question 2 leaves the exact table
	// unspecified, so it is configuration rather than a hardcoded switch.
	VectorLengths map[uint64][]uint64 `yaml:"vector_lengths"`

	// AdmittedMemoryOrders lists the atomic memory-order ordinals the
	// Function Checker accepts on atomic intrinsic calls. Defaults to
	// {SeqCst} alone: spec.md §4.4.5 item 3 / §9 Open Question 3 note this
	// is presently a placeholder and must not be silently widened.
	AdmittedMemoryOrders []int64 `yaml:"admitted_memory_orders"`

	// EntryName is the external symbol name treated as program start.
	EntryName string `yaml:"entry_name"`

	// RootEntryName is the alternative entry symbol (a global variable,
	// not a function) admitted in place of EntryName.
	RootEntryName string `yaml:"root_entry_name"`
}

// Default returns the configuration the checker uses when no file is
// supplied: debug metadata off, streaming off, the representative vector
// table of spec.md §9, and the sequentially-consistent-only memory order.
func Default() Config {
	return Config{
		AllowDebugMetadata: false,
		StreamingMode:      false,
		VectorLengths: map[uint64][]uint64{
			8:  {16},
			16: {8, 16},
			32: {4, 8, 16},
			64: {2, 4, 8},
		},
		AdmittedMemoryOrders: []int64{SeqCst},
		EntryName:            "_start",
		RootEntryName:        "__pnacl_pso_root",
	}
}

// Load reads a YAML configuration file and overlays it on Default(). An
// empty path is not an error: Default() is returned unchanged. A path to a
// file that cannot be read is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %q", path)
	}
	return cfg, nil
}

// VectorLenOK reports whether length is an admitted vector length for an
// element of the given bit width.
func (c Config) VectorLenOK(elemBits, length uint64) bool {
	lens, ok := c.VectorLengths[elemBits]
	if !ok {
		return false
	}
	for _, l := range lens {
		if l == length {
			return true
		}
	}
	return false
}

// MemoryOrderOK reports whether ord is one of the admitted memory-order
// ordinals.
func (c Config) MemoryOrderOK(ord int64) bool {
	for _, o := range c.AdmittedMemoryOrders {
		if o == ord {
			return true
		}
	}
	return false
}

// RMWOperationOK reports whether op falls strictly between the Invalid (0)
// and Num sentinels of the atomicrmw operation enum.
func (c Config) RMWOperationOK(op int64) bool {
	return op > 0 && op < NumRMWOperations
}
