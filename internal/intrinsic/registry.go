// Package intrinsic implements the Intrinsic Registry (spec.md §4.2): a
// fixed table of (kind, signature) pairs admitted by name, plus an explicit
// deny-list of intrinsic kinds that are rejected regardless of signature.
// The registry is built once per verification run and never mutated.
package intrinsic

import (
	"strings"

	"github.com/llir/llvm/ir/types"
)

// Kind classifies an admitted intrinsic by family. Callers branch on it
// through IsAtomic, IsMemory and comparisons with single kinds; none of
// these switches covers every Kind, and Go does not check them for
// exhaustiveness.
type Kind int

const (
	KindBswap Kind = iota
	KindCtlz
	KindCttz
	KindCtpop
	KindReadThreadPointer
	KindSetjmp
	KindLongjmp
	KindSqrt
	KindAtomicLoad
	KindAtomicStore
	KindAtomicRMW
	KindAtomicCmpxchg
	KindAtomicFence
	KindAtomicFenceAll
	KindAtomicIsLockFree
	KindStacksave
	KindStackrestore
	KindTrap
	KindMemcpy
	KindMemmove
	KindMemset
	KindDbgDeclare
	KindDbgValue
)

// IsAtomic reports whether k belongs to the atomic intrinsic family, which
// carries memory-order/rmw-operation constant parameters (spec.md §4.4.5).
func (k Kind) IsAtomic() bool {
	switch k {
	case KindAtomicLoad, KindAtomicStore, KindAtomicRMW, KindAtomicCmpxchg, KindAtomicFence, KindAtomicFenceAll:
		return true
	}
	return false
}

// IsMemory reports whether k is one of memcpy/memmove/memset, which carry
// a length and an alignment-constant argument (spec.md §4.4.4).
func (k Kind) IsMemory() bool {
	switch k {
	case KindMemcpy, KindMemmove, KindMemset:
		return true
	}
	return false
}

// entry is one admitted (kind, concrete signature) overload.
type entry struct {
	kind   Kind
	params []types.Type
	ret    types.Type
}

// Registry is the fixed, built-once table of admissible intrinsics plus the
// deny-list of forbidden names, both matched by exact intrinsic name.
type Registry struct {
	byName    map[string][]entry
	forbidden map[string]bool
	allowDbg  bool
}

// New builds the registry. allowDebugMetadata threads spec.md §6's
// allow-debug-metadata flag through to the dbg.declare/dbg.value entries,
// which are otherwise absent from the table.
func New(allowDebugMetadata bool) *Registry {
	r := &Registry{
		byName:    make(map[string][]entry),
		forbidden: make(map[string]bool),
		allowDbg:  allowDebugMetadata,
	}
	r.populate()
	return r
}

func (r *Registry) add(name string, kind Kind, ret types.Type, params ...types.Type) {
	r.byName[name] = append(r.byName[name], entry{kind: kind, params: params, ret: ret})
}

func (r *Registry) deny(names ...string) {
	for _, n := range names {
		r.forbidden[n] = true
	}
}

func (r *Registry) populate() {
	i16, i32, i64 := types.I16, types.I32, types.I64
	f32, f64 := types.Float, types.Double
	ptr := types.NewPointer(types.I8)

	// bit manipulation
	r.add("llvm.bswap.i16", KindBswap, i16, i16)
	r.add("llvm.bswap.i32", KindBswap, i32, i32)
	r.add("llvm.bswap.i64", KindBswap, i64, i64)
	for _, it := range []*types.IntType{i32, i64} {
		r.add("llvm.ctlz."+it.String(), KindCtlz, it, it, types.I1)
		r.add("llvm.cttz."+it.String(), KindCttz, it, it, types.I1)
		r.add("llvm.ctpop."+it.String(), KindCtpop, it, it)
	}

	// threading primitives (platform-specific names, representative here)
	r.add("llvm.nacl.read.tp", KindReadThreadPointer, ptr)
	r.add("llvm.nacl.setjmp", KindSetjmp, i32, ptr)
	r.add("llvm.nacl.longjmp", KindLongjmp, types.Void, ptr, i32)

	// floating point
	r.add("llvm.sqrt.f32", KindSqrt, f32, f32)
	r.add("llvm.sqrt.f64", KindSqrt, f64, f64)

	// atomics: one family, overloaded over {i8,i16,i32,i64}
	for _, it := range []*types.IntType{types.I8, i16, i32, i64} {
		r.add("llvm.nacl.atomic.load."+it.String(), KindAtomicLoad, it, types.NewPointer(it), i32)
		r.add("llvm.nacl.atomic.store."+it.String(), KindAtomicStore, types.Void, it, types.NewPointer(it), i32)
		r.add("llvm.nacl.atomic.rmw."+it.String(), KindAtomicRMW, it, i32, types.NewPointer(it), it, i32)
		r.add("llvm.nacl.atomic.cmpxchg."+it.String(), KindAtomicCmpxchg, it, types.NewPointer(it), it, it, i32, i32)
	}
	r.add("llvm.nacl.atomic.fence", KindAtomicFence, types.Void, i32)
	r.add("llvm.nacl.atomic.fence.all", KindAtomicFenceAll, types.Void)
	r.add("llvm.nacl.atomic.is.lock.free", KindAtomicIsLockFree, i32, i32, ptr)

	// stack management
	r.add("llvm.stacksave", KindStacksave, ptr)
	r.add("llvm.stackrestore", KindStackrestore, types.Void, ptr)

	// control
	r.add("llvm.trap", KindTrap, types.Void)

	// memory intrinsics: 32-bit-length overload only
	r.add("llvm.memcpy.p0i8.p0i8.i32", KindMemcpy, types.Void, ptr, ptr, i32, i32, types.I1)
	r.add("llvm.memmove.p0i8.p0i8.i32", KindMemmove, types.Void, ptr, ptr, i32, i32, types.I1)
	r.add("llvm.memset.p0i8.i32", KindMemset, types.Void, ptr, types.I8, i32, i32, types.I1)

	if r.allowDbg {
		r.add("llvm.dbg.declare", KindDbgDeclare, types.Void)
		r.add("llvm.dbg.value", KindDbgValue, types.Void)
	}

	r.deny(
		"llvm.eh.trampolineadjust", "llvm.eh.trampolineinit",
		"llvm.eh.dwarf.cfa", "llvm.eh.sjlj.setjmp", "llvm.eh.sjlj.longjmp",
		"llvm.eh.typeid.for", "llvm.eh.sjlj.lsda", "llvm.eh.unwind.init",
		"llvm.eh.return.i32", "llvm.eh.return.i64",
		"llvm.frameaddress", "llvm.returnaddress",
		"llvm.stackprotector", "llvm.stackprotectorcheck",
		"llvm.va_start", "llvm.va_end", "llvm.va_copy",
		"llvm.sadd.with.overflow.i32", "llvm.uadd.with.overflow.i32",
		"llvm.ssub.with.overflow.i32", "llvm.usub.with.overflow.i32",
		"llvm.smul.with.overflow.i32", "llvm.umul.with.overflow.i32",
		"llvm.lifetime.start", "llvm.lifetime.end",
		"llvm.invariant.start", "llvm.invariant.end",
		"llvm.cos.f32", "llvm.cos.f64", "llvm.sin.f32", "llvm.sin.f64",
		"llvm.exp.f32", "llvm.exp.f64", "llvm.exp2.f32", "llvm.exp2.f64",
		"llvm.log.f32", "llvm.log.f64", "llvm.log2.f32", "llvm.log2.f64",
		"llvm.log10.f32", "llvm.log10.f64",
		"llvm.pow.f32", "llvm.pow.f64", "llvm.powi.f32", "llvm.powi.f64",
		"llvm.expect.i1", "llvm.expect.i32", "llvm.expect.i64",
		"llvm.flt.rounds",
	)
	if !r.allowDbg {
		r.deny("llvm.dbg.declare", "llvm.dbg.value")
	}
}

// Lookup returns the Kind admitted for name with the concrete signature
// (paramTypes, retType), and whether that signature is present in the
// registry. A name present in the deny-list never matches, regardless of
// signature; a name absent from both tables is rejected by default.
func (r *Registry) Lookup(name string, paramTypes []types.Type, ret types.Type) (Kind, bool) {
	if r.forbidden[name] {
		return 0, false
	}
	entries, ok := r.byName[name]
	if !ok {
		return 0, false
	}
	for _, e := range entries {
		if !types.Equal(e.ret, ret) {
			continue
		}
		if len(e.params) != len(paramTypes) {
			continue
		}
		match := true
		for i, p := range e.params {
			if !types.Equal(p, paramTypes[i]) {
				match = false
				break
			}
		}
		if match {
			return e.kind, true
		}
	}
	return 0, false
}

// IsForbidden reports whether name is explicitly denied regardless of
// signature.
func (r *Registry) IsForbidden(name string) bool {
	return r.forbidden[name]
}

// IsDebugName reports whether name is one of the debug-info intrinsics that
// are only ever admitted under the debug-metadata configuration flag.
func IsDebugName(name string) bool {
	return name == "llvm.dbg.declare" || name == "llvm.dbg.value"
}

// IsDebugNamedMetadata reports whether a named metadata name falls under
// the llvm.dbg. namespace admitted only when debug metadata is enabled.
func IsDebugNamedMetadata(name string) bool {
	return strings.HasPrefix(name, "llvm.dbg.")
}
