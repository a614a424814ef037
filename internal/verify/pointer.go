package verify

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
	"github.com/davidbrazdil/minsfi-abiverify/internal/intrinsic"
	"github.com/davidbrazdil/minsfi-abiverify/internal/typeclass"
)

// isIntrinsicFunc reports whether v names a function recognized as an
// intrinsic by the Intrinsic Registry (spec.md §4.4.3: InherentPtr
// deliberately excludes references to intrinsic functions themselves).
func (fc *functionChecker) isIntrinsicFunc(v value.Value) bool {
	fn, ok := v.(*ir.Func)
	if !ok {
		return false
	}
	_, ok = fc.reg.Lookup(fn.Name(), fn.Sig.Params, fn.Sig.RetType)
	return ok
}

// isInherentPtr implements the InherentPtr predicate of spec.md §4.4.3: a
// stack allocation, a GlobalValue that is not an intrinsic function, or a
// call result of an intrinsic that returns a pointer.
func (fc *functionChecker) isInherentPtr(v value.Value) bool {
	switch vv := v.(type) {
	case *ir.InstAlloca:
		return true
	case *ir.Global:
		return true
	case *ir.Func:
		return !fc.isIntrinsicFunc(vv)
	case *ir.InstCall:
		if _, ok := fc.calleeIntrinsicKind(vv); !ok {
			return false
		}
		_, isPtr := vv.Type().(*types.PointerType)
		return isPtr
	default:
		return false
	}
}

// calleeIntrinsicKind reports the intrinsic Kind of call's callee, if the
// callee resolves to a registered intrinsic function.
func (fc *functionChecker) calleeIntrinsicKind(call *ir.InstCall) (intrinsic.Kind, bool) {
	fn, ok := call.Callee.(*ir.Func)
	if !ok {
		return 0, false
	}
	return fc.reg.Lookup(fn.Name(), fn.Sig.Params, fn.Sig.RetType)
}

// isNormalizedPtr implements the NormalizedPtr predicate of spec.md §4.4.3:
// a pointer-typed value that is an InherentPtr, an inttoptr result, or a
// bitcast result. Constant-expressions, null, and undef are deliberately
// excluded — pointer arithmetic/casting must appear as explicit
// instructions.
func (fc *functionChecker) isNormalizedPtr(cfg config.Config, v value.Value) bool {
	if !typeclass.ValidPointer(cfg, v.Type()) {
		return false
	}
	switch v.(type) {
	case *ir.InstIntToPtr, *ir.InstBitCast:
		return true
	}
	return fc.isInherentPtr(v)
}
