// Package typeclass implements the Type Classifier (spec.md §4.1): pure
// predicates over github.com/llir/llvm/ir/types values. No function in this
// package has side effects or retains state across calls.
package typeclass

import (
	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
	"github.com/llir/llvm/ir/types"
)

// ValidScalar reports whether t is one of the admitted scalar types:
// i1/i8/i16/i32/i64, float, or double.
func ValidScalar(t types.Type) bool {
	switch tt := t.(type) {
	case *types.IntType:
		switch tt.BitSize {
		case 1, 8, 16, 32, 64:
			return true
		}
		return false
	case *types.FloatType:
		return tt.Kind == types.FloatKindFloat || tt.Kind == types.FloatKindDouble
	default:
		return false
	}
}

// ValidVector reports whether t is a vector of a valid scalar element type
// (i1 is permitted as a vector element here, unlike everywhere else) whose
// length is admitted for that element's width by cfg.
func ValidVector(cfg config.Config, t types.Type) bool {
	v, ok := t.(*types.VectorType)
	if !ok {
		return false
	}
	if !ValidScalar(v.ElemType) {
		return false
	}
	return cfg.VectorLenOK(elemBits(v.ElemType), v.Len)
}

// ValidParamOrReturn reports whether t is admissible as a function
// parameter type, or (when allowVoid is true) as a function return type:
// a valid scalar type other than i1, a valid vector type, or void
// (return-only).
func ValidParamOrReturn(cfg config.Config, t types.Type, allowVoid bool) bool {
	if allowVoid {
		if _, ok := t.(*types.VoidType); ok {
			return true
		}
	}
	if it, ok := t.(*types.IntType); ok && it.BitSize == 1 {
		return false
	}
	if ValidScalar(t) {
		return true
	}
	return ValidVector(cfg, t)
}

// ValidFuncType reports whether t is a non-variadic function type whose
// return type and every parameter type are admissible per
// ValidParamOrReturn.
func ValidFuncType(cfg config.Config, t *types.FuncType) bool {
	if t.Variadic {
		return false
	}
	if !ValidParamOrReturn(cfg, t.RetType, true) {
		return false
	}
	for _, p := range t.Params {
		if !ValidParamOrReturn(cfg, p, false) {
			return false
		}
	}
	return true
}

// ValidPointee reports whether t is a type a valid pointer may point to: a
// valid non-i1 scalar, a valid vector whose element is non-i1, or a valid
// function type.
func ValidPointee(cfg config.Config, t types.Type) bool {
	if it, ok := t.(*types.IntType); ok && it.BitSize == 1 {
		return false
	}
	if ValidScalar(t) {
		return true
	}
	if v, ok := t.(*types.VectorType); ok {
		if it, ok := v.ElemType.(*types.IntType); ok && it.BitSize == 1 {
			return false
		}
		return ValidVector(cfg, t)
	}
	if ft, ok := t.(*types.FuncType); ok {
		return ValidFuncType(cfg, ft)
	}
	return false
}

// ValidPointer reports whether t is a valid pointer type: address space 0,
// pointing at a ValidPointee.
func ValidPointer(cfg config.Config, t types.Type) bool {
	p, ok := t.(*types.PointerType)
	if !ok {
		return false
	}
	if uint64(p.AddrSpace) != 0 {
		return false
	}
	return ValidPointee(cfg, p.ElemType)
}

// IsI1 reports whether t is exactly the scalar type i1.
func IsI1(t types.Type) bool {
	it, ok := t.(*types.IntType)
	return ok && it.BitSize == 1
}

// IsI1Vector reports whether t is a vector whose element type is i1.
func IsI1Vector(t types.Type) bool {
	v, ok := t.(*types.VectorType)
	if !ok {
		return false
	}
	return IsI1(v.ElemType)
}

// IsI32 reports whether t is exactly the scalar type i32.
func IsI32(t types.Type) bool {
	it, ok := t.(*types.IntType)
	return ok && it.BitSize == 32
}

func elemBits(t types.Type) uint64 {
	switch tt := t.(type) {
	case *types.IntType:
		return tt.BitSize
	case *types.FloatType:
		if tt.Kind == types.FloatKindDouble {
			return 64
		}
		return 32
	default:
		return 0
	}
}

// ByteSize returns the size in bytes of a valid scalar type, used by the
// allowed-alignment predicate (spec.md §4.4.4). Callers must only pass
// types that have already satisfied ValidScalar.
func ByteSize(t types.Type) uint64 {
	switch tt := t.(type) {
	case *types.IntType:
		return (tt.BitSize + 7) / 8
	case *types.FloatType:
		if tt.Kind == types.FloatKindDouble {
			return 8
		}
		return 4
	default:
		return 0
	}
}
