package intrinsic

import (
	"testing"

	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
)

func TestLookupAdmitsKnownOverload(t *testing.T) {
	r := New(false)

	kind, ok := r.Lookup("llvm.bswap.i32", []types.Type{types.I32}, types.I32)
	assert.True(t, ok)
	assert.Equal(t, KindBswap, kind)
}

func TestLookupRejectsUnknownSignature(t *testing.T) {
	r := New(false)

	_, ok := r.Lookup("llvm.bswap.i32", []types.Type{types.I64}, types.I64)
	assert.False(t, ok, "bswap.i32 name with i64 signature must not match")
}

func TestLookupRejectsUnknownName(t *testing.T) {
	r := New(false)

	_, ok := r.Lookup("llvm.not.a.real.intrinsic", nil, types.Void)
	assert.False(t, ok)
}

func TestForbiddenNamesAlwaysRejected(t *testing.T) {
	r := New(false)

	assert.True(t, r.IsForbidden("llvm.va_start"))
	_, ok := r.Lookup("llvm.va_start", []types.Type{types.NewPointer(types.I8)}, types.Void)
	assert.False(t, ok)
}

func TestDebugIntrinsicsGatedByFlag(t *testing.T) {
	without := New(false)
	_, ok := without.Lookup("llvm.dbg.declare", nil, types.Void)
	assert.False(t, ok, "dbg.declare must be rejected when debug metadata is disabled")
	assert.True(t, without.IsForbidden("llvm.dbg.declare"))

	with := New(true)
	_, ok = with.Lookup("llvm.dbg.declare", nil, types.Void)
	assert.True(t, ok, "dbg.declare must be admitted when debug metadata is enabled")
}

func TestAtomicAndMemoryKindClassification(t *testing.T) {
	assert.True(t, KindAtomicLoad.IsAtomic())
	assert.True(t, KindAtomicFenceAll.IsAtomic())
	assert.False(t, KindBswap.IsAtomic())

	assert.True(t, KindMemcpy.IsMemory())
	assert.True(t, KindMemset.IsMemory())
	assert.False(t, KindAtomicLoad.IsMemory())
}

func TestIsDebugNamedMetadata(t *testing.T) {
	assert.True(t, IsDebugNamedMetadata("llvm.dbg.cu"))
	assert.False(t, IsDebugNamedMetadata("llvm.module.flags"))
}
