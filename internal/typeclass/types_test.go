package typeclass

import (
	"testing"

	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"

	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
)

func TestValidScalar(t *testing.T) {
	assert.True(t, ValidScalar(types.I1))
	assert.True(t, ValidScalar(types.I8))
	assert.True(t, ValidScalar(types.I16))
	assert.True(t, ValidScalar(types.I32))
	assert.True(t, ValidScalar(types.I64))
	assert.True(t, ValidScalar(types.Float))
	assert.True(t, ValidScalar(types.Double))

	assert.False(t, ValidScalar(types.NewInt(128)))
	assert.False(t, ValidScalar(types.NewPointer(types.I8)))
	assert.False(t, ValidScalar(types.Void))
}

func TestValidVector(t *testing.T) {
	cfg := config.Default()

	assert.True(t, ValidVector(cfg, types.NewVector(16, types.I8)))
	assert.True(t, ValidVector(cfg, types.NewVector(4, types.I32)))
	assert.False(t, ValidVector(cfg, types.NewVector(3, types.I32)), "3 is not an admitted i32 vector length")
	assert.False(t, ValidVector(cfg, types.I32), "scalar is not a vector")
}

func TestValidParamOrReturn(t *testing.T) {
	cfg := config.Default()

	assert.True(t, ValidParamOrReturn(cfg, types.Void, true), "void admitted as a return type")
	assert.False(t, ValidParamOrReturn(cfg, types.Void, false), "void never admitted as a parameter type")
	assert.False(t, ValidParamOrReturn(cfg, types.I1, true), "i1 never admitted as param or return")
	assert.True(t, ValidParamOrReturn(cfg, types.I32, false))
	assert.True(t, ValidParamOrReturn(cfg, types.NewVector(4, types.I32), false))
}

func TestValidFuncType(t *testing.T) {
	cfg := config.Default()

	ok := types.NewFunc(types.I32, types.I32, types.I32)
	assert.True(t, ValidFuncType(cfg, ok))

	variadic := types.NewFunc(types.Void)
	variadic.Variadic = true
	assert.False(t, ValidFuncType(cfg, variadic))

	badParam := types.NewFunc(types.Void, types.I1)
	assert.False(t, ValidFuncType(cfg, badParam))
}

func TestValidPointer(t *testing.T) {
	cfg := config.Default()

	assert.True(t, ValidPointer(cfg, types.NewPointer(types.I32)))
	assert.False(t, ValidPointer(cfg, types.NewPointer(types.I1)), "pointee must not be i1")

	spaced := types.NewPointer(types.I32)
	spaced.AddrSpace = 1
	assert.False(t, ValidPointer(cfg, spaced), "non-zero address space is disallowed")
}

func TestIsI1AndI32(t *testing.T) {
	assert.True(t, IsI1(types.I1))
	assert.False(t, IsI1(types.I8))
	assert.True(t, IsI1Vector(types.NewVector(4, types.I1)))
	assert.False(t, IsI1Vector(types.NewVector(4, types.I32)))
	assert.True(t, IsI32(types.I32))
	assert.False(t, IsI32(types.I64))
}

func TestByteSize(t *testing.T) {
	assert.Equal(t, uint64(1), ByteSize(types.I8))
	assert.Equal(t, uint64(4), ByteSize(types.I32))
	assert.Equal(t, uint64(4), ByteSize(types.Float))
	assert.Equal(t, uint64(8), ByteSize(types.Double))
}
