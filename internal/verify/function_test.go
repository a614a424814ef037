package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
)

// TestFunctionScenarios exercises the end-to-end scenario table of
// spec.md §8 that concerns per-instruction diagnostics.
func TestFunctionScenarios(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "getelementptr is always forbidden",
			src: `define void @f() {
  %p = alloca i8
  %g = getelementptr i8, i8* %p, i32 0
  ret void
}`,
			want: "bad instruction opcode",
		},
		{
			name: "store of integer with bad alignment",
			src: `define void @f() {
  %p = alloca i8
  %q = bitcast i8* %p to i32*
  store i32 1, i32* %q, align 4
  ret void
}`,
			want: "bad alignment",
		},
		{
			name: "add with nuw flag",
			src: `define void @f(i32 %a, i32 %b) {
  %r = add nuw i32 %a, %b
  ret void
}`,
			want: `has "nuw" attribute`,
		},
		{
			name: "inttoptr from non-i32",
			src: `define void @f(i64 %x) {
  %r = inttoptr i64 %x to i32*
  ret void
}`,
			want: "non-i32 inttoptr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := checkFuncSrc(t, cfg, tt.src)
			assert.Contains(t, messages(rep), tt.want)
		})
	}
}

func TestFunctionAcceptsPlainArithmetic(t *testing.T) {
	cfg := config.Default()
	rep := checkFuncSrc(t, cfg, `define void @f(i32 %a, i32 %b) {
  %r = add i32 %a, %b
  ret void
}`)
	assert.False(t, rep.HasErrors(), messages(rep))
}

func TestFunctionRejectsArithmeticOnI1(t *testing.T) {
	cfg := config.Default()
	rep := checkFuncSrc(t, cfg, `define void @f(i1 %a, i1 %b) {
  %r = add i1 %a, %b
  ret void
}`)
	assert.Contains(t, messages(rep), "arithmetic on i1")
}

func TestFunctionRejectsExactOnUDiv(t *testing.T) {
	cfg := config.Default()
	rep := checkFuncSrc(t, cfg, `define void @f(i32 %a, i32 %b) {
  %r = udiv exact i32 %a, %b
  ret void
}`)
	assert.Contains(t, messages(rep), `has "exact" attribute`)
}

func TestFunctionAcceptsNormalizedPointerLoad(t *testing.T) {
	cfg := config.Default()
	rep := checkFuncSrc(t, cfg, `define void @f() {
  %p = alloca i8
  %q = bitcast i8* %p to i32*
  %v = load i32, i32* %q, align 1
  ret void
}`)
	assert.False(t, rep.HasErrors(), messages(rep))
}

func TestFunctionRejectsBadCmpxchgSuccessOrder(t *testing.T) {
	cfg := config.Default()
	rep := checkFuncSrc(t, cfg, `define void @f(i32* %p, i32 %c, i32 %n) {
  %r = call i32 @llvm.nacl.atomic.cmpxchg.i32(i32* %p, i32 %c, i32 %n, i32 999, i32 6)
  ret void
}
declare i32 @llvm.nacl.atomic.cmpxchg.i32(i32*, i32, i32, i32, i32)`)
	assert.Contains(t, messages(rep), "invalid memory order")
}

func TestFunctionRejectsRMWOperationOutOfRange(t *testing.T) {
	cfg := config.Default()
	rep := checkFuncSrc(t, cfg, `define void @f(i32* %p, i32 %v) {
  %r = call i32 @llvm.nacl.atomic.rmw.i32(i32 999999, i32* %p, i32 %v, i32 6)
  ret void
}
declare i32 @llvm.nacl.atomic.rmw.i32(i32, i32*, i32, i32)`)
	assert.Contains(t, messages(rep), "invalid atomicRMW operation")
}

func TestFunctionRejectsBadSwitchCondition(t *testing.T) {
	cfg := config.Default()
	rep := checkFuncSrc(t, cfg, `define void @f(i1 %c) {
  switch i1 %c, label %a [
  ]
a:
  ret void
}`)
	assert.Contains(t, messages(rep), "bad switch condition")
}
