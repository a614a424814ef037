package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
)

// TestModuleScenarios exercises the end-to-end scenario table of spec.md §8.
func TestModuleScenarios(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "global with section attribute",
			src:  `@v = global i32 99, section ".s"`,
			want: `Variable v has disallowed "section" attribute`,
		},
		{
			name: "thread-local global",
			src:  `@t = thread_local global i32 99`,
			want: `Variable t has disallowed "thread_local" attribute`,
		},
		{
			name: "function with gc attribute",
			src:  `define void @f() gc "x" { ret void }`,
			want: `Function f has disallowed "gc" attribute`,
		},
		{
			name: "function with explicit alignment",
			src:  `define void @f() align 1 { ret void }`,
			want: `Function f has disallowed "align" attribute`,
		},
		{
			name: "module with no entry point",
			src:  `define internal void @helper() { ret void }`,
			want: `Module has no entry point`,
		},
		{
			name: "alias is disallowed",
			src: `@b = global i32 0
@a = alias i32, i32* @b`,
			want: `Variable a is an alias (disallowed)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := checkModuleSrc(t, cfg, tt.src)
			assert.Contains(t, messages(rep), tt.want)
		})
	}
}

func TestModuleAcceptsEntryPoint(t *testing.T) {
	cfg := config.Default()
	rep := checkModuleSrc(t, cfg, `define void @_start() { ret void }`)
	assert.False(t, rep.HasErrors(), "a lone _start entry point must be accepted:\n%s", messages(rep))
}

func TestModuleRejectsTwoEntryPoints(t *testing.T) {
	cfg := config.Default()
	src := `define void @_start() { ret void }
@__pnacl_pso_root = external global i32`
	rep := checkModuleSrc(t, cfg, src)
	assert.Contains(t, messages(rep), "Module has multiple entry points")
}

func TestModuleRejectsNonFlattenedInitializer(t *testing.T) {
	cfg := config.Default()
	rep := checkModuleSrc(t, cfg, `@v = global [2 x i32] [i32 1, i32 2]`)
	assert.Contains(t, messages(rep), "Variable v has non-flattened initializer")
}

func TestModuleAcceptsFlattenedByteArrayInitializer(t *testing.T) {
	cfg := config.Default()
	rep := checkModuleSrc(t, cfg, `@v = internal global [4 x i8] c"\00\00\00\00"
define void @_start() { ret void }`)
	assert.False(t, rep.HasErrors(), messages(rep))
}
