package verify

import (
	"strings"
	"testing"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/stretchr/testify/require"

	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
	"github.com/davidbrazdil/minsfi-abiverify/internal/diag"
	"github.com/davidbrazdil/minsfi-abiverify/internal/intrinsic"
)

func mustParse(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, err := asm.ParseString(t.Name()+".ll", src)
	require.NoError(t, err, "parsing fixture:\n%s", src)
	return m
}

func messages(rep *diag.Reporter) string {
	var sb strings.Builder
	for _, rec := range rep.Records() {
		sb.WriteString(rec.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

func checkModuleSrc(t *testing.T, cfg config.Config, src string) *diag.Reporter {
	t.Helper()
	m := mustParse(t, src)
	rep := diag.New(diag.Owned)
	reg := intrinsic.New(cfg.AllowDebugMetadata)
	CheckModule(cfg, reg, rep, m)
	return rep
}

func checkFuncSrc(t *testing.T, cfg config.Config, src string) *diag.Reporter {
	t.Helper()
	m := mustParse(t, src)
	require.NotEmpty(t, m.Funcs, "fixture must define at least one function")
	rep := diag.New(diag.Owned)
	reg := intrinsic.New(cfg.AllowDebugMetadata)
	CheckFunction(cfg, reg, rep, m.Funcs[0])
	return rep
}
