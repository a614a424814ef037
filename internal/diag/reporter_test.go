package diag

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterAccumulatesInOrder(t *testing.T) {
	r := New(Owned)
	r.Errorf("first %s", "error")
	r.Warnf("second %s", "warning")

	want := []Record{
		{Severity: Error, Message: "first error"},
		{Severity: Warning, Message: "second warning"},
	}
	if diff := cmp.Diff(want, r.Records()); diff != "" {
		t.Errorf("Records() mismatch (-want +got):\n%s", diff)
	}
}

func TestHasErrorsAndCheckFatal(t *testing.T) {
	r := New(Owned)
	assert.False(t, r.HasErrors())
	assert.False(t, r.CheckFatal())

	r.Warnf("advisory only")
	assert.False(t, r.HasErrors(), "warnings alone are not fatal")

	r.Errorf("a real problem")
	assert.True(t, r.HasErrors())
	assert.True(t, r.CheckFatal())
}

func TestReset(t *testing.T) {
	r := New(Borrowed)
	r.Errorf("boom")
	require.True(t, r.HasErrors())

	r.Reset()
	assert.Empty(t, r.Records())
	assert.False(t, r.HasErrors())
	assert.Equal(t, Borrowed, r.Owner())
}

func TestFlushWritesEveryRecord(t *testing.T) {
	r := New(Owned)
	r.Errorf("bad thing")
	r.Warnf("minor thing")

	var buf bytes.Buffer
	r.Flush(&buf)

	out := buf.String()
	assert.Contains(t, out, "bad thing")
	assert.Contains(t, out, "minor thing")
}
