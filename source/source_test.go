package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/orgaudit/auditerr"
	"github.com/zero-day-ai/orgaudit/diag"
)

const header = "Id,firstName,lastName,salary,managerId\n"

func load(t *testing.T, input string) (*diag.Set, func() []int) {
	t.Helper()
	diags := &diag.Set{}
	store, err := New().Load(context.Background(), strings.NewReader(input), diags)
	require.NoError(t, err)
	return diags, func() []int {
		var ids []int
		for _, r := range store.All() {
			ids = append(ids, r.ID)
		}
		return ids
	}
}

func TestLoadFile(t *testing.T) {
	diags := &diag.Set{}
	store, err := New().LoadFile(context.Background(), filepath.Join("testdata", "employees.csv"), diags)
	require.NoError(t, err)

	assert.Equal(t, 5, store.Len())
	assert.Equal(t, 0, diags.Len())

	root, ok := store.Root()
	require.True(t, ok)
	assert.Equal(t, "John Doe", root.DisplayName)
	assert.Equal(t, 60000.0, root.Compensation)

	alice, ok := store.Get(4)
	require.True(t, ok)
	sid, ok := alice.Superior.Get()
	require.True(t, ok)
	assert.Equal(t, 2, sid)
}

func TestLoad_SkipsShortRow(t *testing.T) {
	diags, ids := load(t, header+
		"1,John,Doe,60000\n"+
		"2,Jane\n"+
		"3,Bob,Johnson,50000,1\n")

	assert.Equal(t, []int{1, 3}, ids())
	require.Equal(t, 1, diags.Count(diag.KindMalformedRecord))
	d := diags.OfKind(diag.KindMalformedRecord)[0]
	assert.Equal(t, 3, d.Line)
	assert.Contains(t, d.Reason, "expected at least 4 fields, got 2")
}

func TestLoad_RejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		reason string
	}{
		{name: "non-numeric id", row: "x,Jane,Smith,55000,1", reason: `invalid id "x"`},
		{name: "non-numeric compensation", row: "2,Jane,Smith,lots,1", reason: `invalid compensation "lots"`},
		{name: "non-numeric superior", row: "2,Jane,Smith,55000,boss", reason: `invalid superior id "boss"`},
		{name: "negative compensation", row: "2,Jane,Smith,-5,1", reason: "cannot be negative"},
		{name: "non-finite compensation", row: "2,Jane,Smith,NaN,1", reason: "finite"},
		{name: "empty name", row: "2,,,55000,1", reason: "display name is required"},
		{name: "duplicate id", row: "1,Jane,Smith,55000,1", reason: "duplicate record id"},
		{name: "bare quote", row: `2,Ja"ne,Smith,55000,1`, reason: "quote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags, ids := load(t, header+"1,John,Doe,60000,\n"+tt.row+"\n3,Bob,Johnson,50000,1\n")

			assert.Equal(t, []int{1, 3}, ids())
			malformed := diags.OfKind(diag.KindMalformedRecord)
			require.Len(t, malformed, 1)
			assert.Equal(t, 3, malformed[0].Line)
			assert.Contains(t, malformed[0].Reason, tt.reason)
		})
	}
}

func TestLoad_OptionalSuperior(t *testing.T) {
	diags := &diag.Set{}
	store, err := New().Load(context.Background(), strings.NewReader(header+
		"1,John,Doe,60000,\n"+
		"2,Jane,Smith,55000\n"+
		"3,Bob,Johnson,50000, 1 ,extra\n"), diags)
	require.NoError(t, err)

	for _, id := range []int{1, 2} {
		rec, ok := store.Get(id)
		require.True(t, ok)
		assert.True(t, rec.IsRoot(), "record %d", id)
	}

	bob, ok := store.Get(3)
	require.True(t, ok)
	sid, ok := bob.Superior.Get()
	require.True(t, ok)
	assert.Equal(t, 1, sid)

	root, ok := store.Root()
	require.True(t, ok)
	assert.Equal(t, 1, root.ID, "first rootless record is the designated root")

	extra := diags.OfKind(diag.KindAdditionalRoot)
	require.Len(t, extra, 1)
	require.NotNil(t, extra[0].RecordID)
	assert.Equal(t, 2, *extra[0].RecordID)
	assert.Equal(t, 3, extra[0].Line)
}

func TestLoad_QuotedAndBlank(t *testing.T) {
	diags, ids := load(t, header+
		"1,\"John\",\"Doe, Jr.\",60000,\n"+
		"\n"+
		"   \n"+
		"2,Jane,Smith,55000,1\n")

	assert.Equal(t, []int{1, 2}, ids())
	assert.Equal(t, 0, diags.Len())
}

func TestLoad_QuotedNamePreserved(t *testing.T) {
	store, err := New().Load(context.Background(), strings.NewReader(header+"1,\"John\",\"Doe, Jr.\",60000,\n"), nil)
	require.NoError(t, err)
	rec, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "John Doe, Jr.", rec.DisplayName)
}

func TestLoad_Header(t *testing.T) {
	diags, ids := load(t, "Id,name\n1,John,Doe,60000\n")
	assert.Equal(t, []int{1}, ids())
	malformed := diags.OfKind(diag.KindMalformedRecord)
	require.Len(t, malformed, 1)
	assert.Equal(t, 1, malformed[0].Line)

	store, err := New(WithHeader(false)).Load(context.Background(), strings.NewReader("1,John,Doe,60000\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	store, err = New().Load(context.Background(), strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := New().LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, auditerr.ErrSourceUnreadable)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var aerr *auditerr.Error
	require.True(t, errors.As(err, &aerr))
	assert.Contains(t, aerr.Context, "path")
}

func TestLoad_ReadFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	_, err := New().Load(context.Background(), iotest.ErrReader(boom), nil)
	assert.ErrorIs(t, err, auditerr.ErrSourceUnreadable)
	assert.ErrorIs(t, err, boom)
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Load(ctx, strings.NewReader(header), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
