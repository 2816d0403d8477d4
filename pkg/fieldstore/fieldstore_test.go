package fieldstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
	"github.com/Dicklesworthstone/taxopick/pkg/selection"
)

var (
	_ selection.FieldStore = (*Memory)(nil)
	_ selection.FieldStore = (*File)(nil)
	_ selection.FieldStore = (*SQLite)(nil)
)

func sampleData() model.FieldData {
	return model.FieldData{Data: []model.SelectionEntry{
		{UID: "colors", Name: "Colors", Terms: []model.SelectedTerm{{UID: "red", Name: "Red"}}},
		{UID: "sizes", Name: "Sizes", Terms: []model.SelectedTerm{}},
	}}
}

func TestMemoryRoundTrip(t *testing.T) {
	m := &Memory{}

	got, err := m.GetData()
	require.NoError(t, err)
	assert.Empty(t, got.Data)

	require.NoError(t, m.SetData(sampleData()))
	got, err = m.GetData()
	require.NoError(t, err)
	assert.Equal(t, sampleData(), got)

	// callers cannot reach into the stored copy
	got.Data[0].Terms[0].Name = "changed"
	again, _ := m.GetData()
	assert.Equal(t, "Red", again.Data[0].Terms[0].Name)
}

func TestFileMissingReadsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "missing.json"))

	got, err := f.GetData()

	require.NoError(t, err)
	assert.Empty(t, got.Data)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "field.json")
	f := NewFile(path)

	require.NoError(t, f.SetData(sampleData()))
	got, err := f.GetData()

	require.NoError(t, err)
	assert.Equal(t, sampleData(), got)
	assert.Equal(t, path, f.Path())

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFile(path).GetData()

	assert.Error(t, err)
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.db")
	s, err := OpenSQLite(path, "entry-1", "tags")
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetData()
	require.NoError(t, err)
	assert.Empty(t, got.Data)

	require.NoError(t, s.SetData(sampleData()))
	got, err = s.GetData()
	require.NoError(t, err)
	assert.Equal(t, sampleData(), got)

	// upsert replaces the row
	next := model.FieldData{Data: []model.SelectionEntry{{UID: "colors", Name: "Colors", Terms: []model.SelectedTerm{}}}}
	require.NoError(t, s.SetData(next))
	got, err = s.GetData()
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestSQLiteFieldsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.db")
	a, err := OpenSQLite(path, "entry-1", "tags")
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.SetData(sampleData()))

	b, err := OpenSQLite(path, "entry-2", "tags")
	require.NoError(t, err)
	defer b.Close()

	got, err := b.GetData()
	require.NoError(t, err)
	assert.Empty(t, got.Data)
}

func TestWatchNotifiesOnSetData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.json")
	f := NewFile(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() { changed <- struct{}{} })
	}()

	// give the watcher a moment to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, f.SetData(sampleData()))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
