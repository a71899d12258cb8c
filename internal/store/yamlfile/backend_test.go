package yamlfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/store"
)

func TestOpen_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestBackend_CreatesDirectoryOnWrite(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "store")

	b, err := Open(dir)
	require.NoError(t, err)

	recs, err := b.Records(ctx, entity.KindTask)
	require.NoError(t, err)
	assert.Empty(t, recs)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "reading must not create the directory")

	require.NoError(t, b.PutRecord(ctx, entity.KindTask, store.Record{ID: "t1", Name: "Write", CreatedAt: 1}))
	_, err = os.Stat(filepath.Join(dir, "tasks.yml"))
	assert.NoError(t, err)
}

func TestBackend_FileFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, b.PutRecord(ctx, entity.KindFlow, store.Record{
		ID:            "f1",
		Name:          "Simple",
		CreatedAt:     1000,
		StepIDs:       []entity.ID{"s1", "s2"},
		DefaultStepID: "s1",
	}))

	data, err := os.ReadFile(filepath.Join(dir, "flows.yml"))
	require.NoError(t, err)
	assert.Equal(t, `f1:
    name: Simple
    createdAt: 1000
    stepIds:
        - s1
        - s2
    defaultStepId: s1
`, string(data))
}

func TestBackend_Reload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := Open(dir)
	require.NoError(t, err)
	board := store.Record{
		ID:          "b1",
		Name:        "Main",
		CreatedAt:   5,
		UpdatedAt:   6,
		FlowID:      "f1",
		TaskStepIDs: map[entity.ID]entity.ID{"t1": "s1", "t2": ""},
	}
	require.NoError(t, b.PutRecord(ctx, entity.KindBoard, board))
	require.NoError(t, b.PutRecord(ctx, entity.KindBoard, store.Record{ID: "b2", Name: "Other", CreatedAt: 7, FlowID: "f1"}))
	require.NoError(t, b.DeleteRecord(ctx, entity.KindBoard, "b2"))
	require.NoError(t, b.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	got, ok, err := reopened.Record(ctx, entity.KindBoard, "b1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, board, got)

	_, ok, err = reopened.Record(ctx, entity.KindBoard, "b2")
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.Name()[0] == '.', "temporary file %s left behind", e.Name())
	}
}

func TestBackend_RecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	b, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, b.PutRecord(ctx, entity.KindBoard, store.Record{
		ID: "b1", CreatedAt: 1, TaskStepIDs: map[entity.ID]entity.ID{"t1": ""},
	}))
	rec, _, err := b.Record(ctx, entity.KindBoard, "b1")
	require.NoError(t, err)
	rec.TaskStepIDs["t2"] = ""

	again, _, err := b.Record(ctx, entity.KindBoard, "b1")
	require.NoError(t, err)
	assert.Len(t, again.TaskStepIDs, 1)
}

func TestBackend_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.yml"), []byte("t1: [oops"), 0o644))

	b, err := Open(dir)
	require.NoError(t, err)
	_, err = b.Records(context.Background(), entity.KindTask)
	assert.ErrorContains(t, err, "parse")
}
