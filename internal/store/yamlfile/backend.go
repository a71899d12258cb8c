// Package yamlfile stores records as YAML mappings from id to record, one
// file per entity kind.
package yamlfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/store"
)

// FileNames maps each kind to the file holding its records.
var FileNames = map[entity.Kind]string{
	entity.KindTask:     "tasks.yml",
	entity.KindFlowStep: "flowSteps.yml",
	entity.KindFlow:     "flows.yml",
	entity.KindBoard:    "boards.yml",
}

// Backend is a store.Backend over a directory of YAML files.
//
// Files are read lazily, once per kind, and rewritten in full on every
// change. Writes go to a temporary file that is renamed over the target.
type Backend struct {
	dir    string
	loaded map[entity.Kind]map[entity.ID]store.Record
}

var _ store.Backend = (*Backend)(nil)

// Open returns a backend rooted at dir. The directory is created on the
// first write.
func Open(dir string) (*Backend, error) {
	if dir == "" {
		return nil, fmt.Errorf("yaml store directory is empty")
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("yaml store path %s is not a directory", dir)
	case err != nil && !os.IsNotExist(err):
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	return &Backend{dir: dir, loaded: make(map[entity.Kind]map[entity.ID]store.Record)}, nil
}

// Dir returns the store directory.
func (b *Backend) Dir() string { return b.dir }

func (b *Backend) path(kind entity.Kind) (string, error) {
	name, ok := FileNames[kind]
	if !ok {
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}
	return filepath.Join(b.dir, name), nil
}

func (b *Backend) load(kind entity.Kind) (map[entity.ID]store.Record, error) {
	if recs, ok := b.loaded[kind]; ok {
		return recs, nil
	}
	path, err := b.path(kind)
	if err != nil {
		return nil, err
	}

	recs := make(map[entity.ID]store.Record)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if recs == nil {
			recs = make(map[entity.ID]store.Record)
		}
	}
	for id, rec := range recs {
		rec.ID = id
		recs[id] = rec
	}
	b.loaded[kind] = recs
	return recs, nil
}

func (b *Backend) flush(kind entity.Kind, recs map[entity.ID]store.Record) error {
	path, err := b.path(kind)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", b.dir, err)
	}

	tmp, err := os.CreateTemp(b.dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Records implements store.Backend.
func (b *Backend) Records(_ context.Context, kind entity.Kind) ([]store.Record, error) {
	recs, err := b.load(kind)
	if err != nil {
		return nil, err
	}
	list := make([]store.Record, 0, len(recs))
	for _, rec := range recs {
		list = append(list, store.CopyRecord(rec))
	}
	return list, nil
}

// Record implements store.Backend.
func (b *Backend) Record(_ context.Context, kind entity.Kind, id entity.ID) (store.Record, bool, error) {
	recs, err := b.load(kind)
	if err != nil {
		return store.Record{}, false, err
	}
	rec, ok := recs[id]
	if !ok {
		return store.Record{}, false, nil
	}
	return store.CopyRecord(rec), true, nil
}

// PutRecord implements store.Backend.
func (b *Backend) PutRecord(_ context.Context, kind entity.Kind, rec store.Record) error {
	recs, err := b.load(kind)
	if err != nil {
		return err
	}
	next := make(map[entity.ID]store.Record, len(recs)+1)
	for id, r := range recs {
		next[id] = r
	}
	next[rec.ID] = store.CopyRecord(rec)
	if err := b.flush(kind, next); err != nil {
		return err
	}
	b.loaded[kind] = next
	return nil
}

// DeleteRecord implements store.Backend.
func (b *Backend) DeleteRecord(_ context.Context, kind entity.Kind, id entity.ID) error {
	recs, err := b.load(kind)
	if err != nil {
		return err
	}
	if _, ok := recs[id]; !ok {
		return nil
	}
	next := make(map[entity.ID]store.Record, len(recs))
	for key, r := range recs {
		if key != id {
			next[key] = r
		}
	}
	if err := b.flush(kind, next); err != nil {
		return err
	}
	b.loaded[kind] = next
	return nil
}

// Close implements store.Backend. Every change is already on disk.
func (b *Backend) Close() error { return nil }
