package fieldstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// File stores field data as a JSON document on disk.
//
// File format:
//
//	{
//	  "data": [
//	    {"uid": "colors", "name": "Colors", "terms": [{"uid": "red", "name": "Red"}]}
//	  ]
//	}
//
// A missing file reads as empty data. Writes go to a temp file in the same
// directory and are renamed into place.
type File struct {
	path string
}

// NewFile returns a store backed by the file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// GetData reads the snapshot from disk.
func (f *File) GetData() (model.FieldData, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.FieldData{}, nil
	}
	if err != nil {
		return model.FieldData{}, fmt.Errorf("read field data %s: %w", f.path, err)
	}

	var data model.FieldData
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.FieldData{}, fmt.Errorf("parse field data %s: %w", f.path, err)
	}
	return data, nil
}

// SetData writes the snapshot to disk.
func (f *File) SetData(data model.FieldData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal field data: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create field data directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".fielddata-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write field data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
