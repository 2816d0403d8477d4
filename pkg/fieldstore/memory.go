// Package fieldstore provides host field storage backends for the
// selection synchronizer.
package fieldstore

import (
	"sync"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// Memory keeps field data in process. The zero value is ready to use.
type Memory struct {
	mu   sync.Mutex
	data model.FieldData
}

// NewMemory returns a store preloaded with data.
func NewMemory(data model.FieldData) *Memory {
	return &Memory{data: model.FieldData{Data: model.CloneEntries(data.Data)}}
}

// GetData returns a copy of the stored snapshot.
func (m *Memory) GetData() (model.FieldData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.FieldData{Data: model.CloneEntries(m.data.Data)}, nil
}

// SetData replaces the stored snapshot.
func (m *Memory) SetData(data model.FieldData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = model.FieldData{Data: model.CloneEntries(data.Data)}
	return nil
}
