package selection

import (
	"github.com/sirupsen/logrus"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// FieldStore is the host-provided field data capability.
type FieldStore interface {
	GetData() (model.FieldData, error)
	SetData(model.FieldData) error
}

// Synchronizer owns the selection list for one field and writes it to the
// store after every change. It is driven from a single goroutine.
type Synchronizer struct {
	store       FieldStore
	log         logrus.FieldLogger
	entries     []model.SelectionEntry
	initialized bool
}

// NewSynchronizer creates a synchronizer bound to store. A nil logger
// falls back to the logrus standard logger.
func NewSynchronizer(store FieldStore, log logrus.FieldLogger) *Synchronizer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Synchronizer{store: store, log: log}
}

// Init sets the starting selection once taxonomies are loaded. The store is
// read only here; later calls do nothing.
func (s *Synchronizer) Init(taxonomies []*model.TaxonomyNode) {
	if s.initialized {
		return
	}
	s.initialized = true

	var stored []model.SelectionEntry
	data, err := s.store.GetData()
	if err != nil {
		s.log.WithError(err).Warn("read field data, starting from empty selection")
	} else {
		stored = data.Data
	}

	s.entries = Initial(stored, taxonomies)
	s.log.WithFields(logrus.Fields{
		"adopted":    len(stored) > 0,
		"taxonomies": len(s.entries),
	}).Debug("selection initialized")
	s.persist()
}

// Initialized reports whether Init has run.
func (s *Synchronizer) Initialized() bool {
	return s.initialized
}

// Toggle applies a checkbox change and writes the result to the store.
func (s *Synchronizer) Toggle(c Change) {
	s.entries = Apply(s.entries, c)
	s.log.WithFields(logrus.Fields{
		"taxonomy": c.TaxonomyUID,
		"term":     c.TermUID,
		"checked":  c.Checked,
	}).Debug("selection changed")
	s.persist()
}

// Entries returns a copy of the current selection list.
func (s *Synchronizer) Entries() []model.SelectionEntry {
	return model.CloneEntries(s.entries)
}

// IsSelected reports whether termUID is checked in the taxonomy at index.
func (s *Synchronizer) IsSelected(taxonomyIndex int, termUID string) bool {
	return IsSelected(s.entries, taxonomyIndex, termUID)
}

// persist hands the current list to the store. Failures are logged only;
// the caller never waits on the host.
func (s *Synchronizer) persist() {
	if err := s.store.SetData(model.FieldData{Data: model.CloneEntries(s.entries)}); err != nil {
		s.log.WithError(err).Error("write field data")
	}
}
