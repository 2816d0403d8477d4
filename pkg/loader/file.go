package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// FileSource serves taxonomies from a JSON dump instead of the remote API.
//
// File format:
//
//	{
//	  "taxonomies": [
//	    {"uid": "colors", "name": "Colors", "terms": [
//	      {"uid": "red", "name": "Red"},
//	      {"uid": "crimson", "name": "Crimson", "parent_uid": "red"}
//	    ]}
//	  ]
//	}
type FileSource struct {
	taxonomies []model.Taxonomy
	terms      map[string][]model.TermRecord
}

type fixtureFile struct {
	Taxonomies []struct {
		model.Taxonomy
		Terms []model.TermRecord `json:"terms"`
	} `json:"taxonomies"`
}

// OpenFileSource reads and parses the dump at path.
func OpenFileSource(path string) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFileSource(raw)
}

// ParseFileSource parses a dump already in memory.
func ParseFileSource(raw []byte) (*FileSource, error) {
	var f fixtureFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	src := &FileSource{terms: make(map[string][]model.TermRecord, len(f.Taxonomies))}
	for _, t := range f.Taxonomies {
		src.taxonomies = append(src.taxonomies, t.Taxonomy)
		src.terms[t.UID] = t.Terms
	}
	return src, nil
}

// ListTaxonomies returns the taxonomies in file order.
func (s *FileSource) ListTaxonomies(ctx context.Context) ([]model.Taxonomy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]model.Taxonomy(nil), s.taxonomies...), nil
}

// ListTerms returns the terms of one taxonomy.
func (s *FileSource) ListTerms(ctx context.Context, taxonomyUID string) ([]model.TermRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms, ok := s.terms[taxonomyUID]
	if !ok {
		return nil, fmt.Errorf("unknown taxonomy %q", taxonomyUID)
	}
	return append([]model.TermRecord(nil), terms...), nil
}
