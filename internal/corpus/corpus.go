// Package corpus holds the fixed reference material that grounds resume-mode
// answers: the profile sections the production backend indexes.
package corpus

import "strings"

// Section is one retrievable unit of the reference corpus.
type Section struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Keywords []string `json:"keywords,omitempty"`
}

// Store exposes section retrieval for the stream handler.
type Store interface {
	List() []Section
	FindByID(id string) (Section, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Section
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied sections.
func NewMemoryStore(items []Section) *MemoryStore {
	return &MemoryStore{items: append([]Section(nil), items...)}
}

// List returns every section.
func (s *MemoryStore) List() []Section {
	return append([]Section(nil), s.items...)
}

// FindByID looks up a section by identifier.
func (s *MemoryStore) FindByID(id string) (Section, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Section{}, false
}

// Search returns the sections whose keywords or title overlap the query, in
// corpus order. An empty result falls back to the summary section so every
// answer cites at least one source.
func Search(store Store, query string) []Section {
	query = strings.ToLower(query)
	var matched []Section
	for _, section := range store.List() {
		if matchesQuery(section, query) {
			matched = append(matched, section)
		}
	}
	if len(matched) == 0 {
		if summary, ok := store.FindByID("summary"); ok {
			matched = append(matched, summary)
		}
	}
	return matched
}

func matchesQuery(section Section, query string) bool {
	if strings.Contains(query, strings.ToLower(section.Title)) {
		return true
	}
	for _, keyword := range section.Keywords {
		if strings.Contains(query, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
