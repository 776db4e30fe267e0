// Package taxonomy provides the closed set of category names that
// classification results are resolved against.
package taxonomy

import "strings"

// FallbackName is the category assigned when a result names a category
// outside the taxonomy. Every taxonomy contains it.
const FallbackName = "Other"

// Taxonomy is an immutable, ordered set of category names. Lookups are
// case-insensitive and resolve to the canonical casing supplied at
// construction. Safe for concurrent use.
type Taxonomy struct {
	byKey map[string]string
	names []string
}

// New builds a taxonomy from names, preserving first-seen order and dropping
// case-insensitive duplicates and blank entries. The fallback category is
// appended when missing, so the result is never empty.
func New(names []string) *Taxonomy {
	t := &Taxonomy{byKey: make(map[string]string, len(names)+1)}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, seen := t.byKey[key]; seen {
			continue
		}
		t.byKey[key] = name
		t.names = append(t.names, name)
	}
	if _, ok := t.byKey[strings.ToLower(FallbackName)]; !ok {
		t.byKey[strings.ToLower(FallbackName)] = FallbackName
		t.names = append(t.names, FallbackName)
	}
	return t
}

// Contains reports whether name is in the taxonomy, ignoring case and
// surrounding whitespace.
func (t *Taxonomy) Contains(name string) bool {
	_, ok := t.byKey[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Resolve maps name to its canonical casing. When name is not in the
// taxonomy it returns the fallback category and false.
func (t *Taxonomy) Resolve(name string) (string, bool) {
	if canonical, ok := t.byKey[strings.ToLower(strings.TrimSpace(name))]; ok {
		return canonical, true
	}
	return FallbackName, false
}

// Names returns the category names in construction order. The returned slice
// is a copy and may be mutated freely.
func (t *Taxonomy) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of categories, including the fallback.
func (t *Taxonomy) Len() int {
	return len(t.names)
}
