package batch

import "sort"

// Selection is an ordered list of file paths without duplicates.
// The zero value is an empty selection.
type Selection struct {
	paths []string
}

// NewSelection returns a selection holding paths in order, skipping
// duplicates.
func NewSelection(paths ...string) *Selection {
	s := &Selection{}
	s.Add(paths...)
	return s
}

// Add appends paths that are not already selected and returns how many were
// added.
func (s *Selection) Add(paths ...string) int {
	added := 0
	for _, p := range paths {
		if s.Contains(p) {
			continue
		}
		s.paths = append(s.paths, p)
		added++
	}
	return added
}

// Remove deletes the entries at the given indices, highest first, so that
// earlier removals do not shift later ones. Out-of-range and repeated
// indices are ignored. Returns how many entries were removed.
func (s *Selection) Remove(indices ...int) int {
	unique := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(s.paths) {
			unique[i] = true
		}
	}
	sorted := make([]int, 0, len(unique))
	for i := range unique {
		sorted = append(sorted, i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	for _, i := range sorted {
		s.paths = append(s.paths[:i], s.paths[i+1:]...)
	}
	return len(sorted)
}

// Replace sets the entry at index i. It reports false when i is out of
// range or path is already selected at another index.
func (s *Selection) Replace(i int, path string) bool {
	if i < 0 || i >= len(s.paths) {
		return false
	}
	for j, p := range s.paths {
		if j != i && p == path {
			return false
		}
	}
	s.paths[i] = path
	return true
}

// Clear removes every entry.
func (s *Selection) Clear() {
	s.paths = nil
}

// Contains reports whether path is selected.
func (s *Selection) Contains(path string) bool {
	for _, p := range s.paths {
		if p == path {
			return true
		}
	}
	return false
}

// Len returns the number of selected paths.
func (s *Selection) Len() int { return len(s.paths) }

// Paths returns a copy of the selected paths in order.
func (s *Selection) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}
