package discussion

import "strings"

// SearchDiscussions filters the discussion list. A non-empty query keeps
// discussions whose title or content contains it, ignoring case. A non-empty
// tag list keeps discussions sharing at least one tag with it. Both filters
// apply together; with neither, the full list is returned.
func (s *Store) SearchDiscussions(query string, tags []string) []Discussion {
	s.mu.Lock()
	all := s.discussions()
	s.mu.Unlock()

	return Filter(all, query, tags)
}

// Filter applies the SearchDiscussions matching rules to a list.
func Filter(all []Discussion, query string, tags []string) []Discussion {
	if query == "" && len(tags) == 0 {
		return all
	}

	q := strings.ToLower(query)
	out := []Discussion{}
	for _, d := range all {
		if q != "" &&
			!strings.Contains(strings.ToLower(d.Title), q) &&
			!strings.Contains(strings.ToLower(d.Content), q) {
			continue
		}
		if len(tags) > 0 && !d.HasTag(tags...) {
			continue
		}
		out = append(out, d)
	}
	return out
}
