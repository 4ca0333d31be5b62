package export

// columnManifest is the flat-table export's authoritative ordered column
// registry. A key is either a plain scalar column or an expandable group
// whose member columns (choice-multiple options, repeat-group occurrence
// paths) are discovered incrementally. Member lists only ever grow.
type columnManifest struct {
	order      []string
	expandable map[string]bool
	groups     map[string][]string
}

func newColumnManifest() *columnManifest {
	return &columnManifest{
		expandable: map[string]bool{},
		groups:     map[string][]string{},
	}
}

func (m *columnManifest) addScalar(path string) {
	if path == "" {
		panic("export: column registered without a path")
	}
	if m.known(path) {
		return
	}
	m.order = append(m.order, path)
}

func (m *columnManifest) addGroup(path string) {
	if path == "" {
		panic("export: column group registered without a path")
	}
	if !m.known(path) {
		m.order = append(m.order, path)
	}
	m.expandable[path] = true
}

// setGroup registers a group with a pre-known member list, deduplicated with
// order preserved. Used for choice-multiple options and geolocation
// components, whose columns are known from the schema.
func (m *columnManifest) setGroup(path string, members []string) {
	m.addGroup(path)
	seen := map[string]bool{}
	deduped := make([]string, 0, len(members))
	for _, member := range members {
		if seen[member] {
			continue
		}
		seen[member] = true
		deduped = append(deduped, member)
	}
	m.groups[path] = deduped
}

// appendToGroup records a discovered member column for a registered group.
// Paths under unregistered keys are ignored.
func (m *columnManifest) appendToGroup(path, member string) {
	if !m.expandable[path] {
		return
	}
	for _, existing := range m.groups[path] {
		if existing == member {
			return
		}
	}
	m.groups[path] = append(m.groups[path], member)
}

func (m *columnManifest) known(path string) bool {
	if m.expandable[path] {
		return true
	}
	for _, key := range m.order {
		if key == path {
			return true
		}
	}
	return false
}

// flatten returns the final column order: manifest insertion order with
// expandable entries replaced in-place by their discovered members.
func (m *columnManifest) flatten() []string {
	var cols []string
	for _, key := range m.order {
		if m.expandable[key] {
			cols = append(cols, m.groups[key]...)
			continue
		}
		cols = append(cols, key)
	}
	return cols
}
