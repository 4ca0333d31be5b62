package export

// Surrogate linkage columns appended to every multi-table row.
const (
	ColumnIndex       = "_index"
	ColumnParentIndex = "_parent_index"
	ColumnParentTable = "_parent_table_name"
)

// ExtraColumns lists the linkage columns in output order.
var ExtraColumns = []string{ColumnIndex, ColumnParentTable, ColumnParentIndex}

// Section is one output table of a multi-table export: the root table or one
// table per repeating group.
type Section struct {
	// Name is the unique, length-bounded table name.
	Name string
	// Path is the schema path whose children populate the section.
	Path string
	// Columns holds the section's field paths in insertion order, duplicates
	// excluded. Fixed after the schema walk.
	Columns []string
	// Repeat marks sections backed by a repeating group.
	Repeat bool

	// index mints surrogate row indices; strictly increasing across the whole
	// export, never reset between batches.
	index int
}

func (s *Section) addColumn(path string) {
	if path == "" {
		panic("export: column registered without a path")
	}
	for _, col := range s.Columns {
		if col == path {
			return
		}
	}
	s.Columns = append(s.Columns, path)
}

// nextIndex returns the current counter value and advances it. The first row
// of every section gets index 0.
func (s *Section) nextIndex() int {
	idx := s.index
	s.index++
	return idx
}
