package schema

// Index is the result of a single depth-first walk over the schema tree:
// everything the builders need to know about questions without re-walking.
type Index struct {
	// Fields lists every question path in document order, excluded question
	// types omitted.
	Fields []string
	// SelectMultiples maps each choice-multiple question path to its ordered
	// option paths.
	SelectMultiples map[string][]string
	// GeoFields lists every geolocation-typed question path.
	GeoFields []string
}

// BuildIndex walks the tree once and extracts question paths, choice-multiple
// option maps and geolocation fields. Deterministic and side-effect-free.
func BuildIndex(root *Node) Index {
	idx := Index{SelectMultiples: map[string][]string{}}
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, child := range n.Children {
			switch child.Kind {
			case KindGroup, KindRepeat:
				walk(child)
			case KindSelectMultiple:
				if child.Excluded() {
					continue
				}
				idx.Fields = append(idx.Fields, child.Path)
				options := make([]string, 0, len(child.Children))
				for _, opt := range child.Children {
					options = append(options, opt.Path)
				}
				idx.SelectMultiples[child.Path] = options
			case KindQuestion:
				if child.Excluded() {
					continue
				}
				idx.Fields = append(idx.Fields, child.Path)
				if child.BindType == GeopointBindType {
					idx.GeoFields = append(idx.GeoFields, child.Path)
				}
			}
		}
	}
	walk(root)
	return idx
}
