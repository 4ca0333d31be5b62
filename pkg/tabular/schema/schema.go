package schema

import "strings"

// Kind classifies a node of the form definition tree.
type Kind int

const (
	// KindQuestion is a scalar question (text, integer, geopoint, ...).
	KindQuestion Kind = iota
	// KindSelectMultiple is a choice-multiple question whose raw value is a
	// space-delimited set of selected option names.
	KindSelectMultiple
	// KindGroup is a non-repeating grouping of child nodes.
	KindGroup
	// KindRepeat is a repeating group; its occurrences in a submission form a
	// list of nested documents.
	KindRepeat
)

// GeopointBindType marks questions whose value is a geolocation recording.
const GeopointBindType = "geopoint"

// Question types that never become export columns.
var excludedQuestionTypes = map[string]bool{
	"note": true,
}

// Node is one element of the immutable form definition tree. Built once by
// Parse/Load and read-only for the lifetime of an export.
type Node struct {
	Name     string
	Path     string // abbreviated xpath, slash-delimited, root name excluded
	Kind     Kind
	Type     string // original question type string
	BindType string
	Children []*Node
}

// IsQuestion reports whether the node contributes a value to submissions.
func (n *Node) IsQuestion() bool {
	return n.Kind == KindQuestion || n.Kind == KindSelectMultiple
}

// Excluded reports whether the question type is excluded from export columns.
func (n *Node) Excluded() bool {
	return excludedQuestionTypes[n.Type]
}

// GeoXPaths returns the four derived component paths for a geolocation
// question path. The last path segment is rewritten with the component
// suffix, e.g. "g/loc" becomes "g/_loc_latitude".
func GeoXPaths(path string) []string {
	prefix := ""
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		prefix = path[:i+1]
		name = path[i+1:]
	}
	return []string{
		prefix + "_" + name + "_latitude",
		prefix + "_" + name + "_longitude",
		prefix + "_" + name + "_altitude",
		prefix + "_" + name + "_precision",
	}
}
