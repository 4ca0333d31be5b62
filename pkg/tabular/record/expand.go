package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openrow/tabular/pkg/tabular/schema"
)

// NotesJoinSeparator joins individual annotation notes in flattened output.
const NotesJoinSeparator = "\r\n"

// SplitSelectMultiples replaces each known choice-multiple field present in
// the document with one presence-indicator column per known option. The raw
// key is removed. Indicators are booleans, or 1/0 when binary is set. The
// operation recurses one level into nested repeat documents.
func SplitSelectMultiples(doc Document, selects map[string][]string, binary bool) {
	for key, choices := range selects {
		raw, ok := doc[key]
		if ok {
			if s, isString := raw.(string); isString {
				selected := map[string]bool{}
				for _, token := range strings.Fields(s) {
					selected[key+"/"+token] = true
				}
				delete(doc, key)
				for _, choice := range choices {
					if binary {
						if selected[choice] {
							doc[choice] = 1
						} else {
							doc[choice] = 0
						}
					} else {
						doc[choice] = selected[choice]
					}
				}
			}
		}
	}
	for _, value := range doc {
		for _, nested := range NestedDocs(value) {
			SplitSelectMultiples(nested, selects, binary)
		}
	}
}

// SplitGeoFields replaces each known geolocation field whose value is a
// string with the four derived component columns. A well-formed value has
// exactly four space-separated parts (latitude, longitude, altitude,
// precision); anything else degrades to four null components. The raw key is
// always removed. Recurses one level into nested repeat documents.
func SplitGeoFields(doc Document, geoFields []string) {
	updated := Document{}
	for key, value := range doc {
		if isGeoField(key, geoFields) {
			if s, ok := value.(string); ok {
				xpaths := schema.GeoXPaths(key)
				for _, xpath := range xpaths {
					updated[xpath] = nil
				}
				parts := strings.Fields(s)
				if len(parts) == len(xpaths) {
					for i, xpath := range xpaths {
						updated[xpath] = parts[i]
					}
				}
				delete(doc, key)
			}
			continue
		}
		for _, nested := range NestedDocs(value) {
			SplitGeoFields(nested, geoFields)
		}
	}
	for key, value := range updated {
		doc[key] = value
	}
}

func isGeoField(key string, geoFields []string) bool {
	for _, f := range geoFields {
		if f == key {
			return true
		}
	}
	return false
}

// FlattenNotes collapses the reserved annotations field, if it is a list,
// into a single string joining each entry's note text.
func FlattenNotes(doc Document) {
	list, ok := doc[FieldNotes].([]any)
	if !ok {
		return
	}
	notes := make([]string, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if note, ok := entry["note"].(string); ok {
			notes = append(notes, note)
		}
	}
	doc[FieldNotes] = strings.Join(notes, NotesJoinSeparator)
}

// TagString rewrites the reserved tags field as a single comma-joined string.
// Tags are sorted lexicographically; a tag containing both a comma and a
// space is quoted so the joined form stays readable.
func TagString(doc Document) {
	list, ok := doc[FieldTags].([]any)
	if !ok {
		return
	}
	tags := make([]string, 0, len(list))
	for _, item := range list {
		tag := fmt.Sprint(item)
		if strings.Contains(tag, ",") && strings.Contains(tag, " ") {
			tag = `"` + tag + `"`
		}
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	doc[FieldTags] = strings.Join(tags, ", ")
}
