package schema

import (
	"reflect"
	"testing"
)

const testForm = `
name: household_survey
children:
  - name: respondent
    type: text
  - name: loc
    type: geopoint
  - name: colors
    type: select all that apply
    children:
      - name: red
      - name: green
      - name: blue
  - name: meta
    type: group
    children:
      - name: hint
        type: note
      - name: enumerator
        type: text
  - name: children
    type: repeat
    children:
      - name: name
        type: text
      - name: age
        type: integer
`

func TestParsePathsAndKinds(t *testing.T) {
	root, err := Parse([]byte(testForm))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if root.Name != "household_survey" {
		t.Errorf("Expected root name household_survey, got %q", root.Name)
	}
	if len(root.Children) != 5 {
		t.Fatalf("Expected 5 top-level children, got %d", len(root.Children))
	}

	// child paths exclude the root name
	if got := root.Children[0].Path; got != "respondent" {
		t.Errorf("Expected path respondent, got %q", got)
	}

	loc := root.Children[1]
	if loc.Kind != KindQuestion || loc.BindType != GeopointBindType {
		t.Errorf("Expected geopoint question, got kind=%v bind=%q", loc.Kind, loc.BindType)
	}

	colors := root.Children[2]
	if colors.Kind != KindSelectMultiple {
		t.Errorf("Expected select-multiple kind, got %v", colors.Kind)
	}
	if got := colors.Children[0].Path; got != "colors/red" {
		t.Errorf("Expected option path colors/red, got %q", got)
	}

	meta := root.Children[3]
	if meta.Kind != KindGroup {
		t.Errorf("Expected group kind, got %v", meta.Kind)
	}
	if got := meta.Children[1].Path; got != "meta/enumerator" {
		t.Errorf("Expected nested path meta/enumerator, got %q", got)
	}
	if !meta.Children[0].Excluded() {
		t.Errorf("Expected note question to be excluded")
	}

	repeat := root.Children[4]
	if repeat.Kind != KindRepeat {
		t.Errorf("Expected repeat kind, got %v", repeat.Kind)
	}
	if got := repeat.Children[1].Path; got != "children/age" {
		t.Errorf("Expected path children/age, got %q", got)
	}
}

func TestParseRejectsNamelessForm(t *testing.T) {
	if _, err := Parse([]byte("children: []")); err == nil {
		t.Errorf("Expected an error for a form without a name")
	}
}

func TestGeoXPaths(t *testing.T) {
	got := GeoXPaths("loc")
	want := []string{"_loc_latitude", "_loc_longitude", "_loc_altitude", "_loc_precision"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GeoXPaths(loc) = %v, want %v", got, want)
	}

	got = GeoXPaths("visit/loc")
	if got[0] != "visit/_loc_latitude" {
		t.Errorf("Expected nested component visit/_loc_latitude, got %q", got[0])
	}
}

func TestBuildIndex(t *testing.T) {
	root, err := Parse([]byte(testForm))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	idx := BuildIndex(root)

	wantFields := []string{
		"respondent", "loc", "colors", "meta/enumerator", "children/name", "children/age",
	}
	if !reflect.DeepEqual(idx.Fields, wantFields) {
		t.Errorf("Fields = %v, want %v", idx.Fields, wantFields)
	}

	wantOptions := []string{"colors/red", "colors/green", "colors/blue"}
	if !reflect.DeepEqual(idx.SelectMultiples["colors"], wantOptions) {
		t.Errorf("SelectMultiples[colors] = %v, want %v", idx.SelectMultiples["colors"], wantOptions)
	}

	if !reflect.DeepEqual(idx.GeoFields, []string{"loc"}) {
		t.Errorf("GeoFields = %v, want [loc]", idx.GeoFields)
	}
}
