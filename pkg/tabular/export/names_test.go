package export

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/openrow/tabular/pkg/tabular/internalerr"
)

func TestAssignSheetNameNoCollision(t *testing.T) {
	name, err := assignSheetName("children", map[string]bool{})
	if err != nil {
		t.Fatalf("assignSheetName failed: %v", err)
	}
	if name != "children" {
		t.Errorf("Expected children, got %q", name)
	}
}

func TestAssignSheetNameTruncates(t *testing.T) {
	long := strings.Repeat("a", 45)
	name, err := assignSheetName(long, map[string]bool{})
	if err != nil {
		t.Fatalf("assignSheetName failed: %v", err)
	}
	if len(name) != SheetNameMaxLen {
		t.Errorf("Expected length %d, got %d (%q)", SheetNameMaxLen, len(name), name)
	}
}

func TestAssignSheetNameSuffixesOnCollision(t *testing.T) {
	existing := map[string]bool{"children": true}
	name, err := assignSheetName("children", existing)
	if err != nil {
		t.Fatalf("assignSheetName failed: %v", err)
	}
	if name != "children1" {
		t.Errorf("Expected children1, got %q", name)
	}
}

func TestAssignSheetNameRetruncatesForSuffix(t *testing.T) {
	long := strings.Repeat("b", SheetNameMaxLen)
	existing := map[string]bool{long: true}
	name, err := assignSheetName(long, existing)
	if err != nil {
		t.Fatalf("assignSheetName failed: %v", err)
	}
	want := strings.Repeat("b", SheetNameMaxLen-1) + "1"
	if name != want {
		t.Errorf("Expected %q, got %q", want, name)
	}
}

func TestAssignSheetNameNeverDuplicates(t *testing.T) {
	existing := map[string]bool{}
	for i := 0; i < 500; i++ {
		name, err := assignSheetName("section", existing)
		if err != nil {
			t.Fatalf("assignSheetName failed at %d: %v", i, err)
		}
		if existing[name] {
			t.Fatalf("Duplicate name %q at iteration %d", name, i)
		}
		if len(name) > SheetNameMaxLen {
			t.Fatalf("Name %q exceeds max length", name)
		}
		existing[name] = true
	}
}

func TestAssignSheetNameSuffixDigitGrowth(t *testing.T) {
	existing := map[string]bool{"s": true}
	for i := 1; i <= 9; i++ {
		name, err := assignSheetName("s", existing)
		if err != nil {
			t.Fatalf("assignSheetName failed: %v", err)
		}
		existing[name] = true
	}
	// the next assignment needs a two-digit suffix
	name, err := assignSheetName("s", existing)
	if err != nil {
		t.Fatalf("assignSheetName failed: %v", err)
	}
	if name != "s10" {
		t.Errorf("Expected s10, got %q", name)
	}
}

func TestAssignNameSuffixMayFillBudget(t *testing.T) {
	// once the single-digit names are taken, a 2-char budget still has the
	// bare two-digit suffixes left
	existing := map[string]bool{"xx": true}
	for i := 1; i <= 9; i++ {
		existing["x"+strconv.Itoa(i)] = true
	}
	name, err := assignName("xx", existing, 2)
	if err != nil {
		t.Fatalf("assignName failed: %v", err)
	}
	if name != "10" {
		t.Errorf("Expected 10, got %q", name)
	}
}

func TestAssignNameExhaustion(t *testing.T) {
	// with a 2-char budget the namer can produce "xx", "x1".."x9" and
	// "10".."99"; once those are taken it must fail instead of looping forever
	existing := map[string]bool{"xx": true}
	for i := 1; i <= 9; i++ {
		existing["x"+strconv.Itoa(i)] = true
	}
	for i := 10; i <= 99; i++ {
		existing[strconv.Itoa(i)] = true
	}
	_, err := assignName("xx", existing, 2)
	if !errors.Is(err, internalerr.ErrNameSpaceExhausted) {
		t.Errorf("Expected ErrNameSpaceExhausted, got %v", err)
	}
}

func TestAssignSheetNameMultibyteTruncation(t *testing.T) {
	long := strings.Repeat("é", SheetNameMaxLen+5)
	name, err := assignSheetName(long, map[string]bool{})
	if err != nil {
		t.Fatalf("assignSheetName failed: %v", err)
	}
	if !utf8.ValidString(name) {
		t.Errorf("Truncation split a rune: %q", name)
	}
	if got := utf8.RuneCountInString(name); got != SheetNameMaxLen {
		t.Errorf("Expected %d runes, got %d (%q)", SheetNameMaxLen, got, name)
	}
}
