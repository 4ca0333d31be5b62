package export

import (
	"fmt"
	"strconv"

	"github.com/openrow/tabular/pkg/tabular/internalerr"
)

// SheetNameMaxLen bounds generated table and sheet names.
const SheetNameMaxLen = 30

// assignSheetName generates a unique, length-bounded name from a candidate.
func assignSheetName(candidate string, existing map[string]bool) (string, error) {
	return assignName(candidate, existing, SheetNameMaxLen)
}

// assignName truncates the candidate to maxLen runes; on collision an
// increasing integer suffix is appended, re-truncating the base whenever the
// suffix's digit count grows so the combined name still fits. The suffix may
// consume the whole budget. The search space is finite: once the suffix alone
// no longer fits, the namer gives up instead of looping forever.
func assignName(candidate string, existing map[string]bool, maxLen int) (string, error) {
	base := truncateRunes(candidate, maxLen)
	if !existing[base] {
		return base, nil
	}
	for i := 1; ; i++ {
		suffix := strconv.Itoa(i)
		if len(suffix) > maxLen {
			return "", fmt.Errorf("naming %q: %w", candidate, internalerr.ErrNameSpaceExhausted)
		}
		if name := truncateRunes(base, maxLen-len(suffix)) + suffix; !existing[name] {
			return name, nil
		}
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
