// Package sequence produces the human-readable identifiers shown to staff and
// printed on documents, e.g. RNT-0007.
package sequence

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

// Prefix tags a sequence space.
type Prefix string

const (
	Project        Prefix = "PRJ"
	Property       Prefix = "PRP"
	Customer       Prefix = "CUS"
	Rental         Prefix = "RNT"
	Transaction    Prefix = "TPL"
	Receipt        Prefix = "RCP"
	Document       Prefix = "DOC"
	RentalContract Prefix = "RCN"
	SaleContract   Prefix = "SCN"
)

// Width is the zero padding used by every sequence space.
const Width = 4

var (
	patternsMu sync.Mutex
	patterns   = map[Prefix]*regexp.Regexp{}
)

func pattern(prefix Prefix) *regexp.Regexp {
	patternsMu.Lock()
	defer patternsMu.Unlock()

	re, ok := patterns[prefix]
	if !ok {
		re = regexp.MustCompile(`^` + regexp.QuoteMeta(string(prefix)) + `-(\d+)$`)
		patterns[prefix] = re
	}

	return re
}

// Parse extracts the numeric suffix of id. Malformed identifiers report false.
func Parse(id string, prefix Prefix) (int, bool) {
	m := pattern(prefix).FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}

	return n, true
}

// Next returns the identifier following the highest one in existing.
// Gaps are never filled, so deleted numbers are never handed out again.
// Callers must hold whatever lock protects the collection the snapshot came from.
func Next(existing []string, prefix Prefix, width int) string {
	highest := 0

	for _, id := range existing {
		n, _ := Parse(id, prefix)
		highest = max(highest, n)
	}

	return Format(prefix, highest+1, width)
}

// Format renders n in the prefix space.
func Format(prefix Prefix, n, width int) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, n)
}
