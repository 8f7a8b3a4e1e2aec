package graph

import (
	"fmt"
	"strconv"
	"strings"

	"circuitee/internal/designer/models"
)

// ============================================================
// Labels
// ============================================================

// nextLabel returns the lowest unused label of the kind's family. Point and
// linear lights share the L sequence, switches use SW.
func nextLabel(elements []*models.Element, kind models.Kind) string {
	prefix := kind.LabelPrefix()
	used := make(map[int]struct{}, len(elements))
	for _, el := range elements {
		if el.Kind.LabelPrefix() != prefix {
			continue
		}
		if n, ok := labelNumber(el.Label, prefix); ok {
			used[n] = struct{}{}
		}
	}

	n := 1
	for {
		if _, taken := used[n]; !taken {
			break
		}
		n++
	}
	return fmt.Sprintf("%s%d", prefix, n)
}

func labelNumber(label, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(label, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// idNumber extracts the numeric suffix of ids like element-7 or c12.
func idNumber(id, prefix string) (int, bool) {
	return labelNumber(id, prefix)
}
