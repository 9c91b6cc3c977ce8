package detection

import (
	"fmt"
	"sort"
)

// DefaultIDPrefix is the annotation identifier prefix.
const DefaultIDPrefix = "SLIDE"

// Annotation is a clustered marker position with its assigned identifier.
type Annotation struct {
	ID   string  `json:"id"`
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Sequence orders positions in reading order and assigns identifiers.
//
// Positions from all pages are stable-sorted by (page, y, x). The position at
// rank i (0-based) receives FormatID(prefix, i+1), so identifiers run without
// gaps across page boundaries. Exact ties keep their input order.
func Sequence(positions []Position, prefix string) []Annotation {
	sorted := make([]Position, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	annotations := make([]Annotation, 0, len(sorted))
	for i, p := range sorted {
		annotations = append(annotations, Annotation{
			ID:   FormatID(prefix, i+1),
			Page: p.Page,
			X:    p.X,
			Y:    p.Y,
		})
	}
	return annotations
}

// FormatID renders an identifier such as "SLIDE-007". Numbers wider than
// three digits are printed in full.
func FormatID(prefix string, n int) string {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return fmt.Sprintf("%s-%03d", prefix, n)
}
