package detection

import (
	"math"
	"sort"
)

// DefaultClusterThreshold is the merge distance in normalized page units.
const DefaultClusterThreshold = 0.05

// Groups partitions same-page positions into marker groups.
//
// Positions are stable-sorted by (y, x). The first position seeds a group;
// each following position joins the current group when its distance to the
// nearest member is strictly less than threshold, otherwise the current group
// is closed and a new one starts. Only the current group is ever compared
// against, so a chain of close neighbours is merged even when its ends are
// farther apart than threshold.
//
// Every input position lands in exactly one group. The input slice is not
// reordered.
func Groups(positions []Position, threshold float64) [][]Position {
	if len(positions) == 0 {
		return nil
	}

	sorted := make([]Position, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var groups [][]Position
	current := []Position{sorted[0]}
	for _, p := range sorted[1:] {
		if minDistance(p, current) < threshold {
			current = append(current, p)
			continue
		}
		groups = append(groups, current)
		current = []Position{p}
	}
	return append(groups, current)
}

// Cluster merges same-page positions that belong to one marker and returns
// one centroid per group (see Groups). Empty input yields an empty result.
func Cluster(positions []Position, threshold float64) []Position {
	groups := Groups(positions, threshold)
	clustered := make([]Position, 0, len(groups))
	for _, g := range groups {
		clustered = append(clustered, centroid(g))
	}
	return clustered
}

// ClusterByPage splits positions by page, clusters each page independently
// and concatenates the results in ascending page order.
func ClusterByPage(positions []Position, threshold float64) []Position {
	byPage := make(map[int][]Position)
	pages := make([]int, 0)
	for _, p := range positions {
		if _, ok := byPage[p.Page]; !ok {
			pages = append(pages, p.Page)
		}
		byPage[p.Page] = append(byPage[p.Page], p)
	}
	sort.Ints(pages)

	clustered := make([]Position, 0, len(positions))
	for _, page := range pages {
		clustered = append(clustered, Cluster(byPage[page], threshold)...)
	}
	return clustered
}

// minDistance is the Euclidean distance from p to the nearest group member.
func minDistance(p Position, group []Position) float64 {
	best := math.Inf(1)
	for _, q := range group {
		if d := math.Hypot(p.X-q.X, p.Y-q.Y); d < best {
			best = d
		}
	}
	return best
}

// centroid averages a non-empty group; the page is taken from its first member.
func centroid(group []Position) Position {
	var sumX, sumY float64
	for _, p := range group {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(group))
	return Position{Page: group[0].Page, X: sumX / n, Y: sumY / n}
}
