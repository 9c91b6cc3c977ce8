package detection

import (
	"github.com/rs/zerolog/log"

	"github.com/ironsheep/slidemarks/internal/imaging"
)

// Box is an axis-aligned bounding box in raster pixel coordinates.
//
// (X, Y) is the top-left pixel of the component; W and H count pixels, so a
// single isolated pixel has W = H = 1.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Center returns the box center in fractional pixel coordinates.
func (b Box) Center() (float64, float64) {
	return float64(b.X) + float64(b.W)/2, float64(b.Y) + float64(b.H)/2
}

// Position is a marker candidate location on a page.
//
// X and Y are fractions of the rendered page width and height (0..1), so they
// do not depend on the render resolution. Page is 1-based.
type Position struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// SizeFilter bounds the accepted component size in raster pixels.
type SizeFilter struct {
	Min int `yaml:"minSize" json:"minSize"`
	Max int `yaml:"maxSize" json:"maxSize"`
}

// DefaultSizeFilter is tuned to marker glyphs rendered at 2x zoom.
func DefaultSizeFilter() SizeFilter {
	return SizeFilter{Min: 10, Max: 200}
}

// Accept reports whether a box is within the size band on both axes.
func (f SizeFilter) Accept(b Box) bool {
	return b.W >= f.Min && b.H >= f.Min && b.W <= f.Max && b.H <= f.Max
}

// ExtractPositions finds marker candidates in a mask.
//
// Every external connected component that passes the size filter yields one
// Position at its bounding box center, normalized by the mask dimensions.
// Rejected components are dropped silently. The order of the result follows
// the raster scan order of each component's first pixel; callers must not
// rely on it.
func ExtractPositions(m *imaging.Mask, page int, filter SizeFilter) []Position {
	positions := make([]Position, 0)
	if m.Width == 0 || m.Height == 0 {
		return positions
	}

	for _, b := range Components(m) {
		if !filter.Accept(b) {
			log.Debug().Int("page", page).Int("w", b.W).Int("h", b.H).Msg("size filter rejected region")
			continue
		}
		cx, cy := b.Center()
		p := Position{
			Page: page,
			X:    cx / float64(m.Width),
			Y:    cy / float64(m.Height),
		}
		log.Debug().Int("page", page).Float64("x", p.X).Float64("y", p.Y).Msg("found marker region")
		positions = append(positions, p)
	}
	return positions
}

// Components returns the bounding boxes of the external connected components
// of marker pixels.
//
// Marker pixels are grouped with 8-connectivity. A component is external when
// it touches the image border or is 4-adjacent to background that can reach
// the border; components sitting inside a hole of another component are
// skipped. Boxes are returned in raster scan order of their first pixel.
//
// # Algorithm
//
//  1. Flood the background from the border with 4-connectivity to find the
//     "outside" region (holes are the background pixels it never reaches)
//  2. Label marker components with an iterative 8-connected BFS
//  3. Keep components that touch the border or the outside region
//
// The BFS uses an explicit queue, so very large components cannot overflow
// the stack.
func Components(m *imaging.Mask) []Box {
	width, height := m.Width, m.Height
	boxes := make([]Box, 0)
	if width == 0 || height == 0 {
		return boxes
	}

	outside := outsideBackground(m)
	visited := make([]bool, width*height)
	queue := make([]int, 0, 1024)

	for start := range m.Bits {
		if !m.Bits[start] || visited[start] {
			continue
		}

		minX, minY := width, height
		maxX, maxY := -1, -1
		external := false

		queue = queue[:0]
		queue = append(queue, start)
		visited[start] = true

		for head := 0; head < len(queue); head++ {
			idx := queue[head]
			x, y := idx%width, idx/width

			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}

			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				external = true
			}

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					ni := ny*width + nx
					if !m.Bits[ni] {
						if !external && (dx == 0 || dy == 0) && outside[ni] {
							external = true
						}
						continue
					}
					if !visited[ni] {
						visited[ni] = true
						queue = append(queue, ni)
					}
				}
			}
		}

		if !external {
			continue
		}
		boxes = append(boxes, Box{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1})
	}

	return boxes
}

// outsideBackground marks background pixels 4-connected to the image border.
func outsideBackground(m *imaging.Mask) []bool {
	width, height := m.Width, m.Height
	outside := make([]bool, width*height)
	queue := make([]int, 0, 2*(width+height))

	seed := func(x, y int) {
		i := y*width + x
		if !m.Bits[i] && !outside[i] {
			outside[i] = true
			queue = append(queue, i)
		}
	}
	for x := 0; x < width; x++ {
		seed(x, 0)
		seed(x, height-1)
	}
	for y := 0; y < height; y++ {
		seed(0, y)
		seed(width-1, y)
	}

	dxs := [4]int{1, -1, 0, 0}
	dys := [4]int{0, 0, 1, -1}
	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		x, y := idx%width, idx/width
		for d := 0; d < 4; d++ {
			nx, ny := x+dxs[d], y+dys[d]
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			seed(nx, ny)
		}
	}
	return outside
}
