package detection

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is inclusive, (X2, Y2) is exclusive.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Blob is one 8-connected component of foreground pixels.
type Blob struct {
	// Bounds is the bounding box enclosing every pixel of the blob.
	Bounds Bounds `json:"bounds"`

	// Area is the number of foreground pixels in the blob.
	Area int `json:"area"`

	// Pixels lists the blob members. Only populated by FindBlobs.
	Pixels []Point `json:"-"`
}

// FindBlobs labels every 8-connected foreground component in mask.
//
// Parameters:
//   - mask: foreground mask indexed mask[y][x]. All rows must have length width.
//   - width, height: mask dimensions.
//
// Returns blobs in raster order of their first (top-most, then left-most)
// pixel. The mask is not modified.
func FindBlobs(mask [][]bool, width, height int) []Blob {
	return findBlobsIn(mask, Bounds{X1: 0, Y1: 0, X2: width, Y2: height}, true)
}

// LargestBlobArea returns the area of the largest component of mask when
// connectivity is confined to the window b. Pixels outside b are treated as
// background. Returns 0 when the window holds no foreground.
func LargestBlobArea(mask [][]bool, b Bounds) int {
	largest := 0
	for _, blob := range findBlobsIn(mask, b, false) {
		if blob.Area > largest {
			largest = blob.Area
		}
	}
	return largest
}

// FilterBlobs clears, in place, every component whose area is below minArea
// or above maxArea. A maxArea of 0 or less disables the upper bound.
//
// Returns the number of foreground pixels that were cleared.
//
// # Use In The Pipeline
//
// Specks from paper grain or JPEG artefacts rarely exceed a handful of
// pixels, while printed form rules and shadows connect into components far
// larger than any single checkbox. Both are rejected before scoring.
func FilterBlobs(mask [][]bool, width, height, minArea, maxArea int) int {
	cleared := 0
	for _, blob := range FindBlobs(mask, width, height) {
		if blob.Area >= minArea && (maxArea <= 0 || blob.Area <= maxArea) {
			continue
		}
		for _, p := range blob.Pixels {
			mask[p.Y][p.X] = false
		}
		cleared += blob.Area
	}
	return cleared
}

// findBlobsIn runs the flood fill over the window b. keepPixels controls
// whether member coordinates are retained on each Blob.
func findBlobsIn(mask [][]bool, b Bounds, keepPixels bool) []Blob {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1
	if w <= 0 || h <= 0 {
		return nil
	}

	visited := make([][]bool, h)
	for y := range visited {
		visited[y] = make([]bool, w)
	}

	blobs := make([]Blob, 0)
	for y := b.Y1; y < b.Y2; y++ {
		for x := b.X1; x < b.X2; x++ {
			if mask[y][x] && !visited[y-b.Y1][x-b.X1] {
				blobs = append(blobs, floodFill(mask, visited, x, y, b, keepPixels))
			}
		}
	}
	return blobs
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow on
// large components. Uses 8-connectivity (includes diagonal neighbors).
func floodFill(mask, visited [][]bool, startX, startY int, b Bounds, keepPixels bool) Blob {
	blob := Blob{Bounds: Bounds{X1: startX, Y1: startY, X2: startX + 1, Y2: startY + 1}}
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < b.X1 || p.X >= b.X2 || p.Y < b.Y1 || p.Y >= b.Y2 {
			continue
		}
		if visited[p.Y-b.Y1][p.X-b.X1] || !mask[p.Y][p.X] {
			continue
		}

		visited[p.Y-b.Y1][p.X-b.X1] = true
		blob.Area++
		if keepPixels {
			blob.Pixels = append(blob.Pixels, p)
		}
		blob.Bounds.X1 = min(blob.Bounds.X1, p.X)
		blob.Bounds.Y1 = min(blob.Bounds.Y1, p.Y)
		blob.Bounds.X2 = max(blob.Bounds.X2, p.X+1)
		blob.Bounds.Y2 = max(blob.Bounds.Y2, p.Y+1)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return blob
}
