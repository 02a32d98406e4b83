package tiff

import (
	"fmt"
	"slices"
)

// PlaneRegion is a rectangle of pixels within a plane.
type PlaneRegion struct {
	X, Y, W, H int
}

// Empty reports whether r covers no pixels.
func (r PlaneRegion) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Area returns the number of pixels covered.
func (r PlaneRegion) Area() int {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// Intersect returns the overlap of r and o, which is empty if they do
// not overlap.
func (r PlaneRegion) Intersect(o PlaneRegion) PlaneRegion {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return PlaneRegion{}
	}
	return PlaneRegion{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the bounding box of r and o. An empty region does not
// contribute.
func (r PlaneRegion) Union(o PlaneRegion) PlaneRegion {
	switch {
	case r.Empty():
		return o
	case o.Empty():
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.W, o.X+o.W), max(r.Y+r.H, o.Y+o.H)
	return PlaneRegion{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether o lies entirely within r.
func (r PlaneRegion) Contains(o PlaneRegion) bool {
	return !o.Empty() && o.X >= r.X && o.Y >= r.Y && o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

func (r PlaneRegion) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}

// addRegion adds r to rs. Regions that r contains or extends into a
// larger rectangle are merged with it, so rows or columns written in
// sequence stay a single region.
func addRegion(rs []PlaneRegion, r PlaneRegion) []PlaneRegion {
	for _, e := range rs {
		if e.Contains(r) {
			return rs
		}
	}
	for i := 0; i < len(rs); {
		if e := rs[i]; r.Contains(e) || adjoins(r, e) {
			r = r.Union(e)
			rs = slices.Delete(rs, i, i+1)
			i = 0
			continue
		}
		i++
	}
	return append(rs, r)
}

// adjoins reports whether a and b share a full edge or overlap along it,
// so that their union is a rectangle.
func adjoins(a, b PlaneRegion) bool {
	if a.X == b.X && a.W == b.W {
		return a.Y <= b.Y+b.H && b.Y <= a.Y+a.H
	}
	if a.Y == b.Y && a.H == b.H {
		return a.X <= b.X+b.W && b.X <= a.X+a.W
	}
	return false
}

// unionArea returns the number of pixels covered by at least one of rs.
func unionArea(rs []PlaneRegion) int {
	switch len(rs) {
	case 0:
		return 0
	case 1:
		return rs[0].Area()
	}
	xs := make([]int, 0, 2*len(rs))
	ys := make([]int, 0, 2*len(rs))
	for _, r := range rs {
		xs = append(xs, r.X, r.X+r.W)
		ys = append(ys, r.Y, r.Y+r.H)
	}
	slices.Sort(xs)
	slices.Sort(ys)
	xs = slices.Compact(xs)
	ys = slices.Compact(ys)

	area := 0
	for i := 0; i+1 < len(xs); i++ {
		for j := 0; j+1 < len(ys); j++ {
			cell := PlaneRegion{X: xs[i], Y: ys[j], W: xs[i+1] - xs[i], H: ys[j+1] - ys[j]}
			for _, r := range rs {
				if r.Contains(cell) {
					area += cell.Area()
					break
				}
			}
		}
	}
	return area
}
