// Package geoindex answers bounding-box queries over a batch of incident
// points with an R-tree.
package geoindex

import (
	"slices"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/sf-incident-map/internal/domain"
)

// pointTolerance gives each point a non-degenerate envelope; rtreego rejects
// zero-length rectangles.
const pointTolerance = 1e-9

// Index is an immutable spatial index over one batch of points.
type Index struct {
	tree   *rtreego.Rtree
	points []domain.GeoPoint
}

type indexedPoint struct {
	pos      int
	envelope rtreego.Rect
}

func (ip *indexedPoint) Bounds() rtreego.Rect {
	return ip.envelope
}

// New indexes points. The slice is retained, not copied.
func New(points []domain.GeoPoint) *Index {
	tree := rtreego.NewTree(2, 25, 50)
	for i, p := range points {
		tree.Insert(&indexedPoint{
			pos:      i,
			envelope: rtreego.Point{p.Coordinates[0], p.Coordinates[1]}.ToRect(pointTolerance),
		})
	}
	return &Index{tree: tree, points: points}
}

// Len reports the number of indexed points.
func (ix *Index) Len() int {
	return len(ix.points)
}

// Within returns the points inside bound, in their original batch order.
func (ix *Index) Within(bound orb.Bound) []domain.GeoPoint {
	if len(ix.points) == 0 {
		return nil
	}
	width := bound.Max.Lon() - bound.Min.Lon()
	height := bound.Max.Lat() - bound.Min.Lat()
	if width < 0 || height < 0 {
		return nil
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{bound.Min.Lon(), bound.Min.Lat()},
		[]float64{max(width, pointTolerance), max(height, pointTolerance)},
	)
	if err != nil {
		return nil
	}

	hits := ix.tree.SearchIntersect(rect)
	positions := make([]int, 0, len(hits))
	for _, h := range hits {
		ip := h.(*indexedPoint)
		if bound.Contains(ix.points[ip.pos].Point()) {
			positions = append(positions, ip.pos)
		}
	}
	slices.Sort(positions)

	out := make([]domain.GeoPoint, len(positions))
	for i, pos := range positions {
		out[i] = ix.points[pos]
	}
	return out
}
