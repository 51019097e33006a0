package toolpath

import (
	"math"
	"sort"

	"github.com/asim/quadtree"
)

var zeroPoint = quadtree.NewPoint(0, 0, nil)

// pathTree indexes the endpoints of unplaced paths so the ordering pass can
// find the nearest next path without scanning the whole pool.
type pathTree struct {
	quadTree *quadtree.QuadTree
	width    float64
	height   float64
}

// pathItem wraps a Path so it can be used as a map key in the tree's point
// payloads.
type pathItem struct {
	path Path
}

func newPathTree(minX, minY, maxX, maxY float64) *pathTree {
	midX := (maxX + minX) / 2
	midY := (maxY + minY) / 2
	halfWidth := maxX - midX
	halfHeight := maxY - midY

	// Small margin so endpoints sitting exactly on the bounds still insert.
	halfWidth += 10
	halfHeight += 10

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfWidth, halfHeight, nil))
	return &pathTree{
		quadTree: quadtree.New(aabb, 0, nil),
		width:    halfWidth * 2,
		height:   halfHeight * 2,
	}
}

func (t *pathTree) endpointDistance(x, y float64, item *pathItem) float64 {
	s, e := item.path.Start(), item.path.End()
	ds := math.Hypot(s.X-x, s.Y-y)
	de := math.Hypot(e.X-x, e.Y-y)
	return math.Min(ds, de)
}

func (t *pathTree) addPath(item *pathItem) {
	if len(item.path) == 0 {
		return
	}

	addOne := func(x, y float64) {
		point := quadtree.NewPoint(x, y, nil)
		points := t.quadTree.KNearest(quadtree.NewAABB(point, zeroPoint), 1, nil)
		if len(points) > 0 {
			px, py := points[0].Coordinates()
			if px == x && py == y {
				items := points[0].Data().(map[*pathItem]struct{})
				items[item] = struct{}{}
				return
			}
		}
		items := map[*pathItem]struct{}{item: {}}
		t.quadTree.Insert(quadtree.NewPoint(x, y, items))
	}

	addOne(item.path.Start().X, item.path.Start().Y)
	addOne(item.path.End().X, item.path.End().Y)
}

func (t *pathTree) removePath(item *pathItem) {
	removeOne := func(x, y float64) {
		point := quadtree.NewPoint(x, y, nil)
		points := t.quadTree.KNearest(quadtree.NewAABB(point, zeroPoint), 1, nil)
		if len(points) > 0 {
			px, py := points[0].Coordinates()
			if px == x && py == y {
				items := points[0].Data().(map[*pathItem]struct{})
				delete(items, item)
				if len(items) == 0 {
					t.quadTree.Remove(points[0])
				}
			}
		}
	}
	removeOne(item.path.Start().X, item.path.Start().Y)
	removeOne(item.path.End().X, item.path.End().Y)
}

// findNearest returns up to maxCount unplaced paths ordered by the distance
// from (x, y) to their nearest endpoint.
func (t *pathTree) findNearest(x, y float64, maxCount int) []*pathItem {
	aabb := quadtree.NewAABB(
		quadtree.NewPoint(x, y, nil),
		quadtree.NewPoint(t.width, t.height, nil),
	)
	points := t.quadTree.KNearest(aabb, maxCount+50, nil)

	var nearest []*pathItem
	seen := map[*pathItem]struct{}{}
	for _, point := range points {
		for item := range point.Data().(map[*pathItem]struct{}) {
			if _, dup := seen[item]; !dup {
				seen[item] = struct{}{}
				nearest = append(nearest, item)
			}
		}
	}

	sort.Slice(nearest, func(i, j int) bool {
		return t.endpointDistance(x, y, nearest[i]) < t.endpointDistance(x, y, nearest[j])
	})

	if len(nearest) > maxCount {
		nearest = nearest[:maxCount]
	}
	return nearest
}
