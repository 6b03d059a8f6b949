package conform

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/chazu/conformal/pkg/geom"
)

type primitiveKind int

const (
	kindVertex primitiveKind = iota
	kindLine
	kindRectangle
	kindCuboid
)

func (k primitiveKind) String() string {
	switch k {
	case kindVertex:
		return "vertex"
	case kindLine:
		return "line"
	case kindRectangle:
		return "rectangle"
	default:
		return "cuboid"
	}
}

type indexKey struct {
	kind primitiveKind
	id   int
}

type indexEntry struct {
	key    indexKey
	bounds rtreego.Rect
}

func (e *indexEntry) Bounds() rtreego.Rect { return e.bounds }

// spatialIndex is the broad phase over every active primitive. Boxes are
// padded so that touching and degenerate (flat) extents still overlap.
type spatialIndex struct {
	tree    *rtreego.Rtree
	entries map[indexKey]*indexEntry
	pad     float64
}

func newSpatialIndex(pad float64) *spatialIndex {
	return &spatialIndex{
		tree:    rtreego.NewTree(3, 16, 64),
		entries: make(map[indexKey]*indexEntry),
		pad:     pad,
	}
}

func (x *spatialIndex) rect(lo, hi geom.Vec) rtreego.Rect {
	pad := geom.V(x.pad, x.pad, x.pad)
	lower := geom.Min(lo, hi).Sub(pad)
	upper := geom.Max(lo, hi).Add(pad)
	r, err := rtreego.NewRectFromPoints(
		rtreego.Point{lower.X, lower.Y, lower.Z},
		rtreego.Point{upper.X, upper.Y, upper.Z},
	)
	if err != nil {
		panic("conform: invalid index bounds: " + err.Error())
	}
	return r
}

func (x *spatialIndex) insert(kind primitiveKind, id int, lo, hi geom.Vec) {
	e := &indexEntry{key: indexKey{kind, id}, bounds: x.rect(lo, hi)}
	x.entries[e.key] = e
	x.tree.Insert(e)
}

func (x *spatialIndex) remove(kind primitiveKind, id int) {
	k := indexKey{kind, id}
	e, ok := x.entries[k]
	if !ok {
		return
	}
	x.tree.Delete(e)
	delete(x.entries, k)
}

// search returns the keys whose boxes overlap lo..hi, ordered by kind and
// then by id so that callers act deterministically.
func (x *spatialIndex) search(lo, hi geom.Vec) []indexKey {
	hits := x.tree.SearchIntersect(x.rect(lo, hi))
	keys := make([]indexKey, 0, len(hits))
	for _, h := range hits {
		keys = append(keys, h.(*indexEntry).key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].id < keys[j].id
	})
	return keys
}

func (x *spatialIndex) size() int { return len(x.entries) }
