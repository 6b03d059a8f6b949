package conform

import (
	"fmt"
	"time"

	"github.com/chazu/conformal/pkg/room"
)

// Pipeline stage names, as they appear in logs and metrics.
const (
	StageDetect     = "detect"
	StageMembership = "membership"
	StageCleanup    = "cleanup"
	StageAssociate  = "associate"
)

// MakeConformal runs the conformation pipeline once: detect and split
// every intersection, fold new vertices into the spaces, sweep retired
// primitives and re-associate rectangles with their lines. It may be
// called only once per model.
func (m *Model) MakeConformal() (err error) {
	if m.conformed {
		return configErrorf("make_conformal", "model is already conformed")
	}

	start := time.Now()
	m.log.Info("conformation started",
		"spaces", len(m.spaces),
		"vertices", len(m.vertices),
		"lines", len(m.lineOrder),
		"rectangles", len(m.rectOrder),
	)
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			m.log.Error("conformation failed", "error", err)
		}
		m.metrics.RecordRun(status)
	}()

	stages := []struct {
		name string
		run  func() error
	}{
		{StageDetect, m.detect},
		{StageMembership, m.membership},
		{StageCleanup, m.cleanup},
		{StageAssociate, m.associate},
	}
	for _, st := range stages {
		t0 := time.Now()
		if err := st.run(); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
		d := time.Since(t0)
		m.metrics.RecordStage(st.name, d)
		m.log.Info("stage complete", "stage", st.name, "duration", d)
	}

	m.conformed = true
	m.metrics.UpdateModel(len(m.vertices), len(m.lineOrder), len(m.rectOrder), len(m.cuboidOrder), len(m.spaces))
	m.log.Info("conformation complete",
		"duration", time.Since(start),
		"vertices", len(m.vertices),
		"lines", len(m.lineOrder),
		"rectangles", len(m.rectOrder),
		"cuboids", len(m.cuboidOrder),
	)
	return nil
}

// detect alternates intersection passes and vertex sweeps until neither
// registers a new vertex nor splits anything.
func (m *Model) detect() error {
	m.splitting = true
	defer func() { m.splitting = false }()

	for round := 1; ; round++ {
		changed, err := m.detectPass()
		if err != nil {
			return err
		}
		swept, err := m.sweep()
		if err != nil {
			return err
		}
		m.log.Debug("detection round", "round", round, "changed", changed, "swept", swept)
		if !changed && !swept {
			return nil
		}
	}
}

// detectPass tests every active rectangle against the lines near it and
// every active line against its neighbors. Primitives created by splits
// during the pass are appended to the active lists and tested too.
func (m *Model) detectPass() (bool, error) {
	changed := false

	for i := 0; i < len(m.rectOrder); i++ {
		r := m.rectangles[m.rectOrder[i]]
		if r.Deleted {
			continue
		}
		lo, hi := r.Bounds()
		for _, key := range m.index.search(lo, hi) {
			if key.kind != kindLine {
				continue
			}
			if r.Deleted {
				break
			}
			l := m.lines[key.id]
			if l.Deleted || r.HasLine(l.ID) {
				continue
			}
			p, ok := r.Intersects(l, m.tol)
			if !ok {
				continue
			}
			m.metrics.RecordIntersection("rectangle_line")
			_, c, err := m.registerVertex(p)
			if err != nil {
				return changed, err
			}
			changed = changed || c
		}
	}

	for i := 0; i < len(m.lineOrder); i++ {
		a := m.lines[m.lineOrder[i]]
		if a.Deleted {
			continue
		}
		for _, key := range m.index.search(a.A, a.B) {
			if key.kind != kindLine || key.id <= int(a.ID) {
				continue
			}
			if a.Deleted {
				break
			}
			b := m.lines[key.id]
			if b.Deleted {
				continue
			}
			p, ok := a.Intersects(b, m.tol)
			if !ok {
				continue
			}
			m.metrics.RecordIntersection("line_line")
			_, c, err := m.registerVertex(p)
			if err != nil {
				return changed, err
			}
			changed = changed || c
		}
	}
	return changed, nil
}

// sweep re-registers every vertex, splitting primitives that now contain
// one. This catches T-junctions, where a vertex touches another
// primitive at a line endpoint and no crossing is ever reported.
func (m *Model) sweep() (bool, error) {
	changed := false
	for i := 0; i < len(m.vertices); i++ {
		split, err := m.propagate(VertexID(i))
		if err != nil {
			return changed, err
		}
		if split {
			m.metrics.RecordIntersection("sweep")
		}
		changed = changed || split
	}
	return changed, nil
}

// membership folds every vertex into the spaces whose box holds it, then
// tags the primitives that lie on a room boundary.
func (m *Model) membership() error {
	for _, sp := range m.spaces {
		for _, key := range m.index.search(sp.Min, sp.Max) {
			if key.kind == kindVertex {
				sp.CheckVertex(VertexID(key.id))
			}
		}
	}
	m.tag()
	return nil
}

// tag marks primitives zoned when they carry a room surface or edge, and
// structural when one of those surfaces is of a load-bearing type.
func (m *Model) tag() {
	recorded := make(map[VertexID]bool)
	for _, sp := range m.spaces {
		for _, v := range sp.vertices.ids {
			recorded[v] = true
		}
		for _, cid := range sp.cuboids {
			m.cuboids[cid].Zoned = true
		}
	}

	markLine := func(lid LineID, structural bool) {
		l := m.lines[lid]
		l.Zoned = true
		l.Structural = l.Structural || structural
		for _, v := range l.Vertices {
			if recorded[v] {
				m.vertices[v].Zoned = true
				m.vertices[v].Structural = m.vertices[v].Structural || structural
			}
		}
	}

	for _, s := range m.surfaces {
		structural := room.Structural(s.Type)
		for _, rid := range s.rectangles {
			r := m.rectangles[rid]
			r.Zoned = true
			r.Structural = r.Structural || structural
			for _, lid := range r.Lines {
				markLine(lid, structural)
			}
			if structural {
				for _, cid := range r.cuboids {
					if c := m.cuboids[cid]; !c.Deleted {
						c.Structural = true
					}
				}
			}
		}
	}
	for _, e := range m.edges {
		for _, lid := range e.lines {
			markLine(lid, false)
		}
	}
}

// cleanup drops retired primitives from the active lists and from the
// adjacency lists of the survivors, then re-resolves every shadow node.
func (m *Model) cleanup() error {
	var n int
	m.cuboidOrder, n = compact(m.cuboidOrder, func(id CuboidID) bool { return m.cuboids[id].Deleted })
	m.metrics.RecordRetired(kindCuboid.String(), n)
	m.rectOrder, n = compact(m.rectOrder, func(id RectangleID) bool { return m.rectangles[id].Deleted })
	m.metrics.RecordRetired(kindRectangle.String(), n)
	m.lineOrder, n = compact(m.lineOrder, func(id LineID) bool { return m.lines[id].Deleted })
	m.metrics.RecordRetired(kindLine.String(), n)

	for _, id := range m.lineOrder {
		l := m.lines[id]
		l.rectangles, _ = compact(l.rectangles, func(id RectangleID) bool { return m.rectangles[id].Deleted })
	}
	for _, id := range m.rectOrder {
		r := m.rectangles[id]
		r.cuboids, _ = compact(r.cuboids, func(id CuboidID) bool { return m.cuboids[id].Deleted })
	}

	for _, e := range m.edges {
		e.resolve()
	}
	for _, s := range m.surfaces {
		s.resolve()
	}
	for _, sp := range m.spaces {
		sp.resolve()
	}
	return m.checkReferences()
}

// compact removes matching ids in place, stepping the index back after
// each removal.
func compact[T ~int](ids []T, deleted func(T) bool) ([]T, int) {
	n := 0
	for i := 0; i < len(ids); i++ {
		if deleted(ids[i]) {
			ids = append(ids[:i], ids[i+1:]...)
			i--
			n++
		}
	}
	return ids, n
}

// checkReferences fails if any shadow node still points at a retired
// primitive or has lost its primitives altogether.
func (m *Model) checkReferences() error {
	for _, e := range m.edges {
		if len(e.lines) == 0 {
			return fmt.Errorf("edge %d has no lines", e.ID)
		}
		for _, id := range e.lines {
			if m.lines[id].Deleted {
				return fmt.Errorf("edge %d references retired line %d", e.ID, id)
			}
		}
	}
	for _, s := range m.surfaces {
		if len(s.rectangles) == 0 {
			return fmt.Errorf("surface %d has no rectangles", s.ID)
		}
		for _, id := range s.rectangles {
			if m.rectangles[id].Deleted {
				return fmt.Errorf("surface %d references retired rectangle %d", s.ID, id)
			}
		}
	}
	for _, sp := range m.spaces {
		if len(sp.cuboids) == 0 {
			return fmt.Errorf("space %d has no cuboids", sp.ID)
		}
		for _, id := range sp.cuboids {
			if m.cuboids[id].Deleted {
				return fmt.Errorf("space %d references retired cuboid %d", sp.ID, id)
			}
		}
	}
	return nil
}

// associate registers every surviving rectangle with its four lines.
func (m *Model) associate() error {
	for _, id := range m.rectOrder {
		m.associateLines(m.rectangles[id])
	}
	return nil
}
