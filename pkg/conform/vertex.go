package conform

import "github.com/chazu/conformal/pkg/geom"

// VertexID is a handle into the coordinate registry.
type VertexID int

// Vertex is a unique 3-D coordinate. Vertices are never retired.
type Vertex struct {
	ID         VertexID
	Coord      geom.Vec
	Zoned      bool
	Structural bool
}

// VertexFor returns the vertex at exactly p, creating it when none exists.
// While the pipeline runs, use registerVertex instead so that primitives
// containing p are split.
func (m *Model) VertexFor(p geom.Vec) *Vertex {
	id, _ := m.vertexFor(p)
	return m.vertices[id]
}

// LookupVertex returns the vertex at exactly p, if registered.
func (m *Model) LookupVertex(p geom.Vec) (*Vertex, bool) {
	id, ok := m.vertexByPos[p]
	if !ok {
		return nil, false
	}
	return m.vertices[id], true
}

func (m *Model) vertexFor(p geom.Vec) (VertexID, bool) {
	if id, ok := m.vertexByPos[p]; ok {
		return id, false
	}
	id := VertexID(len(m.vertices))
	m.vertices = append(m.vertices, &Vertex{ID: id, Coord: p})
	m.vertexByPos[p] = id
	m.index.insert(kindVertex, int(id), p, p)
	return id, true
}

// registerVertex is get-or-create plus, during conformation, splitting of
// every active line, rectangle and cuboid that contains p. changed reports
// whether the vertex is new or caused a split.
func (m *Model) registerVertex(p geom.Vec) (id VertexID, changed bool, err error) {
	id, created := m.vertexFor(p)
	if !m.splitting {
		return id, created, nil
	}
	split, err := m.propagate(id)
	return id, created || split, err
}

func (m *Model) coord(id VertexID) geom.Vec {
	return m.vertices[id].Coord
}
