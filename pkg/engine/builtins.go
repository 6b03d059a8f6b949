package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/conformal/pkg/geom"
	"github.com/chazu/conformal/pkg/room"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms room program source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: space-row -> space_row
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a room.Vec3.
type sexpVec3 struct {
	vec room.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpFaces wraps a set of face tags so it can be returned from `faces`
// and consumed by `space`.
type sexpFaces struct {
	faces room.Faces
}

func (f *sexpFaces) SexpString(ps *zygo.PrintState) string {
	var parts []string
	for _, facing := range room.Facings {
		if tag := f.faces.Tag(facing); tag != "" {
			parts = append(parts, fmt.Sprintf(":%s %q", facing, tag))
		}
	}
	return "(faces " + strings.Join(parts, " ") + ")"
}
func (f *sexpFaces) Type() *zygo.RegisteredType { return nil }

// sexpSpace refers to a declared room by ID.
type sexpSpace struct {
	id int
}

func (s *sexpSpace) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(space %d)", s.id)
}
func (s *sexpSpace) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if _, seen := result.kw[name]; !seen {
			result.order = append(result.order, name)
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Keyword at end with no value: treat as flag with nil.
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// unknown returns an error naming the first keyword not in allowed.
func (a kwArgs) unknown(fn string, allowed map[string]bool) error {
	for _, name := range a.order {
		if !allowed[name] {
			return fmt.Errorf("%s: unknown keyword :%s", fn, name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to an axis index (0=X, 1=Y, 2=Z).
func toAxis(s zygo.Sexp) (int, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (room.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return room.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toFaces extracts face tags from a sexpFaces.
func toFaces(s zygo.Sexp) (room.Faces, error) {
	if f, ok := s.(*sexpFaces); ok {
		return f.faces, nil
	}
	return room.Faces{}, fmt.Errorf("expected faces, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Program state
// ---------------------------------------------------------------------------

// program collects the rooms declared by one evaluation. Rooms declared
// without :id are numbered after the highest ID seen so far.
// Limits on what one program may declare.
const (
	MaxRooms    = 10000
	MaxRowCount = 1000
)

type program struct {
	rooms []room.Room
	ids   map[int]bool
	next  int
}

func newProgram() *program {
	return &program{ids: make(map[int]bool), next: 1}
}

func (p *program) add(r room.Room, auto bool) (int, error) {
	if auto {
		for p.ids[p.next] {
			p.next++
		}
		r.ID = p.next
	}
	if p.ids[r.ID] {
		return 0, fmt.Errorf("duplicate room id %d", r.ID)
	}
	if len(p.rooms) >= MaxRooms {
		return 0, fmt.Errorf("too many rooms, the limit is %d", MaxRooms)
	}
	p.ids[r.ID] = true
	if r.ID >= p.next {
		p.next = r.ID + 1
	}
	p.rooms = append(p.rooms, r)
	return r.ID, nil
}

var spaceKeywords = map[string]bool{
	"id": true, "type": true, "size": true, "at": true, "corners": true, "faces": true,
	"north": true, "east": true, "south": true, "west": true, "top": true, "bottom": true,
}

// parseRoom reads the keywords shared by `space` and `space-row`. auto is
// true when no :id was given.
func parseRoom(fn string, pa kwArgs) (r room.Room, auto bool, err error) {
	auto = true
	if v, ok := pa.kw["id"]; ok {
		if r.ID, err = toInt(v); err != nil {
			return r, false, fmt.Errorf("%s: id: %w", fn, err)
		}
		auto = false
	}
	if v, ok := pa.kw["type"]; ok {
		if r.Type, err = toKeywordString(v); err != nil {
			return r, auto, fmt.Errorf("%s: type: %w", fn, err)
		}
	}
	if v, ok := pa.kw["size"]; ok {
		size, err := toVec3(v)
		if err != nil {
			return r, auto, fmt.Errorf("%s: size: %w", fn, err)
		}
		r.Width, r.Depth, r.Height = size.X, size.Y, size.Z
	}
	if v, ok := pa.kw["at"]; ok {
		if r.Origin, err = toVec3(v); err != nil {
			return r, auto, fmt.Errorf("%s: at: %w", fn, err)
		}
	}
	if v, ok := pa.kw["corners"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return r, auto, fmt.Errorf("%s: corners: %w", fn, err)
		}
		if len(items) != 8 {
			return r, auto, fmt.Errorf("%s: corners: expected 8 points, got %d", fn, len(items))
		}
		for _, item := range items {
			c, err := toVec3(item)
			if err != nil {
				return r, auto, fmt.Errorf("%s: corner entry: %w", fn, err)
			}
			r.Corners = append(r.Corners, c)
		}
	}
	if v, ok := pa.kw["faces"]; ok {
		if r.Faces, err = toFaces(v); err != nil {
			return r, auto, fmt.Errorf("%s: faces: %w", fn, err)
		}
	}
	for _, f := range room.Facings {
		v, ok := pa.kw[f.String()]
		if !ok {
			continue
		}
		tag, err := toKeywordString(v)
		if err != nil {
			return r, auto, fmt.Errorf("%s: %s: %w", fn, f, err)
		}
		r.Faces.Set(f, tag)
	}
	return r, auto, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the room DSL builtins into a zygomys
// environment. The builtins append to prog during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, prog *program) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: room.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (faces :north "glazing" :top "roof")
	// -----------------------------------------------------------------------
	env.AddFunction("faces", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("faces takes only :facing \"tag\" pairs")
		}
		var fs room.Faces
		for _, key := range pa.order {
			f, err := room.ParseFacing(key)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("faces: %w", err)
			}
			tag, err := toKeywordString(pa.kw[key])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("faces: %s: %w", key, err)
			}
			fs.Set(f, tag)
		}
		return &sexpFaces{faces: fs}, nil
	})

	// -----------------------------------------------------------------------
	// (space :id 1 :type "office" :size (vec3 4 3 2.5) :at (vec3 0 0 0)
	//        :north "glazing")
	// -----------------------------------------------------------------------
	env.AddFunction("space", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknown("space", spaceKeywords); err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("space: unexpected argument %s", pa.positional[0].SexpString(nil))
		}
		r, auto, err := parseRoom("space", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		id, err := prog.add(r, auto)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("space: %w", err)
		}
		return &sexpSpace{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (space-row :count 3 :axis :x :size (vec3 4 3 2.5) :at (vec3 0 0 0))
	//
	// Lays out :count equal rooms edge to edge along :axis. With :id the
	// rooms are numbered consecutively from it. Registered as "space_row";
	// the preprocessor converts space-row in the source.
	// -----------------------------------------------------------------------
	rowKeywords := map[string]bool{"count": true, "axis": true}
	for k := range spaceKeywords {
		rowKeywords[k] = true
	}
	delete(rowKeywords, "corners")

	env.AddFunction("space_row", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknown("space-row", rowKeywords); err != nil {
			return zygo.SexpNull, err
		}
		count := 1
		if v, ok := pa.kw["count"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("space-row: count: %w", err)
			}
			if n < 1 {
				return zygo.SexpNull, fmt.Errorf("space-row: count must be positive, got %d", n)
			}
			if n > MaxRowCount {
				return zygo.SexpNull, fmt.Errorf("space-row: count %d exceeds %d", n, MaxRowCount)
			}
			count = n
		}
		axis := 0
		if v, ok := pa.kw["axis"]; ok {
			a, err := toAxis(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("space-row: axis: %w", err)
			}
			axis = a
		}
		base, auto, err := parseRoom("space-row", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		size := geom.V(base.Width, base.Depth, base.Height)
		step := geom.Component(size, axis)
		origin := base.Origin.Vec()
		for i := 0; i < count; i++ {
			r := base
			at := geom.WithComponent(origin, axis, geom.Component(origin, axis)+float64(i)*step)
			r.Origin = room.Vec3{X: at.X, Y: at.Y, Z: at.Z}
			if !auto {
				r.ID = base.ID + i
			}
			if _, err := prog.add(r, auto); err != nil {
				return zygo.SexpNull, fmt.Errorf("space-row: %w", err)
			}
		}
		return &zygo.SexpInt{Val: int64(count)}, nil
	})
}
