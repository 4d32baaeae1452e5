package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is a single path step: a field name or an array index.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

// Key returns a field name segment.
func Key(name string) Segment {
	return Segment{Name: name}
}

// Index returns an array index segment.
func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// Path addresses a value inside a document. Paths are values: Child and At
// return new slices and never alias the receiver.
type Path []Segment

// Root is the empty path.
var Root = Path{}

// Child returns p extended with a field name.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Key(name))
}

// At returns p extended with an array index.
func (p Path) At(index int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Index(index))
}

// Parent drops the last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	out := make(Path, len(p)-1)
	copy(out, p[:len(p)-1])
	return out
}

// Last returns the final segment.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// LastName returns the last field name, skipping trailing indexes.
func (p Path) LastName() string {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsIndex {
			return p[i].Name
		}
	}
	return ""
}

// Names returns the field name segments joined by dots, indexes dropped.
// Classification heuristics run over this form.
func (p Path) Names() string {
	parts := make([]string, 0, len(p))
	for _, seg := range p {
		if !seg.IsIndex {
			parts = append(parts, seg.Name)
		}
	}
	return strings.Join(parts, ".")
}

// Equal reports segment-wise equality.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the path as a.b[2].c.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			b.WriteString(seg.String())
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Name)
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePath parses the a.b[2].c form. The empty string is the root path.
func ParsePath(raw string) (Path, error) {
	raw = strings.TrimSpace(raw)
	path := Path{}
	if raw == "" {
		return path, nil
	}

	i := 0
	expectName := true
	for i < len(raw) {
		switch raw[i] {
		case '.':
			if expectName {
				return nil, fmt.Errorf("schema: empty segment in path %q at %d", raw, i)
			}
			expectName = true
			i++
		case '[':
			if expectName && len(path) > 0 {
				return nil, fmt.Errorf("schema: empty segment in path %q at %d", raw, i)
			}
			end := strings.IndexByte(raw[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("schema: unterminated index in path %q", raw)
			}
			idx, err := strconv.Atoi(raw[i+1 : i+end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("schema: invalid index %q in path %q", raw[i+1:i+end], raw)
			}
			path = append(path, Index(idx))
			expectName = false
			i += end + 1
		default:
			if !expectName {
				return nil, fmt.Errorf("schema: missing separator in path %q at %d", raw, i)
			}
			end := i
			for end < len(raw) && raw[end] != '.' && raw[end] != '[' {
				end++
			}
			path = append(path, Key(raw[i:end]))
			expectName = false
			i = end
		}
	}
	if expectName {
		return nil, fmt.Errorf("schema: path %q ends with a separator", raw)
	}
	return path, nil
}

// MustParsePath panics when raw is not a valid path. Useful for tests.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidFieldName reports whether name can be addressed unambiguously.
func ValidFieldName(name string) bool {
	if strings.TrimSpace(name) == "" || name != strings.TrimSpace(name) {
		return false
	}
	return !strings.ContainsAny(name, ".[]")
}
