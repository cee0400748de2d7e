package dfn

import (
	"fmt"
	"strings"
)

// FieldType tags a resolved field. Scalar kinds correspond to single
// input items; record, list and union are composites whose structure
// lives in the field's children.
type FieldType string

const (
	TypeKeyword FieldType = "keyword"
	TypeInteger FieldType = "integer"
	TypeDouble  FieldType = "double"
	TypeString  FieldType = "string"
	TypeRecord  FieldType = "record"
	TypeList    FieldType = "list"
	TypeUnion   FieldType = "union"
)

func (t FieldType) IsScalar() bool {
	switch t {
	case TypeKeyword, TypeInteger, TypeDouble, TypeString:
		return true
	}
	return false
}

func (t FieldType) IsComposite() bool {
	switch t {
	case TypeRecord, TypeList, TypeUnion:
		return true
	}
	return false
}

// scalarTypes maps the raw DFN scalar spellings to normalized tags.
var scalarTypes = map[string]FieldType{
	"keyword":          TypeKeyword,
	"integer":          TypeInteger,
	"double precision": TypeDouble,
	"double":           TypeDouble,
	"string":           TypeString,
}

// NormalizeScalar reports the normalized tag for a raw scalar type
// spelling, or false if the spelling is not a known scalar.
func NormalizeScalar(raw string) (FieldType, bool) {
	t, ok := scalarTypes[raw]
	return t, ok
}

// Field is one node in a resolved input schema. A list field has
// exactly one child (its row type); records and unions have one child
// per member or alternative.
type Field struct {
	Name        string
	Type        FieldType
	Shape       []string
	Block       string
	Default     interface{}
	Description string
	Children    *Fields

	// descriptive metadata
	Reader   string
	Longname string
	Optional bool
	Valid    []string

	// v1-only attributes, dropped when migrating to v2
	InRecord     bool
	Tagged       bool
	Layered      bool
	PreserveCase bool
	NumericIndex bool
	Deprecated   bool
	Removed      bool
	MF6Internal  string
}

// Copy returns a deep copy of the field.
func (f *Field) Copy() *Field {
	c := *f
	if f.Shape != nil {
		c.Shape = append([]string(nil), f.Shape...)
	}
	if f.Valid != nil {
		c.Valid = append([]string(nil), f.Valid...)
	}
	if f.Children != nil {
		c.Children = NewFields()
		for _, child := range f.Children.Values() {
			c.Children.Add(child.Copy())
		}
	}
	return &c
}

// Row returns a list field's single child, or nil.
func (f *Field) Row() *Field {
	if f.Type != TypeList || f.Children == nil {
		return nil
	}
	return f.Children.First()
}

// ParseShape splits a dimension descriptor like "(nper, nnodes)" into
// its dimension names. An empty descriptor yields nil.
func ParseShape(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	dims := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			dims = append(dims, p)
		}
	}
	return dims
}

// FormatShape renders dimension names back to descriptor form.
func FormatShape(dims []string) string {
	if len(dims) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(dims, ", "))
}

// Fields is an ordered mapping of name to Field. Sibling names are
// unique; insertion order is preserved.
type Fields struct {
	names  []string
	fields map[string]*Field
}

func NewFields() *Fields {
	return &Fields{fields: make(map[string]*Field)}
}

// Add inserts or replaces a field. A replaced field keeps its
// original position.
func (fs *Fields) Add(f *Field) {
	if _, ok := fs.fields[f.Name]; !ok {
		fs.names = append(fs.names, f.Name)
	}
	fs.fields[f.Name] = f
}

func (fs *Fields) Get(name string) *Field {
	if fs == nil {
		return nil
	}
	return fs.fields[name]
}

func (fs *Fields) Has(name string) bool {
	return fs.Get(name) != nil
}

func (fs *Fields) Remove(name string) *Field {
	f, ok := fs.fields[name]
	if !ok {
		return nil
	}
	delete(fs.fields, name)
	for i, n := range fs.names {
		if n == name {
			fs.names = append(fs.names[:i], fs.names[i+1:]...)
			break
		}
	}
	return f
}

func (fs *Fields) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.names)
}

func (fs *Fields) Names() []string {
	if fs == nil {
		return nil
	}
	return append([]string(nil), fs.names...)
}

func (fs *Fields) Values() []*Field {
	if fs == nil {
		return nil
	}
	values := make([]*Field, 0, len(fs.names))
	for _, name := range fs.names {
		values = append(values, fs.fields[name])
	}
	return values
}

func (fs *Fields) First() *Field {
	if fs == nil || len(fs.names) == 0 {
		return nil
	}
	return fs.fields[fs.names[0]]
}
