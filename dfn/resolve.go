package dfn

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	devtools "github.com/wpbonelli/modflow-devtools"
)

// Load parses and resolves a single component definition. The common
// map supplies shared description text and may be nil; refs is the
// batch's subpackage reference registry and may be nil.
func Load(r io.Reader, name string, common *MultiMap, refs Refs) (*Dfn, error) {
	flat, meta := Parse(r, common)
	return Resolve(name, flat, meta, refs)
}

// Resolve turns a flat attribute multimap into a typed component
// definition under schema version 1. Composite type descriptors
// (recarray, keystring, record) are resolved recursively; fields whose
// names match registered subpackage references are substituted.
//
// A failure to resolve any field aborts the component: no partial
// definition is returned.
func Resolve(name string, flat *MultiMap, meta []string, refs Refs) (*Dfn, error) {
	rc := &resolver{name: name, flat: flat, refs: refs}

	// resolve top-level entries only; in-record entries are picked up
	// recursively by their enclosing composites
	top := NewFields()
	for _, attrs := range flat.Values() {
		if boolAttr(attrs, "in_record") {
			continue
		}
		f, err := rc.resolve(attrs)
		if err != nil {
			return nil, err
		}
		if top.Has(f.Name) {
			devtools.Warn("Duplicate field %q in component %q, keeping the last definition", f.Name, name)
		}
		top.Add(f)
	}

	blocks := NewBlocks()
	for _, f := range top.Values() {
		block := blocks.Get(f.Block)
		if block == nil {
			block = NewFields()
			blocks.Add(f.Block, block)
		}
		block.Add(f)
	}
	blocks.Sort()

	return &Dfn{
		Name:          name,
		SchemaVersion: SchemaV1,
		Parent:        parseParent(meta),
		Advanced:      isAdvancedPackage(meta),
		Multi:         isMultiPackage(meta),
		Sln:           parseSln(meta),
		Ref:           parseSubpackage(meta, flat),
		Blocks:        blocks,
	}, nil
}

// resolver threads the flat multimap and reference registry through
// recursive field resolution.
type resolver struct {
	name string
	flat *MultiMap
	refs Refs
}

func (rc *resolver) resolve(attrs map[string]string) (*Field, error) {
	name := attrs["name"]
	rawType := attrs["type"]

	f := &Field{
		Name:         name,
		Shape:        ParseShape(attrs["shape"]),
		Block:        attrs["block"],
		Description:  attrs["description"],
		Reader:       attrs["reader"],
		Longname:     attrs["longname"],
		Optional:     boolAttr(attrs, "optional"),
		Valid:        strings.Fields(attrs["valid"]),
		InRecord:     boolAttr(attrs, "in_record"),
		Tagged:       boolAttr(attrs, "tagged"),
		Layered:      boolAttr(attrs, "layered"),
		PreserveCase: boolAttr(attrs, "preserve_case"),
		NumericIndex: boolAttr(attrs, "numeric_index"),
		Deprecated:   boolAttr(attrs, "deprecated"),
		Removed:      boolAttr(attrs, "removed"),
		MF6Internal:  attrs["mf6internal"],
	}
	if dv, ok := attrs["default"]; ok {
		if rawType == "string" {
			f.Default = dv
		} else {
			f.Default = TryLiteral(dv)
		}
	}

	switch {
	case strings.HasPrefix(rawType, "recarray"):
		row, err := rc.rowField(f, rawType)
		if err != nil {
			return nil, err
		}
		f.Type = TypeList
		f.Children = NewFields()
		f.Children.Add(row)

	case strings.HasPrefix(rawType, "keystring"):
		children, err := rc.unionFields(f, rawType)
		if err != nil {
			return nil, err
		}
		f.Type = TypeUnion
		f.Children = children

	case strings.HasPrefix(rawType, "record"):
		children, err := rc.recordFields(f, rawType)
		if err != nil {
			return nil, err
		}
		f.Type = TypeRecord
		f.Children = children

	default:
		if t, ok := NormalizeScalar(rawType); ok {
			f.Type = t
		} else if len(f.Shape) > 0 {
			// an array must have a scalar base type
			return nil, &InvalidArrayTypeError{Field: name, Type: rawType}
		} else {
			f.Type = FieldType(rawType)
		}
	}

	// if the field is a foreign key, substitute the referenced
	// subpackage's data variable for the file path field
	if ref, ok := rc.refs[name]; ok {
		return rc.substitute(f, ref), nil
	}
	return f, nil
}

// rowField resolves a list's row type. Lists can have records or
// unions as rows. A list with a consistent item type is tabular and
// can be defined with a nested record (explicit) or a set of scalar
// fields directly in the recarray (implicit). A list admitting
// multiple item types is defined with a nested union.
func (rc *resolver) rowField(list *Field, rawType string) (*Field, error) {
	names := strings.Fields(rawType)[1:]
	if len(names) == 0 {
		return nil, &MissingCompositeError{Field: list.Name, Type: rawType}
	}
	members := rc.members(names)
	types := make([]string, 0, len(members))
	for _, m := range members {
		types = append(types, m["type"])
	}

	// explicit record or union row
	if len(names) == 1 && len(types) > 0 &&
		(strings.HasPrefix(types[0], "record") || strings.HasPrefix(types[0], "keystring")) {
		first, _ := rc.flat.Get(names[0])
		return rc.resolve(first)
	}

	// implicit record with all scalar columns
	if allScalars(types) {
		children, err := rc.recordFields(list, rawType)
		if err != nil {
			return nil, err
		}
		return &Field{
			Name:        list.Name,
			Type:        TypeRecord,
			Block:       list.Block,
			Children:    children,
			Description: strings.ReplaceAll(list.Description, "is the list of", "is the record of"),
		}, nil
	}

	// implicit record with composite columns; a single union member
	// is promoted to be the row type itself
	children := NewFields()
	for _, m := range members {
		child, err := rc.resolve(m)
		if err != nil {
			return nil, err
		}
		children.Add(child)
	}
	if children.Len() == 0 {
		return nil, &MissingCompositeError{Field: list.Name, Type: rawType}
	}
	if first := children.First(); children.Len() == 1 && first.Type == TypeUnion {
		return first, nil
	}
	return &Field{
		Name:        list.Name,
		Type:        TypeRecord,
		Block:       list.Block,
		Children:    children,
		Description: strings.ReplaceAll(list.Description, "is the list of", "is the record of"),
	}, nil
}

// unionFields resolves a union's alternatives.
func (rc *resolver) unionFields(union *Field, rawType string) (*Fields, error) {
	names := strings.Fields(rawType)[1:]
	if len(names) == 0 {
		return nil, &MissingCompositeError{Field: union.Name, Type: rawType}
	}
	children := NewFields()
	for _, m := range rc.members(names) {
		child, err := rc.resolve(m)
		if err != nil {
			return nil, err
		}
		children.Add(child)
	}
	if children.Len() == 0 {
		return nil, &MissingCompositeError{Field: union.Name, Type: rawType}
	}
	return children, nil
}

// recordFields resolves a record's member fields, skipping nested
// record definitions.
func (rc *resolver) recordFields(record *Field, rawType string) (*Fields, error) {
	names := strings.Fields(rawType)[1:]
	if len(names) == 0 {
		return nil, &MissingCompositeError{Field: record.Name, Type: rawType}
	}
	children := NewFields()
	for _, name := range names {
		attrs, ok := rc.flat.Get(name)
		if !ok || !boolAttr(attrs, "in_record") || strings.HasPrefix(attrs["type"], "record") {
			continue
		}
		child, err := rc.resolve(attrs)
		if err != nil {
			return nil, err
		}
		children.Add(child)
	}
	if children.Len() == 0 {
		return nil, &MissingCompositeError{Field: record.Name, Type: rawType}
	}
	return children, nil
}

// members returns the in-record attribute records matching the given
// names, in file order.
func (rc *resolver) members(names []string) []map[string]string {
	var members []map[string]string
	for _, attrs := range rc.flat.Values() {
		if !boolAttr(attrs, "in_record") {
			continue
		}
		for _, name := range names {
			if attrs["name"] == name {
				members = append(members, attrs)
				break
			}
		}
	}
	return members
}

// substitute replaces a foreign-key field with the referenced
// subpackage's data variable. Type and shape carry over from the
// original file path field; the description explains that package
// data may be supplied inline instead of via file path.
func (rc *resolver) substitute(f *Field, ref *Ref) *Field {
	sub := f.Copy()
	sub.Name = ref.Val
	if rc.name == Root {
		sub.Name = ref.Param
	}
	sub.Default = nil
	sub.Description = fmt.Sprintf(
		"Contains data for the %[1]s package. Data can be stored in a dictionary "+
			"containing data for the %[1]s package with variable names as keys and "+
			"package data as values. Data just for the %[2]s variable is also "+
			"acceptable. See %[1]s package documentation for more information.",
		ref.Abbr, ref.Val)
	return sub
}

func allScalars(types []string) bool {
	if len(types) == 0 {
		return false
	}
	for _, t := range types {
		if _, ok := NormalizeScalar(t); !ok {
			return false
		}
	}
	return true
}

func boolAttr(attrs map[string]string, key string) bool {
	v, ok := attrs[key]
	if !ok {
		return false
	}
	return strings.EqualFold(v, "true")
}

// LoadAll loads a flat specification from every definition file in a
// directory: legacy *.dfn files (resolved against common.dfn and the
// batch's subpackage references) and structured *.toml files. The
// returned components are unlinked: Children is never populated, and
// Parent only as far as each file declares it.
func LoadAll(dir string) (Dfns, error) {
	dfnPaths, err := filepath.Glob(filepath.Join(dir, "*.dfn"))
	if err != nil {
		return nil, err
	}
	tomlPaths, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, err
	}

	dfns := make(Dfns)

	if len(dfnPaths) > 0 {
		var common *MultiMap
		commonPath := filepath.Join(dir, "common.dfn")
		if devtools.FileExists(commonPath) {
			f, err := os.Open(commonPath)
			if err != nil {
				return nil, err
			}
			common, _ = Parse(f, nil)
			f.Close()
		}

		// first pass: parse every file and register subpackage refs,
		// so foreign keys resolve no matter the file order
		type parsed struct {
			name string
			flat *MultiMap
			meta []string
		}
		var all []parsed
		refs := make(Refs)
		for _, path := range dfnPaths {
			name := stem(path)
			if name == "common" || name == "flopy" {
				continue
			}
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			flat, meta := Parse(f, common)
			f.Close()
			all = append(all, parsed{name: name, flat: flat, meta: meta})
			if ref := parseSubpackage(meta, flat); ref != nil {
				refs[ref.Key] = ref
			}
		}

		// second pass: resolve
		for _, p := range all {
			d, err := Resolve(p.name, p.flat, p.meta, refs)
			if err != nil {
				return nil, fmt.Errorf("cannot resolve %s: %w", p.name, err)
			}
			dfns[p.name] = d
		}
	}

	for _, path := range tomlPaths {
		name := stem(path)
		if name == "common" || name == "flopy" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		d, err := LoadTOML(f, false)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("cannot load %s: %w", path, err)
		}
		if d.Name == "" {
			d.Name = name
		} else if d.Name != name {
			return nil, fmt.Errorf("DFN name mismatch: %s != %s", name, d.Name)
		}
		dfns[name] = d
	}

	return dfns, nil
}

// LoadTree loads a structured specification from definition files in
// a directory: components are loaded, migrated to the current schema,
// and assembled into a hierarchy. The single root component (the
// simulation) is returned.
func LoadTree(dir string) (*Dfn, error) {
	flat, err := LoadAll(dir)
	if err != nil {
		return nil, err
	}
	migrated := make(Dfns, len(flat))
	for name, d := range flat {
		migrated[name] = Migrate(d)
	}
	return Tree(migrated)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
