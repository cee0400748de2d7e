package dfn

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// SaveTOML serializes a component to its structured TOML form: top
// level name/schema_version/parent/advanced/multi, one table per
// block, each block a table of field-attribute tables. Composite
// children are attached inline under their names, and absent or empty
// attributes are omitted.
func SaveTOML(d *Dfn, w io.Writer) error {
	return toml.NewEncoder(w).Encode(dfnMap(d))
}

func dfnMap(d *Dfn) map[string]interface{} {
	m := map[string]interface{}{
		"name":           d.Name,
		"schema_version": d.SchemaVersion,
	}
	if d.Parent != "" {
		m["parent"] = d.Parent
	}
	if d.Advanced {
		m["advanced"] = true
	}
	if d.Multi {
		m["multi"] = true
	}
	if d.Ref != nil {
		ref := map[string]interface{}{}
		putNonEmpty(ref, "key", d.Ref.Key)
		putNonEmpty(ref, "val", d.Ref.Val)
		putNonEmpty(ref, "abbr", d.Ref.Abbr)
		putNonEmpty(ref, "param", d.Ref.Param)
		putNonEmpty(ref, "parent", d.Ref.Parent)
		putNonEmpty(ref, "description", d.Ref.Description)
		m["ref"] = ref
	}
	if d.Sln != nil {
		m["sln"] = map[string]interface{}{
			"abbr":    d.Sln.Abbr,
			"pattern": d.Sln.Pattern,
		}
	}
	for _, name := range d.Blocks.Names() {
		block := map[string]interface{}{}
		for _, f := range d.Blocks.Get(name).Values() {
			block[f.Name] = fieldMap(f)
		}
		m[name] = block
	}
	return m
}

func fieldMap(f *Field) map[string]interface{} {
	m := map[string]interface{}{}
	putNonEmpty(m, "type", string(f.Type))
	putNonEmpty(m, "shape", FormatShape(f.Shape))
	putNonEmpty(m, "block", f.Block)
	putNonEmpty(m, "description", f.Description)
	putNonEmpty(m, "reader", f.Reader)
	putNonEmpty(m, "longname", f.Longname)
	putNonEmpty(m, "mf6internal", f.MF6Internal)
	if f.Default != nil {
		m["default"] = f.Default
	}
	if f.Optional {
		m["optional"] = true
	}
	if len(f.Valid) > 0 {
		m["valid"] = f.Valid
	}
	for _, flag := range []struct {
		key string
		set bool
	}{
		{"in_record", f.InRecord},
		{"tagged", f.Tagged},
		{"layered", f.Layered},
		{"preserve_case", f.PreserveCase},
		{"numeric_index", f.NumericIndex},
		{"deprecated", f.Deprecated},
		{"removed", f.Removed},
	} {
		if flag.set {
			m[flag.key] = true
		}
	}
	if f.Children != nil {
		for _, child := range f.Children.Values() {
			m[child.Name] = fieldMap(child)
		}
	}
	return m
}

func putNonEmpty(m map[string]interface{}, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// LoadTOML deserializes a component from its TOML form. In strict
// mode, unrecognized scalar attribute keys are a SchemaKeyError;
// otherwise they are silently ignored. Table-valued keys are never
// unrecognized: at the top level they are blocks, and inside a field
// they are that field's children.
func LoadTOML(r io.Reader, strict bool) (*Dfn, error) {
	var m map[string]interface{}
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, err
	}
	return dfnFromMap(m, keyOrder(md.Keys()), strict)
}

// DfnFromMap builds a component from an untyped map, e.g. one decoded
// from TOML. Block and field order follows sorted key order; use
// LoadTOML to preserve file order.
func DfnFromMap(m map[string]interface{}, strict bool) (*Dfn, error) {
	return dfnFromMap(m, nil, strict)
}

// keyOrder indexes dotted key paths by order of appearance.
func keyOrder(keys []toml.Key) map[string]int {
	order := make(map[string]int, len(keys))
	for i, k := range keys {
		order[strings.Join(k, "\x00")] = i
	}
	return order
}

func sortedKeys(m map[string]interface{}, path []string, order map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if order != nil {
		sort.SliceStable(keys, func(i, j int) bool {
			pi, iok := order[strings.Join(append(path, keys[i]), "\x00")]
			pj, jok := order[strings.Join(append(path, keys[j]), "\x00")]
			if !iok || !jok {
				return false
			}
			return pi < pj
		})
	}
	return keys
}

func dfnFromMap(m map[string]interface{}, order map[string]int, strict bool) (*Dfn, error) {
	d := &Dfn{SchemaVersion: SchemaV2, Blocks: NewBlocks()}
	var unknown []string
	for _, key := range sortedKeys(m, nil, order) {
		value := m[key]
		switch key {
		case "name":
			d.Name = asString(value)
		case "schema_version":
			v, err := asVersion(value)
			if err != nil {
				return nil, err
			}
			d.SchemaVersion = v
		case "parent":
			d.Parent = asString(value)
		case "advanced":
			d.Advanced = asBool(value)
		case "multi":
			d.Multi = asBool(value)
		case "ref":
			if rm, ok := value.(map[string]interface{}); ok {
				d.Ref = &Ref{
					Key:         asString(rm["key"]),
					Val:         asString(rm["val"]),
					Abbr:        asString(rm["abbr"]),
					Param:       asString(rm["param"]),
					Parent:      asString(rm["parent"]),
					Description: asString(rm["description"]),
				}
			}
		case "sln":
			if sm, ok := value.(map[string]interface{}); ok {
				d.Sln = &Sln{Abbr: asString(sm["abbr"]), Pattern: asString(sm["pattern"])}
			}
		default:
			bm, ok := value.(map[string]interface{})
			if !ok {
				unknown = append(unknown, key)
				continue
			}
			fields := NewFields()
			for _, fieldName := range sortedKeys(bm, []string{key}, order) {
				fm, ok := bm[fieldName].(map[string]interface{})
				if !ok {
					return nil, fmt.Errorf("invalid field data for %s in block %s", fieldName, key)
				}
				f, err := fieldFromMap(fieldName, fm, []string{key, fieldName}, order, strict)
				if err != nil {
					return nil, err
				}
				if f.Block == "" {
					f.Block = key
				}
				fields.Add(f)
			}
			d.Blocks.Add(key, fields)
		}
	}
	if strict && len(unknown) > 0 {
		return nil, &SchemaKeyError{Context: "component " + d.Name, Keys: unknown}
	}
	d.Blocks.Sort()
	return d, nil
}

func fieldFromMap(name string, m map[string]interface{}, path []string, order map[string]int, strict bool) (*Field, error) {
	f := &Field{Name: name}
	var unknown []string
	for _, key := range sortedKeys(m, path, order) {
		value := m[key]
		switch key {
		case "name":
			f.Name = asString(value)
		case "type":
			f.Type = FieldType(asString(value))
		case "shape":
			switch v := value.(type) {
			case string:
				f.Shape = ParseShape(v)
			case []interface{}:
				for _, dim := range v {
					f.Shape = append(f.Shape, asString(dim))
				}
			}
		case "block":
			f.Block = asString(value)
		case "default":
			f.Default = value
		case "description":
			f.Description = asString(value)
		case "reader":
			f.Reader = asString(value)
		case "longname":
			f.Longname = asString(value)
		case "optional":
			f.Optional = asBool(value)
		case "valid":
			if vs, ok := value.([]interface{}); ok {
				for _, v := range vs {
					f.Valid = append(f.Valid, asString(v))
				}
			}
		case "in_record":
			f.InRecord = asBool(value)
		case "tagged":
			f.Tagged = asBool(value)
		case "layered":
			f.Layered = asBool(value)
		case "preserve_case":
			f.PreserveCase = asBool(value)
		case "numeric_index":
			f.NumericIndex = asBool(value)
		case "deprecated":
			f.Deprecated = asBool(value)
		case "removed":
			f.Removed = asBool(value)
		case "mf6internal":
			f.MF6Internal = asString(value)
		case "children":
			cm, ok := value.(map[string]interface{})
			if !ok {
				unknown = append(unknown, key)
				continue
			}
			if err := addChildren(f, cm, append(path, key), order, strict); err != nil {
				return nil, err
			}
		default:
			cm, ok := value.(map[string]interface{})
			if !ok {
				unknown = append(unknown, key)
				continue
			}
			// a table-valued key inside a field is an inline child
			child, err := fieldFromMap(key, cm, append(path, key), order, strict)
			if err != nil {
				return nil, err
			}
			if f.Children == nil {
				f.Children = NewFields()
			}
			f.Children.Add(child)
		}
	}
	if strict && len(unknown) > 0 {
		return nil, &SchemaKeyError{Context: "field " + f.Name, Keys: unknown}
	}
	return f, nil
}

func addChildren(f *Field, m map[string]interface{}, path []string, order map[string]int, strict bool) error {
	if f.Children == nil {
		f.Children = NewFields()
	}
	for _, name := range sortedKeys(m, path, order) {
		cm, ok := m[name].(map[string]interface{})
		if !ok {
			return fmt.Errorf("invalid child data for %s in field %s", name, f.Name)
		}
		child, err := fieldFromMap(name, cm, append(path, name), order, strict)
		if err != nil {
			return err
		}
		f.Children.Add(child)
	}
	return nil
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asBool(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

func asVersion(v interface{}) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("unsupported schema version: %v", v)
		}
		return parsed, nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("unsupported schema version: %v", v)
}
