package dfn

import (
	"bytes"
	"strings"
	"testing"
)

func TestTOMLRoundTrip(test *testing.T) {
	d := Migrate(loadString(test, "gwf-chd", chdSource))

	var buf bytes.Buffer
	if err := SaveTOML(d, &buf); err != nil {
		test.Fatalf("%v", err)
	}
	loaded, err := LoadTOML(&buf, true)
	if err != nil {
		test.Fatalf("%v", err)
	}

	if loaded.Name != d.Name || loaded.SchemaVersion != SchemaV2 || !loaded.Multi {
		test.Errorf("component attributes lost: %+v", loaded)
	}
	names := loaded.Blocks.Names()
	if len(names) != 3 || names[0] != "options" || names[1] != "dimensions" || names[2] != "period" {
		test.Errorf("bad block order: %v", names)
	}
	head := loaded.Blocks.Get("period").Get("head")
	if head == nil || head.Type != TypeDouble {
		test.Errorf("bad field head: %+v", head)
		return
	}
	if len(head.Shape) != 2 || head.Shape[0] != "nper" || head.Shape[1] != "nnodes" {
		test.Errorf("field shape lost: %v", head.Shape)
	}
}

func TestTOMLPreservesFieldOrder(test *testing.T) {
	src := `name = "gwf-dis"
schema_version = 2

[dimensions.nlay]
type = "integer"
description = "number of layers"

[dimensions.nrow]
type = "integer"
description = "number of rows"

[dimensions.ncol]
type = "integer"
description = "number of columns"
`
	d, err := LoadTOML(strings.NewReader(src), true)
	if err != nil {
		test.Fatalf("%v", err)
	}
	names := d.Blocks.Get("dimensions").Names()
	if len(names) != 3 || names[0] != "nlay" || names[1] != "nrow" || names[2] != "ncol" {
		test.Errorf("field order not preserved: %v", names)
	}
}

func TestTOMLInlineChildren(test *testing.T) {
	src := `name = "gwf-chd"
schema_version = 2

[period.stress_period_data]
type = "list"

[period.stress_period_data.stress_period_data]
type = "record"

[period.stress_period_data.stress_period_data.head]
type = "double"
description = "head value"
`
	d, err := LoadTOML(strings.NewReader(src), true)
	if err != nil {
		test.Fatalf("%v", err)
	}
	list := d.Blocks.Get("period").Get("stress_period_data")
	if list == nil || list.Type != TypeList {
		test.Errorf("bad list field: %+v", list)
		return
	}
	row := list.Row()
	if row == nil || row.Type != TypeRecord {
		test.Errorf("bad row: %+v", row)
		return
	}
	if head := row.Children.Get("head"); head == nil || head.Type != TypeDouble {
		test.Errorf("bad row column: %+v", head)
	}
}

func TestTOMLStrictUnknownKeys(test *testing.T) {
	src := `name = "gwf-chd"
schema_version = 2
bogus = "nope"
`
	if _, err := LoadTOML(strings.NewReader(src), false); err != nil {
		test.Errorf("lenient mode should ignore unknown keys: %v", err)
	}
	_, err := LoadTOML(strings.NewReader(src), true)
	if err == nil {
		test.Errorf("strict mode should reject unknown keys")
		return
	}
	kerr, ok := err.(*SchemaKeyError)
	if !ok {
		test.Errorf("expected SchemaKeyError, got %v", err)
		return
	}
	if len(kerr.Keys) != 1 || kerr.Keys[0] != "bogus" {
		test.Errorf("bad error keys: %v", kerr.Keys)
	}
}

func TestTOMLStrictUnknownFieldKeys(test *testing.T) {
	src := `name = "gwf-chd"
schema_version = 2

[options.print_input]
type = "keyword"
wat = 3
`
	if _, err := LoadTOML(strings.NewReader(src), false); err != nil {
		test.Errorf("lenient mode should ignore unknown field keys: %v", err)
	}
	if _, err := LoadTOML(strings.NewReader(src), true); err == nil {
		test.Errorf("strict mode should reject unknown field keys")
	}
}

func TestTOMLSchemaVersionSpellings(test *testing.T) {
	for _, src := range []string{
		"name = \"gwf-chd\"\nschema_version = 2\n",
		"name = \"gwf-chd\"\nschema_version = \"2\"\n",
	} {
		d, err := LoadTOML(strings.NewReader(src), true)
		if err != nil {
			test.Errorf("%v", err)
			continue
		}
		if d.SchemaVersion != SchemaV2 {
			test.Errorf("bad schema version: %d", d.SchemaVersion)
		}
	}
	if _, err := LoadTOML(strings.NewReader("schema_version = \"two\"\n"), true); err == nil {
		test.Errorf("expected an error for an unparseable schema version")
	}
}
