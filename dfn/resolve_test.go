package dfn

import (
	"strings"
	"testing"
)

func loadString(test *testing.T, name, src string) *Dfn {
	test.Helper()
	d, err := Load(strings.NewReader(src), name, nil, nil)
	if err != nil {
		test.Fatalf("%v", err)
	}
	return d
}

const chdSource = `# --------------------- gwf chd options ---------------------
# flopy multi-package

block options
name print_input
type keyword
reader urword
optional true
longname print input to listing file
description keyword to indicate that the list of cells will be printed

block dimensions
name maxbound
type integer
reader urword
optional false
longname maximum number of constant heads
description maximum number of cells that will be specified

block period
name stress_period_data
type recarray cellid head
shape (maxbound)
reader urword
longname stress period data
description is the list of cells for this package

block period
name cellid
type integer
shape (ncelldim)
tagged false
in_record true
reader urword
longname cell identifier
description is the cell identifier

block period
name head
type double precision
shape
tagged false
in_record true
reader urword
longname head value
description is the head value
`

func TestResolveScalars(test *testing.T) {
	d := loadString(test, "gwf-chd", chdSource)
	if !d.Multi {
		test.Errorf("expected a multi-package component")
	}
	f := d.Field("print_input")
	if f == nil || f.Type != TypeKeyword || !f.Optional {
		test.Errorf("bad field print_input: %+v", f)
	}
	f = d.Field("maxbound")
	if f == nil || f.Type != TypeInteger || f.Optional {
		test.Errorf("bad field maxbound: %+v", f)
	}
}

func TestResolveListRow(test *testing.T) {
	d := loadString(test, "gwf-chd", chdSource)
	f := d.Field("stress_period_data")
	if f == nil || f.Type != TypeList {
		test.Errorf("expected a list field, got %+v", f)
		return
	}
	if len(f.Shape) != 1 || f.Shape[0] != "maxbound" {
		test.Errorf("bad list shape: %v", f.Shape)
	}
	row := f.Row()
	if row == nil || row.Type != TypeRecord {
		test.Errorf("expected a record row, got %+v", row)
		return
	}
	names := row.Children.Names()
	if len(names) != 2 || names[0] != "cellid" || names[1] != "head" {
		test.Errorf("bad row columns: %v", names)
	}
	if !strings.Contains(row.Description, "is the record of") {
		test.Errorf("row description not rewritten: %q", row.Description)
	}
	if head := row.Children.Get("head"); head == nil || head.Type != TypeDouble || !head.InRecord {
		test.Errorf("bad row column head: %+v", row.Children.Get("head"))
	}
}

func TestResolveBlockOrder(test *testing.T) {
	// blocks come back in conventional order no matter the file order
	d := loadString(test, "gwf-chd", `block period
name perioddata
type recarray iper
reader urword
description is the list of period data

block period
name iper
type integer
in_record true
reader urword
description is the period number

block options
name save_flows
type keyword
optional true
reader urword
description keyword to save flows
`)
	names := d.Blocks.Names()
	if len(names) != 2 || names[0] != "options" || names[1] != "period" {
		test.Errorf("bad block order: %v", names)
	}
}

func TestResolveUnion(test *testing.T) {
	d := loadString(test, "utl-ts", `block attributes
name interpolation_method
type keystring linear stepwise
reader urword
description interpolation method

block attributes
name linear
type keyword
in_record true
reader urword
description linear interpolation

block attributes
name stepwise
type keyword
in_record true
reader urword
description stepwise interpolation
`)
	f := d.Field("interpolation_method")
	if f == nil || f.Type != TypeUnion {
		test.Errorf("expected a union field, got %+v", f)
		return
	}
	names := f.Children.Names()
	if len(names) != 2 || names[0] != "linear" || names[1] != "stepwise" {
		test.Errorf("bad union alternatives: %v", names)
	}
}

func TestResolveExplicitRecord(test *testing.T) {
	d := loadString(test, "utl-obs", `block options
name obs_filerecord
type record obs6 filein obs6_filename
reader urword
optional true
description observation record

block options
name obs6
type keyword
in_record true
reader urword
description obs keyword

block options
name filein
type keyword
in_record true
reader urword
description file input keyword

block options
name obs6_filename
type string
in_record true
preserve_case true
reader urword
description observation input file name
`)
	f := d.Field("obs_filerecord")
	if f == nil || f.Type != TypeRecord {
		test.Errorf("expected a record field, got %+v", f)
		return
	}
	names := f.Children.Names()
	if len(names) != 3 || names[0] != "obs6" || names[2] != "obs6_filename" {
		test.Errorf("bad record members: %v", names)
	}
	if fname := f.Children.Get("obs6_filename"); fname == nil || !fname.PreserveCase {
		test.Errorf("bad record member obs6_filename: %+v", f.Children.Get("obs6_filename"))
	}
}

func TestResolveInvalidArrayType(test *testing.T) {
	flat, meta := parseString(`block period
name data
type recarray notathing
shape (maxbound)
reader urword
description bad data

block period
name notathing
type whatever
shape (n)
in_record true
reader urword
description not a scalar
`, nil)
	_, err := Resolve("gwf-bad", flat, meta, nil)
	if err == nil {
		test.Errorf("expected an error for a shaped non-scalar field")
		return
	}
	if _, ok := err.(*InvalidArrayTypeError); !ok {
		test.Errorf("expected InvalidArrayTypeError, got %v", err)
	}
}

func TestResolveMissingComposite(test *testing.T) {
	flat, meta := parseString(`block period
name data
type recarray
reader urword
description no members
`, nil)
	_, err := Resolve("gwf-bad", flat, meta, nil)
	if err == nil {
		test.Errorf("expected an error for a memberless composite")
		return
	}
	if _, ok := err.(*MissingCompositeError); !ok {
		test.Errorf("expected MissingCompositeError, got %v", err)
	}
}

func TestResolveSubstitution(test *testing.T) {
	refs := Refs{
		"ts_filerecord": &Ref{
			Key:    "ts_filerecord",
			Val:    "timeseries",
			Abbr:   "ts",
			Param:  "timeseries",
			Parent: "parent_package",
		},
	}
	flat, meta := parseString(`block options
name ts_filerecord
type record ts6 filein ts6_filename
reader urword
optional true
description time series record

block options
name ts6
type keyword
in_record true
reader urword
description ts keyword

block options
name filein
type keyword
in_record true
reader urword
description file input keyword

block options
name ts6_filename
type string
in_record true
preserve_case true
reader urword
description time series input file name
`, nil)
	d, err := Resolve("gwf-chd", flat, meta, refs)
	if err != nil {
		test.Fatalf("%v", err)
	}
	if d.Field("ts_filerecord") != nil {
		test.Errorf("foreign key field should have been substituted")
	}
	f := d.Field("timeseries")
	if f == nil {
		test.Errorf("expected substituted field timeseries")
		return
	}
	if !strings.Contains(f.Description, "Contains data for the ts package") {
		test.Errorf("bad substituted description: %q", f.Description)
	}
}
