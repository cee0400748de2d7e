package dfn

import (
	"testing"
)

func TestMigratePeriodBlock(test *testing.T) {
	d := Migrate(loadString(test, "gwf-chd", chdSource))
	if d.SchemaVersion != SchemaV2 {
		test.Errorf("expected schema version 2, got %d", d.SchemaVersion)
	}

	period := d.Blocks.Get("period")
	if period == nil {
		test.Errorf("missing period block")
		return
	}
	if period.Has("stress_period_data") {
		test.Errorf("recarray should have been unwrapped into columns")
	}
	if period.Has("cellid") {
		test.Errorf("cellid column should have been dropped")
	}
	head := period.Get("head")
	if head == nil {
		test.Errorf("missing column head")
		return
	}
	// cellid signals spatial indexing, so columns gain an nnodes dim
	if len(head.Shape) != 2 || head.Shape[0] != "nper" || head.Shape[1] != "nnodes" {
		test.Errorf("bad column shape: %v", head.Shape)
	}
	if head.InRecord || head.Tagged {
		test.Errorf("v1 attributes should have been dropped: %+v", head)
	}
}

func TestMigrateKeepsNonPeriodBlocks(test *testing.T) {
	d := Migrate(loadString(test, "gwf-chd", chdSource))
	if f := d.Field("maxbound"); f == nil || f.Type != TypeInteger {
		test.Errorf("dimensions block should be untouched, got %+v", f)
	}
	if f := d.Field("print_input"); f == nil || f.Type != TypeKeyword {
		test.Errorf("options block should be untouched, got %+v", f)
	}
}

func TestMigrateWithoutCellid(test *testing.T) {
	d := Migrate(loadString(test, "utl-laktab", `block period
name perioddata
type recarray stage
shape (maxbound)
reader urword
description is the list of stages

block period
name stage
type double precision
in_record true
reader urword
description is the lake stage
`))
	stage := d.Blocks.Get("period").Get("stage")
	if stage == nil {
		test.Errorf("missing column stage")
		return
	}
	// no cellid, so no nnodes dimension
	if len(stage.Shape) != 1 || stage.Shape[0] != "nper" {
		test.Errorf("bad column shape: %v", stage.Shape)
	}
}

func TestMigrateIdempotent(test *testing.T) {
	d := Migrate(loadString(test, "gwf-chd", chdSource))
	again := Migrate(d)
	if again != d {
		test.Errorf("a v2 component should migrate to itself")
	}

	// a v1 component already in columnar form only loses the sparse
	// list bound, nothing else
	columnar := &Dfn{Name: "gwf-chd", SchemaVersion: SchemaV1, Blocks: NewBlocks()}
	fields := NewFields()
	fields.Add(&Field{
		Name:  "head",
		Type:  TypeDouble,
		Block: "period",
		Shape: []string{"nper", "nnodes", "maxbound"},
	})
	columnar.Blocks.Add("period", fields)

	migrated := Migrate(columnar)
	head := migrated.Blocks.Get("period").Get("head")
	if head == nil || len(head.Shape) != 2 || head.Shape[0] != "nper" || head.Shape[1] != "nnodes" {
		test.Errorf("bad columnar shape: %+v", head)
	}
}
