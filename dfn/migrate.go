package dfn

// Migrate re-expresses a resolved component under schema version 2.
// Structure is unchanged except for period blocks, whose row data is
// converted to independent dense array columns. Attributes that only
// exist under v1 (in_record, tagged, preserve_case and friends) are
// dropped. A component already at v2 is returned unchanged.
func Migrate(d *Dfn) *Dfn {
	if d.SchemaVersion == SchemaV2 {
		return d
	}

	blocks := NewBlocks()
	if d.Blocks != nil {
		for _, name := range d.Blocks.Names() {
			fields := NewFields()
			for _, f := range d.Blocks.Get(name).Values() {
				fields.Add(dropV1Attrs(f))
			}
			if blockSortKey(name) == 4 {
				fields = migratePeriodBlock(fields)
			}
			blocks.Add(name, fields)
		}
		blocks.Sort()
	}

	return &Dfn{
		Name:          d.Name,
		SchemaVersion: SchemaV2,
		Parent:        d.Parent,
		Advanced:      d.Advanced,
		Multi:         d.Multi,
		Ref:           d.Ref,
		Sln:           d.Sln,
		Blocks:        blocks,
	}
}

// migratePeriodBlock converts a period block's recarray to individual
// arrays, one per column, each with a stress- or grid-aligned shape
// instead of the sparse maxbound-sized list shape.
//
// A cellid column signals spatially indexed data and is dropped: its
// information moves into an nnodes dimension on the other columns. A
// block already in columnar form only has maxbound stripped from its
// columns, so the conversion is idempotent.
func migratePeriodBlock(block *Fields) *Fields {
	var row *Fields
	listName := ""
	if first := block.First(); block.Len() == 1 && first.Type == TypeList {
		listName = first.Name
		if r := first.Row(); r != nil {
			row = r.Children
		}
	}

	if row == nil {
		// already columnar: strip the sparse list bound only
		out := NewFields()
		for _, f := range block.Values() {
			c := f.Copy()
			c.Shape = dropDim(c.Shape, "maxbound")
			out.Add(c)
		}
		return out
	}

	columns := NewFields()
	for _, f := range row.Values() {
		columns.Add(f.Copy())
	}
	cellid := columns.Remove("cellid")

	out := NewFields()
	for _, f := range block.Values() {
		if f.Name != listName {
			out.Add(dropV1Attrs(f))
		}
	}
	for _, col := range columns.Values() {
		dims := []string{"nper"}
		if cellid != nil {
			dims = append(dims, "nnodes")
		}
		dims = append(dims, dropDim(col.Shape, "maxbound")...)
		c := dropV1Attrs(col)
		c.Shape = dims
		out.Add(c)
	}
	return out
}

func dropDim(dims []string, name string) []string {
	var out []string
	for _, d := range dims {
		if d != name {
			out = append(out, d)
		}
	}
	return out
}

// dropV1Attrs deep-copies a field with v1-only attributes cleared.
func dropV1Attrs(f *Field) *Field {
	c := *f
	if f.Shape != nil {
		c.Shape = append([]string(nil), f.Shape...)
	}
	if f.Valid != nil {
		c.Valid = append([]string(nil), f.Valid...)
	}
	c.InRecord = false
	c.Tagged = false
	c.Layered = false
	c.PreserveCase = false
	c.NumericIndex = false
	c.Deprecated = false
	c.Removed = false
	c.MF6Internal = ""
	if f.Children != nil {
		c.Children = NewFields()
		for _, child := range f.Children.Values() {
			c.Children.Add(dropV1Attrs(child))
		}
	}
	return &c
}
