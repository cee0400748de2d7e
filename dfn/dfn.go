package dfn

import (
	"sort"
	"strings"
)

// Schema versions. Version 1 is the structured form of the legacy
// line-oriented DFN format; version 2 is the current scheme with
// v1-only attributes dropped and period data expressed as arrays.
const (
	SchemaV1 = 1
	SchemaV2 = 2
)

// Root names the distinguished top-level simulation component.
const Root = "sim-nam"

// Dfn describes one simulation input component: the simulation
// itself, a model, or a package. A Dfn is created by resolving one
// definition file; Parent and Children are populated later by
// hierarchy assembly, and migration produces a new Dfn rather than
// mutating in place.
type Dfn struct {
	Name          string
	SchemaVersion int
	Parent        string
	Advanced      bool
	Multi         bool
	Ref           *Ref
	Sln           *Sln
	Blocks        *Blocks
	Children      Dfns
}

// Dfns is a flat collection of components keyed by name.
type Dfns map[string]*Dfn

// Names returns component names in sorted order.
func (dfns Dfns) Names() []string {
	names := make([]string, 0, len(dfns))
	for name := range dfns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns every top-level field across all blocks, in block
// order. Subfields of composites are not included. Duplicate names
// across blocks are preserved.
func (d *Dfn) Fields() []*Field {
	var fields []*Field
	if d.Blocks == nil {
		return fields
	}
	for _, block := range d.Blocks.Values() {
		fields = append(fields, block.Values()...)
	}
	return fields
}

// Field looks up a top-level field by name, searching blocks in
// order. Returns nil if absent.
func (d *Dfn) Field(name string) *Field {
	if d.Blocks == nil {
		return nil
	}
	for _, block := range d.Blocks.Values() {
		if f := block.Get(name); f != nil {
			return f
		}
	}
	return nil
}

// Copy returns a deep copy of the component.
func (d *Dfn) Copy() *Dfn {
	c := *d
	if d.Blocks != nil {
		c.Blocks = NewBlocks()
		for _, name := range d.Blocks.Names() {
			fields := NewFields()
			for _, f := range d.Blocks.Get(name).Values() {
				fields.Add(f.Copy())
			}
			c.Blocks.Add(name, fields)
		}
	}
	if d.Children != nil {
		c.Children = make(Dfns, len(d.Children))
		for name, child := range d.Children {
			c.Children[name] = child.Copy()
		}
	}
	return &c
}

// Blocks is an ordered mapping of block name to block fields.
type Blocks struct {
	names  []string
	blocks map[string]*Fields
}

func NewBlocks() *Blocks {
	return &Blocks{blocks: make(map[string]*Fields)}
}

func (b *Blocks) Add(name string, fields *Fields) {
	if _, ok := b.blocks[name]; !ok {
		b.names = append(b.names, name)
	}
	b.blocks[name] = fields
}

func (b *Blocks) Get(name string) *Fields {
	if b == nil {
		return nil
	}
	return b.blocks[name]
}

func (b *Blocks) Has(name string) bool {
	return b.Get(name) != nil
}

func (b *Blocks) Len() int {
	if b == nil {
		return 0
	}
	return len(b.names)
}

func (b *Blocks) Names() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.names...)
}

func (b *Blocks) Values() []*Fields {
	if b == nil {
		return nil
	}
	values := make([]*Fields, 0, len(b.names))
	for _, name := range b.names {
		values = append(values, b.blocks[name])
	}
	return values
}

// Sort orders blocks by the conventional precedence: options,
// dimensions, griddata, packagedata, period blocks, then everything
// else in first-seen order.
func (b *Blocks) Sort() {
	sort.SliceStable(b.names, func(i, j int) bool {
		return blockSortKey(b.names[i]) < blockSortKey(b.names[j])
	})
}

func blockSortKey(name string) int {
	switch {
	case name == "options":
		return 0
	case name == "dimensions":
		return 1
	case name == "griddata":
		return 2
	case name == "packagedata":
		return 3
	case strings.Contains(name, "period"):
		return 4
	default:
		return 5
	}
}
