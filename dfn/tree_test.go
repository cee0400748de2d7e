package dfn

import (
	"testing"
)

func named(name string) *Dfn {
	return &Dfn{Name: name, SchemaVersion: SchemaV2, Blocks: NewBlocks()}
}

func TestInferParent(test *testing.T) {
	cases := []struct{ name, parent string }{
		{"sim-nam", ""},
		{"sim-tdis", "sim-nam"},
		{"gwf-nam", "sim-nam"},
		{"gwf-dis", "gwf-nam"},
		{"gwf-chd", "gwf-nam"},
		{"exg-gwfgwf", "sim-nam"},
		{"sln-ims", "sim-nam"},
		{"utl-ts", "sim-nam"},
	}
	for _, c := range cases {
		if got := InferParent(named(c.name)); got != c.parent {
			test.Errorf("InferParent(%s) = %q, expected %q", c.name, got, c.parent)
		}
	}

	// a declared parent beats the naming convention
	declared := named("utl-ts")
	declared.Parent = "gwf-chd"
	if got := InferParent(declared); got != "gwf-chd" {
		test.Errorf("declared parent not honored: %q", got)
	}
}

func TestTreeRoundTrip(test *testing.T) {
	dfns := Dfns{
		"sim-nam": named("sim-nam"),
		"gwf-nam": named("gwf-nam"),
		"gwf-dis": named("gwf-dis"),
		"gwf-chd": named("gwf-chd"),
		"sln-ims": named("sln-ims"),
	}
	root, err := Tree(dfns)
	if err != nil {
		test.Fatalf("%v", err)
	}
	if root.Name != Root {
		test.Errorf("expected root %s, got %s", Root, root.Name)
	}
	gwf := root.Children["gwf-nam"]
	if gwf == nil {
		test.Errorf("missing child gwf-nam")
		return
	}
	if gwf.Children["gwf-dis"] == nil || gwf.Children["gwf-chd"] == nil {
		test.Errorf("gwf packages not attached to the model name file")
	}
	if root.Children["sln-ims"] == nil {
		test.Errorf("solution not attached to the root")
	}

	flat := Flatten(root)
	if len(flat) != len(dfns) {
		test.Errorf("round trip lost components: %d != %d", len(flat), len(dfns))
	}
	for name := range dfns {
		d := flat[name]
		if d == nil {
			test.Errorf("round trip lost %s", name)
			continue
		}
		if d.Children != nil {
			test.Errorf("flattened component %s still has children", name)
		}
	}
	if flat["gwf-dis"].Parent != "gwf-nam" {
		test.Errorf("flattened component lost its parent: %q", flat["gwf-dis"].Parent)
	}

	// assembly copies, so inputs are untouched
	if dfns["gwf-dis"].Parent != "" || dfns["sim-nam"].Children != nil {
		test.Errorf("inputs were mutated by hierarchy assembly")
	}
}

func TestTreeMissingRoot(test *testing.T) {
	_, err := Tree(Dfns{
		"gwf-nam": named("gwf-nam"),
		"gwf-dis": named("gwf-dis"),
	})
	if err == nil {
		test.Errorf("expected an error with no simulation component")
		return
	}
	if _, ok := err.(*HierarchyError); !ok {
		test.Errorf("expected HierarchyError, got %v", err)
	}
}

func TestTreeMultipleRoots(test *testing.T) {
	stray := named("standalone")
	_, err := Tree(Dfns{
		"sim-nam":    named("sim-nam"),
		"standalone": stray,
	})
	if err == nil {
		test.Errorf("expected an error with multiple roots")
		return
	}
	herr, ok := err.(*HierarchyError)
	if !ok {
		test.Errorf("expected HierarchyError, got %v", err)
		return
	}
	if len(herr.Roots) != 2 {
		test.Errorf("expected both roots reported, got %v", herr.Roots)
	}
}
