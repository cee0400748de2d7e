package dfn

import (
	"sort"
	"strings"
)

// InferParent returns the component's parent name inferred from its
// naming convention, or the declared parent if already set. The
// simulation name file is the root and has no parent; model name
// files and exchange, solution and utility components hang off the
// root; everything else belongs to its model's name file.
func InferParent(d *Dfn) string {
	if d.Parent != "" {
		return d.Parent
	}
	name := d.Name
	switch {
	case name == Root:
		return ""
	case strings.HasSuffix(name, "-nam"):
		return Root
	case strings.HasPrefix(name, "exg-") || strings.HasPrefix(name, "sln-") || strings.HasPrefix(name, "utl-"):
		return Root
	case strings.Contains(name, "-"):
		model, _, _ := strings.Cut(name, "-")
		return model + "-nam"
	}
	return ""
}

// Tree infers the component hierarchy from a flat spec of unlinked
// components and returns the root, with Children populated
// recursively. There must be exactly one parentless component, and it
// must be the simulation name file; otherwise a HierarchyError is
// returned and the whole batch is rejected.
func Tree(dfns Dfns) (*Dfn, error) {
	linked := make(Dfns, len(dfns))
	names := make([]string, 0, len(dfns))
	for name, d := range dfns {
		c := d.Copy()
		c.Parent = InferParent(c)
		c.Children = nil
		linked[name] = c
		names = append(names, name)
	}
	sort.Strings(names)

	var roots []string
	for _, name := range names {
		if linked[name].Parent == "" {
			roots = append(roots, name)
		}
	}
	if len(roots) != 1 || roots[0] != Root {
		return nil, &HierarchyError{Roots: roots}
	}

	var build func(name string) *Dfn
	build = func(name string) *Dfn {
		node := linked[name]
		for _, childName := range names {
			if childName != name && linked[childName].Parent == name {
				if node.Children == nil {
					node.Children = make(Dfns)
				}
				node.Children[childName] = build(childName)
			}
		}
		return node
	}
	return build(Root), nil
}

// Flatten is the exact inverse of Tree: it walks the hierarchy and
// collects every component into a flat name-keyed map, with Children
// cleared but Parent retained.
func Flatten(root *Dfn) Dfns {
	dfns := make(Dfns)
	var walk func(d *Dfn)
	walk = func(d *Dfn) {
		c := d.Copy()
		c.Children = nil
		dfns[c.Name] = c
		for _, child := range d.Children {
			walk(child)
		}
	}
	walk(root)
	return dfns
}

