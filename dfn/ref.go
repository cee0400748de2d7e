package dfn

// Ref is a foreign-key-like reference between a file input field in a
// referring component and another component referenced by it.
//
// A component which declares itself a subpackage can be referred to by
// other definitions via a filepath field acting as a foreign key. When
// such a field is resolved, it is replaced so the referring component
// accepts the subpackage's data directly instead of a file path.
type Ref struct {
	Key         string // name of the file path field in the referring component
	Val         string // name of the referenced data variable
	Abbr        string // abbreviation of the referenced package
	Param       string // parameter name used by the simulation name file
	Parent      string // parent component of the referenced package
	Description string
}

// Refs is a registry of subpackage references keyed by foreign key
// field name. It is built once per batch, before resolution of any
// component that might consult it.
type Refs map[string]*Ref

// Sln marks a component as a solution package, recognized in
// simulation name files by a filename pattern.
type Sln struct {
	Abbr    string
	Pattern string
}
