package dfn

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	devtools "github.com/wpbonelli/modflow-devtools"
)

// Parse reads a DFN file into an ordered multimap of raw field
// attribute records plus a list of metadata lines.
//
// A DFN file consists of field definitions, each a run of `key value`
// attribute lines closed by a blank line, interleaved with comment
// lines that either carry component metadata or delimit blocks. Block
// delimiter comments are ignored; every field carries a `block`
// attribute anyway. Metadata is recognized by the `flopy` and
// `package-type` markers.
//
// The common map supplies shared field definitions for REPLACE
// description substitution; it may be nil. A REPLACE directive whose
// common key or literal mapping cannot be resolved is a non-fatal
// condition: the description is left unsubstituted and a warning is
// emitted.
//
// Duplicate field names are legal and order-significant: the same
// name may denote both an options keyword and a period-block column.
func Parse(r io.Reader, common *MultiMap) (*MultiMap, []string) {
	field := make(map[string]string)
	fields := NewMultiMap()
	var meta []string

	save := func() {
		if len(field) > 0 {
			fields.Add(field["name"], field)
			field = make(map[string]string)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "#") {
			if _, tail, found := strings.Cut(line, "flopy"); found {
				if strings.Contains(tail, "multi-package") ||
					strings.Contains(tail, "solution_package") ||
					strings.Contains(tail, "subpackage") ||
					strings.Contains(tail, "parent") {
					meta = append(meta, strings.TrimSpace(tail))
				}
			}
			if _, tail, found := strings.Cut(line, "package-type"); found {
				meta = append(meta, "package-type "+strings.TrimSpace(tail))
			}
			continue
		}

		// a blank line closes the in-progress field
		if line == "" {
			save()
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		if key == "default_value" {
			key = "default"
		}
		field[key] = value

		if key == "description" {
			field["description"] = substituteDescription(value, common)
		}
	}
	save()

	return fields, meta
}

// substituteDescription cleans a description value and applies a
// REPLACE directive against the common field definitions, if any.
func substituteDescription(value string, common *MultiMap) string {
	descr := cleanDescription(value)
	_, tail, found := strings.Cut(strings.TrimSpace(descr), "REPLACE")
	if !found {
		return descr
	}
	key, subs, _ := strings.Cut(strings.TrimSpace(tail), " ")
	mapping, err := parseLiteralMap(strings.TrimSpace(subs))
	if err != nil {
		devtools.Warn("Can't substitute description text, bad literal mapping for %s: %v", key, err)
		return descr
	}
	var cmmn map[string]string
	if common != nil {
		cmmn, _ = common.Get(key)
	}
	if cmmn == nil {
		devtools.Warn("Can't substitute description text, common variable not found: %s", key)
		return descr
	}
	descr = cmmn["description"]
	if len(mapping) > 0 {
		descr = strings.ReplaceAll(descr, "\\", "")
		descr = strings.ReplaceAll(descr, "{#1}", mapping["{#1}"])
	}
	return descr
}

func cleanDescription(s string) string {
	s = strings.ReplaceAll(s, "\\", "")
	s = strings.ReplaceAll(s, "``", "'")
	s = strings.ReplaceAll(s, "''", "'")
	return s
}

// parseLiteralMap parses a literal mapping of the form
// {'{#1}': 'some text'} as found in REPLACE directives.
func parseLiteralMap(s string) (map[string]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("not a mapping literal: %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	mapping := make(map[string]string)
	for body != "" {
		key, rest, err := scanQuoted(body)
		if err != nil {
			return nil, err
		}
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, ":") {
			return nil, fmt.Errorf("expected ':' in mapping literal near %q", rest)
		}
		value, rest, err := scanQuoted(strings.TrimSpace(rest[1:]))
		if err != nil {
			return nil, err
		}
		mapping[key] = value
		rest = strings.TrimSpace(rest)
		if rest == "" {
			break
		}
		if !strings.HasPrefix(rest, ",") {
			return nil, fmt.Errorf("expected ',' in mapping literal near %q", rest)
		}
		body = strings.TrimSpace(rest[1:])
	}
	return mapping, nil
}

// scanQuoted reads one single- or double-quoted string from the front
// of s, returning the unquoted text and the remainder.
func scanQuoted(s string) (string, string, error) {
	if s == "" {
		return "", "", fmt.Errorf("expected quoted string")
	}
	quote := s[0]
	if quote != '\'' && quote != '"' {
		return "", "", fmt.Errorf("expected quoted string near %q", s)
	}
	for i := 1; i < len(s); i++ {
		if s[i] == quote {
			return s[1:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("unterminated string in %q", s)
}

// TryParseBool parses a boolean as represented in a DFN file,
// returning the value unaltered if it is not one.
func TryParseBool(value string) interface{} {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}

// TryLiteral parses a string as a literal value: boolean, integer,
// float, or quoted string. Anything else is returned unaltered.
func TryLiteral(value string) interface{} {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if x, err := strconv.ParseFloat(value, 64); err == nil {
		return x
	}
	if len(value) >= 2 {
		if q := value[0]; (q == '\'' || q == '"') && value[len(value)-1] == q {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// metadata accessors

func parseParent(meta []string) string {
	for _, m := range meta {
		if strings.HasPrefix(m, "parent") {
			if split := strings.Fields(m); len(split) > 1 {
				return split[1]
			}
		}
	}
	return ""
}

func isAdvancedPackage(meta []string) bool {
	for _, m := range meta {
		if strings.Contains(m, "package-type advanced") {
			return true
		}
	}
	return false
}

func isMultiPackage(meta []string) bool {
	for _, m := range meta {
		if strings.Contains(m, "multi-package") {
			return true
		}
	}
	return false
}

func parseSln(meta []string) *Sln {
	for _, m := range meta {
		if strings.HasPrefix(m, "solution_package") {
			if split := strings.Fields(m); len(split) > 2 {
				return &Sln{Abbr: split[1], Pattern: split[2]}
			}
		}
	}
	return nil
}

// parseSubpackage builds a subpackage reference from the component's
// metadata. The description is taken from the referenced variable's
// raw definition when present.
func parseSubpackage(meta []string, flat *MultiMap) *Ref {
	parent := parseParent(meta)
	if parent == "" {
		return nil
	}
	for _, m := range meta {
		if !strings.HasPrefix(m, "subpac") {
			continue
		}
		split := strings.Fields(m)
		if len(split) < 5 {
			devtools.Warn("Malformed subpackage metadata: %s", m)
			return nil
		}
		ref := &Ref{
			Key:    split[1],
			Abbr:   split[2],
			Param:  split[3],
			Val:    split[4],
			Parent: parent,
		}
		if matches := flat.GetAll(ref.Val); len(matches) > 0 {
			if len(matches) > 1 {
				devtools.Warn("Multiple matches for referenced variable %s", ref.Val)
			}
			ref.Description = matches[0]["description"]
		}
		return ref
	}
	return nil
}
