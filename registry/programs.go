package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Program is one row of the program version database: a distributed
// executable, where to get it, and how it is built.
type Program struct {
	Target         string
	Version        string
	Current        bool
	URL            string
	Dirname        string
	Srcdir         string
	StandardSwitch bool
	DoubleSwitch   bool
	SharedObject   bool
}

// Programs is the program database, keyed by target name.
type Programs map[string]*Program

var programKeys = map[string]bool{
	"target":          true,
	"version":         true,
	"current":         true,
	"url":             true,
	"dirname":         true,
	"srcdir":          true,
	"standard_switch": true,
	"double_switch":   true,
	"shared_object":   true,
}

// LoadPrograms reads the program database from CSV. The first row is
// the header. In strict mode an unrecognized column is an error;
// otherwise it is ignored.
func LoadPrograms(r io.Reader, strict bool) (Programs, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		if strict && !programKeys[header[i]] {
			return nil, fmt.Errorf("unrecognized key in program data: %s", header[i])
		}
	}

	programs := make(Programs)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		p := &Program{}
		for i, key := range header {
			if i >= len(row) {
				break
			}
			value := strings.TrimSpace(row[i])
			switch key {
			case "target":
				p.Target = value
			case "version":
				p.Version = value
			case "current":
				p.Current = parseFlag(value)
			case "url":
				p.URL = value
			case "dirname":
				p.Dirname = value
			case "srcdir":
				p.Srcdir = value
			case "standard_switch":
				p.StandardSwitch = parseFlag(value)
			case "double_switch":
				p.DoubleSwitch = parseFlag(value)
			case "shared_object":
				p.SharedObject = parseFlag(value)
			}
		}
		if p.Target == "" {
			return nil, fmt.Errorf("program row missing target: %v", row)
		}
		programs[p.Target] = p
	}
	return programs, nil
}

// LoadProgramsFile reads the program database from a CSV file.
func LoadProgramsFile(path string, strict bool) (Programs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadPrograms(f, strict)
}

// Get returns a program by target name.
func (p Programs) Get(name string) (*Program, error) {
	program, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("unknown program: %s", name)
	}
	return program, nil
}

// parseFlag accepts Python-style booleans as found in the database.
func parseFlag(s string) bool {
	if b, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
		return b
	}
	return false
}
