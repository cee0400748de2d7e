package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is one parsed input item: string, int64 or float64.
type Value interface{}

// Line is one input line. Items always holds the raw item sequence.
// When the enclosing block is known to hold row records, Fields maps
// the row's column names to values and Overflow holds any items
// beyond the known columns; a line with fewer items than columns is
// left unbound rather than force-mapped.
type Line struct {
	Items    []Value          `json:"items"`
	Fields   map[string]Value `json:"fields,omitempty"`
	Overflow []Value          `json:"overflow,omitempty"`
}

// Block is one BEGIN/END delimited section.
type Block struct {
	Name  string `json:"name"`
	Index *int64 `json:"index,omitempty"`
	Lines []Line `json:"lines"`
}

// Document is a parsed input file.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// Block returns the first block with the given name, or nil.
func (d *Document) Block(name string) *Block {
	name = strings.ToLower(name)
	for i := range d.Blocks {
		if d.Blocks[i].Name == name {
			return &d.Blocks[i]
		}
	}
	return nil
}

// Transformer walks a parse tree bottom-up into a Document. Binding
// it to a component grammar enables row-record structuring for blocks
// with row rules; the generic grammar yields plain lines everywhere.
type Transformer struct {
	grammar *Grammar
}

func NewTransformer(g *Grammar) *Transformer {
	if g == nil {
		g = Generic()
	}
	return &Transformer{grammar: g}
}

// Transform converts a parse tree produced by Parser.Parse.
func (t *Transformer) Transform(tree *Node) (*Document, error) {
	if tree == nil || tree.Rule != "start" {
		return nil, fmt.Errorf("expected start node, got %v", tree)
	}
	doc := &Document{}
	for _, node := range tree.Children {
		block, err := t.transformBlock(node)
		if err != nil {
			return nil, err
		}
		doc.Blocks = append(doc.Blocks, block)
	}
	return doc, nil
}

func (t *Transformer) transformBlock(node *Node) (Block, error) {
	if node.Rule != "block" || len(node.Children) == 0 || node.Children[0].Token == nil {
		return Block{}, fmt.Errorf("malformed block node")
	}
	block := Block{Name: strings.ToLower(node.Children[0].Token.Text)}
	rest := node.Children[1:]
	if len(rest) > 0 && rest[0].Token != nil && rest[0].Token.Type == INT {
		index, err := strconv.ParseInt(rest[0].Token.Text, 10, 64)
		if err != nil {
			return Block{}, err
		}
		block.Index = &index
		rest = rest[1:]
	}

	var rule *Rule
	if r := t.grammar.Rule(block.Name); r != nil && r.Kind == KindRows {
		rule = r
	}
	for _, lineNode := range rest {
		line, err := transformLine(lineNode)
		if err != nil {
			return Block{}, err
		}
		if rule != nil {
			bindRecord(&line, rule.Columns)
		}
		block.Lines = append(block.Lines, line)
	}
	return block, nil
}

func transformLine(node *Node) (Line, error) {
	if node.Rule != "line" {
		return Line{}, fmt.Errorf("malformed line node")
	}
	line := Line{}
	for _, item := range node.Children {
		if item.Token == nil {
			return Line{}, fmt.Errorf("malformed item node")
		}
		value, err := itemValue(*item.Token)
		if err != nil {
			return Line{}, err
		}
		line.Items = append(line.Items, value)
	}
	return line, nil
}

// bindRecord matches a line's items positionally against the row
// rule's column names. Surplus items are kept in Overflow, never
// discarded. A short line is left unstructured: guessing alignment
// would be worse than no structure.
func bindRecord(line *Line, columns []Column) {
	if len(line.Items) < len(columns) {
		return
	}
	fields := make(map[string]Value, len(columns))
	for i, col := range columns {
		fields[col.Name] = line.Items[i]
	}
	line.Fields = fields
	line.Overflow = line.Items[len(columns):]
}

func itemValue(tok Token) (Value, error) {
	switch tok.Type {
	case INT:
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		return n, err
	case FLOAT:
		x, err := strconv.ParseFloat(tok.Text, 64)
		return x, err
	case WORD:
		return tok.Text, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
