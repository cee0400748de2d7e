package grammar

import (
	"fmt"
	"strings"
)

// ParseError indicates input text that does not match the grammar.
// It carries the source position of the offending token.
type ParseError struct {
	Msg    string
	Line   int
	Column int
	Token  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s (near %q)", e.Line, e.Column, e.Msg, e.Token)
}

// Node is one node of a parse tree: an interior rule node with
// children, or a token leaf.
type Node struct {
	Rule     string
	Token    *Token
	Children []*Node
}

func ruleNode(rule string, children ...*Node) *Node {
	return &Node{Rule: rule, Children: children}
}

func tokenNode(tok Token) *Node {
	t := tok
	return &Node{Token: &t}
}

// Parser parses MF6 input text against a grammar into a parse tree.
// Parsing is single-pass and deterministic: no backtracking, no
// ambiguity, and a mismatch yields a ParseError.
//
// A document is an ordered sequence of blocks; a block is
// `BEGIN <name> [<index>]`, zero or more item lines, and
// `END <name> [<index>]` with a matching name. When the parser is
// bound to a component grammar, block names must be rules of that
// grammar.
type Parser struct {
	grammar *Grammar
	scanner *Scanner
	tok     Token
}

// NewParser returns a parser for the given grammar; pass Generic()
// for the component-independent grammar.
func NewParser(g *Grammar) *Parser {
	if g == nil {
		g = Generic()
	}
	return &Parser{grammar: g}
}

// Parse parses input text into a parse tree.
func (p *Parser) Parse(src string) (*Node, error) {
	p.scanner = NewScanner(strings.NewReader(src))
	p.next()

	start := ruleNode("start")
	p.skipNewlines()
	for p.tok.Type != EOF {
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		start.Children = append(start.Children, block)
		p.skipNewlines()
	}
	return start, nil
}

func (p *Parser) next() {
	p.tok = p.scanner.Scan()
}

func (p *Parser) skipNewlines() {
	for p.tok.Type == NEWLINE {
		p.next()
	}
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{
		Msg:    fmt.Sprintf(format, args...),
		Line:   p.tok.Line,
		Column: p.tok.Start,
		Token:  p.tok.Text,
	}
}

func (p *Parser) parseBlock() (*Node, error) {
	if p.tok.Type != WORD || !strings.EqualFold(p.tok.Text, "begin") {
		return nil, p.errorf("expected BEGIN")
	}
	p.next()

	if p.tok.Type != WORD {
		return nil, p.errorf("expected block name")
	}
	name := p.tok.Text
	if p.grammar.Component != "" && p.grammar.Rule(name) == nil {
		return nil, p.errorf("unexpected block %q for component %s", name, p.grammar.Component)
	}
	block := ruleNode("block", tokenNode(p.tok))
	p.next()

	if p.tok.Type == INT {
		block.Children = append(block.Children, tokenNode(p.tok))
		p.next()
	}
	if p.tok.Type != NEWLINE && p.tok.Type != EOF {
		return nil, p.errorf("expected end of line after block header")
	}
	p.skipNewlines()

	for {
		if p.tok.Type == EOF {
			return nil, p.errorf("unexpected end of input in block %q", name)
		}
		if p.tok.Type == WORD && strings.EqualFold(p.tok.Text, "end") {
			break
		}
		line, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		block.Children = append(block.Children, line)
	}

	// END <name> [<index>]
	p.next()
	if p.tok.Type != WORD || !strings.EqualFold(p.tok.Text, name) {
		return nil, p.errorf("mismatched block delimiter, expected END %s", name)
	}
	p.next()
	if p.tok.Type == INT {
		p.next()
	}
	if p.tok.Type != NEWLINE && p.tok.Type != EOF {
		return nil, p.errorf("expected end of line after END %s", name)
	}
	return block, nil
}

func (p *Parser) parseLine() (*Node, error) {
	line := ruleNode("line")
	for p.tok.Type == WORD || p.tok.Type == INT || p.tok.Type == FLOAT {
		line.Children = append(line.Children, tokenNode(p.tok))
		p.next()
	}
	if len(line.Children) == 0 {
		return nil, p.errorf("expected line item")
	}
	if p.tok.Type != NEWLINE && p.tok.Type != EOF {
		return nil, p.errorf("expected end of line")
	}
	p.skipNewlines()
	return line, nil
}
