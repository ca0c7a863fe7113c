package formats

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	spdxIDRe  = regexp.MustCompile(`^(DocumentRef-[A-Za-z0-9.\-]+:)?[A-Za-z0-9.\-]+\+?$`)
	spdxOpSet = map[string]bool{"AND": true, "OR": true, "WITH": true}
)

// checkSPDX accepts SPDX license expressions such as "MIT",
// "Apache-2.0 OR GPL-2.0-or-later" and "(GPL-2.0-only WITH Classpath-exception-2.0)".
// Identifiers are checked syntactically, not against the license list.
func checkSPDX(s string) error {
	p := &spdxParser{tokens: spdxTokens(s)}
	if len(p.tokens) == 0 {
		return fmt.Errorf("not an SPDX license expression: empty")
	}
	if err := p.compound(); err != nil {
		return fmt.Errorf("not an SPDX license expression: %w", err)
	}
	if p.pos != len(p.tokens) {
		return fmt.Errorf("not an SPDX license expression: unexpected %q", p.tokens[p.pos])
	}
	return nil
}

func spdxTokens(s string) []string {
	s = strings.NewReplacer("(", " ( ", ")", " ) ").Replace(s)
	return strings.Fields(s)
}

type spdxParser struct {
	tokens []string
	pos    int
}

func (p *spdxParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *spdxParser) compound() error {
	if err := p.term(); err != nil {
		return err
	}
	for {
		op := strings.ToUpper(p.peek())
		if op != "AND" && op != "OR" {
			return nil
		}
		p.pos++
		if err := p.term(); err != nil {
			return err
		}
	}
}

func (p *spdxParser) term() error {
	tok := p.peek()
	switch {
	case tok == "":
		return fmt.Errorf("unexpected end of expression")
	case tok == "(":
		p.pos++
		if err := p.compound(); err != nil {
			return err
		}
		if p.peek() != ")" {
			return fmt.Errorf("missing ')'")
		}
		p.pos++
		return nil
	}

	if err := p.license(); err != nil {
		return err
	}
	if strings.ToUpper(p.peek()) == "WITH" {
		p.pos++
		return p.license()
	}
	return nil
}

func (p *spdxParser) license() error {
	tok := p.peek()
	if tok == "" {
		return fmt.Errorf("unexpected end of expression")
	}
	if spdxOpSet[strings.ToUpper(tok)] || !spdxIDRe.MatchString(tok) {
		return fmt.Errorf("invalid license identifier %q", tok)
	}
	p.pos++
	return nil
}
