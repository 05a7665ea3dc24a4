package bibtex

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Parse reads BibTeX input and returns decoded entries in source order.
// A nil opts uses DefaultOptions. Text between entries is ignored, as
// are @comment and @preamble blocks. @string constants are resolved
// into the field values that reference them.
func Parse(r io.Reader, opts *Options) ([]*Entry, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	p := &parser{
		data: data,
		strs: make(map[string]string),
		opts: opts,
	}
	return p.parse()
}

// ParseString parses BibTeX from a string.
func ParseString(s string, opts *Options) ([]*Entry, error) {
	return Parse(strings.NewReader(s), opts)
}

type parser struct {
	data []byte
	pos  int
	strs map[string]string
	opts *Options
}

func (p *parser) parse() ([]*Entry, error) {
	var entries []*Entry

	for p.skipToAt() {
		name, ok := p.ident()
		if !ok {
			// Stray @ in inter-entry text
			continue
		}

		switch kind := strings.ToLower(name); kind {
		case "comment", "preamble":
			if err := p.skipGroup(); err != nil {
				return nil, fmt.Errorf("@%s: %w", kind, err)
			}
		case "string":
			if err := p.parseStringDef(); err != nil {
				return nil, fmt.Errorf("@string: %w", err)
			}
		default:
			e, err := p.parseEntry(kind)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// skipToAt advances past the next '@' and reports whether one was found.
func (p *parser) skipToAt() bool {
	idx := bytes.IndexByte(p.data[p.pos:], '@')
	if idx < 0 {
		p.pos = len(p.data)
		return false
	}
	p.pos += idx + 1
	return true
}

func (p *parser) skipWS() {
	for p.pos < len(p.data) && isSpace(p.data[p.pos]) {
		p.pos++
	}
}

func (p *parser) ident() (string, bool) {
	start := p.pos
	for p.pos < len(p.data) && isIdentByte(p.data[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", false
	}
	return string(p.data[start:p.pos]), true
}

// open consumes the opening delimiter of a group and returns the
// matching closer, '}' for '{' and ')' for '('.
func (p *parser) open() (byte, error) {
	p.skipWS()
	if p.pos >= len(p.data) {
		return 0, fmt.Errorf("unexpected end of input")
	}
	switch p.data[p.pos] {
	case '{':
		p.pos++
		return '}', nil
	case '(':
		p.pos++
		return ')', nil
	}
	return 0, fmt.Errorf("expected '{' at offset %d", p.pos)
}

// skipGroup consumes a brace- or paren-delimited group, honoring nested
// braces. Used for @comment and @preamble bodies.
func (p *parser) skipGroup() error {
	closer, err := p.open()
	if err != nil {
		return err
	}

	depth := 0
	for p.pos < len(p.data) {
		switch c := p.data[p.pos]; c {
		case '\\':
			p.pos++
		case '{':
			depth++
		case '}':
			if closer == '}' && depth == 0 {
				p.pos++
				return nil
			}
			if depth > 0 {
				depth--
			}
		case ')':
			if closer == ')' && depth == 0 {
				p.pos++
				return nil
			}
		}
		p.pos++
	}
	return fmt.Errorf("unexpected end of input")
}

// parseStringDef parses one or more name = value constant definitions.
func (p *parser) parseStringDef() error {
	closer, err := p.open()
	if err != nil {
		return err
	}

	for {
		p.skipWS()
		if p.pos < len(p.data) && p.data[p.pos] == closer {
			p.pos++
			return nil
		}

		name, ok := p.ident()
		if !ok {
			return fmt.Errorf("expected constant name at offset %d", p.pos)
		}
		p.skipWS()
		if p.pos >= len(p.data) || p.data[p.pos] != '=' {
			return fmt.Errorf("expected '=' after constant %q", name)
		}
		p.pos++

		val, err := p.parseValue()
		if err != nil {
			return fmt.Errorf("constant %q: %w", name, err)
		}
		p.strs[strings.ToLower(name)] = val

		p.skipWS()
		if p.pos < len(p.data) && p.data[p.pos] == ',' {
			p.pos++
		}
	}
}

func (p *parser) parseEntry(kind string) (*Entry, error) {
	closer, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("entry @%s: %w", kind, err)
	}

	key, err := p.readKey(closer)
	if err != nil {
		return nil, fmt.Errorf("entry @%s: %w", kind, err)
	}

	e := &Entry{
		Key:    key,
		Type:   kind,
		Fields: make(map[string]string),
	}

	for {
		p.skipWS()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("entry %q: unexpected end of input", key)
		}

		c := p.data[p.pos]
		if c == closer {
			p.pos++
			break
		}
		if c == ',' {
			p.pos++
			continue
		}

		name, ok := p.ident()
		if !ok {
			return nil, fmt.Errorf("entry %q: expected field name at offset %d", key, p.pos)
		}
		p.skipWS()
		if p.pos >= len(p.data) || p.data[p.pos] != '=' {
			return nil, fmt.Errorf("entry %q: expected '=' after field %q", key, name)
		}
		p.pos++

		val, err := p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("entry %q: field %q: %w", key, name, err)
		}
		e.Fields[strings.ToLower(name)] = val
	}

	p.normalize(e)
	return e, nil
}

// readKey reads the citation key up to the comma that ends it. A few
// bibliographies omit fields entirely, so the entry closer also
// terminates the key.
func (p *parser) readKey(closer byte) (string, error) {
	p.skipWS()
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == ',' {
			key := strings.TrimSpace(string(p.data[start:p.pos]))
			p.pos++
			return key, nil
		}
		if c == closer {
			// Leave the closer for the field loop to consume.
			return strings.TrimSpace(string(p.data[start:p.pos])), nil
		}
		p.pos++
	}
	return "", fmt.Errorf("unexpected end of input reading citation key")
}

// parseValue parses a field value: braced or quoted strings, bare
// numbers, and @string constant references, joined with '#'.
func (p *parser) parseValue() (string, error) {
	var parts []string

	for {
		p.skipWS()
		if p.pos >= len(p.data) {
			return "", fmt.Errorf("unexpected end of input")
		}

		switch c := p.data[p.pos]; {
		case c == '{':
			s, err := p.braced()
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		case c == '"':
			s, err := p.quoted()
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		case isDigit(c):
			word, _ := p.ident()
			parts = append(parts, word)
		case isIdentByte(c):
			word, _ := p.ident()
			if v, ok := p.strs[strings.ToLower(word)]; ok {
				parts = append(parts, v)
			} else {
				// Undefined macros (month abbreviations and the
				// like) resolve to their own name.
				parts = append(parts, word)
			}
		default:
			return "", fmt.Errorf("unexpected character %q in value", c)
		}

		p.skipWS()
		if p.pos < len(p.data) && p.data[p.pos] == '#' {
			p.pos++
			continue
		}
		break
	}

	return strings.Join(parts, ""), nil
}

// braced reads a {..} group, keeping inner braces but dropping the
// outer pair.
func (p *parser) braced() (string, error) {
	p.pos++ // consume '{'
	var sb strings.Builder
	depth := 0

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch c {
		case '\\':
			sb.WriteByte(c)
			p.pos++
			if p.pos < len(p.data) {
				sb.WriteByte(p.data[p.pos])
				p.pos++
			}
			continue
		case '{':
			depth++
		case '}':
			if depth == 0 {
				p.pos++
				return sb.String(), nil
			}
			depth--
		}
		sb.WriteByte(c)
		p.pos++
	}
	return "", fmt.Errorf("unterminated brace group")
}

// quoted reads a ".." value. Quotes inside brace groups do not end the
// value.
func (p *parser) quoted() (string, error) {
	p.pos++ // consume '"'
	var sb strings.Builder
	depth := 0

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch c {
		case '\\':
			sb.WriteByte(c)
			p.pos++
			if p.pos < len(p.data) {
				sb.WriteByte(p.data[p.pos])
				p.pos++
			}
			continue
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '"':
			if depth == 0 {
				p.pos++
				return sb.String(), nil
			}
		}
		sb.WriteByte(c)
		p.pos++
	}
	return "", fmt.Errorf("unterminated quoted value")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == ':', c == '+', c == '/':
		return true
	}
	return false
}
