package bibtex

import (
	"regexp"
	"strings"
)

var (
	wsRegex        = regexp.MustCompile(`\s+`)
	pageRangeRegex = regexp.MustCompile(`(\d)\s*[-‐–—]+\s*(\d)`)
)

// normalize applies the standard decoding steps to a freshly parsed
// entry: whitespace collapsing, page-range hyphens, name-list and
// keyword splitting, and LaTeX-to-Unicode conversion when enabled.
func (p *parser) normalize(e *Entry) {
	for k, v := range e.Fields {
		e.Fields[k] = collapseWhitespace(v)
	}

	if v, ok := e.Fields["pages"]; ok {
		e.Fields["pages"] = normalizePages(v)
	}

	// Names are split before Unicode conversion so that braces can
	// still protect corporate names containing "and".
	if v, ok := e.Fields["author"]; ok {
		e.Authors = splitNames(v)
	}
	if v, ok := e.Fields["editor"]; ok {
		e.Editors = splitNames(v)
	}

	if p.opts.ConvertToUnicode {
		for k, v := range e.Fields {
			e.Fields[k] = latexToUnicode(v)
		}
		for i, n := range e.Authors {
			e.Authors[i] = latexToUnicode(n)
		}
		for i, n := range e.Editors {
			e.Editors[i] = latexToUnicode(n)
		}
	}

	if v, ok := e.Fields["keyword"]; ok {
		e.Keywords = splitKeywords(v)
	} else if v, ok := e.Fields["keywords"]; ok {
		e.Keywords = splitKeywords(v)
	}
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(wsRegex.ReplaceAllString(s, " "))
}

// normalizePages rewrites page-range separators to the double hyphen
// form: "1-10", "1 - 10" and "1–10" all become "1--10".
func normalizePages(s string) string {
	return pageRangeRegex.ReplaceAllString(s, "${1}--${2}")
}

// splitNames splits a BibTeX name list on "and" separators that sit
// outside brace groups, preserving order.
func splitNames(s string) []string {
	var (
		names []string
		depth int
		start int
	)

	i := 0
	for i < len(s) {
		switch s[i] {
		case '{':
			depth++
			i++
		case '}':
			if depth > 0 {
				depth--
			}
			i++
		default:
			if depth == 0 && isAndSeparator(s, i) {
				if name := strings.TrimSpace(s[start:i]); name != "" {
					names = append(names, name)
				}
				i += 5 // len(" and ")
				start = i
			} else {
				i++
			}
		}
	}

	if name := strings.TrimSpace(s[start:]); name != "" {
		names = append(names, name)
	}
	return names
}

// isAndSeparator reports whether s[i:] starts a " and " separator.
func isAndSeparator(s string, i int) bool {
	if i+5 > len(s) {
		return false
	}
	return s[i] == ' ' && s[i+4] == ' ' && strings.EqualFold(s[i+1:i+4], "and")
}

// splitKeywords splits a keyword field on commas and semicolons.
func splitKeywords(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})

	keywords := parts[:0]
	for _, kw := range parts {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return nil
	}
	return keywords
}
