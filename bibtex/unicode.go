package bibtex

import (
	"regexp"
	"strings"
)

// accents maps a LaTeX accent command to the composed form of each
// letter it can decorate.
var accents = map[string]map[string]string{
	"`": {
		"a": "à", "e": "è", "i": "ì", "o": "ò", "u": "ù",
		"A": "À", "E": "È", "I": "Ì", "O": "Ò", "U": "Ù",
	},
	"'": {
		"a": "á", "c": "ć", "e": "é", "i": "í", "n": "ń", "o": "ó",
		"s": "ś", "u": "ú", "y": "ý", "z": "ź",
		"A": "Á", "C": "Ć", "E": "É", "I": "Í", "N": "Ń", "O": "Ó",
		"S": "Ś", "U": "Ú", "Y": "Ý", "Z": "Ź",
	},
	"^": {
		"a": "â", "e": "ê", "i": "î", "o": "ô", "u": "û",
		"A": "Â", "E": "Ê", "I": "Î", "O": "Ô", "U": "Û",
	},
	`"`: {
		"a": "ä", "e": "ë", "i": "ï", "o": "ö", "u": "ü", "y": "ÿ",
		"A": "Ä", "E": "Ë", "I": "Ï", "O": "Ö", "U": "Ü",
	},
	"~": {
		"a": "ã", "n": "ñ", "o": "õ",
		"A": "Ã", "N": "Ñ", "O": "Õ",
	},
	"=": {
		"a": "ā", "e": "ē", "i": "ī", "o": "ō", "u": "ū",
		"A": "Ā", "E": "Ē", "I": "Ī", "O": "Ō", "U": "Ū",
	},
	"c": {
		"c": "ç", "s": "ş", "t": "ţ",
		"C": "Ç", "S": "Ş", "T": "Ţ",
	},
	"v": {
		"c": "č", "e": "ě", "n": "ň", "r": "ř", "s": "š", "z": "ž",
		"C": "Č", "E": "Ě", "N": "Ň", "R": "Ř", "S": "Š", "Z": "Ž",
	},
	"u": {
		"a": "ă", "g": "ğ",
		"A": "Ă", "G": "Ğ",
	},
	"k": {
		"a": "ą", "e": "ę",
		"A": "Ą", "E": "Ę",
	},
	".": {
		"e": "ė", "z": "ż",
		"E": "Ė", "Z": "Ż",
	},
	"r": {
		"a": "å", "u": "ů",
		"A": "Å", "U": "Ů",
	},
	"H": {
		"o": "ő", "u": "ű",
		"O": "Ő", "U": "Ű",
	},
}

// letterMacros maps standalone letter macros to their Unicode
// equivalents.
var letterMacros = map[string]string{
	"ss": "ß",
	"ae": "æ", "AE": "Æ",
	"oe": "œ", "OE": "Œ",
	"aa": "å", "AA": "Å",
	"o": "ø", "O": "Ø",
	"l": "ł", "L": "Ł",
	"i": "ı", "j": "ȷ",
}

var (
	// Matches \'e, \'{e}, {\'e}, {\'{e}}, \v{c} and friends.
	accentRegex = regexp.MustCompile(`\{?\\([` + "`" + `'^"~=.cvukrH])\s*\{?([A-Za-z])\}?\}?`)

	// Matches \ss, {\ss}, \o, {\ae} and friends. Two-letter macros
	// come first so \oe is not read as \o followed by "e".
	letterRegex = regexp.MustCompile(`\{?\\(ss|ae|AE|oe|OE|aa|AA|[oOlLij])\}?`)

	// Characters BibTeX sources escape with a backslash.
	escapeReplacer = strings.NewReplacer(
		`\&`, "&",
		`\%`, "%",
		`\$`, "$",
		`\#`, "#",
		`\_`, "_",
	)

	braceReplacer = strings.NewReplacer("{", "", "}", "")
)

// latexToUnicode converts LaTeX escape sequences in a field value to
// their Unicode equivalents and strips the grouping braces LaTeX
// markup leaves behind.
func latexToUnicode(s string) string {
	if !strings.ContainsAny(s, `\{}`) {
		return s
	}

	s = accentRegex.ReplaceAllStringFunc(s, func(m string) string {
		sub := accentRegex.FindStringSubmatch(m)
		if repl, ok := accents[sub[1]][sub[2]]; ok {
			return repl
		}
		return m
	})

	s = letterRegex.ReplaceAllStringFunc(s, func(m string) string {
		sub := letterRegex.FindStringSubmatch(m)
		if repl, ok := letterMacros[sub[1]]; ok {
			return repl
		}
		return m
	})

	s = escapeReplacer.Replace(s)
	return braceReplacer.Replace(s)
}
