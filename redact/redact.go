// Package redact scrubs secrets from text before it reaches the logs.
//
// Only the sensitive spans change: variable names in expansions become
// REDACTED and assigned values become ***. Everything else, including
// spacing and punctuation, is returned exactly as the caller wrote it.
package redact

import (
	"regexp"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// loggable variables carry no secrets.
var loggable = map[string]bool{}

func init() {
	for _, name := range []string{
		"HOME", "USER", "LOGNAME", "HOSTNAME", "PWD", "OLDPWD", "SHELL", "PATH",
		"TERM", "LANG", "LC_ALL", "LC_CTYPE", "EDITOR", "PAGER", "DISPLAY",
		"COLUMNS", "LINES", "TMPDIR",
		"XDG_CONFIG_HOME", "XDG_DATA_HOME", "XDG_RUNTIME_DIR",
	} {
		loggable[name] = true
	}
}

// keepName reports whether an expansion of name may be logged verbatim.
// Shell special parameters ($?, $1, $@ ...) always may.
func keepName(name string) bool {
	if len(name) == 1 && strings.ContainsAny(name, "?!#@*-$_0123456789") {
		return true
	}
	return loggable[name]
}

// secretPrefixLen is how much of a credential may appear in a log line.
const secretPrefixLen = 4

// Secret returns a loggable prefix of a credential, e.g. "sk-1...".
// Keys too short to show a prefix without exposing most of them become "***".
func Secret(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= secretPrefixLen*2 {
		return "***"
	}
	return key[:secretPrefixLen] + "..."
}

// span is a byte range of the input to be replaced.
type span struct {
	start, end int
	repl       string
}

// Command masks variable expansions and assignment values in text that may
// contain shell. Text that does not parse as shell, which includes many
// natural-language queries, is scanned with regular expressions instead.
func Command(text string) string {
	spans, ok := shellSpans(text)
	if !ok {
		spans = regexSpans(text)
	}
	return mask(text, spans)
}

// shellSpans locates sensitive nodes using the bash parser's positions.
func shellSpans(text string) ([]span, bool) {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(text), "")
	if err != nil {
		return nil, false
	}

	var spans []span
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.Assign:
			if n.Name != nil && n.Value != nil && !keepName(n.Name.Value) {
				spans = append(spans, nodeSpan(n.Value, "***"))
				// The whole value is masked; nothing inside it matters.
				return false
			}
		case *syntax.ParamExp:
			if n.Param != nil && !keepName(n.Param.Value) {
				spans = append(spans, nodeSpan(n.Param, "REDACTED"))
			}
		}
		return true
	})
	return spans, true
}

func nodeSpan(n syntax.Node, repl string) span {
	return span{start: int(n.Pos().Offset()), end: int(n.End().Offset()), repl: repl}
}

var (
	// Group 1 is a braced name, group 2 a bare one.
	reVarRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)
	reAssign = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)=(\S+)`)
)

// regexSpans is the fallback for text the parser rejects.
func regexSpans(text string) []span {
	var spans []span
	for _, m := range reVarRef.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		if start < 0 {
			start, end = m[4], m[5]
		}
		if !keepName(text[start:end]) {
			spans = append(spans, span{start, end, "REDACTED"})
		}
	}
	for _, m := range reAssign.FindAllStringSubmatchIndex(text, -1) {
		if !keepName(text[m[2]:m[3]]) {
			spans = append(spans, span{m[4], m[5], "***"})
		}
	}
	return spans
}

// mask applies spans to text. A span overlapping an earlier one is dropped.
func mask(text string, spans []span) string {
	if len(spans) == 0 {
		return text
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var sb strings.Builder
	pos := 0
	for _, s := range spans {
		if s.start < pos || s.end > len(text) {
			continue
		}
		sb.WriteString(text[pos:s.start])
		sb.WriteString(s.repl)
		pos = s.end
	}
	sb.WriteString(text[pos:])
	return sb.String()
}
