// errors.go — the error taxonomy and caret-style diagnostics.
//
// Every failure in this package is a *Diagnostic carrying a Kind from the
// taxonomy, a source Span (which import key plus 1-based line/col), and a
// message. Diagnostic satisfies the error interface directly; WrapWithSource
// renders it as a multi-line, Python/Rust-style snippet.
package glint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Kind is the error taxonomy reported across parsing, evaluation and
// import resolution.
type Kind int

const (
	KindSyntaxError Kind = iota
	KindUnboundIdentifier
	KindTypeMismatch
	KindOverflowOrDomain
	KindIndexError
	KindPatternMatchError
	KindImportError
	KindNonRepresentable
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindSyntaxError:
		return "SyntaxError"
	case KindUnboundIdentifier:
		return "UnboundIdentifier"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindOverflowOrDomain:
		return "OverflowOrDomain"
	case KindIndexError:
		return "IndexError"
	case KindPatternMatchError:
		return "PatternMatchError"
	case KindImportError:
		return "ImportError"
	case KindNonRepresentable:
		return "NonRepresentable"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Error"
	}
}

// Span locates a Diagnostic in one source file: the originating file's
// absolute import key plus a 1-based line/column position.
type Span struct {
	Key  string // absolute import key of the originating source, "" for host-supplied text
	Line int    // 1-based
	Col  int    // 1-based
}

// Diagnostic is the single error type produced by this package.
type Diagnostic struct {
	Kind Kind
	Span Span
	Msg  string
}

func (d *Diagnostic) Error() string {
	if d.Span.Key != "" {
		return fmt.Sprintf("%s in %s at %d:%d: %s", d.Kind, d.Span.Key, d.Span.Line, d.Span.Col, d.Msg)
	}
	return fmt.Sprintf("%s at %d:%d: %s", d.Kind, d.Span.Line, d.Span.Col, d.Msg)
}

func newDiag(kind Kind, span Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// unboundIdentifier builds an UnboundIdentifier diagnostic and, when a
// closely-spelled name is visible in scope, appends a "did you mean" note
// found via fuzzy matching.
func unboundIdentifier(span Span, name string, candidates []string) *Diagnostic {
	msg := fmt.Sprintf("unbound identifier: %s", name)
	if suggestion := suggestName(name, candidates); suggestion != "" {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
	}
	return newDiag(KindUnboundIdentifier, span, "%s", msg)
}

// suggestName returns the best fuzzy match for name among candidates, or ""
// if none is close enough to be worth suggesting.
func suggestName(name string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	matches := fuzzy.Find(name, sorted)
	if len(matches) == 0 {
		// A misspelling with one extra letter ("lenn" for "len") is not a
		// subsequence of the intended name, so fall back to the longest
		// candidate that is a subsequence of name and at most one letter
		// shorter.
		best := ""
		for _, c := range sorted {
			if len(name)-len(c) <= 1 && len(c) > len(best) && len(fuzzy.Find(c, []string{name})) > 0 {
				best = c
			}
		}
		return best
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Score > best.Score {
			best = m
		}
	}
	if best.Str == name {
		return ""
	}
	return best.Str
}

// WrapWithSource renders a *Diagnostic as a caret-annotated snippet of src,
// the source text the diagnostic's Span.Line/Col refer to. Any other error
// is returned unchanged.
func WrapWithSource(err error, src string) error {
	d, ok := err.(*Diagnostic)
	if !ok {
		return err
	}
	return fmt.Errorf("%s", prettySnippet(src, d))
}

func prettySnippet(src string, d *Diagnostic) string {
	lines := strings.Split(src, "\n")
	line, col := d.Span.Line, d.Span.Col
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	header := d.Kind.String()
	if d.Span.Key != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, d.Span.Key, line, col, d.Msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, d.Msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	pad := col - 1
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", pad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
