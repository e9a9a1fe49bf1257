// Package scanner locates Java class declarations and the method-like
// signatures inside them using a deliberately approximate lexical scan.
//
// The scan is not a parser: class keywords inside comments or strings are
// reported, escaped quotes end string runs, and the method pattern accepts
// anything signature-shaped.
package scanner

import "regexp"

var (
	classRe  = regexp.MustCompile(`\bclass\b\s+(\w+)`)
	methodRe = regexp.MustCompile(`\b(?:public|protected|private|static|\s)*[a-zA-Z0-9<>\[\]]+\s+(\w+) *\([^)]*\) *(?:\{|[^;])`)
)

// ClassMatch is one `class <Name>` token span in a source text.
type ClassMatch struct {
	Name  string `json:"name"`
	Start int    `json:"start"` // byte offset of "class"
	End   int    `json:"end"`   // byte offset just past the name
}

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// FindClasses returns every class declaration in text, in document order.
func FindClasses(text string) []ClassMatch {
	var matches []ClassMatch
	for _, loc := range classRe.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, ClassMatch{
			Name:  text[loc[2]:loc[3]],
			Start: loc[0],
			End:   loc[1],
		})
	}
	return matches
}

// FindBodyEnd scans forward from searchStart and returns the offset just past
// the brace that balances the first '{'. Quoted runs are skipped, without
// escape handling. When braces never balance it returns len(text).
func FindBodyEnd(text string, searchStart int) int {
	if searchStart < 0 {
		searchStart = 0
	}
	if searchStart > len(text) {
		return len(text)
	}

	openBraces := 0
	inString := false
	var stringChar byte

	for i := searchStart; i < len(text); i++ {
		ch := text[i]
		if inString {
			if ch == stringChar {
				inString = false
			}
			continue
		}
		switch ch {
		case '{':
			openBraces++
		case '}':
			openBraces--
			if openBraces == 0 {
				return i + 1
			}
		case '"', '\'':
			inString = true
			stringChar = ch
		}
	}
	return len(text)
}

// BodySpan returns the range from the class keyword to the end of its body.
// Nested classes are part of the enclosing span.
func BodySpan(text string, m ClassMatch) Span {
	start := min(max(m.Start, 0), len(text))
	return Span{Start: start, End: FindBodyEnd(text, start)}
}

// FindMethodNames returns the names of method-like signatures in body, in
// match order. Duplicates are kept.
func FindMethodNames(body string) []string {
	var names []string
	for _, sub := range methodRe.FindAllStringSubmatch(body, -1) {
		names = append(names, sub[1])
	}
	return names
}

// TestableMethods extracts the method names declared in the body of m.
func TestableMethods(text string, m ClassMatch) []string {
	span := BodySpan(text, m)
	return FindMethodNames(text[span.Start:span.End])
}
