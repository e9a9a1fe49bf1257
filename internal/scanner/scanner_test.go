package scanner

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const nestedSrc = "class A { void m() {} class B { int n() {} } }"

func TestFindClassesNested(t *testing.T) {
	got := FindClasses(nestedSrc)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(got), got)
	}
	if got[0].Name != "A" || got[1].Name != "B" {
		t.Errorf("expected A then B, got %q then %q", got[0].Name, got[1].Name)
	}
	if got[0].Start != 0 || got[0].End != len("class A") {
		t.Errorf("A span = [%d,%d)", got[0].Start, got[0].End)
	}
	if got[1].Start != strings.Index(nestedSrc, "class B") {
		t.Errorf("B start = %d", got[1].Start)
	}
}

func TestFindClassesNoKeyword(t *testing.T) {
	for _, src := range []string{
		"",
		"interface Foo { void bar(); }",
		"classic rock",
		"subclass Foo",
		"class",
		"class   ",
	} {
		if got := FindClasses(src); len(got) != 0 {
			t.Errorf("FindClasses(%q) = %+v, want none", src, got)
		}
	}
}

func TestFindClassesReportsCommentsAndStrings(t *testing.T) {
	src := "// class Commented\nString s = \"class Quoted\";\nclass Real {}"
	var names []string
	for _, m := range FindClasses(src) {
		names = append(names, m.Name)
	}
	want := []string{"Commented", "Quoted", "Real"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestFindClassesRoundTrip(t *testing.T) {
	src := "public class\tFoo extends Bar {}\nfinal class \n  Baz_2 {}"
	for _, m := range FindClasses(src) {
		if m.Start >= m.End || m.End > len(src) {
			t.Fatalf("bad span %+v", m)
		}
		slice := src[m.Start:m.End]
		if !strings.HasPrefix(slice, "class") || !strings.HasSuffix(slice, m.Name) {
			t.Errorf("slice %q does not look like class <%s>", slice, m.Name)
		}
		gap := slice[len("class") : len(slice)-len(m.Name)]
		if gap == "" || strings.TrimSpace(gap) != "" {
			t.Errorf("slice %q: expected whitespace between keyword and name, got %q", slice, gap)
		}
	}
}

func TestFindClassesIdempotent(t *testing.T) {
	src := readFixture(t, "Inventory.java")
	first := FindClasses(src)
	second := FindClasses(src)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between runs:\n%+v\n%+v", first, second)
	}
}

func TestFindBodyEndNested(t *testing.T) {
	if got := FindBodyEnd(nestedSrc, 0); got != len(nestedSrc) {
		t.Errorf("FindBodyEnd(A) = %d, want %d", got, len(nestedSrc))
	}

	b := strings.Index(nestedSrc, "class B")
	want := strings.Index(nestedSrc, "{} } }") + len("{} }")
	if got := FindBodyEnd(nestedSrc, b); got != want {
		t.Errorf("FindBodyEnd(B) = %d, want %d", got, want)
	}
}

func TestFindBodyEndSkipsStrings(t *testing.T) {
	cases := []string{
		`class A { String s = "{"; void m(){} }`,
		`class A { char c = '}'; void m(){} }`,
		`class A { String s = "it's {"; }`,
	}
	for _, src := range cases {
		want := strings.LastIndex(src, "}") + 1
		if got := FindBodyEnd(src, 0); got != want {
			t.Errorf("FindBodyEnd(%q) = %d, want %d", src, got, want)
		}
	}
}

func TestFindBodyEndDiffersFromNaiveCounter(t *testing.T) {
	src := `class A { String s = "}"; void m(){} }`
	want := len(src)
	if got := FindBodyEnd(src, 0); got != want {
		t.Fatalf("FindBodyEnd = %d, want %d", got, want)
	}
	if naive := naiveBodyEnd(src, 0); naive == want {
		t.Fatalf("naive counter unexpectedly agrees (%d)", naive)
	}
}

func TestFindBodyEndUnterminated(t *testing.T) {
	src := "class A { void m() {}"
	if got := FindBodyEnd(src, 0); got != len(src) {
		t.Errorf("FindBodyEnd = %d, want len %d", got, len(src))
	}
}

func TestFindBodyEndEscapedQuoteLimitation(t *testing.T) {
	// The backslash does not protect the quote, so the closing quote opens a
	// new string run and the class brace is never counted.
	src := `class A { String q = "\""; } int x;`
	if got := FindBodyEnd(src, 0); got != len(src) {
		t.Errorf("FindBodyEnd = %d, want %d", got, len(src))
	}
}

func TestFindBodyEndBounds(t *testing.T) {
	src := "class A {}"
	if got := FindBodyEnd(src, -5); got != len(src) {
		t.Errorf("negative start: got %d", got)
	}
	if got := FindBodyEnd(src, 100); got != len(src) {
		t.Errorf("start past end: got %d", got)
	}
	if got := FindBodyEnd("", 0); got != 0 {
		t.Errorf("empty text: got %d", got)
	}
}

func TestFindMethodNames(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"nested", nestedSrc, []string{"m", "n"}},
		{"empty", "", nil},
		{"no methods", "class A { int x = 1; }", nil},
		{
			"modifiers and generics",
			"class A {\n  public static void main(String[] args) {}\n  private List<String> names() { return null; }\n  int[] arr() {return null;}\n}",
			[]string{"main", "names", "arr"},
		},
		{"abstract declaration skipped", "abstract class A { public abstract void run(); }", nil},
		{"duplicates kept", "class A { void go() {} void go(int x) {} }", []string{"go", "go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindMethodNames(tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindMethodNames = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTestableMethodsFixture(t *testing.T) {
	src := readFixture(t, "Inventory.java")
	classes := FindClasses(src)

	var names []string
	for _, c := range classes {
		names = append(names, c.Name)
	}
	if want := []string{"Inventory", "Audit", "Helper"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("classes = %v, want %v", names, want)
	}

	// The modified constructor is signature-shaped and is reported too.
	got := TestableMethods(src, classes[0])
	want := []string{"Inventory", "add", "remove", "size", "empty", "trail"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Inventory methods = %v, want %v", got, want)
	}

	got = TestableMethods(src, classes[2])
	if want := []string{"describe"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Helper methods = %v, want %v", got, want)
	}
}

func TestBodySpanClampsStart(t *testing.T) {
	span := BodySpan("class A {}", ClassMatch{Name: "A", Start: 50, End: 51})
	if span.Start != 10 || span.End != 10 || span.Len() != 0 {
		t.Errorf("span = %+v", span)
	}
}

func FuzzScanner(f *testing.F) {
	f.Add(nestedSrc)
	f.Add(`class A { String s = "{"; void m(){} }`)
	f.Add("class A { void m() {}")
	f.Add("public public public public public static static (")
	f.Fuzz(func(t *testing.T, src string) {
		for _, m := range FindClasses(src) {
			if m.Start >= m.End || m.End > len(src) {
				t.Fatalf("bad span %+v for len %d", m, len(src))
			}
			if !strings.HasPrefix(src[m.Start:m.End], "class") {
				t.Fatalf("span %q does not start with class", src[m.Start:m.End])
			}
			end := FindBodyEnd(src, m.Start)
			if end < m.Start || end > len(src) {
				t.Fatalf("body end %d outside [%d,%d]", end, m.Start, len(src))
			}
			_ = TestableMethods(src, m)
		}
	})
}

func BenchmarkFindMethodNamesModifierRun(b *testing.B) {
	body := strings.Repeat("public static ", 5000) + "(x"
	for b.Loop() {
		FindMethodNames(body)
	}
}

func naiveBodyEnd(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}
