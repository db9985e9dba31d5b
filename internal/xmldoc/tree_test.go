package xmldoc

import (
	"strings"
	"testing"
)

func TestParse_FindAll(t *testing.T) {
	root, err := Parse([]byte(`<PATDOC><SDOBI><B100><B110><DNUM><PDAT>06564405</PDAT></DNUM></B110></B100></SDOBI></PATDOC>`))
	if err != nil {
		t.Fatal(err)
	}
	if root.Name != "PATDOC" {
		t.Fatalf("root name %q", root.Name)
	}
	got := root.FindAll("SDOBI/B100/B110/DNUM/PDAT")
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Text() != "06564405" {
		t.Fatalf("text %q", got[0].Text())
	}
}

func TestFindAll_MatchesImmediateChildrenOnly(t *testing.T) {
	root, err := Parse([]byte(`<R><A><B>one</B></A><A><B>two</B></A><X><A><B>hidden</B></A></X></R>`))
	if err != nil {
		t.Fatal(err)
	}
	got := root.FindAll("A/B")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Text() != "one" || got[1].Text() != "two" {
		t.Fatalf("texts %q %q", got[0].Text(), got[1].Text())
	}
	if root.FindAll("A/C") != nil {
		t.Fatal("expected no matches for A/C")
	}
	if root.FindAll("") != nil {
		t.Fatal("empty path must yield no matches")
	}
}

func TestText_CollapsesWhitespaceAcrossMarkup(t *testing.T) {
	root, err := Parse([]byte("<R><P>  foo \n\t  bar </P></R>"))
	if err != nil {
		t.Fatal(err)
	}
	p := root.FindAll("P")
	if got := p[0].Text(); got != "foo bar" {
		t.Fatalf("got %q, want %q", got, "foo bar")
	}

	// Visible text ignores markup structure but keeps document order.
	root, err = Parse([]byte(`<R><P>alpha <B>beta</B> gamma</P></R>`))
	if err != nil {
		t.Fatal(err)
	}
	if got := root.FindAll("P")[0].Text(); got != "alpha beta gamma" {
		t.Fatalf("mixed content text %q", got)
	}
}

func TestText_NFCNormalization(t *testing.T) {
	// "e" + combining acute should compose to a single rune.
	root, err := Parse([]byte("<R><N>René</N></R>"))
	if err != nil {
		t.Fatal(err)
	}
	if got := root.FindAll("N")[0].Text(); got != "René" {
		t.Fatalf("got %q, want %q", got, "René")
	}
}

func TestParse_GrantEntityAliases(t *testing.T) {
	root, err := Parse([]byte(`<R><F>10 &mgr;m at &thgr; = 5</F></R>`))
	if err != nil {
		t.Fatal(err)
	}
	if got := root.FindAll("F")[0].Text(); got != "10 μm at θ = 5" {
		t.Fatalf("got %q", got)
	}
}

func TestParse_MalformedReportsError(t *testing.T) {
	cases := []string{
		`<R><A>unclosed</R>`,
		`<R><A></A>`,
		`just text`,
		``,
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestParse_SelfClosingMarker(t *testing.T) {
	root, err := Parse([]byte(`<R><FLAG/></R>`))
	if err != nil {
		t.Fatal(err)
	}
	if len(root.FindAll("FLAG")) != 1 {
		t.Fatal("self-closing element must be findable")
	}
}

func BenchmarkText(b *testing.B) {
	root, err := Parse([]byte(`<R><P>` + strings.Repeat("lorem   ipsum <i>dolor</i> ", 200) + `</P></R>`))
	if err != nil {
		b.Fatal(err)
	}
	p := root.FindAll("P")[0]
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = p.Text()
	}
}
