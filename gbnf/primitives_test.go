package gbnf

import "testing"

func TestFormatLiteral(t *testing.T) {
	cases := map[string]string{
		`abc`:       `"abc"`,
		"a\nb":      `"a\nb"`,
		`say "hi"`:  `"say \"hi\""`,
		"tab\rhere": `"tab\rhere"`,
	}
	for in, want := range cases {
		if got := formatLiteral(in); got != want {
			t.Errorf("formatLiteral(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeCharClassLiteral(t *testing.T) {
	got := escapeCharClassLiteral(`a-b]c\d`)
	want := `a\-b\]c\\d`
	if got != want {
		t.Errorf("escapeCharClassLiteral = %q, want %q", got, want)
	}
}

func TestBuildRepetitionOptional(t *testing.T) {
	if got := buildRepetition("x", 0, 1, "", false); got != "x?" {
		t.Errorf("0,1 = %q", got)
	}
}

func TestBuildRepetitionOneOrMore(t *testing.T) {
	if got := buildRepetition("x", 1, unbounded, "", false); got != "x+" {
		t.Errorf("1,inf = %q", got)
	}
}

func TestBuildRepetitionExact(t *testing.T) {
	if got := buildRepetition("hex", 3, 3, "", false); got != "hex hex hex" {
		t.Errorf("3,3 = %q", got)
	}
}

func TestBuildRepetitionRangeNoSep(t *testing.T) {
	got := buildRepetition("x", 1, 3, "", false)
	want := "x (x (x)?)?"
	if got != want {
		t.Errorf("1,3 = %q, want %q", got, want)
	}
}

func TestBuildRepetitionUnboundedWithSeparator(t *testing.T) {
	got := buildRepetition("item", 0, unbounded, `","`, false)
	want := `(item ("," item)*)?`
	if got != want {
		t.Errorf("0,inf sep = %q, want %q", got, want)
	}
}

func TestBuildRepetitionUnboundedMinOne(t *testing.T) {
	got := buildRepetition("item", 1, unbounded, `","`, false)
	want := `item ("," item)*`
	if got != want {
		t.Errorf("1,inf sep = %q, want %q", got, want)
	}
}

func TestBuildRepetitionLiteralFold(t *testing.T) {
	got := buildRepetition(`"ab"`, 3, 3, "", true)
	want := `"ababab"`
	if got != want {
		t.Errorf("literal fold = %q, want %q", got, want)
	}
}
