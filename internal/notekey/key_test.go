package notekey

import (
	"errors"
	"strings"
	"testing"

	"github.com/MatrixedMind/MatrixedMind/internal/apperr"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Personal Wiki", "Personal_Wiki"},
		{"Q1: Planning", "Q1__Planning"},
		{"a/b\\c", "a_b_c"},
		{"tabs\tand  spaces", "tabs_and_spaces"},
		{`we*ird?"<>|`, "we_ird_____"},
		{"dots.are.bad", "dots_are_bad"},
		{"ctrl\x01\x1fchars", "ctrlchars"},
		{"  trimmed  ", "trimmed"},
		{"", ""},
		{"...", "___"},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Errorf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeNeverEmitsUnsafeRunes(t *testing.T) {
	inputs := []string{
		"../../etc/passwd",
		"a\\..\\b",
		"x y\tz\n",
		"mix: of * every ? bad \" char < > | .",
	}
	for _, in := range inputs {
		got := Sanitize(in)
		if strings.ContainsAny(got, "/\\ \t\n:*?\"<>|.") {
			t.Errorf("Sanitize(%q) = %q contains unsafe rune", in, got)
		}
	}
}

func TestResolveSimpleSection(t *testing.T) {
	k, err := Resolve("Personal Wiki", "Ideas", "Offline Sync Plan")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := k.Storage(); got != "notes/Personal_Wiki/Ideas/Offline_Sync_Plan.md" {
		t.Errorf("Storage() = %q", got)
	}
}

func TestResolveNestedSection(t *testing.T) {
	k, err := Resolve("Personal Wiki", "Work/Q1 Planning", "Budget")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := k.Storage(); got != "notes/Personal_Wiki/Work/Q1_Planning/Budget.md" {
		t.Errorf("Storage() = %q", got)
	}
	wantChain := []string{
		"notes/Personal_Wiki/_index.md",
		"notes/Personal_Wiki/Work/_index.md",
		"notes/Personal_Wiki/Work/Q1_Planning/_index.md",
	}
	chain := k.IndexKeys()
	if len(chain) != len(wantChain) {
		t.Fatalf("IndexKeys() = %v", chain)
	}
	for i := range chain {
		if chain[i] != wantChain[i] {
			t.Errorf("IndexKeys()[%d] = %q, want %q", i, chain[i], wantChain[i])
		}
	}
}

func TestResolveEmptySection(t *testing.T) {
	k, err := Resolve("Wiki", "", "Note")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(k.Sections) != 0 {
		t.Errorf("Sections = %v, want none", k.Sections)
	}
	if got := k.Storage(); got != "notes/Wiki/Note.md" {
		t.Errorf("Storage() = %q", got)
	}
	if chain := k.IndexKeys(); len(chain) != 1 || chain[0] != "notes/Wiki/_index.md" {
		t.Errorf("IndexKeys() = %v", chain)
	}
}

func TestResolveSectionFraming(t *testing.T) {
	for _, section := range []string{"/Ideas", "Ideas/", "/Ideas/", "/"} {
		_, err := Resolve("P", section, "T")
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Resolve(section=%q) err = %v, want ErrValidation", section, err)
		}
	}
}

func TestResolveCollapsesInteriorSlashes(t *testing.T) {
	k, err := Resolve("P", "a//b", "T")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := k.SectionPath(); got != "a/b" {
		t.Errorf("SectionPath() = %q, want a/b", got)
	}
}

func TestResolveEmptyRequiredFields(t *testing.T) {
	if _, err := Resolve("", "s", "t"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty project err = %v", err)
	}
	if _, err := Resolve("p", "s", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty title err = %v", err)
	}
	// Control characters strip to nothing, which is a validation error.
	if _, err := Resolve("\x01\x02", "s", "t"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("project sanitizing to empty err = %v", err)
	}
}

func TestResolveSanitizesSpecialCharacters(t *testing.T) {
	k, err := Resolve("P", "Work Items/Q1: Planning", "T")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := k.SectionPath(); got != "Work_Items/Q1__Planning" {
		t.Errorf("SectionPath() = %q, want Work_Items/Q1__Planning", got)
	}
}

func TestFromStorage(t *testing.T) {
	k, ok := FromStorage("notes/Personal_Wiki/Work/Q1_Planning/Budget.md")
	if !ok {
		t.Fatal("FromStorage failed")
	}
	if k.Project != "Personal_Wiki" || k.Title != "Budget" || k.SectionPath() != "Work/Q1_Planning" {
		t.Errorf("key = %+v", k)
	}
	if got := k.Storage(); got != "notes/Personal_Wiki/Work/Q1_Planning/Budget.md" {
		t.Errorf("round trip = %q", got)
	}

	for _, bad := range []string{
		"notes/P/_index.md",
		"notes/P/s/_index.md",
		"notes/P/s/readme.txt",
		"other/P/t.md",
		"notes/t.md",
	} {
		if _, ok := FromStorage(bad); ok {
			t.Errorf("FromStorage(%q) unexpectedly ok", bad)
		}
	}
}

func TestLevelName(t *testing.T) {
	k, _ := Resolve("Proj", "a/b", "T")
	want := []string{"Proj", "a", "b"}
	for i, w := range want {
		if got := k.LevelName(i); got != w {
			t.Errorf("LevelName(%d) = %q, want %q", i, got, w)
		}
	}
}
