// Package indexer keeps the chain of directory-style index documents
// consistent with every note write, and reconstructs listings from
// them. One index document exists per hierarchy level; updates are
// idempotent set-additions so concurrent writers converge.
package indexer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var entryRe = regexp.MustCompile(`^- \[\[(.+)\]\]$`)

// document is the parsed form of a level's _index.md: the level name,
// its child sections, and the notes stored directly at the level.
type document struct {
	name     string
	sections map[string]struct{}
	notes    map[string]struct{}
}

func newDocument(name string) *document {
	return &document{
		name:     name,
		sections: make(map[string]struct{}),
		notes:    make(map[string]struct{}),
	}
}

// parseDocument reads an index document back into sets. It is tolerant
// of entries it does not recognize, but a missing title heading means
// the document was not written by us and is treated as corrupt.
func parseDocument(data []byte) (*document, error) {
	lines := strings.Split(string(data), "\n")

	var doc *document
	block := ""
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		switch {
		case strings.HasPrefix(line, "# "):
			if doc == nil {
				doc = newDocument(strings.TrimPrefix(line, "# "))
			}
		case line == "Sections:":
			block = "sections"
		case line == "Notes:":
			block = "notes"
		default:
			m := entryRe.FindStringSubmatch(line)
			if m == nil || doc == nil {
				continue
			}
			switch block {
			case "sections":
				doc.sections[m[1]] = struct{}{}
			case "notes":
				doc.notes[m[1]] = struct{}{}
			}
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("index document has no title heading")
	}
	return doc, nil
}

// addSection records a child section, reporting whether the document changed.
func (d *document) addSection(name string) bool {
	if _, ok := d.sections[name]; ok {
		return false
	}
	d.sections[name] = struct{}{}
	return true
}

// addNote records a note title, reporting whether the document changed.
func (d *document) addNote(title string) bool {
	if _, ok := d.notes[title]; ok {
		return false
	}
	d.notes[title] = struct{}{}
	return true
}

// render produces the canonical byte form. Entries are sorted so that
// rendering is deterministic: re-running the same update yields
// byte-identical output.
func (d *document) render() []byte {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(d.name)
	b.WriteString("\n")

	if len(d.sections) > 0 {
		b.WriteString("\nSections:\n")
		for _, s := range sortedKeys(d.sections) {
			b.WriteString("- [[")
			b.WriteString(s)
			b.WriteString("]]\n")
		}
	}
	if len(d.notes) > 0 {
		b.WriteString("\nNotes:\n")
		for _, n := range sortedKeys(d.notes) {
			b.WriteString("- [[")
			b.WriteString(n)
			b.WriteString("]]\n")
		}
	}
	return []byte(b.String())
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
