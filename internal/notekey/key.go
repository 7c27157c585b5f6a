// Package notekey derives canonical, traversal-safe storage keys from
// the (project, section, title) triple a client supplies. Section may
// encode arbitrary nesting with forward slashes; every component is
// sanitized independently so a sanitized segment can never smuggle a
// hierarchy separator.
package notekey

import (
	"strings"

	"github.com/MatrixedMind/MatrixedMind/internal/apperr"
)

// Root is the prefix under which all note blobs and index documents live.
const Root = "notes"

// IndexFile is the name of the index document at each hierarchy level.
const IndexFile = "_index.md"

// Key is the immutable identity of a note: sanitized project segment,
// ordered sanitized section segments, and sanitized title segment.
type Key struct {
	Project  string
	Sections []string
	Title    string
}

// Resolve validates and sanitizes the raw triple into a Key.
//
// Section framing is checked before sanitization: a leading or trailing
// slash is a validation error, while an empty section means "no
// subsection". Interior empty segments (consecutive slashes) collapse
// silently. Project and title must be non-empty both before and after
// sanitization.
func Resolve(project, section, title string) (Key, error) {
	if project == "" {
		return Key{}, apperr.Validationf("project must not be empty")
	}
	if title == "" {
		return Key{}, apperr.Validationf("title must not be empty")
	}
	if section != "" && (strings.HasPrefix(section, "/") || strings.HasSuffix(section, "/")) {
		return Key{}, apperr.Validationf("section must not start or end with '/': %q", section)
	}

	p := Sanitize(project)
	if p == "" {
		return Key{}, apperr.Validationf("project sanitizes to empty: %q", project)
	}
	t := Sanitize(title)
	if t == "" {
		return Key{}, apperr.Validationf("title sanitizes to empty: %q", title)
	}

	var segs []string
	if section != "" {
		for _, raw := range strings.Split(section, "/") {
			if raw == "" {
				continue
			}
			s := Sanitize(raw)
			if s == "" {
				return Key{}, apperr.Validationf("section segment sanitizes to empty: %q", raw)
			}
			segs = append(segs, s)
		}
	}

	return Key{Project: p, Sections: segs, Title: t}, nil
}

// FromStorage parses a canonical storage key back into a Key. It
// reports false for keys that are not note blobs: index documents,
// non-Markdown objects, or keys outside the notes root.
func FromStorage(storageKey string) (Key, bool) {
	parts := strings.Split(storageKey, "/")
	if len(parts) < 3 || parts[0] != Root {
		return Key{}, false
	}
	last := parts[len(parts)-1]
	if last == IndexFile || !strings.HasSuffix(last, ".md") {
		return Key{}, false
	}
	k := Key{
		Project:  parts[1],
		Sections: parts[2 : len(parts)-1],
		Title:    strings.TrimSuffix(last, ".md"),
	}
	if k.Project == "" || k.Title == "" {
		return Key{}, false
	}
	for _, s := range k.Sections {
		if s == "" {
			return Key{}, false
		}
	}
	return k, true
}

// Storage returns the canonical blob key for the note:
// notes/<project>/<section...>/<title>.md.
func (k Key) Storage() string {
	parts := make([]string, 0, len(k.Sections)+3)
	parts = append(parts, Root, k.Project)
	parts = append(parts, k.Sections...)
	parts = append(parts, k.Title+".md")
	return strings.Join(parts, "/")
}

// IndexKeys returns the ancestor chain: one index document key per
// hierarchy level from the project root down to the note's containing
// section, N+1 entries for N section segments. The chain is derived
// once and iterated as a plain list so each level can be retried and
// logged independently.
func (k Key) IndexKeys() []string {
	keys := make([]string, 0, len(k.Sections)+1)
	prefix := Root + "/" + k.Project
	keys = append(keys, prefix+"/"+IndexFile)
	for _, s := range k.Sections {
		prefix += "/" + s
		keys = append(keys, prefix+"/"+IndexFile)
	}
	return keys
}

// SectionPath returns the slash-joined section prefix, empty for a
// root-level note.
func (k Key) SectionPath() string {
	return strings.Join(k.Sections, "/")
}

// LevelName returns the display name of the hierarchy level at depth i
// in the ancestor chain: the project segment at depth 0, otherwise the
// i-th section segment.
func (k Key) LevelName(i int) string {
	if i == 0 {
		return k.Project
	}
	return k.Sections[i-1]
}
