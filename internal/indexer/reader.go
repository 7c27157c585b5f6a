package indexer

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/MatrixedMind/MatrixedMind/internal/blob"
	"github.com/MatrixedMind/MatrixedMind/internal/notekey"
)

// Project is one project in a full listing.
type Project struct {
	Name     string    `json:"name"`
	Sections []Section `json:"sections"`
}

// Section is one hierarchy level holding notes. Name is the full
// slash-joined section path; root-level notes appear under the empty
// name.
type Section struct {
	Name  string   `json:"name"`
	Notes []string `json:"notes"`
}

// Reader reconstructs project listings from index documents, degrading
// to raw blob-key enumeration when index maintenance has lagged or a
// document is corrupt.
type Reader struct {
	blobs  blob.Store
	logger *slog.Logger
}

// NewReader creates a Reader.
func NewReader(blobs blob.Store, logger *slog.Logger) *Reader {
	return &Reader{blobs: blobs, logger: logger}
}

// rawTree is the listing reconstructed from blob keys alone:
// project -> section path -> note titles.
type rawTree map[string]map[string][]string

// ListAll returns every project with its section paths and note titles.
// The primary strategy walks index documents top-down following
// declared child links; any level whose index is missing or unreadable
// falls back to the raw key structure for that subtree.
func (r *Reader) ListAll(ctx context.Context) ([]Project, error) {
	keys, err := r.blobs.List(ctx, notekey.Root+"/")
	if err != nil {
		return nil, err
	}
	raw := buildRawTree(keys)

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	projects := make([]Project, 0, len(names))
	for _, name := range names {
		sections := make(map[string][]string)
		r.walk(ctx, name, nil, raw[name], sections)
		projects = append(projects, Project{Name: name, Sections: sortSections(sections)})
	}
	return projects, nil
}

// walk descends one hierarchy level via its index document, collecting
// notes into sections keyed by full section path.
func (r *Reader) walk(ctx context.Context, project string, prefix []string, raw map[string][]string, out map[string][]string) {
	indexKey := levelIndexKey(project, prefix)
	obj, err := r.blobs.Get(ctx, indexKey)
	if err != nil {
		r.fallback(prefix, raw, out)
		return
	}
	doc, err := parseDocument(obj.Data)
	if err != nil {
		r.logger.Warn("unreadable index document, using raw keys",
			slog.String("key", indexKey),
			slog.String("error", err.Error()))
		r.fallback(prefix, raw, out)
		return
	}

	path := strings.Join(prefix, "/")
	if notes := sortedKeys(doc.notes); len(notes) > 0 {
		out[path] = notes
	}
	for _, child := range sortedKeys(doc.sections) {
		next := append(append([]string(nil), prefix...), child)
		r.walk(ctx, project, next, raw, out)
	}
}

// fallback fills out from the raw key tree for every section path at or
// below prefix.
func (r *Reader) fallback(prefix []string, raw map[string][]string, out map[string][]string) {
	p := strings.Join(prefix, "/")
	for path, notes := range raw {
		if p != "" && path != p && !strings.HasPrefix(path, p+"/") {
			continue
		}
		if _, done := out[path]; done {
			continue
		}
		sorted := append([]string(nil), notes...)
		sort.Strings(sorted)
		out[path] = sorted
	}
}

// buildRawTree derives the full listing from blob key structure alone.
func buildRawTree(keys []string) rawTree {
	tree := make(rawTree)
	for _, key := range keys {
		if !strings.HasPrefix(key, notekey.Root+"/") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(key, notekey.Root+"/"), "/")
		if len(parts) < 2 {
			continue
		}
		project := parts[0]
		file := parts[len(parts)-1]
		sectionPath := strings.Join(parts[1:len(parts)-1], "/")

		if _, ok := tree[project]; !ok {
			tree[project] = make(map[string][]string)
		}
		if file == notekey.IndexFile || !strings.HasSuffix(file, ".md") {
			continue
		}
		title := strings.TrimSuffix(file, ".md")
		if !slices.Contains(tree[project][sectionPath], title) {
			tree[project][sectionPath] = append(tree[project][sectionPath], title)
		}
	}
	return tree
}

func levelIndexKey(project string, prefix []string) string {
	parts := append([]string{notekey.Root, project}, prefix...)
	return strings.Join(parts, "/") + "/" + notekey.IndexFile
}

func sortSections(sections map[string][]string) []Section {
	out := make([]Section, 0, len(sections))
	for name, notes := range sections {
		out = append(out, Section{Name: name, Notes: notes})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
