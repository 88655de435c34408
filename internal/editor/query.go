package editor

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/parser"
)

const snippetLen = 200

// ListDocuments returns one page of document summaries and the total number
// of matches.
func (s *Service) ListDocuments(f index.ListFilter) ([]index.DocumentRow, int, error) {
	if s.index != nil {
		return s.index.ListDocuments(f)
	}
	var rows []index.DocumentRow
	for _, d := range s.session.State().Documents {
		if f.Category != "" && d.Category != f.Category {
			continue
		}
		if f.Favorites && !d.IsFavorite {
			continue
		}
		rows = append(rows, index.RowOf(d))
	}
	sortRows(rows, f.Sort)

	total := len(rows)
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	lo := min(max(f.Offset, 0), total)
	hi := min(lo+limit, total)
	return append([]index.DocumentRow{}, rows[lo:hi]...), total, nil
}

// Search finds documents whose title or text contains query.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if s.index != nil {
		return s.index.Search(query, limit)
	}
	docs := s.session.State().Documents
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].UpdatedAt.After(docs[j].UpdatedAt) })

	q := strings.ToLower(query)
	out := []index.SearchResult{}
	for _, d := range docs {
		if len(out) == limit {
			break
		}
		text := parser.PlainText(d.Content)
		if !strings.Contains(strings.ToLower(d.Title), q) && !strings.Contains(strings.ToLower(text), q) {
			continue
		}
		out = append(out, index.SearchResult{ID: d.ID, Title: d.Title, Snippet: truncate(text, snippetLen)})
	}
	return out, nil
}

// Categories returns the categories in use with their document counts.
func (s *Service) Categories() ([]index.CategoryCount, error) {
	if s.index != nil {
		return s.index.Categories()
	}
	counts := map[string]int{}
	for _, d := range s.session.State().Documents {
		counts[d.Category]++
	}
	out := make([]index.CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, index.CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func sortRows(rows []index.DocumentRow, order string) {
	if order == index.SortTitle {
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := strings.ToLower(rows[i].Title), strings.ToLower(rows[j].Title)
			if a != b {
				return a < b
			}
			return rows[i].ID < rows[j].ID
		})
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].UpdatedAt.Equal(rows[j].UpdatedAt) {
			return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

