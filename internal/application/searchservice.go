package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lockfind/lockfind/internal/domain/model"
	"github.com/lockfind/lockfind/internal/domain/port/driven"
)

const (
	defaultMaxResults = 1000
	maxMaxResults     = 10000
)

// SearchRequest is the parsed body of both search routes.
type SearchRequest struct {
	Query         string `json:"query"`
	CaseSensitive bool   `json:"caseSensitive"`
	MaxResults    int    `json:"maxResults"`
}

// SearchService runs regex and literal substring searches over the note
// vault, line by line.
type SearchService struct {
	vault driven.VaultReader
}

// NewSearchService creates a SearchService reading through vault.
func NewSearchService(vault driven.VaultReader) *SearchService {
	return &SearchService{vault: vault}
}

// Regex searches every note for matches of the request's pattern.
func (s *SearchService) Regex(ctx context.Context, req SearchRequest) ([]model.SearchResult, error) {
	maxResults, err := validateSearchRequest(req)
	if err != nil {
		return nil, err
	}

	pattern := req.Query
	if !req.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, model.NewAPIError(model.ErrInvalidRegex,
			fmt.Sprintf("Invalid regular expression: %v", err), 400)
	}

	return s.scan(ctx, maxResults, func(line string, results []model.SearchResult, file string, lineNum int) []model.SearchResult {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			if len(results) >= maxResults {
				break
			}
			results = append(results, model.SearchResult{
				File:    file,
				Line:    lineNum,
				Col:     loc[0],
				Text:    line[loc[0]:loc[1]],
				Context: strings.TrimSpace(line),
			})
		}
		return results
	})
}

// Direct searches every note for literal occurrences of the request's
// query.
func (s *SearchService) Direct(ctx context.Context, req SearchRequest) ([]model.SearchResult, error) {
	maxResults, err := validateSearchRequest(req)
	if err != nil {
		return nil, err
	}

	return s.scan(ctx, maxResults, func(line string, results []model.SearchResult, file string, lineNum int) []model.SearchResult {
		for _, span := range literalMatches(line, req.Query, req.CaseSensitive) {
			if len(results) >= maxResults {
				break
			}
			results = append(results, model.SearchResult{
				File:    file,
				Line:    lineNum,
				Col:     span[0],
				Text:    line[span[0]:span[1]],
				Context: strings.TrimSpace(line),
			})
		}
		return results
	})
}

// literalMatches returns the [start, end) byte spans of every
// non-overlapping occurrence of query in line. Case-insensitive matching
// runs over a lowered copy of the line; lowering can change a rune's byte
// width (U+023A is two bytes, its lowercase U+2C65 is three), so the
// lowered offsets are mapped back onto the original line before slicing.
func literalMatches(line, query string, caseSensitive bool) [][2]int {
	var spans [][2]int

	if caseSensitive {
		for from := 0; ; {
			idx := strings.Index(line[from:], query)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, [2]int{start, start + len(query)})
			from = start + len(query)
		}
		return spans
	}

	lowered, origin := foldLine(line)
	query = strings.ToLower(query)

	for from := 0; ; {
		idx := strings.Index(lowered[from:], query)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(query)

		origStart := origin[start]
		origEnd := len(line)
		if end < len(lowered) {
			origEnd = origin[end]
		}
		spans = append(spans, [2]int{origStart, origEnd})
		from = end
	}
	return spans
}

// foldLine lowers line rune by rune and records, for each byte of the
// lowered form, the starting offset of the original rune it came from.
// Every recorded offset is a rune boundary of line, so spans derived from
// the mapping always slice line cleanly.
func foldLine(line string) (string, []int) {
	var b strings.Builder
	b.Grow(len(line))
	origin := make([]int, 0, len(line))

	for i, r := range line {
		lr := unicode.ToLower(r)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			origin = append(origin, i)
		}
		b.WriteRune(lr)
	}
	return b.String(), origin
}

// scan walks every note line by line, letting matchLine collect results
// until maxResults is reached.
func (s *SearchService) scan(
	ctx context.Context,
	maxResults int,
	matchLine func(line string, results []model.SearchResult, file string, lineNum int) []model.SearchResult,
) ([]model.SearchResult, error) {
	notes, err := s.vault.ListNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	results := make([]model.SearchResult, 0)
	for _, note := range notes {
		if len(results) >= maxResults {
			break
		}

		content, err := s.vault.ReadNote(ctx, note)
		if err != nil {
			return nil, fmt.Errorf("read note %q: %w", note, err)
		}

		for lineNum, line := range strings.Split(content, "\n") {
			if len(results) >= maxResults {
				break
			}
			results = matchLine(line, results, note, lineNum)
		}
	}

	return results, nil
}

// validateSearchRequest checks the shared body fields and returns the
// effective maxResults.
func validateSearchRequest(req SearchRequest) (int, error) {
	if req.Query == "" {
		return 0, model.NewAPIError(model.ErrInvalidRequest,
			"Query is required and must be a string", 400)
	}

	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = defaultMaxResults
	}
	if maxResults < 1 || maxResults > maxMaxResults {
		return 0, model.NewAPIError(model.ErrInvalidRequest,
			"maxResults must be between 1 and 10000", 400)
	}

	return maxResults, nil
}
