// Package catalog lists, searches and summarizes the corpus for browsing clients.
package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/kailas-cloud/scriptforge/internal/domain"
	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
)

// UnknownGenre groups documents without a genre in Stats.
const UnknownGenre = "Unknown"

// searchedMetadata are the metadata keys matched by Search besides the name and content.
var searchedMetadata = []string{"title", "genre", "author"}

// Filter narrows a listing. Zero fields match everything.
type Filter struct {
	Genre  string
	Source domcorpus.Source
}

// Page selects a 1-based page. Zero values mean the first page of the default size.
type Page struct {
	Number int
	Size   int
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalScripts int
	HasNext      bool
	HasPrev      bool
}

// Stats summarizes the corpus.
type Stats struct {
	TotalScripts int
	TotalSize    int
	AvgSize      int
	BySource     map[string]int
	ByGenre      map[string]int
}

// Service reads the corpus for listing endpoints. It never mutates it.
type Service struct {
	corpus          CorpusReader
	defaultPageSize int
	maxPageSize     int
}

// New creates a catalog service.
func New(corpus CorpusReader) *Service {
	return &Service{
		corpus:          corpus,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// List returns every document matching f, in insertion order.
func (s *Service) List(f Filter) []domcorpus.Document {
	var out []domcorpus.Document
	for _, d := range s.corpus.All() {
		if f.matches(d) {
			out = append(out, d)
		}
	}
	return out
}

// ListPage returns one page of the documents matching f.
func (s *Service) ListPage(f Filter, p Page) ([]domcorpus.Document, Pagination) {
	return s.paginate(s.List(f), p)
}

// Search matches query as a case-insensitive regular expression against the script
// name, content, and the title, genre and author metadata.
func (s *Service) Search(query string, p Page) ([]domcorpus.Document, Pagination, error) {
	if query == "" {
		return nil, Pagination{}, fmt.Errorf("%w: search query is required", domain.ErrInvalidInput)
	}
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("%w: invalid search query: %w", domain.ErrInvalidInput, err)
	}

	var hits []domcorpus.Document
	for _, d := range s.corpus.All() {
		if searchMatches(re, d) {
			hits = append(hits, d)
		}
	}
	docs, pg := s.paginate(hits, p)
	return docs, pg, nil
}

// Stats counts documents by source and genre and sums content size in bytes.
func (s *Service) Stats() Stats {
	st := Stats{
		BySource: map[string]int{},
		ByGenre:  map[string]int{},
	}
	for _, d := range s.corpus.All() {
		st.TotalScripts++
		st.TotalSize += len(d.Content)
		st.BySource[string(d.Source)]++

		genre := Genre(d)
		if genre == "" {
			genre = UnknownGenre
		}
		st.ByGenre[genre]++
	}
	if st.TotalScripts > 0 {
		st.AvgSize = int(math.Round(float64(st.TotalSize) / float64(st.TotalScripts)))
	}
	return st
}

// Genre returns the document's metadata genre, or "" when unset or not a string.
func Genre(d domcorpus.Document) string {
	return metadataString(d, "genre")
}

func (f Filter) matches(d domcorpus.Document) bool {
	if f.Source != "" && d.Source != f.Source {
		return false
	}
	if f.Genre != "" && !strings.EqualFold(Genre(d), f.Genre) {
		return false
	}
	return true
}

func searchMatches(re *regexp.Regexp, d domcorpus.Document) bool {
	if re.MatchString(d.Identifier()) || re.MatchString(d.Content) {
		return true
	}
	for _, key := range searchedMetadata {
		if v := metadataString(d, key); v != "" && re.MatchString(v) {
			return true
		}
	}
	return false
}

func metadataString(d domcorpus.Document, key string) string {
	v, _ := d.Metadata[key].(string)
	return v
}

func (s *Service) paginate(docs []domcorpus.Document, p Page) ([]domcorpus.Document, Pagination) {
	size := p.Size
	if size <= 0 {
		size = s.defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}
	number := max(p.Number, 1)

	total := len(docs)
	start := total
	if number-1 <= total/size {
		start = min((number-1)*size, total)
	}
	end := min(start+size, total)

	return docs[start:end], Pagination{
		CurrentPage:  number,
		TotalPages:   (total + size - 1) / size,
		TotalScripts: total,
		HasNext:      end < total,
		HasPrev:      number > 1,
	}
}
