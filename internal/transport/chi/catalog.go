package chi

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/scriptforge/internal/domain"
	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
	cataloguc "github.com/kailas-cloud/scriptforge/internal/usecase/catalog"
)

const downloadSuffix = "/download"

var errBadPage = errors.New("page and limit must be positive integers")

// ListScripts handles GET /scripts. genre and source filter the listing; page or
// limit switch to a paginated response.
func (s *Server) ListScripts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := cataloguc.Filter{Genre: q.Get("genre")}
	switch src := domcorpus.Source(q.Get("source")); src {
	case "", domcorpus.SourceFile, domcorpus.SourceTraining:
		filter.Source = src
	default:
		writeError(w, http.StatusBadRequest, "source must be \"file\" or \"training\"")
		return
	}

	if !q.Has("page") && !q.Has("limit") {
		docs := s.catalog.List(filter)
		writeJSON(w, http.StatusOK, scriptListResponse{Scripts: scriptItems(docs), Count: len(docs)})
		return
	}

	page, err := parsePage(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	docs, pg := s.catalog.ListPage(filter, page)
	writeJSON(w, http.StatusOK, scriptListResponse{
		Scripts:    scriptItems(docs),
		Count:      len(docs),
		Pagination: paginationFromDomain(pg),
	})
}

// SearchScripts handles GET /scripts/search?q=.
func (s *Server) SearchScripts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("q") == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}
	page, err := parsePage(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, pg, err := s.catalog.Search(q.Get("q"), page)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scriptListResponse{
		Scripts:    scriptItems(docs),
		Count:      len(docs),
		Pagination: paginationFromDomain(pg),
	})
}

// ScriptStats handles GET /scripts/stats.
func (s *Server) ScriptStats(w http.ResponseWriter, _ *http.Request) {
	st := s.catalog.Stats()
	writeJSON(w, http.StatusOK, statsResponse{
		TotalScripts: st.TotalScripts,
		TotalSize:    st.TotalSize,
		AvgSize:      st.AvgSize,
		BySource:     st.BySource,
		ByGenre:      st.ByGenre,
	})
}

// GetScript handles GET /scripts/{id} and GET /scripts/{id}/download.
// An ID that itself ends in /download wins over the download route.
func (s *Server) GetScript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")

	doc, err := s.scripts.Get(id)
	if errors.Is(err, domain.ErrNotFound) {
		if base, ok := strings.CutSuffix(id, downloadSuffix); ok {
			if d, derr := s.scripts.Get(base); derr == nil {
				writeDownload(w, d)
				return
			}
		}
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, scriptResponse{Script: scriptDetailFromDomain(doc)})
}

func writeDownload(w http.ResponseWriter, d domcorpus.Document) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": downloadName(d)})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(d.Content))
}

// downloadName prefers the uploaded file name, then the corpus path, then the ID.
func downloadName(d domcorpus.Document) string {
	name, _ := d.Metadata["originalName"].(string)
	if name == "" {
		name = d.Identifier()
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = "script"
	}
	if !strings.EqualFold(path.Ext(name), scriptExt) {
		name += scriptExt
	}
	return name
}

func parsePage(q url.Values) (cataloguc.Page, error) {
	var p cataloguc.Page
	for _, f := range []struct {
		key string
		dst *int
	}{{"page", &p.Number}, {"limit", &p.Size}} {
		raw := q.Get(f.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return cataloguc.Page{}, errBadPage
		}
		*f.dst = n
	}
	return p, nil
}

func scriptItems(docs []domcorpus.Document) []scriptItem {
	items := make([]scriptItem, len(docs))
	for i, d := range docs {
		items[i] = scriptItemFromDomain(d)
	}
	return items
}

func paginationFromDomain(p cataloguc.Pagination) *paginationResponse {
	return &paginationResponse{
		CurrentPage:  p.CurrentPage,
		TotalPages:   p.TotalPages,
		TotalScripts: p.TotalScripts,
		HasNext:      p.HasNext,
		HasPrev:      p.HasPrev,
	}
}
