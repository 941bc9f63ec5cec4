package chi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
)

func catalogAPI(t *testing.T) testAPI {
	t.Helper()
	api := newTestAPI(t, nil,
		domcorpus.NewFile("heist/vault.txt", vaultScript),
		domcorpus.NewFile("romance/beach.txt", "EXT. BEACH - DAY\n\nTwo lovers walk along the shoreline."),
	)
	for i, genre := range []string{"noir", "heist", "noir"} {
		body := fmt.Sprintf(`{"content":"INT. ROOM %d - NIGHT","scriptId":"t%d","metadata":{"genre":%q}}`, i, i, genre)
		if w := api.do(t, http.MethodPost, "/train", body); w.Code != http.StatusOK {
			t.Fatalf("train t%d: %d %s", i, w.Code, w.Body.String())
		}
	}
	return api
}

func listIDs(resp scriptListResponse) []string {
	out := make([]string, len(resp.Scripts))
	for i, s := range resp.Scripts {
		out[i] = s.ID
	}
	return out
}

func TestListScripts_FiltersAndPagination(t *testing.T) {
	api := catalogAPI(t)

	tests := []struct {
		query   string
		want    string
		paged   bool
		total   int
		hasNext bool
	}{
		{"", "heist/vault.txt,romance/beach.txt,t0,t1,t2", false, 0, false},
		{"?genre=noir", "t0,t2", false, 0, false},
		{"?source=file", "heist/vault.txt,romance/beach.txt", false, 0, false},
		{"?genre=HEIST&source=training", "t1", false, 0, false},
		{"?limit=2", "heist/vault.txt,romance/beach.txt", true, 5, true},
		{"?page=3&limit=2", "t2", true, 5, false},
		{"?source=training&page=1&limit=2", "t0,t1", true, 3, true},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			w := api.do(t, http.MethodGet, "/scripts"+tc.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var resp scriptListResponse
			decodeBody(t, w, &resp)

			if got := strings.Join(listIDs(resp), ","); got != tc.want {
				t.Errorf("ids = %s, want %s", got, tc.want)
			}
			if resp.Count != len(resp.Scripts) {
				t.Errorf("count = %d, len = %d", resp.Count, len(resp.Scripts))
			}
			if (resp.Pagination != nil) != tc.paged {
				t.Fatalf("pagination present = %v, want %v", resp.Pagination != nil, tc.paged)
			}
			if tc.paged && (resp.Pagination.TotalScripts != tc.total || resp.Pagination.HasNext != tc.hasNext) {
				t.Errorf("pagination = %+v", resp.Pagination)
			}
		})
	}
}

func TestListScripts_BadQuery(t *testing.T) {
	api := catalogAPI(t)

	for _, q := range []string{"?source=upload", "?page=0", "?limit=abc", "?page=-1&limit=5"} {
		if w := api.do(t, http.MethodGet, "/scripts"+q, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestSearchScripts(t *testing.T) {
	api := catalogAPI(t)

	w := api.do(t, http.MethodGet, "/scripts/search?q=shoreline", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp scriptListResponse
	decodeBody(t, w, &resp)
	if got := strings.Join(listIDs(resp), ","); got != "romance/beach.txt" {
		t.Errorf("ids = %s", got)
	}
	if resp.Pagination == nil || resp.Pagination.TotalScripts != 1 || resp.Pagination.CurrentPage != 1 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}

	decodeBody(t, api.do(t, http.MethodGet, "/scripts/search?q=noir", ""), &resp)
	if got := strings.Join(listIDs(resp), ","); got != "t0,t2" {
		t.Errorf("genre search ids = %s", got)
	}

	tests := []struct {
		query string
		msg   string
	}{
		{"", "Search query is required"},
		{"?q=", "Search query is required"},
		{"?q=(unclosed", "invalid search query"},
	}
	for _, tc := range tests {
		w := api.do(t, http.MethodGet, "/scripts/search"+tc.query, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", tc.query, w.Code)
			continue
		}
		var e errorResponse
		decodeBody(t, w, &e)
		if !strings.Contains(e.Error, tc.msg) {
			t.Errorf("%q: error = %q, want to contain %q", tc.query, e.Error, tc.msg)
		}
	}
}

func TestScriptStats(t *testing.T) {
	api := catalogAPI(t)

	var st statsResponse
	decodeBody(t, api.do(t, http.MethodGet, "/scripts/stats", ""), &st)

	if st.TotalScripts != 5 {
		t.Errorf("totalScripts = %d", st.TotalScripts)
	}
	if st.BySource["file"] != 2 || st.BySource["training"] != 3 {
		t.Errorf("bySource = %v", st.BySource)
	}
	if st.ByGenre["noir"] != 2 || st.ByGenre["heist"] != 1 || st.ByGenre["Unknown"] != 2 {
		t.Errorf("byGenre = %v", st.ByGenre)
	}
	if st.TotalSize == 0 || st.AvgSize == 0 {
		t.Errorf("sizes = %d/%d", st.TotalSize, st.AvgSize)
	}
}

func TestDownloadScript(t *testing.T) {
	api := catalogAPI(t)

	tests := []struct {
		path     string
		filename string
		content  string
	}{
		{"/scripts/heist/vault.txt/download", "vault.txt", vaultScript},
		{"/scripts/t0/download", "t0.txt", "INT. ROOM 0 - NIGHT"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			w := api.do(t, http.MethodGet, tc.path, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("content-type = %q", ct)
			}
			if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename="+tc.filename {
				t.Errorf("content-disposition = %q", cd)
			}
			if w.Body.String() != tc.content {
				t.Errorf("body = %q", w.Body.String())
			}
		})
	}

	if w := api.do(t, http.MethodGet, "/scripts/missing/download", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing download: expected 404, got %d", w.Code)
	}
}

func TestTrainingStatus(t *testing.T) {
	api := catalogAPI(t)

	var st trainingStatusResponse
	w := api.do(t, http.MethodGet, "/train/status/t1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	decodeBody(t, w, &st)
	if st.ScriptID != "t1" || st.Status != "completed" || st.Source != "training" || st.Timestamp == nil {
		t.Errorf("status = %+v", st)
	}

	if w := api.do(t, http.MethodGet, "/train/status/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// --- Multipart upload ---

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile(uploadField, filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte(content))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodPost, "/train", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestTrainUpload(t *testing.T) {
	api := newTestAPI(t, nil)

	r := uploadRequest(t, "midnight_heist.txt", vaultScript, map[string]string{
		"scriptId": "upload-1",
		"genre":    "Heist",
		"year":     "1999",
	})
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var trained trainResponse
	decodeBody(t, w, &trained)
	if trained.ScriptID != "upload-1" || trained.TrainingDataCount != 1 {
		t.Errorf("response = %+v", trained)
	}
	if len(trained.ParsedData.Scenes) != 1 {
		t.Errorf("parsedData = %+v", trained.ParsedData)
	}

	doc, err := api.store.Get("upload-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Content != vaultScript {
		t.Errorf("content = %q", doc.Content)
	}
	want := map[string]any{
		"title": "midnight_heist", "genre": "Heist", "author": "Unknown",
		"year": 1999, "originalName": "midnight_heist.txt",
	}
	for k, v := range want {
		if doc.Metadata[k] != v {
			t.Errorf("metadata[%s] = %v, want %v", k, doc.Metadata[k], v)
		}
	}

	w = api.do(t, http.MethodGet, "/scripts/upload-1/download", "")
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename=midnight_heist.txt" {
		t.Errorf("download name = %q", cd)
	}
}

func TestTrainUpload_Rejects(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		name     string
		filename string
		content  string
		msg      string
	}{
		{"no file", "", "", "No file uploaded"},
		{"wrong type", "script.pdf", "%PDF-1.4", "Invalid file type"},
		{"not utf8", "bad.txt", "\xff\xfe\xfd", "UTF-8"},
		{"empty", "empty.txt", "   ", "script content is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			api.handler.ServeHTTP(w, uploadRequest(t, tc.filename, tc.content, nil))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			var e errorResponse
			decodeBody(t, w, &e)
			if !strings.Contains(e.Error, tc.msg) {
				t.Errorf("error = %q, want to contain %q", e.Error, tc.msg)
			}
		})
	}

	if api.store.Count() != 0 {
		t.Errorf("rejected uploads must not reach the corpus, count = %d", api.store.Count())
	}
}
