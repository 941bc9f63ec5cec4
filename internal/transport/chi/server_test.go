package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
	domgen "github.com/kailas-cloud/scriptforge/internal/domain/generation"
	"github.com/kailas-cloud/scriptforge/internal/repository/corpus"
	cataloguc "github.com/kailas-cloud/scriptforge/internal/usecase/catalog"
	generationuc "github.com/kailas-cloud/scriptforge/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/scriptforge/internal/usecase/health"
	traininguc "github.com/kailas-cloud/scriptforge/internal/usecase/training"
)

// --- Mocks ---

type stubCompleter struct {
	result domgen.Completion
}

func (s *stubCompleter) Complete(_ context.Context, _ domgen.Prompt) domgen.Completion {
	return s.result
}

// --- Helpers ---

const vaultScript = `INT. CITY BANK VAULT - MIDNIGHT

Emergency lights bathe the steel vault door in a slow red pulse.

RAY
Ninety seconds before the guard rotation.

NADIA
Then stop talking and start drilling.`

type testAPI struct {
	handler http.Handler
	store   *corpus.Store
}

func newTestAPI(t *testing.T, completer generationuc.Completer, docs ...domcorpus.Document) testAPI {
	t.Helper()
	store := corpus.NewStore()
	store.Load(docs)

	gen := generationuc.New(store, completer, generationuc.DefaultConfig(), zap.NewNop())
	srv := NewServer(
		gen,
		traininguc.New(store),
		store,
		cataloguc.New(store),
		healthuc.New(store, nil),
		zap.NewNop(),
	)
	return testAPI{handler: NewRouter(srv, zap.NewNop(), "*"), store: store}
}

func (a testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// --- Tests ---

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil, domcorpus.NewFile("a.txt", "text"))

	w := api.do(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp healthResponse
	decodeBody(t, w, &resp)
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.TrainingDataCount != 1 {
		t.Errorf("training_data_count = %d, want 1", resp.TrainingDataCount)
	}
	if resp.OpenAIAvailable || resp.OpenAIStatus != "not_configured" {
		t.Errorf("provider = %v %q", resp.OpenAIAvailable, resp.OpenAIStatus)
	}
	if resp.Timestamp.IsZero() {
		t.Error("timestamp missing")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestGenerate_EchoesPromptAndType(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		body       string
		outputType string
		marker     string
	}{
		{`{"prompt":"a heist at midnight"}`, "script", "FADE IN:"},
		{`{"prompt":"a heist at midnight","outputType":"script"}`, "script", "FADE OUT."},
		{`{"prompt":"a heist at midnight","outputType":"outline"}`, "outline", "ACT I - SETUP"},
		{`{"prompt":"x","conversationHistory":[{"role":"user","content":"hi"}]}`, "script", "FADE IN:"},
		{`{"prompt":""}`, "script", "FADE IN:"},
		{`{"prompt":"   "}`, "script", "FADE OUT."},
		{`{"prompt":"a heist","outputType":"poem"}`, "poem", "FADE IN:"},
	}
	for _, tt := range tests {
		w := api.do(t, http.MethodPost, "/generate", tt.body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", tt.body, w.Code, w.Body.String())
		}

		var resp generateResponse
		decodeBody(t, w, &resp)
		if resp.Content == "" || !strings.Contains(resp.Content, tt.marker) {
			t.Errorf("%s: content missing %q:\n%s", tt.body, tt.marker, resp.Content)
		}
		if resp.OutputType != tt.outputType {
			t.Errorf("%s: outputType = %q, want %q", tt.body, resp.OutputType, tt.outputType)
		}
		var req generateRequest
		_ = json.Unmarshal([]byte(tt.body), &req)
		if resp.Prompt != *req.Prompt {
			t.Errorf("%s: prompt = %q", tt.body, resp.Prompt)
		}
		if resp.Source != "fallback" {
			t.Errorf("%s: source = %q, want fallback", tt.body, resp.Source)
		}
	}
}

func TestGenerate_HeistWithoutProviderIsDeterministic(t *testing.T) {
	api := newTestAPI(t, nil)
	body := `{"prompt":"a heist at midnight"}`

	var first, second generateResponse
	decodeBody(t, api.do(t, http.MethodPost, "/generate", body), &first)
	decodeBody(t, api.do(t, http.MethodPost, "/generate", body), &second)

	if !strings.Contains(first.Content, "FADE IN:") || !strings.Contains(first.Content, "FADE OUT.") {
		t.Errorf("scene markers missing:\n%s", first.Content)
	}
	if first.Content != second.Content {
		t.Error("identical prompt and corpus must give identical content")
	}
}

func TestGenerate_ModelContentVerbatim(t *testing.T) {
	api := newTestAPI(t, &stubCompleter{result: domgen.Succeeded("INT. ROOFTOP - NIGHT\n\nwritten by the model")})

	var resp generateResponse
	decodeBody(t, api.do(t, http.MethodPost, "/generate", `{"prompt":"rooftop chase"}`), &resp)

	if resp.Content != "INT. ROOFTOP - NIGHT\n\nwritten by the model" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Source != "model" {
		t.Errorf("source = %q, want model", resp.Source)
	}
}

func TestGenerate_BadRequests(t *testing.T) {
	api := newTestAPI(t, nil, domcorpus.NewFile("a.txt", vaultScript))

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"missing prompt", `{"outputType":"script"}`, "Prompt is required"},
		{"null prompt", `{"prompt":null}`, "Prompt is required"},
		{"not json", `prompt=hi`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/generate", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var resp errorResponse
			decodeBody(t, w, &resp)
			if !strings.Contains(resp.Error, tt.msg) {
				t.Errorf("error = %q, want to contain %q", resp.Error, tt.msg)
			}
		})
	}

	if api.store.Count() != 1 {
		t.Errorf("bad requests must not mutate the corpus, count = %d", api.store.Count())
	}
}

func TestGenerate_BodyTooLarge(t *testing.T) {
	store := corpus.NewStore()
	srv := NewServer(
		generationuc.New(store, nil, generationuc.DefaultConfig(), nil),
		traininguc.New(store), store, cataloguc.New(store), healthuc.New(store, nil), nil,
	).WithMaxBodyBytes(64)
	handler := NewRouter(srv, zap.NewNop(), "*")

	body := `{"prompt":"` + strings.Repeat("a", 200) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized body, got %d", w.Code)
	}
}

func TestTrain_AppendAndRetrieve(t *testing.T) {
	api := newTestAPI(t, nil, domcorpus.NewFile("a.txt", "text"))

	w := api.do(t, http.MethodPost, "/train",
		`{"content":`+mustJSON(t, vaultScript)+`,"scriptId":"vault-1","metadata":{"genre":"heist"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var trained trainResponse
	decodeBody(t, w, &trained)
	if trained.Message != "Training data processed successfully" {
		t.Errorf("message = %q", trained.Message)
	}
	if trained.ScriptID != "vault-1" {
		t.Errorf("scriptId = %q", trained.ScriptID)
	}
	if trained.TrainingDataCount != 2 {
		t.Errorf("trainingDataCount = %d, want 2", trained.TrainingDataCount)
	}
	if len(trained.ParsedData.Scenes) != 1 || len(trained.ParsedData.Dialogue) != 2 {
		t.Errorf("parsedData = %+v", trained.ParsedData)
	}

	w = api.do(t, http.MethodGet, "/scripts/vault-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got scriptResponse
	decodeBody(t, w, &got)
	if got.Script.ID != "vault-1" || got.Script.Content != vaultScript {
		t.Errorf("script = %+v", got.Script)
	}
	if got.Script.Metadata["genre"] != "heist" {
		t.Errorf("metadata = %v", got.Script.Metadata)
	}
	if got.Script.Timestamp == nil {
		t.Error("training script must carry a timestamp")
	}
}

func TestTrain_Errors(t *testing.T) {
	api := newTestAPI(t, nil)

	if w := api.do(t, http.MethodPost, "/train", `{"scriptId":"x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing content: expected 400, got %d", w.Code)
	}
	if w := api.do(t, http.MethodPost, "/train", `{"content":"   "}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank content: expected 400, got %d", w.Code)
	}

	if w := api.do(t, http.MethodPost, "/train", `{"content":"x","scriptId":"dup"}`); w.Code != http.StatusOK {
		t.Fatalf("first train: expected 200, got %d", w.Code)
	}
	w := api.do(t, http.MethodPost, "/train", `{"content":"y","scriptId":"dup"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", w.Code)
	}
	if api.store.Count() != 1 {
		t.Errorf("count = %d, want 1", api.store.Count())
	}
}

func TestScripts_ListAndFileLookup(t *testing.T) {
	api := newTestAPI(t, nil,
		domcorpus.NewFile("heist/vault.txt", vaultScript),
		domcorpus.NewFile("b.txt", "EXT. FIELD - DAY"),
	)

	var list scriptListResponse
	decodeBody(t, api.do(t, http.MethodGet, "/scripts", ""), &list)
	if list.Count != 2 || len(list.Scripts) != 2 {
		t.Fatalf("count = %d, len = %d", list.Count, len(list.Scripts))
	}
	if list.Scripts[0].ID != "heist/vault.txt" || list.Scripts[0].Filename != "heist/vault.txt" {
		t.Errorf("first script = %+v", list.Scripts[0])
	}
	if list.Scripts[0].Metadata == nil {
		t.Error("metadata should be an empty object, not null")
	}

	w := api.do(t, http.MethodGet, "/scripts/heist/vault.txt", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got scriptResponse
	decodeBody(t, w, &got)
	if got.Script.Parsed == nil || len(got.Script.Parsed.Scenes) != 1 {
		t.Errorf("file scripts should be parsed on demand, got %+v", got.Script.Parsed)
	}
}

func TestScripts_NotFound(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.do(t, http.MethodGet, "/scripts/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp errorResponse
	decodeBody(t, w, &resp)
	if resp.Error != "Script not found" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.do(t, http.MethodOptions, "/generate", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight: expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow-origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	w = api.do(t, http.MethodGet, "/health", "")
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing on regular response")
	}
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.do(t, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t, nil)
	api.do(t, http.MethodGet, "/health", "")

	w := api.do(t, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("scriptforge_http_requests_total")) {
		t.Error("HTTP metrics not exposed")
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var resp errorResponse
	decodeBody(t, w, &resp)
	if resp.Error != "Internal server error" {
		t.Errorf("error = %q", resp.Error)
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
