package chi

import (
	"time"

	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
	"github.com/kailas-cloud/scriptforge/internal/domain/screenplay"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	TrainingDataCount int       `json:"training_data_count"`
	OpenAIAvailable   bool      `json:"openai_available"`
	OpenAIStatus      string    `json:"openai_status"`
}

type generateRequest struct {
	Prompt              *string `json:"prompt"`
	OutputType          string  `json:"outputType"`
	ConversationHistory []any   `json:"conversationHistory"`
}

type generateResponse struct {
	Content    string    `json:"content"`
	OutputType string    `json:"outputType"`
	Timestamp  time.Time `json:"timestamp"`
	Prompt     string    `json:"prompt"`
	Source     string    `json:"source"`
}

type trainRequest struct {
	Content  string         `json:"content"`
	ScriptID string         `json:"scriptId"`
	Metadata map[string]any `json:"metadata"`
}

type trainResponse struct {
	Message           string            `json:"message"`
	ScriptID          string            `json:"scriptId"`
	ParsedData        screenplay.Script `json:"parsedData"`
	TrainingDataCount int               `json:"trainingDataCount"`
}

type scriptItem struct {
	ID        string             `json:"id"`
	Filename  string             `json:"filename,omitempty"`
	Metadata  map[string]any     `json:"metadata"`
	Parsed    *screenplay.Script `json:"parsed,omitempty"`
	Timestamp *time.Time         `json:"timestamp"`
	Source    string             `json:"source"`
}

type scriptListResponse struct {
	Scripts    []scriptItem        `json:"scripts"`
	Count      int                 `json:"count"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

type paginationResponse struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalScripts int  `json:"totalScripts"`
	HasNext      bool `json:"hasNext"`
	HasPrev      bool `json:"hasPrev"`
}

type statsResponse struct {
	TotalScripts int            `json:"totalScripts"`
	TotalSize    int            `json:"totalSize"`
	AvgSize      int            `json:"avgSize"`
	BySource     map[string]int `json:"bySource"`
	ByGenre      map[string]int `json:"byGenre"`
}

type trainingStatusResponse struct {
	ScriptID  string     `json:"scriptId"`
	Title     string     `json:"title,omitempty"`
	Status    string     `json:"status"`
	Source    string     `json:"source"`
	Timestamp *time.Time `json:"timestamp"`
}

type scriptDetail struct {
	scriptItem
	Content string `json:"content"`
}

type scriptResponse struct {
	Script scriptDetail `json:"script"`
}

func scriptItemFromDomain(d domcorpus.Document) scriptItem {
	meta := d.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return scriptItem{
		ID:        d.ID,
		Filename:  d.Filename,
		Metadata:  meta,
		Parsed:    d.Parsed,
		Timestamp: d.Timestamp,
		Source:    string(d.Source),
	}
}

// scriptDetailFromDomain always carries a parse; file documents are parsed on demand.
func scriptDetailFromDomain(d domcorpus.Document) scriptDetail {
	item := scriptItemFromDomain(d)
	parsed := d.Structure()
	item.Parsed = &parsed
	return scriptDetail{scriptItem: item, Content: d.Content}
}
