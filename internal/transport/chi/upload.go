package chi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/scriptforge/internal/logger"
	traininguc "github.com/kailas-cloud/scriptforge/internal/usecase/training"
)

const (
	scriptExt       = ".txt"
	uploadField     = "script"
	unknownMetadata = "Unknown"
)

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// trainUpload stores a screenplay sent as the "script" file of a multipart form.
// title, genre, year, author and scriptId form fields become metadata and the ID.
func (s *Server) trainUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := r.ParseMultipartForm(s.maxBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	name := path.Base(strings.ReplaceAll(header.Filename, "\\", "/"))
	if !strings.EqualFold(path.Ext(name), scriptExt) {
		writeError(w, http.StatusBadRequest, "Invalid file type. Only .txt files are allowed.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !utf8.Valid(data) {
		writeError(w, http.StatusBadRequest, "Script file must be UTF-8 text")
		return
	}

	meta := uploadMetadata(r, name)
	doc, count, err := s.training.Train(r.Context(), traininguc.Input{
		Content:  string(data),
		ScriptID: r.FormValue("scriptId"),
		Metadata: meta,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Debug("Script upload stored",
		zap.String("script_id", doc.ID),
		zap.String("original_name", name),
		zap.Int("bytes", len(data)),
	)
	writeTrained(w, doc, count)
}

func uploadMetadata(r *http.Request, originalName string) map[string]any {
	meta := map[string]any{
		"title":        strings.TrimSuffix(originalName, path.Ext(originalName)),
		"genre":        unknownMetadata,
		"author":       unknownMetadata,
		"originalName": originalName,
	}
	for _, key := range []string{"title", "genre", "author"} {
		if v := strings.TrimSpace(r.FormValue(key)); v != "" {
			meta[key] = v
		}
	}
	if year, err := strconv.Atoi(strings.TrimSpace(r.FormValue("year"))); err == nil {
		meta["year"] = year
	}
	return meta
}
