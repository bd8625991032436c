package web

// Shared request parsing helpers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/stockroom/internal/core"
	"github.com/JonMunkholm/stockroom/internal/web/templates"
)

// multipartOverhead is the slack allowed on top of the import size limit
// for multipart boundaries and the other form fields.
const multipartOverhead = 64 << 10

// parseIntParam parses an integer query parameter with a default value.
// Values below minVal also yield the default.
func parseIntParam(r *http.Request, name string, defaultVal, minVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < minVal {
		return defaultVal
	}
	return i
}

// parseQuantity parses a whole-number form value.
func parseQuantity(s string) (int64, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", core.ErrInvalidProduct, core.ReasonBadQuantity)
	}
	return q, nil
}

// importRequest is the JSON body accepted by the import API.
type importRequest struct {
	Dados string `json:"dados"`
}

// readImportInput extracts the batch text from a request. Accepted forms:
//   - multipart with an "arquivo" file or a "dados" field
//   - urlencoded "dados" field
//   - JSON {"dados": "..."}
//   - any other body, read as the raw text
func (s *Server) readImportInput(w http.ResponseWriter, r *http.Request) (string, error) {
	limit := s.cfg.Import.MaxInputSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		raw string
		err error
	)
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(limit); err != nil {
			return "", bodyError(err)
		}
		file, header, ferr := r.FormFile("arquivo")
		if ferr == nil && header.Size > 0 {
			defer file.Close()
			return core.ReadInput(file, limit)
		}
		raw = r.FormValue("dados")

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return "", bodyError(err)
		}
		raw = r.PostFormValue("dados")

	case "application/json":
		var req importRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", bodyError(err)
		}
		raw = req.Dados

	default:
		raw, err = core.ReadInput(r.Body, limit)
		if err != nil {
			return "", bodyError(err)
		}
	}

	if int64(len(raw)) > limit {
		return "", core.ErrInputTooLarge
	}
	return raw, nil
}

// bodyError maps body read failures to domain errors.
func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, core.ErrInputTooLarge) ||
		strings.Contains(err.Error(), "request body too large") {
		return core.ErrInputTooLarge
	}
	if errors.Is(err, io.EOF) {
		return core.ErrMissingInput
	}
	return fmt.Errorf("invalid request body: %w", err)
}

// redirectWithFlash redirects to path carrying a success or error message
// in the query string, the way the insert and scan pages expect.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, path string, success bool, message string) {
	q := url.Values{}
	if success {
		q.Set("success", "true")
		q.Set("message", message)
	} else {
		q.Set("error", message)
	}
	http.Redirect(w, r, path+"?"+q.Encode(), http.StatusSeeOther)
}

// flashFromQuery reads a message set by redirectWithFlash.
func flashFromQuery(r *http.Request) templates.Flash {
	q := r.URL.Query()
	var f templates.Flash
	if q.Get("success") == "true" {
		f.Success = q.Get("message")
	}
	f.Error = q.Get("error")
	return f
}
