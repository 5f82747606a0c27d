package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

type errorResp struct {
	Error   bool         `json:"error"`
	Message string       `json:"message,omitempty"`
	Errors  []fieldError `json:"errors,omitempty"`
}

type okResp struct {
	Error   bool   `json:"error"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResp{Error: true, Message: msg})
}

func writeInvalid(w http.ResponseWriter, errs ...fieldError) {
	writeJSON(w, http.StatusBadRequest, errorResp{Error: true, Errors: errs})
}

// bind decodes the body into dst and validates it. Kalau gagal, response
// 400 sudah ditulis dan bind return false.
func bind(w http.ResponseWriter, r *http.Request, dst any, msgs messages) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			writeInvalid(w, fieldError{Field: te.Field, Message: msgs.lookup(lastSegment(te.Field))})
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeInvalid(w, validationErrors(err, msgs)...)
		return false
	}
	return true
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
