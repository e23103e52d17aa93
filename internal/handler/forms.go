package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/reconcile"
	"github.com/sakif/devforum/internal/service"
)

// maxUploadMemory caps how much of a multipart body is buffered in memory;
// larger parts spill to temp files.
const maxUploadMemory = 32 << 20

// idParam reads a positive integer route parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// formUploads reads every file under the given multipart field into memory.
// Content type comes from the part header; the service layer enforces size.
func formUploads(r *http.Request, field string) ([]service.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, apperror.ValidationFailed(field, "unreadable file upload")
		}
		data, err := io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
		f.Close()
		if err != nil {
			return nil, apperror.ValidationFailed(field, "unreadable file upload")
		}
		uploads = append(uploads, service.Upload{
			Data:        data,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	return uploads, nil
}

// formIDList decodes a JSON array of integers from a form value. An absent
// or empty value means an empty list.
func formIDList(r *http.Request, field string) ([]int64, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, apperror.ValidationFailed(field, fmt.Sprintf("%s must be a JSON array of ids", field))
	}
	return ids, nil
}

// formStringList decodes a JSON array of strings from a form value, falling
// back to repeated plain values under the same field name.
func formStringList(r *http.Request, field string) ([]string, error) {
	if r.MultipartForm != nil {
		values := r.MultipartForm.Value[field]
		if len(values) > 1 {
			return values, nil
		}
		if len(values) == 1 {
			raw := values[0]
			if len(raw) > 0 && raw[0] == '[' {
				var out []string
				if err := json.Unmarshal([]byte(raw), &out); err != nil {
					return nil, apperror.ValidationFailed(field, fmt.Sprintf("%s must be a JSON array of strings", field))
				}
				return out, nil
			}
			return []string{raw}, nil
		}
	}
	return nil, nil
}

// formCodeUpdates decodes a JSON array of {id, code} pairs.
func formCodeUpdates(r *http.Request, field string) ([]reconcile.CodeUpdate, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return nil, nil
	}
	var updates []struct {
		ID   int64  `json:"id"`
		Code string `json:"code"`
	}
	if err := json.Unmarshal([]byte(raw), &updates); err != nil {
		return nil, apperror.ValidationFailed(field, fmt.Sprintf("%s must be a JSON array of {id, code}", field))
	}
	out := make([]reconcile.CodeUpdate, len(updates))
	for i, u := range updates {
		out[i] = reconcile.CodeUpdate{ID: u.ID, Code: u.Code}
	}
	return out, nil
}

// formOptionalString returns a pointer when the field is present, nil when
// absent. Presence is what distinguishes "change to X" from "leave as is".
func formOptionalString(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values := r.MultipartForm.Value[field]
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}
