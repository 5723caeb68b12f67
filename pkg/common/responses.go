package common

import (
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// MetaInfo contains metadata about the response
type MetaInfo struct {
	RequestID        string `json:"request_id,omitempty"`
	Timestamp        string `json:"timestamp,omitempty"`
	DirectoryVersion uint64 `json:"directory_version,omitempty"`
	Total            *int   `json:"total,omitempty"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// RespondWithMeta sends a response with metadata
func RespondWithMeta(w http.ResponseWriter, r *http.Request, status int, data interface{}, meta *MetaInfo) {
	if meta == nil {
		meta = &MetaInfo{}
	}
	if meta.RequestID == "" {
		meta.RequestID = chimiddleware.GetReqID(r.Context())
	}
	if meta.Timestamp == "" {
		meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	writeJSON(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	})
}

// RespondAttachment sends raw bytes as a file download
func RespondAttachment(w http.ResponseWriter, fileName, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// IntPtr is a small helper for optional meta counts.
func IntPtr(v int) *int { return &v }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
