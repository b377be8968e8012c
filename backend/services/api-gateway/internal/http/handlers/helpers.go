package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"greenvolt/backend/services/api-gateway/internal/clients"
)

const maxBodyBytes = 1 << 20

// passHeaders are copied from upstream responses.
var passHeaders = []string{"Content-Type", "Content-Disposition"}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeUpstream(w http.ResponseWriter, resp *clients.Response) {
	for _, h := range passHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeProxyError reports a failed upstream call.
func writeProxyError(w http.ResponseWriter, logger *zap.Logger, upstream string, err error) {
	if errors.Is(err, clients.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, upstream+" temporarily unavailable")
		return
	}
	logger.Error("proxy request failed", zap.String("upstream", upstream), zap.Error(err))
	writeError(w, http.StatusBadGateway, upstream+" unavailable")
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, true
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return nil, false
	}
	return body, true
}
