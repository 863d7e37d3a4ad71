package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes a JSON response. Everything this service returns carries
// Cache-Control: no-store; responses embed tokens and signatures.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
