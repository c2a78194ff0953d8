package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readBodyJSON decodes at most maxBytes of the body into out. An empty body leaves out untouched.
func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// queryParam reads a filter parameter by its catalog name, falling back to the lower-case form.
func queryParam(q url.Values, name string) string {
	if v := q.Get(name); v != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(q.Get(strings.ToLower(name)))
}
