package http

import (
	"net/http"
	"strings"

	httpcmn "github.com/aukilabs/hagall-common/http"
)

var corsAllowedHeaders = strings.Join([]string{
	"Authorization",
	"Content-Type",
	httpcmn.HeaderPosemeshClientID,
}, ", ")

// HandleWithCORS allows browsers to call h from any origin and answers
// preflight requests.
func HandleWithCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		header.Set("Access-Control-Allow-Headers", corsAllowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		h.ServeHTTP(w, r)
	})
}
