package http

import (
	"net/http"

	"github.com/aukilabs/caster/models"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	httpcmn "github.com/aukilabs/hagall-common/http"
	"github.com/segmentio/encoding/json"
)

// The maximum size of a request body.
const maxBodySize = 4 << 20

// HandleCast casts the fan described by a JSON models.CastRequest.
//
// The response is JSON unless the "encoding=binary" query parameter is set,
// in which case it is the protobuf wire encoding of the response, snappy
// compressed with "compression=snappy".
func HandleCast(c models.Caster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		encoding, err := models.EncodingFromQuery(r.URL.Query())
		if err != nil {
			httpcmn.BadRequest(w, err)
			return
		}

		var req models.CastRequest
		if !decodeBody(w, r, &req) {
			return
		}

		res, err := c.Cast(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if encoding.Binary {
			w.Header().Set("Content-Type", encoding.ContentType())
			w.WriteHeader(http.StatusOK)
			w.Write(encoding.EncodeCastResponse(res))
			return
		}
		writeJSON(w, res)
	}
}

// HandleIntersect casts the single ray described by a JSON
// models.IntersectRequest.
func HandleIntersect(c models.Caster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req models.IntersectRequest
		if !decodeBody(w, r, &req) {
			return
		}

		res, err := c.Intersect(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, res)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v)
	if err != nil {
		logs.WithTag("path", r.URL.Path).
			Debug(errors.New("decoding request body failed").Wrap(err))
		httpcmn.BadRequest(w, httpcmn.ErrBadRequest)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if models.IsClientError(err) {
		httpcmn.BadRequest(w, err)
		return
	}

	logs.WithTag("path", r.URL.Path).Error(err)
	httpcmn.InternalServerError(w, err)
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		httpcmn.InternalServerError(w, errors.New("encoding response failed").Wrap(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
