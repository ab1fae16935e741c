package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/aukilabs/go-tooling/pkg/errors"
	httpcmn "github.com/aukilabs/hagall-common/http"
	"github.com/aukilabs/hagall-common/logs"
	"golang.org/x/net/websocket"
)

const (
	ErrTypeUnauthorized = "unauthorized"
)

// TokenVerifier checks the access token sent by clients. An empty
// AccessToken lets every request through.
type TokenVerifier struct {
	AccessToken string
}

// Verify returns an error when the request doesn't carry the access token.
func (v TokenVerifier) Verify(r *http.Request) error {
	if v.AccessToken == "" {
		return nil
	}

	token := httpcmn.GetUserTokenFromHTTPRequest(r)
	if subtle.ConstantTimeCompare([]byte(token), []byte(v.AccessToken)) != 1 {
		return errors.New("invalid access token").
			WithType(ErrTypeUnauthorized).
			WithTag("path", r.URL.Path)
	}
	return nil
}

// Handshake verifies the access token of WebSocket handshakes.
func (v TokenVerifier) Handshake(c *websocket.Config, r *http.Request) error {
	if err := v.Verify(r); err != nil {
		logs.WithClientID(r.Header.Get(httpcmn.HeaderPosemeshClientID)).Error(err)
		return err
	}
	return nil
}

// Handler responds with 401 to requests that don't carry the access token.
func (v TokenVerifier) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := v.Verify(r); err != nil {
			logs.WithClientID(r.Header.Get(httpcmn.HeaderPosemeshClientID)).Error(err)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
