package sleeper

import (
	"net/http"
	"net/http/httptest"
)

func newHeaderServer(accept, ua *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*accept = r.Header.Get("Accept")
		*ua = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("[]"))
	}))
}
