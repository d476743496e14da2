package httpserver

import (
	"net/http"
	"time"
)

// New builds the bridge HTTP server. Write timeouts are left to the agent calls
// behind each handler; only slow header reads are bounded here.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
