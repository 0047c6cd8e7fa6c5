package auth

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"time"
)

// CallbackResult contains the query parameters of the OAuth redirect.
type CallbackResult struct {
	Code  string
	State string
	Error string
}

// CallbackServer receives the OAuth redirect on the host, port and path of
// the redirect URI.
type CallbackServer struct {
	server   *http.Server
	listener net.Listener
	path     string
	result   chan CallbackResult
}

// NewCallbackServer listens on the address of redirectURI. A port of 0 picks
// a free port, which Port reports.
func NewCallbackServer(redirectURI string) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect uri: %w", err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("redirect uri must use http, got %q", u.Scheme)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	listener, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", u.Host, err)
	}

	cs := &CallbackServer{
		listener: listener,
		path:     path,
		result:   make(chan CallbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, cs.handleCallback)

	cs.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return cs, nil
}

// Start serves in the background.
func (cs *CallbackServer) Start() {
	go func() {
		_ = cs.server.Serve(cs.listener)
	}()
}

// Wait blocks until a callback arrives or ctx is done.
func (cs *CallbackServer) Wait(ctx context.Context) (CallbackResult, error) {
	select {
	case result := <-cs.result:
		return result, nil
	case <-ctx.Done():
		return CallbackResult{}, ctx.Err()
	}
}

// Shutdown gracefully shuts down the server.
func (cs *CallbackServer) Shutdown(ctx context.Context) error {
	return cs.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (cs *CallbackServer) Port() int {
	return cs.listener.Addr().(*net.TCPAddr).Port
}

// URL returns the address the server actually answers on.
func (cs *CallbackServer) URL() string {
	return fmt.Sprintf("http://%s%s", cs.listener.Addr().String(), cs.path)
}

func (cs *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result := CallbackResult{
		Code:  query.Get("code"),
		State: query.Get("state"),
		Error: query.Get("error"),
	}

	// Duplicate callbacks are dropped.
	select {
	case cs.result <- result:
	default:
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if result.Error != "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, page, "Authentication Failed", "Error: "+html.EscapeString(result.Error)+". You can close this window.")
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, page, "tracklog is authorized", "You can close this window and return to the terminal.")
}

const page = `<!DOCTYPE html>
<html>
<head><title>tracklog</title></head>
<body>
<h1>%s</h1>
<p>%s</p>
</body>
</html>`
