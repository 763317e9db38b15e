// Package testserver implements the engine's fixture HTTP servers: small,
// purpose-built web services that drive the browser through a single
// behavior (redirects, cookies, CSP, CORS, referrer policy) and report
// pass/fail by the final page's title. `--wtest <dir>` and `--wstest` run
// collections of these as end-to-end regression checks.
//
// Grounded on original_source/wstest/*.py: each Python fixture built its
// own raw-socket HTTP/1.0 server and a lambda request handler returning
// (status[, Header(...)][, Html(...)]); Server and Response below are the
// same shape, wired through gin the way api/router.go wires the teacher's
// REST routes.
package testserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Request is the inbound request a Handler inspects, trimmed to what the
// fixtures actually read.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    string
}

// Header returns the named request header, case-insensitively.
func (r *Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// Response is what a Handler returns: a status code, optional headers,
// and a body. Helpers below mirror the Python fixture library's
// Html/Text/JavaScript/Header constructors.
type Response struct {
	Status  int
	Headers map[string]string
	Body    string
}

// Html builds a 200 response with an HTML content-type.
func Html(body string) Response {
	return Response{Status: 200, Headers: map[string]string{"Content-Type": "text/html"}, Body: body}
}

// Text builds a 200 response with a plain-text content-type.
func Text(body string) Response {
	return Response{Status: 200, Headers: map[string]string{"Content-Type": "text/plain"}, Body: body}
}

// JavaScript builds a 200 response with a script content-type.
func JavaScript(body string) Response {
	return Response{Status: 200, Headers: map[string]string{"Content-Type": "application/javascript"}, Body: body}
}

// Status builds a bare status-code response with no body, for redirects
// that only need a Location header alongside it.
func Status(code int) Response {
	return Response{Status: code, Headers: map[string]string{}}
}

// WithHeader returns a copy of r with header k set to v, composing with
// the constructors above the way the Python fixtures chained tuple
// elements: `(301, Header("Location", "/x"))`.
func WithHeader(r Response, k, v string) Response {
	out := r
	out.Headers = make(map[string]string, len(r.Headers)+1)
	for hk, hv := range r.Headers {
		out.Headers[hk] = hv
	}
	out.Headers[k] = v
	return out
}

// Handler answers one request. Fixtures are plain Go functions over
// *Request, the same shape as the Python lambdas.
type Handler func(req *Request) Response

// Server is one fixture HTTP server, usually ephemeral (port 0) so
// multiple fixtures or multi-server scenarios never collide.
type Server struct {
	httpSrv  *http.Server
	listener net.Listener
	addr     string
}

// NewServer builds a Server bound to an OS-assigned port, wiring handler
// through a Gin engine the way api/router.go's NewRouter does, minus
// auth/rate-limit middleware this harness has no use for.
func NewServer(handler Handler) (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("testserver: listen: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.NoRoute(func(c *gin.Context) {
		req := &Request{Method: c.Request.Method, Path: c.Request.URL.Path, Headers: map[string]string{}}
		for k := range c.Request.Header {
			req.Headers[strings.ToLower(k)] = c.Request.Header.Get(k)
		}
		if body, err := c.GetRawData(); err == nil {
			req.Body = string(body)
		}

		resp := handler(req)
		for k, v := range resp.Headers {
			c.Header(k, v)
		}
		status := resp.Status
		if status == 0 {
			status = 200
		}
		c.String(status, "%s", resp.Body)
	})

	return &Server{
		httpSrv:  &http.Server{Handler: r},
		listener: listener,
		addr:     "http://" + listener.Addr().String(),
	}, nil
}

// Addr returns the server's base URL, e.g. "http://127.0.0.1:54321".
func (s *Server) Addr() string { return s.addr }

// Serve blocks, serving requests until Close is called.
func (s *Server) Serve() error {
	err := s.httpSrv.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Start runs Serve on a goroutine, mirroring the Python fixtures'
// listen_on_thread() for secondary servers in multi-server scenarios.
func (s *Server) Start() {
	go s.Serve()
}

// Close shuts the server down.
func (s *Server) Close() error {
	return s.httpSrv.Shutdown(context.Background())
}
