// Package httpclient implements spec §4.2's HTTP Client: a socket pool
// keyed by (scheme,host,port), hand-rolled HTTP/1.1 request/response
// framing with keep-alive, chunked transfer, gzip, redirect following,
// cookie jar integration, and a two-level cache.
package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/tinybrowser/internal/browseerr"
	"github.com/use-agent/tinybrowser/internal/cookiejar"
	"github.com/use-agent/tinybrowser/internal/httpclient/cache"
	"github.com/use-agent/tinybrowser/internal/weburl"
)

// Request describes a single navigation or sub-resource fetch.
type Request struct {
	URL         *weburl.URL
	Method      string // defaults to GET, or POST if Payload is set
	Payload     []byte
	ReadCache   bool
	MaxRedirect int
	Referrer    *weburl.URL
}

// Response is what request() returns to the Tab Runtime: decoded headers,
// decoded body text, and the final URL after following redirects.
type Response struct {
	StatusCode int
	Headers    map[string]string // lower-cased keys
	Body       []byte
	FinalURL   *weburl.URL
}

// Client is the process-wide HTTP Client. The socket pool and cache are
// process-wide shared state per spec §5; Client owns their exclusive
// mutation.
type Client struct {
	pool      *pool
	cache     *cache.Cache
	jar       *cookiejar.Jar
	hostMem   *hostMemory
	throttle  *throttle
	log       *slog.Logger

	dialTimeout    time.Duration
	requestTimeout time.Duration
	idleTimeout    time.Duration
}

// Options configures a new Client.
type Options struct {
	Jar            *cookiejar.Jar
	CacheMemBytes  int
	CacheDir       string
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	IdleTimeout    time.Duration
	PerHostRPS     float64
	PerHostBurst   int
	Log            *slog.Logger
}

// New constructs a Client with its own private pool and cache, per spec
// §9's "forbid hidden singletons" design note — callers explicitly
// construct and pass around a Client rather than reaching for a package
// global.
func New(opts Options) *Client {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 90 * time.Second
	}
	if opts.PerHostRPS == 0 {
		opts.PerHostRPS = 8
	}
	if opts.PerHostBurst == 0 {
		opts.PerHostBurst = 4
	}
	return &Client{
		pool:           newPool(),
		cache:          cache.New(opts.CacheMemBytes, opts.CacheDir),
		jar:            opts.Jar,
		hostMem:        newHostMemory(6 * time.Hour),
		throttle:       newThrottle(opts.PerHostRPS, opts.PerHostBurst),
		log:            opts.Log,
		dialTimeout:    opts.DialTimeout,
		requestTimeout: opts.RequestTimeout,
		idleTimeout:    opts.IdleTimeout,
	}
}

// Close tears down pooled sockets at process exit.
func (c *Client) Close() {
	c.pool.closeAll()
}

// Do executes req, following redirects and engaging the cache/cookie
// jar/throttle, per the algorithm in spec §4.2.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		if len(req.Payload) > 0 {
			method = "POST"
		} else {
			method = "GET"
		}
	}

	// Step 1: meta schemes short-circuit.
	switch req.URL.Scheme {
	case weburl.SchemeAbout:
		if req.URL.Path == "blank" {
			return &Response{StatusCode: 200, Headers: map[string]string{}, FinalURL: req.URL}, nil
		}
	case weburl.SchemeData:
		return &Response{
			StatusCode: 200,
			Headers:    map[string]string{"content-type": req.URL.DataMime},
			Body:       []byte(req.URL.DataContent),
			FinalURL:   req.URL,
		}, nil
	case weburl.SchemeFile:
		if method == "POST" {
			return nil, browseerr.New(browseerr.CodeProtocolError, "POST to file: URL is not supported", nil)
		}
		body, err := os.ReadFile(req.URL.Path)
		if err != nil {
			return nil, browseerr.New(browseerr.CodeNetworkError, "reading file URL", err)
		}
		return &Response{StatusCode: 200, Headers: map[string]string{}, Body: body, FinalURL: req.URL}, nil
	}

	cacheKey := cache.Key(string(req.URL.Scheme), req.URL.Host, req.URL.Port, req.URL.Path, req.URL.Search)

	// Step 3: cache lookup (GET only).
	if method == "GET" && req.ReadCache {
		if body, ok := c.cache.Get(cacheKey); ok {
			c.log.Debug("httpclient: cache hit", "key", cacheKey)
			return &Response{StatusCode: 200, Headers: map[string]string{}, Body: body, FinalURL: req.URL}, nil
		}
	}

	if err := c.throttle.wait(ctx, req.URL.Host); err != nil {
		return nil, browseerr.New(browseerr.CodeNetworkError, "throttle wait canceled", err)
	}

	resp, err := c.roundTrip(ctx, req, method)
	if err != nil {
		return nil, err
	}

	// Step 9: redirects.
	if resp.StatusCode >= 300 && resp.StatusCode < 400 && req.MaxRedirect > 0 {
		if loc, ok := resp.Headers["location"]; ok && loc != "" {
			next, perr := weburl.Parse(loc, req.URL)
			if perr == nil {
				return c.Do(ctx, &Request{
					URL:         next,
					Method:      "GET",
					ReadCache:   req.ReadCache,
					MaxRedirect: req.MaxRedirect - 1,
					Referrer:    req.URL,
				})
			}
		}
	}

	// Step 10: cache store (200 GET only).
	if method == "GET" && resp.StatusCode == 200 {
		if maxAge, store := parseCacheControl(resp.Headers["cache-control"]); store {
			c.cache.Set(cacheKey, resp.Body, maxAge)
		}
	}

	resp.FinalURL = req.URL
	return resp, nil
}

// parseCacheControl implements spec §4.2 step 10: max-age=N with N > 0
// stores for N seconds; no-store, an unparsable or non-positive max-age,
// and an absent header are not stored. Other directives are ignored, so
// a header without max-age is not stored either.
func parseCacheControl(header string) (maxAge int64, store bool) {
	if header == "" {
		return 0, false
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "no-store" {
			return 0, false
		}
		if strings.HasPrefix(part, "max-age=") {
			n, err := strconv.ParseInt(strings.TrimPrefix(part, "max-age="), 10, 64)
			if err != nil || n <= 0 {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

// roundTrip performs steps 4-8: socket acquisition, request framing,
// response framing, Set-Cookie capture, and keep-alive bookkeeping.
func (c *Client) roundTrip(ctx context.Context, req *Request, method string) (*Response, error) {
	key := fmt.Sprintf("%s:%s:%d", req.URL.Scheme, req.URL.Host, req.URL.Port)
	addr := fmt.Sprintf("%s:%d", req.URL.Host, req.URL.Port)

	entry := c.pool.take(key, c.idleTimeout)
	if entry == nil {
		conn, err := c.dial(ctx, req.URL, addr)
		if err != nil {
			return nil, browseerr.Categorize(err)
		}
		entry = newSocketEntry(conn)
	}

	referrerHost := ""
	if req.Referrer != nil {
		referrerHost = req.Referrer.Host
	}
	cookieHeader := ""
	if c.jar != nil {
		cookieHeader = c.jar.FilterForRequest(req.URL.Host, referrerHost, method)
	}

	if err := writeRequest(entry.conn, req.URL, method, req.Payload, cookieHeader); err != nil {
		entry.close()
		c.pool.drop(key)
		return nil, browseerr.New(browseerr.CodeNetworkError, "writing request", err)
	}

	status, headers, body, keepAlive, err := readResponse(entry.reader, method)
	if err != nil {
		entry.close()
		c.pool.drop(key)
		return nil, browseerr.New(browseerr.CodeProtocolError, "reading response", err)
	}

	if setCookies, ok := headers["set-cookie"]; ok && c.jar != nil {
		for _, raw := range strings.Split(setCookies, "\x00") {
			c.jar.SetCookieByHost(req.URL.Host, raw, false)
		}
	}

	if keepAlive {
		entry.recordSuccess()
		c.pool.put(key, entry)
	} else {
		entry.close()
		c.hostMem.markNoKeepAlive(req.URL.Host)
	}

	return &Response{StatusCode: status, Headers: headers, Body: body}, nil
}

func (c *Client) dial(ctx context.Context, u *weburl.URL, addr string) (net.Conn, error) {
	dctx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()
	if u.Scheme == weburl.SchemeHTTPS {
		return dialTLS(dctx, addr)
	}
	return dialPlain(dctx, addr)
}
