package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/use-agent/tinybrowser/internal/cookiejar"
	"github.com/use-agent/tinybrowser/internal/weburl"
)

func testURL(t *testing.T, srv *httptest.Server, path string) *weburl.URL {
	t.Helper()
	u, err := weburl.Parse(srv.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestRedirectChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/redir1", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/redir1", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/redir2", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/redir2", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/redir3", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/redir3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<title>passed</title>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Options{Jar: cookiejar.New()})
	defer c.Close()

	resp, err := c.Do(context.Background(), &Request{
		URL:         testURL(t, srv, "/"),
		MaxRedirect: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(resp.Body), "<title>passed</title>"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestCookieEchoAcrossRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "1234"})
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Cookie"); got != "session=1234" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("missing cookie: " + got))
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Options{Jar: cookiejar.New()})
	defer c.Close()

	resp, err := c.Do(context.Background(), &Request{
		URL:         testURL(t, srv, "/"),
		MaxRedirect: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
}

func TestCacheControlMaxAge(t *testing.T) {
	hits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Cache-Control", "max-age=60")
		w.Write([]byte("body-" + strconv.Itoa(hits)))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Options{Jar: cookiejar.New(), CacheMemBytes: 1024 * 1024})
	defer c.Close()

	u := testURL(t, srv, "/")
	r1, err := c.Do(context.Background(), &Request{URL: u, ReadCache: true, MaxRedirect: 0})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := c.Do(context.Background(), &Request{URL: u, ReadCache: true, MaxRedirect: 0})
	if err != nil {
		t.Fatal(err)
	}
	if string(r1.Body) != string(r2.Body) {
		t.Errorf("expected second request to be served from cache: %q vs %q", r1.Body, r2.Body)
	}
	if hits != 1 {
		t.Errorf("expected exactly one origin hit, got %d", hits)
	}
}
