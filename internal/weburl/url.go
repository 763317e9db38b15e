// Package weburl implements URL parsing and composition for the schemes
// the engine understands: http, https, file, data, about, view-source.
package weburl

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheme enumerates the schemes this engine resolves.
type Scheme string

const (
	SchemeHTTP       Scheme = "http"
	SchemeHTTPS      Scheme = "https"
	SchemeFile       Scheme = "file"
	SchemeData       Scheme = "data"
	SchemeAbout      Scheme = "about"
	SchemeViewSource Scheme = "view-source"
)

// supported is the set of schemes accepted after an explicit "scheme://" is seen.
var supported = map[Scheme]bool{
	SchemeHTTP:  true,
	SchemeHTTPS: true,
	SchemeFile:  true,
}

// URL is an immutable, value-typed parsed URL.
type URL struct {
	Scheme   Scheme
	Host     string
	Port     int
	Path     string
	Search   string
	Fragment string

	ViewSource bool

	// Data holds the decoded payload for scheme=data.
	DataMime    string
	DataContent string
}

// ErrInvalidScheme is returned when a URL names a scheme outside the
// supported set.
type ErrInvalidScheme struct {
	Scheme string
}

func (e *ErrInvalidScheme) Error() string {
	return fmt.Sprintf("weburl: unsupported scheme %q", e.Scheme)
}

func defaultPort(s Scheme) int {
	switch s {
	case SchemeHTTP:
		return 80
	case SchemeHTTPS:
		return 443
	default:
		return 0
	}
}

// Parse builds a URL from a string, optionally resolved against a parent.
func Parse(raw string, parent *URL) (*URL, error) {
	s := strings.ReplaceAll(raw, "\\", "/")

	viewSource := false
	if strings.HasPrefix(s, "view-source:") {
		viewSource = true
		s = strings.TrimPrefix(s, "view-source:")
	}

	if strings.HasPrefix(s, "about:") {
		u := &URL{Scheme: SchemeAbout, Path: strings.TrimPrefix(s, "about:"), ViewSource: viewSource}
		return splitQueryFragment(u), nil
	}

	if strings.HasPrefix(s, "data:") {
		rest := strings.TrimPrefix(s, "data:")
		mime, content, found := strings.Cut(rest, ",")
		if !found {
			mime, content = "", rest
		}
		return &URL{Scheme: SchemeData, DataMime: mime, DataContent: content, ViewSource: viewSource}, nil
	}

	if strings.HasPrefix(s, "//") {
		return parseSchemeless(s, viewSource)
	}

	if strings.HasPrefix(s, "/") && parent != nil {
		u := cloneHostPart(parent)
		u.ViewSource = viewSource
		rest := s
		return splitQueryFragmentInto(u, rest), nil
	}

	if !strings.Contains(s, "://") {
		if strings.HasPrefix(s, "#") && parent != nil {
			u := *parent
			u.ViewSource = viewSource
			u.Fragment = strings.TrimPrefix(s, "#")
			return &u, nil
		}
		if parent != nil {
			return resolveRelative(s, parent, viewSource)
		}
		// No parent and no scheme: treat "host:port" forms as http.
		return parseSchemeless("//"+s, viewSource)
	}

	scheme, rest, _ := strings.Cut(s, "://")
	sc := Scheme(scheme)
	if !supported[sc] {
		return nil, &ErrInvalidScheme{Scheme: scheme}
	}
	u := &URL{Scheme: sc, ViewSource: viewSource}
	return parseHostPath(u, rest), nil
}

func cloneHostPart(parent *URL) *URL {
	u := *parent
	u.Path = ""
	u.Search = ""
	u.Fragment = ""
	return &u
}

func parseSchemeless(s string, viewSource bool) (*URL, error) {
	rest := strings.TrimPrefix(s, "//")
	u := &URL{Scheme: SchemeHTTP, ViewSource: viewSource}
	return parseHostPath(u, rest), nil
}

func parseHostPath(u *URL, rest string) *URL {
	hostPort, path, found := strings.Cut(rest, "/")
	if !found {
		hostPort, path = rest, ""
	} else {
		path = "/" + path
	}
	host, port := splitHostPort(hostPort, u.Scheme)
	u.Host = host
	u.Port = port
	if path == "" {
		path = "/"
	}
	u.Path = path
	return splitQueryFragment(u)
}

func splitHostPort(hostPort string, s Scheme) (string, int) {
	host, portStr, found := strings.Cut(hostPort, ":")
	if !found {
		return hostPort, defaultPort(s)
	}
	p, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defaultPort(s)
	}
	return host, p
}

func splitQueryFragment(u *URL) *URL {
	p := u.Path
	if frag, rest, ok := cutFragment(p); ok {
		u.Fragment = frag
		p = rest
	}
	if q, rest, ok := cutQuery(p); ok {
		u.Search = q
		p = rest
	}
	u.Path = p
	return u
}

func splitQueryFragmentInto(u *URL, rest string) *URL {
	u.Path = rest
	return splitQueryFragment(u)
}

func cutFragment(s string) (frag, rest string, ok bool) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[i+1:], s[:i], true
	}
	return "", s, false
}

func cutQuery(s string) (query, rest string, ok bool) {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[i+1:], s[:i], true
	}
	return "", s, false
}

// resolveRelative resolves a path-only or host:port-only reference
// against parent, replacing the last path segment of parent.
func resolveRelative(s string, parent *URL, viewSource bool) (*URL, error) {
	if looksLikeHostPort(s) {
		return parseSchemeless("//"+s, viewSource)
	}
	u := cloneHostPart(parent)
	u.ViewSource = viewSource
	base := parent.Path
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[:idx+1]
	} else {
		base = "/"
	}
	return splitQueryFragmentInto(u, base+s), nil
}

func looksLikeHostPort(s string) bool {
	if strings.ContainsAny(s, "/?#") {
		return false
	}
	host, portStr, found := strings.Cut(s, ":")
	if !found || host == "" {
		return false
	}
	_, err := strconv.Atoi(portStr)
	return err == nil
}

// String canonicalizes the URL, omitting default ports.
func (u *URL) String() string {
	var b strings.Builder
	if u.ViewSource {
		b.WriteString("view-source:")
	}
	switch u.Scheme {
	case SchemeAbout:
		b.WriteString("about:")
		b.WriteString(u.Path)
		return finishWithQueryFragment(b.String(), u)
	case SchemeData:
		b.WriteString("data:")
		b.WriteString(u.DataMime)
		b.WriteByte(',')
		b.WriteString(u.DataContent)
		return b.String()
	case SchemeFile:
		b.WriteString("file://")
		b.WriteString(u.Path)
		return finishWithQueryFragment(b.String(), u)
	default:
		b.WriteString(string(u.Scheme))
		b.WriteString("://")
		b.WriteString(u.Host)
		if u.Port != 0 && u.Port != defaultPort(u.Scheme) {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(u.Port))
		}
		path := u.Path
		if path == "" {
			path = "/"
		}
		b.WriteString(path)
		return finishWithQueryFragment(b.String(), u)
	}
}

func finishWithQueryFragment(s string, u *URL) string {
	if u.Search != "" {
		s += "?" + u.Search
	}
	if u.Fragment != "" {
		s += "#" + u.Fragment
	}
	return s
}

// Origin returns scheme://host:port with no path.
func (u *URL) Origin() string {
	return fmt.Sprintf("%s://%s:%d", u.Scheme, u.Host, u.Port)
}

// SameOrigin reports whether two URLs share scheme, host, and port.
func SameOrigin(a, b *URL) bool {
	return a.Scheme == b.Scheme && a.Host == b.Host && a.Port == b.Port
}

// HostPortKey is the socket-pool/cache key component for a URL.
func (u *URL) HostPortKey() string {
	return fmt.Sprintf("%s:%d", u.Host, u.Port)
}
