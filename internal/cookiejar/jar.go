// Package cookiejar implements the per-host cookie store described in
// spec §4.3: ordered cookie lists per host, HttpOnly gating on script
// writes/reads, and SameSite filtering at request time.
package cookiejar

import (
	"strings"
	"sync"
)

// SameSite enumerates the cookie SameSite values this engine recognizes.
type SameSite string

const (
	SameSiteStrict SameSite = "strict"
	SameSiteLax    SameSite = "lax"
	SameSiteNone   SameSite = "none"
)

// Cookie is a single named cookie with its attributes.
type Cookie struct {
	Name     string
	Value    string
	HTTPOnly bool
	SameSite SameSite
}

// Jar is a per-host ordered cookie store. Mutated from both the HTTP
// Client (Set-Cookie) and the script bridge (document.cookie); all
// mutation goes through the jar's own mutex so the two callers are
// serialized, per spec §5's ordering guarantee.
type Jar struct {
	mu    sync.Mutex
	items map[string][]*Cookie // host -> ordered cookies
}

// New constructs an empty jar.
func New() *Jar {
	return &Jar{items: make(map[string][]*Cookie)}
}

// GetCookieItemsByHost returns the ordered cookie list for host.
func (j *Jar) GetCookieItemsByHost(host string) []*Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	src := j.items[host]
	out := make([]*Cookie, len(src))
	copy(out, src)
	return out
}

// GetCookieValueByHost joins cookies for host as "name=value; ...",
// omitting HttpOnly entries when isScript is true.
func (j *Jar) GetCookieValueByHost(host string, isScript bool) string {
	items := j.GetCookieItemsByHost(host)
	var parts []string
	for _, c := range items {
		if isScript && c.HTTPOnly {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// SetCookieByHost parses "name=value; attr=val; ..." and replaces any
// existing entry with the same name. Script-initiated writes (isScript)
// silently do nothing when an existing entry with the same name is
// HttpOnly.
func (j *Jar) SetCookieByHost(host, raw string, isScript bool) {
	c := parseSetCookie(raw)
	if c == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	list := j.items[host]
	for i, existing := range list {
		if existing.Name == c.Name {
			if isScript && existing.HTTPOnly {
				return
			}
			list[i] = c
			j.items[host] = list
			return
		}
	}
	j.items[host] = append(list, c)
}

// parseSetCookie follows RFC 6265 rather than attempting to replicate any
// particular ambiguous source edge case (spec §9's open question):
// a trailing ";" is tolerated as a no-op, empty attribute values are
// treated as boolean-present flags, and SameSite is matched
// case-insensitively with any unrecognized value treated as "none".
func parseSetCookie(raw string) *Cookie {
	parts := splitAttrs(raw)
	if len(parts) == 0 {
		return nil
	}
	name, value, ok := strings.Cut(parts[0], "=")
	if !ok {
		return nil
	}
	c := &Cookie{
		Name:     strings.TrimSpace(name),
		Value:    strings.TrimSpace(value),
		SameSite: SameSiteNone,
	}
	if c.Name == "" {
		return nil
	}
	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		key, val, hasVal := strings.Cut(attr, "=")
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "httponly":
			c.HTTPOnly = true
		case "samesite":
			if !hasVal {
				continue
			}
			switch strings.ToLower(strings.TrimSpace(val)) {
			case "strict":
				c.SameSite = SameSiteStrict
			case "lax":
				c.SameSite = SameSiteLax
			default:
				c.SameSite = SameSiteNone
			}
		}
	}
	return c
}

// splitAttrs splits a Set-Cookie-shaped string on ";" and drops any
// trailing empty segment produced by a trailing semicolon.
func splitAttrs(raw string) []string {
	segs := strings.Split(raw, ";")
	for len(segs) > 0 && strings.TrimSpace(segs[len(segs)-1]) == "" {
		segs = segs[:len(segs)-1]
	}
	return segs
}

// FilterForRequest returns the cookie header value to send for a request
// to targetHost, given the request's referrer host and method, applying
// SameSite filtering per spec §4.3: Lax drops the cookie on cross-site
// non-GET requests; Strict drops it on any cross-site request; None
// always attaches.
func (j *Jar) FilterForRequest(targetHost, referrerHost, method string) string {
	items := j.GetCookieItemsByHost(targetHost)
	crossSite := referrerHost != "" && referrerHost != targetHost
	var parts []string
	for _, c := range items {
		if crossSite {
			switch c.SameSite {
			case SameSiteStrict:
				continue
			case SameSiteLax:
				if !strings.EqualFold(method, "GET") {
					continue
				}
			}
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}
