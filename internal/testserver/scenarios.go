package testserver

import (
	"fmt"
	"strings"
)

// Scenario is one ported wstest fixture: Build starts whatever servers
// the fixture needs and returns the entry URL plus a cleanup func.
type Scenario struct {
	Name  string
	Build func() (entryURL string, cleanup func(), err error)
}

// Scenarios returns every fixture ported from original_source/wstest.
func Scenarios() []Scenario {
	return []Scenario{
		SameSiteScenario(),
		SetLocationScenario(),
		RedirectScenario(),
		CookiesScenario(),
		HandleDefaultScenario(),
		CSPScenario(),
		HTTPOnlyScenario(),
		CORSSimpleScenario(),
		RefererScenario(),
	}
}

// SameSiteScenario ports 01-samesite.py: a bare server that always
// answers 404, used by the original harness purely as a reachability
// smoke test before the real samesite assertions in 06/07-samesite.py.
func SameSiteScenario() Scenario {
	return Scenario{
		Name: "samesite",
		Build: func() (string, func(), error) {
			s, err := NewServer(func(r *Request) Response { return Status(404) })
			if err != nil {
				return "", nil, err
			}
			return s.Addr() + "/", func() { s.Close() }, nil
		},
	}
}

// SetLocationScenario ports 02-setLocation.py: the root page's script
// sets window.location to /other, which must answer with <title>passed.
func SetLocationScenario() Scenario {
	return Scenario{
		Name: "setLocation",
		Build: func() (string, func(), error) {
			s, err := NewServer(func(r *Request) Response {
				if r.Path == "/other" {
					return Html("<title>passed</title>")
				}
				return Html(`<script>window.location='/other'</script>`)
			})
			if err != nil {
				return "", nil, err
			}
			return s.Addr() + "/", func() { s.Close() }, nil
		},
	}
}

// RedirectScenario ports 03-redirect.py: a chain of three 301 redirects
// ending in a passed page. Exercises the HTTP Client's redirect-following
// with no script involved at all.
func RedirectScenario() Scenario {
	return Scenario{
		Name: "redirect",
		Build: func() (string, func(), error) {
			s, err := NewServer(func(r *Request) Response {
				switch r.Path {
				case "/":
					return WithHeader(Status(301), "Location", "/redir1")
				case "/redir1":
					return WithHeader(Status(301), "Location", "/redir2")
				case "/redir2":
					return WithHeader(Status(301), "Location", "/redir3")
				case "/redir3":
					return Html("<title>passed</title>")
				default:
					return Status(404)
				}
			})
			if err != nil {
				return "", nil, err
			}
			return s.Addr() + "/", func() { s.Close() }, nil
		},
	}
}

// CookiesScenario ports 04-cookies.py: a Set-Cookie on the redirect from
// "/" must be sent back by the engine's cookie jar on the "/login"
// follow-up request.
func CookiesScenario() Scenario {
	return Scenario{
		Name: "cookies",
		Build: func() (string, func(), error) {
			s, err := NewServer(func(r *Request) Response {
				if r.Path == "/" {
					resp := WithHeader(Status(301), "Location", "/login")
					return WithHeader(resp, "Set-Cookie", "session=1234")
				}
				if r.Path == "/login" && r.Header("Cookie") == "session=1234" {
					return Html("<title>passed</title>")
				}
				return Status(404)
			})
			if err != nil {
				return "", nil, err
			}
			return s.Addr() + "/", func() { s.Close() }, nil
		},
	}
}

// HandleDefaultScenario ports 06-handleDefault.py: the root page contains
// a single link with no click handler preventing default, so the
// engine's own click-routing (not a script) must navigate to "/other".
func HandleDefaultScenario() Scenario {
	return Scenario{
		Name: "handleDefault",
		Build: func() (string, func(), error) {
			s, err := NewServer(func(r *Request) Response {
				if r.Path == "/" {
					return Html(`<body><a href="/other">link</a></body>`)
				}
				return Html("<title>passed</title>")
			})
			if err != nil {
				return "", nil, err
			}
			return s.Addr() + "/", func() { s.Close() }, nil
		},
	}
}

// CSPScenario ports 08-csp.py: server_1 sets a Content-Security-Policy
// restricting default-src to itself; a sub-resource load from server_2
// must be blocked by the engine's CSP allow-list check while server_1's
// own sub-resources still load.
func CSPScenario() Scenario {
	return Scenario{
		Name: "csp",
		Build: func() (string, func(), error) {
			server2, err := NewServer(func(r *Request) Response {
				return JavaScript("value=999")
			})
			if err != nil {
				return "", nil, err
			}
			server2.Start()

			var selfAddr string
			server1, err := NewServer(func(r *Request) Response {
				switch {
				case r.Method == "GET" && r.Path == "/":
					body := fmt.Sprintf(`<body>
						<script src="/jsvalue"></script>
						<script src="%s"></script>
						<script src="/jscheck"></script>
					</body>`, server2.Addr())
					resp := Html(body)
					return WithHeader(resp, "Content-Security-Policy", "default-src "+selfAddr)
				case r.Path == "/jsvalue":
					return JavaScript("value=1")
				case r.Path == "/jscheck":
					return JavaScript(`document.title = value === 1 ? 'passed' : 'failed';`)
				default:
					return Status(404)
				}
			})
			if err != nil {
				server2.Close()
				return "", nil, err
			}
			selfAddr = server1.Addr()
			return server1.Addr() + "/", func() { server1.Close(); server2.Close() }, nil
		},
	}
}

// HTTPOnlyScenario ports 09-httpOnly.py: an HttpOnly Set-Cookie must
// never surface through document.cookie, but must still ride along on
// the follow-up request the server reads it back from.
func HTTPOnlyScenario() Scenario {
	return Scenario{
		Name: "httpOnly",
		Build: func() (string, func(), error) {
			s, err := NewServer(func(r *Request) Response {
				if r.Path == "/" {
					resp := WithHeader(Status(301), "Location", "/login")
					return WithHeader(resp, "Set-Cookie", "session=secret09; HttpOnly")
				}
				if r.Path == "/login" {
					if strings.Contains(r.Header("Cookie"), "session=secret09") {
						return Html("<title>passed</title>ok")
					}
					return Html("<title>failed</title>failed, <a href=/>retry?</a>")
				}
				return Status(404)
			})
			if err != nil {
				return "", nil, err
			}
			return s.Addr() + "/", func() { s.Close() }, nil
		},
	}
}

// CORSSimpleScenario ports 10-corsSimple.py: a same-origin-restricted
// server_3 must reject an XHR, while server_2's
// Access-Control-Allow-Origin: * must let it through.
func CORSSimpleScenario() Scenario {
	return Scenario{
		Name: "corsSimple",
		Build: func() (string, func(), error) {
			server2, err := NewServer(func(r *Request) Response {
				resp := Text("allowed")
				return WithHeader(resp, "Access-Control-Allow-Origin", "*")
			})
			if err != nil {
				return "", nil, err
			}
			server2.Start()

			server3, err := NewServer(func(r *Request) Response { return Text("not allowed") })
			if err != nil {
				server2.Close()
				return "", nil, err
			}
			server3.Start()

			server1, err := NewServer(func(r *Request) Response {
				return Html(fmt.Sprintf(`<body><script>
					xhr = new XMLHttpRequest();
					xhr.open("GET", "%s", false);
					xhr.send();
					if (xhr.responseText !== "allowed") throw new Error("simple CORS failed allow!");
					xhr = new XMLHttpRequest();
					xhr.open("GET", "%s", false);
					try { xhr.send(); } catch (err) { document.title = "passed"; }
				</script></body>`, server2.Addr(), server3.Addr()))
			})
			if err != nil {
				server2.Close()
				server3.Close()
				return "", nil, err
			}
			return server1.Addr() + "/", func() { server1.Close(); server2.Close(); server3.Close() }, nil
		},
	}
}

// RefererScenario ports 11-referer.py: a chain of four pages exercising
// the default Referer header, then Referrer-Policy: same-origin, then
// no-referrer, then a cross-origin hop that must carry no referer at all.
func RefererScenario() Scenario {
	return Scenario{
		Name: "referer",
		Build: func() (string, func(), error) {
			server2, err := NewServer(func(r *Request) Response {
				if r.Path == "/" && r.Header("Referer") == "" {
					return Html("<title>passed</title>")
				}
				return Status(404)
			})
			if err != nil {
				return "", nil, err
			}
			server2.Start()

			server1, err := NewServer(func(r *Request) Response {
				switch r.Path {
				case "/":
					return Html(`<a id=lnk href="/step2">click</a><script>lnk.click()</script>`)
				case "/step2":
					resp := Html(`<a id=lnk href="/step3">click</a><script>lnk.click()</script>`)
					return WithHeader(resp, "Referrer-Policy", "same-origin")
				case "/step3":
					resp := Html(`<a id=lnk href="/step4">click</a><script>lnk.click()</script>`)
					return WithHeader(resp, "Referrer-Policy", "no-referrer")
				case "/step4":
					resp := Html(fmt.Sprintf(`<a id=lnk href="%s">click</a><script>lnk.click()</script>`, server2.Addr()))
					return WithHeader(resp, "Referrer-Policy", "same-origin")
				default:
					return Status(404)
				}
			})
			if err != nil {
				server2.Close()
				return "", nil, err
			}
			return server1.Addr() + "/", func() { server1.Close(); server2.Close() }, nil
		},
	}
}
