package httpclient

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/use-agent/tinybrowser/internal/weburl"
)

// writeRequest frames a request per spec §4.2 step 5: status line,
// Host/Connection/Accept-Encoding headers, optional Content-Length, the
// assembled Cookie header, a blank line, then the optional payload.
func writeRequest(w io.Writer, u *weburl.URL, method string, payload []byte, cookieHeader string) error {
	target := u.Path
	if target == "" {
		target = "/"
	}
	if u.Search != "" {
		target += "?" + u.Search
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", method, target)
	fmt.Fprintf(&b, "Host: %s\r\n", hostHeader(u))
	b.WriteString("Connection: keep-alive\r\n")
	b.WriteString("Accept-Encoding: gzip\r\n")
	if cookieHeader != "" {
		fmt.Fprintf(&b, "Cookie: %s\r\n", cookieHeader)
	}
	if len(payload) > 0 {
		fmt.Fprintf(&b, "Content-Length: %d\r\n", len(payload))
	}
	b.WriteString("\r\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func hostHeader(u *weburl.URL) string {
	def := 0
	switch u.Scheme {
	case weburl.SchemeHTTP:
		def = 80
	case weburl.SchemeHTTPS:
		def = 443
	}
	if u.Port != 0 && u.Port != def {
		return fmt.Sprintf("%s:%d", u.Host, u.Port)
	}
	return u.Host
}

// readResponse frames a response per spec §4.2 step 6: status line,
// lower-cased headers until a blank line, then a body decoded via
// chunked transfer-encoding, else Content-Length, else read-to-close.
// Content-Encoding/Transfer-Encoding gzip triggers decompression;
// compress/deflate are rejected as unsupported. Returns whether the
// connection may be kept alive.
func readResponse(r *bufio.Reader, method string) (status int, headers map[string]string, body []byte, keepAlive bool, err error) {
	statusLine, err := readLine(r)
	if err != nil {
		return 0, nil, nil, false, err
	}
	status, err = parseStatusLine(statusLine)
	if err != nil {
		return 0, nil, nil, false, err
	}

	headers = make(map[string]string)
	var setCookies []string
	for {
		line, err := readLine(r)
		if err != nil {
			return 0, nil, nil, false, err
		}
		if line == "" {
			break
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if key == "set-cookie" {
			setCookies = append(setCookies, val)
			continue
		}
		headers[key] = val
	}
	if len(setCookies) > 0 {
		headers["set-cookie"] = strings.Join(setCookies, "\x00")
	}

	te := strings.ToLower(headers["transfer-encoding"])
	switch {
	case strings.Contains(te, "chunked"):
		body, err = readChunked(r)
	case headers["content-length"] != "":
		n, cerr := strconv.Atoi(headers["content-length"])
		if cerr != nil {
			return 0, nil, nil, false, fmt.Errorf("httpclient: bad content-length: %w", cerr)
		}
		body = make([]byte, n)
		_, err = io.ReadFull(r, body)
	default:
		body, err = io.ReadAll(r)
		keepAlive = false
	}
	if err != nil {
		return 0, nil, nil, false, err
	}

	ce := strings.ToLower(headers["content-encoding"])
	if strings.Contains(ce, "compress") || strings.Contains(ce, "deflate") ||
		strings.Contains(te, "compress") || strings.Contains(te, "deflate") {
		return 0, nil, nil, false, fmt.Errorf("httpclient: unsupported content-encoding %q", ce)
	}
	if strings.Contains(ce, "gzip") || strings.Contains(te, "gzip") {
		body, err = gunzip(body)
		if err != nil {
			return 0, nil, nil, false, err
		}
	}

	if headers["content-length"] != "" || strings.Contains(te, "chunked") {
		conn := strings.ToLower(headers["connection"])
		keepAlive = method != "HEAD" && conn != "close"
		if status == 101 {
			keepAlive = false
		}
	}

	return status, headers, body, keepAlive, nil
}

func parseStatusLine(line string) (int, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return 0, fmt.Errorf("httpclient: malformed status line %q", line)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("httpclient: malformed status code in %q: %w", line, err)
	}
	return code, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readChunked implements spec §4.2 step 6's chunked decoding: hex size
// lines, trailing CRLF per chunk, a zero-size chunk terminates.
func readChunked(r *bufio.Reader) ([]byte, error) {
	var out []byte
	for {
		sizeLine, err := readLine(r)
		if err != nil {
			return nil, err
		}
		sizeLine, _, _ = strings.Cut(sizeLine, ";") // chunk extensions ignored
		size, err := strconv.ParseInt(strings.TrimSpace(sizeLine), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("httpclient: bad chunk size %q: %w", sizeLine, err)
		}
		if size == 0 {
			// Consume trailing headers (if any) up to the blank line.
			for {
				line, err := readLine(r)
				if err != nil {
					return nil, err
				}
				if line == "" {
					break
				}
			}
			return out, nil
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		out = append(out, buf...)
		// Trailing CRLF after the chunk data.
		if _, err := readLine(r); err != nil {
			return nil, err
		}
	}
}

func gunzip(b []byte) ([]byte, error) {
	gr, err := gzip.NewReader(strings.NewReader(string(b)))
	if err != nil {
		return nil, fmt.Errorf("httpclient: gzip: %w", err)
	}
	defer gr.Close()
	return io.ReadAll(gr)
}
