package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	tls2 "github.com/refraction-networking/utls"
)

// dialPlain opens a raw TCP connection for http:// targets.
func dialPlain(ctx context.Context, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	return dialer.DialContext(ctx, "tcp", addr)
}

// dialTLS opens a utls connection with server-name indication, the way
// scraper/httpfetch.go's dialTLSChrome dialed a raw TCP connection then
// wrapped it in a Chrome-fingerprinted TLS client. The engine's socket
// pool needs the raw framing utls exposes; net/http's Transport hides it.
func dialTLS(ctx context.Context, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("httpclient: split host/port %q: %w", addr, err)
	}

	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
