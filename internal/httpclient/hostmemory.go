package httpclient

import (
	"sync"
	"time"
)

// quirk records a keep-alive oddity remembered about a host, such as a
// server that claims keep-alive but closes immediately after one
// response. The client records it (markNoKeepAlive) but the request
// path does not read it back, so later requests still use keep-alive.
type quirk struct {
	noKeepAlive bool
	expiresAt   time.Time
}

// hostMemory is a TTL map of per-host connection quirks, adapted from
// engine/domain_memory.go's TTL sync.Map (there it remembered which
// fetch engine worked per domain; here it remembers keep-alive behavior
// per host).
type hostMemory struct {
	store sync.Map // host -> *quirk
	ttl   time.Duration
}

func newHostMemory(ttl time.Duration) *hostMemory {
	return &hostMemory{ttl: ttl}
}

// noKeepAlive reports whether host was previously observed dropping
// keep-alive connections.
func (m *hostMemory) noKeepAlive(host string) bool {
	v, ok := m.store.Load(host)
	if !ok {
		return false
	}
	q := v.(*quirk)
	if time.Now().After(q.expiresAt) {
		m.store.Delete(host)
		return false
	}
	return q.noKeepAlive
}

// markNoKeepAlive remembers that host does not honor keep-alive.
func (m *hostMemory) markNoKeepAlive(host string) {
	m.store.Store(host, &quirk{
		noKeepAlive: true,
		expiresAt:   time.Now().Add(m.ttl),
	})
}
