package cache

import (
	"testing"
	"time"
)

func TestExpirySeconds(t *testing.T) {
	c := New(1024*1024, "")
	base := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return base }

	c.Set("k", []byte("body"), 10)

	c.now = func() time.Time { return base.Add(9 * time.Second) }
	if _, ok := c.Get("k"); !ok {
		t.Error("expected hit before expiry")
	}

	c.now = func() time.Time { return base.Add(10 * time.Second) }
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss at t=now+max_age (boundary), not a millisecond-scaled expiry")
	}
}

func TestSessionOnlyNeverExpires(t *testing.T) {
	c := New(1024*1024, "")
	base := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return base }
	c.Set("k", []byte("body"), 0)

	c.now = func() time.Time { return base.Add(365 * 24 * time.Hour) }
	if _, ok := c.Get("k"); !ok {
		t.Error("session-only entry should never auto-expire")
	}
}

func TestKeyShape(t *testing.T) {
	got := Key("https", "example.org", 443, "/a", "q=1")
	want := "https://example.org:443/a?q=1"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
