package cookiejar

import "testing"

func TestSameSiteLaxDropsCrossSitePOST(t *testing.T) {
	j := New()
	j.SetCookieByHost("host", "a=1; SameSite=Lax", false)

	if got := j.FilterForRequest("host", "other", "POST"); got != "" {
		t.Errorf("expected cross-site POST to omit lax cookie, got %q", got)
	}
	if got, want := j.FilterForRequest("host", "other", "GET"), "a=1"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSameSiteStrictDropsAnyCrossSite(t *testing.T) {
	j := New()
	j.SetCookieByHost("host", "a=1; SameSite=Strict", false)
	if got := j.FilterForRequest("host", "other", "GET"); got != "" {
		t.Errorf("expected strict cookie omitted cross-site, got %q", got)
	}
	if got, want := j.FilterForRequest("host", "host", "GET"), "a=1"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestHttpOnlyHiddenFromScript(t *testing.T) {
	j := New()
	j.SetCookieByHost("host", "session=abc; HttpOnly", false)
	if got := j.GetCookieValueByHost("host", true); got != "" {
		t.Errorf("expected HttpOnly hidden from script read, got %q", got)
	}
	if got, want := j.GetCookieValueByHost("host", false), "session=abc"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestScriptWriteCannotOverwriteHttpOnly(t *testing.T) {
	j := New()
	j.SetCookieByHost("host", "session=abc; HttpOnly", false)
	j.SetCookieByHost("host", "session=evil", true)
	if got, want := j.GetCookieValueByHost("host", false), "session=abc"; got != want {
		t.Errorf("script write overwrote HttpOnly cookie: got %q want %q", got, want)
	}
}

func TestReplaceSameName(t *testing.T) {
	j := New()
	j.SetCookieByHost("host", "a=1", false)
	j.SetCookieByHost("host", "a=2", false)
	items := j.GetCookieItemsByHost("host")
	if len(items) != 1 || items[0].Value != "2" {
		t.Errorf("expected single replaced entry, got %+v", items)
	}
}

func TestTrailingSemicolonTolerated(t *testing.T) {
	j := New()
	j.SetCookieByHost("host", "a=1;", false)
	if got, want := j.GetCookieValueByHost("host", false), "a=1"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
