package weburl

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"https://example.org:8080/a/b?q=1#frag",
		"http://example.org/",
		"file:///tmp/x.html",
	}
	for _, raw := range cases {
		u, err := Parse(raw, nil)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		u2, err := Parse(u.String(), nil)
		if err != nil {
			t.Fatalf("Parse(round-trip %q): %v", u.String(), err)
		}
		if u.Scheme != u2.Scheme || u.Host != u2.Host || u.Port != u2.Port ||
			u.Path != u2.Path || u.Search != u2.Search || u.Fragment != u2.Fragment {
			t.Errorf("round-trip mismatch for %q: %+v vs %+v", raw, u, u2)
		}
	}
}

func TestDefaultPortOmitted(t *testing.T) {
	u, err := Parse("https://example.org:8080", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := u.String(), "https://example.org:8080/"; got != want {
		t.Errorf("got %q want %q", got, want)
	}

	u, err = Parse("https://example.org:443/", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := u.String(), "https://example.org/"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestParentResolution(t *testing.T) {
	parent, err := Parse("https://h/p?q", nil)
	if err != nil {
		t.Fatal(err)
	}
	u, err := Parse("/x", parent)
	if err != nil {
		t.Fatal(err)
	}
	if u.Scheme != SchemeHTTPS || u.Host != "h" || u.Port != 443 || u.Path != "/x" {
		t.Errorf("got %+v", u)
	}
}

func TestRelativeLastSegmentReplaced(t *testing.T) {
	parent, err := Parse("https://h/a/b.html", nil)
	if err != nil {
		t.Fatal(err)
	}
	u, err := Parse("c.css", parent)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := u.Path, "/a/c.css"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestFragmentOnlyKeepsRestOfParent(t *testing.T) {
	parent, err := Parse("https://h/a/b.html?x=1", nil)
	if err != nil {
		t.Fatal(err)
	}
	u, err := Parse("#section", parent)
	if err != nil {
		t.Fatal(err)
	}
	if u.Path != "/a/b.html" || u.Search != "x=1" || u.Fragment != "section" {
		t.Errorf("got %+v", u)
	}
}

func TestUnsupportedScheme(t *testing.T) {
	_, err := Parse("ftp://example.org/", nil)
	var e *ErrInvalidScheme
	if err == nil {
		t.Fatal("expected error")
	}
	if !asInvalidScheme(err, &e) {
		t.Fatalf("expected ErrInvalidScheme, got %T: %v", err, err)
	}
}

func asInvalidScheme(err error, target **ErrInvalidScheme) bool {
	e, ok := err.(*ErrInvalidScheme)
	if !ok {
		return false
	}
	*target = e
	return true
}

func TestDataURL(t *testing.T) {
	u, err := Parse("data:text/html,<b>hi</b>", nil)
	if err != nil {
		t.Fatal(err)
	}
	if u.DataMime != "text/html" || u.DataContent != "<b>hi</b>" {
		t.Errorf("got %+v", u)
	}
}

func TestAboutURL(t *testing.T) {
	u, err := Parse("about:blank", nil)
	if err != nil {
		t.Fatal(err)
	}
	if u.Scheme != SchemeAbout || u.Path != "blank" {
		t.Errorf("got %+v", u)
	}
}

func TestViewSourcePrefix(t *testing.T) {
	u, err := Parse("view-source:https://example.org/", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !u.ViewSource || u.Scheme != SchemeHTTPS {
		t.Errorf("got %+v", u)
	}
}

func TestOrigin(t *testing.T) {
	u, err := Parse("https://example.org:8080/a", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := u.Origin(), "https://example.org:8080"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
