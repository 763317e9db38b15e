package profile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/use-agent/tinybrowser/internal/cookiejar"
)

// cookieEntryJSON mirrors one [cookie_string, attrs] tuple of
// <data_dir>/__cookies.json.
type cookieEntryJSON struct {
	raw      string
	httpOnly bool
	sameSite string
}

func (c cookieEntryJSON) MarshalJSON() ([]byte, error) {
	attrs := map[string]any{}
	if c.httpOnly {
		attrs["httponly"] = true
	}
	if c.sameSite != "" {
		attrs["samesite"] = c.sameSite
	}
	return json.Marshal([]any{c.raw, attrs})
}

func (c *cookieEntryJSON) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &c.raw); err != nil {
		return err
	}
	var attrs map[string]any
	if err := json.Unmarshal(tuple[1], &attrs); err != nil {
		return nil
	}
	if v, ok := attrs["httponly"].(bool); ok {
		c.httpOnly = v
	}
	if v, ok := attrs["samesite"].(string); ok {
		c.sameSite = v
	}
	return nil
}

// CookiesFile is the wire shape of <data_dir>/__cookies.json: host ->
// ordered list of [cookie_string, attrs] tuples.
type CookiesFile map[string][]cookieEntryJSON

// LoadCookies reads <data_dir>/__cookies.json into a fresh Jar. Private
// mode and a missing file both yield an empty jar.
func (d Dirs) LoadCookies() (*cookiejar.Jar, error) {
	j := cookiejar.New()
	if d.Private || d.DataDir == "" {
		return j, nil
	}
	data, err := os.ReadFile(filepath.Join(d.DataDir, "__cookies.json"))
	if os.IsNotExist(err) {
		return j, nil
	}
	if err != nil {
		return j, err
	}
	var cf CookiesFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return cookiejar.New(), nil
	}
	for host, entries := range cf {
		for _, e := range entries {
			j.SetCookieByHost(host, rebuildSetCookie(e), false)
		}
	}
	return j, nil
}

// rebuildSetCookie re-appends the attributes the jar's own parser
// recognizes so SetCookieByHost reconstructs an equivalent Cookie.
func rebuildSetCookie(e cookieEntryJSON) string {
	s := e.raw
	if e.httpOnly {
		s += "; HttpOnly"
	}
	if e.sameSite != "" {
		s += "; SameSite=" + e.sameSite
	}
	return s
}

// SaveCookies writes j's contents to <data_dir>/__cookies.json for the
// given hosts; a no-op in private mode.
func (d Dirs) SaveCookies(j *cookiejar.Jar, hosts []string) error {
	if d.Private || d.DataDir == "" {
		return nil
	}
	cf := CookiesFile{}
	for _, host := range hosts {
		items := j.GetCookieItemsByHost(host)
		if len(items) == 0 {
			continue
		}
		entries := make([]cookieEntryJSON, 0, len(items))
		for _, c := range items {
			entries = append(entries, cookieEntryJSON{
				raw:      c.Name + "=" + c.Value,
				httpOnly: c.HTTPOnly,
				sameSite: string(c.SameSite),
			})
		}
		cf[host] = entries
	}
	if err := ensureDir(d.DataDir); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.DataDir, "__cookies.json"), data, 0o644)
}
