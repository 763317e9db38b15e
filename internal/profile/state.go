package profile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/use-agent/tinybrowser/internal/navstate"
)

// SnapshotJSON is the wire shape of a navstate.Snapshot, eliding default
// fields per spec §6.
type SnapshotJSON struct {
	URL     string `json:"url"`
	Payload string `json:"payload,omitempty"`
	Method  string `json:"method,omitempty"`
}

// TabJSON is the wire shape of one __state.json tab entry.
type TabJSON struct {
	URL     string         `json:"url"`
	Title   string         `json:"title,omitempty"`
	Scroll  int            `json:"scroll,omitempty"`
	Payload string         `json:"payload,omitempty"`
	Method  string         `json:"method,omitempty"`
	History []SnapshotJSON `json:"history,omitempty"`
	Future  []SnapshotJSON `json:"future,omitempty"`
	Secure  string         `json:"secure,omitempty"`
}

// StateFile is the wire shape of <state_dir>/__state.json.
type StateFile struct {
	Tabs           []TabJSON `json:"tabs"`
	ActiveTabIndex int       `json:"active_tab_index,omitempty"`
	Width          int       `json:"width,omitempty"`
	Height         int       `json:"height,omitempty"`
}

// ToJSON converts a live Window into its persisted wire shape.
func ToJSON(w *navstate.Window) StateFile {
	n := w.TabCount()
	sf := StateFile{ActiveTabIndex: w.ActiveIndex(), Width: w.Width, Height: w.Height}
	for i := 0; i < n; i++ {
		t := w.Tab(i)
		sf.Tabs = append(sf.Tabs, TabJSON{
			URL: t.URL, Title: t.Title, Scroll: t.Scroll,
			Payload: string(t.Payload), Method: t.Method,
			History: snapshotsToJSON(t.History),
			Future:  snapshotsToJSON(t.Future),
			Secure:  t.Secure,
		})
	}
	return sf
}

func snapshotsToJSON(ss []navstate.Snapshot) []SnapshotJSON {
	var out []SnapshotJSON
	for _, s := range ss {
		out = append(out, SnapshotJSON{URL: s.URL, Payload: string(s.Payload), Method: s.Method})
	}
	return out
}

// LoadState reads <state_dir>/__state.json. In private mode, or if the
// file does not exist, it returns a zero-value StateFile and no error.
func (d Dirs) LoadState() (StateFile, error) {
	var sf StateFile
	if d.Private || d.StateDir == "" {
		return sf, nil
	}
	path := filepath.Join(d.StateDir, "__state.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return sf, nil
	}
	if err != nil {
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return StateFile{}, nil // malformed state: start fresh rather than fail navigation
	}
	return sf, nil
}

// SaveState writes sf to <state_dir>/__state.json. A no-op in private
// mode, per spec §6's "no-disk" profile.
func (d Dirs) SaveState(sf StateFile) error {
	if d.Private || d.StateDir == "" {
		return nil
	}
	if err := ensureDir(d.StateDir); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.StateDir, "__state.json"), data, 0o644)
}
