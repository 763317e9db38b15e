package main

import (
	"os"
	"testing"
)

func TestRunVersion(t *testing.T) {
	if code := run([]string{"--version"}); code != 0 {
		t.Errorf("--version exit code = %d, want 0", code)
	}
}

func TestRunUnknownFlag(t *testing.T) {
	if code := run([]string{"--not-a-real-flag"}); code != 1 {
		t.Errorf("unknown flag exit code = %d, want 1", code)
	}
}

func TestRunFixtures(t *testing.T) {
	if code := runFixtures([]string{"redirect", "cookies", "handleDefault"}); code != 0 {
		t.Errorf("runFixtures exit code = %d, want 0", code)
	}
}

func TestRunPrivateLoadsDataURL(t *testing.T) {
	dir := t.TempDir()
	code := run([]string{"--private", "--cache-dir", dir, "--exit", "data:text/html,<title>hi</title>"})
	if code != 0 {
		t.Errorf("run exit code = %d, want 0", code)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("--private must not write to %s, found %v", dir, entries)
	}
}
