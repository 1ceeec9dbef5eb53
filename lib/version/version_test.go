package version

import "testing"

func TestInfoFormatsCleanBuild(t *testing.T) {
	oldVersion, oldCommit, oldDirty, oldTime := Version, GitCommit, GitDirty, BuildTime
	defer func() { Version, GitCommit, GitDirty, BuildTime = oldVersion, oldCommit, oldDirty, oldTime }()

	Version = "1.2.3"
	GitCommit = "abc1234"
	GitDirty = "false"
	BuildTime = "2026-01-01T00:00:00Z"

	got := Info()
	want := "1.2.3 (abc1234, 2026-01-01T00:00:00Z)"
	if got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestInfoFormatsDirtyBuild(t *testing.T) {
	oldDirty := GitDirty
	defer func() { GitDirty = oldDirty }()

	GitDirty = "true"
	if !contains(Info(), "-dirty") {
		t.Errorf("Info() = %q, want it to contain -dirty", Info())
	}
}

func TestShortReturnsVersionOnly(t *testing.T) {
	oldVersion := Version
	defer func() { Version = oldVersion }()

	Version = "9.9.9"
	if Short() != "9.9.9" {
		t.Errorf("Short() = %q, want 9.9.9", Short())
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
