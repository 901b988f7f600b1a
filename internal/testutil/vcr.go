// Package testutil holds helpers shared by the upstream client tests.
package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// Recording reports whether cassettes are being refreshed against the live
// providers (VCR_MODE=record).
func Recording() bool {
	return os.Getenv("VCR_MODE") == "record"
}

// ReplayClient returns an HTTP client that replays
// testdata/fixtures/<cassette>.yaml, together with the API key to send.
// Replays use a placeholder key. Recording reads the key from keyEnv and skips
// the test when it is unset. The recorder is stopped when the test ends.
func ReplayClient(t *testing.T, cassetteName, keyEnv string) (*http.Client, string) {
	t.Helper()

	mode, key := recorder.ModeReplaying, "test-key"
	if Recording() {
		key = os.Getenv(keyEnv)
		if key == "" {
			t.Skipf("%s not set", keyEnv)
		}
		mode = recorder.ModeRecording
	}

	rec, err := recorder.NewAsMode(filepath.Join("testdata", "fixtures", cassetteName), mode, nil)
	if err != nil {
		t.Fatalf("open cassette %s: %v", cassetteName, err)
	}
	t.Cleanup(func() {
		if err := rec.Stop(); err != nil {
			t.Errorf("stop cassette %s: %v", cassetteName, err)
		}
	})

	// keys never reach a cassette
	rec.AddFilter(func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "Authorization")
		return nil
	})
	rec.SetMatcher(func(r *http.Request, i cassette.Request) bool {
		return r.Method == i.Method && r.URL.String() == i.URL
	})

	return &http.Client{Transport: rec}, key
}
