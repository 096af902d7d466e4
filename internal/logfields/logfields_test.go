package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Repository", KeyRepo, "spec", Repository("spec")},
		{"URL", KeyURL, "https://example", URL("https://example")},
		{"Branch", KeyBranch, "main", Branch("main")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"State", KeyState, "absent", State("absent")},
		{"Mode", KeyMode, "offline", Mode("offline")},
		{"Requested", KeyRequested, "unrestricted", Requested("unrestricted")},
		{"Host", KeyHost, "github.com", Host("github.com")},
		{"Op", KeyOp, "fetch", Op("fetch")},
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Command", KeyCommand, "codex", Command("codex")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestCommitShortens(t *testing.T) {
	if got := Commit("0123456789abcdef").Value.String(); got != "01234567" {
		t.Fatalf("expected short hash, got %s", got)
	}
	if got := Commit("abc").Value.String(); got != "abc" {
		t.Fatalf("expected unchanged short input, got %s", got)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errors.New("err-test"))
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
	if v := Attempt(2); v.Key != KeyAttempt {
		t.Fatalf("Attempt key mismatch: %s", v.Key)
	}
	if v := DurationMS(1.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}
