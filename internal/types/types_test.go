package types

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseScanTarget(t *testing.T) {
	tests := []struct {
		in   string
		want ScanTarget
	}{
		{"Roaming", Roaming},
		{"local", Local},
		{" LOCALLOW ", LocalLow},
	}

	for _, tt := range tests {
		got, err := ParseScanTarget(tt.in)
		if err != nil {
			t.Fatalf("ParseScanTarget(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseScanTarget(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseScanTarget("Temp"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestScanTargetString(t *testing.T) {
	for _, target := range AllTargets() {
		parsed, err := ParseScanTarget(target.String())
		if err != nil || parsed != target {
			t.Errorf("target %v does not parse back: %v %v", target, parsed, err)
		}
	}
	if got := ScanTarget(9).String(); got != "ScanTarget(9)" {
		t.Errorf("unexpected string for invalid target: %s", got)
	}
}

func TestScanEventJSON(t *testing.T) {
	ev := FolderEvent(3, FolderEntry{Name: "A", Path: "/r/A", SizeBytes: 300, Files: 2})

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"kind":"folder"`) {
		t.Errorf("kind not encoded as word: %s", s)
	}
	if strings.Contains(s, `"progress"`) || strings.Contains(s, `"outcome"`) {
		t.Errorf("unset payloads should be omitted: %s", s)
	}
}
