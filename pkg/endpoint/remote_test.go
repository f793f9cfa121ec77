package endpoint

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildSSHArgs(t *testing.T) {
	ep := Endpoint{
		Type: EndpointRemote,
		User: "alice",
		Host: "backup.local",
		SSHOpts: SSHOptions{
			Port:      2200,
			Identity:  "/keys/id",
			ExtraOpts: []string{"StrictHostKeyChecking=no", "  "},
		},
	}
	got := strings.Join(buildSSHArgs(ep, "true"), " ")
	want := "-i /keys/id -p 2200 -o StrictHostKeyChecking=no alice@backup.local true"
	if got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestShellQuote(t *testing.T) {
	if got := shellQuote("it's"); got != `'it'\''s'` {
		t.Fatalf("unexpected quote %s", got)
	}
}

func TestParseHashOutput(t *testing.T) {
	sum, err := parseHashOutput([]byte("d41d8cd98f00b204e9800998ecf8427e  /tmp/state.json\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sum) != 16 {
		t.Fatalf("unexpected length %d", len(sum))
	}
	if _, err := parseHashOutput(nil); !errors.Is(err, ErrHashCommandUnavailable) {
		t.Fatalf("empty output err = %v", err)
	}
	if _, err := parseHashOutput([]byte("zzzz  file")); err == nil {
		t.Fatal("expected error for non-hex output")
	}
}

func TestParseStatLine(t *testing.T) {
	meta, err := parseStatLine("state.json", "123|1700000000\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Size != 123 || meta.ModTime.Unix() != 1700000000 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if _, err := parseStatLine("x", "garbage"); err == nil {
		t.Fatal("expected error")
	}
}

func TestHashCommand(t *testing.T) {
	if hashCommand(ChecksumSHA256) != "sha256sum" || hashCommand(ChecksumNone) != "" {
		t.Fatal("unexpected hash command mapping")
	}
}
