package endpoint

import (
	"context"
	"testing"
)

func TestParseEndpointLocal(t *testing.T) {
	ep, err := ParseEndpoint("./data/state.json", Options{})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ep.Type != EndpointLocal {
		t.Fatalf("expected local endpoint")
	}
	if ep.Path != "data/state.json" {
		t.Fatalf("unexpected path %s", ep.Path)
	}
	dir, name := ep.Split()
	if dir != "data" || name != "state.json" {
		t.Fatalf("unexpected split %s %s", dir, name)
	}
}

func TestParseEndpointRemote(t *testing.T) {
	ep, err := ParseEndpoint("user@example.com:/var/memfs/state.json", Options{SSH: SSHOptions{Port: 2222, Identity: "~/.ssh/id"}})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ep.Type != EndpointRemote {
		t.Fatalf("expected remote endpoint")
	}
	if ep.User != "user" || ep.Host != "example.com" {
		t.Fatalf("unexpected remote info: %+v", ep)
	}
	if ep.SSHOpts.Port != 2222 || ep.SSHOpts.Identity == "" {
		t.Fatalf("unexpected ssh options %+v", ep.SSHOpts)
	}
	if ep.DisplayName() != "user@example.com:/var/memfs/state.json" {
		t.Fatalf("unexpected display name %s", ep.DisplayName())
	}
	dir, name := ep.Split()
	if dir != "/var/memfs" || name != "state.json" {
		t.Fatalf("unexpected split %s %s", dir, name)
	}
}

func TestParseEndpointS3(t *testing.T) {
	ep, err := ParseEndpoint("s3://backups/memfs/state.json", Options{S3: S3Options{Region: "eu-west-1"}})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ep.Type != EndpointS3 || ep.Bucket != "backups" || ep.Path != "memfs/state.json" {
		t.Fatalf("unexpected endpoint %+v", ep)
	}
	if ep.S3Opts.Region != "eu-west-1" {
		t.Fatalf("s3 options not carried")
	}
	dir, name := ep.Split()
	if dir != "memfs" || name != "state.json" {
		t.Fatalf("unexpected split %s %s", dir, name)
	}

	ep, err = ParseEndpoint("s3://backups/state.json", Options{})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if dir, _ := ep.Split(); dir != "" {
		t.Fatalf("top-level key should have empty prefix, got %q", dir)
	}
}

func TestParseEndpointErrors(t *testing.T) {
	for _, raw := range []string{"", "   ", "s3://", "s3://bucket", "s3://bucket/"} {
		if _, err := ParseEndpoint(raw, Options{}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseChecksum(t *testing.T) {
	if algo, err := ParseChecksum(""); err != nil || algo != ChecksumSHA256 {
		t.Fatalf("default checksum = %s %v", algo, err)
	}
	if algo, err := ParseChecksum("MD5"); err != nil || algo != ChecksumMD5 {
		t.Fatalf("md5 = %s %v", algo, err)
	}
	if _, err := ParseChecksum("crc32"); err == nil {
		t.Fatal("expected error for crc32")
	}
}

func TestConnectLocal(t *testing.T) {
	dir := t.TempDir()
	ep, err := ParseEndpoint(dir+"/snap.json", Options{})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	fs, rel, err := Connect(context.Background(), ep)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer fs.Close()
	if rel != "snap.json" || fs.Root() != dir {
		t.Fatalf("unexpected root %s rel %s", fs.Root(), rel)
	}
}
