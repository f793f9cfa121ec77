package namespace

import "testing"

func TestResolve(t *testing.T) {
	cases := []struct {
		cwd  string
		in   string
		want string
	}{
		{"/docs", "a.txt", "/docs/a.txt"},
		{"/docs/sub", "x/y", "/docs/sub/x/y"},
		{"/", "a", "/a"},
		{"/docs", "/etc/conf", "/etc/conf"},
		{"/docs", "../a", "/a"},
		{"/docs", "./a", "/docs/a"},
		{"/docs", "a//b/", "/docs/a/b"},
		{"/", "..", "/"},
		{"/docs", "", "/docs"},
	}
	for _, tc := range cases {
		if got := Resolve(tc.cwd, tc.in); got != tc.want {
			t.Fatalf("Resolve(%q, %q) = %q, want %q", tc.cwd, tc.in, got, tc.want)
		}
	}
}

func TestResolveConcatenation(t *testing.T) {
	for _, cwd := range []string{"/a", "/a/b", "/long/path/here"} {
		for _, p := range []string{"x", "x/y", "file.txt"} {
			if got, want := Resolve(cwd, p), cwd+"/"+p; got != want {
				t.Fatalf("Resolve(%q, %q) = %q, want %q", cwd, p, got, want)
			}
		}
	}
}

func TestIsChild(t *testing.T) {
	if !IsChild("/", "/a") {
		t.Fatal("/a should be a child of /")
	}
	if IsChild("/", "/a/b") {
		t.Fatal("/a/b is not an immediate child of /")
	}
	if IsChild("/a", "/ab") {
		t.Fatal("/ab only shares a string prefix with /a")
	}
	if IsChild("/", "/") {
		t.Fatal("root is not its own child")
	}
}

func TestIsCanonical(t *testing.T) {
	for _, p := range []string{"/", "/a", "/a/b.txt"} {
		if !IsCanonical(p) {
			t.Fatalf("%q should be canonical", p)
		}
	}
	for _, p := range []string{"", "a", "/a/", "//a", "/a/../b", "/./a"} {
		if IsCanonical(p) {
			t.Fatalf("%q should not be canonical", p)
		}
	}
}
