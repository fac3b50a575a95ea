package cmd

import (
	"testing"

	"github.com/ghgrab/cli/resolver"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`{
		// personal access token
		"token": "tok123",
		"output": "/tmp/downloads", // trailing comma allowed
	}`)

	cfg, err := parseConfig(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Token != "tok123" {
		t.Errorf("token = %q", cfg.Token)
	}
	if cfg.Output != "/tmp/downloads" {
		t.Errorf("output = %q", cfg.Output)
	}
}

func TestParseConfigMalformed(t *testing.T) {
	if _, err := parseConfig([]byte(`{"token": `)); err == nil {
		t.Error("expected error for truncated config")
	}
}

func TestResolveTokenPrecedence(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "from-env")

	if got := resolveToken("from-flag", fileConfig{Token: "from-file"}); got != "from-flag" {
		t.Errorf("flag should win, got %q", got)
	}
	if got := resolveToken("", fileConfig{Token: "from-file"}); got != "from-env" {
		t.Errorf("env should beat config file, got %q", got)
	}

	t.Setenv("GITHUB_TOKEN", "")
	if got := resolveToken("", fileConfig{Token: "from-file"}); got != "from-file" {
		t.Errorf("config file should be used, got %q", got)
	}
}

func TestOutputTarget(t *testing.T) {
	blob := resolver.Address{Owner: "o", Repo: "r", Ref: "main", Path: "docs/intro.md", Kind: resolver.KindBlob}
	tree := resolver.Address{Owner: "o", Repo: "r", Ref: "main", Path: "src", Kind: resolver.KindTree}

	tests := []struct {
		name      string
		addr      resolver.Address
		flag      string
		base      string
		wantDir   string
		wantExact string
	}{
		{"default is repo name", tree, "", "", "r", ""},
		{"configured base prepended", tree, "", "/dl", "/dl/r", ""},
		{"explicit directory", tree, "out", "", "out", ""},
		{"blob with trailing slash is a directory", blob, "out/", "", "out/", ""},
		{"blob without trailing slash is the file itself", blob, "out/renamed.md", "", "", "out/renamed.md"},
		{"tree never gets an exact file", tree, "out/renamed.md", "", "out/renamed.md", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, exact := outputTarget(tt.addr, tt.flag, tt.base)
			if dir != tt.wantDir || exact != tt.wantExact {
				t.Errorf("outputTarget = (%q, %q), want (%q, %q)", dir, exact, tt.wantDir, tt.wantExact)
			}
		})
	}
}
