package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizePattern(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{".taxopick", ".taxopick"},
		{".taxopick/", ".taxopick"},
		{"/.taxopick/", ".taxopick"},
		{".taxopick/*", ".taxopick"},
		{".taxopick/**", ".taxopick"},
		{".taxopick/**/*", ".taxopick"},
		{"  field.json  ", "field.json"},
		{"*.db", "*.db"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := normalizePattern(tt.line); got != tt.want {
				t.Errorf("normalizePattern(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestEnsureGitignored(t *testing.T) {
	t.Run("creates gitignore if not exists", func(t *testing.T) {
		dir := t.TempDir()

		if err := EnsureGitignored(dir, ".taxopick/", "taxopick-field.json"); err != nil {
			t.Fatalf("EnsureGitignored() error = %v", err)
		}

		content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		if err != nil {
			t.Fatalf("failed to read .gitignore: %v", err)
		}
		if !strings.HasPrefix(string(content), gitignoreComment) {
			t.Errorf("expected file to start with the comment, got:\n%s", content)
		}
		for _, want := range []string{".taxopick/\n", "taxopick-field.json\n"} {
			if !strings.Contains(string(content), want) {
				t.Errorf("missing %q, got:\n%s", want, content)
			}
		}
	})

	t.Run("appends to file without trailing newline", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".gitignore")
		if err := os.WriteFile(path, []byte("node_modules/"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := EnsureGitignored(dir, ".taxopick/"); err != nil {
			t.Fatalf("EnsureGitignored() error = %v", err)
		}

		content, _ := os.ReadFile(path)
		if !strings.HasPrefix(string(content), "node_modules/\n\n"+gitignoreComment) {
			t.Errorf("unexpected layout:\n%s", content)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".gitignore")
		if err := os.WriteFile(path, []byte("/.taxopick\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		for i := 0; i < 2; i++ {
			if err := EnsureGitignored(dir, ".taxopick/", "field.db", "field.db"); err != nil {
				t.Fatalf("EnsureGitignored() error = %v", err)
			}
		}

		content, _ := os.ReadFile(path)
		if strings.Count(string(content), "field.db") != 1 {
			t.Errorf("expected field.db once, got:\n%s", content)
		}
		if strings.Contains(string(content), ".taxopick/") {
			t.Errorf("existing /.taxopick should cover .taxopick/, got:\n%s", content)
		}
		if strings.Count(string(content), gitignoreComment) != 1 {
			t.Errorf("expected one comment block, got:\n%s", content)
		}
	})

	t.Run("commented pattern does not count", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".gitignore")
		if err := os.WriteFile(path, []byte("# .taxopick/\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := EnsureGitignored(dir, ".taxopick/"); err != nil {
			t.Fatal(err)
		}
		content, _ := os.ReadFile(path)
		if !strings.Contains(string(content), "\n.taxopick/\n") {
			t.Errorf("expected pattern added, got:\n%s", content)
		}
	})
}
