package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const gitignoreComment = "# taxopick local field data and view state"

// EnsureGitignored makes sure every pattern is listed in projectDir's
// .gitignore. An empty projectDir means the working directory.
//
// It is idempotent: patterns already covered (with or without leading or
// trailing slashes and globs) are not added again, and existing content is
// preserved.
func EnsureGitignored(projectDir string, patterns ...string) error {
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}
	path := filepath.Join(projectDir, ".gitignore")

	present, err := gitignoreEntries(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	var missing []string
	for _, p := range patterns {
		key := normalizePattern(p)
		if key == "" || present[key] {
			continue
		}
		present[key] = true
		missing = append(missing, p)
	}
	if len(missing) == 0 {
		return nil
	}
	return appendToGitignore(path, missing)
}

// gitignoreEntries returns the normalized non-comment lines of path.
func gitignoreEntries(path string) (map[string]bool, error) {
	entries := make(map[string]bool)
	file, err := os.Open(path)
	if err != nil {
		return entries, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries[normalizePattern(line)] = true
	}
	return entries, scanner.Err()
}

// normalizePattern strips anchoring slashes and directory globs so that
// ".taxopick", "/.taxopick/" and ".taxopick/**" compare equal.
func normalizePattern(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimPrefix(p, "/")
	for _, suffix := range []string{"/**/*", "/**", "/*", "/"} {
		if strings.HasSuffix(p, suffix) {
			p = strings.TrimSuffix(p, suffix)
			break
		}
	}
	return p
}

// appendToGitignore appends a commented block of patterns, creating the
// file if needed and keeping a blank line between blocks.
func appendToGitignore(path string, patterns []string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	var sb strings.Builder
	if len(content) > 0 {
		if content[len(content)-1] != '\n' {
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(gitignoreComment + "\n")
	for _, p := range patterns {
		sb.WriteString(p + "\n")
	}

	_, err = file.WriteString(sb.String())
	return err
}
