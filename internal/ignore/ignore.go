// Package ignore loads a ".staticignore" file (one gitignore-style glob per
// line) and matches candidate paths against it during rule and file
// discovery, the same shape as a watch/ignore-pattern list.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
)

const fileName = ".staticignore"

// Matcher holds the glob patterns parsed from one .staticignore file.
type Matcher struct {
	patterns []string
}

// Load reads root/.staticignore. A missing file yields an empty, non-nil
// Matcher (nothing is ignored) rather than an error.
func Load(root string) (*Matcher, error) {
	data, err := os.ReadFile(filepath.Join(root, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &Matcher{}, nil
		}
		return nil, err
	}

	var patterns []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return &Matcher{patterns: patterns}, nil
}

// Match reports whether path (relative to the root Load was called with)
// should be excluded from discovery.
func (m *Matcher) Match(path string) bool {
	if m == nil {
		return false
	}
	path = filepath.ToSlash(path)
	base := filepath.Base(path)

	for _, pattern := range m.patterns {
		pattern = filepath.ToSlash(pattern)

		if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
			if path == dir || strings.HasPrefix(path, dir+"/") {
				return true
			}
		}

		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}
