// Package baseline implements the baseline persistence contract,
// following crashappsec-zero's suppression-service style: read/write a JSON
// array of simple projection objects.
package baseline

import (
	"encoding/json"
	"os"

	"github.com/polyglotscan/engine/internal/findings"
)

// Set is the loaded baseline: a set of {id, file, line} triples, compared
// by exact triple equality.
type Set map[findings.BaselineEntry]bool

// Contains reports whether entry is present in the baseline set.
func (s Set) Contains(entry findings.BaselineEntry) bool {
	return s[entry]
}

// Load reads path as a JSON array of {id, file, line} objects and returns
// the resulting Set. A missing file yields an empty (non-nil) set.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, err
	}

	var entries []findings.BaselineEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	set := make(Set, len(entries))
	for _, e := range entries {
		set[e] = true
	}
	return set, nil
}

// Write serializes the projection of fs to path as a JSON array, with file
// paths already canonicalized by the caller.
func Write(path string, fs []findings.Finding) error {
	entries := make([]findings.BaselineEntry, 0, len(fs))
	for _, f := range fs {
		entries = append(entries, f.Baseline())
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Filter drops every finding whose baseline projection is in set.
func Filter(set Set, fs []findings.Finding) []findings.Finding {
	if len(set) == 0 {
		return fs
	}
	out := make([]findings.Finding, 0, len(fs))
	for _, f := range fs {
		if set.Contains(f.Baseline()) {
			continue
		}
		out = append(out, f)
	}
	return out
}
