// Package featureflags evaluates runtime switches configured as a
// comma-separated list, e.g. "read_only=off,search=on,vote_score_sort=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Flags the API consults.
const (
	// ReadOnly rejects every mutating request with 503.
	ReadOnly = "read_only"
	// Search gates GET /api/search; it is on unless configured off.
	Search = "search"
)

var defaults = map[string]string{
	ReadOnly: "off",
	Search:   "on",
}

// Manager holds flag values. It is safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	flags map[string]string
}

// NewManager parses raw over the built-in defaults. Malformed pairs are
// skipped.
func NewManager(raw string) *Manager {
	flags := make(map[string]string, len(defaults))
	for k, v := range defaults {
		flags[k] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		flags[key] = value
	}

	return &Manager{flags: flags}
}

// Set overrides one flag at runtime.
func (m *Manager) Set(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[normalize(name)] = normalize(value)
}

// Enabled evaluates a flag for userID (0 for anonymous). Values are
// on/true/1, off/false/0, or N% for a deterministic per-user rollout that
// never includes anonymous callers below 100%.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	value, ok := m.flags[normalize(name)]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	switch {
	case err != nil, pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Names returns the configured flag names in order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.flags))
	for k := range m.flags {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot evaluates every flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	names := m.Names()
	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
