// Package featureflags evaluates behavior switches configured through FEATURE_FLAGS.
package featureflags

import (
	"hash/fnv"
	"slices"
	"strconv"
	"strings"
)

// Flags understood by the blog.
const (
	// ScopedComments shows only a post's own comments on its page.
	ScopedComments = "scoped_comments"
	// AuthorOnlyMutations restricts edit and delete to the post's author.
	AuthorOnlyMutations = "author_only_mutations"
	// LegacyPlaintextPasswords keeps writing the plaintext password column.
	LegacyPlaintextPasswords = "legacy_plaintext_passwords"
)

// Known lists every flag the application reads, in display order.
var Known = []string{ScopedComments, AuthorOnlyMutations, LegacyPlaintextPasswords}

// rule is a parsed flag value. percent is -1 for plain on/off values.
type rule struct {
	raw     string
	on      bool
	percent int
}

func parseRule(value string) rule {
	r := rule{raw: value, percent: -1}
	switch value {
	case "on", "true", "1", "yes":
		r.on = true
		return r
	case "off", "false", "0", "no":
		return r
	}
	if pct, ok := strings.CutSuffix(value, "%"); ok {
		if n, err := strconv.Atoi(pct); err == nil {
			r.percent = min(max(n, 0), 100)
		} else {
			r.percent = 0
		}
	}
	return r
}

// Manager holds flags parsed from a "name=value" list such as
// "scoped_comments=on,author_only_mutations=25%".
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw, skipping entries without a name or value.
func NewManager(raw string) *Manager {
	m := &Manager{rules: map[string]rule{}}
	for _, entry := range strings.Split(raw, ",") {
		name, value, found := strings.Cut(entry, "=")
		name, value = normalize(name), normalize(value)
		if !found || name == "" || value == "" {
			continue
		}
		m.rules[name] = parseRule(value)
	}
	return m
}

// Enabled reports whether name is on for userID. Percentage rollouts hash
// the flag name and user ID into a stable bucket; anonymous viewers (userID 0)
// only see a rollout at 100%.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	name = normalize(name)
	r, ok := m.rules[name]
	switch {
	case !ok:
		return false
	case r.percent < 0:
		return r.on
	case r.percent == 100:
		return true
	case r.percent == 0 || userID == 0:
		return false
	}
	return bucket(name, userID) < r.percent
}

// Raw returns every known flag ("" when unset) plus any extra configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(Known))
	for _, name := range Known {
		out[name] = ""
	}
	if m != nil {
		for name, r := range m.rules {
			out[name] = r.raw
		}
	}
	return out
}

// Snapshot evaluates every flag in Raw for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := map[string]bool{}
	for name := range m.Raw() {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

// Names returns the flag names from Raw, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(Known))
	for name := range m.Raw() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
