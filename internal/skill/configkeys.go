package skill

import (
	"fmt"
	"strings"
)

// ConfigSource is the host-side lookup the aggregator evaluates readiness
// against. The registry never resolves configuration values itself.
type ConfigSource interface {
	Value(key string) any
}

const (
	readyMark    = "✅"
	notReadyMark = "❌"
)

// RequiredConfigKeys returns the union of configuration keys the skills
// require, upper-cased and de-duplicated in first-seen order.
func (r *Registry) RequiredConfigKeys(includeDisabled bool) []string {
	return r.collectKeys(includeDisabled, func(d *Descriptor) []string { return d.RequiredConfig })
}

// OptionalConfigKeys returns the union of optional configuration keys.
func (r *Registry) OptionalConfigKeys(includeDisabled bool) []string {
	return r.collectKeys(includeDisabled, func(d *Descriptor) []string { return d.OptionalConfig })
}

func (r *Registry) collectKeys(includeDisabled bool, pick func(*Descriptor) []string) []string {
	seen := make(map[string]struct{})
	var ordered []string

	for _, d := range r.Descriptors().All() {
		if !includeDisabled && !d.Enabled {
			continue
		}
		for _, key := range pick(d) {
			upper := strings.ToUpper(strings.TrimSpace(key))
			if upper == "" {
				continue
			}
			if _, dup := seen[upper]; dup {
				continue
			}
			seen[upper] = struct{}{}
			ordered = append(ordered, upper)
		}
	}
	return ordered
}

// APIStatus renders one readiness line per skill that declares required
// configuration: the skill's status label followed by a ready marker when
// every required key has a usable value in the host configuration.
func (r *Registry) APIStatus(src ConfigSource, includeDisabled bool) []string {
	var statuses []string

	for _, d := range r.Descriptors().All() {
		if !includeDisabled && !d.Enabled {
			continue
		}
		if len(d.RequiredConfig) == 0 {
			continue
		}

		ready := true
		for _, key := range d.RequiredConfig {
			if !configValueSet(src, key) {
				ready = false
				break
			}
		}

		mark := notReadyMark
		if ready {
			mark = readyMark
		}
		statuses = append(statuses, fmt.Sprintf("%s %s", d.StatusLabel(), mark))
	}
	return statuses
}

// configValueSet reports whether a host value is present: non-nil, and for
// text, non-blank after trimming. Keys are normalized the same way the key
// union presents them.
func configValueSet(src ConfigSource, key string) bool {
	key = strings.ToUpper(strings.TrimSpace(key))
	if src == nil || key == "" {
		return false
	}
	value := src.Value(key)
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}
