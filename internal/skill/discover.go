package skill

import (
	"reflect"
	"sort"
	"strings"

	"github.com/bytedance/gg/gmap"
)

// CommandLister is the type-level marker: an implementation that wants an
// authoritative command list beyond what its metadata declares implements
// this and returns the externally callable method names.
type CommandLister interface {
	SkillCommands() []string
}

// markerMethodName is excluded from reflective enumeration so the marker
// itself never shows up as a callable command.
const markerMethodName = "SkillCommands"

// commandNames resolves the externally callable method names for one skill.
// Priority, first non-empty wins: descriptor exports, module-level marker,
// type-level marker, descriptor commands, reflective enumeration of the
// instance's exported methods.
func (r *Registry) commandNames(d *Descriptor, inst any, includePrivate bool) []string {
	if d != nil {
		if names := filterNames(d.Exports, includePrivate); len(names) > 0 {
			return names
		}
		if names := filterNames(r.factory.markerCommands(d.Module, d.Class), includePrivate); len(names) > 0 {
			return names
		}
	}
	if lister, ok := inst.(CommandLister); ok {
		if names := filterNames(lister.SkillCommands(), includePrivate); len(names) > 0 {
			return names
		}
	}
	if d != nil {
		if names := filterNames(d.Commands, includePrivate); len(names) > 0 {
			return names
		}
	}
	return reflectMethodNames(inst)
}

// Exports returns the name-to-invocable map for one loaded skill. A name is
// only included when it resolves to a callable method on the live instance.
func (r *Registry) Exports(slug string, includePrivate bool) map[string]reflect.Value {
	inst, ok := r.Instance(slug)
	if !ok {
		return nil
	}

	methods := make(map[string]reflect.Value)
	v := reflect.ValueOf(inst)
	for _, name := range r.commandNames(r.Descriptor(slug), inst, includePrivate) {
		m := v.MethodByName(name)
		if m.IsValid() {
			methods[name] = m
		}
	}
	return methods
}

// ExportedCommands returns just the command names for one loaded skill,
// sorted for stable presentation.
func (r *Registry) ExportedCommands(slug string, includePrivate bool) []string {
	names := gmap.ToSlice(
		r.Exports(slug, includePrivate),
		func(k string, v reflect.Value) string { return k },
	)
	sort.Strings(names)
	return names
}

// resolveCallable finds one invocable method on a loaded skill, or an
// invalid Value when the skill is missing or the name is not exported.
func (r *Registry) resolveCallable(slug, method string, includePrivate bool) reflect.Value {
	exports := r.Exports(slug, includePrivate)
	return exports[method]
}

// filterNames trims, de-duplicates preserving order, and drops names that
// look private by convention unless includePrivate is set.
func filterNames(names []string, includePrivate bool) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !includePrivate && strings.HasPrefix(name, "_") {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// reflectMethodNames enumerates the exported methods of an instance. The
// reflect package only surfaces exported methods, so the privacy filter is
// implicit here.
func reflectMethodNames(inst any) []string {
	if inst == nil {
		return nil
	}
	t := reflect.TypeOf(inst)
	names := make([]string, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		if name == markerMethodName {
			continue
		}
		names = append(names, name)
	}
	return names
}
