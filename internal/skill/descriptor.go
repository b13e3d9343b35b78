package skill

import (
	"strings"
)

const (
	// MetadataFile is the per-skill descriptor document.
	MetadataFile = "metadata.json"

	// ConventionFile marks a directory as carrying a conventional
	// implementation, enabling module/class inference.
	ConventionFile = "service.go"

	defaultInstructionsFile = "instructions.md"
)

// Descriptor is the static metadata for one skill, loaded once per process
// and read-only thereafter.
type Descriptor struct {
	// Slug is the stable registry-wide identifier, derived from the skill's
	// directory name when the metadata omits it.
	Slug string

	// Name is the human-readable label, defaulting to a title-cased slug.
	Name string

	// Module and Class identify the concrete implementation registered with
	// the service factory. Either half may be inferred by convention.
	Module string
	Class  string

	Description string

	// Commands is the declared list of externally callable methods.
	Commands []string

	// Exports is a higher-priority declared list for cross-skill
	// programmatic use; it wins over Commands during discovery.
	Exports []string

	// Keywords route free text to this skill. Stored, never interpreted here.
	Keywords []string

	Enabled bool

	// Instructions is the prompt text read from the sibling instructions
	// file, passed through verbatim.
	Instructions string

	InitArgs   []any
	InitKwargs map[string]any

	RequiredConfig []string
	OptionalConfig []string

	// Raw retains the parsed metadata document so forward-compatible fields
	// (for example status_label) survive a load/sync round trip.
	Raw map[string]any
}

// StatusLabel returns the label used in API readiness reports.
func (d *Descriptor) StatusLabel() string {
	if d.Raw != nil {
		if label := strings.TrimSpace(toString(d.Raw["status_label"])); label != "" {
			return label
		}
	}
	if d.Name != "" {
		return d.Name
	}
	return d.Slug
}

// resolveList normalizes a metadata value into a slice: nil becomes empty,
// a scalar becomes a single-element slice.
func resolveList(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

func stringList(value any) []string {
	items := resolveList(value)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := toString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toString(value any) string {
	s, _ := value.(string)
	return s
}

// inferClassName derives the conventional implementation class from a slug:
// snake/kebab segments become PascalCase plus the Service suffix, so
// "info_search" resolves to InfoSearchService.
func inferClassName(slug string) string {
	normalized := strings.ReplaceAll(slug, "-", "_")
	var b strings.Builder
	for _, part := range strings.Split(normalized, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		return "Service"
	}
	b.WriteString("Service")
	return b.String()
}

func titleCase(slug string) string {
	words := strings.Fields(strings.ReplaceAll(slug, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
