package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/edisonhq/edison/internal/pkg/logs"
)

// DescriptorSet is an ordered view over loaded descriptors. Iteration order
// is the sorted directory order the loader produced, so dispatch and sync
// behave deterministically regardless of map iteration.
type DescriptorSet struct {
	bySlug map[string]*Descriptor
	order  []string
}

func newDescriptorSet() *DescriptorSet {
	return &DescriptorSet{bySlug: make(map[string]*Descriptor, 16)}
}

func (s *DescriptorSet) add(d *Descriptor) {
	if _, seen := s.bySlug[d.Slug]; !seen {
		s.order = append(s.order, d.Slug)
	} else {
		// Duplicate slug: later directory wins, original position is kept.
		logs.Warn("[skill:loader] duplicate slug %q, overriding earlier definition", d.Slug)
	}
	s.bySlug[d.Slug] = d
}

func (s *DescriptorSet) Get(slug string) *Descriptor {
	if s == nil {
		return nil
	}
	return s.bySlug[slug]
}

func (s *DescriptorSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Slugs returns the slugs in load order.
func (s *DescriptorSet) Slugs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All returns the descriptors in load order.
func (s *DescriptorSet) All() []*Descriptor {
	if s == nil {
		return nil
	}
	out := make([]*Descriptor, 0, len(s.order))
	for _, slug := range s.order {
		out = append(out, s.bySlug[slug])
	}
	return out
}

// LoadDescriptors scans root's immediate subdirectories for skill metadata
// and returns the parsed descriptors. A directory without a metadata file is
// scratch space and is skipped silently; a broken metadata file only skips
// that one skill.
func LoadDescriptors(root string) *DescriptorSet {
	set := newDescriptorSet()

	entries, err := os.ReadDir(root)
	if err != nil {
		logs.Debug("[skill:loader] skills directory unavailable: %s (%v)", root, err)
		return set
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		d, err := loadDescriptor(dir, entry.Name())
		if err != nil {
			logs.Warn("[skill:loader] skipping %s: %v", entry.Name(), err)
			continue
		}
		if d == nil {
			continue
		}
		set.add(d)
	}

	return set
}

// loadDescriptor parses one skill directory. It returns (nil, nil) when the
// directory has no metadata file and an error when the skill is invalid.
func loadDescriptor(dir, dirName string) (*Descriptor, error) {
	metaPath := filepath.Join(dir, MetadataFile)
	payload, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			logs.Debug("[skill:loader] no %s in %s", MetadataFile, dir)
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata for %s: %w", dirName, err)
	}

	var raw map[string]any
	if err := sonic.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse metadata for %s: %w", dirName, err)
	}

	slug := strings.TrimSpace(toString(raw["slug"]))
	if slug == "" {
		slug = dirName
	}

	module, class := resolveImplementationRef(dir, raw, slug)
	if module == "" || class == "" {
		return nil, fmt.Errorf("skill %s missing module/class definition", slug)
	}

	name := strings.TrimSpace(toString(raw["name"]))
	if name == "" {
		name = titleCase(slug)
	}

	enabled := true
	if v, ok := raw["enabled"].(bool); ok {
		enabled = v
	}

	initKwargs, _ := raw["init_kwargs"].(map[string]any)

	d := &Descriptor{
		Slug:           slug,
		Name:           name,
		Module:         module,
		Class:          class,
		Description:    strings.TrimSpace(toString(raw["description"])),
		Commands:       stringList(raw["commands"]),
		Exports:        stringList(raw["exports"]),
		Keywords:       stringList(raw["keywords"]),
		Enabled:        enabled,
		Instructions:   readInstructions(dir, raw),
		InitArgs:       resolveList(raw["init_args"]),
		InitKwargs:     initKwargs,
		RequiredConfig: stringList(raw["required_config"]),
		OptionalConfig: stringList(raw["optional_config"]),
		Raw:            raw,
	}
	return d, nil
}

// resolveImplementationRef returns the (module, class) pair for a skill,
// inferring omitted halves by convention when the directory carries a
// conventional implementation file.
func resolveImplementationRef(dir string, raw map[string]any, slug string) (string, string) {
	module := strings.TrimSpace(toString(raw["module"]))
	class := strings.TrimSpace(toString(raw["class"]))

	if module != "" && class != "" {
		return module, class
	}

	if _, err := os.Stat(filepath.Join(dir, ConventionFile)); err != nil {
		// No conventional implementation to fall back on.
		return module, class
	}

	if module == "" {
		module = "skills/" + filepath.Base(dir) + "/service"
	}
	if class == "" {
		class = inferClassName(slug)
	}
	logs.Info("[skill:loader] %s missing explicit module/class, using %s.%s", slug, module, class)
	return module, class
}

func readInstructions(dir string, raw map[string]any) string {
	file := strings.TrimSpace(toString(raw["instructions_file"]))
	if file == "" {
		file = defaultInstructionsFile
	}
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
