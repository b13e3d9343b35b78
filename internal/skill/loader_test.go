package skill

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bytedance/sonic"
)

// writeSkillDir creates one skill directory under root with the given
// metadata document. extra maps file names to contents for convention and
// instructions files.
func writeSkillDir(t *testing.T, root, dir string, meta map[string]any, extra map[string]string) {
	t.Helper()

	path := filepath.Join(root, dir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}

	if meta != nil {
		data, err := sonic.MarshalIndent(meta, "", "  ")
		if err != nil {
			t.Fatalf("encode metadata: %v", err)
		}
		if err := os.WriteFile(filepath.Join(path, MetadataFile), data, 0o644); err != nil {
			t.Fatalf("write metadata: %v", err)
		}
	}

	for name, content := range extra {
		if err := os.WriteFile(filepath.Join(path, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestLoadDescriptors_ConventionResolution(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "info_search", map[string]any{
		"description": "finds things",
	}, map[string]string{
		ConventionFile: "package service\n",
	})

	set := LoadDescriptors(root)
	if set.Len() != 1 {
		t.Fatalf("want 1 descriptor, got %d", set.Len())
	}

	d := set.Get("info_search")
	if d == nil {
		t.Fatal("descriptor for info_search missing")
	}
	if d.Module != "skills/info_search/service" {
		t.Errorf("inferred module: got %q", d.Module)
	}
	if d.Class != "InfoSearchService" {
		t.Errorf("inferred class: got %q", d.Class)
	}
	if d.Name != "Info Search" {
		t.Errorf("default name: got %q", d.Name)
	}
	if !d.Enabled {
		t.Error("enabled should default to true")
	}
}

func TestLoadDescriptors_MissingRefIsSkipped(t *testing.T) {
	root := t.TempDir()
	// No service.go and no explicit module/class: invalid.
	writeSkillDir(t, root, "ghost", map[string]any{"description": "no impl"}, nil)
	// Explicit halves survive without a convention file.
	writeSkillDir(t, root, "explicit", map[string]any{
		"module": "custom/mod",
		"class":  "CustomService",
	}, nil)

	set := LoadDescriptors(root)
	if set.Len() != 1 {
		t.Fatalf("want 1 descriptor, got %d: %v", set.Len(), set.Slugs())
	}
	if set.Get("explicit") == nil {
		t.Error("explicit skill should load")
	}
}

func TestLoadDescriptors_BrokenMetadataSkipsOnlyThatSkill(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "broken", nil, map[string]string{
		MetadataFile: "{not json",
	})
	writeSkillDir(t, root, "fine", map[string]any{
		"module": "m", "class": "C",
	}, nil)
	// Scratch directory without metadata is silently ignored.
	writeSkillDir(t, root, "scratch", nil, map[string]string{"notes.txt": "wip"})

	set := LoadDescriptors(root)
	if !reflect.DeepEqual(set.Slugs(), []string{"fine"}) {
		t.Fatalf("want [fine], got %v", set.Slugs())
	}
}

func TestLoadDescriptors_SlugOverrideAndDuplicates(t *testing.T) {
	root := t.TempDir()
	// Two directories declaring the same slug: the later directory wins,
	// the first-seen position is kept.
	writeSkillDir(t, root, "a_first", map[string]any{
		"slug": "dup", "module": "m1", "class": "C1",
	}, nil)
	writeSkillDir(t, root, "b_other", map[string]any{
		"module": "m2", "class": "C2",
	}, nil)
	writeSkillDir(t, root, "c_second", map[string]any{
		"slug": "dup", "module": "m3", "class": "C3",
	}, nil)

	set := LoadDescriptors(root)
	if !reflect.DeepEqual(set.Slugs(), []string{"dup", "b_other"}) {
		t.Fatalf("order: got %v", set.Slugs())
	}
	if got := set.Get("dup").Module; got != "m3" {
		t.Errorf("last definition should win, got module %q", got)
	}
}

func TestLoadDescriptors_FieldParsing(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "rich", map[string]any{
		"slug":            "rich",
		"name":            "Rich Skill",
		"module":          "m",
		"class":           "C",
		"description":     "  padded  ",
		"commands":        []any{"One", "Two"},
		"exports":         "Solo",
		"keywords":        []any{"kw"},
		"enabled":         false,
		"init_args":       []any{"a", float64(2)},
		"init_kwargs":     map[string]any{"k": "v"},
		"required_config": []any{"KEY_A"},
		"optional_config": []any{"KEY_B"},
		"status_label":    "Rich API",
	}, map[string]string{
		"instructions.md": "  use me well  \n",
	})

	d := LoadDescriptors(root).Get("rich")
	if d == nil {
		t.Fatal("rich descriptor missing")
	}
	if d.Description != "padded" {
		t.Errorf("description: got %q", d.Description)
	}
	if !reflect.DeepEqual(d.Commands, []string{"One", "Two"}) {
		t.Errorf("commands: got %v", d.Commands)
	}
	// A scalar export is promoted to a single-element list.
	if !reflect.DeepEqual(d.Exports, []string{"Solo"}) {
		t.Errorf("exports: got %v", d.Exports)
	}
	if d.Enabled {
		t.Error("enabled should parse false")
	}
	if d.Instructions != "use me well" {
		t.Errorf("instructions: got %q", d.Instructions)
	}
	if d.InitKwargs["k"] != "v" {
		t.Errorf("init_kwargs: got %v", d.InitKwargs)
	}
	if d.StatusLabel() != "Rich API" {
		t.Errorf("status label: got %q", d.StatusLabel())
	}
}

func TestLoadDescriptors_MissingRoot(t *testing.T) {
	set := LoadDescriptors(filepath.Join(t.TempDir(), "nope"))
	if set.Len() != 0 {
		t.Fatalf("want empty set, got %d", set.Len())
	}
}

func TestInferClassName(t *testing.T) {
	cases := map[string]string{
		"weather":     "WeatherService",
		"info_search": "InfoSearchService",
		"to-do":       "ToDoService",
		"":            "Service",
	}
	for slug, want := range cases {
		if got := inferClassName(slug); got != want {
			t.Errorf("inferClassName(%q) = %q, want %q", slug, got, want)
		}
	}
}
