package skill

import (
	"reflect"
	"testing"
)

type mapSource map[string]any

func (m mapSource) Value(key string) any { return m[key] }

func newConfigFixture(t *testing.T) *Registry {
	t.Helper()
	root := t.TempDir()
	writeSkillDir(t, root, "weather", map[string]any{
		"module": "test/weather", "class": "WeatherStub",
		"required_config": []any{"weather_api_key", " shared_key "},
		"optional_config": []any{"default_city"},
		"status_label":    "Weather API",
	}, nil)
	writeSkillDir(t, root, "news", map[string]any{
		"module": "test/news", "class": "NewsStub",
		"required_config": []any{"NEWS_API_KEY", "SHARED_KEY"},
	}, nil)
	writeSkillDir(t, root, "offline", map[string]any{
		"module": "test/flaky", "class": "FlakyStub",
		"enabled":         false,
		"required_config": []any{"OFFLINE_KEY"},
	}, nil)
	return newTestRegistry(t, root)
}

func TestConfigKeys_UnionUpperFirstSeen(t *testing.T) {
	reg := newConfigFixture(t)

	// Descriptor order follows directory name order: news, offline, weather.
	want := []string{"NEWS_API_KEY", "SHARED_KEY", "WEATHER_API_KEY"}
	if got := reg.RequiredConfigKeys(false); !reflect.DeepEqual(got, want) {
		t.Errorf("required keys: %v", got)
	}

	withDisabled := []string{"NEWS_API_KEY", "SHARED_KEY", "OFFLINE_KEY", "WEATHER_API_KEY"}
	if got := reg.RequiredConfigKeys(true); !reflect.DeepEqual(got, withDisabled) {
		t.Errorf("required keys with disabled: %v", got)
	}

	if got := reg.OptionalConfigKeys(false); !reflect.DeepEqual(got, []string{"DEFAULT_CITY"}) {
		t.Errorf("optional keys: %v", got)
	}
}

func TestAPIStatus(t *testing.T) {
	reg := newConfigFixture(t)

	src := mapSource{
		"WEATHER_API_KEY": "abc",
		"SHARED_KEY":      "xyz",
		"NEWS_API_KEY":    "   ", // blank counts as unset
	}

	// Without a status_label the line falls back to the skill's display
	// name, which the loader title-cases from the slug.
	want := []string{"News ❌", "Weather API ✅"}
	if got := reg.APIStatus(src, false); !reflect.DeepEqual(got, want) {
		t.Errorf("statuses: %v", got)
	}

	withDisabled := []string{"News ❌", "Offline ❌", "Weather API ✅"}
	if got := reg.APIStatus(src, true); !reflect.DeepEqual(got, withDisabled) {
		t.Errorf("statuses with disabled: %v", got)
	}
}

func TestStatusLabelFallback(t *testing.T) {
	cases := []struct {
		name string
		d    Descriptor
		want string
	}{
		{"explicit label", Descriptor{Slug: "news", Name: "News",
			Raw: map[string]any{"status_label": "News API"}}, "News API"},
		{"blank label falls to name", Descriptor{Slug: "news", Name: "News",
			Raw: map[string]any{"status_label": "  "}}, "News"},
		{"no label falls to name", Descriptor{Slug: "news", Name: "News"}, "News"},
		{"last resort slug", Descriptor{Slug: "news"}, "news"},
	}
	for _, tc := range cases {
		if got := tc.d.StatusLabel(); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestConfigValueSet(t *testing.T) {
	src := mapSource{"EMPTY": "", "ZERO": 0, "FALSE": false, "SET": "x"}

	cases := []struct {
		key  string
		want bool
	}{
		{"SET", true},
		{"EMPTY", false},
		{"MISSING", false},
		{"ZERO", true},
		{"FALSE", true},
		{"", false},
	}
	for _, tc := range cases {
		if got := configValueSet(src, tc.key); got != tc.want {
			t.Errorf("key %q: set=%v, want %v", tc.key, got, tc.want)
		}
	}
	if configValueSet(nil, "SET") {
		t.Error("nil source should never report set")
	}
}
