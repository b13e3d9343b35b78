package skill

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// Test services covering the discovery tiers.

type weatherStub struct{}

func (s *weatherStub) GetWeather(city string) string {
	return "sunny in " + city
}

type newsStub struct {
	calls int
}

func (s *newsStub) GetNews() string {
	s.calls++
	return "headlines"
}

func (s *newsStub) helper() string { //nolint:unused
	return "not reachable by name"
}

type flakyStub struct{}

func (s *flakyStub) GetNews() (string, error) {
	return "", errors.New("upstream down")
}

func (s *flakyStub) Explode() string {
	panic("boom")
}

// newTestFactory builds a factory with the test services registered under
// their metadata references.
func newTestFactory(t *testing.T) *Factory {
	t.Helper()

	f := NewFactory()
	mustRegister := func(module, class string, ctor Constructor, opts ...RegisterOpt) {
		if err := f.Register(module, class, ctor, opts...); err != nil {
			t.Fatalf("register %s.%s: %v", module, class, err)
		}
	}
	mustRegister("test/weather", "WeatherStub", func(args []any, kwargs map[string]any) (any, error) {
		return &weatherStub{}, nil
	})
	mustRegister("test/news", "NewsStub", func(args []any, kwargs map[string]any) (any, error) {
		return &newsStub{}, nil
	})
	mustRegister("test/flaky", "FlakyStub", func(args []any, kwargs map[string]any) (any, error) {
		return &flakyStub{}, nil
	})
	mustRegister("test/failing", "FailingStub", func(args []any, kwargs map[string]any) (any, error) {
		return nil, fmt.Errorf("constructor refused")
	})
	return f
}

func newTestRegistry(t *testing.T, root string) *Registry {
	t.Helper()
	return NewRegistry(root, newTestFactory(t))
}

// The canonical three-skill scenario: one declaring commands, one relying on
// reflection, one referencing a missing implementation.
func TestRegistry_Scenario(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "weather", map[string]any{
		"module": "test/weather", "class": "WeatherStub",
		"commands": []any{"GetWeather"},
	}, nil)
	writeSkillDir(t, root, "news", map[string]any{
		"module": "test/news", "class": "NewsStub",
	}, nil)
	writeSkillDir(t, root, "broken", map[string]any{
		"module": "test/missing", "class": "NoSuchService",
	}, nil)

	reg := newTestRegistry(t, root)

	if got := reg.Descriptors().Len(); got != 3 {
		t.Fatalf("descriptor cache size: got %d, want 3", got)
	}
	if got := reg.InstanceSlugs(); !reflect.DeepEqual(got, []string{"news", "weather"}) {
		t.Fatalf("instance cache: got %v", got)
	}

	if got := reg.ExportedCommands("news", false); !reflect.DeepEqual(got, []string{"GetNews"}) {
		t.Errorf("news commands: got %v", got)
	}

	if got := reg.Invoke("broken", "Anything", nil, "N/A"); got != "N/A" {
		t.Errorf("invoking a broken skill: got %v, want N/A", got)
	}
}

// One deliberately failing constructor must leave the other skills intact.
func TestRegistry_ConstructionFailureIsolated(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "failing", map[string]any{
		"module": "test/failing", "class": "FailingStub",
	}, nil)
	writeSkillDir(t, root, "news", map[string]any{
		"module": "test/news", "class": "NewsStub",
	}, nil)
	writeSkillDir(t, root, "weather", map[string]any{
		"module": "test/weather", "class": "WeatherStub",
	}, nil)

	reg := newTestRegistry(t, root)

	if got := reg.InstanceSlugs(); !reflect.DeepEqual(got, []string{"news", "weather"}) {
		t.Fatalf("instance cache: got %v", got)
	}
	// The failing skill stays visible in the descriptor cache for tooling.
	if reg.Descriptor("failing") == nil {
		t.Error("failing skill should remain in the descriptor cache")
	}
}

func TestRegistry_DisabledSkillNotInstantiated(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "weather", map[string]any{
		"module": "test/weather", "class": "WeatherStub",
		"enabled": false,
	}, nil)

	reg := newTestRegistry(t, root)

	if reg.Descriptor("weather") == nil {
		t.Fatal("disabled skill should still be described")
	}
	if _, ok := reg.Instance("weather"); ok {
		t.Error("disabled skill must not be instantiated")
	}
}

func TestRegistry_BuildsOnce(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "weather", map[string]any{
		"module": "test/weather", "class": "WeatherStub",
	}, nil)

	reg := newTestRegistry(t, root)
	first := reg.Descriptors()

	// A descriptor added after the first build is invisible: the caches are
	// immutable for the process lifetime.
	writeSkillDir(t, root, "news", map[string]any{
		"module": "test/news", "class": "NewsStub",
	}, nil)

	if got := reg.Descriptors(); got != first || got.Len() != 1 {
		t.Fatalf("descriptor cache rebuilt: got %d entries", got.Len())
	}
}
