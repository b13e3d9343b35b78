package skill

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bytedance/sonic"
)

func readMetadata(t *testing.T, root, dir string) map[string]any {
	t.Helper()
	payload, err := os.ReadFile(filepath.Join(root, dir, MetadataFile))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var raw map[string]any
	if err := sonic.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("parse metadata: %v", err)
	}
	return raw
}

func TestSyncMetadata_RewritesStaleCommands(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "news", map[string]any{
		"module": "test/news", "class": "NewsStub",
		"commands":     []any{"OldName"},
		"status_label": "News API",
	}, nil)

	f := newTestFactory(t)

	res := f.SyncMetadata(root, false, false)
	if !reflect.DeepEqual(res.Updated, []string{"news"}) {
		t.Fatalf("updated: %v (skipped %v, failed %v)", res.Updated, res.Skipped, res.Failed)
	}

	raw := readMetadata(t, root, "news")
	if got := stringList(raw["commands"]); !reflect.DeepEqual(got, []string{"GetNews"}) {
		t.Errorf("rewritten commands: %v", got)
	}
	if raw["status_label"] != "News API" {
		t.Errorf("unrelated field lost: %v", raw["status_label"])
	}

	// A second run finds nothing to change.
	res = f.SyncMetadata(root, false, false)
	if len(res.Updated) != 0 || !reflect.DeepEqual(res.Skipped, []string{"news"}) {
		t.Errorf("second run should skip: %+v", res)
	}
}

func TestSyncMetadata_OnlyMissing(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "curated", map[string]any{
		"module": "test/news", "class": "NewsStub",
		"commands": []any{"HandPicked"},
	}, nil)
	writeSkillDir(t, root, "fresh", map[string]any{
		"module": "test/weather", "class": "WeatherStub",
	}, nil)

	res := newTestFactory(t).SyncMetadata(root, true, false)
	if !reflect.DeepEqual(res.Updated, []string{"fresh"}) {
		t.Errorf("updated: %v", res.Updated)
	}
	if !reflect.DeepEqual(res.Skipped, []string{"curated"}) {
		t.Errorf("skipped: %v", res.Skipped)
	}

	raw := readMetadata(t, root, "curated")
	if got := stringList(raw["commands"]); !reflect.DeepEqual(got, []string{"HandPicked"}) {
		t.Errorf("curated list must survive: %v", got)
	}
}

func TestSyncMetadata_DryRun(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "news", map[string]any{
		"module": "test/news", "class": "NewsStub",
		"commands": []any{"OldName"},
	}, nil)

	res := newTestFactory(t).SyncMetadata(root, false, true)
	if !reflect.DeepEqual(res.Updated, []string{"news"}) {
		t.Fatalf("dry run should still report the change: %+v", res)
	}

	raw := readMetadata(t, root, "news")
	if got := stringList(raw["commands"]); !reflect.DeepEqual(got, []string{"OldName"}) {
		t.Errorf("dry run must not write: %v", got)
	}
}

func TestSyncMetadata_FailureBuckets(t *testing.T) {
	root := t.TempDir()
	// Unparseable document.
	if err := os.MkdirAll(filepath.Join(root, "broken"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "broken", MetadataFile), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Unresolvable implementation reference.
	writeSkillDir(t, root, "dangling", map[string]any{"name": "Dangling"}, nil)
	// Constructor refuses.
	writeSkillDir(t, root, "failing", map[string]any{
		"module": "test/failing", "class": "FailingStub",
	}, nil)
	// No metadata at all.
	if err := os.MkdirAll(filepath.Join(root, "scratch"), 0o755); err != nil {
		t.Fatal(err)
	}

	res := newTestFactory(t).SyncMetadata(root, false, false)
	if !reflect.DeepEqual(res.Failed, []string{"broken", "dangling", "failing"}) {
		t.Errorf("failed: %v", res.Failed)
	}
	if !reflect.DeepEqual(res.Skipped, []string{"scratch"}) {
		t.Errorf("skipped: %v", res.Skipped)
	}
	if len(res.Updated) != 0 {
		t.Errorf("updated: %v", res.Updated)
	}
}

// Sync trusts markers over reflection and never echoes back the declared
// list it is correcting.
func TestSyncMetadata_MarkerIsGroundTruth(t *testing.T) {
	root := t.TempDir()
	writeSkillDir(t, root, "marked", map[string]any{
		"module": "test/marked", "class": "MarkedStub",
		"commands": []any{"Beta", "Stale"},
	}, nil)

	f := NewFactory()
	registerMarked(t, f)

	res := f.SyncMetadata(root, false, false)
	if !reflect.DeepEqual(res.Updated, []string{"marked"}) {
		t.Fatalf("updated: %+v", res)
	}
	raw := readMetadata(t, root, "marked")
	if got := stringList(raw["commands"]); !reflect.DeepEqual(got, []string{"Alpha"}) {
		t.Errorf("marker should be the written list: %v", got)
	}
}
