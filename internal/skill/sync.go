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

// metaJSON renders metadata documents with stable key order so a sync run
// is byte-for-byte reproducible.
var metaJSON = sonic.Config{SortMapKeys: true}.Froze()

// SyncResult reports, per skill directory, what a metadata sync did.
type SyncResult struct {
	Updated []string
	Skipped []string
	Failed  []string
}

// SyncMetadata reconciles each descriptor's declared command list against
// the implementation's actual commands and rewrites the metadata file when
// they differ. This is an offline maintenance operation: it is never called
// from the dispatch path.
//
// onlyMissing preserves hand-curated command lists; dryRun reports what
// would change without touching disk.
func (f *Factory) SyncMetadata(root string, onlyMissing, dryRun bool) SyncResult {
	var res SyncResult

	entries, err := os.ReadDir(root)
	if err != nil {
		logs.Warn("[skill:sync] skills directory unavailable: %s (%v)", root, err)
		return res
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		switch outcome := f.syncOne(filepath.Join(root, entry.Name()), entry.Name(), onlyMissing, dryRun); outcome {
		case syncUpdated:
			res.Updated = append(res.Updated, entry.Name())
		case syncSkipped:
			res.Skipped = append(res.Skipped, entry.Name())
		case syncFailed:
			res.Failed = append(res.Failed, entry.Name())
		}
	}
	return res
}

type syncOutcome int

const (
	syncUpdated syncOutcome = iota
	syncSkipped
	syncFailed
)

func (f *Factory) syncOne(dir, dirName string, onlyMissing, dryRun bool) syncOutcome {
	metaPath := filepath.Join(dir, MetadataFile)
	payload, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return syncSkipped
		}
		logs.Warn("[skill:sync] could not read metadata for %s: %v", dirName, err)
		return syncFailed
	}

	var raw map[string]any
	if err := sonic.Unmarshal(payload, &raw); err != nil {
		logs.Warn("[skill:sync] could not parse metadata for %s: %v", dirName, err)
		return syncFailed
	}

	slug := strings.TrimSpace(toString(raw["slug"]))
	if slug == "" {
		slug = dirName
	}

	module, class := resolveImplementationRef(dir, raw, slug)
	if module == "" || class == "" {
		return syncFailed
	}

	existing := stringList(raw["commands"])
	if onlyMissing && len(existing) > 0 {
		return syncSkipped
	}

	discovered, err := f.discoverCommands(&Descriptor{
		Slug:       slug,
		Module:     module,
		Class:      class,
		InitArgs:   resolveList(raw["init_args"]),
		InitKwargs: kwargs(raw),
	})
	if err != nil {
		logs.Warn("[skill:sync] could not discover commands for %s: %v", slug, err)
		return syncFailed
	}
	if len(discovered) == 0 {
		return syncSkipped
	}

	if equalStrings(existing, discovered) {
		return syncSkipped
	}

	raw["commands"] = discovered
	if !dryRun {
		if err := writeMetadata(metaPath, raw); err != nil {
			logs.Warn("[skill:sync] could not rewrite metadata for %s: %v", slug, err)
			return syncFailed
		}
	}
	return syncUpdated
}

// discoverCommands returns the implementation's ground-truth command list:
// the module-level marker when registered, then the type-level marker on a
// constructed instance, then reflective enumeration. Descriptor declarations
// are deliberately not consulted; they are what sync corrects.
func (f *Factory) discoverCommands(d *Descriptor) ([]string, error) {
	if marked := f.markerCommands(d.Module, d.Class); len(marked) > 0 {
		return sortedUnique(filterNames(marked, false)), nil
	}

	inst, err := f.construct(d)
	if err != nil {
		return nil, err
	}

	if lister, ok := inst.(CommandLister); ok {
		if marked := filterNames(lister.SkillCommands(), false); len(marked) > 0 {
			return sortedUnique(marked), nil
		}
	}

	return reflectMethodNames(inst), nil
}

func kwargs(raw map[string]any) map[string]any {
	kw, _ := raw["init_kwargs"].(map[string]any)
	return kw
}

func sortedUnique(names []string) []string {
	sort.Strings(names)
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// writeMetadata persists a metadata document atomically so a concurrently
// starting process never reads a half-written file.
func writeMetadata(path string, raw map[string]any) error {
	data, err := metaJSON.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".metadata-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// SyncMetadata runs a metadata sync against the process-wide factory.
func SyncMetadata(root string, onlyMissing, dryRun bool) SyncResult {
	return defaultFactory.SyncMetadata(root, onlyMissing, dryRun)
}
