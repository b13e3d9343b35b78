package skill

import (
	"strings"
	"sync"

	"github.com/edisonhq/edison/internal/pkg/logs"
)

// DefaultRoot is the conventional skills directory scanned when the host
// does not configure one.
const DefaultRoot = "skills"

// Registry owns the descriptor cache and the instance cache. Both are built
// exactly once, on first access, and are read-only afterward, so concurrent
// readers need no further locking.
type Registry struct {
	root    string
	factory *Factory

	once      sync.Once
	defs      *DescriptorSet
	instances map[string]any
	// instOrder preserves load order for the loaded instances so cascading
	// dispatch is deterministic.
	instOrder []string
}

func NewRegistry(root string, factory *Factory) *Registry {
	if strings.TrimSpace(root) == "" {
		root = DefaultRoot
	}
	if factory == nil {
		factory = defaultFactory
	}
	return &Registry{
		root:    root,
		factory: factory,
	}
}

func (r *Registry) ensure() {
	r.once.Do(r.build)
}

func (r *Registry) build() {
	r.defs = LoadDescriptors(r.root)
	r.instances = make(map[string]any, r.defs.Len())

	for _, d := range r.defs.All() {
		if !d.Enabled {
			continue
		}
		inst := r.factory.instantiate(d)
		if inst == nil {
			continue
		}
		r.instances[d.Slug] = inst
		r.instOrder = append(r.instOrder, d.Slug)
	}

	logs.Info("[skill:registry] loaded %d descriptors, %d live instances from %s",
		r.defs.Len(), len(r.instOrder), r.root)
}

// Root returns the skills directory this registry scans.
func (r *Registry) Root() string {
	return r.root
}

// Descriptors returns every loaded descriptor, disabled ones included.
func (r *Registry) Descriptors() *DescriptorSet {
	r.ensure()
	return r.defs
}

// Descriptor returns one descriptor, or nil when the slug is unknown.
func (r *Registry) Descriptor(slug string) *Descriptor {
	r.ensure()
	return r.defs.Get(slug)
}

// Instance returns the live service instance for a slug.
func (r *Registry) Instance(slug string) (any, bool) {
	r.ensure()
	inst, ok := r.instances[slug]
	return inst, ok
}

// InstanceSlugs returns the slugs of loaded instances in load order.
func (r *Registry) InstanceSlugs() []string {
	r.ensure()
	out := make([]string, len(r.instOrder))
	copy(out, r.instOrder)
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultRoot     = DefaultRoot
	defaultRootMu   sync.Mutex
)

// SetDefaultRoot points the process-wide registry at a skills directory.
// It must be called before the first access; later calls have no effect.
func SetDefaultRoot(root string) {
	defaultRootMu.Lock()
	defer defaultRootMu.Unlock()
	if strings.TrimSpace(root) != "" {
		defaultRoot = root
	}
}

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRootMu.Lock()
		root := defaultRoot
		defaultRootMu.Unlock()
		defaultRegistry = NewRegistry(root, defaultFactory)
	})
	return defaultRegistry
}
