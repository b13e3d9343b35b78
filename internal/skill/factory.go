package skill

import (
	"fmt"
	"sync"

	"github.com/edisonhq/edison/internal/pkg/logs"
)

// Constructor builds a concrete service instance from the descriptor's
// construction parameters.
type Constructor func(args []any, kwargs map[string]any) (any, error)

// registration holds one compiled-in implementation. Commands, when set at
// registration time, acts as the module-level marker list consulted by
// capability discovery and metadata sync.
type registration struct {
	ctor     Constructor
	commands []string
}

// Factory maps implementation references to constructors. Go has no dynamic
// import, so skill packages register themselves here, keyed by the same
// (module, class) pair their metadata declares.
type Factory struct {
	entries map[string]registration
	mu      sync.RWMutex
}

func NewFactory() *Factory {
	return &Factory{
		entries: make(map[string]registration, 16),
	}
}

func refKey(module, class string) string {
	return module + "." + class
}

// RegisterOpt customizes a service registration.
type RegisterOpt func(*registration)

// WithCommands attaches a module-level marker list to the registration.
// Discovery treats it as ground truth ahead of descriptor declarations.
func WithCommands(commands ...string) RegisterOpt {
	return func(r *registration) {
		r.commands = commands
	}
}

func (f *Factory) Register(module, class string, ctor Constructor, opts ...RegisterOpt) error {
	if ctor == nil {
		return fmt.Errorf("constructor cannot be nil")
	}
	if module == "" || class == "" {
		return fmt.Errorf("module and class are required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := refKey(module, class)
	if _, exists := f.entries[key]; exists {
		return fmt.Errorf("service already registered: %s", key)
	}

	f.entries[key] = registration{ctor: ctor, commands: opts2commands(opts)}
	logs.Debug("[skill:factory] registered service: %s", key)
	return nil
}

func opts2commands(opts []RegisterOpt) []string {
	var r registration
	for _, opt := range opts {
		opt(&r)
	}
	return r.commands
}

func (f *Factory) lookup(module, class string) (registration, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	reg, ok := f.entries[refKey(module, class)]
	return reg, ok
}

// markerCommands returns the module-level marker list for a reference, or
// nil when the implementation registered none.
func (f *Factory) markerCommands(module, class string) []string {
	reg, ok := f.lookup(module, class)
	if !ok {
		return nil
	}
	return reg.commands
}

// construct builds one service instance, absorbing a panicking constructor
// into an error.
func (f *Factory) construct(d *Descriptor) (instance any, err error) {
	reg, ok := f.lookup(d.Module, d.Class)
	if !ok {
		return nil, fmt.Errorf("no implementation registered for %s.%s", d.Module, d.Class)
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = fmt.Errorf("constructor panicked: %v", r)
		}
	}()

	return reg.ctor(d.InitArgs, d.InitKwargs)
}

// instantiate constructs one service instance for an enabled descriptor.
// Every failure mode is absorbed here: one broken skill must not block the
// others, so the result is nil rather than an error the caller could
// mishandle.
func (f *Factory) instantiate(d *Descriptor) any {
	inst, err := f.construct(d)
	if err != nil {
		logs.Error("[skill:factory] failed to instantiate %s (%s): %v", d.Slug, d.Name, err)
		return nil
	}
	return inst
}

var defaultFactory = NewFactory()

// RegisterService adds an implementation to the process-wide factory.
// Skill packages call this from init.
func RegisterService(module, class string, ctor Constructor, opts ...RegisterOpt) error {
	return defaultFactory.Register(module, class, ctor, opts...)
}

// MustRegisterService is RegisterService that panics on conflict, for use in
// package init where a duplicate registration is a programming error.
func MustRegisterService(module, class string, ctor Constructor, opts ...RegisterOpt) {
	if err := defaultFactory.Register(module, class, ctor, opts...); err != nil {
		panic(err)
	}
}
