package skill

import (
	"fmt"
	"reflect"

	"github.com/edisonhq/edison/internal/pkg/logs"
)

// CallOpt customizes a dispatch call.
type CallOpt func(*callOptions)

type callOptions struct {
	includePrivate bool
}

// IncludePrivate lets tooling reach underscore-prefixed names that the
// privacy filter would otherwise hide.
func IncludePrivate() CallOpt {
	return func(o *callOptions) {
		o.includePrivate = true
	}
}

func applyCallOpts(opts []CallOpt) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Invoke calls one exported method on one named skill. When the skill is
// not loaded, the method is not exported, or the call fails, the
// caller-supplied default is returned; no error ever escapes to the caller.
func (r *Registry) Invoke(slug, method string, args []any, def any, opts ...CallOpt) any {
	o := applyCallOpts(opts)

	m := r.resolveCallable(slug, method, o.includePrivate)
	if !m.IsValid() {
		return def
	}

	result, err := callGuarded(m, args)
	if err != nil {
		logs.Error("[skill:dispatch] failed to invoke %s.%s: %v", slug, method, err)
		return def
	}
	return result
}

// InvokeFirstAvailable tries method across every loaded skill in load order
// and returns the first usable result. A skill that fails is logged and
// treated as having no answer; if no skill produces a usable result the
// default is returned.
func (r *Registry) InvokeFirstAvailable(method string, args []any, def any, opts ...CallOpt) any {
	o := applyCallOpts(opts)

	for _, slug := range r.InstanceSlugs() {
		m := r.Exports(slug, o.includePrivate)[method]
		if !m.IsValid() {
			continue
		}

		result, err := callGuarded(m, args)
		if err != nil {
			logs.Error("[skill:dispatch] failed to invoke %s.%s: %v", slug, method, err)
			continue
		}
		if usable(result) {
			return result
		}
	}
	return def
}

// callGuarded performs one reflective call. A panicking skill is absorbed
// into an error, and a trailing non-nil error return counts as a failed
// call. The first non-error return value is the result.
func callGuarded(m reflect.Value, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	in, err := buildCallArgs(m.Type(), args)
	if err != nil {
		return nil, err
	}

	outs := m.Call(in)
	for _, out := range outs {
		if out.Type() == errType {
			if !out.IsNil() {
				return nil, out.Interface().(error)
			}
			continue
		}
		if result == nil {
			result = out.Interface()
		}
	}
	return result, nil
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// buildCallArgs adapts loosely typed dispatch arguments to the method's
// signature. Conversion is strictly assignable-or-convertible; anything else
// is a failed call, not a panic.
func buildCallArgs(mt reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := mt.NumIn()
	if mt.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("want at least %d args, got %d", fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("want %d args, got %d", fixed, len(args))
	}

	in := make([]reflect.Value, 0, len(args))
	for i, arg := range args {
		var want reflect.Type
		if i < fixed {
			want = mt.In(i)
		} else {
			want = mt.In(fixed).Elem()
		}

		v, err := adaptArg(arg, want)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		in = append(in, v)
	}
	return in, nil
}

func adaptArg(arg any, want reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(want), nil
		default:
			return reflect.Value{}, fmt.Errorf("nil is not a valid %s", want)
		}
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(want) {
		return v, nil
	}
	if v.Type().ConvertibleTo(want) {
		return v.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), want)
}

// usable reports whether a cascade result counts as an answer. Nil and
// empty strings, slices, and maps do not; zero numbers and false do.
func usable(result any) bool {
	if result == nil {
		return false
	}
	v := reflect.ValueOf(result)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !v.IsNil()
	default:
		return true
	}
}

// Invoke dispatches through the process-wide registry.
func Invoke(slug, method string, args []any, def any, opts ...CallOpt) any {
	return Default().Invoke(slug, method, args, def, opts...)
}

// InvokeFirstAvailable dispatches through the process-wide registry.
func InvokeFirstAvailable(method string, args []any, def any, opts ...CallOpt) any {
	return Default().InvokeFirstAvailable(method, args, def, opts...)
}
