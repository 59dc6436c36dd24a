package hook

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/t1a2l/SkyTools/internal/model"
)

// SwapInterceptor redirects calls by swapping the function value behind a
// registered func variable for a wrapper that runs pre-hook, original body
// and post-hook in order. Go offers no safe instruction-level patching, so
// targets opt in by exposing the method as a func variable; installation and
// removal are then plain pointer-sized writes guarded by the interceptor's
// lock. The wrapper itself never panics into the host: hook panics are
// swallowed.
type SwapInterceptor struct {
	mu        sync.Mutex
	installed map[model.Subject]reflect.Value
}

// NewSwapInterceptor creates an interceptor with no installed hooks.
func NewSwapInterceptor() *SwapInterceptor {
	return &SwapInterceptor{installed: make(map[model.Subject]reflect.Value)}
}

// Install redirects the handle's target so the hooks run around the original
// function. Installing a handle that is already installed is an error; the
// session's apply path reverts first, so a duplicate indicates a bug.
func (i *SwapInterceptor) Install(handle model.MethodHandle, pre, post model.Hook) error {
	target := handle.Target
	if !target.IsValid() || target.Kind() != reflect.Ptr || target.Elem().Kind() != reflect.Func {
		return fmt.Errorf("handle for %s does not point at a func variable", handle.Subject)
	}
	if target.Elem().IsNil() {
		return fmt.Errorf("handle for %s points at a nil func", handle.Subject)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.installed[handle.Subject]; exists {
		return fmt.Errorf("hook for %s is already installed", handle.Subject)
	}

	// Capture the current function value, not the variable, so the wrapper
	// keeps calling the original after the swap.
	original := reflect.ValueOf(target.Elem().Interface())
	subject := handle.Subject

	wrapper := reflect.MakeFunc(original.Type(), func(args []reflect.Value) []reflect.Value {
		if pre != nil {
			runHook(pre, subject)
		}
		out := original.Call(args)
		if post != nil {
			runHook(post, subject)
		}
		return out
	})

	target.Elem().Set(wrapper)
	i.installed[subject] = original
	return nil
}

// Uninstall restores the original function value. Uninstalling a handle that
// is not installed is a no-op.
func (i *SwapInterceptor) Uninstall(handle model.MethodHandle) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	original, ok := i.installed[handle.Subject]
	if !ok {
		return nil
	}

	target := handle.Target
	if !target.IsValid() || target.Kind() != reflect.Ptr || target.Elem().Kind() != reflect.Func {
		return fmt.Errorf("handle for %s does not point at a func variable", handle.Subject)
	}

	target.Elem().Set(original)
	delete(i.installed, handle.Subject)
	return nil
}

// runHook shields the host call stack from a panicking hook. A failure
// inside a hook must never take down the caller of the intercepted method.
func runHook(h model.Hook, subject model.Subject) {
	defer func() {
		_ = recover()
	}()
	h(subject)
}
