package hook

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/t1a2l/SkyTools/internal/model"
)

// ErrSubjectNotFound is returned when a subject cannot be resolved to a
// registered method, either because no target is registered under the name
// or because the parameter signature does not match.
var ErrSubjectNotFound = errors.New("subject not found")

type targetKey struct {
	typeName string
	method   string
}

// RegistryResolver resolves subjects against an explicit set of
// instrumentable targets. The host registers each method it is willing to
// have intercepted as a pointer to a func variable; Resolve checks the
// requested parameter types against the variable's actual signature before
// handing out an installable handle.
type RegistryResolver struct {
	mu      sync.RWMutex
	targets map[targetKey]reflect.Value
}

// NewRegistryResolver creates an empty resolver.
func NewRegistryResolver() *RegistryResolver {
	return &RegistryResolver{targets: make(map[targetKey]reflect.Value)}
}

// Register exposes a method for interception. fnPtr must be a non-nil
// pointer to a func variable, e.g. Register("Simulation", "StepPhysics",
// &workload.StepPhysics). Registering the same (type, method) pair twice is
// an error.
func (r *RegistryResolver) Register(typeName, method string, fnPtr interface{}) error {
	if typeName == "" || method == "" {
		return fmt.Errorf("target requires a type name and a method name")
	}

	v := reflect.ValueOf(fnPtr)
	if !v.IsValid() || v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Func {
		return fmt.Errorf("target %s.%s must be a pointer to a func variable", typeName, method)
	}
	if v.Elem().IsNil() {
		return fmt.Errorf("target %s.%s points at a nil func", typeName, method)
	}

	key := targetKey{typeName: typeName, method: method}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.targets[key]; exists {
		return fmt.Errorf("target %s.%s is already registered", typeName, method)
	}
	r.targets[key] = v
	return nil
}

// Resolve looks up a registered target and verifies that its parameter
// types match the requested signature. The returned handle is valid until
// the resolver is discarded.
func (r *RegistryResolver) Resolve(typeName, method string, paramTypes []string) (model.MethodHandle, error) {
	r.mu.RLock()
	target, ok := r.targets[targetKey{typeName: typeName, method: method}]
	r.mu.RUnlock()

	if !ok {
		return model.MethodHandle{}, fmt.Errorf("%w: no target registered for %s.%s", ErrSubjectNotFound, typeName, method)
	}

	fnType := target.Elem().Type()
	if fnType.NumIn() != len(paramTypes) {
		return model.MethodHandle{}, fmt.Errorf("%w: %s.%s takes %d parameters, signature lists %d",
			ErrSubjectNotFound, typeName, method, fnType.NumIn(), len(paramTypes))
	}
	for i, want := range paramTypes {
		if got := fnType.In(i).String(); got != want {
			return model.MethodHandle{}, fmt.Errorf("%w: %s.%s parameter %d is %s, signature says %s",
				ErrSubjectNotFound, typeName, method, i, got, want)
		}
	}

	return model.MethodHandle{
		Subject: model.NewSubject(typeName, method, paramTypes),
		Target:  target,
	}, nil
}
