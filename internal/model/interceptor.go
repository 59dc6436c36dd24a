package model

import "reflect"

// Hook is a callback run synchronously on the calling goroutine immediately
// before or after an intercepted method executes. Hooks receive the identity
// of the intercepted method. A hook must be cheap and must not block; the
// interceptor guarantees a panicking hook never unwinds into the host call.
type Hook func(subject Subject)

// MethodHandle is a resolved, installable reference to a concrete method.
// Target holds a pointer to the func variable that backs the method, as
// produced by a Resolver.
type MethodHandle struct {
	Subject Subject
	Target  reflect.Value
}

// Interceptor installs and removes pre/post hooks around resolved methods.
// Uninstalling a handle that is not installed is a no-op.
type Interceptor interface {
	Install(handle MethodHandle, pre, post Hook) error
	Uninstall(handle MethodHandle) error
}

// Resolver maps a (type name, method name, parameter types) triple to an
// installable MethodHandle. Missing or mismatched methods are reported as
// errors, never as nil handles.
type Resolver interface {
	Resolve(typeName, method string, paramTypes []string) (MethodHandle, error)
}
