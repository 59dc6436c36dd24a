package hook

import (
	"errors"

	"github.com/t1a2l/SkyTools/internal/model"
)

// ErrNoHooks is returned when a registration is constructed with neither a
// pre-hook nor a post-hook.
var ErrNoHooks = errors.New("registration requires at least one hook")

// Registration pairs a resolved method with the hooks to run around it. A
// registration is owned by the session that applies it and must be reverted
// through that session before being discarded, or the target method stays
// redirected.
type Registration struct {
	Handle model.MethodHandle
	Pre    model.Hook
	Post   model.Hook
}

// NewRegistration builds a registration for the given handle. At least one
// of pre and post must be non-nil.
func NewRegistration(handle model.MethodHandle, pre, post model.Hook) (*Registration, error) {
	if pre == nil && post == nil {
		return nil, ErrNoHooks
	}
	return &Registration{Handle: handle, Pre: pre, Post: post}, nil
}
