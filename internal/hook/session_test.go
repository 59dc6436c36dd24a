package hook

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/t1a2l/SkyTools/internal/model"
)

// stubInterceptor tracks installed hooks without touching any real target.
type stubInterceptor struct {
	mu             sync.Mutex
	active         map[model.Subject]bool
	failInstall    map[model.Subject]bool
	failUninstall  map[model.Subject]bool
	installCalls   int
	uninstallCalls int
}

func newStubInterceptor() *stubInterceptor {
	return &stubInterceptor{
		active:        make(map[model.Subject]bool),
		failInstall:   make(map[model.Subject]bool),
		failUninstall: make(map[model.Subject]bool),
	}
}

func (s *stubInterceptor) Install(handle model.MethodHandle, pre, post model.Hook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installCalls++
	if s.failInstall[handle.Subject] {
		return errors.New("install rejected")
	}
	if s.active[handle.Subject] {
		return fmt.Errorf("hook for %s is already installed", handle.Subject)
	}
	s.active[handle.Subject] = true
	return nil
}

func (s *stubInterceptor) Uninstall(handle model.MethodHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uninstallCalls++
	if s.failUninstall[handle.Subject] {
		return errors.New("uninstall rejected")
	}
	delete(s.active, handle.Subject)
	return nil
}

func (s *stubInterceptor) activeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func testHandle(method string) model.MethodHandle {
	return model.MethodHandle{Subject: model.NewSubject("Simulation", method, nil)}
}

func noopHook(model.Subject) {}

func TestRegistrationRequiresAHook(t *testing.T) {
	if _, err := NewRegistration(testHandle("StepPhysics"), nil, nil); !errors.Is(err, ErrNoHooks) {
		t.Fatalf("expected ErrNoHooks, got %v", err)
	}
	if _, err := NewRegistration(testHandle("StepPhysics"), noopHook, nil); err != nil {
		t.Fatalf("pre-only registration should be valid, got %v", err)
	}
	if _, err := NewRegistration(testHandle("StepPhysics"), nil, noopHook); err != nil {
		t.Fatalf("post-only registration should be valid, got %v", err)
	}
}

func TestSessionApplyInstallsAll(t *testing.T) {
	interceptor := newStubInterceptor()
	session := NewSession(interceptor)
	if session.ID() == "" {
		t.Fatal("session must have an id")
	}

	for _, name := range []string{"StepPhysics", "RebuildPaths", "RenderOverlay"} {
		reg, err := NewRegistration(testHandle(name), noopHook, noopHook)
		if err != nil {
			t.Fatalf("failed to build registration: %v", err)
		}
		session.Add(reg)
	}

	if installed := session.Apply(); installed != 3 {
		t.Fatalf("expected 3 installed, got %d", installed)
	}
	if !session.Applied() {
		t.Fatal("session should report applied")
	}
	if interceptor.activeCount() != 3 {
		t.Fatalf("expected 3 active hooks, got %d", interceptor.activeCount())
	}
}

func TestSessionApplyIsIdempotent(t *testing.T) {
	interceptor := newStubInterceptor()
	session := NewSession(interceptor)

	reg, _ := NewRegistration(testHandle("StepPhysics"), noopHook, noopHook)
	session.Add(reg)

	if installed := session.Apply(); installed != 1 {
		t.Fatalf("first apply: expected 1 installed, got %d", installed)
	}
	if installed := session.Apply(); installed != 1 {
		t.Fatalf("second apply: expected 1 installed, got %d", installed)
	}

	// The leading revert guarantees exactly one active hook, never two.
	if interceptor.activeCount() != 1 {
		t.Fatalf("expected exactly 1 active hook after double apply, got %d", interceptor.activeCount())
	}
}

func TestSessionBestEffortApply(t *testing.T) {
	interceptor := newStubInterceptor()
	session := NewSession(interceptor)

	second := testHandle("RebuildPaths")
	interceptor.failInstall[second.Subject] = true

	for _, h := range []model.MethodHandle{testHandle("StepPhysics"), second, testHandle("RenderOverlay")} {
		reg, _ := NewRegistration(h, noopHook, noopHook)
		session.Add(reg)
	}

	installed := session.Apply()
	if installed != 2 {
		t.Fatalf("expected 2 of 3 installed, got %d", installed)
	}
	if !session.Applied() {
		t.Fatal("session should still report applied after a partial failure")
	}
	if interceptor.active[second.Subject] {
		t.Fatal("failed registration must not be active")
	}
	if !interceptor.active[testHandle("StepPhysics").Subject] || !interceptor.active[testHandle("RenderOverlay").Subject] {
		t.Fatal("surviving registrations must be active")
	}
}

func TestSessionBestEffortRevert(t *testing.T) {
	interceptor := newStubInterceptor()
	session := NewSession(interceptor)

	first := testHandle("StepPhysics")
	interceptor.failUninstall[first.Subject] = true

	for _, h := range []model.MethodHandle{first, testHandle("RebuildPaths"), testHandle("RenderOverlay")} {
		reg, _ := NewRegistration(h, noopHook, noopHook)
		session.Add(reg)
	}

	session.Apply()
	session.Revert()

	if session.Applied() {
		t.Fatal("session should report reverted")
	}
	// The failing uninstall must not stop the remaining two.
	if interceptor.active[testHandle("RebuildPaths").Subject] || interceptor.active[testHandle("RenderOverlay").Subject] {
		t.Fatal("revert must attempt every registration despite failures")
	}
}

func TestSessionRevertWithoutApplyIsNoop(t *testing.T) {
	interceptor := newStubInterceptor()
	session := NewSession(interceptor)

	reg, _ := NewRegistration(testHandle("StepPhysics"), noopHook, noopHook)
	session.Add(reg)

	session.Revert()
	if interceptor.uninstallCalls != 0 {
		t.Fatalf("revert before apply must not call the interceptor, got %d calls", interceptor.uninstallCalls)
	}
}
