package profiler

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/t1a2l/SkyTools/internal/alerter"
	"github.com/t1a2l/SkyTools/internal/config"
	"github.com/t1a2l/SkyTools/internal/factory"
	"github.com/t1a2l/SkyTools/internal/hook"
	"github.com/t1a2l/SkyTools/internal/model"
	"github.com/t1a2l/SkyTools/internal/notification"
	_ "github.com/t1a2l/SkyTools/internal/report" // Registers the snapshot writers
	"github.com/t1a2l/SkyTools/internal/telemetry"
)

// MinWindowSize is the smallest sample window that still produces
// meaningful medians and averages under sampling noise.
const MinWindowSize = 16

// ErrWindowTooSmall is returned by New when the configured window size is
// below MinWindowSize.
var ErrWindowTooSmall = errors.New("window size too small")

// ErrRunning is returned when the tracked subject set is mutated while the
// session is applied.
var ErrRunning = errors.New("profiler is running")

// Profiler is the public lifecycle facade of the telemetry engine. It
// resolves subjects to interceptable methods, owns the interception session
// whose hooks feed the sample registry, and periodically aggregates the
// buffers into snapshot rounds.
type Profiler struct {
	registry *telemetry.Registry
	resolver model.Resolver
	session  *hook.Session
	writers  []model.Writer
	alerter  *alerter.Alerter
	interval time.Duration
	now      func() time.Time

	// Entry timestamps for in-flight calls, keyed by subject. Hook entry
	// and exit touch this map under one short critical section.
	entryMu sync.Mutex
	entries map[model.Subject]time.Time

	mu       sync.Mutex
	subjects []model.Subject
	running  bool
	done     chan struct{}
	loopWg   sync.WaitGroup
}

// New creates a Profiler from the configuration. The resolver and
// interceptor are the host-facing capabilities the profiler measures
// through.
func New(cfg *config.Config, resolver model.Resolver, interceptor model.Interceptor) (*Profiler, error) {
	if cfg.Profiler.WindowSize < MinWindowSize {
		return nil, fmt.Errorf("invalid configuration: %w: %d < %d", ErrWindowTooSmall, cfg.Profiler.WindowSize, MinWindowSize)
	}

	var interval time.Duration
	if cfg.Profiler.SnapshotInterval != "" {
		var err error
		interval, err = time.ParseDuration(cfg.Profiler.SnapshotInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot_interval: %w", err)
		}
	}

	var alertr *alerter.Alerter
	if cfg.Alerter.Enabled {
		var notifier model.Notifier
		if cfg.SMTP.Host != "" { // Simple check to see if email is configured
			notifier = notification.NewEmailNotifier(cfg.SMTP)
		}
		if notifier != nil {
			alertr = alerter.NewAlerter(&cfg.Alerter, notifier)
			log.Println("Alerter enabled and initialized.")
		} else {
			log.Println("Alerter is enabled in config, but no notifiers are configured. Alerter will not run.")
		}
	}

	return &Profiler{
		registry: telemetry.NewRegistry(cfg.Profiler.WindowSize),
		resolver: resolver,
		session:  hook.NewSession(interceptor),
		writers:  factory.CreateWriters(cfg),
		alerter:  alertr,
		interval: interval,
		now:      time.Now,
		entries:  make(map[model.Subject]time.Time),
	}, nil
}

// Track resolves one subject and adds a timing registration for it to the
// pending session. A resolution failure is reported to the caller and
// logged; it does not affect subjects that are already tracked. Track must
// not be called while the profiler is running.
func (p *Profiler) Track(typeName, method string, paramTypes []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrRunning
	}

	handle, err := p.resolver.Resolve(typeName, method, paramTypes)
	if err != nil {
		log.Printf("Warning: cannot track %s.%s: %v", typeName, method, err)
		return err
	}

	reg, err := hook.NewRegistration(handle, p.preHook, p.postHook)
	if err != nil {
		return err
	}

	p.session.Add(reg)
	p.subjects = append(p.subjects, handle.Subject)
	log.Printf("Tracking %s", handle.Subject)
	return nil
}

// preHook records the entry timestamp for an intercepted call.
func (p *Profiler) preHook(subject model.Subject) {
	now := p.now()
	p.entryMu.Lock()
	p.entries[subject] = now
	p.entryMu.Unlock()
}

// postHook computes the elapsed time for an intercepted call and records it.
// A missing entry (re-entrant call, or tracking started mid-call) or a
// non-positive elapsed time drops the sample silently; corrupt samples are
// never recorded and their absence never interrupts collection.
func (p *Profiler) postHook(subject model.Subject) {
	now := p.now()
	p.entryMu.Lock()
	entry, ok := p.entries[subject]
	if ok {
		delete(p.entries, subject)
	}
	p.entryMu.Unlock()

	if !ok {
		return
	}
	elapsed := now.Sub(entry)
	if elapsed <= 0 {
		return
	}
	p.registry.RecordSample(subject, elapsed)
}

// Start clears previously collected samples and history, applies the
// interception session and launches the periodic snapshotter. Starting an
// already-running profiler is a no-op.
func (p *Profiler) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	p.registry.ClearAll()
	p.registry.ClearHistory()
	p.entryMu.Lock()
	p.entries = make(map[model.Subject]time.Time)
	p.entryMu.Unlock()

	installed := p.session.Apply()
	log.Printf("Profiler started, session %s with %d of %d hooks installed", p.session.ID(), installed, p.session.Len())

	p.running = true
	p.done = make(chan struct{})
	if p.interval > 0 {
		p.loopWg.Add(1)
		go p.runSnapshotter(p.done)
	}
	return nil
}

// Stop reverts the interception session. After Stop returns, no further
// samples for this session can be recorded. Calling Stop when the profiler
// was never started is a no-op.
func (p *Profiler) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}

	close(p.done)
	p.loopWg.Wait()
	p.session.Revert()
	p.running = false
	log.Println("Profiler stopped.")
}

// Running reports whether the session is currently applied.
func (p *Profiler) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// MakeSnapshot aggregates every subject's current window into one round and
// appends it to the history. The host should call this at a steady cadence
// correlated with the window size so each round reflects a full window.
func (p *Profiler) MakeSnapshot() model.Round {
	return p.registry.MakeSnapshotRound()
}

// runSnapshotter takes a round every interval and fans it out to the
// configured writers and the alerter. A final round is taken on shutdown.
func (p *Profiler) runSnapshotter(done <-chan struct{}) {
	defer p.loopWg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.snapshotAndPublish()
		case <-done:
			p.snapshotAndPublish()
			return
		}
	}
}

func (p *Profiler) snapshotAndPublish() {
	round := p.registry.MakeSnapshotRound()
	timestamp := p.now().Format("2006-01-02_15-04-05")

	for _, writer := range p.writers {
		if err := writer.Write(round, timestamp); err != nil {
			log.Printf("Error writing snapshot round: %v", err)
		}
	}
	if p.alerter != nil {
		p.alerter.Evaluate(round)
	}
}

// Subjects returns the tracked subjects in tracking order.
func (p *Profiler) Subjects() []model.Subject {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Subject, len(p.subjects))
	copy(out, p.subjects)
	return out
}

// SessionID returns the unique identifier of the interception session.
func (p *Profiler) SessionID() string {
	return p.session.ID()
}

// Dump renders the accumulated snapshot history as delimited text: a header
// row of subject names, a column row, then one line per round. Columns
// follow tracking order so the header lines up with the data. When no
// subject was ever tracked a "no data" report is produced instead of an
// empty one.
func (p *Profiler) Dump() string {
	subjects := p.Subjects()
	if len(subjects) == 0 {
		return "No performance data was collected.\n"
	}

	var b strings.Builder
	for _, subject := range subjects {
		b.WriteString(subject.String())
		b.WriteString(";;;")
	}
	b.WriteString("\n")
	for range subjects {
		b.WriteString("Count;Average;Median;")
	}
	b.WriteString("\n")
	b.WriteString(p.registry.Dump(subjects))
	return b.String()
}
