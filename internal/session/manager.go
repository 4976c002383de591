package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"flint/internal/launch"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Result is what a finished load hands back to the manager.
type Result struct {
	Launch launch.Request
	Files  []string
}

// LoadFunc runs one loader session for sourceURI.
type LoadFunc func(ctx context.Context, sourceURI string) (Result, error)

// Manager keeps launch sessions in memory, runs their loads in the
// background and persists every state change.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*Record
	cacheDir   string
	httpClient *http.Client
	semaphore  chan struct{}
	dirLocks   *keyedMutex // one load per cache directory at a time
	load       LoadFunc
	launcher   launch.Launcher
	workersWG  sync.WaitGroup
	baseCtx    context.Context
	store      Store
}

func NewManager(opts Options) *Manager {
	if opts.MaxConcurrentSessions <= 0 {
		opts.MaxConcurrentSessions = defaultMaxConcurrent
	}
	if opts.CacheDir == "" {
		opts.CacheDir = "cache"
	}
	if opts.Launcher == nil {
		opts.Launcher = launch.LogLauncher{}
	}
	m := &Manager{
		sessions:   make(map[string]*Record),
		cacheDir:   opts.CacheDir,
		httpClient: opts.HTTPClient,
		semaphore:  make(chan struct{}, opts.MaxConcurrentSessions),
		dirLocks:   newKeyedMutex(),
		launcher:   opts.Launcher,
		baseCtx:    context.Background(),
		store:      NewFileStore(opts.DataDir),
	}
	m.load = m.runLoader
	return m
}

// IsBusy reports whether every worker slot is taken.
func (m *Manager) IsBusy() bool {
	return len(m.semaphore) >= cap(m.semaphore)
}

// CreateSession validates sourceURI, records a pending session and starts
// loading it in the background.
func (m *Manager) CreateSession(sourceURI string) (Record, error) {
	sourceURI = strings.TrimSpace(sourceURI)
	if err := validateSource(sourceURI); err != nil {
		return Record{}, err
	}

	rec := &Record{
		ID:        uuid.NewString(),
		SourceURI: sourceURI,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.sessions[rec.ID] = rec
	snap := rec.snapshot()
	m.mu.Unlock()

	if err := m.persist(rec); err != nil { // best-effort
		log.Warn().Str("session_id", rec.ID).Err(err).Msg("persist session failed")
	}

	// Take a slot synchronously when one is free so IsBusy reflects the new
	// worker immediately; otherwise the worker waits for a slot.
	slotAcquired := false
	select {
	case m.semaphore <- struct{}{}:
		slotAcquired = true
	default:
	}
	m.workersWG.Add(1)
	go func() {
		defer m.workersWG.Done()
		m.startLoading(rec.ID, slotAcquired)
	}()

	return snap, nil
}

func validateSource(sourceURI string) error {
	if sourceURI == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSource)
	}
	u, err := url.Parse(sourceURI)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidSource)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidSource)
	}
	return nil
}

// GetSession returns a snapshot of the session by ID.
func (m *Manager) GetSession(id string) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[id]
	if !ok {
		return Record{}, false
	}
	return rec.snapshot(), true
}

// ListSessions returns snapshots of all sessions, newest first.
func (m *Manager) ListSessions() []Record {
	m.mu.RLock()
	out := make([]Record, 0, len(m.sessions))
	for _, rec := range m.sessions {
		out = append(out, rec.snapshot())
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// SetBaseContext sets the context every background load runs under.
// Intended to be set at process startup and cancelled during shutdown.
func (m *Manager) SetBaseContext(ctx context.Context) {
	m.mu.Lock()
	m.baseCtx = ctx
	m.mu.Unlock()
}

// WaitAll blocks until all in-flight workers finish or the context is done.
// Returns true if all workers finished, false if timed out.
func (m *Manager) WaitAll(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		m.workersWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

// UseLoader allows tests to inject a fake loader.
// Not safe for concurrent mutation with running sessions; intended for test setup only.
func (m *Manager) UseLoader(fn LoadFunc) {
	m.mu.Lock()
	m.load = fn
	m.mu.Unlock()
}

func (m *Manager) persist(rec *Record) error {
	m.mu.RLock()
	snap := rec.snapshot()
	m.mu.RUnlock()
	return m.store.SaveSession(context.Background(), &snap) //nolint:wrapcheck
}
