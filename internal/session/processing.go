package session

import (
	"context"
	"fmt"
	"time"

	"flint/internal/launch"
	"flint/internal/loader"

	"github.com/rs/zerolog/log"
)

// startLoading runs the load for one session. If slotAlreadyAcquired is
// false, the function acquires a slot first; the slot is released on return.
func (m *Manager) startLoading(id string, slotAlreadyAcquired bool) {
	if !slotAlreadyAcquired {
		m.semaphore <- struct{}{}
	}
	defer func() { <-m.semaphore }()

	m.mu.Lock()
	rec, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	rec.Status = StatusLoading
	loadFn := m.load
	ctx := m.baseCtx
	m.mu.Unlock()
	if err := m.persist(rec); err != nil {
		log.Warn().Str("session_id", id).Err(err).Msg("persist loading failed")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	unlock := m.dirLocks.Lock(loader.BaseDir(m.cacheDir, rec.SourceURI))
	res, err := loadFn(ctx, rec.SourceURI)
	unlock()
	if err != nil {
		m.failSession(rec, err)
		return
	}

	m.mu.Lock()
	rec.Title = res.Launch.Title
	rec.EntryPoint = res.Launch.EntryPoint
	rec.BaseDir = res.Launch.BaseDir
	rec.Files = res.Files
	m.mu.Unlock()

	if err := m.launcher.Launch(ctx, res.Launch); err != nil {
		m.failSession(rec, fmt.Errorf("launch: %w", err))
		return
	}

	m.mu.Lock()
	rec.Status = StatusReady
	finished := time.Now()
	rec.FinishedAt = &finished
	m.mu.Unlock()
	log.Info().Str("session_id", id).Str("title", res.Launch.Title).Int("files", len(res.Files)).Msg("session ready")
	if err := m.persist(rec); err != nil {
		log.Warn().Str("session_id", id).Err(err).Msg("persist final state failed")
	}
}

func (m *Manager) failSession(rec *Record, cause error) {
	m.mu.Lock()
	rec.Status = StatusFailed
	rec.Error = cause.Error()
	finished := time.Now()
	rec.FinishedAt = &finished
	id := rec.ID
	m.mu.Unlock()
	log.Warn().Str("session_id", id).Err(cause).Msg("session failed")
	if err := m.persist(rec); err != nil {
		log.Warn().Str("session_id", id).Err(err).Msg("persist failed state failed")
	}
}

// runLoader is the default LoadFunc: one fresh loader session per call.
func (m *Manager) runLoader(ctx context.Context, sourceURI string) (Result, error) {
	s := loader.New(m.cacheDir, sourceURI, loader.Options{HTTPClient: m.httpClient})
	if !s.Load(ctx) {
		return Result{}, s.Err()
	}
	return Result{
		Launch: launch.Request{
			Title:      s.Title(),
			EntryPoint: s.EntryPointPath(),
			BaseDir:    s.BaseDir(),
			SourceURI:  sourceURI,
		},
		Files: s.Loaded(),
	}, nil
}
