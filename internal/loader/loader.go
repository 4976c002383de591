// Package loader fetches an app manifest and mirrors the files it lists into
// a per-source cache directory.
//
// A Session is single use: it runs once from IDLE to COMPLETE or ERROR and
// every further Load fails with ErrSessionReuse. Work inside a session is
// strictly sequential and a Session must not be shared between goroutines.
package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultHTTPTimeout = 30 * time.Second

// Options tune a Session. The zero value is usable.
type Options struct {
	HTTPClient   *http.Client
	ManifestName string
}

// Session is one attempt to fetch a manifest and synchronize its files.
type Session struct {
	client       *http.Client
	manifestName string

	cacheRoot string
	sourceURI string

	state       State
	manifest    *Manifest
	manifestURI *url.URL
	loaded      []string
	err         error
}

// New creates an idle session that caches sourceURI under cacheRoot.
func New(cacheRoot, sourceURI string, opts Options) *Session {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	name := opts.ManifestName
	if name == "" {
		name = ManifestName
	}
	return &Session{
		client:       client,
		manifestName: name,
		cacheRoot:    cacheRoot,
		sourceURI:    sourceURI,
		state:        StateIdle,
	}
}

// Load fetches the manifest and downloads every listed file. It returns true
// only when the session ends COMPLETE with all files loaded; Err describes
// the failure otherwise.
func (s *Session) Load(ctx context.Context) bool {
	if err := s.fetchManifest(ctx); err != nil {
		log.Error().Str("source_uri", s.sourceURI).Err(err).Msg("load failed")
		return false
	}
	if err := s.synchronize(ctx); err != nil {
		log.Error().Str("source_uri", s.sourceURI).Err(err).Msg("load failed")
		return false
	}
	if s.state == StateError {
		return false
	}
	if err := s.transition(StateComplete); err != nil {
		_ = s.fail(err)
		return false
	}
	log.Info().Str("source_uri", s.sourceURI).Int("files", len(s.loaded)).Msg("app loaded")
	return true
}

func (s *Session) transition(next State) error {
	if !s.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.state, next)
	}
	s.state = next
	return nil
}

// fail records err and moves the session to ERROR. An IDLE session has not
// started, so it keeps its state and the illegal move is reported with err.
func (s *Session) fail(err error) error {
	if terr := s.transition(StateError); terr != nil {
		err = errors.Join(terr, err)
	}
	s.err = err
	return err
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Err returns the error that put the session into ERROR, if any.
func (s *Session) Err() error { return s.err }

func (s *Session) SourceURI() string { return s.sourceURI }

// ManifestURI returns the resolved manifest location once it has been fetched.
func (s *Session) ManifestURI() string {
	if s.manifestURI == nil {
		return ""
	}
	return s.manifestURI.String()
}

// Manifest returns a copy of the fetched manifest.
func (s *Session) Manifest() (Manifest, bool) {
	if s.manifest == nil {
		return Manifest{}, false
	}
	return s.manifest.Clone(), true
}

// Title returns the manifest title, or "" before the manifest is fetched.
func (s *Session) Title() string {
	if s.manifest == nil {
		return ""
	}
	return s.manifest.Title
}

// Loaded returns the files written so far, in completion order.
func (s *Session) Loaded() []string { return slices.Clone(s.loaded) }

// BaseDir returns the absolute cache directory for the session's source.
func (s *Session) BaseDir() string {
	dir := BaseDir(s.cacheRoot, s.sourceURI)
	abs, err := filepath.Abs(dir)
	if err != nil {
		log.Warn().Str("dir", dir).Err(err).Msg("could not resolve base dir")
		return dir
	}
	return abs
}

// EntryPointPath returns the absolute local path of the manifest entry point,
// or "" before the manifest is fetched.
func (s *Session) EntryPointPath() string {
	if s.manifest == nil {
		return ""
	}
	p, err := localPath(s.BaseDir(), s.manifest.EntryPoint)
	if err != nil {
		// an empty entrypoint points at the base directory itself
		return s.BaseDir()
	}
	return p
}
