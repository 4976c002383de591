package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"
)

const maxManifestBytes = 4 << 20

// Manifest describes an app: its title, the file to start it from and every
// file that has to be present locally, in download order.
type Manifest struct {
	Title      string   `json:"title"`
	EntryPoint string   `json:"entrypoint"`
	Files      []string `json:"files"`
}

// Clone returns a deep copy so callers cannot mutate a session's manifest.
func (m Manifest) Clone() Manifest {
	m.Files = slices.Clone(m.Files)
	return m
}

func (m Manifest) validate() error {
	if m.EntryPoint != "" && !filepath.IsLocal(filepath.FromSlash(m.EntryPoint)) {
		return fmt.Errorf("entrypoint %q is not a relative path", m.EntryPoint)
	}
	seen := make(map[string]int, len(m.Files))
	for i, f := range m.Files {
		if f == "" {
			return fmt.Errorf("files[%d] is empty", i)
		}
		key := path.Clean(f)
		if first, ok := seen[key]; ok {
			return fmt.Errorf("files[%d] duplicates files[%d] %q", i, first, f)
		}
		seen[key] = i
	}
	return nil
}

// DecodeManifest parses a manifest document. The body must be exactly one
// JSON object; unknown fields are ignored.
func DecodeManifest(r io.Reader) (Manifest, error) {
	dec := json.NewDecoder(io.LimitReader(r, maxManifestBytes))
	var m *Manifest
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if m == nil {
		return Manifest{}, errors.New("decode manifest: document is null")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Manifest{}, errors.New("decode manifest: unexpected data after manifest object")
	}
	if err := m.validate(); err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest: %w", err)
	}
	return *m, nil
}

// fetchManifest moves the session out of IDLE and retrieves its manifest.
// Any failure leaves the session in ERROR without a manifest.
func (s *Session) fetchManifest(ctx context.Context) error {
	log.Info().Str("source_uri", s.sourceURI).Msg("fetching manifest")

	if s.state != StateIdle {
		return s.fail(fmt.Errorf("%w: session is %s", ErrSessionReuse, s.state))
	}
	if err := s.transition(StateFetchingManifest); err != nil {
		return s.fail(err)
	}

	manifestURI, err := ResolveManifestURI(s.sourceURI, s.manifestName)
	if err != nil {
		return s.fail(fmt.Errorf("%w: %w", ErrManifest, err))
	}

	m, err := s.getManifest(ctx, manifestURI.String())
	if err != nil {
		return s.fail(fmt.Errorf("%w: %w", ErrManifest, err))
	}

	s.manifest = &m
	s.manifestURI = manifestURI
	log.Info().
		Str("source_uri", s.sourceURI).
		Str("manifest_uri", manifestURI.String()).
		Str("title", m.Title).
		Int("files", len(m.Files)).
		Msg("manifest fetched")
	return nil
}

func (s *Session) getManifest(ctx context.Context, manifestURI string) (Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURI, nil)
	if err != nil {
		return Manifest{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Manifest{}, errors.New("http " + resp.Status)
	}
	return DecodeManifest(resp.Body)
}
