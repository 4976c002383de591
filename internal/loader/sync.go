package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	fileutil "flint/internal/file"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// synchronize downloads the manifest files in order and stops at the first
// failure. Files already loaded are never requested again.
func (s *Session) synchronize(ctx context.Context) error {
	if s.manifest == nil {
		return s.fail(fmt.Errorf("%w: synchronize without a manifest", ErrIllegalTransition))
	}
	for len(s.loaded) != len(s.manifest.Files) && s.state != StateError {
		if err := s.loadNextFile(ctx); err != nil {
			return err
		}
	}
	return s.err
}

func (s *Session) loadNextFile(ctx context.Context) error {
	rel := s.manifest.Files[len(s.loaded)]
	remote, err := s.fileURI(rel)
	if err != nil {
		return s.fail(fmt.Errorf("%w %q: %w", ErrDownload, rel, err))
	}
	log.Debug().Str("path", rel).Str("uri", remote).Msg("loading file")

	dest, err := localPath(s.BaseDir(), rel)
	if err != nil {
		return s.fail(fmt.Errorf("%w %q: %w", ErrMaterialize, rel, err))
	}
	if err := fileutil.EnsureDir(filepath.Dir(dest)); err != nil {
		return s.fail(fmt.Errorf("%w %q: %w", ErrMaterialize, rel, err))
	}

	sink, err := openDestination(dest)
	if err != nil {
		return s.fail(fmt.Errorf("%w %q: %w", ErrOpenDestination, rel, err))
	}
	tmpName := sink.Name()

	written, err := s.download(ctx, remote, sink)
	if closeErr := sink.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close destination: %w", closeErr)
	}
	if err == nil {
		err = fileutil.Replace(tmpName, dest)
	}
	if err != nil {
		// only the temp file is ours; dest may belong to an earlier load
		_ = os.Remove(tmpName)
		return s.fail(fmt.Errorf("%w %q: %w", ErrDownload, rel, err))
	}

	s.loaded = append(s.loaded, rel)
	log.Info().
		Str("path", rel).
		Str("uri", remote).
		Str("size", humanize.Bytes(uint64(written))). //nolint:gosec // io.Copy never returns a negative count
		Msg("file loaded")
	return nil
}

// openDestination opens a temp file next to dest. The body is renamed over
// dest only after a complete download.
func openDestination(dest string) (*os.File, error) {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", dest)
	}
	return fileutil.CreateTemp(filepath.Dir(dest))
}

// fileURI resolves a manifest-relative reference against the manifest
// location, which may differ from the source URI the session was created
// with. The entry is parsed as a URI reference, so escapes and queries are
// sent as written.
func (s *Session) fileURI(rel string) (string, error) {
	ref, err := url.Parse(rel)
	if err != nil {
		return "", fmt.Errorf("parse file reference: %w", err)
	}
	if ref.Scheme != "" || ref.Host != "" {
		return "", fmt.Errorf("file reference %q is not relative", rel)
	}
	return s.manifestURI.ResolveReference(ref).String(), nil
}

func (s *Session) download(ctx context.Context, remote string, sink io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errors.New("http " + resp.Status)
	}
	n, err := io.Copy(sink, resp.Body)
	if err != nil {
		return n, fmt.Errorf("stream body: %w", err)
	}
	return n, nil
}
