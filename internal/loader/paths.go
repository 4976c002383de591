package loader

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
)

// ManifestName is the file name that identifies an app manifest.
const ManifestName = "flint.json"

// BaseDir returns the per-source cache directory under cacheRoot. The
// directory name is the URL-safe base64 form of sourceURI, so distinct sources
// never share a directory and the name never contains a path separator.
func BaseDir(cacheRoot, sourceURI string) string {
	return filepath.Join(cacheRoot, base64.URLEncoding.EncodeToString([]byte(sourceURI)))
}

// SourceFromBaseDir recovers the source URI a base directory was derived from.
func SourceFromBaseDir(dir string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(filepath.Base(dir))
	if err != nil {
		return "", fmt.Errorf("decode base dir: %w", err)
	}
	return string(raw), nil
}

// ResolveManifestURI returns sourceURI itself when its last path segment is
// name, otherwise name resolved against sourceURI's directory.
func ResolveManifestURI(sourceURI, name string) (*url.URL, error) {
	if name == "" {
		name = ManifestName
	}
	u, err := url.Parse(sourceURI)
	if err != nil {
		return nil, fmt.Errorf("parse source uri: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("source uri %q is not absolute", sourceURI)
	}
	if u.Path != "" && path.Base(u.Path) == name {
		return u, nil
	}
	return u.ResolveReference(&url.URL{Path: name}), nil
}

// localPath maps a manifest-relative path into baseDir. Paths that are empty,
// absolute or climb out of baseDir are rejected.
func localPath(baseDir, rel string) (string, error) {
	native := filepath.FromSlash(rel)
	if !filepath.IsLocal(native) {
		return "", fmt.Errorf("path %q escapes the base directory", rel)
	}
	return filepath.Join(baseDir, native), nil
}
