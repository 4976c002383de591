package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDirCreatesNested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s, err=%v", dir, err)
	}
	if err := EnsureDir(""); err == nil {
		t.Fatalf("expected error for empty dir path")
	}
}

func TestCreateTempAndReplace(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(name, []byte("previous content"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f, err := CreateTemp(dir)
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	if _, err := f.WriteString("new"); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = f.Close()

	// the old content stays visible until the replace
	got, _ := os.ReadFile(name)
	if string(got) != "previous content" {
		t.Fatalf("expected untouched content before replace, got %q", got)
	}
	if err := Replace(f.Name(), name); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ = os.ReadFile(name)
	if string(got) != "new" {
		t.Fatalf("expected replaced content, got %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be gone, got %d entries", len(entries))
	}
}

func TestCreateTempMissingDir(t *testing.T) {
	if _, err := CreateTemp(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error when dir is missing")
	}
}

func TestReplaceKeepsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.Mkdir(target, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := CreateTemp(dir)
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	_ = f.Close()

	if err := Replace(f.Name(), target); err == nil {
		t.Fatalf("expected error replacing a directory")
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		t.Fatalf("expected directory to survive, err=%v", err)
	}
}

func TestWriteJSONAtomic(t *testing.T) {
	name := filepath.Join(t.TempDir(), "nested", "status.json")
	in := map[string]string{"status": "ready"}
	if err := WriteJSONAtomic(name, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteJSONAtomic(name, map[string]string{"status": "failed"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["status"] != "failed" {
		t.Fatalf("expected overwritten value, got %v", out)
	}
	entries, _ := os.ReadDir(filepath.Dir(name))
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}
