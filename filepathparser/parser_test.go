package filepathparser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParsePath_AbsolutePath(t *testing.T) {
	absPath, _ := os.Getwd()
	result, err := ParsePath(absPath)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != absPath {
		t.Errorf("Expected %s, got %s", absPath, result)
	}
}

func TestParsePath_HomeDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	testPath := "~/testdir/file.txt"
	expected := filepath.Join(home, "testdir", "file.txt")
	result, err := ParsePath(testPath)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	absExpected, _ := filepath.Abs(expected)
	if result != absExpected {
		t.Errorf("Expected %s, got %s", absExpected, result)
	}
}

func TestParsePath_RelativePath(t *testing.T) {
	relPath := "some/relative/path.txt"
	result, err := ParsePath(relPath)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	absExpected, _ := filepath.Abs(relPath)
	if result != absExpected {
		t.Errorf("Expected %s, got %s", absExpected, result)
	}
}

func TestParsePath_EmptyPath(t *testing.T) {
	result, err := ParsePath("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	wd, _ := os.Getwd()
	if result != wd {
		t.Errorf("Expected %s, got %s", wd, result)
	}
}

func TestParsePath_EnvVar(t *testing.T) {
	t.Setenv("PREFLIGHT_TEST_DIR", "testdir")
	result, err := ParsePath("$PREFLIGHT_TEST_DIR/file.txt")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	absExpected, _ := filepath.Abs(filepath.Join("testdir", "file.txt"))
	if result != absExpected {
		t.Errorf("Expected %s, got %s", absExpected, result)
	}
}

func TestEnsureDir_CreatesNestedDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs", "preflight")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Expected directory to exist, got %v", err)
	}
	if !info.IsDir() {
		t.Errorf("Expected %s to be a directory", dir)
	}
}

func TestEnsureDir_ExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureDir(dir); err != nil {
		t.Errorf("Expected no error for existing directory, got %v", err)
	}
}
