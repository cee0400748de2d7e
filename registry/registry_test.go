package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(test *testing.T, path, content string) {
	test.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		test.Fatalf("%v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		test.Fatalf("%v", err)
	}
}

func TestLocalRegistryIndex(test *testing.T) {
	dir := test.TempDir()
	writeTestFile(test, filepath.Join(dir, "ex-gwf-csub", "mfsim.nam"), "BEGIN options\nEND options\n")
	writeTestFile(test, filepath.Join(dir, "ex-gwf-csub", "csub.dis"), "BEGIN dimensions\nEND dimensions\n")
	writeTestFile(test, filepath.Join(dir, "ex-gwf-csub", "compare", "ignored.txt"), "x")
	writeTestFile(test, filepath.Join(dir, "ex-gwf-csub", "compare", "mfsim.nam"), "comparison output")
	writeTestFile(test, filepath.Join(dir, "notamodel", "readme.txt"), "no namefile here")

	r := NewLocalRegistry()
	if err := r.Index(dir, "", "mfsim.nam"); err != nil {
		test.Fatalf("%v", err)
	}

	models := r.Models()
	files, ok := models["ex-gwf-csub"]
	if !ok {
		test.Errorf("model not indexed: %v", models)
		return
	}
	if len(files) != 2 {
		test.Errorf("expected 2 model files, got %v", files)
	}
	if _, ok := models["notamodel"]; ok {
		test.Errorf("directory without a namefile should not be a model")
	}
	if _, ok := models["ex-gwf-csub/compare"]; ok {
		test.Errorf("namefile inside an excluded directory should not make a model")
	}
	for name := range r.Files() {
		if strings.Contains(name, "compare") {
			test.Errorf("excluded directory contents were indexed: %s", name)
		}
	}
	for _, name := range files {
		if _, err := r.Fetch(name); err != nil {
			test.Errorf("%v", err)
		}
	}
}

func TestLocalRegistryPrefix(test *testing.T) {
	dir := test.TempDir()
	writeTestFile(test, filepath.Join(dir, "ex-gwf-csub", "mfsim.nam"), "")
	writeTestFile(test, filepath.Join(dir, "ex-gwe-ates", "mfsim.nam"), "")

	r := NewLocalRegistry()
	if err := r.Index(dir, "ex-gwe", "mfsim.nam"); err != nil {
		test.Fatalf("%v", err)
	}
	models := r.Models()
	if len(models) != 1 {
		test.Errorf("prefix filter failed: %v", models)
	}
	if _, ok := models["ex-gwe-ates"]; !ok {
		test.Errorf("expected ex-gwe-ates, got %v", models)
	}
}

func TestLocalRegistryCopyTo(test *testing.T) {
	dir := test.TempDir()
	writeTestFile(test, filepath.Join(dir, "ex-gwf-csub", "mfsim.nam"), "simulation")
	writeTestFile(test, filepath.Join(dir, "ex-gwf-csub", "inner", "csub.obs"), "observations")

	r := NewLocalRegistry()
	if err := r.Index(dir, "", "mfsim.nam"); err != nil {
		test.Fatalf("%v", err)
	}
	workspace := filepath.Join(test.TempDir(), "workspace")
	if _, err := r.CopyTo(workspace, "ex-gwf-csub"); err != nil {
		test.Fatalf("%v", err)
	}

	content, err := os.ReadFile(filepath.Join(workspace, "mfsim.nam"))
	if err != nil || string(content) != "simulation" {
		test.Errorf("namefile not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workspace, "inner", "csub.obs")); err != nil {
		test.Errorf("nested file not copied: %v", err)
	}
	// nothing escapes the workspace
	if _, err := os.Stat(filepath.Join(filepath.Dir(workspace), "mfsim.nam")); err == nil {
		test.Errorf("file copied outside the workspace")
	}

	if _, err := r.CopyTo(workspace, "bogus"); err == nil {
		test.Errorf("expected an error for an unknown model")
	}
}

func TestRemoteRegistryCopyTo(test *testing.T) {
	cache := test.TempDir()
	writeTestFile(test, filepath.Join(cache, "ex-gwf-csub", "mfsim.nam"), "simulation")
	writeTestFile(test, filepath.Join(cache, "ex-gwf-csub", "inner", "csub.obs"), "observations")

	index := filepath.Join(test.TempDir(), "registry.toml")
	writeTestFile(test, index, `[files."ex-gwf-csub/inner/csub.obs"]
[files."ex-gwf-csub/mfsim.nam"]

[models]
"ex-gwf-csub" = ["ex-gwf-csub/inner/csub.obs", "ex-gwf-csub/mfsim.nam"]
`)

	r, err := NewRemoteRegistry(index, cache, "https://example.com/data", "")
	if err != nil {
		test.Fatalf("%v", err)
	}
	workspace := filepath.Join(test.TempDir(), "workspace")
	if _, err := r.CopyTo(workspace, "ex-gwf-csub"); err != nil {
		test.Fatalf("%v", err)
	}
	content, err := os.ReadFile(filepath.Join(workspace, "mfsim.nam"))
	if err != nil || string(content) != "simulation" {
		test.Errorf("namefile not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workspace, "inner", "csub.obs")); err != nil {
		test.Errorf("nested file not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(workspace), "mfsim.nam")); err == nil {
		test.Errorf("file copied outside the workspace")
	}
}

func TestRemoteRegistryFetchCached(test *testing.T) {
	cache := test.TempDir()
	content := "BEGIN options\nEND options\n"
	writeTestFile(test, filepath.Join(cache, "ex-gwf-csub", "mfsim.nam"), content)
	sum := sha256.Sum256([]byte(content))

	index := filepath.Join(test.TempDir(), "registry.toml")
	writeTestFile(test, index, `[files."ex-gwf-csub/mfsim.nam"]
hash = "`+hex.EncodeToString(sum[:])+`"

[models]
"ex-gwf-csub" = ["ex-gwf-csub/mfsim.nam"]
`)

	r, err := NewRemoteRegistry(index, cache, "https://example.com/data", "")
	if err != nil {
		test.Fatalf("%v", err)
	}
	// the file is already cached with a matching hash, so no network
	// access happens
	local, err := r.Fetch("ex-gwf-csub/mfsim.nam")
	if err != nil {
		test.Fatalf("%v", err)
	}
	got, err := os.ReadFile(local)
	if err != nil || string(got) != content {
		test.Errorf("bad fetched file: %v", err)
	}

	if _, err := r.Fetch("bogus"); err == nil {
		test.Errorf("expected an error for an unknown file")
	}
}

func TestRemoteRegistryBaseURLOverride(test *testing.T) {
	index := filepath.Join(test.TempDir(), "registry.toml")
	writeTestFile(test, index, "[files]\n")
	envFile := filepath.Join(test.TempDir(), ".env")
	writeTestFile(test, envFile, EnvBaseURL+"=https://mirror.example.com\n")
	defer os.Unsetenv(EnvBaseURL)

	r, err := NewRemoteRegistry(index, test.TempDir(), "https://example.com/data", envFile)
	if err != nil {
		test.Fatalf("%v", err)
	}
	if r.baseURL != "https://mirror.example.com" {
		test.Errorf("base URL override not applied: %q", r.baseURL)
	}
}
