// Package registry materializes sample model input files on disk,
// from a local directory tree or a remote content-addressed store,
// and wraps the remaining external collaborators: archive download,
// the program version database, and the meson build system.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/joho/godotenv"

	devtools "github.com/wpbonelli/modflow-devtools"
)

// Registry is a collection of named model input files. A model is a
// named set of files; an example is an ordered set of models.
type Registry interface {
	// Files maps file names to local paths, fetched or not.
	Files() map[string]string
	// Models maps model names to their input file names.
	Models() map[string][]string
	// Examples maps example names to their model names.
	Examples() map[string][]string
	// Fetch materializes a named file locally and returns its path.
	Fetch(name string) (string, error)
	// CopyTo copies a model's input files into a workspace directory.
	CopyTo(workspace, modelName string) (string, error)
}

// LocalRegistry indexes models in a local directory tree. It lives
// only in memory: models are located by the presence of a namefile
// and indexed by their relative paths. Re-indexing the same path
// reloads it.
type LocalRegistry struct {
	files    map[string]string
	models   map[string][]string
	examples map[string][]string
}

var localExclude = []string{".DS_Store", "compare"}

func excluded(name string) bool {
	for _, e := range localExclude {
		if name == e {
			return true
		}
	}
	return false
}

// relToModel strips the model's directory prefix from an indexed file
// name, leaving the file's path inside the model.
func relToModel(modelName, fileName string) string {
	if modelName == "." {
		return fileName
	}
	return strings.TrimPrefix(fileName, modelName+"/")
}

func NewLocalRegistry() *LocalRegistry {
	return &LocalRegistry{
		files:    make(map[string]string),
		models:   make(map[string][]string),
		examples: make(map[string][]string),
	}
}

// Index adds models found under path to the registry. Models are
// identified by a namefile (e.g. mfsim.nam) at arbitrary depth. A
// prefix filters model directories inclusively.
func (r *LocalRegistry) Index(path, prefix, namefile string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("directory path not found: %s", path)
	}

	var modelPaths []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && excluded(info.Name()) {
			return filepath.SkipDir
		}
		if !info.IsDir() && info.Name() == namefile {
			dir := filepath.Dir(p)
			if prefix == "" || strings.HasPrefix(filepath.Base(dir), prefix) {
				modelPaths = append(modelPaths, dir)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(modelPaths)

	for _, modelPath := range modelPaths {
		rel, err := filepath.Rel(path, modelPath)
		if err != nil {
			return err
		}
		modelName := filepath.ToSlash(rel)
		r.models[modelName] = nil
		if parts := strings.Split(modelName, "/"); len(parts) > 1 {
			r.examples[parts[0]] = append(r.examples[parts[0]], modelName)
		}
		err = filepath.Walk(modelPath, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if excluded(info.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if excluded(info.Name()) {
				return nil
			}
			fileRel, err := filepath.Rel(path, p)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(fileRel)
			r.files[name] = p
			r.models[modelName] = append(r.models[modelName], name)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *LocalRegistry) Files() map[string]string      { return r.files }
func (r *LocalRegistry) Models() map[string][]string   { return r.models }
func (r *LocalRegistry) Examples() map[string][]string { return r.examples }

func (r *LocalRegistry) Fetch(name string) (string, error) {
	path, ok := r.files[name]
	if !ok {
		return "", fmt.Errorf("unknown file: %s", name)
	}
	return path, nil
}

// CopyTo copies the model's input files into the workspace, creating
// it if needed. Nested folders are preserved relative to the model
// directory.
func (r *LocalRegistry) CopyTo(workspace, modelName string) (string, error) {
	fileNames, ok := r.models[modelName]
	if !ok || len(fileNames) == 0 {
		return "", fmt.Errorf("unknown model: %s", modelName)
	}
	workspace, err := filepath.Abs(workspace)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return "", err
	}
	for _, name := range fileNames {
		src := r.files[name]
		rel := relToModel(modelName, name)
		dest := filepath.Join(workspace, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", err
		}
		if err := copyFile(src, dest); err != nil {
			return "", err
		}
	}
	return workspace, nil
}

// RemoteRegistry serves models from a remote content-addressed store.
// Its index is a TOML database mapping file names to hashes and URLs,
// grouping files by model and models by example; files are fetched
// on demand into a cache directory and verified against their hashes.
//
// The registry is constructed explicitly: base path, base URL, and an
// optional dotenv file naming a base URL override variable. There is
// no implicit global state.
type RemoteRegistry struct {
	path     string
	baseURL  string
	files    map[string]RemoteFile
	models   map[string][]string
	examples map[string][]string
	hashes   *lru.Cache[string, string]
	client   *http.Client
}

// RemoteFile is one entry of the registry database.
type RemoteFile struct {
	Hash string `toml:"hash,omitempty"`
	URL  string `toml:"url,omitempty"`
}

// remoteIndex is the on-disk TOML form of the registry database.
type remoteIndex struct {
	Files    map[string]RemoteFile `toml:"files"`
	Models   map[string][]string   `toml:"models"`
	Examples map[string][]string   `toml:"examples"`
}

// EnvBaseURL is the environment variable overriding the base URL.
const EnvBaseURL = "MF_REGISTRY_BASE_URL"

// NewRemoteRegistry opens a remote registry. indexPath is the TOML
// database; cachePath is where fetched files are stored; envFile, if
// nonempty, is a dotenv file consulted for a base URL override.
func NewRemoteRegistry(indexPath, cachePath, baseURL, envFile string) (*RemoteRegistry, error) {
	if envFile != "" && devtools.FileExists(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			return nil, err
		}
	}
	if override := os.Getenv(EnvBaseURL); override != "" {
		baseURL = override
	}

	var index remoteIndex
	if _, err := toml.DecodeFile(indexPath, &index); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cachePath, 0o755); err != nil {
		return nil, err
	}
	hashes, err := lru.New[string, string](1024)
	if err != nil {
		return nil, err
	}
	return &RemoteRegistry{
		path:     cachePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		files:    index.Files,
		models:   index.Models,
		examples: index.Examples,
		hashes:   hashes,
		client:   http.DefaultClient,
	}, nil
}

func (r *RemoteRegistry) Files() map[string]string {
	files := make(map[string]string, len(r.files))
	for name := range r.files {
		files[name] = filepath.Join(r.path, filepath.FromSlash(name))
	}
	return files
}

func (r *RemoteRegistry) Models() map[string][]string   { return r.models }
func (r *RemoteRegistry) Examples() map[string][]string { return r.examples }

// Fetch materializes a named file in the cache, downloading it if
// absent or if its hash does not match the registry.
func (r *RemoteRegistry) Fetch(name string) (string, error) {
	entry, ok := r.files[name]
	if !ok {
		return "", fmt.Errorf("unknown file: %s", name)
	}
	local := filepath.Join(r.path, filepath.FromSlash(name))
	if devtools.FileExists(local) {
		hash, err := r.fileHash(local)
		if err == nil && (entry.Hash == "" || hash == entry.Hash) {
			return local, nil
		}
	}

	url := entry.URL
	if url == "" {
		url = r.baseURL + "/" + name
	}
	if err := r.download(url, local); err != nil {
		return "", err
	}
	r.hashes.Remove(local)
	if entry.Hash != "" {
		hash, err := r.fileHash(local)
		if err != nil {
			return "", err
		}
		if hash != entry.Hash {
			return "", fmt.Errorf("hash mismatch for %s: expected %s, got %s", name, entry.Hash, hash)
		}
	}
	return local, nil
}

// CopyTo fetches a model's input files and copies them into the
// workspace directory.
func (r *RemoteRegistry) CopyTo(workspace, modelName string) (string, error) {
	fileNames, ok := r.models[modelName]
	if !ok || len(fileNames) == 0 {
		return "", fmt.Errorf("unknown model: %s", modelName)
	}
	workspace, err := filepath.Abs(workspace)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return "", err
	}
	for _, name := range fileNames {
		local, err := r.Fetch(name)
		if err != nil {
			return "", err
		}
		rel := relToModel(modelName, name)
		dest := filepath.Join(workspace, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", err
		}
		if err := copyFile(local, dest); err != nil {
			return "", err
		}
	}
	return workspace, nil
}

func (r *RemoteRegistry) download(url, dest string) error {
	devtools.Debug("Fetching ", url)
	resp, err := r.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot fetch %s: %s", url, resp.Status)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

// fileHash computes the SHA-256 of a file, memoized per path until
// the file is re-downloaded.
func (r *RemoteRegistry) fileHash(path string) (string, error) {
	if hash, ok := r.hashes.Get(path); ok {
		return hash, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	hash := hex.EncodeToString(h.Sum(nil))
	r.hashes.Add(path, hash)
	return hash, nil
}

// SaveIndex writes a registry database in the TOML form consumed by
// NewRemoteRegistry, from a local registry's index.
func SaveIndex(r Registry, baseURL string, w io.Writer) error {
	index := remoteIndex{
		Files:    make(map[string]RemoteFile),
		Models:   r.Models(),
		Examples: r.Examples(),
	}
	for name, path := range r.Files() {
		entry := RemoteFile{}
		if devtools.FileExists(path) {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			h := sha256.New()
			_, err = io.Copy(h, f)
			f.Close()
			if err != nil {
				return err
			}
			entry.Hash = hex.EncodeToString(h.Sum(nil))
		}
		if baseURL != "" {
			entry.URL = strings.TrimSuffix(baseURL, "/") + "/" + name
		}
		index.Files[name] = entry
	}
	return toml.NewEncoder(w).Encode(index)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
