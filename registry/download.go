package registry

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	devtools "github.com/wpbonelli/modflow-devtools"
)

// DownloadAndUnzip downloads a zip archive and extracts it under
// outdir, returning outdir. Entries escaping the output directory are
// rejected.
func DownloadAndUnzip(url, outdir string) (string, error) {
	outdir, err := filepath.Abs(outdir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return "", err
	}

	devtools.Debug("Downloading ", url)
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cannot download %s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp("", "download-*.zip")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	_, err = io.Copy(tmp, resp.Body)
	tmp.Close()
	if err != nil {
		return "", err
	}

	if err := unzip(tmp.Name(), outdir); err != nil {
		return "", err
	}
	return outdir, nil
}

func unzip(archive, outdir string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()
	for _, f := range zr.File {
		dest := filepath.Join(outdir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(dest, outdir+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes output directory: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(dest)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		out.Close()
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// FetchDfns fetches definition files from a MODFLOW 6 repository
// archive at the given ref and copies them into outdir.
func FetchDfns(owner, repo, ref, outdir string) error {
	url := fmt.Sprintf("https://github.com/%s/%s/archive/%s.zip", owner, repo, ref)
	tmp, err := os.MkdirTemp("", "modflow6-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	dlPath, err := DownloadAndUnzip(url, tmp)
	if err != nil {
		return err
	}
	matches, err := filepath.Glob(filepath.Join(dlPath, "modflow6-*"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("missing project directory in %s", dlPath)
	}
	dfnDir := filepath.Join(matches[0], "doc", "mf6io", "mf6ivar", "dfn")
	return copyTree(dfnDir, outdir)
}

func copyTree(src, dest string) error {
	return filepath.Walk(src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(p, target)
	})
}
