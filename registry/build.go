package registry

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	devtools "github.com/wpbonelli/modflow-devtools"
)

// MesonBuild builds a meson project: setup, compile, install. The
// build directory is wiped and reconfigured if it already exists.
// Binaries and libraries are installed into binPath.
func MesonBuild(projectPath, buildPath, binPath string) error {
	projectPath, err := filepath.Abs(projectPath)
	if err != nil {
		return err
	}
	buildPath, err = filepath.Abs(buildPath)
	if err != nil {
		return err
	}
	binPath, err = filepath.Abs(binPath)
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	setup := []string{
		"setup",
		buildPath,
		"--bindir=" + binPath,
		"--libdir=" + binPath,
		"--prefix=" + cwd,
	}
	if info, err := os.Stat(buildPath); err == nil && info.IsDir() {
		setup = append(setup, "--wipe")
	}
	if err := runMeson(projectPath, setup...); err != nil {
		return err
	}
	if err := runMeson(projectPath, "compile", "-C", buildPath); err != nil {
		return err
	}
	return runMeson(projectPath, "install", "-C", buildPath)
}

func runMeson(dir string, args ...string) error {
	devtools.Debug("Running command: meson ", strings.Join(args, " "))
	cmd := exec.Command("meson", args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("meson %s failed: %v", args[0], err)
	}
	return nil
}
