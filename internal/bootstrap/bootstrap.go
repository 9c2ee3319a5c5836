// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bootstrap prepares the environment for the external WMT24 ESA
// converter and dispatches to it: validate the cache-home variable, make
// sure the pipx launcher and the uv runner exist (installing them when
// absent), then run the converter with its fixed argument set. The whole
// sequence is fail-fast; the first failing step aborts the run.
package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdiddy/esa-pipeline/pkg/types"
)

const (
	// DefaultCacheHomeVar names the environment variable the converter
	// tooling caches under.
	DefaultCacheHomeVar = "HF_HOME"

	// DefaultScript is the external converter handed to the runner tool.
	DefaultScript = "create_tsv_from_wmt24_esa.py"

	binLauncher = "pipx"
	binRunner   = "uv"

	// runnerPython pins the interpreter version for the converter run.
	runnerPython = "3.12"

	// Fixed converter arguments. The converter reads and writes in the
	// working directory; paths are not configurable here.
	converterInput  = "wmt24_esa.jsonl"
	converterOutput = "wmt24_esa.tsv"
)

// runnerDeps are the converter's own library dependencies, declared on the
// runner command line rather than installed into the environment.
var runnerDeps = []string{"pandas", "datasets"}

// executor abstracts process lookup and execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(name string, args ...string) error
}

// osExecutor runs real processes with inherited standard streams, so the
// converter's progress output reaches the terminal.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// CacheHome reads varName and validates it names an existing directory.
// An unset variable and a non-directory value are distinct configuration
// errors; both carry a remediation hint for the user.
func CacheHome(varName string) (string, error) {
	value, ok := os.LookupEnv(varName)
	if !ok || value == "" {
		return "", fmt.Errorf(
			"%s is not set; export %s=<cache-directory> before running", varName, varName)
	}
	info, err := os.Stat(value)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s=%s is not a directory", varName, value)
	}
	return value, nil
}

// Runner executes the bootstrap sequence.
type Runner struct {
	cfg  types.BootstrapConfig
	exec executor
	out  io.Writer

	// launcher is how the pipx launcher is invoked: ["pipx"] when it is
	// on PATH, ["python3", "-m", "pipx"] right after a fresh install.
	launcher []string
}

// New creates a Runner backed by real process execution. Progress lines
// go to w.
func New(cfg types.BootstrapConfig, w io.Writer) *Runner {
	return newRunner(cfg, osExecutor{}, w)
}

func newRunner(cfg types.BootstrapConfig, exec executor, w io.Writer) *Runner {
	if cfg.CacheHomeVar == "" {
		cfg.CacheHomeVar = DefaultCacheHomeVar
	}
	if cfg.ScriptPath == "" {
		cfg.ScriptPath = DefaultScript
	}
	return &Runner{cfg: cfg, exec: exec, out: w}
}

// Run performs the full sequence: cache-home validation, launcher and
// runner presence (with install on absence), converter dispatch. It stops
// at the first failing step and returns that step's error unwrapped enough
// for the caller to recover the child exit status.
func (r *Runner) Run() error {
	home, err := CacheHome(r.cfg.CacheHomeVar)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s=%s\n", r.cfg.CacheHomeVar, home)

	if err := r.ensureLauncher(); err != nil {
		return err
	}
	if err := r.ensureRunner(); err != nil {
		return err
	}
	return r.dispatch()
}

// ensureLauncher checks for pipx on PATH and installs it user-scoped when
// absent, registering its binaries directory for later invocations.
func (r *Runner) ensureLauncher() error {
	if _, err := r.exec.LookPath(binLauncher); err == nil {
		r.launcher = []string{binLauncher}
		return nil
	}

	fmt.Fprintf(r.out, "installing %s\n", binLauncher)
	if err := r.exec.Run("python3", "-m", "pip", "install", "--user", binLauncher); err != nil {
		return err
	}
	if err := r.exec.Run("python3", "-m", binLauncher, "ensurepath"); err != nil {
		return err
	}
	registerUserBinDir()

	// Freshly installed; the current PATH may not see it yet.
	r.launcher = []string{"python3", "-m", binLauncher}
	return nil
}

// ensureRunner checks for uv on PATH and installs it via the launcher
// when absent.
func (r *Runner) ensureRunner() error {
	if _, err := r.exec.LookPath(binRunner); err == nil {
		return nil
	}

	fmt.Fprintf(r.out, "installing %s\n", binRunner)
	args := append(r.launcher[1:], "install", binRunner)
	return r.exec.Run(r.launcher[0], args...)
}

// dispatch invokes the external converter through the runner with the
// pinned interpreter, the declared dependencies, and the fixed flags.
func (r *Runner) dispatch() error {
	args := []string{"run", "--python", runnerPython}
	for _, dep := range runnerDeps {
		args = append(args, "--with", dep)
	}
	args = append(args,
		r.cfg.ScriptPath,
		"--wmt24_esa_jsonl", converterInput,
		"--output_tsv", converterOutput,
		"--filter_data_with_invalid_span",
	)
	return r.exec.Run(binRunner, args...)
}

// registerUserBinDir appends ~/.local/bin to this process's PATH so the
// just-installed tools are visible to the remaining steps and inherited
// by the converter.
func registerUserBinDir() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	binDir := filepath.Join(home, ".local", "bin")
	path := os.Getenv("PATH")
	for _, p := range filepath.SplitList(path) {
		if p == binDir {
			return
		}
	}
	os.Setenv("PATH", path+string(os.PathListSeparator)+binDir)
}

// ExitCode maps a Run error to the process exit status: configuration
// errors are 1, a failing child propagates its own status, anything else
// is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() > 0 {
		return ee.ExitCode()
	}
	return 1
}

// CommandLine renders the converter invocation for display without running
// it.
func CommandLine(scriptPath string) string {
	if scriptPath == "" {
		scriptPath = DefaultScript
	}
	parts := []string{binRunner, "run", "--python", runnerPython}
	for _, dep := range runnerDeps {
		parts = append(parts, "--with", dep)
	}
	parts = append(parts,
		scriptPath,
		"--wmt24_esa_jsonl", converterInput,
		"--output_tsv", converterOutput,
		"--filter_data_with_invalid_span",
	)
	return strings.Join(parts, " ")
}
