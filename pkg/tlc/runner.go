package tlc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// RunOptions configures one TLC invocation.
type RunOptions struct {
	// JarPath overrides LocateJar's own lookup; empty runs the lookup.
	JarPath string
	// Workers sets TLC's -workers flag; 0 lets TLC pick its own default.
	Workers int
	// Dir is the working directory containing the .tla/.cfg pair.
	Dir string
}

// Run invokes a local tla2tools.jar against module (a bare name, without
// extension) found under opts.Dir, and parses its stdout. It shells out
// the same way pkg/orchestra's verification runner does: one
// context-bound subprocess, combined output captured and handed to the
// parser whole.
func Run(ctx context.Context, module string, opts RunOptions) (*Result, error) {
	jar := opts.JarPath
	if jar == "" {
		var err error
		jar, err = LocateJar()
		if err != nil {
			return nil, err
		}
	}

	args := []string{"-jar", jar, "-config", module + ".cfg"}
	if opts.Workers > 0 {
		args = append(args, "-workers", fmt.Sprintf("%d", opts.Workers))
	}
	args = append(args, module+".tla")

	cmd := exec.CommandContext(ctx, "java", args...)
	cmd.Dir = opts.Dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("run tlc: %w", err)
		}
		// A nonzero exit from TLC on a violated check is expected; the
		// parser, not the exit code, is authoritative about what happened.
	}
	return Parse(string(output)), nil
}

// WritePair writes module.tla and module.cfg to dir, overwriting any
// existing files — the emitted artifacts are always regenerated from the
// current IR, never hand-edited in place.
func WritePair(dir, module, tla, cfg string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create tlc workdir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, module+".tla"), []byte(tla), 0o644); err != nil {
		return fmt.Errorf("write %s.tla: %w", module, err)
	}
	if err := os.WriteFile(filepath.Join(dir, module+".cfg"), []byte(cfg), 0o644); err != nil {
		return fmt.Errorf("write %s.cfg: %w", module, err)
	}
	return nil
}
