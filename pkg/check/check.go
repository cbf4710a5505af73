// Package check ties validation, TLA+ compilation, and TLC invocation
// together into the one pipeline `cmd/accord` and `internal/mcpserver`
// both drive, so the CLI and the MCP tool surface can never disagree
// about what "check" means.
package check

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ternarybob/accord/pkg/ir"
	"github.com/ternarybob/accord/pkg/ir/validate"
	"github.com/ternarybob/accord/pkg/tla"
	"github.com/ternarybob/accord/pkg/tlc"
)

// Options configures a Run.
type Options struct {
	Workers       int
	TimeoutSecs   int
	JarPath       string
	Containerized bool
	ContainerImg  string
}

// Outcome is everything a caller (CLI command, MCP tool) needs to report
// back to its user: the validation result, the compiled module (nil if
// validation failed or compilation reported diagnostics), the generated
// TLA+/cfg text, and the TLC result (nil if compilation failed or TLC was
// never invoked).
type Outcome struct {
	Validation validate.Result
	Module     *tla.Module
	Diags      []tla.Diagnostic
	TLAText    string
	CfgText    string
	TLC        *tlc.Result
}

// Validate runs the default validation pipeline.
func Validate(i *ir.IR) validate.Result {
	return validate.Validate(i)
}

// PrintTLA validates i and, on success, compiles and emits its TLA+/.cfg
// pair without invoking TLC.
func PrintTLA(i *ir.IR) (*Outcome, error) {
	out := &Outcome{Validation: validate.Validate(i)}
	if !out.Validation.Accepted {
		return out, fmt.Errorf("validation failed at pass %q", out.Validation.FailedAt)
	}

	module, diags := tla.Compile(out.Validation.IR)
	out.Diags = diags
	if len(diags) > 0 {
		return out, fmt.Errorf("%d unlowerable construct(s), first: %s", len(diags), diags[0].Message)
	}

	out.Module = module
	out.TLAText = tla.EmitTLA(module)
	out.CfgText = tla.EmitCfg(module)
	return out, nil
}

// Run validates, compiles, emits, and invokes TLC against i, writing the
// .tla/.cfg pair to dir. Every reachable failure short-circuits into the
// returned error; a TLC-reported invariant/property violation is not an
// error — it's a populated Outcome.TLC.Violation the caller inspects.
func Run(ctx context.Context, i *ir.IR, dir string, opts Options) (*Outcome, error) {
	out, err := PrintTLA(i)
	if err != nil {
		return out, err
	}

	if err := tlc.WritePair(dir, out.Module.Name, out.TLAText, out.CfgText); err != nil {
		return out, fmt.Errorf("write tla/cfg pair: %w", err)
	}

	timeout := time.Duration(opts.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if opts.Containerized {
		runner := &tlc.ContainerRunner{Image: opts.ContainerImg, JarHostPath: opts.JarPath}
		result, err := runner.Run(runCtx, dir, out.Module.Name, opts.Workers)
		if err != nil {
			return out, fmt.Errorf("run tlc (containerized): %w", err)
		}
		out.TLC = result
		return out, nil
	}

	result, err := tlc.Run(runCtx, out.Module.Name, tlc.RunOptions{
		JarPath: opts.JarPath,
		Workers: opts.Workers,
		Dir:     dir,
	})
	if err != nil {
		return out, fmt.Errorf("run tlc: %w", err)
	}
	out.TLC = result
	return out, nil
}

// DefaultWorkdir returns a fresh temp directory for a check run's .tla/.cfg
// artifacts, cleaned up by the caller via os.RemoveAll when done.
func DefaultWorkdir(protocolName string) (string, error) {
	return os.MkdirTemp("", "accord-check-"+protocolName+"-")
}
