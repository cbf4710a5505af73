// Package main provides the entry point for accord.
//
// accord is a toolkit for protocol contracts: validate a typed IR, lower
// it to TLA+ for model checking, and run it live against a client/server
// session through a runtime monitor.
//
// Usage:
//
//	accord validate <module>              Run the validation pipeline
//	accord print-tla <module>              Emit the TLA+ module and .cfg
//	accord check <module> [flags]          Validate, compile, and run TLC
//	accord mcp                             Start MCP server (stdio mode)
//	accord init-config                     Create example configuration file
//	accord version                         Show version
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ternarybob/accord/internal/config"
	"github.com/ternarybob/accord/internal/logger"
	"github.com/ternarybob/accord/internal/mcpserver"
	"github.com/ternarybob/accord/pkg/check"
	"github.com/ternarybob/accord/pkg/contracts"
	"github.com/ternarybob/accord/pkg/explain"
	"github.com/ternarybob/accord/pkg/ir"
	"github.com/ternarybob/accord/pkg/tlc"
)

// version is set via -ldflags at build time
var version = "dev"

// configPath holds the --config flag, parsed before command dispatch.
var configPath string

func main() {
	args := os.Args[1:]
	command := ""
	cmdArgs := []string{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case command == "":
			command = arg
		default:
			cmdArgs = append(cmdArgs, arg)
		}
	}

	if command == "" {
		command = "help"
	}

	var err error
	switch command {
	case "validate":
		err = cmdValidate(cmdArgs)
	case "print-tla":
		err = cmdPrintTLA(cmdArgs)
	case "check":
		err = cmdCheck(cmdArgs)
	case "mcp", "mcp-server":
		err = cmdMCP(cmdArgs)
	case "init-config":
		err = cmdInitConfig()
	case "version", "-v", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`accord - protocol contracts toolkit

Usage:
  accord [flags] <command> [args]

Commands:
  validate <module>        Run the validation pipeline, report diagnostics
  print-tla <module>       Validate and emit the TLA+ module and .cfg file
  check <module> [flags]   Validate, compile, and model-check with TLC
  mcp                      Start MCP server (stdio mode)
  init-config              Create example configuration file
  version                  Show version information
  help                     Show this help

Check flags:
  --workers N          TLC worker count (default: tlc.workers, 0 = let TLC pick)
  --timeout SECONDS    TLC timeout in seconds (default: tlc.timeout_seconds, 300)
  --containerized      Run TLC inside a container instead of a local jar
  --explain            Narrate any counterexample in plain English
  --watch              Re-check when the contract's source file changes

Flags:
  --config PATH   Path to configuration file (default: ~/.accord/config.toml)

Environment:
  GOOGLE_GEMINI_API_KEY   API key for --explain (optional)
  ACCORD_CONFIG           Path to configuration file (alternative to --config)
  ACCORD_DATA_DIR         Override data directory

Examples:
  accord validate lock
  accord print-tla lock
  accord check lock --workers 4
  accord check lock --explain
  accord mcp`)
}

func cmdVersion() {
	fmt.Printf("accord version %s\n", version)
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func cmdInitConfig() error {
	path := getConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := config.WriteExampleConfig(path); err != nil {
		return err
	}
	fmt.Printf("Created example configuration: %s\n", path)
	return nil
}

func cmdValidate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: accord validate <module>")
	}
	i, err := contracts.Global().Get(args[0])
	if err != nil {
		return err
	}

	result := check.Validate(i)
	for _, d := range result.Diags {
		fmt.Println(d.String())
	}
	if !result.Accepted {
		return fmt.Errorf("validation failed at pass %q", result.FailedAt)
	}
	fmt.Printf("%s: valid\n", args[0])
	return nil
}

func cmdPrintTLA(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: accord print-tla <module>")
	}
	i, err := contracts.Global().Get(args[0])
	if err != nil {
		return err
	}

	out, err := check.PrintTLA(i)
	if err != nil {
		for _, d := range out.Validation.Diags {
			fmt.Fprintln(os.Stderr, d.String())
		}
		for _, d := range out.Diags {
			fmt.Fprintln(os.Stderr, d.Message)
		}
		return err
	}

	fmt.Println(out.TLAText)
	fmt.Println("----")
	fmt.Println(out.CfgText)
	return nil
}

func cmdCheck(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: accord check <module> [flags]")
	}
	name := args[0]

	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	logger.SetupLogger(cfg)

	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	workers := fs.Int("workers", cfg.TLC.Workers, "TLC worker count")
	timeout := fs.Int("timeout", cfg.TLC.TimeoutSeconds, "TLC timeout in seconds")
	containerized := fs.Bool("containerized", false, "run TLC inside a container")
	explainFlag := fs.Bool("explain", false, "narrate any counterexample")
	watch := fs.Bool("watch", false, "re-check on contract source changes")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	opts := check.Options{
		Workers:       *workers,
		TimeoutSecs:   *timeout,
		Containerized: *containerized || cfg.TLC.Containerized,
		ContainerImg:  cfg.TLC.ContainerImage,
		JarPath:       cfg.TLC.JarPath,
	}

	runOnce := func() error {
		i, err := contracts.Global().Get(name)
		if err != nil {
			return err
		}
		return runCheck(name, i, opts, *explainFlag)
	}

	if !*watch {
		return runOnce()
	}

	i, err := contracts.Global().Get(name)
	if err != nil {
		return err
	}
	if i.SourceFile == "" {
		return fmt.Errorf("%s has no SourceFile set; --watch needs a contract-source path to watch", name)
	}

	if err := runOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}

	watcher, err := tlc.NewWatcher(filepath.Dir(i.SourceFile), filepath.Ext(i.SourceFile), func(path string) {
		fmt.Printf("%s changed, re-checking...\n", path)
		if err := runOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	watcher.Start()
	defer watcher.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

func runCheck(name string, i *ir.IR, opts check.Options, wantExplain bool) error {
	dir, err := check.DefaultWorkdir(name)
	if err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(dir)

	out, err := check.Run(context.Background(), i, dir, opts)
	if err != nil {
		for _, d := range out.Validation.Diags {
			fmt.Fprintln(os.Stderr, d.String())
		}
		for _, d := range out.Diags {
			fmt.Fprintln(os.Stderr, d.Message)
		}
		return err
	}

	if out.TLC.Ok {
		fmt.Printf("%s: ok (%d distinct states, %d states found)\n", name, out.TLC.Stats.DistinctStates, out.TLC.Stats.StatesFound)
		return nil
	}

	fmt.Printf("%s: %s violated (%s)\n", name, out.TLC.Violation.Kind, out.TLC.Violation.Property)
	if wantExplain {
		var explainer explain.Explainer = explain.NoopExplainer{}
		if key := os.Getenv("GOOGLE_GEMINI_API_KEY"); key != "" {
			if g := explain.NewGeminiExplainer(explain.GeminiConfig{APIKey: key}); g != nil {
				explainer = g
			}
		}
		text, _ := explainer.Explain(context.Background(), name, out.TLC)
		fmt.Println(text)
	} else {
		fmt.Println(explain.Render(name, out.TLC))
	}
	return fmt.Errorf("%s violated", out.TLC.Violation.Kind)
}

func cmdMCP(_ []string) error {
	if os.Getenv("GOOGLE_GEMINI_API_KEY") == "" {
		fmt.Fprintf(os.Stderr, "[accord] Warning: GOOGLE_GEMINI_API_KEY not set.\n")
		fmt.Fprintf(os.Stderr, "[accord] check --explain will fall back to plain trace rendering.\n")
	}

	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if !cfg.MCP.Enabled {
		return fmt.Errorf("mcp.enabled is false in config")
	}
	logger.SetupLogger(cfg)

	srv := mcpserver.New(contracts.Global())
	return srv.ServeStdio()
}
