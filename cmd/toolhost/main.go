// Command toolhost exposes the tool registry to an external agent framework
// over line-oriented JSON stdio: one Request object per input line, one
// Result object per output line. The host process never exits on a tool
// failure; every failure is a structured result on stdout.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/codeuhq/codeu/internal/config"
	"github.com/codeuhq/codeu/internal/toolkit"
	"github.com/codeuhq/codeu/internal/tools"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("toolhost", flag.ContinueOnError)
	rootFlag := fs.String("root", ".", "workspace root; no tool may read or write outside it")
	configFlag := fs.String("config", "", "optional TOML configuration file")
	listFlag := fs.Bool("list", false, "print the tool catalog as JSON and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFlag, *rootFlag)
	if err != nil {
		return err
	}
	reg, err := tools.NewRegistry(cfg)
	if err != nil {
		return err
	}

	if *listFlag {
		return printCatalog(stdout, reg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return serve(ctx, stdin, stdout, reg)
}

func loadConfig(path, root string) (config.Config, error) {
	if path == "" {
		if env := os.Getenv("CODEU_CONFIG"); env != "" {
			path = env
		}
	}
	var cfg config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path, root)
		if err != nil {
			return config.Config{}, err
		}
	} else {
		cfg = config.Default(root)
	}
	return config.FromEnv(cfg), nil
}

// serve processes one JSON request per line until EOF or cancellation.
// Malformed lines yield INVALID_ARGS results instead of terminating the host.
func serve(ctx context.Context, stdin io.Reader, stdout io.Writer, reg *toolkit.Registry) error {
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var req toolkit.Request
		var res toolkit.Result
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			res = toolkit.Failure(toolkit.Errorf(toolkit.KindInvalidArgs, "request must be a JSON object: %v", err))
		} else {
			res = reg.Dispatch(ctx, req)
		}
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}
	return nil
}

// printCatalog writes the tool names, descriptions and schemas so callers
// can register them with a model API.
func printCatalog(stdout io.Writer, reg *toolkit.Registry) error {
	type catalogEntry struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Schema      json.RawMessage `json:"schema"`
	}
	entries := make([]catalogEntry, 0)
	for _, t := range reg.Tools() {
		entries = append(entries, catalogEntry{Name: t.Name, Description: t.Description, Schema: t.Schema})
	}
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
