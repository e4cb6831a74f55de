package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/codecgen"
	"github.com/reoring/codecgen/internal/config"
)

// generator compiles targets and writes, prints or checks their output.
type generator struct {
	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer
	check  bool

	mu sync.Mutex // serializes writes to stdout and stderr
}

type result struct {
	target config.Target
	code   []byte
	stale  string // diff against the existing output, --check only
}

// run compiles every target concurrently. Outputs going to stdout and check
// diffs are printed in target order once all targets are done.
func (g *generator) run(ctx context.Context, targets []config.Target) error {
	results := make([]result, len(targets))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range targets {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := g.target(t)
			if err != nil {
				return fmt.Errorf("%s: %w", t.Input, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	stale := 0
	for _, r := range results {
		switch {
		case r.stale != "":
			stale++
			fmt.Fprintf(g.stderr, "--- %s (on disk)\n+++ %s (generated)\n%s", r.target.Output, r.target.Output, r.stale)
		case r.target.Output == "" && !g.check:
			if _, err := g.stdout.Write(r.code); err != nil {
				return err
			}
		}
	}
	if stale > 0 {
		return fmt.Errorf("%w: %d of %d files", errStale, stale, len(targets))
	}
	return nil
}

func (g *generator) target(t config.Target) (result, error) {
	log := g.log.With().Str("input", t.Input).Logger()
	src, err := os.ReadFile(t.Input)
	if err != nil {
		return result{}, err
	}
	code, err := codecgen.Compile(src, codecgen.CompileOptions{
		Class:     t.Class,
		Access:    t.Access,
		MakeTypes: t.Make,
		Source:    filepath.Base(t.Input),
		Logger:    &log,
	})
	if err != nil {
		return result{}, err
	}
	r := result{target: t, code: code}
	if t.Output == "" {
		return r, nil
	}

	existing, err := os.ReadFile(t.Output)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return result{}, err
	}
	if bytes.Equal(existing, code) {
		log.Debug().Str("output", t.Output).Msg("up to date")
		return r, nil
	}
	if g.check {
		r.stale = lineDiff(string(existing), string(code), isTerminal(g.stderr))
		log.Warn().Str("output", t.Output).Msg("stale")
		return r, nil
	}
	if err := os.MkdirAll(filepath.Dir(t.Output), 0o755); err != nil {
		return result{}, fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(t.Output, code, 0o644); err != nil {
		return result{}, fmt.Errorf("writing output: %w", err)
	}
	log.Info().Str("output", t.Output).Int("bytes", len(code)).Msg("generated")
	return r, nil
}
