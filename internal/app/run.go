package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/embedcheck/internal/analyzer"
	"github.com/specialistvlad/embedcheck/internal/ctxlog"
	"github.com/specialistvlad/embedcheck/internal/diagnostic"
	"github.com/specialistvlad/embedcheck/internal/document"
	"github.com/specialistvlad/embedcheck/internal/fragment"
	"github.com/specialistvlad/embedcheck/internal/report"
	"github.com/specialistvlad/embedcheck/internal/resolve"
	"golang.org/x/sync/errgroup"
)

// Run performs one lint pass over the root, writes the text report to the
// app's output and returns the aggregated result. An error is returned only
// when the pass could not complete (discovery failure, interruption).
func (a *App) Run(ctx context.Context) (*report.Run, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	paths, err := a.finder.FindDocuments(a.config.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover documents: %w", err)
	}
	a.logger.Debug("Discovered documents.", "count", len(paths))
	if len(paths) == 0 {
		a.logger.Warn("No documents found.", "root", a.config.Root)
	}

	run := &report.Run{
		MinSeverity:     a.settings.MinSeverity,
		RequireAnalyzer: a.settings.RequireAnalyzer,
	}
	if err := a.analyzer.Available(); err != nil {
		a.logger.Warn("Analyzer unavailable, embedded scripts will not be analyzed.", "error", err)
		run.AnalyzerErr = err
	}

	runner := analyzer.NewRunner(a.analyzer, analyzer.Options{
		ScratchDir: a.settings.ScratchDir,
		Slots:      a.settings.Workers,
	})

	for _, path := range paths {
		res, err := a.lintDocument(ctx, path, runner, run.AnalyzerErr)
		if err != nil {
			return run, err
		}
		run.Documents = append(run.Documents, res)
	}

	if err := run.WriteText(a.outW, report.TextOptions{Verbose: a.config.Verbose}); err != nil {
		return run, fmt.Errorf("failed to write report: %w", err)
	}

	s := run.Summarize()
	a.logger.Info("Lint pass finished.",
		"documents", s.Documents,
		"fragments", s.Fragments,
		"diagnostics", s.Diagnostics,
		"errors", s.Errors,
		"failed", run.ShouldFail(),
	)
	return run, nil
}

type job struct {
	index    int
	fragment fragment.Fragment
}

// lintDocument runs one document through resolve, extract, analyze and
// remap. Only interruption is returned as an error; everything else is
// recorded in the result.
func (a *App) lintDocument(ctx context.Context, path string, runner *analyzer.Runner, unavailable error) (*report.DocumentResult, error) {
	ctx = ctxlog.With(ctx, "path", path)
	logger := ctxlog.FromContext(ctx)

	kind := document.DetectKind(path)
	doc, err := document.LoadKind(ctx, path, kind)
	if err != nil {
		logger.Error("Failed to load document.", "error", err)
		return report.ParseFailure(path, kind, err), nil
	}

	plan := resolve.Resolve(ctx, doc, resolve.Options{
		CanonicalShells: a.settings.CanonicalShells,
		Ignored:         a.settings.Ignored(a.config.Root),
	})
	res := report.FromPlan(plan)
	if plan.Err != nil {
		logger.Error("Document rejected.", "error", plan.Err)
		return res, nil
	}
	if unavailable != nil {
		res.Unavailable(fmt.Sprintf("analyzer unavailable: %v", unavailable))
		return res, nil
	}

	opts := fragment.OptionsFor(kind)
	opts.Suppress = a.settings.SuppressionsFor(kind)

	var jobs []job
	for i, u := range plan.Units {
		if u.Status != resolve.Runnable {
			continue
		}
		f, err := fragment.FromUnit(u, opts)
		if err != nil {
			res.Failed(i, err)
			continue
		}
		jobs = append(jobs, job{index: i, fragment: f})
	}

	if err := a.analyze(ctx, runner, jobs, res); err != nil {
		return res, err
	}
	return res, nil
}

// analyze runs the jobs one at a time, or through the runner's slots when
// more than one is configured. Results land at their unit index, so the
// report order never depends on scheduling.
func (a *App) analyze(ctx context.Context, runner *analyzer.Runner, jobs []job, res *report.DocumentResult) error {
	if runner.Slots() <= 1 {
		for _, j := range jobs {
			if err := a.analyzeOne(ctx, runner, j, res); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runner.Slots())
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			return a.analyzeOne(gctx, runner, j, res)
		})
	}
	return g.Wait()
}

func (a *App) analyzeOne(ctx context.Context, runner *analyzer.Runner, j job, res *report.DocumentResult) error {
	out, err := runner.Run(ctx, j.fragment)
	if err != nil {
		if errors.Is(err, analyzer.ErrInterrupted) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		ctxlog.FromContext(ctx).Error("Analyzer failed.", "locator", j.fragment.Locator.String(), "error", err)
		res.Failed(j.index, err)
		return nil
	}

	raw := out.Output.Stdout
	if stderr := strings.TrimSpace(out.Output.Stderr); stderr != "" {
		raw += "\n" + stderr
	}
	res.Analyzed(j.index, diagnostic.Remap(raw, out.ScratchPath, j.fragment.Locator))
	return nil
}
