// Package lint orchestrates a validation run: discover proposal files,
// build the read-only id index, fan validation out across workers and
// collect the report.
package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/proplint/config"
	"github.com/c360studio/proplint/proposal"
	"github.com/c360studio/proplint/report"
	"github.com/c360studio/proplint/validate"
)

// Runner validates a proposal set according to one configuration. It is
// safe to call Run repeatedly (watch mode does); every run re-derives all
// state from the file set.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger

	schema    *validate.Schema
	spell     *validate.SpellChecker
	style     *validate.StyleChecker
	unchecked []int
}

// NewRunner prepares a runner: the schema table, the allow-list and the
// spelling dictionary are loaded once here. Any failure is a configuration
// error that aborts before validation starts.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	unchecked, err := cfg.UncheckedIDs()
	if err != nil {
		return nil, err
	}

	var spell *validate.SpellChecker
	if cfg.Spelling.Dictionary != "" {
		dictPath := cfg.Spelling.Dictionary
		if !filepath.IsAbs(dictPath) {
			dictPath = filepath.Join(cfg.Proposals.Root, dictPath)
		}
		words, err := validate.LoadDictionary(dictPath)
		if err != nil {
			return nil, &config.Error{Path: dictPath, Err: err}
		}
		severity := validate.Severity(cfg.Spelling.Severity)
		spell = validate.NewSpellChecker(words, cfg.Spelling.Accepted, severity)
		logger.Debug("Spelling dictionary loaded",
			slog.String("path", dictPath),
			slog.Int("words", len(words)))
	}

	style := validate.NewStyleChecker(validate.StyleRules{
		MaxLineLength:        cfg.Style.MaxLineLength,
		NoTrailingWhitespace: cfg.Style.NoTrailingWhitespace,
		RequireTopHeading:    cfg.Style.RequireTopHeading,
	})

	return &Runner{
		cfg:       cfg,
		logger:    logger,
		schema:    validate.DefaultSchema(),
		spell:     spell,
		style:     style,
		unchecked: unchecked,
	}, nil
}

// Run executes one full validation pass. Cancelling the context aborts the
// fan-out; partial results are discarded, never reported.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	startedAt := time.Now()

	paths, err := r.Discover()
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Discovered proposal files", slog.Int("count", len(paths)))

	// Parse everything up front: the id index must be complete before any
	// reference check runs. This is the single synchronization barrier.
	type parsed struct {
		path string
		prop *proposal.Proposal
		err  error
	}
	docs := make([]parsed, len(paths))
	builder := proposal.NewIndexBuilder()
	for i, path := range paths {
		content, err := os.ReadFile(filepath.Join(r.cfg.Proposals.Root, path))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		prop, perr := proposal.Parse(path, content)
		docs[i] = parsed{path: path, prop: prop, err: perr}
		if perr == nil {
			builder.Add(prop)
		}
	}
	index := builder.Build()

	resolver := validate.NewResolver(index, r.unchecked)
	var links *validate.LinkChecker
	if r.cfg.Rules.Links {
		links = validate.NewLinkChecker(r.cfg.Proposals.Root, index, resolver)
	}

	// Fan out per document. The index is read-only from here on, so the
	// workers share it without locking. Each worker writes only its own
	// result slot.
	results := make([]validate.Result, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	for i := range docs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d := &docs[i]
			if d.err != nil {
				results[i] = malformedResult(d.path, d.err)
				return nil
			}
			results[i] = r.validateOne(d.prop, resolver, links)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortResults(results)
	rep := report.New(r.cfg.Proposals.Root, startedAt, results)
	r.logger.Info("Validation run complete",
		slog.String("run_id", rep.RunID),
		slog.Int("checked", rep.Checked),
		slog.Int("failed", rep.Failed),
		slog.Duration("elapsed", rep.CompletedAt.Sub(rep.StartedAt)))
	return rep, nil
}

// BuildIndex discovers and parses the proposal set and returns the corpus
// index without validating. Unparseable documents are skipped.
func (r *Runner) BuildIndex(ctx context.Context) (*proposal.Index, error) {
	paths, err := r.Discover()
	if err != nil {
		return nil, err
	}

	builder := proposal.NewIndexBuilder()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(filepath.Join(r.cfg.Proposals.Root, path))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if prop, perr := proposal.Parse(path, content); perr == nil {
			builder.Add(prop)
		}
	}
	return builder.Build(), nil
}

// Discover expands the configured include globs under the root, minus the
// exclusions, and returns root-relative paths in sorted order.
func (r *Runner) Discover() ([]string, error) {
	rootFS := os.DirFS(r.cfg.Proposals.Root)

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range r.cfg.Proposals.Include {
		matches, err := doublestar.Glob(rootFS, pattern)
		if err != nil {
			return nil, &config.Error{Err: fmt.Errorf("bad include pattern %q: %w", pattern, err)}
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			excluded, err := r.excluded(m)
			if err != nil {
				return nil, err
			}
			if excluded {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func (r *Runner) excluded(path string) (bool, error) {
	for _, pattern := range r.cfg.Proposals.Exclude {
		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, &config.Error{Err: fmt.Errorf("bad exclude pattern %q: %w", pattern, err)}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// validateOne runs the per-document pipeline: schema, references, links,
// spelling. All stages accumulate; none aborts.
func (r *Runner) validateOne(p *proposal.Proposal, resolver *validate.Resolver, links *validate.LinkChecker) validate.Result {
	res := validate.Result{Path: p.Path}
	if id, ok := p.Number(); ok {
		res.ID = id
	}

	res.Violations = append(res.Violations, r.schema.Check(p)...)
	res.Violations = append(res.Violations, resolver.Check(p)...)
	if links != nil {
		res.Violations = append(res.Violations, links.Check(p)...)
	}
	if r.spell != nil {
		res.Violations = append(res.Violations, r.spell.Check(p)...)
	}
	res.Violations = append(res.Violations, r.style.Check(p)...)
	return res
}

// malformedResult converts a structural parse failure into a single
// violation. The document's remaining checks are skipped; sibling
// documents are unaffected.
func malformedResult(path string, err error) validate.Result {
	v := validate.Violation{
		Kind:     validate.KindMalformed,
		Rule:     "front-matter",
		Message:  err.Error(),
		Severity: validate.SeverityError,
	}
	var mhe *proposal.MalformedHeaderError
	if errors.As(err, &mhe) {
		v.Line = mhe.Line
		v.Message = mhe.Reason
	}
	return validate.Result{Path: path, Violations: []validate.Violation{v}}
}

func (r *Runner) workers() int {
	if r.cfg.Lint.Workers > 0 {
		return r.cfg.Lint.Workers
	}
	return runtime.NumCPU()
}

// sortResults orders by id, with id-less documents after numbered ones in
// path order. Report output must be deterministic for a given file set.
func sortResults(results []validate.Result) {
	sort.SliceStable(results, func(a, b int) bool {
		ra, rb := results[a], results[b]
		switch {
		case ra.ID > 0 && rb.ID > 0:
			if ra.ID != rb.ID {
				return ra.ID < rb.ID
			}
			return ra.Path < rb.Path
		case ra.ID > 0:
			return true
		case rb.ID > 0:
			return false
		default:
			return ra.Path < rb.Path
		}
	})
}
