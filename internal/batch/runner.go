package batch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"measuremap/internal/codec"
	"measuremap/internal/facts"
	"measuremap/internal/fileutil"
	"measuremap/internal/ledger"
	"measuremap/internal/logging"
	"measuremap/internal/measure"
	"measuremap/internal/table"
)

// ErrLocked is returned when another run holds the output tree lock.
var ErrLocked = errors.New("output tree is locked by another run")

// Converter turns one input file into a measure map.
type Converter func(ctx context.Context, path string) (*measure.Map, error)

// TableConverter converts measures tables.
func TableConverter() Converter {
	return func(_ context.Context, path string) (*measure.Map, error) {
		return table.ConvertFile(path)
	}
}

// FactsConverter converts facts documents. With checkParts set every part
// must yield the same map.
func FactsConverter(checkParts bool) Converter {
	return func(_ context.Context, path string) (*measure.Map, error) {
		return facts.ConvertFile(path, checkParts)
	}
}

// Options configures one batch run.
type Options struct {
	// Kind labels the run in the ledger, e.g. "convert" or "extract".
	Kind       string
	Root       string
	OutputDir  string
	Extensions []string
	Pattern    string
	Suffix     string
	Workers    int
	// Incremental skips inputs whose last successful conversion had the
	// same content hash and whose output still exists. Needs a ledger.
	Incremental bool
	// Force disables incremental skipping for this run.
	Force   bool
	Convert Converter
}

// Result is the outcome of one input.
type Result struct {
	Input    string
	Output   string
	Hash     string
	Status   ledger.Status
	Measures int
	Err      error
}

// Summary reports a finished run.
type Summary struct {
	RunID    string
	Root     string
	Results  []Result
	Counts   ledger.Counts
	Duration time.Duration
}

// Failed returns the results that did not convert.
func (s Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Status == ledger.StatusFailed {
			out = append(out, r)
		}
	}
	return out
}

// Runner executes batch runs. The ledger is optional.
type Runner struct {
	logger *slog.Logger
	ledger *ledger.Store
}

// NewRunner constructs a Runner. A nil logger discards output; a nil store
// disables run history and incremental skipping.
func NewRunner(logger *slog.Logger, store *ledger.Store) *Runner {
	return &Runner{
		logger: logging.NewComponentLogger(logger, "batch"),
		ledger: store,
	}
}

// Run converts every matching input under opts.Root. Per-file failures are
// reported in the summary; the returned error covers setup problems, the
// output lock and cancellation.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Convert == nil {
		return Summary{}, errors.New("batch: converter is required")
	}
	if len(opts.Extensions) == 0 {
		return Summary{}, errors.New("batch: at least one extension is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return Summary{}, fmt.Errorf("batch: resolve root: %w", err)
	}
	outDir := ""
	if strings.TrimSpace(opts.OutputDir) != "" {
		if outDir, err = filepath.Abs(opts.OutputDir); err != nil {
			return Summary{}, fmt.Errorf("batch: resolve output dir: %w", err)
		}
	}
	suffix := opts.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if !strings.HasSuffix(suffix, ".json") {
		logging.WarnWithContext(r.logger, "output suffix does not end in .json", "suffix_not_json",
			logging.String("suffix", suffix),
			logging.String(logging.FieldImpact, "outputs will not be recognised as JSON by other tools"),
			logging.String(logging.FieldErrorHint, "use a suffix such as .mm.json"),
		)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	inputs, err := Discover(r.logger, root, opts.Extensions, opts.Pattern)
	if err != nil {
		return Summary{}, fmt.Errorf("batch: scan %s: %w", root, err)
	}
	r.logger.Info("batch scan complete",
		logging.String("root", root),
		logging.Int(logging.FieldCount, len(inputs)),
		logging.String("extensions", strings.Join(opts.Extensions, ",")),
		logging.String("pattern", opts.Pattern),
		logging.String(logging.FieldEventType, "batch_scan"),
	)

	unlock, err := lockTree(cmp.Or(outDir, root))
	if err != nil {
		return Summary{}, err
	}
	defer unlock()

	summary := Summary{Root: root, Results: make([]Result, len(inputs))}
	started := time.Now()
	if r.ledger != nil {
		run, err := r.ledger.StartRun(ctx, opts.Kind, root, outDir)
		if err != nil {
			return Summary{}, err
		}
		summary.RunID = run.ID
		ctx = logging.WithRunID(ctx, run.ID)
	}
	incremental := opts.Incremental && !opts.Force && r.ledger != nil

	var (
		done     atomic.Int64
		progress sync.Mutex
		sampler  = logging.NewProgressSampler(10)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summary.Results[i] = r.process(logging.WithFile(gctx, input), input, root, outDir, suffix, incremental, opts.Convert)
			n := int(done.Add(1))
			progress.Lock()
			if sampler.ShouldLog(n, len(inputs), opts.Kind) {
				r.logger.Info("batch progress",
					logging.Int("done", n),
					logging.Int("total", len(inputs)),
					logging.String(logging.FieldEventType, "batch_progress"),
				)
			}
			progress.Unlock()
			return nil
		})
	}
	waitErr := g.Wait()
	summary.Duration = time.Since(started)
	recordCtx := context.WithoutCancel(ctx)

	for i, res := range summary.Results {
		if res.Input == "" {
			summary.Results[i] = Result{Input: inputs[i], Status: ledger.StatusSkipped, Err: waitErr}
			res = summary.Results[i]
		}
		switch res.Status {
		case ledger.StatusConverted:
			summary.Counts.Converted++
		case ledger.StatusFailed:
			summary.Counts.Failed++
		default:
			summary.Counts.Skipped++
		}
		if r.ledger != nil {
			if err := r.ledger.RecordFile(recordCtx, summary.RunID, ledger.FileResult{
				InputPath:  res.Input,
				OutputPath: res.Output,
				InputHash:  res.Hash,
				Status:     res.Status,
				Measures:   res.Measures,
				Err:        res.Err,
			}); err != nil {
				logging.WarnWithContext(r.logger, "ledger record failed", "ledger_record_failed",
					logging.String(logging.FieldFile, res.Input),
					logging.Error(err),
					logging.String(logging.FieldImpact, "file outcome missing from history"),
				)
			}
		}
	}
	if r.ledger != nil {
		if err := r.ledger.FinishRun(recordCtx, summary.RunID, summary.Counts); err != nil {
			logging.WarnWithContext(r.logger, "ledger finish failed", "ledger_finish_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run shows as unfinished in history"),
			)
		}
	}

	r.logger.Info("batch complete",
		logging.Int("converted", summary.Counts.Converted),
		logging.Int("failed", summary.Counts.Failed),
		logging.Int("skipped", summary.Counts.Skipped),
		logging.Duration("duration", summary.Duration),
		logging.String(logging.FieldEventType, "batch_complete"),
	)
	if waitErr != nil {
		return summary, waitErr
	}
	return summary, nil
}

func (r *Runner) process(ctx context.Context, input, root, outDir, suffix string, incremental bool, convert Converter) Result {
	logger := logging.WithContext(ctx, r.logger)
	res := Result{Input: input}

	output, err := OutputPath(input, root, outDir, suffix)
	if err != nil {
		return r.fail(logger, res, err)
	}
	res.Output = output

	if r.ledger != nil {
		if res.Hash, err = fileutil.HashFile(input); err != nil {
			return r.fail(logger, res, err)
		}
	}
	if incremental && r.unchanged(ctx, res) {
		res.Status = ledger.StatusSkipped
		logger.Debug("input unchanged since last conversion",
			logging.String(logging.FieldOutput, output),
			logging.String(logging.FieldEventType, "file_unchanged"),
		)
		return res
	}

	mm, err := convert(ctx, input)
	if err != nil {
		return r.fail(logger, res, err)
	}
	if err := codec.WriteFile(output, mm); err != nil {
		return r.fail(logger, res, err)
	}
	res.Status = ledger.StatusConverted
	res.Measures = mm.Len()
	logger.Info("measure map written",
		logging.String(logging.FieldOutput, output),
		logging.Int(logging.FieldCount, mm.Len()),
		logging.String(logging.FieldEventType, "file_converted"),
	)
	return res
}

func (r *Runner) unchanged(ctx context.Context, res Result) bool {
	last, err := r.ledger.LastSuccess(ctx, res.Input)
	if err != nil {
		logging.WarnWithContext(r.logger, "ledger lookup failed; converting anyway", "ledger_lookup_failed",
			logging.String(logging.FieldFile, res.Input),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file is converted even if unchanged"),
		)
		return false
	}
	if last == nil || last.InputHash != res.Hash || last.OutputPath != res.Output {
		return false
	}
	_, err = os.Stat(res.Output)
	return err == nil
}

func (r *Runner) fail(logger *slog.Logger, res Result, err error) Result {
	res.Status = ledger.StatusFailed
	res.Err = err
	logging.WarnWithContext(logger, "conversion failed; file skipped", "file_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorKind, measure.Kind(err)),
		logging.String(logging.FieldImpact, "no measure map written for this file"),
		logging.String(logging.FieldErrorHint, hintFor(err)),
	)
	return res
}

func hintFor(err error) string {
	switch measure.Kind(err) {
	case "missing_timeline":
		return "export the table with quarterbeats for every measure"
	case "consistency":
		return "compare the parts named in the error or rerun without part checks"
	case "format", "structural":
		return "inspect the input file named in the error"
	case "io":
		return "check that the file exists and is readable"
	default:
		return "check logs for details"
	}
}

func lockTree(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("batch: create output dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("batch: acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("batch: %s: %w", dir, ErrLocked)
	}
	return func() { _ = lock.Unlock() }, nil
}
