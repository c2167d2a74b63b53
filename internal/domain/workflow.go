package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"gooze.dev/pkg/jsgooze/internal/adapter"
	"gooze.dev/pkg/jsgooze/internal/controller"
	m "gooze.dev/pkg/jsgooze/internal/model"
	pkg "gooze.dev/pkg/jsgooze/pkg"
)

// EstimateArgs selects the sources and operators to consider.
type EstimateArgs struct {
	Paths         []m.Path
	Exclude       []string
	MutationTypes []m.MutationType
}

// TestArgs contains the arguments for running mutation tests.
type TestArgs struct {
	EstimateArgs
	Reports         m.Path
	UseCache        bool
	Threads         int
	ShardIndex      int
	TotalShardCount int
	SpillDir        string
}

// ViewArgs contains the arguments for displaying stored reports.
type ViewArgs struct {
	Reports m.Path
}

// MergeArgs names the reports directory whose shard_* subdirectories are
// merged into it.
type MergeArgs struct {
	Reports m.Path
}

// Workflow ties source discovery, mutation generation, mutant testing and
// reporting together.
type Workflow interface {
	Estimate(ctx context.Context, args EstimateArgs) error
	Test(ctx context.Context, args TestArgs) error
	View(ctx context.Context, args ViewArgs) error
	Merge(ctx context.Context, args MergeArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI
	Orchestrator
	Mutagen
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	orchestrator Orchestrator,
	mutagen Mutagen,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		Orchestrator:    orchestrator,
		Mutagen:         mutagen,
	}
}

// Estimate lists the sources and how many mutations each would receive.
func (w *workflow) Estimate(ctx context.Context, args EstimateArgs) error {
	if err := w.Start(ctx, controller.WithEstimateMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	sources, err := w.Get(ctx, args.Paths, args.Exclude...)
	if err != nil {
		_ = w.DisplayEstimation(ctx, nil, err)
		return fmt.Errorf("get sources: %w", err)
	}

	mutations, err := w.generate(ctx, sources, args.MutationTypes)
	if err != nil {
		_ = w.DisplayEstimation(ctx, nil, err)
		return fmt.Errorf("generate mutations: %w", err)
	}

	if err := w.DisplayEstimation(ctx, mutations, nil); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

// Test generates the shard's mutations, tests each as a mutant and saves
// the resulting reports. A mutant that cannot be built or tested is reported
// with its error and does not stop the run.
func (w *workflow) Test(ctx context.Context, args TestArgs) error {
	threads := max(args.Threads, 1)

	reportsDir := args.Reports
	if args.TotalShardCount > 1 {
		reportsDir = adapter.ShardDir(args.Reports, args.ShardIndex)
	}

	if err := w.Start(ctx, controller.WithTestMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	sources, err := w.Get(ctx, args.Paths, args.Exclude...)
	if err != nil {
		return fmt.Errorf("get sources: %w", err)
	}

	changed, cached, err := w.changedSources(ctx, args, reportsDir, sources)
	if err != nil {
		return fmt.Errorf("check cached reports: %w", err)
	}

	allMutations, err := w.generate(ctx, changed, args.MutationTypes)
	if err != nil {
		return fmt.Errorf("generate mutations: %w", err)
	}

	mutations := ShardMutations(allMutations, args.ShardIndex, args.TotalShardCount)

	w.DisplayConcurrencyInfo(ctx, threads, args.ShardIndex, args.TotalShardCount)
	w.DisplayUpcomingTestsInfo(ctx, len(mutations))

	tested, err := w.testAll(ctx, mutations, sourceFiles(sources), threads, args.SpillDir, changed)
	if err != nil {
		return err
	}

	if err := w.SaveReports(ctx, reportsDir, tested); err != nil {
		return fmt.Errorf("save reports: %w", err)
	}

	if err := w.DisplayReports(ctx, sortReports(append(tested, cached...))); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

// View displays reports saved by an earlier Test run.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, err := w.LoadReports(ctx, args.Reports)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}

	if err := w.Start(ctx, controller.WithTestMode()); err != nil {
		return err
	}
	defer w.Close(ctx)

	if err := w.DisplayReports(ctx, reports); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

// Merge folds the reports of every shard directory into args.Reports.
// Reports for the same source are concatenated.
func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	shards, err := w.ListShards(ctx, args.Reports)
	if err != nil {
		return fmt.Errorf("list shards: %w", err)
	}

	if len(shards) == 0 {
		return fmt.Errorf("no shard directories in %s", args.Reports)
	}

	merged := make(map[m.Path]*m.FileReport)

	for _, shard := range shards {
		reports, err := w.LoadReports(ctx, shard)
		if err != nil {
			return fmt.Errorf("load shard %s: %w", shard, err)
		}

		for _, fr := range reports {
			target, ok := merged[fr.Source]
			if !ok {
				copied := fr
				merged[fr.Source] = &copied

				continue
			}

			target.Reports = append(target.Reports, fr.Reports...)
		}
	}

	out := make([]m.FileReport, 0, len(merged))
	for _, fr := range merged {
		out = append(out, *fr)
	}

	out = sortReports(out)

	if err := w.SaveReports(ctx, args.Reports, out); err != nil {
		return fmt.Errorf("save merged reports: %w", err)
	}

	slog.Info("Merged shard reports", "shards", len(shards), "files", len(out))

	return nil
}

// changedSources splits sources into those that need testing and the stored
// reports that are still valid for unchanged sources. Reports of sources that
// no longer exist are removed. The cache is per reports directory, so a
// sharded run never reuses it.
func (w *workflow) changedSources(ctx context.Context, args TestArgs, dir m.Path, sources []m.Source) ([]m.Source, []m.FileReport, error) {
	if !args.UseCache || args.TotalShardCount > 1 {
		return sources, nil, nil
	}

	stored, err := w.LoadReports(ctx, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return sources, nil, nil
	}

	if err != nil {
		return nil, nil, err
	}

	storedBySource := make(map[m.Path]m.FileReport, len(stored))
	for _, fr := range stored {
		storedBySource[fr.Source] = fr
	}

	var (
		changed []m.Source
		cached  []m.FileReport
	)

	for _, source := range sources {
		fr, ok := storedBySource[source.Origin.FullPath]
		delete(storedBySource, source.Origin.FullPath)

		if ok && fr.Hash == source.Origin.Hash && fr.TestHash == source.TestHash() && complete(fr) {
			cached = append(cached, fr)
			continue
		}

		changed = append(changed, source)
	}

	deleted := make([]m.Path, 0, len(storedBySource))
	for path := range storedBySource {
		deleted = append(deleted, path)
	}

	if len(deleted) > 0 {
		if err := w.CleanReports(ctx, dir, deleted); err != nil {
			return nil, nil, err
		}
	}

	slog.Info("Incremental run", "changed", len(changed), "cached", len(cached), "deleted", len(deleted))

	return changed, cached, nil
}

// complete reports whether every mutant in fr reached a verdict.
func complete(fr m.FileReport) bool {
	for _, report := range fr.Reports {
		if !report.Status.Terminal() {
			return false
		}
	}

	return true
}

// generate streams sources through the mutagen. Sources that cannot be read
// or parsed are logged and skipped. Any other error stops the stream.
func (w *workflow) generate(ctx context.Context, sources []m.Source, types []m.MutationType) ([]m.Mutation, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sourceCh := make(chan m.Source)

	go func() {
		defer close(sourceCh)

		for _, source := range sources {
			select {
			case <-ctx.Done():
				return
			case sourceCh <- source:
			}
		}
	}()

	mutationCh, errCh := w.StreamMutations(ctx, sourceCh, 1, types...)

	var mutations []m.Mutation

	for mutationCh != nil || errCh != nil {
		select {
		case mutation, ok := <-mutationCh:
			if !ok {
				mutationCh = nil
				continue
			}

			mutations = append(mutations, mutation)
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}

			if !errors.Is(err, m.ErrParse) && !errors.Is(err, m.ErrUnreadable) {
				return nil, err
			}

			slog.Warn("Skipping source", "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return mutations, nil
}

// testAll tests every mutation, spilling reports to disk, and groups them by
// source file.
func (w *workflow) testAll(ctx context.Context, mutations []m.Mutation, files []m.Path, threads int, spillDir string, sources []m.Source) ([]m.FileReport, error) {
	spill, err := pkg.NewFileSpill[m.Report](spillDir)
	if err != nil {
		return nil, fmt.Errorf("create report spill: %w", err)
	}

	defer func() {
		if err := spill.Remove(); err != nil {
			slog.Error("Failed to remove report spill", "path", spill.Path(), "error", err)
		}
	}()

	if err := w.testMutations(ctx, mutations, files, threads, spill); err != nil {
		return nil, fmt.Errorf("run mutation tests: %w", err)
	}

	reports, err := groupReports(spill, sources)
	if err != nil {
		return nil, fmt.Errorf("collect reports: %w", err)
	}

	return reports, nil
}

// testMutations runs at most threads mutants at a time. Each running mutant
// holds one worker id from a fixed pool so the UI can show what every worker
// is doing.
func (w *workflow) testMutations(ctx context.Context, mutations []m.Mutation, files []m.Path, threads int, spill pkg.FileSpill[m.Report]) error {
	workerIDs := make(chan int, threads)
	for id := range threads {
		workerIDs <- id
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for _, mutation := range mutations {
		if groupCtx.Err() != nil {
			break
		}

		group.Go(func() error {
			threadID := <-workerIDs
			defer func() { workerIDs <- threadID }()

			w.DisplayStartingTestInfo(groupCtx, mutation, threadID)

			report, err := w.TestMutation(groupCtx, mutation, files)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}

				slog.Warn("Mutant not tested", "mutation", mutation.ID, "error", err)
				report = failedReport(mutation, err)
			}

			if err := spill.Append(report); err != nil {
				return err
			}

			w.DisplayCompletedTestInfo(groupCtx, mutation, report)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// ShardMutations keeps the mutations whose position maps to shardIndex.
func ShardMutations(all []m.Mutation, shardIndex, totalShardCount int) []m.Mutation {
	if totalShardCount <= 1 {
		return all
	}

	var shard []m.Mutation

	for i, mutation := range all {
		if i%totalShardCount == shardIndex {
			shard = append(shard, mutation)
		}
	}

	return shard
}

func sourceFiles(sources []m.Source) []m.Path {
	files := make([]m.Path, 0, len(sources))
	for _, source := range sources {
		files = append(files, source.Origin.FullPath)
	}

	return files
}

func failedReport(mutation m.Mutation, err error) m.Report {
	report := m.Report{
		MutantID:    mutation.ID,
		Type:        mutation.Type,
		Location:    mutation.Location,
		MutatedLine: mutation.Substitute,
		Status:      m.Untested,
		Error:       err.Error(),
	}

	if mutation.Source.Origin != nil {
		report.SourceFile = mutation.Source.Origin.FullPath
	}

	return report
}

// groupReports collects spilled reports per source file, stamping each file
// report with the source and test hashes the cache compares against.
func groupReports(spill pkg.FileSpill[m.Report], sources []m.Source) ([]m.FileReport, error) {
	bySource := make(map[m.Path]m.Source, len(sources))
	for _, source := range sources {
		bySource[source.Origin.FullPath] = source
	}

	newFileReport := func(path m.Path) *m.FileReport {
		fr := &m.FileReport{Source: path}
		if source, ok := bySource[path]; ok {
			fr.Hash = source.Origin.Hash
			fr.TestHash = source.TestHash()
		}

		return fr
	}

	byFile := make(map[m.Path]*m.FileReport)

	err := spill.Range(func(_ uint64, report m.Report) error {
		fr, ok := byFile[report.SourceFile]
		if !ok {
			fr = newFileReport(report.SourceFile)
			byFile[report.SourceFile] = fr
		}

		fr.Reports = append(fr.Reports, report)

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sources without mutants still get a report so the cache sees them.
	for path := range bySource {
		if _, ok := byFile[path]; !ok {
			fr := newFileReport(path)
			fr.Reports = []m.Report{}
			byFile[path] = fr
		}
	}

	out := make([]m.FileReport, 0, len(byFile))
	for _, fr := range byFile {
		out = append(out, *fr)
	}

	return sortReports(out), nil
}

func sortReports(reports []m.FileReport) []m.FileReport {
	for _, fr := range reports {
		sort.SliceStable(fr.Reports, func(i, j int) bool {
			return fr.Reports[i].MutantID < fr.Reports[j].MutantID
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Source < reports[j].Source
	})

	return reports
}
