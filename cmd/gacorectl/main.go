package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"gacore/internal/model"
	"gacore/internal/scape"
	"gacore/internal/storage"
	gaapi "gacore/pkg/gacore"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var stdout io.Writer = os.Stdout

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "population":
		return runPopulation(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional JSON run config; explicit flags override it")
	runID := fs.String("run-id", "", "run id (generated when empty)")
	scapeName := fs.String("scape", "target", "fitness scape: "+strings.Join(scape.Names(), "|"))
	popSize := fs.Int("pop", 50, "population size")
	dims := fs.Int("dims", 4, "genes per agent")
	gens := fs.Int("gens", 100, "reproduction cycles")
	rate := fs.Float64("rate", 0.05, "per-gene mutation probability in [0, 1]")
	seed := fs.Uint64("seed", 1, "random seed")
	workers := fs.Int("workers", 1, "evaluation and breeding workers")
	goal := fs.Float64("goal", 0, "stop once best fitness reaches this value (0 disables)")
	quiet := fs.Bool("quiet", false, "suppress per-generation progress")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "gacore.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := gaapi.RunRequest{}
	present := map[string]bool{}
	if *configPath != "" {
		var err error
		req, present, err = loadRunRequestFromConfig(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	// explicit flags win; flag defaults only fill what the config left out
	apply := func(name string) bool {
		return set[name] || !present[name]
	}
	if apply("run-id") {
		req.RunID = *runID
	}
	if apply("scape") {
		req.Scape = *scapeName
	}
	if apply("pop") {
		req.Population = *popSize
	}
	if apply("dims") {
		req.Dimensions = *dims
	}
	if apply("gens") {
		req.Generations = *gens
	}
	if apply("rate") {
		req.MutationRate = *rate
	}
	if apply("seed") {
		req.Seed = *seed
	}
	if apply("workers") {
		req.Workers = *workers
	}
	if apply("goal") {
		req.FitnessGoal = *goal
	}

	if !*quiet && isTerminal(stdout) {
		req.Progress = func(d model.GenerationDiagnostics) {
			fmt.Fprintf(stdout, "generation=%s best=%.6f mean=%.6f std=%.6f\n",
				humanize.Comma(int64(d.Generation)), d.BestFitness, d.MeanFitness, d.StdDevFitness)
		}
	}

	client, err := gaapi.New(gaapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "run_id=%s scape=%s reproductions=%s final_best=%.6f converged=%t\n",
		summary.RunID, req.Scape, humanize.Comma(int64(summary.Reproductions)), summary.FinalBestFitness, summary.Converged)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit runs as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "gacore.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := gaapi.New(gaapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, gaapi.RunsRequest{Limit: max(*limit, 0)})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "no runs")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "run_id=%s created=%s scape=%s pop=%s dims=%d gens=%s rate=%g seed=%d final_best=%.6f converged=%t\n",
			r.ID, humanize.Time(r.CreatedAt), r.Scape, humanize.Comma(int64(r.PopulationSize)), r.Dimensions,
			humanize.Comma(int64(r.Generations)), r.MutationRate, r.Seed, r.FinalBestFitness, r.Converged)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "gacore.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("fitness requires --run-id or --latest")
	}

	client, err := gaapi.New(gaapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, gaapi.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  max(*limit, 0),
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(history)
	}
	if len(history) == 0 {
		fmt.Fprintln(stdout, "no fitness history")
		return nil
	}
	for i, best := range history {
		fmt.Fprintf(stdout, "generation=%s best=%.6f\n", humanize.Comma(int64(i)), best)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "gacore.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("diagnostics requires --run-id or --latest")
	}

	client, err := gaapi.New(gaapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, gaapi.DiagnosticsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  max(*limit, 0),
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(diagnostics)
	}
	if len(diagnostics) == 0 {
		fmt.Fprintln(stdout, "no diagnostics")
		return nil
	}
	for _, d := range diagnostics {
		fmt.Fprintf(stdout, "generation=%s best=%.6f mean=%.6f min=%.6f std=%.6f best_index=%d\n",
			humanize.Comma(int64(d.Generation)), d.BestFitness, d.MeanFitness, d.MinFitness, d.StdDevFitness, d.BestIndex)
	}
	return nil
}

func runPopulation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("population", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show the final population of the most recent run")
	jsonOut := fs.Bool("json", false, "emit population as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "gacore.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("population requires --run-id or --latest")
	}

	client, err := gaapi.New(gaapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	snapshot, err := client.Population(ctx, gaapi.PopulationRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(snapshot)
	}
	fmt.Fprintf(stdout, "run_id=%s generation=%s individuals=%s\n",
		snapshot.RunID, humanize.Comma(int64(snapshot.Generation)), humanize.Comma(int64(len(snapshot.Individuals))))
	for _, individual := range snapshot.Individuals {
		fmt.Fprintf(stdout, "id=%s fitness=%.6f genes=%s\n", individual.ID, individual.Fitness, formatGenes(individual.Genes))
	}
	return nil
}

func formatGenes(genes []float64) string {
	parts := make([]string, len(genes))
	for i, g := range genes {
		parts[i] = humanize.FtoaWithDigits(g, 4)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: gacorectl <run|runs|fitness|diagnostics|population> [flags]", msg)
}
