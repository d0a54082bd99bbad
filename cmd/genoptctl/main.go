package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"genopt/internal/stats"
	"genopt/internal/storage"
	genoptapi "genopt/pkg/genopt"
)

const (
	benchmarksDir = "benchmarks"
	exportsDir    = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "statistics":
		return runStatistics(ctx, args[1:])
	case "best":
		return runBest(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "genopt.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := genoptapi.New(genoptapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "genopt.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := genoptapi.New(genoptapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	objectiveName := fs.String("objective", "poly5", "objective: poly5|poly7|password|tsp")
	target := fs.String("target", "", "password objective target string")
	cities := fs.Int("cities", 10, "tsp objective city count")
	population := fs.Int("pop", 50, "population size")
	generations := fs.Int("gens", 100, "generation count")
	seed := fs.Int64("seed", 1, "rng seed")
	chromosomes := fs.Int("chromosomes", 1, "chromosome count")
	chromosomeLength := fs.Int("length", 0, "gene count per chromosome (0 uses the objective default)")
	chromosomeSets := fs.Int("sets", 0, "chromosome sets: 1 haploid, 2 diploid (0 uses the default)")
	alphabetName := fs.String("alphabet", "", "alphabet: binary|triallelic|alpha|alnum|characters|continuous (empty uses the default)")
	pmx := fs.Bool("pmx", false, "permutation mode with partially-matched crossover")
	pCrossover := fs.Float64("p-crossover", -1, "crossover probability (<0 uses the default)")
	pMutation := fs.Float64("p-mutation", -1, "mutation probability (<0 uses the default)")
	pInversion := fs.Float64("p-inversion", -1, "inversion probability (<0 uses the default)")
	growth := fs.Float64("growth", 0, "population growth factor per generation (0 uses the default)")
	overpopulation := fs.Float64("overpopulation", 0, "offspring over-production factor (0 uses the default)")
	fitnessScale := fs.Float64("fitness-scale", -1, "linear fitness scaling factor, 0 disables (<0 uses the default)")
	monogamous := fs.Bool("monogamous", false, "monogamous mating")
	children := fs.Int("children", 0, "children per mating, even (0 uses the default)")
	mortalBest := fs.Bool("mortal-best", false, "let the best individual die with its generation")
	floatSigma := fs.Float64("float-sigma", 0, "continuous mutation standard deviation (0 uses the default)")
	floatSigmaAdapt := fs.Float64("float-sigma-adapt", 0, "continuous sigma adaptation factor (0 uses the default)")
	maxFitness := fs.Float64("max-fitness", -1, "early-stop fitness goal (<0 disables)")
	parallel := fs.Bool("parallel", false, "evaluate fitness in parallel")
	workers := fs.Int("workers", 0, "parallel evaluation worker count (0 uses all CPUs)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "genopt.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = genoptapi.RunRequest{
			Objective:        *objectiveName,
			Target:           *target,
			Cities:           *cities,
			Population:       *population,
			Generations:      *generations,
			Seed:             *seed,
			Chromosomes:      *chromosomes,
			ChromosomeLength: *chromosomeLength,
			ChromosomeSets:   *chromosomeSets,
			Alphabet:         *alphabetName,
			PMX:              *pmx,
			PopulationGrowth: *growth,
			Overpopulation:   *overpopulation,
			Monogamous:       *monogamous,
			Children:         *children,
			FloatSigma:       *floatSigma,
			FloatSigmaAdapt:  *floatSigmaAdapt,
			Parallel:         *parallel,
			Workers:          *workers,
		}
		if *pCrossover >= 0 {
			req.PCrossover = pCrossover
		}
		if *pMutation >= 0 {
			req.PMutation = pMutation
		}
		if *pInversion >= 0 {
			req.PInversion = pInversion
		}
		if *fitnessScale >= 0 {
			req.FitnessScale = fitnessScale
		}
		if *mortalBest {
			immortal := false
			req.BestImmortal = &immortal
		}
		if *maxFitness >= 0 {
			req.MaxFitness = maxFitness
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"objective":         *objectiveName,
			"target":            *target,
			"cities":            *cities,
			"pop":               *population,
			"gens":              *generations,
			"seed":              *seed,
			"chromosomes":       *chromosomes,
			"length":            *chromosomeLength,
			"sets":              *chromosomeSets,
			"alphabet":          *alphabetName,
			"pmx":               *pmx,
			"p-crossover":       *pCrossover,
			"p-mutation":        *pMutation,
			"p-inversion":       *pInversion,
			"growth":            *growth,
			"overpopulation":    *overpopulation,
			"fitness-scale":     *fitnessScale,
			"monogamous":        *monogamous,
			"children":          *children,
			"mortal-best":       *mortalBest,
			"float-sigma":       *floatSigma,
			"float-sigma-adapt": *floatSigmaAdapt,
			"max-fitness":       *maxFitness,
			"parallel":          *parallel,
			"workers":           *workers,
		})
	}

	client, err := genoptapi.New(genoptapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
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
	fmt.Printf("run completed run_id=%s objective=%s pop=%d gens=%d seed=%d\n",
		summary.RunID, req.Objective, req.Population, summary.Generations, req.Seed)
	for i, best := range summary.BestByGeneration {
		fmt.Printf("generation=%d best_fitness=%.6f\n", i, best)
	}
	fmt.Printf("final_best_fitness=%.6f\n", summary.FinalBestFitness)
	fmt.Printf("best_genotype=%s\n", summary.BestGenotype)
	fmt.Printf("best_phenotype=%s\n", summary.BestPhenotype)
	fmt.Printf("final_population=%d\n", summary.FinalPopulation)
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	entries, err := stats.ListRunIndex(benchmarksDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if len(entries) > *limit {
		entries = entries[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("run_id=%s created_at=%s objective=%s seed=%d pop=%d gens=%d pmx=%t monogamous=%t final_best_fitness=%.6f\n",
			e.RunID,
			e.CreatedAtUTC,
			e.Objective,
			e.Seed,
			e.PopulationSize,
			e.Generations,
			e.PMX,
			e.Monogamous,
			e.FinalBestFitness,
		)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run from run index")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "genopt.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("fitness requires --run-id or --latest")
	}

	client, err := genoptapi.New(genoptapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, genoptapi.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for i, best := range history {
		fmt.Printf("generation=%d best_fitness=%.6f\n", i, best)
	}
	return nil
}

func runStatistics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("statistics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show statistics for the most recent run from run index")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit statistics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "genopt.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("statistics requires --run-id or --latest")
	}

	client, err := genoptapi.New(genoptapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	statistics, err := client.Statistics(ctx, genoptapi.StatisticsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(statistics) == 0 {
		fmt.Println("no statistics")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(statistics)
	}

	for _, entry := range statistics {
		divorceDisplay := "n/a"
		if entry.DivorceRate != nil {
			divorceDisplay = fmt.Sprintf("%.4f", *entry.DivorceRate)
		}
		fmt.Printf("generation=%d mean=%.6f variance=%.6f min=%.6f max=%.6f crossovers=%d mutations=%d inversions=%d divorce_rate=%s\n",
			entry.Generation,
			entry.Mean,
			entry.Variance,
			entry.Min,
			entry.Max,
			entry.Crossovers,
			entry.Mutations,
			entry.Inversions,
			divorceDisplay,
		)
	}
	return nil
}

func runBest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("best", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show the best individual of the most recent run from run index")
	jsonOut := fs.Bool("json", false, "emit best record as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "genopt.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("best requires --run-id or --latest")
	}

	client, err := genoptapi.New(genoptapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	best, err := client.Best(ctx, genoptapi.BestRequest{
		RunID:  *runID,
		Latest: *latest,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(best)
	}

	fmt.Printf("run_id=%s\n", best.RunID)
	fmt.Printf("genotype=%s\n", best.Genotype)
	fmt.Printf("phenotype=%s\n", best.Phenotype)
	fmt.Printf("fitness=%.6f\n", best.Fitness)
	return nil
}

func runExport(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}
	if *latest {
		entries, err := stats.ListRunIndex(benchmarksDir)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.New("no runs available to export")
		}
		*runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(benchmarksDir, *runID, *outDir)
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", *runID, filepath.Clean(exportedDir))
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: genoptctl <init|reset|run|runs|fitness|statistics|best|export> [flags]", msg)
}
