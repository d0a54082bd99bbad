// Package genopt is the public client API of the optimizer: it wires the
// evolution engine to the built-in demo objectives, persists run records
// through the configured store, and writes per-run artifacts.
package genopt

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"genopt/internal/decode"
	"genopt/internal/evo"
	"genopt/internal/genotype"
	"genopt/internal/model"
	"genopt/internal/objective"
	"genopt/internal/stats"
	"genopt/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "genopt.db"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
}

type Client struct {
	store       storage.Store
	initialized bool

	benchmarksDir string
	exportsDir    string
}

type RunRequest struct {
	Objective        string
	Target           string
	Cities           int
	Population       int
	Generations      int
	Seed             int64
	Chromosomes      int
	ChromosomeLength int
	ChromosomeSets   int
	Alphabet         string
	PMX              bool
	PCrossover       *float64
	PMutation        *float64
	PInversion       *float64
	PopulationGrowth float64
	Overpopulation   float64
	FitnessScale     *float64
	Monogamous       bool
	Children         int
	BestImmortal     *bool
	FloatSigma       float64
	FloatSigmaAdapt  float64
	MaxFitness       *float64
	Parallel         bool
	Workers          int
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	Generations      int
	FinalPopulation  int
	BestByGeneration []float64
	FinalBestFitness float64
	BestGenotype     string
	BestPhenotype    string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Objective        string
	Seed             int64
	Population       int
	Generations      int
	PMX              bool
	Monogamous       bool
	FinalBestFitness float64
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type StatisticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type BestRequest struct {
	RunID  string
	Latest bool
}

type BestItem struct {
	RunID     string
	Genotype  string
	Phenotype string
	Fitness   float64
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	if err := c.ensureStore(ctx); err != nil {
		return err
	}
	return c.store.Reset(ctx)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Objective == "" {
		req.Objective = "poly5"
	}
	if req.Population <= 0 {
		req.Population = 50
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	cfg, err := buildConfig(req)
	if err != nil {
		return RunSummary{}, err
	}

	if err := c.ensureStore(ctx); err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := fmt.Sprintf("%s-%d-%d", req.Objective, req.Seed, now.Unix())

	opt, err := evo.New(ctx, cfg)
	if err != nil {
		return RunSummary{}, err
	}
	if req.MaxFitness != nil {
		err = opt.RunUntil(ctx, req.Generations, *req.MaxFitness)
	} else {
		err = opt.Run(ctx, req.Generations)
	}
	if err != nil {
		return RunSummary{}, err
	}

	best, err := opt.Best()
	if err != nil {
		return RunSummary{}, err
	}

	statistics := opt.Statistics()
	recorded := make([]model.GenerationStats, len(statistics))
	history := make([]float64, len(statistics))
	for i, entry := range statistics {
		recorded[i] = model.GenerationStats{
			Generation: entry.Generation,
			Mean:       entry.Mean,
			Variance:   entry.Variance,
			Min:        entry.Min,
			Max:        entry.Max,
			Crossovers: entry.Crossovers,
			Mutations:  entry.Mutations,
			Inversions: entry.Inversions,
		}
		if req.Monogamous {
			divorce := entry.DivorceRate
			recorded[i].DivorceRate = &divorce
		}
		history[i] = entry.Max
	}

	versioned := model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
	run := model.RunRecord{
		VersionedRecord:   versioned,
		ID:                runID,
		CreatedAtUTC:      now.Format(time.RFC3339Nano),
		Objective:         req.Objective,
		Seed:              req.Seed,
		PopulationSize:    req.Population,
		Generations:       opt.Generation(),
		ChromosomeLengths: opt.ChromosomeLengths(),
		ChromosomeSets:    opt.ChromosomeSets(),
		PMX:               opt.PMX(),
		Monogamous:        opt.Monogamous(),
		FinalPopulation:   len(opt.Population()),
		FinalBestFitness:  best.Fitness,
	}
	bestRecord := model.BestRecord{
		VersionedRecord: versioned,
		RunID:           runID,
		Genotype:        best.Genotype.String(),
		Phenotype:       formatPhenotype(best.Phenotype),
		Fitness:         best.Fitness,
	}

	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveStatistics(ctx, runID, recorded); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveBest(ctx, bestRecord); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:             runID,
			Objective:         req.Objective,
			PopulationSize:    req.Population,
			Generations:       req.Generations,
			ChromosomeLengths: opt.ChromosomeLengths(),
			ChromosomeSets:    opt.ChromosomeSets(),
			Alphabet:          req.Alphabet,
			PMX:               opt.PMX(),
			PCrossover:        req.PCrossover,
			PMutation:         req.PMutation,
			PInversion:        req.PInversion,
			PopulationGrowth:  req.PopulationGrowth,
			Overpopulation:    req.Overpopulation,
			FitnessScale:      req.FitnessScale,
			Monogamous:        req.Monogamous,
			Children:          req.Children,
			BestImmortal:      req.BestImmortal,
			FloatSigma:        req.FloatSigma,
			FloatSigmaAdapt:   req.FloatSigmaAdapt,
			MaxFitness:        req.MaxFitness,
			Parallel:          req.Parallel,
			Workers:           req.Workers,
			Seed:              req.Seed,
		},
		Statistics:       recorded,
		BestByGeneration: history,
		FinalBestFitness: best.Fitness,
		Best:             bestRecord,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:            runID,
		Objective:        req.Objective,
		PopulationSize:   req.Population,
		Generations:      req.Generations,
		Seed:             req.Seed,
		PMX:              opt.PMX(),
		Monogamous:       req.Monogamous,
		FinalBestFitness: best.Fitness,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		ArtifactsDir:     filepath.Clean(runDir),
		Generations:      opt.Generation(),
		FinalPopulation:  len(opt.Population()),
		BestByGeneration: history,
		FinalBestFitness: best.Fitness,
		BestGenotype:     bestRecord.Genotype,
		BestPhenotype:    bestRecord.Phenotype,
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			Objective:        e.Objective,
			Seed:             e.Seed,
			Population:       e.PopulationSize,
			Generations:      e.Generations,
			PMX:              e.PMX,
			Monogamous:       e.Monogamous,
			FinalBestFitness: e.FinalBestFitness,
		})
	}
	return out, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]float64(nil), history...), nil
}

func (c *Client) Statistics(ctx context.Context, req StatisticsRequest) ([]model.GenerationStats, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	statistics, ok, err := c.store.GetStatistics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("statistics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(statistics) > req.Limit {
		statistics = statistics[:req.Limit]
	}
	out := make([]model.GenerationStats, len(statistics))
	copy(out, statistics)
	return out, nil
}

func (c *Client) Best(ctx context.Context, req BestRequest) (BestItem, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return BestItem{}, err
	}

	if err := c.ensureStore(ctx); err != nil {
		return BestItem{}, err
	}
	best, ok, err := c.store.GetBest(ctx, runID)
	if err != nil {
		return BestItem{}, err
	}
	if !ok {
		return BestItem{}, fmt.Errorf("best record not found for run id: %s", runID)
	}
	return BestItem{
		RunID:     best.RunID,
		Genotype:  best.Genotype,
		Phenotype: best.Phenotype,
		Fitness:   best.Fitness,
	}, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}

	exportedDir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) ensureStore(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func (c *Client) resolveRunID(runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("run id or latest is required")
	}
	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

// buildConfig translates a run request into an engine configuration for
// the named objective, filling in the objective's natural encoding where
// the request leaves it open.
func buildConfig(req RunRequest) (evo.Config, error) {
	alphabet, err := alphabetFromName(req.Alphabet)
	if err != nil {
		return evo.Config{}, err
	}

	chromosomes := req.Chromosomes
	if chromosomes <= 0 {
		chromosomes = 1
	}
	length := req.ChromosomeLength

	var obj objective.Objective
	switch req.Objective {
	case "poly5":
		obj = objective.NewPoly5()
		if length <= 0 {
			length = 16
		}
	case "poly7":
		obj = objective.NewPoly7()
		if length <= 0 {
			length = 16
		}
	case "password":
		target := req.Target
		pw := objective.NewPassword(target)
		obj = pw
		if alphabet == nil {
			a := genotype.Characters()
			alphabet = &a
		}
		if length <= 0 {
			length = len([]rune(pw.Target()))
		}
	case "tsp":
		cities := req.Cities
		if cities <= 0 {
			cities = 10
		}
		obj = objective.NewTSP(cities, rand.New(rand.NewSource(req.Seed)))
		if alphabet == nil {
			a := genotype.NewPermutation(genotype.Sequence(cities))
			alphabet = &a
		}
		length = alphabet.Len()
		req.PMX = true
	default:
		return evo.Config{}, fmt.Errorf("unsupported objective: %s", req.Objective)
	}

	lengths := make([]int, chromosomes)
	for i := range lengths {
		lengths[i] = length
	}

	cfg := evo.Config{
		Objective:         obj,
		Decoder:           decode.Generic,
		ChromosomeLengths: lengths,
		PopulationSize:    req.Population,
		Alphabet:          alphabet,
		PMX:               req.PMX,
		ChromosomeSets:    req.ChromosomeSets,
		PCrossover:        req.PCrossover,
		PMutation:         req.PMutation,
		PInversion:        req.PInversion,
		PopulationGrowth:  req.PopulationGrowth,
		Overpopulation:    req.Overpopulation,
		FitnessScale:      req.FitnessScale,
		Monogamous:        req.Monogamous,
		Children:          req.Children,
		BestImmortal:      req.BestImmortal,
		FloatSigma:        req.FloatSigma,
		FloatSigmaAdapt:   req.FloatSigmaAdapt,
		Parallel:          req.Parallel,
		Workers:           req.Workers,
		Seed:              req.Seed,
	}
	return cfg, nil
}

func alphabetFromName(name string) (*genotype.Alphabet, error) {
	var a genotype.Alphabet
	switch name {
	case "":
		return nil, nil
	case "binary":
		a = genotype.DefaultHaploid()
	case "triallelic":
		a = genotype.DefaultDiploid()
	case "alpha":
		a = genotype.Alpha()
	case "alnum":
		a = genotype.Alnum()
	case "characters":
		a = genotype.Characters()
	case "continuous":
		a = genotype.NewContinuous()
	default:
		return nil, fmt.Errorf("unsupported alphabet: %s", name)
	}
	return &a, nil
}

func formatPhenotype(phenotype decode.Phenotype) string {
	parts := make([]string, len(phenotype))
	for i, value := range phenotype {
		parts[i] = fmt.Sprint(value)
	}
	return strings.Join(parts, ", ")
}
