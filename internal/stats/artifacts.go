// Package stats writes and reads per-run artifact directories: the run
// configuration, generation statistics, fitness history, and best
// individual of each optimization run, plus a base-directory index.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"genopt/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig is the artifact form of one run's configuration.
type RunConfig struct {
	RunID             string   `json:"run_id"`
	Objective         string   `json:"objective"`
	PopulationSize    int      `json:"population_size"`
	Generations       int      `json:"generations"`
	ChromosomeLengths []int    `json:"chromosome_lengths"`
	ChromosomeSets    int      `json:"chromosome_sets"`
	Alphabet          string   `json:"alphabet,omitempty"`
	PMX               bool     `json:"pmx"`
	PCrossover        *float64 `json:"p_crossover,omitempty"`
	PMutation         *float64 `json:"p_mutation,omitempty"`
	PInversion        *float64 `json:"p_inversion,omitempty"`
	PopulationGrowth  float64  `json:"population_growth,omitempty"`
	Overpopulation    float64  `json:"overpopulation,omitempty"`
	FitnessScale      *float64 `json:"fitness_scale,omitempty"`
	Monogamous        bool     `json:"monogamous"`
	Children          int      `json:"children,omitempty"`
	BestImmortal      *bool    `json:"best_immortal,omitempty"`
	FloatSigma        float64  `json:"float_sigma,omitempty"`
	FloatSigmaAdapt   float64  `json:"float_sigma_adapt,omitempty"`
	MaxFitness        *float64 `json:"max_fitness,omitempty"`
	Parallel          bool     `json:"parallel"`
	Workers           int      `json:"workers,omitempty"`
	Seed              int64    `json:"seed"`
}

// RunArtifacts is everything written into one run's artifact directory.
type RunArtifacts struct {
	Config           RunConfig               `json:"config"`
	Statistics       []model.GenerationStats `json:"statistics"`
	BestByGeneration []float64               `json:"best_by_generation"`
	FinalBestFitness float64                 `json:"final_best_fitness"`
	Best             model.BestRecord        `json:"best"`
}

// RunIndexEntry is one row of the base directory's run index.
type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	Objective        string  `json:"objective"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	Seed             int64   `json:"seed"`
	PMX              bool    `json:"pmx"`
	Monogamous       bool    `json:"monogamous"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

// WriteRunArtifacts writes the full artifact set for one run into
// baseDir/<run id> and returns the run directory path.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "run_config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeStatisticsCSV(filepath.Join(runDir, "statistics.csv"), artifacts.Statistics); err != nil {
		return "", err
	}
	if err := writeFitnessHistoryCSV(filepath.Join(runDir, "fitness_history.csv"), artifacts.BestByGeneration); err != nil {
		return "", err
	}
	if err := writeBest(filepath.Join(runDir, "best.txt"), artifacts.Best); err != nil {
		return "", err
	}

	return runDir, nil
}

// AppendRunIndex inserts or replaces the index entry for a run. The file
// keeps append order; ListRunIndex sorts on read, so the position of an
// entry in the file stays a faithful tie-break for equal timestamps.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := readRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// readRunIndex loads the index file in its on-disk (append) order.
func readRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListRunIndex reads the run index, newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	entries, err := readRunIndex(baseDir)
	if err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies a run's artifact files into outDir/<run id>
// and returns the destination directory.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{"run_config.json", "statistics.csv", "fitness_history.csv", "best.txt"}
	for _, file := range files {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}

	return dst, nil
}

// ReadRunConfig loads a run's configuration artifact.
func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "run_config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

// ReadFitnessHistory loads a run's best-by-generation series.
func ReadFitnessHistory(baseDir, runID string) ([]float64, bool, error) {
	path := filepath.Join(baseDir, runID, "fitness_history.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []float64{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("fitness history header must have at least 2 columns")
	}

	history := make([]float64, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("fitness history row must have at least 2 columns")
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		history = append(history, value)
	}
	return history, true, nil
}

// ReadStatistics loads a run's per-generation statistics artifact.
func ReadStatistics(baseDir, runID string) ([]model.GenerationStats, bool, error) {
	path := filepath.Join(baseDir, runID, "statistics.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.GenerationStats{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 9 {
		return nil, false, fmt.Errorf("statistics header must have at least 9 columns")
	}

	var statistics []model.GenerationStats
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		entry, err := parseStatisticsRow(record)
		if err != nil {
			return nil, false, err
		}
		statistics = append(statistics, entry)
	}
	return statistics, true, nil
}

func writeStatisticsCSV(path string, statistics []model.GenerationStats) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"generation", "mean", "variance", "min", "max", "crossovers", "mutations", "inversions", "divorce_rate"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, entry := range statistics {
		divorce := ""
		if entry.DivorceRate != nil {
			divorce = strconv.FormatFloat(*entry.DivorceRate, 'f', -1, 64)
		}
		if err := writer.Write([]string{
			strconv.Itoa(entry.Generation),
			strconv.FormatFloat(entry.Mean, 'f', -1, 64),
			strconv.FormatFloat(entry.Variance, 'f', -1, 64),
			strconv.FormatFloat(entry.Min, 'f', -1, 64),
			strconv.FormatFloat(entry.Max, 'f', -1, 64),
			strconv.Itoa(entry.Crossovers),
			strconv.Itoa(entry.Mutations),
			strconv.Itoa(entry.Inversions),
			divorce,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseStatisticsRow(record []string) (model.GenerationStats, error) {
	if len(record) < 9 {
		return model.GenerationStats{}, fmt.Errorf("statistics row must have at least 9 columns")
	}

	generation, err := strconv.Atoi(record[0])
	if err != nil {
		return model.GenerationStats{}, err
	}
	floats := make([]float64, 4)
	for i, col := range record[1:5] {
		floats[i], err = strconv.ParseFloat(col, 64)
		if err != nil {
			return model.GenerationStats{}, err
		}
	}
	counts := make([]int, 3)
	for i, col := range record[5:8] {
		counts[i], err = strconv.Atoi(col)
		if err != nil {
			return model.GenerationStats{}, err
		}
	}

	entry := model.GenerationStats{
		Generation: generation,
		Mean:       floats[0],
		Variance:   floats[1],
		Min:        floats[2],
		Max:        floats[3],
		Crossovers: counts[0],
		Mutations:  counts[1],
		Inversions: counts[2],
	}
	if strings.TrimSpace(record[8]) != "" {
		divorce, err := strconv.ParseFloat(record[8], 64)
		if err != nil {
			return model.GenerationStats{}, err
		}
		entry.DivorceRate = &divorce
	}
	return entry, nil
}

func writeFitnessHistoryCSV(path string, bestByGeneration []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best_fitness"}); err != nil {
		return err
	}
	for i, best := range bestByGeneration {
		if err := writer.Write([]string{
			strconv.Itoa(i),
			strconv.FormatFloat(best, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeBest(path string, best model.BestRecord) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run: %s\n", best.RunID)
	fmt.Fprintf(&b, "genotype: %s\n", best.Genotype)
	fmt.Fprintf(&b, "phenotype: %s\n", best.Phenotype)
	fmt.Fprintf(&b, "fitness: %s\n", strconv.FormatFloat(best.Fitness, 'f', -1, 64))
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
