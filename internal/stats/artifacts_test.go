package stats

import (
	"os"
	"path/filepath"
	"testing"

	"genopt/internal/model"
)

func sampleArtifacts(runID string) RunArtifacts {
	divorce := 0.25
	return RunArtifacts{
		Config: RunConfig{
			RunID:             runID,
			Objective:         "poly5",
			PopulationSize:    30,
			Generations:       2,
			ChromosomeLengths: []int{16},
			ChromosomeSets:    1,
			Seed:              7,
		},
		Statistics: []model.GenerationStats{
			{Generation: 0, Mean: 0.4, Variance: 0.01, Min: 0.1, Max: 0.7},
			{Generation: 1, Mean: 0.5, Variance: 0.02, Min: 0.2, Max: 0.8,
				Crossovers: 9, Mutations: 4, Inversions: 1, DivorceRate: &divorce},
		},
		BestByGeneration: []float64{0.7, 0.8},
		FinalBestFitness: 0.8,
		Best: model.BestRecord{
			RunID:     runID,
			Genotype:  "1010011010100110",
			Phenotype: "0.651",
			Fitness:   0.8,
		},
	}
}

func TestWriteRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	runDir, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-1"))
	if err != nil {
		t.Fatal(err)
	}
	if runDir != filepath.Join(baseDir, "run-1") {
		t.Errorf("runDir=%s", runDir)
	}
	for _, file := range []string{"run_config.json", "statistics.csv", "fitness_history.csv", "best.txt"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Errorf("%s: %v", file, err)
		}
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected an error for a missing run id")
	}
}

func TestReadRunConfigRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	if _, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-1")); err != nil {
		t.Fatal(err)
	}

	cfg, found, err := ReadRunConfig(baseDir, "run-1")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if cfg.Objective != "poly5" || cfg.PopulationSize != 30 || cfg.Seed != 7 {
		t.Errorf("got %+v", cfg)
	}

	if _, found, err := ReadRunConfig(baseDir, "missing"); err != nil || found {
		t.Errorf("found=%v err=%v for a missing run", found, err)
	}
}

func TestReadFitnessHistoryRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	if _, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-1")); err != nil {
		t.Fatal(err)
	}

	history, found, err := ReadFitnessHistory(baseDir, "run-1")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if len(history) != 2 || history[0] != 0.7 || history[1] != 0.8 {
		t.Errorf("got %v", history)
	}
}

func TestReadStatisticsRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	if _, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-1")); err != nil {
		t.Fatal(err)
	}

	statistics, found, err := ReadStatistics(baseDir, "run-1")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if len(statistics) != 2 {
		t.Fatalf("got %d rows", len(statistics))
	}
	if statistics[0].DivorceRate != nil {
		t.Error("blank divorce column must read back as absent")
	}
	row := statistics[1]
	if row.Generation != 1 || row.Mean != 0.5 || row.Crossovers != 9 || row.Inversions != 1 {
		t.Errorf("got %+v", row)
	}
	if row.DivorceRate == nil || *row.DivorceRate != 0.25 {
		t.Error("divorce rate lost in the round trip")
	}
}

func TestAppendRunIndexReplaces(t *testing.T) {
	baseDir := t.TempDir()
	entry := RunIndexEntry{
		RunID:            "run-1",
		Objective:        "poly5",
		FinalBestFitness: 0.7,
		CreatedAtUTC:     "2026-08-30T10:00:00Z",
	}
	if err := AppendRunIndex(baseDir, entry); err != nil {
		t.Fatal(err)
	}
	entry.FinalBestFitness = 0.9
	if err := AppendRunIndex(baseDir, entry); err != nil {
		t.Fatal(err)
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(index) != 1 {
		t.Fatalf("got %d entries", len(index))
	}
	if index[0].FinalBestFitness != 0.9 {
		t.Errorf("replacement lost: %+v", index[0])
	}
}

func TestListRunIndexNewestFirst(t *testing.T) {
	baseDir := t.TempDir()
	entries := []RunIndexEntry{
		{RunID: "run-old", CreatedAtUTC: "2026-08-29T10:00:00Z"},
		{RunID: "run-new", CreatedAtUTC: "2026-08-31T10:00:00Z"},
		{RunID: "run-mid", CreatedAtUTC: "2026-08-30T10:00:00Z"},
	}
	for _, entry := range entries {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatal(err)
		}
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"run-new", "run-mid", "run-old"}
	for i, id := range want {
		if index[i].RunID != id {
			t.Errorf("position %d: got %s want %s", i, index[i].RunID, id)
		}
	}
}

func TestListRunIndexEqualTimestampsLaterAppendedFirst(t *testing.T) {
	baseDir := t.TempDir()
	createdAt := "2026-08-30T10:00:00Z"
	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: id, CreatedAtUTC: createdAt}); err != nil {
			t.Fatal(err)
		}
	}

	// the file keeps append order, so reads tie-break to the later append
	onDisk, err := readRunIndex(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if onDisk[i].RunID != id {
			t.Fatalf("on-disk position %d: got %s want %s", i, onDisk[i].RunID, id)
		}
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"run-c", "run-b", "run-a"}
	for i, id := range want {
		if index[i].RunID != id {
			t.Errorf("position %d: got %s want %s", i, index[i].RunID, id)
		}
	}
}

func TestListRunIndexEmptyDir(t *testing.T) {
	index, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(index) != 0 {
		t.Errorf("got %v", index)
	}
}

func TestExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := t.TempDir()
	if _, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-1")); err != nil {
		t.Fatal(err)
	}

	dst, err := ExportRunArtifacts(baseDir, "run-1", outDir)
	if err != nil {
		t.Fatal(err)
	}
	if dst != filepath.Join(outDir, "run-1") {
		t.Errorf("dst=%s", dst)
	}
	for _, file := range []string{"run_config.json", "statistics.csv", "fitness_history.csv", "best.txt"} {
		src, err := os.ReadFile(filepath.Join(baseDir, "run-1", file))
		if err != nil {
			t.Fatal(err)
		}
		copied, err := os.ReadFile(filepath.Join(dst, file))
		if err != nil {
			t.Fatal(err)
		}
		if string(src) != string(copied) {
			t.Errorf("%s differs after export", file)
		}
	}

	if _, err := ExportRunArtifacts(baseDir, "missing", outDir); err == nil {
		t.Error("expected an error for a missing run")
	}
}
