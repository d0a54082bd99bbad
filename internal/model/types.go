package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord summarizes one completed optimization run.
type RunRecord struct {
	VersionedRecord
	ID                string  `json:"id"`
	CreatedAtUTC      string  `json:"created_at_utc"`
	Objective         string  `json:"objective"`
	Seed              int64   `json:"seed"`
	PopulationSize    int     `json:"population_size"`
	Generations       int     `json:"generations"`
	ChromosomeLengths []int   `json:"chromosome_lengths"`
	ChromosomeSets    int     `json:"chromosome_sets"`
	PMX               bool    `json:"pmx"`
	Monogamous        bool    `json:"monogamous"`
	FinalPopulation   int     `json:"final_population"`
	FinalBestFitness  float64 `json:"final_best_fitness"`
}

// GenerationStats is the persisted form of one generation's statistics,
// recorded before survivor selection. DivorceRate is present only for
// monogamous runs.
type GenerationStats struct {
	Generation  int      `json:"generation"`
	Mean        float64  `json:"mean"`
	Variance    float64  `json:"variance"`
	Min         float64  `json:"min"`
	Max         float64  `json:"max"`
	Crossovers  int      `json:"crossovers"`
	Mutations   int      `json:"mutations"`
	Inversions  int      `json:"inversions"`
	DivorceRate *float64 `json:"divorce_rate,omitempty"`
}

// BestRecord stores the best individual of a run in rendered form.
type BestRecord struct {
	VersionedRecord
	RunID     string  `json:"run_id"`
	Genotype  string  `json:"genotype"`
	Phenotype string  `json:"phenotype"`
	Fitness   float64 `json:"fitness"`
}
