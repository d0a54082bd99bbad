package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := writeConfig(t, `{
		"objective": "tsp",
		"cities": 8,
		"population": 30,
		"generations": 80,
		"seed": 21,
		"pmx": true,
		"p_crossover": 0.9,
		"p_mutation": 0.4,
		"population_growth": 1.1,
		"fitness_scale": 0,
		"monogamous": true,
		"best_immortal": false,
		"max_fitness": 0.99,
		"parallel": true,
		"workers": 4
	}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if req.Objective != "tsp" || req.Cities != 8 || req.Population != 30 {
		t.Errorf("got %+v", req)
	}
	if req.Generations != 80 || req.Seed != 21 || !req.PMX {
		t.Errorf("got %+v", req)
	}
	if req.PCrossover == nil || *req.PCrossover != 0.9 {
		t.Error("p_crossover lost")
	}
	if req.PMutation == nil || *req.PMutation != 0.4 {
		t.Error("p_mutation lost")
	}
	if req.PInversion != nil {
		t.Error("absent p_inversion must stay unset")
	}
	if req.PopulationGrowth != 1.1 {
		t.Errorf("growth=%v", req.PopulationGrowth)
	}
	if req.FitnessScale == nil || *req.FitnessScale != 0 {
		t.Error("an explicit zero fitness scale must stay distinguishable from unset")
	}
	if !req.Monogamous || !req.Parallel || req.Workers != 4 {
		t.Errorf("got %+v", req)
	}
	if req.BestImmortal == nil || *req.BestImmortal {
		t.Error("best_immortal=false lost")
	}
	if req.MaxFitness == nil || *req.MaxFitness != 0.99 {
		t.Error("max_fitness lost")
	}
}

func TestLoadRunRequestIgnoresWrongTypes(t *testing.T) {
	path := writeConfig(t, `{
		"objective": 5,
		"population": "thirty",
		"pmx": "yes"
	}`)
	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if req.Objective != "" || req.Population != 0 || req.PMX {
		t.Errorf("wrong-typed keys must be ignored: %+v", req)
	}
}

func TestLoadRunRequestRejectsBadJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadOrDefaultRunRequest(t *testing.T) {
	req, err := loadOrDefaultRunRequest("")
	if err != nil {
		t.Fatal(err)
	}
	if req.Objective != "" {
		t.Errorf("empty path must yield a zero request, got %+v", req)
	}

	if _, err := loadOrDefaultRunRequest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestOverrideFromFlags(t *testing.T) {
	req, err := loadRunRequestFromConfig(writeConfig(t, `{
		"objective": "poly7",
		"population": 50,
		"seed": 3
	}`))
	if err != nil {
		t.Fatal(err)
	}

	set := map[string]bool{"pop": true, "p-mutation": true, "mortal-best": true}
	values := map[string]any{
		"pop":         25,
		"p-mutation":  0.05,
		"mortal-best": true,
		"gens":        999,
	}
	overrideFromFlags(&req, set, values)

	if req.Population != 25 {
		t.Errorf("population=%d want the flag override 25", req.Population)
	}
	if req.Generations == 999 {
		t.Error("unset flags must not override")
	}
	if req.Objective != "poly7" || req.Seed != 3 {
		t.Errorf("config values lost: %+v", req)
	}
	if req.PMutation == nil || *req.PMutation != 0.05 {
		t.Error("p-mutation override lost")
	}
	if req.BestImmortal == nil || *req.BestImmortal {
		t.Error("mortal-best must disable immortality")
	}
}

func TestOverrideFromFlagsDefaultsObjective(t *testing.T) {
	req, err := loadOrDefaultRunRequest("")
	if err != nil {
		t.Fatal(err)
	}
	overrideFromFlags(&req, map[string]bool{}, map[string]any{})
	if req.Objective != "poly5" {
		t.Errorf("objective=%q want the poly5 default", req.Objective)
	}
}
