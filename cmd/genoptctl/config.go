package main

import (
	"encoding/json"
	"fmt"
	"os"

	genoptapi "genopt/pkg/genopt"
)

func loadRunRequestFromConfig(path string) (genoptapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return genoptapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return genoptapi.RunRequest{}, err
	}

	var req genoptapi.RunRequest
	if v, ok := asString(raw["objective"]); ok {
		req.Objective = v
	}
	if v, ok := asString(raw["target"]); ok {
		req.Target = v
	}
	if v, ok := asInt(raw["cities"]); ok {
		req.Cities = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["chromosomes"]); ok {
		req.Chromosomes = v
	}
	if v, ok := asInt(raw["chromosome_length"]); ok {
		req.ChromosomeLength = v
	}
	if v, ok := asInt(raw["chromosome_sets"]); ok {
		req.ChromosomeSets = v
	}
	if v, ok := asString(raw["alphabet"]); ok {
		req.Alphabet = v
	}
	if v, ok := asBool(raw["pmx"]); ok {
		req.PMX = v
	}
	if v, ok := asFloat64(raw["p_crossover"]); ok {
		req.PCrossover = &v
	}
	if v, ok := asFloat64(raw["p_mutation"]); ok {
		req.PMutation = &v
	}
	if v, ok := asFloat64(raw["p_inversion"]); ok {
		req.PInversion = &v
	}
	if v, ok := asFloat64(raw["population_growth"]); ok {
		req.PopulationGrowth = v
	}
	if v, ok := asFloat64(raw["overpopulation"]); ok {
		req.Overpopulation = v
	}
	if v, ok := asFloat64(raw["fitness_scale"]); ok {
		req.FitnessScale = &v
	}
	if v, ok := asBool(raw["monogamous"]); ok {
		req.Monogamous = v
	}
	if v, ok := asInt(raw["children"]); ok {
		req.Children = v
	}
	if v, ok := asBool(raw["best_immortal"]); ok {
		req.BestImmortal = &v
	}
	if v, ok := asFloat64(raw["float_sigma"]); ok {
		req.FloatSigma = v
	}
	if v, ok := asFloat64(raw["float_sigma_adapt"]); ok {
		req.FloatSigmaAdapt = v
	}
	if v, ok := asFloat64(raw["max_fitness"]); ok {
		req.MaxFitness = &v
	}
	if v, ok := asBool(raw["parallel"]); ok {
		req.Parallel = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}

	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func overrideFromFlags(req *genoptapi.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "objective":
			req.Objective = v.(string)
		case "target":
			req.Target = v.(string)
		case "cities":
			req.Cities = v.(int)
		case "pop":
			req.Population = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "chromosomes":
			req.Chromosomes = v.(int)
		case "length":
			req.ChromosomeLength = v.(int)
		case "sets":
			req.ChromosomeSets = v.(int)
		case "alphabet":
			req.Alphabet = v.(string)
		case "pmx":
			req.PMX = v.(bool)
		case "p-crossover":
			p := v.(float64)
			req.PCrossover = &p
		case "p-mutation":
			p := v.(float64)
			req.PMutation = &p
		case "p-inversion":
			p := v.(float64)
			req.PInversion = &p
		case "growth":
			req.PopulationGrowth = v.(float64)
		case "overpopulation":
			req.Overpopulation = v.(float64)
		case "fitness-scale":
			s := v.(float64)
			req.FitnessScale = &s
		case "monogamous":
			req.Monogamous = v.(bool)
		case "children":
			req.Children = v.(int)
		case "mortal-best":
			immortal := !v.(bool)
			req.BestImmortal = &immortal
		case "float-sigma":
			req.FloatSigma = v.(float64)
		case "float-sigma-adapt":
			req.FloatSigmaAdapt = v.(float64)
		case "max-fitness":
			m := v.(float64)
			req.MaxFitness = &m
		case "parallel":
			req.Parallel = v.(bool)
		case "workers":
			req.Workers = v.(int)
		}
	}
	if req.Objective == "" {
		req.Objective = "poly5"
	}
}

func loadOrDefaultRunRequest(configPath string) (genoptapi.RunRequest, error) {
	if configPath == "" {
		return genoptapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return genoptapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}
