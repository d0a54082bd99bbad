package evo

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"genopt/internal/decode"
	"genopt/internal/genotype"
	"genopt/internal/objective"
)

// ErrInvalidConfig is wrapped by all construction-time configuration
// failures.
var ErrInvalidConfig = errors.New("invalid optimizer configuration")

// Hook is invoked once after every generation, including generation 0. It
// may adjust the optimizer's tuning knobs through the setter methods but
// must not mutate the population or statistics.
type Hook func(o *Optimizer)

// Config carries the construction-time options of an Optimizer. Pointer
// fields distinguish "unset" from explicit zero; unset fields receive
// alphabet- and mode-dependent defaults during resolution.
type Config struct {
	Objective objective.Objective
	Decoder   decode.Decoder

	// Chromosomes may be left 0 when ChromosomeLengths is fully
	// specified. A single-element ChromosomeLengths is broadcast when
	// Chromosomes asks for more.
	Chromosomes       int
	ChromosomeLengths []int
	PopulationSize    int

	// Alphabet defaults to {0,1} for haploid and {-1,0,1} for diploid
	// genomes; for PMX it defaults to a permutation of 0..length-1.
	Alphabet *genotype.Alphabet
	PMX      bool
	// ChromosomeSets is the ploidy, 1 (default) or 2.
	ChromosomeSets int

	PCrossover *float64
	PMutation  *float64
	PInversion *float64

	PopulationGrowth float64 // default 1.0
	Overpopulation   float64 // default 1.3

	// FitnessScale > 1 enables linear fitness scaling with that factor; 0
	// disables it. Unset selects 1.6 for plain discrete alphabets and
	// disabled for continuous, character, and permutation ones.
	FitnessScale *float64

	Monogamous bool
	// Children per mating, default 2, must be even.
	Children int
	// BestImmortal defaults to true: the fittest individual survives
	// unchanged into the next generation.
	BestImmortal *bool

	FloatSigma      float64 // default 1.2
	FloatSigmaAdapt float64 // default 0.85

	Hook     Hook
	Parallel bool
	Workers  int
	// Seed 0 draws from the clock.
	Seed int64
}

type resolved struct {
	objective      objective.Objective
	decoder        decode.Decoder
	lengths        []int
	sets           int
	alphabet       genotype.Alphabet
	pmx            bool
	populationSize int
	monogamous     bool
	children       int
	bestImmortal   bool
	parallel       bool
	workers        int
	seed           int64
	hook           Hook

	pCrossover       float64
	pMutation        float64
	pInversion       float64
	populationGrowth float64
	overpopulation   float64
	fitnessScale     float64
	scalingEnabled   bool
	floatSigma       float64
	floatSigmaAdapt  float64
}

// resolveConfig validates cfg and applies the mode-dependent defaults in a
// single pass, so the engine never needs conditional defaulting.
func resolveConfig(cfg Config) (resolved, error) {
	var r resolved

	if cfg.Objective == nil {
		return r, fmt.Errorf("%w: objective function is required", ErrInvalidConfig)
	}
	r.objective = cfg.Objective
	r.decoder = cfg.Decoder
	if r.decoder == nil {
		r.decoder = decode.Generic
	}

	if cfg.PopulationSize <= 0 {
		return r, fmt.Errorf("%w: population size must be > 0", ErrInvalidConfig)
	}
	r.populationSize = cfg.PopulationSize

	lengths := append([]int(nil), cfg.ChromosomeLengths...)
	if len(lengths) == 0 {
		return r, fmt.Errorf("%w: chromosome lengths are required", ErrInvalidConfig)
	}
	if cfg.Chromosomes > 0 && cfg.Chromosomes != len(lengths) {
		if len(lengths) != 1 {
			return r, fmt.Errorf("%w: chromosome lengths must have exactly %d elements, got %d",
				ErrInvalidConfig, cfg.Chromosomes, len(lengths))
		}
		length := lengths[0]
		lengths = make([]int, cfg.Chromosomes)
		for i := range lengths {
			lengths[i] = length
		}
	}
	for i, length := range lengths {
		if length <= 0 {
			return r, fmt.Errorf("%w: chromosome %d has non-positive length %d", ErrInvalidConfig, i, length)
		}
	}
	r.lengths = lengths

	sets := cfg.ChromosomeSets
	if sets == 0 {
		sets = 1
	}
	if sets != 1 && sets != 2 {
		return r, fmt.Errorf("%w: the number of chromosome sets can only be 1 or 2, got %d", ErrInvalidConfig, sets)
	}
	r.sets = sets

	children := cfg.Children
	if children == 0 {
		children = 2
	}
	if children < 2 || children%2 != 0 {
		return r, fmt.Errorf("%w: children per mating must be a positive multiple of 2, got %d", ErrInvalidConfig, children)
	}
	r.children = children

	r.pmx = cfg.PMX
	var alphabet genotype.Alphabet
	switch {
	case cfg.Alphabet != nil:
		alphabet = *cfg.Alphabet
	case r.pmx:
		alphabet = genotype.NewPermutation(genotype.Sequence(lengths[0]))
	case sets == 1:
		alphabet = genotype.DefaultHaploid()
	default:
		alphabet = genotype.DefaultDiploid()
	}
	if alphabet.Kind() == genotype.Permutation {
		r.pmx = true
	}
	if r.pmx {
		if alphabet.Kind() == genotype.Continuous {
			return r, fmt.Errorf("%w: pmx requires a discrete alphabet", ErrInvalidConfig)
		}
		if alphabet.Kind() == genotype.Discrete {
			alphabet = genotype.NewPermutation(alphabet.Symbols())
		}
		for i, length := range lengths {
			if length != alphabet.Len() {
				return r, fmt.Errorf("%w: pmx chromosome %d length %d must equal alphabet length %d",
					ErrInvalidConfig, i, length, alphabet.Len())
			}
		}
		if sets != 1 {
			return r, fmt.Errorf("%w: pmx only works with haploid chromosome sets", ErrInvalidConfig)
		}
		if children != 2 {
			return r, fmt.Errorf("%w: pmx always produces exactly two children", ErrInvalidConfig)
		}
	}
	if alphabet.Kind() == genotype.Continuous && sets == 2 {
		return r, fmt.Errorf("%w: continuous alphabets only work with haploid chromosomes", ErrInvalidConfig)
	}
	if alphabet.Kind() != genotype.Continuous && alphabet.Len() < 2 {
		return r, fmt.Errorf("%w: discrete alphabets need at least 2 symbols, got %d", ErrInvalidConfig, alphabet.Len())
	}
	r.alphabet = alphabet

	continuous := alphabet.Kind() == genotype.Continuous
	switch {
	case cfg.PCrossover != nil:
		r.pCrossover = *cfg.PCrossover
	case continuous:
		r.pCrossover = 0.0
	case r.pmx:
		r.pCrossover = 0.9
	default:
		r.pCrossover = 0.6
	}
	switch {
	case cfg.PMutation != nil:
		r.pMutation = *cfg.PMutation
	case continuous:
		r.pMutation = 0.3
	case r.pmx:
		r.pMutation = 0.4
	default:
		r.pMutation = 0.0333
	}
	if cfg.PInversion != nil {
		r.pInversion = *cfg.PInversion
	}

	switch {
	case cfg.FitnessScale == nil:
		if !continuous && !r.pmx && !alphabet.IsCharacter() {
			r.fitnessScale = 1.6
			r.scalingEnabled = true
		}
	case *cfg.FitnessScale == 0:
		// explicitly disabled
	case *cfg.FitnessScale > 1:
		r.fitnessScale = *cfg.FitnessScale
		r.scalingEnabled = true
	default:
		return r, fmt.Errorf("%w: fitness scale must be > 1 or 0 to disable, got %v", ErrInvalidConfig, *cfg.FitnessScale)
	}

	r.populationGrowth = cfg.PopulationGrowth
	if r.populationGrowth == 0 {
		r.populationGrowth = 1.0
	}
	r.overpopulation = cfg.Overpopulation
	if r.overpopulation == 0 {
		r.overpopulation = 1.3
	}
	r.floatSigma = cfg.FloatSigma
	if r.floatSigma == 0 {
		r.floatSigma = 1.2
	}
	r.floatSigmaAdapt = cfg.FloatSigmaAdapt
	if r.floatSigmaAdapt == 0 {
		r.floatSigmaAdapt = 0.85
	}

	r.monogamous = cfg.Monogamous
	r.bestImmortal = true
	if cfg.BestImmortal != nil {
		r.bestImmortal = *cfg.BestImmortal
	}

	r.parallel = cfg.Parallel
	r.workers = cfg.Workers
	if r.parallel && r.workers <= 0 {
		r.workers = runtime.NumCPU()
	}

	r.seed = cfg.Seed
	if r.seed == 0 {
		r.seed = time.Now().UnixNano()
	}
	r.hook = cfg.Hook

	return r, nil
}
