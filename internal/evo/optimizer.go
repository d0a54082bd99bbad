// Package evo implements the evolutionary optimizer engine: mate
// selection, crossover, mutation, inversion, fitness scaling, survivor
// selection, and the generation loop with its statistics bookkeeping.
package evo

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"genopt/internal/decode"
	"genopt/internal/genotype"
	"genopt/internal/objective"
)

// GenerationStats records the fitness statistics and operator counts of
// one generation, computed on the over-populated pool before survivor
// selection. Generation 0 is the initial population. DivorceRate is
// meaningful only for monogamous runs.
type GenerationStats struct {
	Generation  int
	Mean        float64
	Variance    float64
	Min         float64
	Max         float64
	Crossovers  int
	Mutations   int
	Inversions  int
	DivorceRate float64
}

// Best is the best-performing individual of the current population
// together with its decoded phenotype and raw fitness.
type Best struct {
	Genotype  *genotype.Genotype
	Phenotype decode.Phenotype
	Fitness   float64
}

// Optimizer evolves a population of genotypes against an objective
// function. It owns the population and statistics exclusively; both are
// only mutated between generation barriers.
type Optimizer struct {
	cfg resolved
	rng *rand.Rand

	// tuning knobs, adjustable between generations via the hook
	pCrossover       float64
	pMutation        float64
	pInversion       float64
	populationGrowth float64
	overpopulation   float64
	fitnessScale     float64
	scalingEnabled   bool
	floatSigma       float64
	floatSigmaAdapt  float64

	populationSize int
	population     []*genotype.Genotype
	statistics     []GenerationStats

	// per-generation operator counters
	crossovers  int
	mutations   int
	inversions  int
	divorceRate float64
}

// New validates and resolves the configuration, builds and evaluates the
// random initial population, and records generation 0 statistics. The
// hook, when set, is invoked once for generation 0.
func New(ctx context.Context, cfg Config) (*Optimizer, error) {
	r, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}

	o := &Optimizer{
		cfg:              r,
		rng:              rand.New(rand.NewSource(r.seed)),
		pCrossover:       r.pCrossover,
		pMutation:        r.pMutation,
		pInversion:       r.pInversion,
		populationGrowth: r.populationGrowth,
		overpopulation:   r.overpopulation,
		fitnessScale:     r.fitnessScale,
		scalingEnabled:   r.scalingEnabled,
		floatSigma:       r.floatSigma,
		floatSigmaAdapt:  r.floatSigmaAdapt,
		populationSize:   r.populationSize,
	}

	o.population = make([]*genotype.Genotype, r.populationSize)
	for i := range o.population {
		o.population[i] = genotype.NewRandom(o.rng, r.lengths, r.sets, r.alphabet)
	}
	if r.alphabet.Kind() == genotype.Discrete && !r.alphabet.IsCharacter() &&
		r.populationSize > r.alphabet.Len() {
		// seed fringe individuals so every allele value is represented in
		// the initial population
		for k := 0; k < r.alphabet.Len(); k++ {
			o.population[k] = genotype.Uniform(r.lengths, r.sets, r.alphabet, r.alphabet.Symbol(k))
		}
	}

	if err := o.evaluate(ctx, o.population); err != nil {
		return nil, err
	}
	o.appendStatistics(o.population)
	if o.cfg.hook != nil {
		o.cfg.hook(o)
	}
	return o, nil
}

// Run advances the given number of generations.
func (o *Optimizer) Run(ctx context.Context, generations int) error {
	return o.run(ctx, generations, math.Inf(1))
}

// RunUntil advances up to the given number of generations, stopping early
// once any individual's fitness reaches maxFitness.
func (o *Optimizer) RunUntil(ctx context.Context, generations int, maxFitness float64) error {
	return o.run(ctx, generations, maxFitness)
}

func (o *Optimizer) run(ctx context.Context, generations int, maxFitness float64) error {
	for n := 0; n < generations; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.nextGeneration(ctx); err != nil {
			return err
		}
		if o.bestFitness() >= maxFitness {
			break
		}
		if o.cfg.hook != nil {
			o.cfg.hook(o)
		}
	}
	return nil
}

// nextGeneration performs one evolution step: mate selection and
// reproduction into an over-populated offspring pool, mutation and
// inversion of every offspring, evaluation, statistics, fitness scaling,
// and survivor selection.
func (o *Optimizer) nextGeneration(ctx context.Context) error {
	o.crossovers, o.mutations, o.inversions = 0, 0, 0
	if o.cfg.monogamous {
		o.divorceRate = 0
	} else {
		o.divorceRate = 1
	}

	targetSize := int(o.overpopulation * float64(o.populationSize) * o.populationGrowth)
	if o.cfg.bestImmortal {
		targetSize--
	}

	newpop := make([]*genotype.Genotype, 0, targetSize+1)
	consumed := make(map[int]struct{}, len(o.population))

	for len(newpop) < targetSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		i := o.findMate(consumed)
		consumed[i] = struct{}{}
		if len(consumed) >= len(o.population) {
			// ran out of partners; divorce everybody
			clear(consumed)
		}
		j := o.findMate(consumed)

		var children []*genotype.Genotype
		switch {
		case o.cfg.pmx:
			children = o.pmxCrossover(o.population[i], o.population[j])
		case o.cfg.sets == 1:
			children = o.crossover(o.population[i], o.population[j])
		default:
			mat1, mat2 := o.makeHaploid(o.population[i])
			pat1, pat2 := o.makeHaploid(o.population[j])
			children = o.fertilize(o.crossover(mat1, mat2), o.crossover(pat1, pat2))
		}
		for _, child := range children {
			o.mutate(child)
			o.invert(child)
		}

		if o.cfg.monogamous {
			consumed[j] = struct{}{}
		} else {
			clear(consumed)
		}
		newpop = append(newpop, children...)
		if len(consumed) >= len(o.population) {
			o.divorceRate = float64(len(o.population)-len(consumed)) / float64(len(o.population))
			clear(consumed)
		}
	}

	if o.cfg.bestImmortal {
		newpop = append(newpop, o.population[o.bestIndex()])
	}

	if err := o.evaluate(ctx, newpop); err != nil {
		return err
	}
	o.appendStatistics(newpop)
	if err := o.scaleFitness(newpop); err != nil {
		return err
	}
	o.population = o.selectSurvivors(newpop)

	if o.cfg.alphabet.Kind() == genotype.Continuous {
		// 1/5-style success rule: shrink the mutation step while the mean
		// fitness improves over five generations, grow it otherwise
		gen := o.Generation()
		if gen > 0 && gen%5 == 0 {
			if o.statistics[gen].Mean > o.statistics[gen-5].Mean {
				o.floatSigma *= o.floatSigmaAdapt
			} else {
				o.floatSigma /= o.floatSigmaAdapt
			}
		}
	}
	return nil
}

// evaluate decodes and scores every genotype, assigning raw fitness and
// initializing scaled fitness to it. A failing evaluation aborts the whole
// generation: a genotype without a valid fitness cannot participate in
// statistics, scaling, or selection.
func (o *Optimizer) evaluate(ctx context.Context, population []*genotype.Genotype) error {
	if o.cfg.parallel && len(population) > 1 {
		return o.evaluateParallel(ctx, population)
	}
	for _, individual := range population {
		fitness, err := o.evaluateGenotype(ctx, individual)
		if err != nil {
			return err
		}
		if err := o.assignFitness(individual, fitness); err != nil {
			return err
		}
	}
	return nil
}

func (o *Optimizer) evaluateParallel(ctx context.Context, population []*genotype.Genotype) error {
	type job struct {
		idx int
	}
	type result struct {
		idx     int
		fitness float64
		err     error
	}

	workerCount := o.cfg.workers
	if workerCount > len(population) {
		workerCount = len(population)
	}

	jobs := make(chan job)
	results := make(chan result, len(population))

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				fitness, err := o.evaluateGenotype(ctx, population[j.idx])
				results <- result{idx: j.idx, fitness: fitness, err: err}
			}
		}()
	}

	for i := range population {
		jobs <- job{idx: i}
	}
	close(jobs)

	wg.Wait()
	close(results)

	fitnesses := make([]float64, len(population))
	for res := range results {
		if res.err != nil {
			return res.err
		}
		fitnesses[res.idx] = res.fitness
	}
	for i, individual := range population {
		if err := o.assignFitness(individual, fitnesses[i]); err != nil {
			return err
		}
	}
	return nil
}

func (o *Optimizer) evaluateGenotype(ctx context.Context, g *genotype.Genotype) (float64, error) {
	phenotype, err := o.cfg.decoder(g)
	if err != nil {
		return 0, err
	}
	return o.cfg.objective.Evaluate(ctx, phenotype)
}

func (o *Optimizer) assignFitness(g *genotype.Genotype, fitness float64) error {
	if err := g.SetFitness(fitness); err != nil {
		return err
	}
	return g.SetScaledFitness(fitness)
}

// appendStatistics records the statistics of the given (pre-selection)
// population as the next generation entry.
func (o *Optimizer) appendStatistics(population []*genotype.Genotype) {
	sum := 0.0
	sumSquared := 0.0
	minFitness := population[0].Fitness()
	maxFitness := population[0].Fitness()
	for _, individual := range population {
		f := individual.Fitness()
		sum += f
		sumSquared += f * f
		if f > maxFitness {
			maxFitness = f
		}
		if f < minFitness {
			minFitness = f
		}
	}
	n := float64(len(population))
	mean := sum / n
	variance := sumSquared/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	o.statistics = append(o.statistics, GenerationStats{
		Generation:  len(o.statistics),
		Mean:        mean,
		Variance:    variance,
		Min:         minFitness,
		Max:         maxFitness,
		Crossovers:  o.crossovers,
		Mutations:   o.mutations,
		Inversions:  o.inversions,
		DivorceRate: o.divorceRate,
	})
}

// Objective returns the objective function under optimization.
func (o *Optimizer) Objective() objective.Objective {
	return o.cfg.objective
}

// Decoder returns the decoder mapping genotypes to phenotypes.
func (o *Optimizer) Decoder() decode.Decoder {
	return o.cfg.decoder
}

// Generation returns the current generation number, 0 being the initial
// population.
func (o *Optimizer) Generation() int {
	return len(o.statistics) - 1
}

// Statistics returns the per-generation statistics history.
func (o *Optimizer) Statistics() []GenerationStats {
	return append([]GenerationStats(nil), o.statistics...)
}

// Population returns the current population. The genotypes are shared;
// callers must treat them as read-only.
func (o *Optimizer) Population() []*genotype.Genotype {
	return append([]*genotype.Genotype(nil), o.population...)
}

// PMX reports whether the optimizer runs in permutation mode.
func (o *Optimizer) PMX() bool {
	return o.cfg.pmx
}

// Monogamous reports whether monogamous mating is enabled.
func (o *Optimizer) Monogamous() bool {
	return o.cfg.monogamous
}

// Seed returns the seed of the engine's random source.
func (o *Optimizer) Seed() int64 {
	return o.cfg.seed
}

// ChromosomeLengths returns the configured per-chromosome gene counts.
func (o *Optimizer) ChromosomeLengths() []int {
	return append([]int(nil), o.cfg.lengths...)
}

// ChromosomeSets returns the ploidy of the genomes.
func (o *Optimizer) ChromosomeSets() int {
	return o.cfg.sets
}

// Best returns the best-performing individual of the current population
// with its decoded phenotype and fitness.
func (o *Optimizer) Best() (Best, error) {
	best := o.population[o.bestIndex()]
	phenotype, err := o.cfg.decoder(best)
	if err != nil {
		return Best{}, err
	}
	return Best{Genotype: best, Phenotype: phenotype, Fitness: best.Fitness()}, nil
}

func (o *Optimizer) bestIndex() int {
	idx := 0
	for i, individual := range o.population {
		if individual.Fitness() > o.population[idx].Fitness() {
			idx = i
		}
	}
	return idx
}

func (o *Optimizer) bestFitness() float64 {
	return o.population[o.bestIndex()].Fitness()
}
