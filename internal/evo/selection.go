package evo

import (
	"math"
	"sort"

	"genopt/internal/genotype"
)

// findMate selects one mate by roulette-wheel draw over the scaled fitness
// of all individuals not in the consumed set. If every eligible individual
// has zero scaled fitness the draw degenerates and the fallback picks the
// highest-index eligible individual.
func (o *Optimizer) findMate(consumed map[int]struct{}) int {
	sum := 0.0
	for i, individual := range o.population {
		if _, taken := consumed[i]; taken {
			continue
		}
		sum += individual.ScaledFitness()
	}

	limit := o.rng.Float64() * sum
	part := 0.0
	mate := -1
	for i, individual := range o.population {
		if _, taken := consumed[i]; taken {
			continue
		}
		part += individual.ScaledFitness()
		mate = i
		if part >= limit {
			break
		}
	}
	if mate >= 0 {
		return mate
	}
	for i := len(o.population) - 1; i >= 0; i-- {
		if _, taken := consumed[i]; !taken {
			return i
		}
	}
	return 0
}

// scaleFitness applies linear fitness scaling to the whole population so
// the population average keeps its scaled value while the best individual
// scales to fitnessScale times the average. When the best fitness equals
// the average the population has converged and the raw values pass
// through unchanged.
func (o *Optimizer) scaleFitness(population []*genotype.Genotype) error {
	if !o.scalingEnabled {
		return nil
	}
	stats := o.statistics[len(o.statistics)-1]
	fmin, favg, fmax := stats.Min, stats.Mean, stats.Max
	if fmax == favg {
		return nil
	}

	var a float64
	if favg <= (fmax+fmin*(o.fitnessScale-1))/o.fitnessScale {
		a = favg * (o.fitnessScale - 1) / (fmax - favg)
	} else {
		// straight scaling would drive the minimum negative; pivot on the
		// minimum instead so it scales to zero
		a = favg / (favg - fmin)
	}
	b := favg * (1 - a)

	for _, individual := range population {
		scaled := individual.Fitness()*a + b
		if scaled < 0 {
			scaled = 0
		}
		if err := individual.SetScaledFitness(scaled); err != nil {
			return err
		}
	}
	return nil
}

// selectSurvivors grows the target population size by the growth factor,
// keeps the fittest individuals from the over-populated pool, and shuffles
// the survivors so positional bias from sorting never leaks into mating.
func (o *Optimizer) selectSurvivors(population []*genotype.Genotype) []*genotype.Genotype {
	o.populationSize = int(math.RoundToEven(float64(o.populationSize) * o.populationGrowth))
	if o.populationSize > len(population) {
		o.populationSize = len(population)
	}
	if o.populationSize == len(population) {
		return population
	}

	indices := make([]int, len(population))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return population[indices[a]].Fitness() > population[indices[b]].Fitness()
	})
	indices = indices[:o.populationSize]
	o.rng.Shuffle(len(indices), func(a, b int) {
		indices[a], indices[b] = indices[b], indices[a]
	})

	survivors := make([]*genotype.Genotype, o.populationSize)
	for i, idx := range indices {
		survivors[i] = population[idx]
	}
	return survivors
}
