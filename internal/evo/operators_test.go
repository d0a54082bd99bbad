package evo

import (
	"context"
	"math"
	"sort"
	"testing"

	"genopt/internal/genotype"
)

func newTestOptimizer(t *testing.T, cfg Config) *Optimizer {
	t.Helper()
	if cfg.Objective == nil {
		cfg.Objective = constantObjective(1)
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	o, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func alleles(g *genotype.Genotype) []float64 {
	var out []float64
	for i := 0; i < g.Chromosomes(); i++ {
		c := g.Chromosome(i)
		for k := 0; k < c.Ploidy(); k++ {
			for j := 0; j < c.Length(); j++ {
				out = append(out, c.At(j, k))
			}
		}
	}
	return out
}

func TestCrossoverComplementaryChildren(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{12},
		PopulationSize:    4,
		PCrossover:        ptrFloat(1),
	})
	alphabet := genotype.DefaultHaploid()
	parent1 := genotype.Uniform([]int{12}, 1, alphabet, 0)
	parent2 := genotype.Uniform([]int{12}, 1, alphabet, 1)

	children := o.crossover(parent1, parent2)
	if len(children) != 2 {
		t.Fatalf("got %d children", len(children))
	}
	c1 := children[0].Chromosome(0)
	c2 := children[1].Chromosome(0)
	for j := 0; j < 12; j++ {
		if c1.At(j, 0)+c2.At(j, 0) != 1 {
			t.Fatalf("gene %d: children are not complementary", j)
		}
	}
	if c1.At(0, 0) != 0 || c2.At(0, 0) != 1 {
		t.Error("children must start with their own parent's prefix")
	}
	if o.crossovers == 0 {
		t.Error("crossover counter not incremented")
	}
}

func TestCrossoverDisabledCopiesParents(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{8},
		PopulationSize:    4,
		PCrossover:        ptrFloat(0),
	})
	alphabet := genotype.DefaultHaploid()
	parent1 := genotype.Uniform([]int{8}, 1, alphabet, 0)
	parent2 := genotype.Uniform([]int{8}, 1, alphabet, 1)

	children := o.crossover(parent1, parent2)
	for j := 0; j < 8; j++ {
		if children[0].Chromosome(0).At(j, 0) != 0 || children[1].Chromosome(0).At(j, 0) != 1 {
			t.Fatal("children must be plain parent copies when crossover never fires")
		}
	}
	if o.crossovers != 0 {
		t.Errorf("crossovers=%d want 0", o.crossovers)
	}
}

func TestPMXCrossoverKeepsPermutations(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{8},
		PopulationSize:    4,
		PMX:               true,
		PCrossover:        ptrFloat(1),
	})
	pop := o.Population()
	for trial := 0; trial < 50; trial++ {
		children := o.pmxCrossover(pop[0], pop[1])
		for _, child := range children {
			if !child.IsPermutationOf(o.cfg.alphabet) {
				t.Fatalf("trial %d: child %v is not a permutation", trial, child)
			}
		}
	}
	if o.crossovers == 0 {
		t.Error("crossover counter not incremented")
	}
}

func TestMakeHaploidFertilizeRoundTrip(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{6, 4},
		PopulationSize:    4,
		ChromosomeSets:    2,
	})
	parent := o.Population()[0]
	maternal, paternal := o.makeHaploid(parent)
	if !maternal.Haploid() || !paternal.Haploid() {
		t.Fatal("gametes must be haploid")
	}

	children := o.fertilize([]*genotype.Genotype{maternal}, []*genotype.Genotype{paternal})
	if len(children) != 1 {
		t.Fatalf("got %d children", len(children))
	}
	child := children[0]
	for i := 0; i < parent.Chromosomes(); i++ {
		pc := parent.Chromosome(i)
		cc := child.Chromosome(i)
		for j := 0; j < pc.Length(); j++ {
			for k := 0; k < 2; k++ {
				if pc.At(j, k) != cc.At(j, k) {
					t.Fatalf("chromosome %d gene %d set %d differs", i, j, k)
				}
			}
		}
	}
}

func TestMutateBinaryFlipsEveryAllele(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{10},
		PopulationSize:    4,
		PMutation:         ptrFloat(1),
	})
	g := genotype.Uniform([]int{10}, 1, genotype.DefaultHaploid(), 0)
	o.mutate(g)
	for _, v := range alleles(g) {
		if v != 1 {
			t.Fatal("a certain mutation must flip every binary allele")
		}
	}
	if o.mutations != 10 {
		t.Errorf("mutations=%d want 10", o.mutations)
	}
}

func TestMutateDiscreteNeverKeepsAllele(t *testing.T) {
	alphabet := genotype.NewDiscrete([]float64{0, 1, 2, 3})
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{20},
		PopulationSize:    4,
		Alphabet:          &alphabet,
		PMutation:         ptrFloat(1),
	})
	g := genotype.Uniform([]int{20}, 1, alphabet, 2)
	o.mutate(g)
	for j, v := range alleles(g) {
		if v == 2 {
			t.Fatalf("gene %d kept its allele under a certain mutation", j)
		}
		if alphabet.IndexOf(v) < 0 {
			t.Fatalf("gene %d holds %v outside the alphabet", j, v)
		}
	}
}

func TestMutateContinuousStaysInUnitInterval(t *testing.T) {
	alphabet := genotype.NewContinuous()
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{50},
		PopulationSize:    4,
		Alphabet:          &alphabet,
		PMutation:         ptrFloat(1),
	})
	g := o.Population()[0]
	o.mutate(g)
	for j, v := range alleles(g) {
		if v < 0 || v > 1 {
			t.Fatalf("gene %d out of range: %v", j, v)
		}
	}
}

func TestMutatePermutationKeepsPermutation(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{8},
		PopulationSize:    4,
		PMX:               true,
		PMutation:         ptrFloat(1),
	})
	g := o.Population()[0]
	o.mutate(g)
	if !g.IsPermutationOf(o.cfg.alphabet) {
		t.Fatal("swap mutation broke the permutation")
	}
	if o.mutations == 0 || o.mutations%2 != 0 {
		t.Errorf("mutations=%d want a positive even count", o.mutations)
	}
}

func TestInvertPreservesAlleleMultiset(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{9},
		PopulationSize:    4,
		PInversion:        ptrFloat(1),
	})
	g := o.Population()[0]
	before := alleles(g)
	o.invert(g)
	after := alleles(g)

	sort.Float64s(before)
	sort.Float64s(after)
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("inversion changed the allele multiset")
		}
	}
	if o.inversions == 0 {
		t.Error("inversion counter not incremented")
	}
}

func setFitnesses(t *testing.T, o *Optimizer, fitnesses []float64) {
	t.Helper()
	sum, sumSq := 0.0, 0.0
	min, max := math.Inf(1), math.Inf(-1)
	for i, f := range fitnesses {
		if err := o.population[i].SetFitness(f); err != nil {
			t.Fatal(err)
		}
		if err := o.population[i].SetScaledFitness(f); err != nil {
			t.Fatal(err)
		}
		sum += f
		sumSq += f * f
		min = math.Min(min, f)
		max = math.Max(max, f)
	}
	mean := sum / float64(len(fitnesses))
	o.statistics = append(o.statistics, GenerationStats{
		Mean: mean,
		Min:  min,
		Max:  max,
	})
}

func TestScaleFitnessStraightBranch(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{4},
		PopulationSize:    4,
		FitnessScale:      ptrFloat(1.6),
	})
	setFitnesses(t, o, []float64{1, 2, 3, 6})
	if err := o.scaleFitness(o.population); err != nil {
		t.Fatal(err)
	}

	mean := 0.0
	for _, g := range o.population {
		mean += g.ScaledFitness()
	}
	mean /= 4
	if math.Abs(mean-3) > 1e-9 {
		t.Errorf("scaled mean=%v want 3", mean)
	}
	// the best individual scales to fitnessScale times the average
	if got := o.population[3].ScaledFitness(); math.Abs(got-4.8) > 1e-9 {
		t.Errorf("scaled best=%v want 4.8", got)
	}
}

func TestScaleFitnessPivotsOnMinimum(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{4},
		PopulationSize:    4,
		FitnessScale:      ptrFloat(1.6),
	})
	setFitnesses(t, o, []float64{1, 5, 5, 6})
	if err := o.scaleFitness(o.population); err != nil {
		t.Fatal(err)
	}
	if got := o.population[0].ScaledFitness(); math.Abs(got) > 1e-9 {
		t.Errorf("scaled worst=%v want 0", got)
	}
	mean := 0.0
	for _, g := range o.population {
		mean += g.ScaledFitness()
	}
	mean /= 4
	if math.Abs(mean-4.25) > 1e-9 {
		t.Errorf("scaled mean=%v want 4.25", mean)
	}
}

func TestScaleFitnessConvergedPassThrough(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{4},
		PopulationSize:    4,
		FitnessScale:      ptrFloat(1.6),
	})
	setFitnesses(t, o, []float64{2, 2, 2, 2})
	if err := o.scaleFitness(o.population); err != nil {
		t.Fatal(err)
	}
	for i, g := range o.population {
		if g.ScaledFitness() != 2 {
			t.Errorf("individual %d scaled=%v want raw pass-through", i, g.ScaledFitness())
		}
	}
}

func TestSelectSurvivorsKeepsFittest(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{4},
		PopulationSize:    4,
	})
	alphabet := genotype.DefaultHaploid()
	pool := make([]*genotype.Genotype, 10)
	for i := range pool {
		pool[i] = genotype.Uniform([]int{4}, 1, alphabet, 0)
		if err := pool[i].SetFitness(float64(i)); err != nil {
			t.Fatal(err)
		}
	}

	survivors := o.selectSurvivors(pool)
	if len(survivors) != 4 {
		t.Fatalf("got %d survivors want 4", len(survivors))
	}
	for _, s := range survivors {
		if s.Fitness() < 6 {
			t.Errorf("individual with fitness %v survived over a fitter one", s.Fitness())
		}
	}
}

func TestSelectSurvivorsGrowth(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{4},
		PopulationSize:    20,
		PopulationGrowth:  1.1,
	})
	pool := make([]*genotype.Genotype, 30)
	alphabet := genotype.DefaultHaploid()
	for i := range pool {
		pool[i] = genotype.Uniform([]int{4}, 1, alphabet, 0)
	}
	if got := len(o.selectSurvivors(pool)); got != 22 {
		t.Errorf("survivors=%d want 22", got)
	}
}

func TestFindMateSkipsConsumed(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{4},
		PopulationSize:    5,
	})
	consumed := map[int]struct{}{0: {}, 1: {}, 2: {}, 4: {}}
	for trial := 0; trial < 20; trial++ {
		if got := o.findMate(consumed); got != 3 {
			t.Fatalf("mate=%d want the only eligible index 3", got)
		}
	}
}

func TestFindMateZeroFitnessFallback(t *testing.T) {
	o := newTestOptimizer(t, Config{
		ChromosomeLengths: []int{4},
		PopulationSize:    5,
	})
	for _, g := range o.population {
		if err := g.SetScaledFitness(0); err != nil {
			t.Fatal(err)
		}
	}
	got := o.findMate(map[int]struct{}{})
	if got < 0 || got >= 5 {
		t.Fatalf("mate=%d outside the population", got)
	}
}
