package evo

import "genopt/internal/genotype"

// crossover produces the configured number of haploid children from two
// haploid parents by simple single-point crossover. Each child pair picks
// an independent crossover point per chromosome; a point equal to the
// chromosome length leaves the pair as plain copies of the parents.
func (o *Optimizer) crossover(parent1, parent2 *genotype.Genotype) []*genotype.Genotype {
	children := make([]*genotype.Genotype, 0, o.cfg.children)
	for pair := 0; pair < o.cfg.children; pair += 2 {
		genome1 := make([]genotype.Chromosome, parent1.Chromosomes())
		genome2 := make([]genotype.Chromosome, parent1.Chromosomes())
		for i := range genome1 {
			c1 := parent1.Chromosome(i)
			c2 := parent2.Chromosome(i)
			length := c1.Length()

			point := length
			if length > 1 && o.rng.Float64() <= o.pCrossover {
				point = 1 + o.rng.Intn(length-1)
				o.crossovers++
			}

			child1 := genotype.NewChromosome(length, 1)
			child2 := genotype.NewChromosome(length, 1)
			for j := 0; j < point; j++ {
				child1.Set(j, 0, c1.At(j, 0))
				child2.Set(j, 0, c2.At(j, 0))
			}
			for j := point; j < length; j++ {
				child1.Set(j, 0, c2.At(j, 0))
				child2.Set(j, 0, c1.At(j, 0))
			}
			genome1[i] = child1
			genome2[i] = child2
		}
		children = append(children,
			genotype.New(genome1, parent1.Alphabet()),
			genotype.New(genome2, parent1.Alphabet()))
	}
	return children
}

// pmxCrossover produces children by partially-matched crossover, which
// exchanges a random segment between two permutations and repairs the
// duplicates so both children stay valid permutations.
func (o *Optimizer) pmxCrossover(parent1, parent2 *genotype.Genotype) []*genotype.Genotype {
	children := make([]*genotype.Genotype, 0, o.cfg.children)
	for pair := 0; pair < o.cfg.children; pair += 2 {
		child1 := genotype.New(parent1.Genome(), parent1.Alphabet())
		child2 := genotype.New(parent2.Genome(), parent2.Alphabet())
		for i := 0; i < child1.Chromosomes(); i++ {
			if o.rng.Float64() > o.pCrossover {
				continue
			}
			c1 := child1.Chromosome(i)
			c2 := child2.Chromosome(i)
			length := c1.Length()

			low, high := o.rng.Intn(length), o.rng.Intn(length)
			if low > high {
				low, high = high, low
			}
			for j := low; j <= high; j++ {
				a1 := c1.At(j, 0)
				a2 := c2.At(j, 0)
				j1 := indexOfAllele(c1, a2)
				j2 := indexOfAllele(c2, a1)
				c1.Set(j, 0, a2)
				c2.Set(j, 0, a1)
				c1.Set(j1, 0, a1)
				c2.Set(j2, 0, a2)
			}
			o.crossovers++
		}
		children = append(children, child1, child2)
	}
	return children
}

func indexOfAllele(c *genotype.Chromosome, v float64) int {
	for j := 0; j < c.Length(); j++ {
		if c.At(j, 0) == v {
			return j
		}
	}
	return -1
}

// makeHaploid splits a diploid genotype into its two haploid gametes, one
// per chromosome set.
func (o *Optimizer) makeHaploid(parent *genotype.Genotype) (*genotype.Genotype, *genotype.Genotype) {
	gametes := [2][]genotype.Chromosome{}
	for k := 0; k < 2; k++ {
		gametes[k] = make([]genotype.Chromosome, parent.Chromosomes())
		for i := range gametes[k] {
			c := parent.Chromosome(i)
			gamete := genotype.NewChromosome(c.Length(), 1)
			for j := 0; j < c.Length(); j++ {
				gamete.Set(j, 0, c.At(j, k))
			}
			gametes[k][i] = gamete
		}
	}
	return genotype.New(gametes[0], parent.Alphabet()), genotype.New(gametes[1], parent.Alphabet())
}

// fertilize pairs maternal and paternal gametes one-to-one into diploid
// children, with the maternal allele in set 0 and the paternal in set 1.
func (o *Optimizer) fertilize(maternal, paternal []*genotype.Genotype) []*genotype.Genotype {
	children := make([]*genotype.Genotype, 0, len(maternal))
	for n := range maternal {
		genome := make([]genotype.Chromosome, maternal[n].Chromosomes())
		for i := range genome {
			mc := maternal[n].Chromosome(i)
			pc := paternal[n].Chromosome(i)
			c := genotype.NewChromosome(mc.Length(), 2)
			for j := 0; j < mc.Length(); j++ {
				c.Set(j, 0, mc.At(j, 0))
				c.Set(j, 1, pc.At(j, 0))
			}
			genome[i] = c
		}
		children = append(children, genotype.New(genome, maternal[n].Alphabet()))
	}
	return children
}
