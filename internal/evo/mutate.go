package evo

import "genopt/internal/genotype"

// mutate applies point mutation to every allele independently. Permutation
// chromosomes mutate by swapping the gene with a random partner gene at
// half the configured rate, since one swap touches two alleles. Continuous
// alleles receive Gaussian noise clamped to the unit interval; discrete
// alleles change to a uniformly drawn different symbol.
func (o *Optimizer) mutate(g *genotype.Genotype) {
	if o.pMutation == 0 {
		return
	}
	alphabet := g.Alphabet()
	threshold := o.pMutation
	increment := 1
	if g.PMX() {
		threshold /= 2
		increment = 2
	}
	for i := 0; i < g.Chromosomes(); i++ {
		c := g.Chromosome(i)
		for j := 0; j < c.Length(); j++ {
			for k := 0; k < c.Ploidy(); k++ {
				if o.rng.Float64() > threshold {
					continue
				}
				switch {
				case g.PMX():
					c.Swap(j, o.rng.Intn(c.Length()), k)
				case alphabet.Kind() == genotype.Continuous:
					v := c.At(j, k) + o.rng.NormFloat64()*o.floatSigma
					if v < 0 {
						v = 0
					}
					if v > 1 {
						v = 1
					}
					c.Set(j, k, v)
				case alphabet.Len() == 2:
					c.Set(j, k, alphabet.Symbol(1-alphabet.IndexOf(c.At(j, k))))
				default:
					exclude := alphabet.IndexOf(c.At(j, k))
					r := o.rng.Intn(alphabet.Len() - 1)
					if r >= exclude {
						r++
					}
					c.Set(j, k, alphabet.Symbol(r))
				}
				o.mutations += increment
			}
		}
	}
}

// invert reverses a randomly chosen gene segment within each chromosome
// set, with the configured per-chromosome probability.
func (o *Optimizer) invert(g *genotype.Genotype) {
	if o.pInversion == 0 {
		return
	}
	for i := 0; i < g.Chromosomes(); i++ {
		c := g.Chromosome(i)
		for k := 0; k < c.Ploidy(); k++ {
			if o.rng.Float64() > o.pInversion {
				continue
			}
			j1, j2 := o.rng.Intn(c.Length()), o.rng.Intn(c.Length())
			if j1 > j2 {
				j1, j2 = j2, j1
			}
			for j1 < j2 {
				c.Swap(j1, j2, k)
				j1++
				j2--
			}
			o.inversions++
		}
	}
}
