// Package genotype holds the genetic representation of one candidate
// solution: allele alphabets, chromosomes, and the Genotype with its raw
// and scaled fitness.
package genotype

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// ErrInvalidFitness is returned when a fitness value is negative or NaN.
var ErrInvalidFitness = errors.New("fitness must be a non-negative value")

// Chromosome is a fixed-length ordered sequence of genes, each holding one
// allele value per chromosome set (ploidy column). Storage is row-major:
// gene-major, set-minor.
type Chromosome struct {
	length  int
	ploidy  int
	alleles []float64
}

// NewChromosome allocates a zeroed length×ploidy chromosome.
func NewChromosome(length, ploidy int) Chromosome {
	return Chromosome{
		length:  length,
		ploidy:  ploidy,
		alleles: make([]float64, length*ploidy),
	}
}

func (c Chromosome) Length() int {
	return c.length
}

func (c Chromosome) Ploidy() int {
	return c.ploidy
}

// At returns the allele value of gene at the given chromosome set.
func (c Chromosome) At(gene, set int) float64 {
	return c.alleles[gene*c.ploidy+set]
}

// Set stores an allele value for gene at the given chromosome set.
func (c *Chromosome) Set(gene, set int, v float64) {
	c.alleles[gene*c.ploidy+set] = v
}

// Swap exchanges the alleles of two genes within one chromosome set.
func (c *Chromosome) Swap(gene1, gene2, set int) {
	i, j := gene1*c.ploidy+set, gene2*c.ploidy+set
	c.alleles[i], c.alleles[j] = c.alleles[j], c.alleles[i]
}

func (c Chromosome) clone() Chromosome {
	return Chromosome{
		length:  c.length,
		ploidy:  c.ploidy,
		alleles: append([]float64(nil), c.alleles...),
	}
}

// Genotype is the full genetic encoding of one individual: its chromosomes
// plus the raw and scaled fitness of the corresponding phenotype.
type Genotype struct {
	genome        []Chromosome
	alphabet      Alphabet
	ploidy        int
	fitness       float64
	scaledFitness float64
}

// NewRandom builds a genotype with a uniformly random genome: independent
// alphabet draws per gene and set, unit-interval draws for continuous
// alphabets, or one random permutation of the symbol set per chromosome in
// permutation mode.
func NewRandom(rng *rand.Rand, lengths []int, ploidy int, alphabet Alphabet) *Genotype {
	genome := make([]Chromosome, len(lengths))
	for i, length := range lengths {
		c := NewChromosome(length, ploidy)
		switch alphabet.Kind() {
		case Continuous:
			for j := 0; j < length; j++ {
				for k := 0; k < ploidy; k++ {
					c.Set(j, k, rng.Float64())
				}
			}
		case Permutation:
			for k := 0; k < ploidy; k++ {
				for j, idx := range rng.Perm(alphabet.Len()) {
					c.Set(j, k, alphabet.Symbol(idx))
				}
			}
		default:
			for j := 0; j < length; j++ {
				for k := 0; k < ploidy; k++ {
					c.Set(j, k, alphabet.Symbol(rng.Intn(alphabet.Len())))
				}
			}
		}
		genome[i] = c
	}
	return &Genotype{genome: genome, alphabet: alphabet, ploidy: ploidy}
}

// New builds a genotype from explicit genome data. The genome is deep
// copied so offspring never alias parent storage.
func New(genome []Chromosome, alphabet Alphabet) *Genotype {
	copied := make([]Chromosome, len(genome))
	ploidy := 1
	for i, c := range genome {
		copied[i] = c.clone()
		ploidy = c.ploidy
	}
	return &Genotype{genome: copied, alphabet: alphabet, ploidy: ploidy}
}

// Uniform builds a genotype whose genes all hold the single allele value v.
func Uniform(lengths []int, ploidy int, alphabet Alphabet, v float64) *Genotype {
	genome := make([]Chromosome, len(lengths))
	for i, length := range lengths {
		c := NewChromosome(length, ploidy)
		for j := 0; j < length; j++ {
			for k := 0; k < ploidy; k++ {
				c.Set(j, k, v)
			}
		}
		genome[i] = c
	}
	return &Genotype{genome: genome, alphabet: alphabet, ploidy: ploidy}
}

// Fitness returns the raw fitness assigned by the last evaluation.
func (g *Genotype) Fitness() float64 {
	return g.fitness
}

// SetFitness assigns the raw fitness; negative and NaN values are rejected.
func (g *Genotype) SetFitness(v float64) error {
	if v < 0 || math.IsNaN(v) {
		return fmt.Errorf("%w, got %v", ErrInvalidFitness, v)
	}
	g.fitness = v
	return nil
}

// ScaledFitness returns the scaled fitness used for mate selection. It
// equals the raw fitness when scaling is disabled.
func (g *Genotype) ScaledFitness() float64 {
	return g.scaledFitness
}

// SetScaledFitness assigns the scaled fitness; negative and NaN values are
// rejected.
func (g *Genotype) SetScaledFitness(v float64) error {
	if v < 0 || math.IsNaN(v) {
		return fmt.Errorf("scaled %w, got %v", ErrInvalidFitness, v)
	}
	g.scaledFitness = v
	return nil
}

// Chromosomes returns the number of chromosomes in one complete set.
func (g *Genotype) Chromosomes() int {
	return len(g.genome)
}

// ChromosomeLengths returns the gene count of each chromosome.
func (g *Genotype) ChromosomeLengths() []int {
	lengths := make([]int, len(g.genome))
	for i, c := range g.genome {
		lengths[i] = c.length
	}
	return lengths
}

// Chromosome returns the i-th chromosome. The returned value shares
// storage with the genotype; mutate it only through operator code that
// owns the genotype.
func (g *Genotype) Chromosome(i int) *Chromosome {
	return &g.genome[i]
}

// Genome returns the chromosomes of this genotype. Shared storage; callers
// that need an independent genome must pass it through New.
func (g *Genotype) Genome() []Chromosome {
	return g.genome
}

func (g *Genotype) Haploid() bool {
	return g.ploidy == 1
}

func (g *Genotype) Diploid() bool {
	return g.ploidy == 2
}

func (g *Genotype) Ploidy() int {
	return g.ploidy
}

func (g *Genotype) Alphabet() Alphabet {
	return g.alphabet
}

// PMX reports whether this genotype is in permutation (partially-matched
// crossover) mode.
func (g *Genotype) PMX() bool {
	return g.alphabet.Kind() == Permutation
}

// IsPermutationOf reports whether every chromosome holds each alphabet
// symbol exactly once in every chromosome set.
func (g *Genotype) IsPermutationOf(alphabet Alphabet) bool {
	for _, c := range g.genome {
		for k := 0; k < c.ploidy; k++ {
			seen := make(map[float64]bool, c.length)
			for j := 0; j < c.length; j++ {
				seen[c.At(j, k)] = true
			}
			if len(seen) != alphabet.Len() {
				return false
			}
			for _, s := range alphabet.Symbols() {
				if !seen[s] {
					return false
				}
			}
		}
	}
	return true
}

// String renders the genome: space-separated first-set values for
// continuous and permutation genotypes, concatenated symbols for haploid
// discrete ones, and parenthesized per-set pairs for diploid ones.
// Chromosomes are comma separated.
func (g *Genotype) String() string {
	var b strings.Builder
	for i, c := range g.genome {
		if i > 0 {
			b.WriteString(", ")
		}
		switch {
		case g.alphabet.Kind() == Continuous || g.PMX():
			for j := 0; j < c.length; j++ {
				if j > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(g.alphabet.Format(c.At(j, 0)))
			}
		case g.Haploid():
			for j := 0; j < c.length; j++ {
				b.WriteString(g.alphabet.Format(c.At(j, 0)))
			}
		default:
			b.WriteByte('(')
			for j := 0; j < c.length; j++ {
				b.WriteString(g.alphabet.Format(c.At(j, 0)))
			}
			b.WriteString("),(")
			for j := 0; j < c.length; j++ {
				b.WriteString(g.alphabet.Format(c.At(j, 1)))
			}
			b.WriteByte(')')
		}
	}
	return b.String()
}
