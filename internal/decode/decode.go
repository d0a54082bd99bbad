// Package decode maps genotypes to the phenotype arguments consumed by
// objective functions.
package decode

import (
	"errors"
	"fmt"
	"strings"

	"genopt/internal/genotype"
)

// ErrUnsupportedEncoding is returned by the generic decoder for
// genotype/alphabet combinations it cannot interpret; callers must supply
// a custom decoder for those.
var ErrUnsupportedEncoding = errors.New("unsupported encoding for generic decoder")

// Phenotype is the argument tuple passed to an objective function.
type Phenotype []any

// Decoder maps a genotype to the phenotype its objective function expects.
type Decoder func(g *genotype.Genotype) (Phenotype, error)

// Generic decodes the common simple encodings:
//
//   - continuous or permutation haploid genotypes decode to their raw
//     values, one []float64 per chromosome (collapsed to a single slice or
//     scalar for single-chromosome or single-gene genotypes);
//   - haploid character genotypes decode to one string per chromosome
//     (a single string for one chromosome);
//   - haploid {0,1} genotypes decode each chromosome as a big-endian
//     binary fraction in [0, 1];
//   - diploid {-1,0,1} genotypes first express each gene pair as
//     abs(max(pair)), capturing dominant/recessive alleles, then apply the
//     same binary-fraction mapping.
//
// Everything else fails with ErrUnsupportedEncoding.
func Generic(g *genotype.Genotype) (Phenotype, error) {
	alphabet := g.Alphabet()

	if alphabet.Kind() == genotype.Continuous || g.PMX() {
		if g.Diploid() {
			return nil, fmt.Errorf("%w: continuous and pmx genotypes must be haploid", ErrUnsupportedEncoding)
		}
		values := make([][]float64, g.Chromosomes())
		for i := range values {
			c := g.Chromosome(i)
			row := make([]float64, c.Length())
			for j := range row {
				row[j] = c.At(j, 0)
			}
			values[i] = row
		}
		if len(values) > 1 {
			return Phenotype{values}, nil
		}
		if len(values[0]) > 1 {
			return Phenotype{values[0]}, nil
		}
		return Phenotype{values[0][0]}, nil
	}

	if alphabet.IsCharacter() {
		if g.Diploid() {
			return nil, fmt.Errorf("%w: character genotypes must be haploid", ErrUnsupportedEncoding)
		}
		words := make([]string, g.Chromosomes())
		for i := range words {
			c := g.Chromosome(i)
			var b strings.Builder
			for j := 0; j < c.Length(); j++ {
				b.WriteString(alphabet.Format(c.At(j, 0)))
			}
			words[i] = b.String()
		}
		if len(words) == 1 {
			return Phenotype{words[0]}, nil
		}
		return Phenotype{words}, nil
	}

	var express func(c *genotype.Chromosome, gene int) float64
	if g.Haploid() {
		if !alphabet.IsBinary() {
			return nil, fmt.Errorf("%w: haploid alphabet must be [0, 1]", ErrUnsupportedEncoding)
		}
		express = func(c *genotype.Chromosome, gene int) float64 {
			return c.At(gene, 0)
		}
	} else {
		if !alphabet.IsTriallelic() {
			return nil, fmt.Errorf("%w: diploid alphabet must be [-1, 0, 1]", ErrUnsupportedEncoding)
		}
		// [-1,0,1] is chosen so that abs(max) expresses dominant and
		// recessive alleles.
		express = func(c *genotype.Chromosome, gene int) float64 {
			v := max(c.At(gene, 0), c.At(gene, 1))
			if v < 0 {
				v = -v
			}
			return v
		}
	}

	values := make([]float64, g.Chromosomes())
	for i := range values {
		c := g.Chromosome(i)
		accu := 0.0
		power2 := 1.0
		for j := 1; j < c.Length(); j++ {
			power2 *= 2
		}
		denom := power2*2 - 1
		for j := 0; j < c.Length(); j++ {
			accu += express(c, j) * power2
			power2 /= 2
		}
		values[i] = accu / denom
	}
	if len(values) == 1 {
		return Phenotype{values[0]}, nil
	}
	return Phenotype{values}, nil
}
