package genotype

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestBuiltinAlphabetSizes(t *testing.T) {
	cases := []struct {
		name     string
		alphabet Alphabet
		size     int
	}{
		{"alpha", Alpha(), 53},
		{"alnum", Alnum(), 63},
		{"characters", Characters(), 95},
		{"haploid default", DefaultHaploid(), 2},
		{"diploid default", DefaultDiploid(), 3},
	}
	for _, tc := range cases {
		if got := tc.alphabet.Len(); got != tc.size {
			t.Errorf("%s: len=%d want %d", tc.name, got, tc.size)
		}
	}
}

func TestAlphabetClassification(t *testing.T) {
	if !DefaultHaploid().IsBinary() {
		t.Error("default haploid alphabet should be binary")
	}
	if !DefaultDiploid().IsTriallelic() {
		t.Error("default diploid alphabet should be triallelic")
	}
	if !Alpha().IsCharacter() {
		t.Error("alpha alphabet should be a character alphabet")
	}
	if DefaultHaploid().IsCharacter() {
		t.Error("binary alphabet should not be a character alphabet")
	}
	if !math.IsInf(NewContinuous().Size(), 1) {
		t.Error("continuous alphabet size should be +Inf")
	}
	if NewContinuous().Len() != 0 {
		t.Error("continuous alphabet should have no discrete symbols")
	}
}

func TestFromStringSymbolsAndFormat(t *testing.T) {
	a := FromString("abc")
	if a.Len() != 3 {
		t.Fatalf("len=%d want 3", a.Len())
	}
	if a.IndexOf(float64('b')) != 1 {
		t.Errorf("IndexOf('b')=%d want 1", a.IndexOf(float64('b')))
	}
	if got := a.Format(a.Symbol(2)); got != "c" {
		t.Errorf("format=%q want %q", got, "c")
	}
	numeric := NewDiscrete([]float64{0, 1})
	if got := numeric.Format(1); got != "1" {
		t.Errorf("numeric format=%q want %q", got, "1")
	}
}

func TestNewRandomContinuousStaysInUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g := NewRandom(rng, []int{8, 3}, 1, NewContinuous())
	for i := 0; i < g.Chromosomes(); i++ {
		c := g.Chromosome(i)
		for j := 0; j < c.Length(); j++ {
			v := c.At(j, 0)
			if v < 0 || v > 1 {
				t.Fatalf("allele %v outside unit interval", v)
			}
		}
	}
}

func TestNewRandomPermutationIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := NewPermutation(Sequence(9))
	g := NewRandom(rng, []int{9}, 1, alphabet)
	if !g.IsPermutationOf(alphabet) {
		t.Fatalf("random permutation genotype is not a permutation: %v", g)
	}
}

func TestNewDeepCopiesGenome(t *testing.T) {
	parent := Uniform([]int{4}, 1, DefaultHaploid(), 1)
	child := New(parent.Genome(), parent.Alphabet())
	child.Chromosome(0).Set(0, 0, 0)
	if parent.Chromosome(0).At(0, 0) != 1 {
		t.Fatal("offspring aliases parent genome storage")
	}
}

func TestSetFitnessRejectsNegativeAndNaN(t *testing.T) {
	g := Uniform([]int{4}, 1, DefaultHaploid(), 0)
	for _, v := range []float64{-0.1, math.NaN()} {
		if err := g.SetFitness(v); !errors.Is(err, ErrInvalidFitness) {
			t.Errorf("SetFitness(%v) err=%v want ErrInvalidFitness", v, err)
		}
		if err := g.SetScaledFitness(v); !errors.Is(err, ErrInvalidFitness) {
			t.Errorf("SetScaledFitness(%v) err=%v want ErrInvalidFitness", v, err)
		}
	}
	if err := g.SetFitness(0.5); err != nil {
		t.Fatalf("SetFitness(0.5): %v", err)
	}
	if g.Fitness() != 0.5 {
		t.Fatalf("fitness=%v want 0.5", g.Fitness())
	}
}

func TestStringRendering(t *testing.T) {
	haploid := Uniform([]int{3}, 1, DefaultHaploid(), 1)
	if got := haploid.String(); got != "111" {
		t.Errorf("haploid rendering=%q want %q", got, "111")
	}

	diploid := Uniform([]int{2}, 2, DefaultDiploid(), 1)
	if got := diploid.String(); got != "(11),(11)" {
		t.Errorf("diploid rendering=%q want %q", got, "(11),(11)")
	}

	word := Uniform([]int{2}, 1, FromString("ab"), float64('a'))
	if got := word.String(); got != "aa" {
		t.Errorf("character rendering=%q want %q", got, "aa")
	}

	multi := Uniform([]int{2, 2}, 1, DefaultHaploid(), 0)
	if got := multi.String(); got != "00, 00" {
		t.Errorf("multi-chromosome rendering=%q want %q", got, "00, 00")
	}
}

func TestUniformFillsEveryGeneAndSet(t *testing.T) {
	g := Uniform([]int{3, 2}, 2, DefaultDiploid(), -1)
	for i := 0; i < g.Chromosomes(); i++ {
		c := g.Chromosome(i)
		for j := 0; j < c.Length(); j++ {
			for k := 0; k < 2; k++ {
				if c.At(j, k) != -1 {
					t.Fatalf("allele (%d,%d,%d)=%v want -1", i, j, k, c.At(j, k))
				}
			}
		}
	}
}

func TestChromosomeSwap(t *testing.T) {
	c := NewChromosome(3, 2)
	c.Set(0, 1, 5)
	c.Set(2, 1, 7)
	c.Swap(0, 2, 1)
	if c.At(0, 1) != 7 || c.At(2, 1) != 5 {
		t.Fatalf("swap failed: %v %v", c.At(0, 1), c.At(2, 1))
	}
	// the other set is untouched
	if c.At(0, 0) != 0 || c.At(2, 0) != 0 {
		t.Fatal("swap leaked into the wrong chromosome set")
	}
}
