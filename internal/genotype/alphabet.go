package genotype

import (
	"math"
	"strconv"
	"unicode"
)

// Kind discriminates the three supported allele alphabet variants.
type Kind int

const (
	// Discrete is an ordered finite set of symbols.
	Discrete Kind = iota
	// Continuous is the unit interval [0, 1].
	Continuous
	// Permutation is a finite symbol set whose chromosomes are always full
	// permutations of it (partially-matched crossover mode).
	Permutation
)

// Alphabet describes the set of values a gene may take. The zero value is an
// empty discrete alphabet and is not valid; use one of the constructors.
type Alphabet struct {
	kind    Kind
	symbols []float64
	runes   []rune
}

// NewDiscrete builds an alphabet over an ordered set of numeric symbols.
func NewDiscrete(symbols []float64) Alphabet {
	return Alphabet{kind: Discrete, symbols: append([]float64(nil), symbols...)}
}

// NewPermutation builds a permutation-mode alphabet over the given symbols.
func NewPermutation(symbols []float64) Alphabet {
	return Alphabet{kind: Permutation, symbols: append([]float64(nil), symbols...)}
}

// NewContinuous builds the unit-interval alphabet.
func NewContinuous() Alphabet {
	return Alphabet{kind: Continuous}
}

// FromString builds a discrete alphabet whose symbols are the runes of s.
func FromString(s string) Alphabet {
	runes := []rune(s)
	symbols := make([]float64, len(runes))
	for i, r := range runes {
		symbols[i] = float64(r)
	}
	return Alphabet{kind: Discrete, symbols: symbols, runes: runes}
}

// Sequence returns the symbols 0..n-1, the default permutation alphabet.
func Sequence(n int) []float64 {
	symbols := make([]float64, n)
	for i := range symbols {
		symbols[i] = float64(i)
	}
	return symbols
}

// Alpha returns the shared alphabet of a blank and the ASCII letters.
func Alpha() Alphabet {
	return FromString(" " +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"abcdefghijklmnopqrstuvwxyz")
}

// Alnum returns the shared alphanumeric ASCII alphabet.
func Alnum() Alphabet {
	return FromString(" " +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"abcdefghijklmnopqrstuvwxyz" +
		"0123456789")
}

// Characters returns the shared alphabet of characters on an American
// keyboard.
func Characters() Alphabet {
	return FromString(" " +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"abcdefghijklmnopqrstuvwxyz" +
		"0123456789" +
		"~`!@#$%^&*()-_=+[{]}\\|;:'\",<.>/?")
}

// DefaultHaploid returns the biallelic {0, 1} alphabet.
func DefaultHaploid() Alphabet {
	return NewDiscrete([]float64{0, 1})
}

// DefaultDiploid returns the triallelic {-1, 0, 1} alphabet, where -1 is a
// recessive 1, 0 a 0, and 1 a dominant 1.
func DefaultDiploid() Alphabet {
	return NewDiscrete([]float64{-1, 0, 1})
}

func (a Alphabet) Kind() Kind {
	return a.kind
}

// Len returns the number of symbols; 0 for continuous alphabets.
func (a Alphabet) Len() int {
	return len(a.symbols)
}

// Size returns the alphabet cardinality, +Inf for continuous alphabets.
func (a Alphabet) Size() float64 {
	if a.kind == Continuous {
		return math.Inf(1)
	}
	return float64(len(a.symbols))
}

// Symbols returns a copy of the symbol set, nil for continuous alphabets.
func (a Alphabet) Symbols() []float64 {
	return append([]float64(nil), a.symbols...)
}

// Symbol returns the i-th symbol value.
func (a Alphabet) Symbol(i int) float64 {
	return a.symbols[i]
}

// IndexOf returns the index of value v in the symbol set, or -1.
func (a Alphabet) IndexOf(v float64) int {
	for i, s := range a.symbols {
		if s == v {
			return i
		}
	}
	return -1
}

// IsCharacter reports whether all symbols are printable characters.
func (a Alphabet) IsCharacter() bool {
	if len(a.runes) == 0 {
		return false
	}
	for _, r := range a.runes {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// IsBinary reports whether the alphabet is exactly the discrete set {0, 1}.
func (a Alphabet) IsBinary() bool {
	return a.kind == Discrete && !a.IsCharacter() &&
		len(a.symbols) == 2 && a.symbols[0] == 0 && a.symbols[1] == 1
}

// IsTriallelic reports whether the alphabet is exactly {-1, 0, 1}.
func (a Alphabet) IsTriallelic() bool {
	return a.kind == Discrete && !a.IsCharacter() &&
		len(a.symbols) == 3 &&
		a.symbols[0] == -1 && a.symbols[1] == 0 && a.symbols[2] == 1
}

// Format renders one allele value using the alphabet's symbol
// representation: the backing rune for character alphabets, a compact
// numeral otherwise.
func (a Alphabet) Format(v float64) string {
	if len(a.runes) > 0 {
		if i := a.IndexOf(v); i >= 0 {
			return string(a.runes[i])
		}
	}
	if a.kind != Continuous && v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
