package objective

import (
	"context"

	"genopt/internal/decode"
)

// poly5Coeffs define a fifth-order polynomial on [0, 1] with its global
// maximum 1.0 at x=0.15 and a secondary maximum 0.82 at x=0.7. About 18.3%
// of the domain supports values above the secondary maximum.
var poly5Coeffs = []float64{
	70.4499739424963,
	-206.190728636476,
	214.767969260518,
	-95.9080356878612,
	16.8808211213239,
	0,
}

// poly7Coeffs define a seventh-order polynomial on [0, 1] with its global
// maximum 1.0 at x=0.15 and a very broad second maximum around x=0.8 with
// value about 0.85.
var poly7Coeffs = []float64{
	-1319.31857677856,
	4529.00217356167,
	-6016.32796026748,
	3810.37520148061,
	-1112.33243686956,
	102.412465754810,
	6.18913311850734,
	0,
}

// Polynomial is a demo objective evaluating a fixed polynomial at a single
// scalar argument in [0, 1], clamped to non-negative values.
type Polynomial struct {
	name   string
	coeffs []float64
}

// NewPoly5 returns the fifth-order demo landscape.
func NewPoly5() *Polynomial {
	return &Polynomial{name: "poly5", coeffs: poly5Coeffs}
}

// NewPoly7 returns the seventh-order demo landscape.
func NewPoly7() *Polynomial {
	return &Polynomial{name: "poly7", coeffs: poly7Coeffs}
}

func (p *Polynomial) Name() string {
	return p.name
}

// At evaluates the polynomial at x, clamped to non-negative values.
func (p *Polynomial) At(x float64) float64 {
	v := 0.0
	for _, coeff := range p.coeffs {
		v = v*x + coeff
	}
	if v < 0 {
		return 0
	}
	return v
}

func (p *Polynomial) Evaluate(_ context.Context, phenotype decode.Phenotype) (float64, error) {
	x, err := scalarArg(phenotype)
	if err != nil {
		return 0, err
	}
	return p.At(x), nil
}
