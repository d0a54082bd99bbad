// Package objective defines the objective-function contract and the
// built-in demo objectives used by the ctl tool and the end-to-end tests.
package objective

import (
	"context"
	"fmt"

	"genopt/internal/decode"
)

// Objective scores a decoded phenotype. Higher is better; the returned
// value must be non-negative. Evaluate must be safe for concurrent calls
// when parallel evaluation is enabled.
type Objective interface {
	Name() string
	Evaluate(ctx context.Context, phenotype decode.Phenotype) (float64, error)
}

// Func adapts a plain function to the Objective interface.
type Func struct {
	ObjectiveName string
	Fn            func(ctx context.Context, phenotype decode.Phenotype) (float64, error)
}

func (f Func) Name() string {
	return f.ObjectiveName
}

func (f Func) Evaluate(ctx context.Context, phenotype decode.Phenotype) (float64, error) {
	return f.Fn(ctx, phenotype)
}

func scalarArg(phenotype decode.Phenotype) (float64, error) {
	if len(phenotype) != 1 {
		return 0, fmt.Errorf("expected a single phenotype argument, got %d", len(phenotype))
	}
	v, ok := phenotype[0].(float64)
	if !ok {
		return 0, fmt.Errorf("expected a float64 phenotype argument, got %T", phenotype[0])
	}
	return v, nil
}

func stringArg(phenotype decode.Phenotype) (string, error) {
	if len(phenotype) != 1 {
		return "", fmt.Errorf("expected a single phenotype argument, got %d", len(phenotype))
	}
	s, ok := phenotype[0].(string)
	if !ok {
		return "", fmt.Errorf("expected a string phenotype argument, got %T", phenotype[0])
	}
	return s, nil
}

func vectorArg(phenotype decode.Phenotype) ([]float64, error) {
	if len(phenotype) != 1 {
		return nil, fmt.Errorf("expected a single phenotype argument, got %d", len(phenotype))
	}
	v, ok := phenotype[0].([]float64)
	if !ok {
		return nil, fmt.Errorf("expected a []float64 phenotype argument, got %T", phenotype[0])
	}
	return v, nil
}
