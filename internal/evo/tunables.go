package evo

import "fmt"

// Tunable run parameters. The setters are meant for hook callbacks that
// adjust the search between generations; changes take effect on the next
// generation.

// PCrossover returns the per-chromosome crossover probability.
func (o *Optimizer) PCrossover() float64 { return o.pCrossover }

// SetPCrossover sets the per-chromosome crossover probability.
func (o *Optimizer) SetPCrossover(p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%w: crossover probability %v outside [0, 1]", ErrInvalidConfig, p)
	}
	o.pCrossover = p
	return nil
}

// PMutation returns the per-allele mutation probability.
func (o *Optimizer) PMutation() float64 { return o.pMutation }

// SetPMutation sets the per-allele mutation probability.
func (o *Optimizer) SetPMutation(p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%w: mutation probability %v outside [0, 1]", ErrInvalidConfig, p)
	}
	o.pMutation = p
	return nil
}

// PInversion returns the per-chromosome inversion probability.
func (o *Optimizer) PInversion() float64 { return o.pInversion }

// SetPInversion sets the per-chromosome inversion probability.
func (o *Optimizer) SetPInversion(p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%w: inversion probability %v outside [0, 1]", ErrInvalidConfig, p)
	}
	o.pInversion = p
	return nil
}

// PopulationGrowth returns the per-generation population growth factor.
func (o *Optimizer) PopulationGrowth() float64 { return o.populationGrowth }

// SetPopulationGrowth sets the per-generation population growth factor.
func (o *Optimizer) SetPopulationGrowth(growth float64) error {
	if growth <= 0 {
		return fmt.Errorf("%w: population growth %v must be positive", ErrInvalidConfig, growth)
	}
	o.populationGrowth = growth
	return nil
}

// Overpopulation returns the offspring over-production factor.
func (o *Optimizer) Overpopulation() float64 { return o.overpopulation }

// SetOverpopulation sets the offspring over-production factor.
func (o *Optimizer) SetOverpopulation(factor float64) error {
	if factor < 1 {
		return fmt.Errorf("%w: overpopulation %v must be at least 1", ErrInvalidConfig, factor)
	}
	o.overpopulation = factor
	return nil
}

// FitnessScale returns the linear fitness scaling factor and whether
// scaling is enabled.
func (o *Optimizer) FitnessScale() (float64, bool) {
	return o.fitnessScale, o.scalingEnabled
}

// SetFitnessScale sets the linear fitness scaling factor. A value of 0
// disables scaling; values greater than 1 enable it.
func (o *Optimizer) SetFitnessScale(scale float64) error {
	if scale == 0 {
		o.scalingEnabled = false
		return nil
	}
	if scale <= 1 {
		return fmt.Errorf("%w: fitness scale %v must be greater than 1 or 0", ErrInvalidConfig, scale)
	}
	o.fitnessScale = scale
	o.scalingEnabled = true
	return nil
}

// FloatSigma returns the standard deviation of continuous mutations.
func (o *Optimizer) FloatSigma() float64 { return o.floatSigma }

// SetFloatSigma sets the standard deviation of continuous mutations.
func (o *Optimizer) SetFloatSigma(sigma float64) error {
	if sigma <= 0 {
		return fmt.Errorf("%w: float sigma %v must be positive", ErrInvalidConfig, sigma)
	}
	o.floatSigma = sigma
	return nil
}

// FloatSigmaAdapt returns the sigma adaptation factor for continuous runs.
func (o *Optimizer) FloatSigmaAdapt() float64 { return o.floatSigmaAdapt }

// SetFloatSigmaAdapt sets the sigma adaptation factor.
func (o *Optimizer) SetFloatSigmaAdapt(adapt float64) error {
	if adapt <= 0 || adapt >= 1 {
		return fmt.Errorf("%w: sigma adaptation %v outside (0, 1)", ErrInvalidConfig, adapt)
	}
	o.floatSigmaAdapt = adapt
	return nil
}
