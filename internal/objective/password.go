package objective

import (
	"context"

	"genopt/internal/decode"
)

// Password is a demo objective scoring a string guess by the fraction of
// characters matching the target at the correct positions.
type Password struct {
	target string
}

// NewPassword builds the password-guessing objective. An empty target
// falls back to the default demo password.
func NewPassword(target string) *Password {
	if target == "" {
		target = "Hello World!"
	}
	return &Password{target: target}
}

func (p *Password) Name() string {
	return "password"
}

// Target returns the password being guessed.
func (p *Password) Target() string {
	return p.target
}

func (p *Password) Evaluate(_ context.Context, phenotype decode.Phenotype) (float64, error) {
	guess, err := stringArg(phenotype)
	if err != nil {
		return 0, err
	}
	matches := 0
	target := []rune(p.target)
	for i, r := range []rune(guess) {
		if i >= len(target) {
			break
		}
		if r == target[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(target)), nil
}
