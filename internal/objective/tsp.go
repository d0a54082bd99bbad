package objective

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"genopt/internal/decode"
)

// TSP is the blind traveling-salesman demo objective: the fitness of a
// tour, given as a permutation of city indices, is the optimal tour
// distance divided by the tour's distance, so the optimum scores 1.0.
type TSP struct {
	coordinates [][2]float64
	distances   [][]float64
	minDist     float64
}

// NewTSP places n cities uniformly in the unit square using rng and
// precomputes the distance matrix. For fewer than 12 cities the optimal
// tour distance is found exactly by exhaustive search; beyond that it is
// estimated as 0.19·n and fitness is no longer bounded by 1.
func NewTSP(n int, rng *rand.Rand) *TSP {
	t := &TSP{
		coordinates: make([][2]float64, n),
		distances:   make([][]float64, n),
	}
	for i := range t.coordinates {
		t.coordinates[i] = [2]float64{rng.Float64(), rng.Float64()}
		t.distances[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := t.coordinates[i][0] - t.coordinates[j][0]
			dy := t.coordinates[i][1] - t.coordinates[j][1]
			d := math.Sqrt(dx*dx + dy*dy)
			t.distances[i][j] = d
			t.distances[j][i] = d
		}
	}
	if n < 12 {
		visited := make([]bool, n)
		visited[0] = true
		t.minDist = math.Inf(1)
		t.solve(visited, 0, 1, 0)
	} else {
		t.minDist = float64(n) * 0.19
	}
	return t
}

// solve finds the minimum-weight Hamiltonian cycle from city 0.
func (t *TSP) solve(visited []bool, currPos, count int, cost float64) {
	n := len(t.distances)
	if count == n {
		total := cost + t.distances[currPos][0]
		if total < t.minDist {
			t.minDist = total
		}
		return
	}
	for i := 0; i < n; i++ {
		if !visited[i] {
			visited[i] = true
			t.solve(visited, i, count+1, cost+t.distances[currPos][i])
			visited[i] = false
		}
	}
}

func (t *TSP) Name() string {
	return "tsp"
}

// Coordinates returns the city positions.
func (t *TSP) Coordinates() [][2]float64 {
	return t.coordinates
}

// MinDist returns the optimal (or estimated) tour distance.
func (t *TSP) MinDist() float64 {
	return t.minDist
}

func (t *TSP) Evaluate(_ context.Context, phenotype decode.Phenotype) (float64, error) {
	tour, err := vectorArg(phenotype)
	if err != nil {
		return 0, err
	}
	if len(tour) != len(t.distances) {
		return 0, fmt.Errorf("tour length %d does not match %d cities", len(tour), len(t.distances))
	}
	distance := 0.0
	previous := int(tour[0])
	for i := 1; i <= len(tour); i++ {
		next := int(tour[i%len(tour)])
		if next < 0 || next >= len(t.distances) {
			return 0, fmt.Errorf("tour city index out of range: %d", next)
		}
		distance += t.distances[previous][next]
		previous = next
	}
	return t.minDist / distance, nil
}
