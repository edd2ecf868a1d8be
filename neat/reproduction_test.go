package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func speciesWithFitness(fitness ...float32) *Species {
	s := &Species{}
	for _, f := range fitness {
		g := NewGenome(2, 1, MutationRates{})
		g.Fitness = f
		s.Genomes = append(s.Genomes, g)
	}
	return s
}

func fitnessOf(s *Species) []float32 {
	out := make([]float32, len(s.Genomes))
	for i, g := range s.Genomes {
		out[i] = g.Fitness
	}
	return out
}

func TestRemoveStaleSpecies(t *testing.T) {
	p := newTestPool(t, 1)
	p.maxFitness = 10

	stale := speciesWithFitness(4, 2)
	stale.TopFitness, stale.Staleness = 5, 14

	holdsBest := speciesWithFitness(3)
	holdsBest.TopFitness, holdsBest.Staleness = 10, 30

	improving := speciesWithFitness(1, 6)
	improving.TopFitness, improving.Staleness = 5, 14

	p.Species = []*Species{stale, holdsBest, improving}
	p.RemoveStaleSpecies()

	require.Equal(t, []*Species{holdsBest, improving}, p.Species)
	assert.Equal(t, 15, stale.Staleness)
	assert.Equal(t, 31, holdsBest.Staleness)
	assert.Equal(t, 0, improving.Staleness)
	assert.Equal(t, float32(6), improving.TopFitness)
	assert.Equal(t, []float32{6, 1}, fitnessOf(improving), "sorted best first")
}

func TestCullSpecies(t *testing.T) {
	p := newTestPool(t, 1)
	s := speciesWithFitness(3, 1, 5, 2, 4)
	p.Species = []*Species{s}

	p.CullSpecies(false)
	assert.Equal(t, []float32{3, 4, 5}, fitnessOf(s))

	p.CullSpecies(true)
	assert.Equal(t, []float32{5}, fitnessOf(s))
}

func TestRankGlobally(t *testing.T) {
	p := newTestPool(t, 1)
	a := speciesWithFitness(5, 1)
	b := speciesWithFitness(3)
	p.Species = []*Species{a, b}

	p.RankGlobally()
	assert.Equal(t, 2, a.Genomes[0].GlobalRank)
	assert.Equal(t, 0, a.Genomes[1].GlobalRank)
	assert.Equal(t, 1, b.Genomes[0].GlobalRank)

	assert.InDelta(t, 1.0, a.AverageFitness(), 1e-6)
	assert.InDelta(t, 1.0, b.AverageFitness(), 1e-6)
	assert.InDelta(t, 2.0, p.TotalAverageFitness(), 1e-6)
}

func TestRemoveWeakSpecies(t *testing.T) {
	p := newTestPool(t, 1)
	p.population = 10

	weak := speciesWithFitness(1)
	strong := speciesWithFitness(2, 3)
	p.Species = []*Species{weak, strong}
	p.RankGlobally()

	// Average ranks are 0 and 1.5: the weak species earns no slot.
	p.RemoveWeakSpecies()
	assert.Equal(t, []*Species{strong}, p.Species)
}

func TestRemoveWeakSpeciesWithoutRanks(t *testing.T) {
	p := newTestPool(t, 1)
	p.population = 1
	only := speciesWithFitness(1)
	p.Species = []*Species{only}
	p.RankGlobally()

	p.RemoveWeakSpecies()
	assert.Equal(t, []*Species{only}, p.Species)
}

func TestSpeciesChampion(t *testing.T) {
	s := speciesWithFitness(2, 7, 3)
	assert.Equal(t, float32(7), s.Champion().Fitness)
	assert.Nil(t, (&Species{}).Champion())
	assert.Equal(t, float32(0), (&Species{}).AverageFitness())
}

func TestBreedChild(t *testing.T) {
	p := newSetupPool(t, 5, 20, 3, 1)
	s := p.Species[0]
	for _, g := range s.Genomes {
		g.Fitness = 1
	}

	before := p.Innovation()
	for i := 0; i < 30; i++ {
		child := s.BreedChild(p)
		assert.Equal(t, float32(0), child.Fitness)
		assert.Equal(t, 3, child.Inputs())
		out, err := child.Evaluate([]float32{1, 0, 1})
		require.NoError(t, err)
		assert.Len(t, out, 1)
		for _, parent := range s.Genomes {
			for _, gene := range child.Genes {
				for _, pg := range parent.Genes {
					assert.NotSame(t, pg, gene)
				}
			}
		}
	}
	assert.GreaterOrEqual(t, p.Innovation(), before)
}

func TestExtinctionKeepsSurvivors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Neat.ResetOnExtinction = false
	cfg.Stagnation.MaxStagnation = 1
	p, err := NewPool(cfg, WithSeed(3))
	require.NoError(t, err)
	require.NoError(t, p.Setup(20, 3, 1))

	// Every species is stale and none holds the best fitness.
	for _, s := range p.Species {
		s.TopFitness = 5
	}
	p.maxFitness = 100
	for _, g := range p.Genomes() {
		g.Fitness = 1
	}

	p.NewGeneration()
	assert.NotEmpty(t, p.Species)
	assert.Len(t, p.Genomes(), 20)
	assert.Equal(t, 2, p.Generation())
}

func TestExtinctionReseeds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stagnation.MaxStagnation = 1
	p, err := NewPool(cfg, WithSeed(3))
	require.NoError(t, err)
	require.NoError(t, p.Setup(20, 3, 1))

	for _, s := range p.Species {
		s.TopFitness = 5
	}
	p.maxFitness = 100
	for _, g := range p.Genomes() {
		g.Fitness = 1
	}

	p.NewGeneration()
	assert.Len(t, p.Genomes(), 20)
	for _, g := range p.Genomes() {
		assert.Equal(t, float32(0), g.Fitness, "reseeded genomes are unmeasured")
	}
}
