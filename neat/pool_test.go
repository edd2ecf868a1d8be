package neat

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stagnation.MaxStagnation = 0
	_, err := NewPool(cfg)
	require.Error(t, err)

	p, err := NewPool(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Generation())
	assert.Equal(t, DefaultConfig(), p.Config())
}

func TestSeededPoolsAreReproducible(t *testing.T) {
	snapshot := func(opt Option) []byte {
		p, err := NewPool(DefaultConfig(), opt)
		require.NoError(t, err)
		require.NoError(t, p.Setup(40, 3, 2))
		for _, g := range p.Genomes() {
			p.recordFitness(g, float32(len(g.Genes))+1)
		}
		p.NewGeneration()
		var buf bytes.Buffer
		require.NoError(t, p.WriteSnapshot(&buf))
		return buf.Bytes()
	}

	seeded := snapshot(WithSeed(17))
	assert.Equal(t, seeded, snapshot(WithSeed(17)))
	assert.Equal(t, seeded, snapshot(WithRand(rand.New(rand.NewSource(17)))))
	assert.NotEqual(t, seeded, snapshot(WithSeed(18)))
}

func TestSetup(t *testing.T) {
	p := newSetupPool(t, 1, 50, 3, 2)

	assert.Len(t, p.Genomes(), 50)
	assert.NotEmpty(t, p.Species)
	assert.Equal(t, 1, p.Generation())
	assert.Equal(t, 50, p.Population())
	assert.Equal(t, 3, p.Inputs())
	assert.Equal(t, 2, p.Outputs())
	assert.GreaterOrEqual(t, p.Innovation(), 2)

	for _, g := range p.Genomes() {
		out, err := g.Evaluate([]float32{0.5, -0.5, 1})
		require.NoError(t, err)
		require.Len(t, out, 2)
		for _, v := range out {
			assert.GreaterOrEqual(t, v, float32(-1))
			assert.LessOrEqual(t, v, float32(1))
		}
	}

	s, g := p.Cursor()
	assert.Equal(t, 0, s)
	assert.Equal(t, 0, g)
}

func TestSetupSpeciation(t *testing.T) {
	p := newSetupPool(t, 8, 40, 3, 1)
	gc := &p.Config().Genome
	for _, s := range p.Species {
		for _, g := range s.Genomes {
			assert.True(t, gc.SameSpecies(g, s.Genomes[0]))
		}
	}
	for i, s := range p.Species {
		for _, later := range p.Species[i+1:] {
			assert.False(t, gc.SameSpecies(later.Genomes[0], s.Genomes[0]),
				"a later representative would have joined an earlier species")
		}
	}
}

func TestSetupRejectsBadShape(t *testing.T) {
	p := newTestPool(t, 1)
	assert.Error(t, p.Setup(0, 3, 1))
	assert.Error(t, p.Setup(10, 0, 1))
	assert.Error(t, p.Setup(10, 3, 0))
}

func TestSetupAgainKeepsInnovation(t *testing.T) {
	p := newSetupPool(t, 2, 30, 3, 2)
	first := p.Innovation()
	require.Greater(t, first, p.Outputs())

	require.NoError(t, p.Setup(30, 3, 2))
	assert.Greater(t, p.Innovation(), first)
	genes := 0
	for _, g := range p.Genomes() {
		for _, gene := range g.Genes {
			assert.Greater(t, gene.Innovation, first, "innovation %d reused after a second setup", gene.Innovation)
			genes++
		}
	}
	assert.NotZero(t, genes)
}

func TestNewInnovationIncreases(t *testing.T) {
	p := newSetupPool(t, 1, 10, 2, 1)
	last := p.Innovation()
	for i := 0; i < 100; i++ {
		next := p.NewInnovation()
		assert.Equal(t, last+1, next)
		last = next
	}
}

func TestInnovationsAreUniqueAcrossPopulation(t *testing.T) {
	p := newSetupPool(t, 6, 60, 3, 2)
	owner := map[int]*Genome{}
	for _, g := range p.Genomes() {
		for _, gene := range g.Genes {
			if prev, ok := owner[gene.Innovation]; ok {
				assert.Same(t, prev, g, "innovation %d issued to two genomes", gene.Innovation)
			}
			owner[gene.Innovation] = g
			assert.Greater(t, gene.Innovation, p.Outputs())
			assert.LessOrEqual(t, gene.Innovation, p.Innovation())
		}
	}
}

func TestEvaluateAndFitnessCursor(t *testing.T) {
	p := newSetupPool(t, 2, 20, 3, 1)

	_, err := p.Evaluate([]float32{1, 1})
	require.ErrorIs(t, err, ErrInputShapeMismatch)

	out, err := p.Evaluate([]float32{1, 0, 1})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.False(t, p.FitnessAlreadyMeasured())
	assert.Nil(t, p.Best())

	p.SetFitness(3)
	assert.True(t, p.FitnessAlreadyMeasured())
	assert.Equal(t, float32(3), p.Current().Fitness)
	assert.Equal(t, float32(3), p.MaxFitness())
	require.NotNil(t, p.Best())
	assert.Equal(t, float32(3), p.Best().Fitness)

	p.NextGenome()
	p.SetFitness(1)
	assert.Equal(t, float32(3), p.MaxFitness())
	assert.Equal(t, float32(3), p.Best().Fitness)
}

func TestNextGenomeAdvancesGeneration(t *testing.T) {
	p := newSetupPool(t, 3, 50, 3, 2)

	steps := 0
	for {
		p.SetFitness(float32(steps + 1))
		steps++
		if p.NextGenome() {
			break
		}
	}
	assert.Equal(t, 50, steps)
	assert.Equal(t, 2, p.Generation())
	assert.Len(t, p.Genomes(), 50)
	assert.Equal(t, float32(50), p.MaxFitness())

	s, g := p.Cursor()
	assert.Equal(t, 0, s)
	assert.Equal(t, 0, g)
}

func TestEvolutionKeepsPopulationSize(t *testing.T) {
	p := newSetupPool(t, 12, 40, 3, 1)
	for gen := 0; gen < 10; gen++ {
		for i, g := range p.Genomes() {
			if g.Fitness == 0 {
				p.recordFitness(g, float32(len(g.Genes)+i%3)+1)
			}
		}
		p.NewGeneration()

		assert.Len(t, p.Genomes(), 40, "generation %d", p.Generation())
		for _, s := range p.Species {
			assert.NotEmpty(t, s.Genomes)
		}
	}
	assert.Equal(t, 11, p.Generation())
}
