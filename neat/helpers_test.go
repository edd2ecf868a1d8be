package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, seed int64) *Pool {
	t.Helper()
	p, err := NewPool(DefaultConfig(), WithSeed(seed))
	require.NoError(t, err)
	return p
}

func newSetupPool(t *testing.T, seed int64, population, inputs, outputs int) *Pool {
	t.Helper()
	p := newTestPool(t, seed)
	require.NoError(t, p.Setup(population, inputs, outputs))
	return p
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

// genomeWith builds a genome from (input, output, weight, innovation) tuples,
// all enabled.
func genomeWith(inputs, outputs, maxNeuron int, genes ...Gene) *Genome {
	g := NewGenome(inputs, outputs, DefaultConfig().Genome.InitialRates())
	g.MaxNeuron = maxNeuron
	for i := range genes {
		gene := genes[i]
		g.Genes = append(g.Genes, &gene)
	}
	return g
}

func link(in, out int, weight float32, innovation int) Gene {
	return Gene{Input: in, Output: out, Weight: weight, Enabled: true, Innovation: innovation}
}
