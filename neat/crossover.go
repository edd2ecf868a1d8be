package neat

import (
	"fmt"
	"math"
	"math/rand"
)

// innovationIndex maps innovation ids to genes. A genome carrying the same
// innovation twice has a corrupt history, so that panics.
func innovationIndex(g *Genome) map[int]*Gene {
	index := make(map[int]*Gene, len(g.Genes))
	for _, gene := range g.Genes {
		if _, dup := index[gene.Innovation]; dup {
			panic(fmt.Sprintf("neat: innovation %d appears twice in one genome", gene.Innovation))
		}
		index[gene.Innovation] = gene
	}
	return index
}

// Crossover creates a child from two parents. Every gene of the fitter
// parent contributes exactly one child gene: a matching, enabled gene of the
// other parent wins a coin flip, otherwise the fitter parent's gene is
// copied. Genes found only in the weaker parent are dropped.
func Crossover(rng *rand.Rand, g1, g2 *Genome) *Genome {
	if g2.Fitness > g1.Fitness {
		g1, g2 = g2, g1
	}

	innovations2 := innovationIndex(g2)
	child := NewGenome(g1.inputs, g1.outputs, g1.Rates)
	child.Genes = make([]*Gene, 0, len(g1.Genes))
	for _, gene1 := range g1.Genes {
		gene2, ok := innovations2[gene1.Innovation]
		if ok && coin(rng) && gene2.Enabled {
			child.Genes = append(child.Genes, gene2.Copy())
		} else {
			child.Genes = append(child.Genes, gene1.Copy())
		}
	}

	child.MaxNeuron = max(g1.MaxNeuron, g2.MaxNeuron)
	return child
}

// Disjoint returns the number of innovations present in exactly one of the
// two genomes, normalised by the larger gene count. Two empty genomes have
// distance 0.
func Disjoint(g1, g2 *Genome) float32 {
	n := max(len(g1.Genes), len(g2.Genes))
	if n == 0 {
		return 0
	}

	i1 := make(map[int]bool, len(g1.Genes))
	for _, gene := range g1.Genes {
		i1[gene.Innovation] = true
	}
	i2 := make(map[int]bool, len(g2.Genes))
	for _, gene := range g2.Genes {
		i2[gene.Innovation] = true
	}

	disjoint := 0
	for innovation := range i1 {
		if !i2[innovation] {
			disjoint++
		}
	}
	for innovation := range i2 {
		if !i1[innovation] {
			disjoint++
		}
	}
	return float32(disjoint) / float32(n)
}

// Weights returns the mean absolute weight difference over genes sharing an
// innovation id, or 0 when no gene is shared.
func Weights(g1, g2 *Genome) float32 {
	i2 := make(map[int]*Gene, len(g2.Genes))
	for _, gene := range g2.Genes {
		i2[gene.Innovation] = gene
	}

	var sum float64
	coincident := 0
	for _, gene := range g1.Genes {
		if gene2, ok := i2[gene.Innovation]; ok {
			sum += math.Abs(float64(gene.Weight - gene2.Weight))
			coincident++
		}
	}
	if coincident == 0 {
		return 0
	}
	return float32(sum / float64(coincident))
}

// Distance is the weighted compatibility distance used for speciation.
func (gc *GenomeConfig) Distance(g1, g2 *Genome) float32 {
	return gc.DeltaDisjoint*Disjoint(g1, g2) + gc.DeltaWeights*Weights(g1, g2)
}

// SameSpecies reports whether two genomes are within the compatibility
// threshold of each other.
func (gc *GenomeConfig) SameSpecies(g1, g2 *Genome) bool {
	return gc.Distance(g1, g2) < gc.DeltaThreshold
}
