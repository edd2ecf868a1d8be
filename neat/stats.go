package neat

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises the current generation.
type Stats struct {
	Generation   int
	Species      int
	Genomes      int
	Innovation   int
	MaxFitness   float64 // All-time best.
	BestFitness  float64 // Best of the current generation.
	MeanFitness  float64
	StdevFitness float64
	MeanGenes    float64
}

// Stats computes statistics over the genomes currently in the pool.
func (p *Pool) Stats() Stats {
	genomes := p.Genomes()
	s := Stats{
		Generation: p.generation,
		Species:    len(p.Species),
		Genomes:    len(genomes),
		Innovation: p.innovation,
		MaxFitness: float64(p.maxFitness),
	}
	if len(genomes) == 0 {
		return s
	}

	fitness := make([]float64, len(genomes))
	genes := make([]float64, len(genomes))
	for i, g := range genomes {
		fitness[i] = float64(g.Fitness)
		genes[i] = float64(len(g.Genes))
	}

	s.BestFitness = floats.Max(fitness)
	s.MeanFitness = stat.Mean(fitness, nil)
	if len(fitness) > 1 {
		s.StdevFitness = stat.StdDev(fitness, nil)
	}
	s.MeanGenes = stat.Mean(genes, nil)
	return s
}
