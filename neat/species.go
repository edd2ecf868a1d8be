package neat

import "sort"

// Species represents a group of mutually compatible genomes.
type Species struct {
	Genomes    []*Genome // The first genome is the compatibility representative.
	TopFitness float32   // Best fitness any member ever reached.
	Staleness  int       // Generations since TopFitness last improved.
}

// AverageFitness returns the mean global rank of the members. Ranks are
// comparable across species, so this is what breeding shares are based on.
func (s *Species) AverageFitness() float32 {
	if len(s.Genomes) == 0 {
		return 0
	}
	total := 0
	for _, g := range s.Genomes {
		total += g.GlobalRank
	}
	return float32(total) / float32(len(s.Genomes))
}

// BreedChild produces one offspring: a crossover of two random members or a
// clone of one, then mutated and with its network built.
func (s *Species) BreedChild(p *Pool) *Genome {
	var child *Genome
	g1 := s.Genomes[p.rng.Intn(len(s.Genomes))]

	if chance(p.rng, p.cfg.Reproduction.CrossoverChance) {
		g2 := s.Genomes[p.rng.Intn(len(s.Genomes))]
		child = Crossover(p.rng, g1, g2)
	} else {
		child = g1.Clone()
	}

	child.Mutate(p)
	child.GenerateNetwork()
	return child
}

// Champion returns the fittest member.
func (s *Species) Champion() *Genome {
	var best *Genome
	for _, g := range s.Genomes {
		if best == nil || g.Fitness > best.Fitness {
			best = g
		}
	}
	return best
}

// sortByFitness orders the members by fitness, ascending or descending.
// The sort is stable so equal fitnesses keep their breeding order.
func (s *Species) sortByFitness(descending bool) {
	sort.SliceStable(s.Genomes, func(i, j int) bool {
		if descending {
			return s.Genomes[i].Fitness > s.Genomes[j].Fitness
		}
		return s.Genomes[i].Fitness < s.Genomes[j].Fitness
	})
}
