package neat

import "go.uber.org/zap"

// RemoveStaleSpecies updates every species' top fitness and staleness and
// drops the species that have not improved for MaxStagnation generations,
// unless they still hold the all-time best fitness.
func (p *Pool) RemoveStaleSpecies() {
	maxStagnation := p.cfg.Stagnation.MaxStagnation
	survived := p.Species[:0]
	for _, s := range p.Species {
		s.sortByFitness(true)
		if s.Genomes[0].Fitness > s.TopFitness {
			s.TopFitness = s.Genomes[0].Fitness
			s.Staleness = 0
		} else {
			s.Staleness++
		}

		if s.Staleness < maxStagnation || s.TopFitness >= p.maxFitness {
			survived = append(survived, s)
			continue
		}
		p.logger.Debug("species removed as stale",
			zap.Int("staleness", s.Staleness),
			zap.Float32("top_fitness", s.TopFitness),
			zap.Int("genomes", len(s.Genomes)))
	}
	clearTail(p.Species, len(survived))
	p.Species = survived
}

// clearTail nils out the dropped tail of a filtered slice so the removed
// species can be collected.
func clearTail(species []*Species, keep int) {
	for i := keep; i < len(species); i++ {
		species[i] = nil
	}
}
