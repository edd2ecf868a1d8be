package neat

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// RankGlobally sorts every genome of the population by fitness, ascending,
// and stores each genome's position as its GlobalRank.
func (p *Pool) RankGlobally() {
	all := p.Genomes()
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Fitness < all[j].Fitness
	})
	for i, g := range all {
		g.GlobalRank = i
	}
}

// TotalAverageFitness sums the average fitness of every species.
func (p *Pool) TotalAverageFitness() float32 {
	var total float32
	for _, s := range p.Species {
		total += s.AverageFitness()
	}
	return total
}

// CullSpecies drops the weaker members of every species. With cullToOne only
// the champion survives; otherwise the better SurvivalRatio share, rounded
// up, is kept.
func (p *Pool) CullSpecies(cullToOne bool) {
	for _, s := range p.Species {
		s.sortByFitness(false)
		remaining := 1
		if !cullToOne {
			remaining = int(math.Ceil(float64(len(s.Genomes)) * float64(p.cfg.Reproduction.SurvivalRatio)))
		}
		if len(s.Genomes) > remaining {
			dropped := len(s.Genomes) - remaining
			s.Genomes = append(s.Genomes[:0], s.Genomes[dropped:]...)
		}
	}
}

// breedShare is the number of population slots a species earns from its
// share of the total average fitness.
func (p *Pool) breedShare(s *Species, total float32) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(s.AverageFitness()) / float64(total) * float64(p.population)))
}

// RemoveWeakSpecies drops species whose fitness share does not earn them a
// single offspring. When no species has any rank (a population of one)
// nothing is removed.
func (p *Pool) RemoveWeakSpecies() {
	total := p.TotalAverageFitness()
	if total <= 0 {
		return
	}
	survived := p.Species[:0]
	for _, s := range p.Species {
		if p.breedShare(s, total) >= 1 {
			survived = append(survived, s)
			continue
		}
		p.logger.Debug("species removed as weak",
			zap.Float32("average_fitness", s.AverageFitness()),
			zap.Int("genomes", len(s.Genomes)))
	}
	clearTail(p.Species, len(survived))
	p.Species = survived
}

// NewGeneration replaces the evaluated population with the next one:
// cull to the better half, rank, drop stale species, rank again, drop weak
// species, breed each species' share minus one, cull to the champions, top
// up from random species, speciate the children and advance the counter.
func (p *Pool) NewGeneration() {
	// --- Step 1: Cull and drop stale or weak species ---
	p.CullSpecies(false)
	survivors := append([]*Species(nil), p.Species...)

	p.RankGlobally()
	p.RemoveStaleSpecies()
	p.RankGlobally()
	p.RemoveWeakSpecies()

	// --- Step 2: Breed ---
	var children []*Genome
	if len(p.Species) == 0 {
		children = p.recoverFromExtinction(survivors)
	}

	total := p.TotalAverageFitness()
	for _, s := range p.Species {
		breed := p.breedShare(s, total) - 1
		for i := 0; i < breed; i++ {
			children = append(children, s.BreedChild(p))
		}
	}

	// Champions carry over, the rest of the slots go to random species.
	p.CullSpecies(true)
	for len(p.Species) > 0 && len(children)+len(p.Species) < p.population {
		s := p.Species[p.rng.Intn(len(p.Species))]
		children = append(children, s.BreedChild(p))
	}

	// --- Step 3: Speciate ---
	for _, child := range children {
		p.AddToSpecies(child)
	}

	p.generation++
	p.currentSpecies, p.currentGenome = 0, 0

	p.logger.Info("generation advanced",
		zap.Int("generation", p.generation),
		zap.Int("species", len(p.Species)),
		zap.Int("genomes", len(p.Genomes())),
		zap.Float32("max_fitness", p.maxFitness),
		zap.Int("innovation", p.innovation))
}

// recoverFromExtinction handles the removal steps leaving no species. With
// ResetOnExtinction the population is reseeded from basic genomes, which are
// returned as children; otherwise the culled survivors are restored.
func (p *Pool) recoverFromExtinction(survivors []*Species) []*Genome {
	if !p.cfg.Neat.ResetOnExtinction {
		p.logger.Debug("all species removed, keeping survivors", zap.Int("species", len(survivors)))
		p.Species = survivors
		p.RankGlobally()
		// Staleness is forgiven but weakness is not: a restored species
		// without a breeding share would still keep its champion and push
		// the population past its target.
		p.RemoveWeakSpecies()
		return nil
	}

	p.logger.Debug("all species removed, reseeding population", zap.Int("population", p.population))
	children := make([]*Genome, 0, p.population)
	for len(children) < p.population {
		children = append(children, BasicGenome(p))
	}
	return children
}
