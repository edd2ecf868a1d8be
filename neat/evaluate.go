package neat

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// FitnessFunc scores one genome. It may call g.Evaluate freely: a genome's
// network state is private to it, so distinct genomes can be scored
// concurrently.
type FitnessFunc func(ctx context.Context, g *Genome) (float32, error)

// EvaluateAll scores every genome that has no fitness yet, running up to
// workers evaluations at once (workers <= 0 means no limit). Results are
// recorded afterwards on the calling goroutine in species order, so the
// pool itself is only ever written by one goroutine. If any evaluation fails
// no fitness is recorded.
func (p *Pool) EvaluateAll(ctx context.Context, workers int, fn FitnessFunc) error {
	genomes := p.Genomes()
	fitness := make([]float32, len(genomes))
	measured := make([]bool, len(genomes))

	eg, egCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i, g := range genomes {
		if g.Fitness != 0 {
			continue
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			f, err := fn(egCtx, g)
			if err != nil {
				return fmt.Errorf("evaluate genome %d: %w", i, err)
			}
			fitness[i] = f
			measured[i] = true
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, g := range genomes {
		if measured[i] {
			p.recordFitness(g, fitness[i])
		}
	}
	return nil
}

// RunGeneration scores the whole population with fn, captures the
// generation's statistics and then advances to the next generation.
func (p *Pool) RunGeneration(ctx context.Context, workers int, fn FitnessFunc) (Stats, error) {
	if err := p.EvaluateAll(ctx, workers, fn); err != nil {
		return Stats{}, fmt.Errorf("generation %d: %w", p.generation, err)
	}
	stats := p.Stats()
	p.NewGeneration()
	return stats, nil
}
