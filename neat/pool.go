package neat

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Pool holds the whole evolutionary state: the species, the global
// innovation and generation counters, and the cursor identifying the genome
// that is up next for fitness evaluation. A Pool is not safe for concurrent
// use; EvaluateAll is the only entry point that fans work out.
type Pool struct {
	Species []*Species

	cfg    *Config
	rng    *rand.Rand
	logger *zap.Logger

	population int
	inputs     int
	outputs    int

	innovation     int
	generation     int
	currentSpecies int
	currentGenome  int
	maxFitness     float32
	best           *Genome
}

// Option configures a Pool.
type Option func(*Pool)

// WithRand makes the pool draw all randomness from rng.
func WithRand(rng *rand.Rand) Option {
	return func(p *Pool) { p.rng = rng }
}

// WithSeed seeds the pool's random generator.
func WithSeed(seed int64) Option {
	return func(p *Pool) { p.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger sets the logger used for generation reports.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) { p.logger = logger }
}

// NewPool creates an empty pool. A nil config selects DefaultConfig. The
// random generator is seeded from the config's seed, or from the clock when
// it is zero, unless WithRand or WithSeed is given.
func NewPool(config *Config, opts ...Option) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		cfg:        config,
		logger:     zap.NewNop(),
		generation: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		seed := config.Neat.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		p.rng = rand.New(rand.NewSource(seed))
	}
	return p, nil
}

// Setup initializes a fresh population of basic genomes bucketed into
// species. Any previous population is discarded, but the innovation counter
// only moves forward so ids stay unique for the pool's lifetime.
func (p *Pool) Setup(population, inputs, outputs int) error {
	if population <= 0 {
		return fmt.Errorf("setup: population must be positive, got %d", population)
	}
	if inputs <= 0 {
		return fmt.Errorf("setup: at least one input (the bias) is required, got %d", inputs)
	}
	if outputs <= 0 {
		return fmt.Errorf("setup: outputs must be positive, got %d", outputs)
	}

	p.population = population
	p.inputs = inputs
	p.outputs = outputs
	// Innovation ids up to outputs are reserved.
	if p.innovation < outputs {
		p.innovation = outputs
	}
	p.generation = 1
	p.currentSpecies, p.currentGenome = 0, 0
	p.maxFitness = 0
	p.best = nil
	p.Species = nil

	for i := 0; i < population; i++ {
		p.AddToSpecies(BasicGenome(p))
	}

	p.logger.Info("pool set up",
		zap.Int("population", population),
		zap.Int("inputs", inputs),
		zap.Int("outputs", outputs),
		zap.Int("species", len(p.Species)))
	return nil
}

// Current returns the genome that is up next for evaluation.
func (p *Pool) Current() *Genome {
	return p.Species[p.currentSpecies].Genomes[p.currentGenome]
}

// Evaluate runs the current genome's network on the given input vector.
func (p *Pool) Evaluate(inputs []float32) ([]float32, error) {
	outputs, err := p.Current().Evaluate(inputs)
	if err != nil {
		p.logger.Warn("evaluation rejected", zap.Error(err))
		return nil, err
	}
	return outputs, nil
}

// NextGenome advances the evaluation cursor. When every genome of every
// species has been visited it computes a new generation and returns true.
func (p *Pool) NextGenome() bool {
	p.currentGenome++
	if p.currentGenome >= len(p.Species[p.currentSpecies].Genomes) {
		p.currentGenome = 0
		p.currentSpecies++
		if p.currentSpecies >= len(p.Species) {
			p.currentSpecies = 0
			p.NewGeneration()
			return true
		}
	}
	return false
}

// SetFitness records the fitness of the current genome.
func (p *Pool) SetFitness(fitness float32) {
	p.recordFitness(p.Current(), fitness)
}

func (p *Pool) recordFitness(g *Genome, fitness float32) {
	g.Fitness = fitness
	// Best is a clone: the genome itself may be mutated or culled later.
	if fitness > p.maxFitness {
		p.maxFitness = fitness
		p.best = g.Clone()
		p.best.Fitness = fitness
	}
}

// FitnessAlreadyMeasured reports whether the current genome has a fitness.
// A genome that scored exactly 0 is indistinguishable from an unmeasured one.
func (p *Pool) FitnessAlreadyMeasured() bool {
	return p.Current().Fitness != 0
}

// AddToSpecies places a genome in the first species whose representative is
// compatible with it, or founds a new species.
func (p *Pool) AddToSpecies(child *Genome) {
	for _, s := range p.Species {
		if p.cfg.Genome.SameSpecies(child, s.Genomes[0]) {
			s.Genomes = append(s.Genomes, child)
			return
		}
	}
	p.Species = append(p.Species, &Species{Genomes: []*Genome{child}})
}

// NewInnovation allocates the next global innovation id.
func (p *Pool) NewInnovation() int {
	p.innovation++
	return p.innovation
}

// --- Accessors ---

// Genomes returns every genome in species order.
func (p *Pool) Genomes() []*Genome {
	var all []*Genome
	for _, s := range p.Species {
		all = append(all, s.Genomes...)
	}
	return all
}

// Best returns a copy of the fittest genome measured so far, or nil.
func (p *Pool) Best() *Genome { return p.best }

// Cursor returns the indices of the current species and genome.
func (p *Pool) Cursor() (species, genome int) { return p.currentSpecies, p.currentGenome }

// Config returns the pool's configuration.
func (p *Pool) Config() *Config { return p.cfg }

// Population returns the target population size.
func (p *Pool) Population() int { return p.population }

// Inputs returns the number of inputs, bias included.
func (p *Pool) Inputs() int { return p.inputs }

// Outputs returns the number of outputs.
func (p *Pool) Outputs() int { return p.outputs }

// Innovation returns the last innovation id handed out.
func (p *Pool) Innovation() int { return p.innovation }

// Generation returns the current generation, starting at 1.
func (p *Pool) Generation() int { return p.generation }

// MaxFitness returns the best fitness ever reported.
func (p *Pool) MaxFitness() float32 { return p.maxFitness }
