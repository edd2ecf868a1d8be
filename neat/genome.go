package neat

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Genome represents an individual organism in the population: a list of
// connection genes plus its own self-adapting mutation rates.
//
// Neuron ids are partitioned into three ranges: [0, inputs) are inputs with
// the last one acting as bias, [inputs, inputs+outputs) are outputs, and
// (inputs+outputs-1, MaxNeuron] are hidden neurons allocated by NodeMutate.
type Genome struct {
	Genes      []*Gene
	Rates      MutationRates
	MaxNeuron  int     // Highest neuron id allocated so far.
	Fitness    float32 // 0 means not measured yet.
	GlobalRank int     // Position in the population-wide fitness ordering.

	inputs  int
	outputs int
	neurons []Neuron // Indexed by neuron id; see GenerateNetwork.
	hidden  []int    // Hidden ids in the order GenerateNetwork created them.
}

// NewGenome creates a genome with no genes, only the input/output skeleton.
func NewGenome(inputs, outputs int, rates MutationRates) *Genome {
	return &Genome{
		Rates:     rates,
		MaxNeuron: inputs + outputs - 1,
		inputs:    inputs,
		outputs:   outputs,
	}
}

// BasicGenome creates a minimal genome, mutates it once from the empty gene
// list and builds its network.
func BasicGenome(p *Pool) *Genome {
	g := NewGenome(p.inputs, p.outputs, p.cfg.Genome.InitialRates())
	g.Mutate(p)
	g.GenerateNetwork()
	return g
}

// Clone creates a deep copy of the genome's genes, rates and neuron
// watermark. Fitness, rank and the network are not carried over.
func (g *Genome) Clone() *Genome {
	c := &Genome{
		Genes:     make([]*Gene, len(g.Genes)),
		Rates:     g.Rates,
		MaxNeuron: g.MaxNeuron,
		inputs:    g.inputs,
		outputs:   g.outputs,
	}
	for i, gene := range g.Genes {
		c.Genes[i] = gene.Copy()
	}
	return c
}

// Inputs returns the number of input neurons, bias included.
func (g *Genome) Inputs() int { return g.inputs }

// Outputs returns the number of output neurons.
func (g *Genome) Outputs() int { return g.outputs }

// Neuron returns the neuron with the given id, if the current network has it.
func (g *Genome) Neuron(id int) (*Neuron, bool) {
	if id < 0 || id >= len(g.neurons) || !g.neurons[id].live {
		return nil, false
	}
	return &g.neurons[id], true
}

// NeuronCount returns the number of neurons in the current network.
func (g *Genome) NeuronCount() int {
	n := 0
	for i := range g.neurons {
		if g.neurons[i].live {
			n++
		}
	}
	return n
}

// GenerateNetwork rebuilds the neuron arena from the gene list. Input and
// output neurons always exist. Genes are sorted by output id; each enabled
// gene creates its target if needed, is appended to the target's incoming
// list, then creates its source if needed. Disabled genes create nothing.
//
// Hidden neurons are remembered in creation order, which is the order
// Evaluate updates them in.
func (g *Genome) GenerateNetwork() {
	size := g.inputs + g.outputs
	if g.MaxNeuron+1 > size {
		size = g.MaxNeuron + 1
	}
	firstHidden := g.inputs + g.outputs
	arena := make([]Neuron, size)
	for i := 0; i < firstHidden; i++ {
		arena[i].live = true
	}
	hidden := g.hidden[:0]
	create := func(id int) {
		if !arena[id].live {
			arena[id].live = true
			hidden = append(hidden, id)
		}
	}

	sort.SliceStable(g.Genes, func(i, j int) bool {
		return g.Genes[i].Output < g.Genes[j].Output
	})

	for _, gene := range g.Genes {
		if !gene.Enabled {
			continue
		}
		if gene.Input < 0 || gene.Input >= size || gene.Output < 0 || gene.Output >= size {
			panic(fmt.Sprintf("neat: %s references a neuron outside [0, %d]", gene, size-1))
		}
		create(gene.Output)
		arena[gene.Output].Incoming = append(arena[gene.Output].Incoming, gene)
		create(gene.Input)
	}
	g.neurons = arena
	g.hidden = hidden
}

// Evaluate runs one forward pass. Hidden neurons are updated first in the
// order GenerateNetwork created them, then outputs, each in a single pass: a
// hidden neuron reading one that comes later in that order sees its value
// from the previous call.
func (g *Genome) Evaluate(inputs []float32) ([]float32, error) {
	if len(inputs) != g.inputs {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrInputShapeMismatch, len(inputs), g.inputs)
	}
	if g.neurons == nil {
		g.GenerateNetwork()
	}

	for i, v := range inputs {
		g.neurons[i].Value = v
	}

	for _, id := range g.hidden {
		g.neurons[id].activate(g.neurons)
	}
	for id := g.inputs; id < g.inputs+g.outputs; id++ {
		g.neurons[id].activate(g.neurons)
	}

	outputs := make([]float32, g.outputs)
	for i := range outputs {
		outputs[i] = g.neurons[g.inputs+i].Value
	}
	return outputs, nil
}

// RandomNeuron picks a random neuron id among outputs, hidden neurons
// referenced by any gene and, when canBeInput is set, inputs.
func (g *Genome) RandomNeuron(rng *rand.Rand, canBeInput bool) int {
	firstHidden := g.inputs + g.outputs
	candidates := make([]int, 0, firstHidden+len(g.Genes))
	if canBeInput {
		for i := 0; i < g.inputs; i++ {
			candidates = append(candidates, i)
		}
	}
	for i := g.inputs; i < firstHidden; i++ {
		candidates = append(candidates, i)
	}

	seen := make(map[int]bool)
	for _, gene := range g.Genes {
		for _, id := range [2]int{gene.Input, gene.Output} {
			if id >= firstHidden && !seen[id] {
				seen[id] = true
				candidates = append(candidates, id)
			}
		}
	}
	return candidates[rng.Intn(len(candidates))]
}

// ContainsLink reports whether a gene, enabled or not, already connects the
// same two neurons in the same direction.
func (g *Genome) ContainsLink(link *Gene) bool {
	for _, gene := range g.Genes {
		if gene.Input == link.Input && gene.Output == link.Output {
			return true
		}
	}
	return false
}

// EnabledGenes returns the number of enabled genes.
func (g *Genome) EnabledGenes() int {
	n := 0
	for _, gene := range g.Genes {
		if gene.Enabled {
			n++
		}
	}
	return n
}

// String returns a string representation of the Genome.
func (g *Genome) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Genome(Fitness: %.4f, Rank: %d, MaxNeuron: %d, Genes: %d)",
		g.Fitness, g.GlobalRank, g.MaxNeuron, len(g.Genes))
	for _, gene := range g.Genes {
		b.WriteString("\n  ")
		b.WriteString(gene.String())
	}
	return b.String()
}
