package neat

import (
	"fmt"
	"math/rand"
)

// MutationRates are the per-genome, self-adapting mutation parameters.
// Connections is a probability; Link, Bias, Node, Enable and Disable are
// expected numbers of applications per Mutate call; Step is the weight
// perturbation magnitude.
type MutationRates struct {
	Connections float32
	Link        float32
	Bias        float32
	Node        float32
	Enable      float32
	Disable     float32
	Step        float32
}

// RateEntry is one named mutation rate, as laid out in a snapshot.
type RateEntry struct {
	Name  string
	Value float32
}

// rateNames is the canonical order of the named rates.
var rateNames = [...]string{"connections", "link", "bias", "node", "enable", "disable", "step"}

// NumRates is the number of named mutation rates.
const NumRates = len(rateNames)

func (r *MutationRates) fields() [NumRates]*float32 {
	return [NumRates]*float32{&r.Connections, &r.Link, &r.Bias, &r.Node, &r.Enable, &r.Disable, &r.Step}
}

// Entries returns the rates as named entries in canonical order.
func (r MutationRates) Entries() []RateEntry {
	entries := make([]RateEntry, 0, NumRates)
	for i, f := range r.fields() {
		entries = append(entries, RateEntry{Name: rateNames[i], Value: *f})
	}
	return entries
}

// Set assigns a rate by name.
func (r *MutationRates) Set(name string, value float32) error {
	for i, f := range r.fields() {
		if rateNames[i] == name {
			*f = value
			return nil
		}
	}
	return fmt.Errorf("unknown mutation rate '%s'", name)
}

// adapt scales every rate independently by 1-factor or 1+factor.
func (r *MutationRates) adapt(rng *rand.Rand, factor float32) {
	for _, f := range r.fields() {
		if coin(rng) {
			*f *= 1 - factor
		} else {
			*f *= 1 + factor
		}
	}
}

// PointMutate nudges every gene weight by U(-step, step), or with the
// complementary probability replaces it with a fresh random weight.
func (g *Genome) PointMutate(p *Pool) {
	step := g.Rates.Step
	for _, gene := range g.Genes {
		if chance(p.rng, p.cfg.Genome.PerturbChance) {
			gene.Weight += uniform(p.rng, step)
		} else {
			gene.Weight = uniform(p.rng, p.cfg.Genome.WeightRange)
		}
	}
}

// LinkMutate adds a connection between two distinct random neurons. The
// source may be an input, the target never is. With forceBias the source is
// replaced by the bias input. A link that already exists is not added again.
func (g *Genome) LinkMutate(p *Pool, forceBias bool) {
	n1 := g.RandomNeuron(p.rng, true)
	n2 := g.RandomNeuron(p.rng, false)
	// n2 is never an input, so the redraw ends once an input comes up.
	for n1 == n2 {
		n1 = g.RandomNeuron(p.rng, true)
	}

	if n1 < g.inputs && n2 < g.inputs {
		return
	}
	if n2 < g.inputs {
		n1, n2 = n2, n1
	}

	link := &Gene{Input: n1, Output: n2, Enabled: true}
	if forceBias {
		link.Input = g.inputs - 1
	}
	if g.ContainsLink(link) {
		return
	}

	link.Innovation = p.NewInnovation()
	link.Weight = uniform(p.rng, p.cfg.Genome.WeightRange)
	g.Genes = append(g.Genes, link)
}

// NodeMutate splits a random enabled gene: the gene is disabled and a new
// hidden neuron is spliced in with an identity link on the input side and
// the split gene's weight on the output side.
func (g *Genome) NodeMutate(p *Pool) {
	if len(g.Genes) == 0 {
		return
	}
	gene := g.Genes[p.rng.Intn(len(g.Genes))]
	if !gene.Enabled {
		return
	}

	g.MaxNeuron++
	gene.Enabled = false

	in := gene.Copy()
	in.Output = g.MaxNeuron
	in.Weight = 1
	in.Innovation = p.NewInnovation()
	in.Enabled = true
	g.Genes = append(g.Genes, in)

	out := gene.Copy()
	out.Input = g.MaxNeuron
	out.Innovation = p.NewInnovation()
	out.Enabled = true
	g.Genes = append(g.Genes, out)
}

// EnableDisableMutate flips one random gene whose enabled flag differs from
// enable. It does nothing when no gene qualifies.
func (g *Genome) EnableDisableMutate(p *Pool, enable bool) {
	var candidates []*Gene
	for _, gene := range g.Genes {
		if gene.Enabled != enable {
			candidates = append(candidates, gene)
		}
	}
	if len(candidates) > 0 {
		candidates[p.rng.Intn(len(candidates))].Enabled = enable
	}
}

// Mutate self-adapts the mutation rates and then applies every operator.
// Structural rates are expected counts: a rate of 2.3 applies the operator
// twice for sure and a third time with probability 0.3.
func (g *Genome) Mutate(p *Pool) {
	g.Rates.adapt(p.rng, p.cfg.Genome.RateAdapt)

	if chance(p.rng, g.Rates.Connections) {
		g.PointMutate(p)
	}

	repeat := func(rate float32, op func()) {
		for r := rate; r > 0; r-- {
			if chance(p.rng, r) {
				op()
			}
		}
	}
	repeat(g.Rates.Link, func() { g.LinkMutate(p, false) })
	repeat(g.Rates.Bias, func() { g.LinkMutate(p, true) })
	repeat(g.Rates.Node, func() { g.NodeMutate(p) })
	repeat(g.Rates.Enable, func() { g.EnableDisableMutate(p, true) })
	repeat(g.Rates.Disable, func() { g.EnableDisableMutate(p, false) })
}
