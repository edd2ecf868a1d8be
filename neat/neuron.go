package neat

// Neuron is transient evaluation state, rebuilt from the genes every time a
// genome's network is generated.
type Neuron struct {
	Value    float32
	Incoming []*Gene

	live bool
}

// activate sets the neuron's value from its incoming genes. A neuron without
// incoming genes keeps its current value.
func (n *Neuron) activate(arena []Neuron) {
	if len(n.Incoming) == 0 {
		return
	}
	var sum float32
	for _, gene := range n.Incoming {
		sum += gene.Weight * arena[gene.Input].Value
	}
	n.Value = Sigmoid(sum)
}
