package neat

import "fmt"

// Gene is one directed, weighted connection between two neurons. Innovation
// is assigned once from the pool's global counter and is the only key used to
// align genes of different genomes.
type Gene struct {
	Input      int
	Output     int
	Weight     float32
	Enabled    bool
	Innovation int
}

// String returns a string representation of the Gene.
func (g *Gene) String() string {
	return fmt.Sprintf("Gene(#%d: %d->%d, Weight: %.3f, Enabled: %t)",
		g.Innovation, g.Input, g.Output, g.Weight, g.Enabled)
}

// Copy creates a copy of the Gene.
func (g *Gene) Copy() *Gene {
	c := *g
	return &c
}
