// Package neat provides a Go implementation of the NeuroEvolution of Augmenting Topologies (NEAT) algorithm.
//
// NEAT evolves both the weights and the structure of neural networks. Every
// structural change is tagged with a global innovation number, which lets
// genomes of different shapes be aligned for crossover and compared for
// speciation.
//
// A Pool owns the population and an evaluation cursor. A host that drives
// its own simulation asks the pool for the current genome's outputs, reports
// a fitness and moves on; once every genome has been visited the pool breeds
// the next generation by itself.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	pool, err := neat.NewPool(config)
//	if err != nil {
//		log.Fatalf("Error creating pool: %v", err)
//	}
//	if err := pool.Setup(config.Neat.PopSize, config.Neat.NumInputs, config.Neat.NumOutputs); err != nil {
//		log.Fatalf("Error setting up pool: %v", err)
//	}
//
//	for pool.Generation() < 100 {
//		if !pool.FitnessAlreadyMeasured() {
//			outputs, err := pool.Evaluate(observe())
//			if err != nil {
//				log.Fatal(err)
//			}
//			pool.SetFitness(score(outputs))
//		}
//		pool.NextGenome()
//	}
//
// When genomes can be scored independently, RunGeneration evaluates a whole
// generation concurrently and then advances it.
package neat
