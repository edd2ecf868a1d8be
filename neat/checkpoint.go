package neat

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// A snapshot is a little-endian binary record:
//
//	generation int32, maxFitness f32, innovation int32, species int32
//	per species: topFitness f32, staleness int32, genomes int32
//	per genome:  maxNeuron int32, 7 x (name string, rate f32), genes int32
//	per gene:    input int32, output int32, weight f32, innovation int32, enabled u8
//
// Strings are a uvarint byte length followed by UTF-8 bytes.

const maxRateNameLen = 64

// --------------------------- Snapshot ---------------------------

// WriteSnapshot serializes the pool's evolutionary state to w. Genome
// fitness and ranks are not part of a snapshot.
func (p *Pool) WriteSnapshot(w io.Writer) error {
	sw := &snapshotWriter{w: bufio.NewWriter(w)}

	// --- Header ---
	sw.int32(p.generation)
	sw.float32(p.maxFitness)
	sw.int32(p.innovation)

	// --- Species, each followed by its genomes ---
	sw.int32(len(p.Species))
	for _, s := range p.Species {
		sw.float32(s.TopFitness)
		sw.int32(s.Staleness)
		sw.int32(len(s.Genomes))
		for _, g := range s.Genomes {
			sw.int32(g.MaxNeuron)
			// Rates are written by name so their order can change.
			for _, e := range g.Rates.Entries() {
				sw.string(e.Name)
				sw.float32(e.Value)
			}
			sw.int32(len(g.Genes))
			for _, gene := range g.Genes {
				sw.int32(gene.Input)
				sw.int32(gene.Output)
				sw.float32(gene.Weight)
				sw.int32(gene.Innovation)
				sw.bool(gene.Enabled)
			}
		}
	}

	if sw.err != nil {
		return fmt.Errorf("failed to write snapshot: %w", sw.err)
	}
	if err := sw.w.Flush(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot replaces the pool's evolutionary state with the snapshot read
// from r and rebuilds every genome's network. The pool must have been Setup
// so the input/output layout is known. On any error the pool is unchanged;
// malformed or truncated data yields ErrCorruptSnapshot.
func (p *Pool) ReadSnapshot(r io.Reader) error {
	if p.inputs <= 0 || p.outputs <= 0 {
		return errors.New("read snapshot: pool has no input/output layout, call Setup first")
	}

	// Everything is decoded into locals first. The pool is only assigned
	// once the whole snapshot has been read without error.
	sr := &snapshotReader{r: bufio.NewReader(r)}
	generation := sr.int32()
	maxFitness := sr.float32()
	innovation := sr.int32()
	speciesCount := sr.count()
	if sr.err == nil {
		switch {
		case generation < 1:
			sr.fail("generation %d is not positive", generation)
		case innovation < 0:
			sr.fail("innovation counter %d is negative", innovation)
		case speciesCount == 0:
			sr.fail("snapshot holds no species")
		}
	}

	var species []*Species
	for i := 0; i < speciesCount && sr.err == nil; i++ {
		s := &Species{
			TopFitness: sr.float32(),
			Staleness:  sr.int32(),
		}
		genomes := sr.count()
		if sr.err == nil && s.Staleness < 0 {
			sr.fail("species %d has negative staleness", i)
		}
		if sr.err == nil && genomes == 0 {
			sr.fail("species %d is empty", i)
		}
		for j := 0; j < genomes && sr.err == nil; j++ {
			s.Genomes = append(s.Genomes, p.readGenome(sr, innovation))
		}
		species = append(species, s)
	}

	if sr.err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, sr.err)
	}

	for _, s := range species {
		for _, g := range s.Genomes {
			g.GenerateNetwork()
		}
	}
	p.Species = species
	p.generation = generation
	p.maxFitness = maxFitness
	p.innovation = innovation
	p.currentSpecies, p.currentGenome = 0, 0
	p.best = nil
	return nil
}

func (p *Pool) readGenome(sr *snapshotReader, innovation int) *Genome {
	g := NewGenome(p.inputs, p.outputs, MutationRates{})
	g.MaxNeuron = sr.int32()

	seen := make(map[string]bool, NumRates)
	for k := 0; k < NumRates && sr.err == nil; k++ {
		name := sr.string()
		value := sr.float32()
		if sr.err != nil {
			break
		}
		if seen[name] {
			sr.fail("mutation rate '%s' repeated", name)
			break
		}
		seen[name] = true
		if err := g.Rates.Set(name, value); err != nil {
			sr.fail("%v", err)
		}
	}

	// Input and output ids are valid whatever the watermark says; older
	// writers left it at the bias id. Raising it keeps NodeMutate from
	// allocating an output id as a hidden neuron.
	if g.MaxNeuron < p.inputs+p.outputs-1 {
		g.MaxNeuron = p.inputs + p.outputs - 1
	}

	genes := sr.count()
	innovations := make(map[int]bool)
	for k := 0; k < genes && sr.err == nil; k++ {
		gene := &Gene{
			Input:      sr.int32(),
			Output:     sr.int32(),
			Weight:     sr.float32(),
			Innovation: sr.int32(),
			Enabled:    sr.bool(),
		}
		if sr.err != nil {
			break
		}
		switch {
		case gene.Input < 0 || gene.Input > g.MaxNeuron:
			sr.fail("gene %d input neuron %d out of range", gene.Innovation, gene.Input)
		case gene.Output < p.inputs || gene.Output > g.MaxNeuron:
			sr.fail("gene %d output neuron %d out of range", gene.Innovation, gene.Output)
		case gene.Innovation <= 0 || gene.Innovation > innovation:
			sr.fail("gene innovation %d outside (0, %d]", gene.Innovation, innovation)
		case innovations[gene.Innovation]:
			sr.fail("innovation %d repeated within a genome", gene.Innovation)
		}
		innovations[gene.Innovation] = true
		g.Genes = append(g.Genes, gene)
	}
	return g
}

// --------------------------- Checkpoint files ---------------------------

// SaveCheckpoint writes a snapshot to filePath, gzip-compressed when the
// path ends in .gz. The file is replaced atomically.
func (p *Pool) SaveCheckpoint(filePath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	var gz *gzip.Writer
	if strings.HasSuffix(filePath, ".gz") {
		gz = gzip.NewWriter(tmp)
		w = gz
	}
	err = p.WriteSnapshot(w)
	if err == nil && gz != nil {
		err = gz.Close()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to save checkpoint '%s': %w", filePath, err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to save checkpoint '%s': %w", filePath, err)
	}

	p.logger.Info("checkpoint saved", zap.String("path", filePath), zap.Int("generation", p.generation))
	return nil
}

// LoadCheckpoint restores the pool from filePath. A missing file is not an
// error: it returns false and leaves the pool as it is.
func (p *Pool) LoadCheckpoint(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(filePath, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return false, fmt.Errorf("%w: '%s': %v", ErrCorruptSnapshot, filePath, err)
		}
		defer gz.Close()
		r = gz
	}

	if err := p.ReadSnapshot(r); err != nil {
		return false, fmt.Errorf("failed to load checkpoint '%s': %w", filePath, err)
	}

	p.logger.Info("checkpoint loaded", zap.String("path", filePath), zap.Int("generation", p.generation))
	return true, nil
}

// --------------------------- Encoding helpers ---------------------------

// snapshotWriter keeps the first error and turns later writes into no-ops.
type snapshotWriter struct {
	w   *bufio.Writer
	buf [binary.MaxVarintLen64]byte
	err error
}

func (sw *snapshotWriter) write(b []byte) {
	if sw.err != nil {
		return
	}
	_, sw.err = sw.w.Write(b)
}

func (sw *snapshotWriter) int32(v int) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		if sw.err == nil {
			sw.err = fmt.Errorf("value %d does not fit in int32", v)
		}
		return
	}
	binary.LittleEndian.PutUint32(sw.buf[:4], uint32(int32(v)))
	sw.write(sw.buf[:4])
}

func (sw *snapshotWriter) float32(v float32) {
	binary.LittleEndian.PutUint32(sw.buf[:4], math.Float32bits(v))
	sw.write(sw.buf[:4])
}

func (sw *snapshotWriter) bool(v bool) {
	sw.buf[0] = 0
	if v {
		sw.buf[0] = 1
	}
	sw.write(sw.buf[:1])
}

func (sw *snapshotWriter) string(s string) {
	n := binary.PutUvarint(sw.buf[:], uint64(len(s)))
	sw.write(sw.buf[:n])
	sw.write([]byte(s))
}

// snapshotReader keeps the first error and returns zero values afterwards.
type snapshotReader struct {
	r   *bufio.Reader
	buf [4]byte
	err error
}

func (sr *snapshotReader) fail(format string, args ...interface{}) {
	if sr.err == nil {
		sr.err = fmt.Errorf(format, args...)
	}
}

func (sr *snapshotReader) read(n int) []byte {
	if sr.err != nil {
		return nil
	}
	if _, err := io.ReadFull(sr.r, sr.buf[:n]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		sr.err = err
		return nil
	}
	return sr.buf[:n]
}

func (sr *snapshotReader) int32() int {
	b := sr.read(4)
	if b == nil {
		return 0
	}
	return int(int32(binary.LittleEndian.Uint32(b)))
}

// count reads a non-negative int32 element count.
func (sr *snapshotReader) count() int {
	n := sr.int32()
	if n < 0 {
		sr.fail("negative count %d", n)
		return 0
	}
	return n
}

func (sr *snapshotReader) float32() float32 {
	b := sr.read(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func (sr *snapshotReader) bool() bool {
	b := sr.read(1)
	if b == nil {
		return false
	}
	switch b[0] {
	case 0:
		return false
	case 1:
		return true
	}
	sr.fail("invalid bool byte %#x", b[0])
	return false
}

func (sr *snapshotReader) string() string {
	if sr.err != nil {
		return ""
	}
	n, err := binary.ReadUvarint(sr.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		sr.err = err
		return ""
	}
	if n > maxRateNameLen {
		sr.fail("string length %d exceeds %d", n, maxRateNameLen)
		return ""
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(sr.r, b); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		sr.err = err
		return ""
	}
	return string(b)
}
