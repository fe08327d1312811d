package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/kailas-cloud/tripdex/internal/domain"
)

var magic = [4]byte{'T', 'D', 'X', 'I'}

const (
	headerSize = 4 + 4 + 4 + 8 + 8
	// maxDim guards against allocating from a garbage header.
	maxDim = 1 << 16
)

// Header describes a persisted index blob.
type Header struct {
	Dim        int
	Count      int
	KeySum     uint64
	Generation uint64
}

// Encode writes the index with its key checksum and build generation.
func (x *Flat) Encode(w io.Writer, keySum, generation uint64) error {
	bw := bufio.NewWriter(w)
	var hdr [headerSize]byte
	copy(hdr[0:4], magic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(x.dim))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(x.n))
	binary.LittleEndian.PutUint64(hdr[12:20], keySum)
	binary.LittleEndian.PutUint64(hdr[20:28], generation)
	if _, err := bw.Write(hdr[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	var buf [4]byte
	for _, v := range x.data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write body: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Decode reads an index blob and checks it against want.
// Every structural or consistency failure is reported as domain.ErrIndexCorrupt.
func Decode(r io.Reader, want Header) (*Flat, error) {
	br := bufio.NewReader(r)
	var hdr [headerSize]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, corrupt("read header: %v", err)
	}
	if [4]byte(hdr[0:4]) != magic {
		return nil, corrupt("bad magic %q", hdr[0:4])
	}
	got := Header{
		Dim:        int(binary.LittleEndian.Uint32(hdr[4:8])),
		Count:      int(binary.LittleEndian.Uint32(hdr[8:12])),
		KeySum:     binary.LittleEndian.Uint64(hdr[12:20]),
		Generation: binary.LittleEndian.Uint64(hdr[20:28]),
	}
	if got.Dim <= 0 || got.Dim > maxDim {
		return nil, corrupt("implausible dimension %d", got.Dim)
	}
	if got.Dim != want.Dim {
		return nil, corrupt("dimension %d, encoder produces %d", got.Dim, want.Dim)
	}
	if got.Count != want.Count {
		return nil, corrupt("%d rows, catalog has %d destinations", got.Count, want.Count)
	}
	if got.KeySum != want.KeySum {
		return nil, corrupt("key checksum %016x does not match catalog %016x", got.KeySum, want.KeySum)
	}
	if got.Generation != want.Generation {
		return nil, corrupt("generation %016x does not match catalog %016x", got.Generation, want.Generation)
	}

	x := &Flat{dim: got.Dim, n: got.Count, data: make([]float32, got.Dim*got.Count)}
	var buf [4]byte
	for i := range x.data {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, corrupt("short body at value %d: %v", i, err)
		}
		v := math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, corrupt("non-finite value at row %d", i/got.Dim)
		}
		x.data[i] = v
	}
	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, corrupt("trailing bytes after %d rows", got.Count)
		}
		return nil, corrupt("read trailer: %v", err)
	}
	return x, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrIndexCorrupt, fmt.Sprintf(format, args...))
}
