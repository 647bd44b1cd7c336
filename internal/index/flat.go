package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// File header for the persisted index. KindFlatIP is the only kind today;
// the field exists so a future index type fails loudly instead of being
// misread as flat vectors.
const (
	fileMagic  = "RVIX"
	KindFlatIP = uint16(1)
)

// Flat is an append-only exact nearest-neighbor index scored by inner
// product. All vectors are expected to be L2-normalized by the caller so
// inner product equals cosine similarity.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Pos/score pair produced by Search. Pos is the vector's index slot,
// positionally aligned with the metadata store.
type Candidate struct {
	Pos   int
	Score float32
}

func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid index dimension: %d", dim)
	}
	return &Flat{dim: dim}, nil
}

func (f *Flat) Dim() int   { return f.dim }
func (f *Flat) Count() int { return len(f.vectors) }

// Add appends vectors to the index. A dimension mismatch is a hard
// configuration error; nothing is appended in that case.
func (f *Flat) Add(vecs [][]float32) error {
	for _, v := range vecs {
		if len(v) != f.dim {
			return &MismatchError{
				What: "dimension",
				Want: strconv.Itoa(f.dim),
				Got:  strconv.Itoa(len(v)),
			}
		}
	}
	f.vectors = append(f.vectors, vecs...)
	return nil
}

// Search scans every vector and returns the k best candidates sorted by
// descending inner product.
func (f *Flat) Search(query []float32, k int) ([]Candidate, error) {
	if len(query) != f.dim {
		return nil, &MismatchError{
			What: "dimension",
			Want: strconv.Itoa(f.dim),
			Got:  strconv.Itoa(len(query)),
		}
	}
	if k <= 0 || len(f.vectors) == 0 {
		return nil, nil
	}

	candidates := make([]Candidate, len(f.vectors))
	for i, v := range f.vectors {
		var sum float32
		for j := range v {
			sum += v[j] * query[j]
		}
		candidates[i] = Candidate{Pos: i, Score: sum}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k], nil
}

// WriteTo serializes the index: magic, kind, dimension, count, then the
// raw float32 data in slot order.
func (f *Flat) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(fileMagic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, KindFlatIP); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(f.dim)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(f.vectors))); err != nil {
		return err
	}
	for _, v := range f.vectors {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadFlat deserializes an index written by WriteTo, validating the magic
// and the index kind before trusting the payload.
func ReadFlat(r io.Reader) (*Flat, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("reading index header: %w", err)
	}
	if string(magic) != fileMagic {
		return nil, &MismatchError{What: "format", Want: fileMagic, Got: string(magic)}
	}

	var kind uint16
	if err := binary.Read(br, binary.LittleEndian, &kind); err != nil {
		return nil, fmt.Errorf("reading index kind: %w", err)
	}
	if kind != KindFlatIP {
		return nil, &MismatchError{
			What: "kind",
			Want: strconv.Itoa(int(KindFlatIP)),
			Got:  strconv.Itoa(int(kind)),
		}
	}

	var dim, count uint32
	if err := binary.Read(br, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("reading index dimension: %w", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading index count: %w", err)
	}

	f, err := NewFlat(int(dim))
	if err != nil {
		return nil, err
	}
	f.vectors = make([][]float32, count)
	for i := range f.vectors {
		v := make([]float32, dim)
		if err := binary.Read(br, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("reading vector %d: %w", i, err)
		}
		f.vectors[i] = v
	}
	return f, nil
}
