package memengine

import (
	"slices"

	"github.com/hupe1980/duckvec/chunk"
)

// encodedState is a chunk.State whose byte buffers are compressed blocks.
type encodedState struct {
	data     []byte
	heap     []byte
	validity []uint64
	listSize int
	rawBytes int64
	children []encodedState
}

func encodeState(s chunk.State, ct Compression) (encodedState, error) {
	data, err := compressBlock(s.Data, ct)
	if err != nil {
		return encodedState{}, err
	}
	heap, err := compressBlock(s.Heap, ct)
	if err != nil {
		return encodedState{}, err
	}
	e := encodedState{
		data:     data,
		heap:     heap,
		validity: slices.Clone(s.Validity),
		listSize: s.ListSize,
		rawBytes: int64(len(s.Data) + len(s.Heap) + 8*len(s.Validity)),
	}
	for _, c := range s.Children {
		ce, err := encodeState(c, ct)
		if err != nil {
			return encodedState{}, err
		}
		e.children = append(e.children, ce)
	}
	return e, nil
}

func decodeState(e encodedState, ct Compression) (chunk.State, error) {
	data, err := decompressBlock(e.data, ct)
	if err != nil {
		return chunk.State{}, err
	}
	heap, err := decompressBlock(e.heap, ct)
	if err != nil {
		return chunk.State{}, err
	}
	s := chunk.State{
		Data:     data,
		Heap:     heap,
		Validity: e.validity,
		ListSize: e.listSize,
	}
	for _, c := range e.children {
		cs, err := decodeState(c, ct)
		if err != nil {
			return chunk.State{}, err
		}
		s.Children = append(s.Children, cs)
	}
	return s, nil
}

// sizes returns the raw and stored byte counts of the tree.
func (e encodedState) sizes() (raw, stored int64) {
	raw = e.rawBytes
	stored = int64(len(e.data) + len(e.heap) + 8*len(e.validity))
	for _, c := range e.children {
		r, s := c.sizes()
		raw += r
		stored += s
	}
	return raw, stored
}
