package engine

import (
	"fmt"
	"unsafe"
)

// MemoryView is a typed window over an engine's linear memory. Slices alias
// the engine buffer; nothing is copied.
type MemoryView struct {
	Values   []uint8
	Ages     []uint16
	Owners   []int32
	PCCounts []uint32
}

// Cell returns the state of one address.
func (v MemoryView) Cell(addr int) (value uint8, age uint16, owner int32, pcCount uint32) {
	return v.Values[addr], v.Ages[addr], v.Owners[addr], v.PCCounts[addr]
}

// NewMemoryView reinterprets the offsets of layout as arrays of size words.
// Word order is the host's native order, which is what an engine running in
// the same address space writes.
func NewMemoryView(buf []byte, layout MemoryLayout, size int) (MemoryView, error) {
	values, err := viewOf[uint8](buf, layout.ValuesPtr, size)
	if err != nil {
		return MemoryView{}, fmt.Errorf("values: %w", err)
	}
	ages, err := viewOf[uint16](buf, layout.AgesPtr, size)
	if err != nil {
		return MemoryView{}, fmt.Errorf("ages: %w", err)
	}
	owners, err := viewOf[int32](buf, layout.OwnersPtr, size)
	if err != nil {
		return MemoryView{}, fmt.Errorf("owners: %w", err)
	}
	pcs, err := viewOf[uint32](buf, layout.PCCountPtr, size)
	if err != nil {
		return MemoryView{}, fmt.Errorf("pc counts: %w", err)
	}
	return MemoryView{Values: values, Ages: ages, Owners: owners, PCCounts: pcs}, nil
}

func viewOf[T uint8 | uint16 | int32 | uint32](buf []byte, off, n int) ([]T, error) {
	var zero T
	width := int(unsafe.Sizeof(zero))
	if n <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrMemoryLayout, n)
	}
	if off < 0 || off+n*width > len(buf) {
		return nil, fmt.Errorf("%w: offset %d+%d exceeds buffer of %d bytes", ErrMemoryLayout, off, n*width, len(buf))
	}
	p := unsafe.Pointer(&buf[off])
	if uintptr(p)%unsafe.Alignof(zero) != 0 {
		return nil, fmt.Errorf("%w: offset %d not aligned to %d", ErrMemoryLayout, off, width)
	}
	return unsafe.Slice((*T)(p), n), nil
}

// PackedLayout places the four cell arrays back to back, widest last, so
// every array stays aligned when the buffer itself is. It returns the layout
// and the number of bytes the buffer needs.
func PackedLayout(size int) (MemoryLayout, int) {
	layout := MemoryLayout{
		ValuesPtr:  0,
		AgesPtr:    align(size, 4),
		OwnersPtr:  align(size, 4) + align(2*size, 4),
		PCCountPtr: align(size, 4) + align(2*size, 4) + 4*size,
	}
	return layout, layout.PCCountPtr + 4*size
}

func align(n, to int) int {
	return (n + to - 1) / to * to
}

// NewLinearMemory allocates a buffer suitable for PackedLayout. Backing it
// with uint64 words guarantees 8 byte alignment.
func NewLinearMemory(n int) []byte {
	words := make([]uint64, (n+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n)
}
