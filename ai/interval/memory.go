package interval

import (
	"encoding/json"
	"fmt"

	"github.com/benbjohnson/immutable"

	"github.com/oblivia-simplex/falcon/ai"
	"github.com/oblivia-simplex/falcon/il"
)

// Memory is a byte-granular abstract address space over Interval values. Each
// written byte occupies one cell; an absent cell is unwritten memory, which
// may hold anything, so absence reads as top. Intervals cannot enumerate
// their members, so accesses demand a singleton address and anything wider
// fails with ErrAddressTooImprecise.
type Memory struct {
	endian il.Endian
	cells  *immutable.SortedMap[uint64, Interval]
}

var _ ai.Memory[*Memory, Interval] = (*Memory)(nil)

// NewMemory returns an empty memory with the given byte order.
func NewMemory(endian il.Endian) *Memory {
	return &Memory{
		endian: endian,
		cells:  immutable.NewSortedMap[uint64, Interval](addrComparer{}),
	}
}

// Endian returns the byte order of this memory.
func (m *Memory) Endian() il.Endian { return m.endian }

// Len returns the number of written byte cells.
func (m *Memory) Len() int { return m.cells.Len() }

// Cell returns the abstract byte stored at a concrete address. Absent cells
// read as top.
func (m *Memory) Cell(addr uint64) Interval {
	if cell, ok := m.cells.Get(addr); ok {
		return cell
	}
	return Top(8)
}

// resolve unpacks an abstract address into its single concrete candidate.
func (m *Memory) resolve(index Interval) (uint64, error) {
	if index.IsBottom() {
		return 0, fmt.Errorf("%w: ⊥ address", ai.ErrLatticeInconsistency)
	}
	c, ok := index.Singleton()
	if !ok {
		return 0, fmt.Errorf("%w: address %s", ai.ErrAddressTooImprecise, index)
	}
	return c.Value, nil
}

// byteOffset maps significance index i (0 = least significant of n bytes) to
// the cell offset from the base address under this memory's byte order.
func (m *Memory) byteOffset(i, n uint) uint64 {
	if m.endian == il.LittleEndian {
		return uint64(i)
	}
	return uint64(n - i - 1)
}

// checkByteWidth verifies an access width is a whole number of bytes.
func checkByteWidth(op string, bits uint) (n uint, err error) {
	if bits == 0 || bits%8 != 0 {
		return 0, fmt.Errorf("%w: %s width %d is not byte-sized", ai.ErrLatticeInconsistency, op, bits)
	}
	return bits / 8, nil
}

// Store writes value at an abstract address. The single candidate address
// gets a strong update. A byte whose range degrades to top clears its cell.
func (m *Memory) Store(index Interval, value Interval) error {
	base, err := m.resolve(index)
	if err != nil {
		return err
	}
	n, err := checkByteWidth("store", value.Bits())
	if err != nil {
		return err
	}

	cells := m.cells
	for i := uint(0); i < n; i++ {
		shifted, err := value.Shr(FromConstant(il.NewConstant(uint64(8*i), value.Bits())))
		if err != nil {
			return err
		}
		cell, err := shifted.Trun(8)
		if err != nil {
			return err
		}

		addr := base + m.byteOffset(i, n)
		if cell.IsTop() {
			cells = cells.Delete(addr) // canonical form of an unknown byte
		} else {
			cells = cells.Set(addr, cell)
		}
	}
	m.cells = cells
	return nil
}

// Load reads a value of the given width at an abstract address, composing the
// cells most significant byte first.
func (m *Memory) Load(index Interval, bits uint) (Interval, error) {
	base, err := m.resolve(index)
	if err != nil {
		return Interval{}, err
	}
	n, err := checkByteWidth("load", bits)
	if err != nil {
		return Interval{}, err
	}

	eight := FromConstant(il.NewConstant(8, bits))

	var acc Interval
	for i := int(n) - 1; i >= 0; i-- {
		wide, err := m.Cell(base+m.byteOffset(uint(i), n)).Zext(bits)
		if err != nil {
			return Interval{}, err
		}
		if uint(i) == n-1 {
			acc = wide
			continue
		}
		if acc, err = acc.Shl(eight); err != nil {
			return Interval{}, err
		}
		if acc, err = acc.Or(wide); err != nil {
			return Interval{}, err
		}
	}
	return acc, nil
}

// Join merges two memories from diverging paths. A cell written on only one
// path joins against unwritten (top) memory on the other, so only cells
// present in both survive.
func (m *Memory) Join(other *Memory) (*Memory, error) {
	if m.endian != other.endian {
		return nil, fmt.Errorf("%w: join: byte order mismatch: %s != %s",
			ai.ErrLatticeInconsistency, m.endian, other.endian)
	}

	cells := immutable.NewSortedMap[uint64, Interval](addrComparer{})
	for itr := m.cells.Iterator(); !itr.Done(); {
		addr, ours, _ := itr.Next()
		theirs, ok := other.cells.Get(addr)
		if !ok {
			continue
		}
		joined, err := ours.Join(theirs)
		if err != nil {
			return nil, fmt.Errorf("join cell %#x: %w", addr, err)
		}
		if !joined.IsTop() {
			cells = cells.Set(addr, joined)
		}
	}
	return &Memory{endian: m.endian, cells: cells}, nil
}

// Eq reports structural equality.
func (m *Memory) Eq(other *Memory) bool {
	if m.endian != other.endian || m.cells.Len() != other.cells.Len() {
		return false
	}
	for itr := m.cells.Iterator(); !itr.Done(); {
		addr, ours, _ := itr.Next()
		theirs, ok := other.cells.Get(addr)
		if !ok || !ours.Eq(theirs) {
			return false
		}
	}
	return true
}

// memoryCell is the serialized form of one byte cell.
type memoryCell struct {
	Address uint64   `json:"address"`
	Value   Interval `json:"value"`
}

// memoryJSON is the serialized form of a Memory.
type memoryJSON struct {
	Endian il.Endian    `json:"endian"`
	Cells  []memoryCell `json:"cells"`
}

// MarshalJSON implements json.Marshaler.
func (m *Memory) MarshalJSON() ([]byte, error) {
	cells := make([]memoryCell, 0, m.cells.Len())
	for itr := m.cells.Iterator(); !itr.Done(); {
		addr, cell, _ := itr.Next()
		cells = append(cells, memoryCell{Address: addr, Value: cell})
	}
	return json.Marshal(memoryJSON{Endian: m.endian, Cells: cells})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Memory) UnmarshalJSON(data []byte) error {
	var raw memoryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cells := immutable.NewSortedMap[uint64, Interval](addrComparer{})
	for _, cell := range raw.Cells {
		cells = cells.Set(cell.Address, cell.Value)
	}
	m.endian, m.cells = raw.Endian, cells
	return nil
}

// addrComparer compares two 64-bit addresses. Implements immutable.Comparer.
type addrComparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b,
// and returns 0 if a is equal to b.
func (addrComparer) Compare(a, b uint64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
