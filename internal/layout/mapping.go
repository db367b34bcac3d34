package layout

import "fmt"

// MappingAccount is a read/write view over one page of the mapping list.
type MappingAccount struct {
	view
}

// DecodeMapping checks out buf as a mapping account.
func DecodeMapping(buf *Buffer) (*MappingAccount, error) {
	b, err := buf.checkout(AccountTypeMapping)
	if err != nil {
		return nil, err
	}
	return &MappingAccount{view{buf: buf, b: b}}, nil
}

// NumProducts returns the declared number of occupied product slots.
// It is not clamped; see Occupied.
func (m *MappingAccount) NumProducts() uint32     { return readU32(m.b, mappingNumOff) }
func (m *MappingAccount) SetNumProducts(n uint32) { writeU32(m.b, mappingNumOff, n) }

// Occupied returns the declared slot count bounded by the table capacity.
func (m *MappingAccount) Occupied() int {
	return min(int(m.NumProducts()), MapTableSize)
}

// NextKey links to the next mapping page. The zero key ends the list.
func (m *MappingAccount) NextKey() AccountKey     { return readKey(m.b, mappingNextOff) }
func (m *MappingAccount) SetNextKey(k AccountKey) { writeKey(m.b, mappingNextOff, k) }

// ProductKey returns slot i in [0,640). Slots past Occupied are not meaningful.
func (m *MappingAccount) ProductKey(i int) AccountKey {
	return readKey(m.b, productSlotOffset(i))
}

// SetProductKey writes slot i without touching the declared count.
func (m *MappingAccount) SetProductKey(i int, k AccountKey) {
	writeKey(m.b, productSlotOffset(i), k)
}

// AppendProduct writes k into the next free slot and bumps the count.
func (m *MappingAccount) AppendProduct(k AccountKey) bool {
	n := m.Occupied()
	if n >= MapTableSize {
		return false
	}
	m.SetProductKey(n, k)
	m.SetNumProducts(uint32(n + 1))
	return true
}

func productSlotOffset(i int) int {
	if i < 0 || i >= MapTableSize {
		panic(fmt.Sprintf("layout: mapping slot %d out of range", i))
	}
	return mappingProductsOff + i*KeyBytes
}
