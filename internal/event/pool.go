package event

import (
	"sync"

	"pyth_index/internal/layout"
)

// Price and mapping reads are the high-frequency instructions, so they are pooled.
//
// Usage:
//
//	in := AcquireShowPriceInstruction()
//	in.Seq = seq
//	in.Product, in.Price = productKey, priceKey
//	// ... execute ...
//	Release(in) // Return to pool after processing
var showPricePool = sync.Pool{
	New: func() interface{} {
		return &ShowPriceInstruction{}
	},
}

// AcquireShowPriceInstruction gets a ShowPriceInstruction from the pool.
// The returned instruction has zero values and must be initialized.
func AcquireShowPriceInstruction() *ShowPriceInstruction {
	return showPricePool.Get().(*ShowPriceInstruction)
}

// ReleaseShowPriceInstruction returns a ShowPriceInstruction to the pool.
func ReleaseShowPriceInstruction(in *ShowPriceInstruction) {
	if in == nil {
		return
	}
	in.Seq = 0
	in.Product = layout.ZeroKey
	in.Price = layout.ZeroKey

	showPricePool.Put(in)
}

var showMappingPool = sync.Pool{
	New: func() interface{} {
		return &ShowMappingInstruction{}
	},
}

// AcquireShowMappingInstruction gets a ShowMappingInstruction from the pool.
func AcquireShowMappingInstruction() *ShowMappingInstruction {
	return showMappingPool.Get().(*ShowMappingInstruction)
}

// ReleaseShowMappingInstruction returns a ShowMappingInstruction to the pool.
func ReleaseShowMappingInstruction(in *ShowMappingInstruction) {
	if in == nil {
		return
	}
	in.Seq = 0
	in.Mapping = layout.ZeroKey
	in.From = 0

	showMappingPool.Put(in)
}

// Release returns in to its pool if its type is pooled. Other instructions are left alone.
func Release(in Instruction) {
	switch i := in.(type) {
	case *ShowPriceInstruction:
		ReleaseShowPriceInstruction(i)
	case *ShowMappingInstruction:
		ReleaseShowMappingInstruction(i)
	}
}
