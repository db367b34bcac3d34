package layout

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"pyth_index/internal/domain"
)

// PriceInfo is a price/confidence pair with its status and publish slot.
type PriceInfo struct {
	Price      int64
	Conf       uint64
	Status     PriceStatus
	CorpAction CorpAction
	PubSlot    uint64
}

// NewPriceInfo returns a PriceInfo with the default Trading status.
func NewPriceInfo(price int64, conf uint64, pubSlot uint64) PriceInfo {
	return PriceInfo{Price: price, Conf: conf, Status: DefaultPriceStatus, PubSlot: pubSlot}
}

// Decimal returns price and confidence scaled by 10^expo.
func (p PriceInfo) Decimal(expo int32) (price, conf decimal.Decimal) {
	price = decimal.New(p.Price, expo)
	conf = decimal.NewFromBigInt(new(big.Int).SetUint64(p.Conf), expo)
	return price, conf
}

func readPriceInfo(b []byte, off int) PriceInfo {
	return PriceInfo{
		Price:      readI64(b, off+infoPriceOff),
		Conf:       readU64(b, off+infoConfOff),
		Status:     PriceStatus(readU32(b, off+infoStatusOff)),
		CorpAction: CorpAction(readU32(b, off+infoCorpActOff)),
		PubSlot:    readU64(b, off+infoPubSlotOff),
	}
}

func writePriceInfo(b []byte, off int, p PriceInfo) {
	writeI64(b, off+infoPriceOff, p.Price)
	writeU64(b, off+infoConfOff, p.Conf)
	writeU32(b, off+infoStatusOff, uint32(p.Status))
	writeU32(b, off+infoCorpActOff, uint32(p.CorpAction))
	writeU64(b, off+infoPubSlotOff, p.PubSlot)
}

// PriceComponent is one publisher's contribution to a price account.
type PriceComponent struct {
	Publisher AccountKey
	Agg       PriceInfo
	Latest    PriceInfo
}

// PriceAccount is a read/write view over a price account buffer.
type PriceAccount struct {
	view
}

// DecodePrice checks out buf as a price account.
func DecodePrice(buf *Buffer) (*PriceAccount, error) {
	b, err := buf.checkout(AccountTypePrice)
	if err != nil {
		return nil, err
	}
	return &PriceAccount{view{buf: buf, b: b}}, nil
}

func (p *PriceAccount) PriceType() PriceType     { return PriceType(readU32(p.b, pricePTypeOff)) }
func (p *PriceAccount) SetPriceType(t PriceType) { writeU32(p.b, pricePTypeOff, uint32(t)) }

func (p *PriceAccount) Exponent() int32     { return readI32(p.b, priceExpoOff) }
func (p *PriceAccount) SetExponent(e int32) { writeI32(p.b, priceExpoOff, e) }

// NumComponents returns the declared number of component prices.
func (p *PriceAccount) NumComponents() uint32     { return readU32(p.b, priceNumOff) }
func (p *PriceAccount) SetNumComponents(n uint32) { writeU32(p.b, priceNumOff, n) }

func (p *PriceAccount) CurrentSlot() uint64     { return readU64(p.b, priceCurrSlotOff) }
func (p *PriceAccount) SetCurrentSlot(s uint64) { writeU64(p.b, priceCurrSlotOff, s) }

func (p *PriceAccount) ValidSlot() uint64     { return readU64(p.b, priceValidSlotOff) }
func (p *PriceAccount) SetValidSlot(s uint64) { writeU64(p.b, priceValidSlotOff, s) }

// TWAP is the time-weighted average price.
func (p *PriceAccount) TWAP() int64     { return readI64(p.b, priceTwapOff) }
func (p *PriceAccount) SetTWAP(v int64) { writeI64(p.b, priceTwapOff, v) }

// AnnualizedVolatility is avol.
func (p *PriceAccount) AnnualizedVolatility() uint64     { return readU64(p.b, priceAvolOff) }
func (p *PriceAccount) SetAnnualizedVolatility(v uint64) { writeU64(p.b, priceAvolOff, v) }

// Derived returns reserved derived value i in [0,6).
func (p *PriceAccount) Derived(i int) int64 {
	if i < 0 || i >= priceDerivedFields {
		panic(fmt.Sprintf("layout: derived index %d out of range", i))
	}
	return readI64(p.b, priceDrvOff+8*i)
}

func (p *PriceAccount) ProductKey() AccountKey     { return readKey(p.b, priceProdOff) }
func (p *PriceAccount) SetProductKey(k AccountKey) { writeKey(p.b, priceProdOff, k) }

// NextPriceKey links to the next price account of the same product.
func (p *PriceAccount) NextPriceKey() AccountKey     { return readKey(p.b, priceNextOff) }
func (p *PriceAccount) SetNextPriceKey(k AccountKey) { writeKey(p.b, priceNextOff, k) }

// AggregatorKey is the publisher that computed the last aggregate.
func (p *PriceAccount) AggregatorKey() AccountKey     { return readKey(p.b, priceAggPubOff) }
func (p *PriceAccount) SetAggregatorKey(k AccountKey) { writeKey(p.b, priceAggPubOff, k) }

// Aggregate is the aggregate price info.
func (p *PriceAccount) Aggregate() PriceInfo     { return readPriceInfo(p.b, priceAggOff) }
func (p *PriceAccount) SetAggregate(v PriceInfo) { writePriceInfo(p.b, priceAggOff, v) }

// Component returns publisher slot i in [0,32). Slots past NumComponents are not meaningful.
func (p *PriceAccount) Component(i int) PriceComponent {
	off := componentOffset(i)
	return PriceComponent{
		Publisher: readKey(p.b, off+compPublisherOff),
		Agg:       readPriceInfo(p.b, off+compAggOff),
		Latest:    readPriceInfo(p.b, off+compLatestOff),
	}
}

// SetComponent writes publisher slot i.
func (p *PriceAccount) SetComponent(i int, c PriceComponent) {
	off := componentOffset(i)
	writeKey(p.b, off+compPublisherOff, c.Publisher)
	writePriceInfo(p.b, off+compAggOff, c.Agg)
	writePriceInfo(p.b, off+compLatestOff, c.Latest)
}

// Components returns the occupied publisher slots, bounded by the slot capacity.
func (p *PriceAccount) Components() []PriceComponent {
	n := min(int(p.NumComponents()), PriceComponents)
	out := make([]PriceComponent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, p.Component(i))
	}
	return out
}

func componentOffset(i int) int {
	if i < 0 || i >= PriceComponents {
		panic(fmt.Sprintf("layout: component index %d out of range", i))
	}
	return priceCompOff + i*PriceComponentBytes
}

// Snapshot copies the aggregate price into a registry snapshot.
// The caller is expected to have validated the account first.
func (p *PriceAccount) Snapshot(productKey AccountKey, at time.Time) domain.PriceSnapshot {
	agg := p.Aggregate()
	expo := p.Exponent()
	price, conf := agg.Decimal(expo)
	return domain.PriceSnapshot{
		ProductKey: productKey.String(),
		PriceKey:   p.Key().String(),
		Price:      price,
		Conf:       conf,
		Exponent:   expo,
		Status:     agg.Status.String(),
		PubSlot:    agg.PubSlot,
		ValidSlot:  p.ValidSlot(),
		RecordedAt: at,
	}
}
