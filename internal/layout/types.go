package layout

const (
	// Magic is the sentinel at offset 0 of every oracle account.
	Magic uint32 = 0xA1B2C3D4
	// Version is the only supported layout version.
	Version uint32 = 2

	// MapTableSize is the product key capacity of one mapping page.
	MapTableSize = 640
	// PriceComponents is the number of per-publisher slots in a price account.
	PriceComponents = 32

	// KeyBytes is the width of an account key.
	KeyBytes = 32

	// HeaderBytes is the width of the header shared by every account type.
	HeaderBytes = 16

	PriceInfoBytes      = 32
	PriceComponentBytes = KeyBytes + 2*PriceInfoBytes // 96

	ProductAccountBytes = 512
	ProductHeaderBytes  = HeaderBytes + KeyBytes // 48
	ProductAttrBytes    = ProductAccountBytes - ProductHeaderBytes

	MappingAccountBytes = mappingProductsOff + MapTableSize*KeyBytes   // 20536
	PriceAccountBytes   = priceCompOff + PriceComponents*PriceComponentBytes // 3312
)

// header
const (
	hdrMagicOff = 0
	hdrVerOff   = 4
	hdrTypeOff  = 8
	hdrSizeOff  = 12
)

// price account
const (
	pricePTypeOff     = 16
	priceExpoOff      = 20
	priceNumOff       = 24
	priceCurrSlotOff  = 32
	priceValidSlotOff = 40
	priceTwapOff      = 48
	priceAvolOff      = 56
	priceDrvOff       = 64 // drv0..drv5, 8 bytes each
	priceProdOff      = 112
	priceNextOff      = priceProdOff + KeyBytes
	priceAggPubOff    = priceNextOff + KeyBytes
	priceAggOff       = priceAggPubOff + KeyBytes
	priceCompOff      = priceAggOff + PriceInfoBytes

	priceDerivedFields = 6
)

// price info, relative to the start of the block
const (
	infoPriceOff   = 0
	infoConfOff    = 8
	infoStatusOff  = 16
	infoCorpActOff = 20
	infoPubSlotOff = 24
)

// price component, relative to the start of the slot
const (
	compPublisherOff = 0
	compAggOff       = KeyBytes
	compLatestOff    = compAggOff + PriceInfoBytes
)

// product account
const (
	productPxAccOff = HeaderBytes
	productAttrOff  = ProductHeaderBytes
)

// mapping account
const (
	mappingNumOff      = 16
	mappingNextOff     = 24
	mappingProductsOff = mappingNextOff + KeyBytes
)

// AccountType tags what an account contains.
type AccountType uint32

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeMapping
	AccountTypeProduct
	AccountTypePrice
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeMapping:
		return "mapping"
	case AccountTypeProduct:
		return "product"
	case AccountTypePrice:
		return "price"
	default:
		return "unknown"
	}
}

// Size returns the fixed record size for t, or 0 for unknown types.
func (t AccountType) Size() int {
	switch t {
	case AccountTypeMapping:
		return MappingAccountBytes
	case AccountTypeProduct:
		return ProductAccountBytes
	case AccountTypePrice:
		return PriceAccountBytes
	default:
		return 0
	}
}

// PriceType is the price or calculation type of a price account.
type PriceType uint32

const (
	PriceTypeUnknown PriceType = iota
	PriceTypePrice
	PriceTypeTWAP
	PriceTypeVolatility
)

func (t PriceType) String() string {
	switch t {
	case PriceTypePrice:
		return "Price"
	case PriceTypeTWAP:
		return "TWAP"
	case PriceTypeVolatility:
		return "Volatility"
	default:
		return "Unknown"
	}
}

// PriceStatus is the trading status of an aggregate or component price.
type PriceStatus uint32

const (
	PriceStatusUnknown PriceStatus = iota
	PriceStatusTrading
	PriceStatusHalted
	PriceStatusAuction
)

// DefaultPriceStatus is used when a new PriceInfo is constructed.
const DefaultPriceStatus = PriceStatusTrading

func (s PriceStatus) String() string {
	switch s {
	case PriceStatusTrading:
		return "Trading"
	case PriceStatusHalted:
		return "Halted"
	case PriceStatusAuction:
		return "Auction"
	default:
		return "Unknown"
	}
}

// CorpAction is a corporate action flag. Only NoCorpAct is defined.
type CorpAction uint32

const CorpActionNone CorpAction = 0

func (c CorpAction) String() string {
	if c == CorpActionNone {
		return "NoCorpAct"
	}
	return "Unknown"
}
