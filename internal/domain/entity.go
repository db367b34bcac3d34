package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndexEntry is a named group of account keys held by the index registry.
// ID is assigned once at creation and never reused.
type IndexEntry struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string          `gorm:"index" json:"name"`
	Keys      []string        `gorm:"serializer:json" json:"keys"`
	Snapshots []PriceSnapshot `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"snapshots,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Clone returns a deep copy so callers cannot mutate registry state.
func (e IndexEntry) Clone() IndexEntry {
	out := e
	out.Keys = append([]string(nil), e.Keys...)
	out.Snapshots = append([]PriceSnapshot(nil), e.Snapshots...)
	return out
}

// PriceSnapshot is a validated copy of a price account's aggregate price.
// Price and Conf are already scaled by Exponent.
type PriceSnapshot struct {
	ID         uint            `gorm:"primaryKey" json:"-"`
	EntryID    uint64          `gorm:"index" json:"-"`
	ProductKey string          `json:"product_key"`
	PriceKey   string          `json:"price_key"`
	Price      decimal.Decimal `gorm:"type:text" json:"price"`
	Conf       decimal.Decimal `gorm:"type:text" json:"conf"`
	Exponent   int32           `json:"exponent"`
	Status     string          `json:"status"`
	PubSlot    uint64          `json:"pub_slot"`
	ValidSlot  uint64          `json:"valid_slot"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// IsTrading reports whether the snapshot was taken while the feed was trading.
func (s PriceSnapshot) IsTrading() bool {
	return s.Status == "Trading"
}

// AppConfig represents persisted key/value state (e.g. the registry id counter)
type AppConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
