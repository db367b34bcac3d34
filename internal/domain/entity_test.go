package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIndexEntry_Clone(t *testing.T) {
	orig := IndexEntry{
		ID:        3,
		Name:      "majors",
		Keys:      []string{"a", "b"},
		Snapshots: []PriceSnapshot{{PriceKey: "p", Price: decimal.NewFromInt(1)}},
	}

	c := orig.Clone()
	c.Keys[0] = "changed"
	c.Snapshots[0].PriceKey = "changed"

	if orig.Keys[0] != "a" {
		t.Error("Clone shares the Keys slice")
	}
	if orig.Snapshots[0].PriceKey != "p" {
		t.Error("Clone shares the Snapshots slice")
	}
	if c.ID != 3 || c.Name != "majors" {
		t.Errorf("Clone lost scalar fields: %+v", c)
	}
}

func TestIndexEntry_CloneEmpty(t *testing.T) {
	c := IndexEntry{ID: 1}.Clone()
	if c.Keys != nil || c.Snapshots != nil {
		t.Errorf("Clone of empty entry should keep nil slices: %+v", c)
	}
}

func TestPriceSnapshot_IsTrading(t *testing.T) {
	tests := map[string]bool{
		"Trading": true,
		"Halted":  false,
		"Unknown": false,
		"":        false,
	}
	for status, want := range tests {
		if got := (PriceSnapshot{Status: status}).IsTrading(); got != want {
			t.Errorf("IsTrading(%q) = %v, want %v", status, got, want)
		}
	}
}
