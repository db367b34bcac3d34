package event

import "testing"

func TestTypeString(t *testing.T) {
	tests := map[Type]string{
		TypeShowPrice:      "show_price",
		TypeAttachSnapshot: "attach_snapshot",
		TypeUnknown:        "unknown",
		Type(200):          "unknown",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("Type(%d).String() = %q, want %q", typ, got, want)
		}
	}
}

func TestInstructionTypes(t *testing.T) {
	instrs := []Instruction{
		&DecodeAccountInstruction{},
		&ShowPriceInstruction{},
		&ShowProductInstruction{},
		&ShowMappingInstruction{},
		&EnumerateProductsInstruction{},
		&WalkMappingsInstruction{},
		&ValidatePairInstruction{},
		&VerifyMappingInstruction{},
		&CreateIndexInstruction{},
		&DeleteIndexInstruction{},
		&DeleteIndexByNameInstruction{},
		&LookupIndexInstruction{},
		&GetIndexInstruction{},
		&ListIndicesInstruction{},
		&AttachSnapshotInstruction{},
		&ListAccountsInstruction{},
		&ImportAccountInstruction{},
	}
	seen := make(map[Type]bool)
	for _, in := range instrs {
		typ := in.GetType()
		if typ == TypeUnknown {
			t.Errorf("%T reports unknown type", in)
		}
		if seen[typ] {
			t.Errorf("duplicate type %s", typ)
		}
		seen[typ] = true
	}
}

func TestPoolReset(t *testing.T) {
	in := AcquireShowMappingInstruction()
	in.Seq = 9
	in.From = 4
	in.Mapping[0] = 1
	ReleaseShowMappingInstruction(in)

	if in.Seq != 0 || in.From != 0 || in.Mapping.IsValid() {
		t.Errorf("released instruction not reset: %+v", in)
	}

	p := AcquireShowPriceInstruction()
	if p.Seq != 0 || p.Product.IsValid() || p.Price.IsValid() {
		t.Errorf("acquired instruction not zeroed: %+v", p)
	}
	ReleaseShowPriceInstruction(p)
	ReleaseShowPriceInstruction(nil)
}

func TestRelease(t *testing.T) {
	p := AcquireShowPriceInstruction()
	p.Seq = 3
	p.Price[0] = 7
	Release(p)
	if p.Seq != 0 || p.Price.IsValid() {
		t.Errorf("pooled price instruction not reset: %+v", p)
	}

	// instructions without a pool are untouched
	in := &GetIndexInstruction{ID: 5}
	in.Seq = 2
	Release(in)
	if in.Seq != 2 || in.ID != 5 {
		t.Errorf("non-pooled instruction modified: %+v", in)
	}
	Release(nil)
}
