package layout

import "testing"

// testKey returns a key whose bytes are all b.
func testKey(b byte) AccountKey {
	var k AccountKey
	for i := range k {
		k[i] = b
	}
	return k
}

func decodePriceT(t *testing.T, buf *Buffer) *PriceAccount {
	t.Helper()
	p, err := DecodePrice(buf)
	if err != nil {
		t.Fatalf("DecodePrice failed: %v", err)
	}
	t.Cleanup(p.Release)
	return p
}

func decodeProductT(t *testing.T, buf *Buffer) *ProductAccount {
	t.Helper()
	p, err := DecodeProduct(buf)
	if err != nil {
		t.Fatalf("DecodeProduct failed: %v", err)
	}
	t.Cleanup(p.Release)
	return p
}

func decodeMappingT(t *testing.T, buf *Buffer) *MappingAccount {
	t.Helper()
	m, err := DecodeMapping(buf)
	if err != nil {
		t.Fatalf("DecodeMapping failed: %v", err)
	}
	t.Cleanup(m.Release)
	return m
}

// mappingWith returns a mapping page holding n products keyed 1..n in the first byte.
func mappingWith(t *testing.T, n int) *MappingAccount {
	t.Helper()
	m := decodeMappingT(t, NewAccount(testKey(0xEE), AccountTypeMapping))
	for i := 0; i < n; i++ {
		var k AccountKey
		k[0] = byte(i%255 + 1)
		k[1] = byte(i / 255)
		if !m.AppendProduct(k) {
			t.Fatalf("AppendProduct(%d) failed", i)
		}
	}
	return m
}
