package layout

import (
	"fmt"

	"pyth_index/internal/domain"
)

// ProductAccount is a read/write view over a product account buffer.
type ProductAccount struct {
	view
}

// DecodeProduct checks out buf as a product account.
func DecodeProduct(buf *Buffer) (*ProductAccount, error) {
	b, err := buf.checkout(AccountTypeProduct)
	if err != nil {
		return nil, err
	}
	return &ProductAccount{view{buf: buf, b: b}}, nil
}

// PriceKey is the first price account in the product's list.
func (p *ProductAccount) PriceKey() AccountKey     { return readKey(p.b, productPxAccOff) }
func (p *ProductAccount) SetPriceKey(k AccountKey) { writeKey(p.b, productPxAccOff, k) }

// RawAttributes returns the attribute region. It aliases the buffer.
func (p *ProductAccount) RawAttributes() []byte {
	return p.b[productAttrOff:ProductAccountBytes]
}

// Attribute is one reference key/value pair, e.g. symbol=Crypto.BTC/USD.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Attributes parses the used part of the attribute region as length-prefixed
// key/value strings. The used length comes from the header size.
func (p *ProductAccount) Attributes() ([]Attribute, error) {
	used := int(p.Header().Size)
	if used > ProductAccountBytes {
		used = ProductAccountBytes
	}
	if used <= productAttrOff {
		return nil, nil
	}
	b := p.b[productAttrOff:used]

	var attrs []Attribute
	for len(b) > 0 {
		key, rest, ok := readShortString(b)
		if !ok {
			return attrs, fmt.Errorf("%w: product attribute key truncated", domain.ErrSizeMismatch)
		}
		if key == "" {
			break
		}
		val, rest, ok := readShortString(rest)
		if !ok {
			return attrs, fmt.Errorf("%w: product attribute %q value truncated", domain.ErrSizeMismatch, key)
		}
		attrs = append(attrs, Attribute{Key: key, Value: val})
		b = rest
	}
	return attrs, nil
}

// Attribute returns the value for key, if present.
func (p *ProductAccount) Attribute(key string) (string, bool) {
	attrs, _ := p.Attributes()
	for _, a := range attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttributes encodes attrs into the attribute region and updates the header size.
func (p *ProductAccount) SetAttributes(attrs []Attribute) error {
	region := p.RawAttributes()
	total := 0
	for _, a := range attrs {
		if len(a.Key) == 0 || len(a.Key) > 255 || len(a.Value) > 255 {
			return fmt.Errorf("%w: attribute %q does not fit a short string", domain.ErrSizeMismatch, a.Key)
		}
		total += 2 + len(a.Key) + len(a.Value)
	}
	if total > len(region) {
		return fmt.Errorf("%w: attributes need %d bytes, have %d", domain.ErrSizeMismatch, total, ProductAttrBytes)
	}

	n := 0
	for _, a := range attrs {
		n += writeShortString(region[n:], a.Key)
		n += writeShortString(region[n:], a.Value)
	}
	clear(region[n:])
	writeU32(p.b, hdrSizeOff, uint32(productAttrOff+n))
	return nil
}

func readShortString(b []byte) (string, []byte, bool) {
	if len(b) < 1 {
		return "", nil, false
	}
	n := int(b[0])
	if len(b) < 1+n {
		return "", nil, false
	}
	return string(b[1 : 1+n]), b[1+n:], true
}

func writeShortString(dst []byte, s string) int {
	dst[0] = byte(len(s))
	copy(dst[1:], s)
	return 1 + len(s)
}
