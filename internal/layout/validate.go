package layout

import (
	"fmt"

	"pyth_index/internal/domain"
)

// ValidateHeader runs the header checks for shape want, in order:
// magic, account type, version. The first failure is returned.
func ValidateHeader(h Header, want AccountType) error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: %s account has magic %#08x", domain.ErrInvalidMagic, want, h.Magic)
	}
	if h.Type != want {
		return fmt.Errorf("%w: want %s, got %s (%d)", domain.ErrWrongAccountType, want, h.Type, uint32(h.Type))
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %s account has version %d, want %d", domain.ErrVersionMismatch, want, h.Version, Version)
	}
	return nil
}

// ValidatePrice checks the header of a price account.
func ValidatePrice(p *PriceAccount) error {
	return ValidateHeader(p.Header(), AccountTypePrice)
}

// ValidateProduct checks the header of a product account.
func ValidateProduct(p *ProductAccount) error {
	return ValidateHeader(p.Header(), AccountTypeProduct)
}

// ValidateMapping checks the header of a mapping account.
func ValidateMapping(m *MappingAccount) error {
	return ValidateHeader(m.Header(), AccountTypeMapping)
}

// CheckPriceReference verifies that product points at priceKey.
// The referenced key must be valid and equal priceKey bit for bit.
func CheckPriceReference(product *ProductAccount, priceKey AccountKey) error {
	ref := product.PriceKey()
	if !ref.IsValid() {
		return fmt.Errorf("%w: product %s has no price account", domain.ErrInvalidKey, product.Key())
	}
	if ref != priceKey {
		return fmt.Errorf("%w: product %s references %s, supplied %s", domain.ErrKeyMismatch, product.Key(), ref, priceKey)
	}
	return nil
}

// ValidateProductPricePair succeeds iff the product header is valid and the
// product's price key is valid and equal to the supplied price account's key.
func ValidateProductPricePair(product *ProductAccount, price *PriceAccount) error {
	if err := ValidateProduct(product); err != nil {
		return err
	}
	return CheckPriceReference(product, price.Key())
}

// IdentifyAccount validates buf against the account type its header declares
// and returns the header. Nothing is checked out.
func IdentifyAccount(buf *Buffer) (Header, error) {
	if buf.Len() < HeaderBytes {
		return Header{}, fmt.Errorf("%w: account needs at least %d header bytes, got %d", domain.ErrSizeMismatch, HeaderBytes, buf.Len())
	}
	h := readHeader(buf.data)
	if h.Magic == Magic && h.Type.Size() == 0 {
		return h, fmt.Errorf("%w: unknown account type %d", domain.ErrWrongAccountType, uint32(h.Type))
	}
	if err := ValidateHeader(h, h.Type); err != nil {
		return h, err
	}
	if need := h.Type.Size(); buf.Len() < need {
		return h, fmt.Errorf("%w: %s account needs %d bytes, got %d", domain.ErrSizeMismatch, h.Type, need, buf.Len())
	}
	return h, nil
}
