package layout

import (
	"fmt"
	"sync/atomic"

	"pyth_index/internal/domain"
)

// Buffer is a caller-owned account region plus the key it lives at.
// The package never allocates or frees the bytes, it only reads and writes
// through them while a view holds the buffer.
type Buffer struct {
	key      AccountKey
	data     []byte
	borrowed atomic.Bool
}

// NewBuffer wraps data for account key.
func NewBuffer(key AccountKey, data []byte) *Buffer {
	return &Buffer{key: key, data: data}
}

// Key returns the account key the buffer was loaded from.
func (b *Buffer) Key() AccountKey { return b.key }

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Borrowed reports whether a view currently holds the buffer.
func (b *Buffer) Borrowed() bool { return b.borrowed.Load() }

// checkout validates the length for t and marks the buffer borrowed.
// It returns the slice truncated to the record size.
func (b *Buffer) checkout(t AccountType) ([]byte, error) {
	need := t.Size()
	if len(b.data) < need {
		return nil, fmt.Errorf("%w: %s account needs %d bytes, got %d", domain.ErrSizeMismatch, t, need, len(b.data))
	}
	if !b.borrowed.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %s", domain.ErrBufferBorrowed, b.key)
	}
	return b.data[:need:need], nil
}

func (b *Buffer) release() {
	b.borrowed.Store(false)
}

// view is the shared part of the three record views.
type view struct {
	buf *Buffer
	b   []byte
}

// Key returns the account key of the underlying buffer.
func (v *view) Key() AccountKey { return v.buf.key }

// Header returns the common record header.
func (v *view) Header() Header { return readHeader(v.b) }

// Release returns the buffer. The view must not be used afterwards.
func (v *view) Release() {
	if v.buf == nil {
		return
	}
	v.buf.release()
	v.buf = nil
	v.b = nil
}

// Header is the 16-byte prefix shared by all oracle accounts.
type Header struct {
	Magic   uint32
	Version uint32
	Type    AccountType
	Size    uint32
}

func readHeader(b []byte) Header {
	return Header{
		Magic:   readU32(b, hdrMagicOff),
		Version: readU32(b, hdrVerOff),
		Type:    AccountType(readU32(b, hdrTypeOff)),
		Size:    readU32(b, hdrSizeOff),
	}
}

func writeHeader(b []byte, h Header) {
	writeU32(b, hdrMagicOff, h.Magic)
	writeU32(b, hdrVerOff, h.Version)
	writeU32(b, hdrTypeOff, uint32(h.Type))
	writeU32(b, hdrSizeOff, h.Size)
}

// InitAccount writes a valid header for t into region and zeroes the record body.
func InitAccount(region []byte, t AccountType) error {
	need := t.Size()
	if need == 0 {
		return fmt.Errorf("%w: cannot initialise %s account", domain.ErrWrongAccountType, t)
	}
	if len(region) < need {
		return fmt.Errorf("%w: %s account needs %d bytes, got %d", domain.ErrSizeMismatch, t, need, len(region))
	}
	clear(region[:need])
	writeHeader(region, Header{Magic: Magic, Version: Version, Type: t, Size: uint32(need)})
	return nil
}

// NewAccount allocates and initialises a zeroed account of type t.
func NewAccount(key AccountKey, t AccountType) *Buffer {
	data := make([]byte, t.Size())
	if err := InitAccount(data, t); err != nil {
		panic(err)
	}
	return NewBuffer(key, data)
}
