package event

import (
	"pyth_index/internal/layout"
)

// Type identifies an instruction.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeDecodeAccount
	TypeShowPrice
	TypeShowProduct
	TypeShowMapping
	TypeEnumerateProducts
	TypeWalkMappings
	TypeValidatePair
	TypeVerifyMapping
	TypeCreateIndex
	TypeDeleteIndex
	TypeDeleteIndexByName
	TypeLookupIndex
	TypeGetIndex
	TypeListIndices
	TypeAttachSnapshot
	TypeListAccounts
	TypeImportAccount
)

var typeNames = [...]string{
	TypeUnknown:           "unknown",
	TypeDecodeAccount:     "decode_account",
	TypeShowPrice:         "show_price",
	TypeShowProduct:       "show_product",
	TypeShowMapping:       "show_mapping",
	TypeEnumerateProducts: "enumerate_products",
	TypeWalkMappings:      "walk_mappings",
	TypeValidatePair:      "validate_pair",
	TypeVerifyMapping:     "verify_mapping",
	TypeCreateIndex:       "create_index",
	TypeDeleteIndex:       "delete_index",
	TypeDeleteIndexByName: "delete_index_by_name",
	TypeLookupIndex:       "lookup_index",
	TypeGetIndex:          "get_index",
	TypeListIndices:       "list_indices",
	TypeAttachSnapshot:    "attach_snapshot",
	TypeListAccounts:      "list_accounts",
	TypeImportAccount:     "import_account",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return typeNames[TypeUnknown]
}

// Instruction is one invocation submitted to the processor.
type Instruction interface {
	GetSeq() uint64
	SetSeq(seq uint64)
	GetType() Type
}

// BaseInstruction carries the sequence number every instruction needs.
type BaseInstruction struct {
	Seq uint64
}

func (b BaseInstruction) GetSeq() uint64 { return b.Seq }

// SetSeq stamps the sequence number just before submission.
func (b *BaseInstruction) SetSeq(seq uint64) { b.Seq = seq }

// DecodeAccountInstruction decodes the account at Key as Kind and returns its header.
type DecodeAccountInstruction struct {
	BaseInstruction
	Key  layout.AccountKey
	Kind layout.AccountType
}

func (i *DecodeAccountInstruction) GetType() Type { return TypeDecodeAccount }

type ShowPriceInstruction struct {
	BaseInstruction
	Product layout.AccountKey
	Price   layout.AccountKey
}

func (i *ShowPriceInstruction) GetType() Type { return TypeShowPrice }

type ShowProductInstruction struct {
	BaseInstruction
	Product layout.AccountKey
}

func (i *ShowProductInstruction) GetType() Type { return TypeShowProduct }

// ShowMappingInstruction reads one window of Mapping starting at slot From.
type ShowMappingInstruction struct {
	BaseInstruction
	Mapping layout.AccountKey
	From    int
}

func (i *ShowMappingInstruction) GetType() Type { return TypeShowMapping }

type EnumerateProductsInstruction struct {
	BaseInstruction
	Mapping layout.AccountKey
}

func (i *EnumerateProductsInstruction) GetType() Type { return TypeEnumerateProducts }

type WalkMappingsInstruction struct {
	BaseInstruction
	First    layout.AccountKey
	MaxPages int
}

func (i *WalkMappingsInstruction) GetType() Type { return TypeWalkMappings }

type ValidatePairInstruction struct {
	BaseInstruction
	Product layout.AccountKey
	Price   layout.AccountKey
}

func (i *ValidatePairInstruction) GetType() Type { return TypeValidatePair }

// VerifyMappingInstruction cross-validates the products of one mapping window.
type VerifyMappingInstruction struct {
	BaseInstruction
	Mapping layout.AccountKey
}

func (i *VerifyMappingInstruction) GetType() Type { return TypeVerifyMapping }

type CreateIndexInstruction struct {
	BaseInstruction
	Name string
	Keys []string
}

func (i *CreateIndexInstruction) GetType() Type { return TypeCreateIndex }

type DeleteIndexInstruction struct {
	BaseInstruction
	ID uint64
}

func (i *DeleteIndexInstruction) GetType() Type { return TypeDeleteIndex }

type DeleteIndexByNameInstruction struct {
	BaseInstruction
	Name string
}

func (i *DeleteIndexByNameInstruction) GetType() Type { return TypeDeleteIndexByName }

type LookupIndexInstruction struct {
	BaseInstruction
	Name string
}

func (i *LookupIndexInstruction) GetType() Type { return TypeLookupIndex }

type GetIndexInstruction struct {
	BaseInstruction
	ID uint64
}

func (i *GetIndexInstruction) GetType() Type { return TypeGetIndex }

type ListIndicesInstruction struct {
	BaseInstruction
}

func (i *ListIndicesInstruction) GetType() Type { return TypeListIndices }

// AttachSnapshotInstruction records the validated price of Product/Price on index ID.
type AttachSnapshotInstruction struct {
	BaseInstruction
	ID      uint64
	Product layout.AccountKey
	Price   layout.AccountKey
}

func (i *AttachSnapshotInstruction) GetType() Type { return TypeAttachSnapshot }

type ListAccountsInstruction struct {
	BaseInstruction
}

func (i *ListAccountsInstruction) GetType() Type { return TypeListAccounts }

// ImportAccountInstruction stores a raw account dump under Key.
type ImportAccountInstruction struct {
	BaseInstruction
	Key  layout.AccountKey
	Data []byte
}

func (i *ImportAccountInstruction) GetType() Type { return TypeImportAccount }

// Result is the outcome of one processed instruction.
type Result struct {
	Seq   uint64
	Type  Type
	Value any
	Err   error
}
