package service

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pyth_index/internal/domain"
	"pyth_index/internal/infra"
	"pyth_index/internal/layout"
	"pyth_index/internal/registry"
)

// DefaultMaxPages bounds WalkMappings when the caller passes no limit.
const DefaultMaxPages = 64

// AccountStore resolves account keys to raw buffers and accepts new account dumps.
type AccountStore interface {
	Load(key layout.AccountKey) (*layout.Buffer, error)
	Save(key layout.AccountKey, data []byte) error
	Keys() ([]layout.AccountKey, error)
}

// PriceReport is the validated view of one product/price pair.
type PriceReport struct {
	Product    string               `json:"product"`
	Price      string               `json:"price"`
	PriceType  string               `json:"price_type"`
	Components int                  `json:"components"`
	Trading    bool                 `json:"trading"`
	Snapshot   domain.PriceSnapshot `json:"snapshot"`
	Attributes []layout.Attribute   `json:"attributes,omitempty"`
}

// ProductReport is the validated view of one product account.
type ProductReport struct {
	Product    string             `json:"product"`
	Price      string             `json:"price"`
	Attributes []layout.Attribute `json:"attributes"`
}

// ProductCheck is the outcome of cross-validating one mapping slot.
type ProductCheck struct {
	Slot    int    `json:"slot"`
	Product string `json:"product"`
	Price   string `json:"price"`
	Symbol  string `json:"symbol,omitempty"`
}

// Options configures an OracleService.
type Options struct {
	WindowLimit int
	Logger      *slog.Logger
	Metrics     *infra.Metrics
	Repository  domain.RegistryRepository // nil keeps the registry in memory only
}

// OracleService exposes the oracle account operations and the index registry.
type OracleService struct {
	accounts AccountStore
	registry *registry.Registry
	repo     domain.RegistryRepository
	walker   *layout.Walker
	window   int
	metrics  *infra.Metrics
	logger   *slog.Logger
	now      func() time.Time

	writeMu sync.Mutex // serialises registry mutations with their persistence
}

// NewOracleService creates a service over accounts and reg.
func NewOracleService(accounts AccountStore, reg *registry.Registry, opts Options) *OracleService {
	window := opts.WindowLimit
	if window <= 0 {
		window = layout.DefaultWindowLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &OracleService{
		accounts: accounts,
		registry: reg,
		repo:     opts.Repository,
		walker:   layout.NewWalker(window),
		window:   window,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// WindowLimit returns the per-call enumeration bound.
func (s *OracleService) WindowLimit() int { return s.window }

// ======================================================================================
// Decoding
// ======================================================================================

// DecodePrice loads and decodes the price account at key. The caller must Release the view.
func (s *OracleService) DecodePrice(key layout.AccountKey) (*layout.PriceAccount, error) {
	buf, err := s.accounts.Load(key)
	if err != nil {
		return nil, err
	}
	p, err := layout.DecodePrice(buf)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDecode()
	return p, nil
}

// DecodeProduct loads and decodes the product account at key. The caller must Release the view.
func (s *OracleService) DecodeProduct(key layout.AccountKey) (*layout.ProductAccount, error) {
	buf, err := s.accounts.Load(key)
	if err != nil {
		return nil, err
	}
	p, err := layout.DecodeProduct(buf)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDecode()
	return p, nil
}

// DecodeMapping loads and decodes the mapping account at key. The caller must Release the view.
func (s *OracleService) DecodeMapping(key layout.AccountKey) (*layout.MappingAccount, error) {
	buf, err := s.accounts.Load(key)
	if err != nil {
		return nil, err
	}
	m, err := layout.DecodeMapping(buf)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDecode()
	return m, nil
}

// ListAccounts returns the keys of every stored account in key order.
func (s *OracleService) ListAccounts() ([]string, error) {
	keys, err := s.accounts.Keys()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out, nil
}

// ImportAccount stores data as the account at key. The header must be valid
// for the account type it declares and data must hold a full record.
func (s *OracleService) ImportAccount(key layout.AccountKey, data []byte) (layout.Header, error) {
	if !key.IsValid() {
		return layout.Header{}, fmt.Errorf("%w: cannot import under the zero key", domain.ErrInvalidKey)
	}
	h, err := layout.IdentifyAccount(layout.NewBuffer(key, data))
	if err != nil {
		return h, s.failed(err)
	}
	if err := s.accounts.Save(key, data); err != nil {
		return h, fmt.Errorf("save account %s: %w", key, err)
	}
	s.logger.Info("Account imported",
		slog.String("key", key.String()),
		slog.String("type", h.Type.String()),
		slog.Int("bytes", len(data)))
	return h, nil
}

// ======================================================================================
// Validation and enumeration
// ======================================================================================

// ValidateProductPricePair checks that productKey is a product account whose
// price reference equals priceKey.
func (s *OracleService) ValidateProductPricePair(productKey, priceKey layout.AccountKey) error {
	product, err := s.DecodeProduct(productKey)
	if err != nil {
		return err
	}
	defer product.Release()

	price, err := s.DecodePrice(priceKey)
	if err != nil {
		return err
	}
	defer price.Release()

	return s.failed(layout.ValidateProductPricePair(product, price))
}

// ShowPrice validates a product/price pair and returns the scaled aggregate price.
func (s *OracleService) ShowPrice(productKey, priceKey layout.AccountKey) (PriceReport, error) {
	product, err := s.DecodeProduct(productKey)
	if err != nil {
		return PriceReport{}, err
	}
	defer product.Release()

	price, err := s.DecodePrice(priceKey)
	if err != nil {
		return PriceReport{}, err
	}
	defer price.Release()

	if err := s.failed(layout.ValidatePrice(price)); err != nil {
		return PriceReport{}, err
	}
	if err := s.failed(layout.ValidateProductPricePair(product, price)); err != nil {
		return PriceReport{}, err
	}

	attrs, err := product.Attributes()
	if err != nil {
		s.logger.Warn("Unreadable product attributes",
			slog.String("product", productKey.String()),
			slog.Any("error", err))
		attrs = nil
	}

	snap := price.Snapshot(productKey, s.now())
	return PriceReport{
		Product:    productKey.String(),
		Price:      priceKey.String(),
		PriceType:  price.PriceType().String(),
		Components: len(price.Components()),
		Trading:    snap.IsTrading(),
		Snapshot:   snap,
		Attributes: attrs,
	}, nil
}

// ShowProduct validates a product account and returns its price reference and attributes.
func (s *OracleService) ShowProduct(productKey layout.AccountKey) (ProductReport, error) {
	product, err := s.DecodeProduct(productKey)
	if err != nil {
		return ProductReport{}, err
	}
	defer product.Release()

	if err := s.failed(layout.ValidateProduct(product)); err != nil {
		return ProductReport{}, err
	}
	attrs, err := product.Attributes()
	if err != nil {
		return ProductReport{}, s.failed(err)
	}
	return ProductReport{
		Product:    productKey.String(),
		Price:      product.PriceKey().String(),
		Attributes: attrs,
	}, nil
}

// EnumerateProducts returns the identifiers of the first WindowLimit products of a mapping page.
func (s *OracleService) EnumerateProducts(mappingKey layout.AccountKey) ([]string, error) {
	page, err := s.ShowMapping(mappingKey, 0)
	if err != nil {
		return nil, err
	}
	return page.IDs(), nil
}

// ShowMapping returns one bounded page of a mapping account starting at slot from.
func (s *OracleService) ShowMapping(mappingKey layout.AccountKey, from int) (layout.Page, error) {
	m, err := s.DecodeMapping(mappingKey)
	if err != nil {
		return layout.Page{}, err
	}
	defer m.Release()

	if err := s.failed(layout.ValidateMapping(m)); err != nil {
		return layout.Page{}, err
	}
	page := s.walker.Page(m, from)
	s.metrics.RecordEnumerated(len(page.Products))
	return page, nil
}

// WalkMappings follows the mapping list from first, returning the first
// window of every page. It stops after maxPages pages, at the end of the list,
// or when a page key repeats.
func (s *OracleService) WalkMappings(first layout.AccountKey, maxPages int) ([]layout.Page, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var pages []layout.Page
	seen := make(map[layout.AccountKey]struct{})
	key := first
	for len(pages) < maxPages {
		if _, ok := seen[key]; ok {
			s.logger.Warn("Mapping list cycle detected", slog.String("mapping", key.String()))
			break
		}
		seen[key] = struct{}{}

		page, err := s.ShowMapping(key, 0)
		if err != nil {
			return pages, fmt.Errorf("mapping page %d (%s): %w", len(pages), key, err)
		}
		pages = append(pages, page)
		if !page.HasNextPage() {
			break
		}
		key = page.Next
	}
	return pages, nil
}

// ValidateMappingProducts checks every product in the first window of a
// mapping page against its price account. The first failure is returned.
func (s *OracleService) ValidateMappingProducts(mappingKey layout.AccountKey) ([]ProductCheck, error) {
	page, err := s.ShowMapping(mappingKey, 0)
	if err != nil {
		return nil, err
	}

	checks := make([]ProductCheck, 0, len(page.Products))
	for _, ref := range page.Products {
		check, err := s.checkProduct(ref)
		if err != nil {
			return checks, fmt.Errorf("slot %d (%s): %w", ref.Slot, ref.Key, err)
		}
		checks = append(checks, check)
	}
	return checks, nil
}

func (s *OracleService) checkProduct(ref layout.ProductRef) (ProductCheck, error) {
	product, err := s.DecodeProduct(ref.Key)
	if err != nil {
		return ProductCheck{}, err
	}
	defer product.Release()

	if err := s.failed(layout.ValidateProduct(product)); err != nil {
		return ProductCheck{}, err
	}
	priceKey := product.PriceKey()
	if !priceKey.IsValid() {
		return ProductCheck{}, s.failed(layout.CheckPriceReference(product, priceKey))
	}

	price, err := s.DecodePrice(priceKey)
	if err != nil {
		return ProductCheck{}, err
	}
	defer price.Release()

	if err := s.failed(layout.ValidatePrice(price)); err != nil {
		return ProductCheck{}, err
	}
	if err := s.failed(layout.ValidateProductPricePair(product, price)); err != nil {
		return ProductCheck{}, err
	}

	symbol, _ := product.Attribute("symbol")
	return ProductCheck{
		Slot:    ref.Slot,
		Product: ref.Key.String(),
		Price:   priceKey.String(),
		Symbol:  symbol,
	}, nil
}

// failed counts a validation failure and passes err through.
func (s *OracleService) failed(err error) error {
	if err != nil {
		s.metrics.RecordValidationFailure()
	}
	return err
}

// ======================================================================================
// Index registry
// ======================================================================================

// CreateIndex adds a named group of account keys. Every key must parse.
func (s *OracleService) CreateIndex(name string, keys []string) (uint64, error) {
	for _, k := range keys {
		if _, err := layout.ParseAccountKey(k); err != nil {
			return 0, err
		}
	}

	var id uint64
	err := s.mutate(func() error {
		var err error
		id, err = s.registry.Create(name, keys)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Index created", slog.Uint64("id", id), slog.String("name", name), slog.Int("keys", len(keys)))
	return id, nil
}

// DeleteIndex removes the index with id.
func (s *OracleService) DeleteIndex(id uint64) error {
	err := s.mutate(func() error {
		return s.registry.Delete(id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Index deleted", slog.Uint64("id", id))
	return nil
}

// DeleteIndexByName removes the first index named name and returns its id.
func (s *OracleService) DeleteIndexByName(name string) (uint64, error) {
	var id uint64
	err := s.mutate(func() error {
		var err error
		id, err = s.registry.DeleteByName(name)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Index deleted", slog.Uint64("id", id), slog.String("name", name))
	return id, nil
}

// LookupIndex returns the first index named name.
func (s *OracleService) LookupIndex(name string) (domain.IndexEntry, error) {
	return s.registry.Lookup(name)
}

// GetIndex returns the index with id.
func (s *OracleService) GetIndex(id uint64) (domain.IndexEntry, error) {
	return s.registry.Get(id)
}

// ListIndices returns all indices in creation order.
func (s *OracleService) ListIndices() []domain.IndexEntry {
	return s.registry.List()
}

// AttachSnapshot validates a product/price pair and records its aggregate
// price on index id. Nothing is recorded when validation fails.
func (s *OracleService) AttachSnapshot(id uint64, productKey, priceKey layout.AccountKey) (domain.PriceSnapshot, error) {
	if _, err := s.registry.Get(id); err != nil {
		return domain.PriceSnapshot{}, err
	}
	report, err := s.ShowPrice(productKey, priceKey)
	if err != nil {
		return domain.PriceSnapshot{}, err
	}

	snap := report.Snapshot
	err = s.mutate(func() error {
		return s.registry.AddSnapshot(id, snap)
	})
	if err != nil {
		return domain.PriceSnapshot{}, err
	}
	snap.EntryID = id
	s.logger.Info("Snapshot attached",
		slog.Uint64("id", id),
		slog.String("price", snap.Price.String()),
		slog.String("status", snap.Status))
	return snap, nil
}

// mutate applies fn to the registry and persists the result. If persisting
// fails the registry is rolled back to its previous state.
func (s *OracleService) mutate(fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var prev registry.State
	if s.repo != nil {
		prev = s.registry.State()
	}
	if err := fn(); err != nil {
		return err
	}
	if s.repo != nil {
		st := s.registry.State()
		if err := s.repo.SaveRegistry(st.Entries, st.NextID); err != nil {
			s.registry.Restore(prev)
			s.logger.Error("Failed to persist registry", slog.Any("error", err))
			return fmt.Errorf("persist registry: %w", err)
		}
	}
	s.metrics.RecordRegistryMutation()
	return nil
}
