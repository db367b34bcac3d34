package layout

// DefaultWindowLimit is the per-call enumeration bound used when none is configured.
const DefaultWindowLimit = 10

// ProductRef is one occupied mapping slot.
type ProductRef struct {
	Slot int        `json:"slot"`
	Key  AccountKey `json:"key"`
}

// ID is the consumer-facing identifier for the slot.
func (r ProductRef) ID() string { return r.Key.String() }

// Page is the bounded result of one enumeration call over one mapping page.
type Page struct {
	Mapping   AccountKey   `json:"mapping"`
	Products  []ProductRef `json:"products"`
	Occupied  int          `json:"occupied"`
	NextSlot  int          `json:"next_slot"`
	Truncated bool         `json:"truncated"`
	Next      AccountKey   `json:"next"`
}

// IDs returns the derived identifiers in slot order.
func (p Page) IDs() []string {
	out := make([]string, len(p.Products))
	for i, ref := range p.Products {
		out[i] = ref.ID()
	}
	return out
}

// HasNextPage reports whether the mapping list continues after this page.
func (p Page) HasNextPage() bool { return p.Next.IsValid() }

// EnumerateProducts returns the identifiers of the first windowLimit occupied
// slots of m, in slot order. A non-positive limit yields nothing.
func EnumerateProducts(m *MappingAccount, windowLimit int) []string {
	return enumerate(m, 0, windowLimit).IDs()
}

// Walker enumerates mapping pages with a fixed per-call window.
type Walker struct {
	window int
}

// NewWalker returns a walker bounded to window entries per call.
// A non-positive window selects DefaultWindowLimit.
func NewWalker(window int) *Walker {
	if window <= 0 {
		window = DefaultWindowLimit
	}
	return &Walker{window: window}
}

// Window returns the per-call bound.
func (w *Walker) Window() int { return w.window }

// Page enumerates at most Window occupied slots of m starting at slot from.
// Truncation is not an error: Truncated and NextSlot tell the caller where to resume.
func (w *Walker) Page(m *MappingAccount, from int) Page {
	return enumerate(m, from, w.window)
}

func enumerate(m *MappingAccount, from, limit int) Page {
	occupied := m.Occupied()
	page := Page{
		Mapping:  m.Key(),
		Occupied: occupied,
		Next:     m.NextKey(),
	}
	if from < 0 {
		from = 0
	}
	if from > occupied {
		from = occupied
	}
	end := occupied
	if limit <= 0 {
		end = from
	} else if limit < occupied-from {
		end = from + limit
	}

	page.Products = make([]ProductRef, 0, end-from)
	for i := from; i < end; i++ {
		page.Products = append(page.Products, ProductRef{Slot: i, Key: m.ProductKey(i)})
	}
	page.NextSlot = end
	page.Truncated = end < occupied
	return page
}
