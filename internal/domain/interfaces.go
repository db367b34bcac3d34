package domain

// RegistryRepository persists the index registry between invocations.
type RegistryRepository interface {
	SaveRegistry(entries []IndexEntry, nextID uint64) error
	LoadRegistry() ([]IndexEntry, uint64, error)
}
