package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// OperationError wraps the failure of one invocation.
// The core performs no I/O, so nothing it reports is ever retriable.
type OperationError struct {
	Op  string // Operation that failed (e.g., "show_price", "create_index")
	Err error  // Underlying error
}

func (e *OperationError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *OperationError) IsRetriable() bool {
	return false
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError creates a new OperationError
func NewOperationError(op string, err error) *OperationError {
	return &OperationError{Op: op, Err: err}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrSizeMismatch is returned when a buffer is smaller than the record shape decoded from it.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrInvalidMagic is returned when a record does not start with the oracle magic number.
	ErrInvalidMagic = errors.New("invalid magic")

	// ErrVersionMismatch is returned for any layout version other than the supported one.
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrWrongAccountType is returned when the account type tag does not match the decoded shape.
	ErrWrongAccountType = errors.New("wrong account type")

	// ErrInvalidKey is returned when an all-zero account key is found where a valid one is required.
	ErrInvalidKey = errors.New("invalid account key")

	// ErrKeyMismatch is returned when a product references a different price account than the one supplied.
	ErrKeyMismatch = errors.New("account key mismatch")

	// ErrNotFound is returned by registry lookups and deletes that match nothing.
	ErrNotFound = errors.New("not found")

	// ErrBufferBorrowed is returned when a buffer is already checked out by another view.
	ErrBufferBorrowed = errors.New("buffer already borrowed")

	// ErrDuplicateName is returned when a registry enforcing unique names sees a name twice.
	ErrDuplicateName = errors.New("duplicate index name")

	// ErrInvalidName is returned for an empty index name.
	ErrInvalidName = errors.New("invalid index name")

	// ErrSequenceGap is returned when an instruction arrives out of order.
	ErrSequenceGap = errors.New("sequence gap")
)

// AccountNotFoundError is returned by account loaders when a key has no backing buffer.
type AccountNotFoundError struct {
	Key string
}

func (e *AccountNotFoundError) Error() string {
	return "account " + e.Key + " not found"
}

func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
