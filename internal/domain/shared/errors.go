package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code,
// so that errors carrying a customised message still match the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Configurator domain errors
var (
	ErrInvalidFraction      = NewDomainError("INVALID_FRACTION", "Fraction must be one of 0, 1/8, 1/4, 3/8, 1/2, 5/8, 3/4, 7/8")
	ErrComparisonLimit      = NewDomainError("COMPARISON_LIMIT", "You can compare up to 3 configurations at a time")
	ErrIncompleteSelection  = NewDomainError("INCOMPLETE_SELECTION", "Every product option must be selected before checkout")
	ErrStorageUnavailable   = NewDomainError("STORAGE_UNAVAILABLE", "Saved configurations are temporarily unavailable")
	ErrPricingUnavailable   = NewDomainError("PRICING_UNAVAILABLE", "Remote pricing is unavailable")
	ErrSessionNotFound      = NewDomainError("NOT_FOUND", "Configurator session not found")
	ErrConfigurationMissing = NewDomainError("NOT_FOUND", "Saved configuration not found")
	ErrDuplicateRequest     = NewDomainError("DUPLICATE_REQUEST", "This request was already processed")
)
