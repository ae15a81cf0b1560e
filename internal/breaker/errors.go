package breaker

import "fmt"

// FallbackError reports that both the primary call and its fallback
// failed. Unwrap exposes both causes for errors.Is matching.
type FallbackError struct {
	Service  string
	Primary  error
	Fallback error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("breaker %q: primary failed (%v) and fallback failed (%v)",
		e.Service, e.Primary, e.Fallback)
}

func (e *FallbackError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}
