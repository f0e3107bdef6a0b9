package effects

import "fmt"

// InvalidConfigurationError reports an incompatible combination of
// simulation options, detected before any sampling takes place.
type InvalidConfigurationError struct {
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// InsufficientVariantsError is returned when non-overlapping causal
// sampling exhausts the variant pool. Trait is the zero-based trait
// index, Needed the requested number of causal variants and Available
// the size of the remaining pool.
type InsufficientVariantsError struct {
	Trait     int
	Needed    int
	Available int
}

func (e *InsufficientVariantsError) Error() string {
	return fmt.Sprintf("trait %d needs %d exclusive causal variants but only %d remain in the pool "+
		"(%d short)", e.Trait+1, e.Needed, e.Available, e.Needed-e.Available)
}
