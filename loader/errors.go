package loader

import "fmt"

// LoadError reports a resource whose fetch failed. It is permanent for the Loader lifetime.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
