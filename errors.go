package wardrobe

import "fmt"

// CompositionError fails one entry of a pass. Err is usually a
// *loader.LoadError for a library the entry needed, or the context error.
type CompositionError struct {
	EntryID string
	Err     error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("compose entry %q: %v", e.EntryID, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }
