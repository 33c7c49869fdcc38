package wardrobe

import "github.com/unkn0wn-root/wardrobe/render"

// Part skip reasons reported through Hooks.PartSkipped.
const (
	SkipNoLibrary = "no_library"
	SkipHidden    = "hidden"
	SkipNoTexture = "no_texture"
)

// Hooks lightweight callbacks for picker events.
// Implementations MUST be cheap and non-blocking; entry goroutines call them.
type Hooks interface {
	// The current selection changed (Compositor.Select).
	EntrySelected(entryID string)

	// An entry was baked. Called once per entry per pass.
	CompositionComplete(entryID string, tex *render.Texture)

	// An entry could not be composed; err is a *CompositionError.
	CompositionFailed(entryID string, err error)

	// A part was left out of an entry.
	// reason ∈ {"no_library", "hidden", "no_texture"}
	PartSkipped(entryID, partType, reason string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) EntrySelected(string)                        {}
func (NopHooks) CompositionComplete(string, *render.Texture) {}
func (NopHooks) CompositionFailed(string, error)             {}
func (NopHooks) PartSkipped(string, string, string)          {}
