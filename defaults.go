package wardrobe

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

const (
	DefaultGeometry  = "vertical"
	DefaultGender    = "M"
	DefaultContainer = "picker"
)

// DefaultHiddenLayers are the body layers a picker thumbnail never shows.
var DefaultHiddenLayers = []string{"bd", "lh", "rh"}
