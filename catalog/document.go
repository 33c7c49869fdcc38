package catalog

// The document types mirror the figure data exports the catalog is built from.
// They are decoded with any codec in the codec package; cbor falls back to the
// json tags.

// FigureData holds the set types and their palettes.
type FigureData struct {
	SetTypes map[string]SetTypeDoc              `json:"settype" yaml:"settype" msgpack:"settype"`
	Palettes map[string]map[string]PaletteColor `json:"palette" yaml:"palette" msgpack:"palette"`
}

// SetTypeDoc is one selectable category (hair, shirts, ...).
type SetTypeDoc struct {
	PaletteID    string              `json:"paletteid" yaml:"paletteid" msgpack:"paletteid"`
	HiddenLayers []string            `json:"hiddenlayers,omitempty" yaml:"hiddenlayers,omitempty" msgpack:"hiddenlayers,omitempty"`
	Sets         map[string]EntryDoc `json:"set" yaml:"set" msgpack:"set"`
}

// EntryDoc is one selectable variant in a set type.
// Selectable is 1 for entries offered in pickers.
type EntryDoc struct {
	Gender       string    `json:"gender" yaml:"gender" msgpack:"gender"`
	Selectable   int       `json:"selectable" yaml:"selectable" msgpack:"selectable"`
	HiddenLayers []string  `json:"hiddenlayers,omitempty" yaml:"hiddenlayers,omitempty" msgpack:"hiddenlayers,omitempty"`
	Parts        []PartDoc `json:"parts" yaml:"parts" msgpack:"parts"`
}

// PartDoc is one body part slot. ColorIndex is 1-based.
type PartDoc struct {
	Type       string `json:"type" yaml:"type" msgpack:"type"`
	ID         string `json:"id" yaml:"id" msgpack:"id"`
	Colorable  int    `json:"colorable" yaml:"colorable" msgpack:"colorable"`
	ColorIndex int    `json:"colorindex" yaml:"colorindex" msgpack:"colorindex"`
}

// PaletteColor is a hex RRGGBB color.
type PaletteColor struct {
	Color string `json:"color" yaml:"color" msgpack:"color"`
}

// FigureMap maps part type -> part id -> index into Libs.
type FigureMap struct {
	Libs  []LibDoc                  `json:"libs" yaml:"libs" msgpack:"libs"`
	Parts map[string]map[string]int `json:"parts" yaml:"parts" msgpack:"parts"`
}

type LibDoc struct {
	ID string `json:"id" yaml:"id" msgpack:"id"`
}

// Geometry maps geometry name -> body part -> items keyed by part type.
type Geometry struct {
	Types map[string]map[string]BodyPartDoc `json:"type" yaml:"type" msgpack:"type"`
}

type BodyPartDoc struct {
	Items map[string]GeometryItem `json:"items" yaml:"items" msgpack:"items"`
}

// GeometryItem carries the stacking order of a part type as its radius.
type GeometryItem struct {
	Radius float64 `json:"radius" yaml:"radius" msgpack:"radius"`
}
