package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/unkn0wn-root/wardrobe/codec"
)

// Format names the encoding of catalog documents.
type Format string

const (
	FormatJSON        Format = "json"
	FormatYAML        Format = "yaml"
	FormatCBOR        Format = "cbor"
	FormatMsgpack     Format = "msgpack"
	FormatProtoStruct Format = "pb"
)

// Ext returns the file extension LoadDir expects for f.
func (f Format) Ext() string {
	if f == "" {
		return "." + string(FormatJSON)
	}
	return "." + string(f)
}

// Sources holds the raw bytes of the three catalog documents.
type Sources struct {
	FigureData []byte
	FigureMap  []byte
	Geometry   []byte
}

// CodecFor returns the codec decoding documents of type T in format f.
func CodecFor[T any](f Format) (codec.Codec[T], error) {
	switch f {
	case FormatJSON, "":
		return codec.JSON[T]{}, nil
	case FormatYAML:
		return codec.YAML[T]{}, nil
	case FormatCBOR:
		return codec.NewCBOR[T](false)
	case FormatMsgpack:
		return codec.Msgpack[T]{}, nil
	case FormatProtoStruct:
		return codec.ProtoStruct[T]{}, nil
	default:
		return nil, fmt.Errorf("catalog: unknown format %q", f)
	}
}

func decode[T any](f Format, name string, b []byte) (T, error) {
	var zero T
	c, err := CodecFor[T](f)
	if err != nil {
		return zero, err
	}
	v, err := c.Decode(b)
	if err != nil {
		return zero, fmt.Errorf("catalog: decode %s: %w", name, err)
	}
	return v, nil
}

// Load decodes and builds a Catalog.
func Load(src Sources, f Format) (*Catalog, error) {
	fd, err := decode[FigureData](f, "figuredata", src.FigureData)
	if err != nil {
		return nil, err
	}
	fm, err := decode[FigureMap](f, "figuremap", src.FigureMap)
	if err != nil {
		return nil, err
	}
	geo, err := decode[Geometry](f, "geometry", src.Geometry)
	if err != nil {
		return nil, err
	}
	return Build(fd, fm, geo)
}

// LoadDir reads figuredata, figuremap and geometry (with f's extension) from dir.
func LoadDir(dir string, f Format) (*Catalog, error) {
	var src Sources
	for name, dst := range map[string]*[]byte{
		"figuredata": &src.FigureData,
		"figuremap":  &src.FigureMap,
		"geometry":   &src.Geometry,
	} {
		b, err := os.ReadFile(filepath.Join(dir, name+f.Ext()))
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		*dst = b
	}
	return Load(src, f)
}
