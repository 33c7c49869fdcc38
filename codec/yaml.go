package codec

import "gopkg.in/yaml.v3"

// YAML is a Codec backed by gopkg.in/yaml.v3. The zero value is ready to use.
// Hand-edited catalogs are usually kept in YAML; use `yaml:"name"` tags for control.
type YAML[V any] struct{}

var _ Codec[struct{}] = YAML[struct{}]{}

func (YAML[V]) Encode(v V) ([]byte, error) { return yaml.Marshal(v) }
func (YAML[V]) Decode(b []byte) (V, error) {
	var v V
	err := yaml.Unmarshal(b, &v)
	return v, err
}
