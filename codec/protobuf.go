package codec

import (
	"encoding/json"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoStruct carries schemaless documents as a google.protobuf.Struct on the
// wire and maps them onto V through their JSON shape. Catalog exports from
// protobuf-speaking services use it without generated types.
// Numbers travel as doubles, so integral fields must stay below 2^53.
type ProtoStruct[V any] struct{}

var _ Codec[struct{}] = ProtoStruct[struct{}]{}

func (ProtoStruct[V]) Encode(v V) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func (ProtoStruct[V]) Decode(b []byte) (V, error) {
	var v V
	s := &structpb.Struct{}
	if err := proto.Unmarshal(b, s); err != nil {
		return v, err
	}
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(raw, &v)
	return v, err
}
