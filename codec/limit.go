package codec

import "fmt"

// LimitCodec wraps another codec to enforce a maximum allowed payload size
// at Decode time. Encode is forwarded to Inner unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// Typical use: cap bundle documents fetched over HTTP or read back from a
// shared byte cache before they are decoded.
type LimitCodec[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec[V]
	// MaxDecode is the maximum permitted length (in bytes) of the incoming
	// payload for Decode. If payload length exceeds MaxDecode, Decode returns
	// an error without invoking Inner.
	MaxDecode int
}

// Limit reports MaxDecode, letting callers bound work done before Decode
// (decompression, for example).
func (c LimitCodec[V]) Limit() int { return c.MaxDecode }

func (c LimitCodec[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, &TooLargeError{Size: len(b), Max: c.MaxDecode}
	}
	return c.Inner.Decode(b)
}

// TooLargeError is returned by LimitCodec.Decode for oversized payloads.
type TooLargeError struct {
	Size, Max int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("payload too large: %d > %d", e.Size, e.Max)
}
