package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrLossyEncoding is returned by [JSONCodec] for values that do not survive
// an encode/decode round trip unchanged.
var ErrLossyEncoding = errors.New("cache: value does not round-trip through the codec")

// Codec converts results to and from the bytes held by a [Store].
//
// Decode(Encode(v)) must equal v; a codec that cannot guarantee this for a
// value must fail Encode so the value is not cached.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
}

// JSONCodec encodes results with encoding/json. It is the default codec for
// [Wrap] over byte stores.
//
// Encode decodes its own output and rejects values that come back different,
// such as structs with unexported fields or numbers held in an interface.
// Those results are served uncached rather than altered.
type JSONCodec[T any] struct{}

// Encode marshals v and fails with [ErrLossyEncoding] when the result would
// not decode back to v.
func (c JSONCodec[T]) Encode(v T) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	back, err := c.Decode(b)
	if err != nil {
		return nil, err
	}
	if !reflect.DeepEqual(v, back) {
		return nil, fmt.Errorf("%w: %T", ErrLossyEncoding, v)
	}
	return b, nil
}

// Decode unmarshals b into a new T.
func (JSONCodec[T]) Decode(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}
