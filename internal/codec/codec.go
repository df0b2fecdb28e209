// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package codec encodes setting values for byte-oriented backends (badger,
// the file cache) as deterministic CBOR.
package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/tfctl/tfset/internal/tree"
)

// Codec marshals values to and from CBOR. Maps always decode as
// map[string]any and integers as int64.
type Codec struct {
	em cbor.EncMode
	dm cbor.DecMode
}

// New builds a Codec.
func New() (*Codec, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR encoder: %w", err)
	}

	dm, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		IndefLength:     cbor.IndefLengthAllowed,
		MaxNestedLevels: 64,
		IntDec:          cbor.IntDecConvertSigned,
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR decoder: %w", err)
	}

	return &Codec{em: em, dm: dm}, nil
}

// Must is New for package-level initialization.
func Must() *Codec {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Encode marshals v.
func (c *Codec) Encode(v any) ([]byte, error) {
	b, err := c.em.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode CBOR: %w", err)
	}
	return b, nil
}

// Decode unmarshals data into a normalized value.
func (c *Codec) Decode(data []byte) (any, error) {
	var v any
	if err := c.dm.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode CBOR: %w", err)
	}
	return tree.Normalize(v), nil
}
