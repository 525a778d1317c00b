// Package productlink turns product ids into short codes for shareable URLs.
// The codes are obfuscated, not encrypted.
package productlink

import (
	"errors"
	"fmt"

	"github.com/sqids/sqids-go"
)

var ErrMalformedCode = errors.New("malformed product code")

type Codec struct {
	s *sqids.Sqids
}

// New builds a codec. An empty alphabet uses the Sqids default.
func New(alphabet string, minLength int) (*Codec, error) {
	if minLength < 0 || minLength > 255 {
		return nil, fmt.Errorf("min length %d out of range 0..255", minLength)
	}
	opts := sqids.Options{MinLength: uint8(minLength)}
	if alphabet != "" {
		opts.Alphabet = alphabet
	}
	s, err := sqids.New(opts)
	if err != nil {
		return nil, fmt.Errorf("init sqids: %w", err)
	}
	return &Codec{s: s}, nil
}

func (c *Codec) Encode(id int64) (string, error) {
	if id < 0 {
		return "", fmt.Errorf("cannot encode negative id %d", id)
	}
	return c.s.Encode([]uint64{uint64(id)})
}

// Decode accepts only the canonical code of a single id.
func (c *Codec) Decode(code string) (int64, error) {
	if code == "" {
		return 0, ErrMalformedCode
	}
	ids := c.s.Decode(code)
	if len(ids) != 1 || ids[0] > 1<<62 {
		return 0, ErrMalformedCode
	}
	canonical, err := c.s.Encode(ids)
	if err != nil || canonical != code {
		return 0, ErrMalformedCode
	}
	return int64(ids[0]), nil
}
