// Package roundid generates sortable identifiers for settled rounds.
//
// An ID is a UUIDv7 rendered as 26 characters of Crockford base32, so IDs
// sort by creation time and read cleanly in logs.
package roundid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded ID
const Length = 26

// Generator creates round IDs, optionally from a fixed entropy source
type Generator struct {
	entropy io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto randomness.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// New creates a round ID with the default generator
func New() string {
	return NewGenerator(nil).New()
}

// New creates a round ID
func (g *Generator) New() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.entropy != nil {
		id, err = uuid.NewV7FromReader(g.entropy)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("failed to generate round id: " + err.Error())
	}
	return Encode(id)
}

// Encode renders a UUID as 26 base32 characters, five bits at a time from the
// most significant end.
func Encode(id uuid.UUID) string {
	result := make([]byte, Length)
	for i := range result {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < len(id) {
			if bitIndex <= 3 {
				value = (id[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (id[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < len(id) {
					value |= id[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		result[i] = alphabet[value]
	}
	return string(result)
}

// Validate checks that id has the encoded length and alphabet
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("round id must be exactly %d characters, got %d", Length, len(id))
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
