package onewire

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// IDLength is the size of a decoded identifier: one family byte
// followed by six serial bytes.
const IDLength = 7

// serialDigits is the number of hex digits consumed from the serial
// field. Longer serials are accepted and the tail ignored.
const serialDigits = 12

// Decode failures wrap one of these sentinels.
var (
	// ErrBadFormat means the text has no family-serial separator.
	ErrBadFormat = errors.New("missing family-serial separator")

	// ErrBadHex means the family or serial field is not valid hex, or
	// the serial is shorter than twelve digits.
	ErrBadHex = errors.New("malformed hex field")
)

// TokenID is the binary form of a 1-Wire device identifier.
type TokenID [IDLength]byte

// ParseID decodes the bus name of a 1-Wire device ("33-00000392c6ea")
// into its binary form.
func ParseID(text string) (TokenID, error) {
	var id TokenID

	family, serial, found := strings.Cut(text, "-")
	if !found {
		return id, fmt.Errorf("device id %q: %w", text, ErrBadFormat)
	}

	fam, err := strconv.ParseUint(family, 16, 8)
	if err != nil {
		return id, fmt.Errorf("device id %q: family: %w", text, ErrBadHex)
	}
	id[0] = byte(fam)

	if len(serial) < serialDigits {
		return id, fmt.Errorf("device id %q: serial shorter than %d digits: %w", text, serialDigits, ErrBadHex)
	}
	for i := 0; i < serialDigits/2; i++ {
		b, err := strconv.ParseUint(serial[i*2:i*2+2], 16, 8)
		if err != nil {
			return id, fmt.Errorf("device id %q: serial: %w", text, ErrBadHex)
		}
		id[i+1] = byte(b)
	}

	return id, nil
}

// String renders the identifier back in its textual bus form.
func (id TokenID) String() string {
	return fmt.Sprintf("%02x-%s", id[0], hex.EncodeToString(id[1:]))
}
