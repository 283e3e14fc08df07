// Package onewire decodes the identifiers 1-Wire devices announce on
// the bus.
//
// # Identifier Format
//
// The kernel names every 1-Wire slave after its 64-bit ROM code, in
// two hex fields separated by a dash:
//
//	<family>-<serial>
//	   33   -00000392c6ea
//
// The family code (one byte) identifies the device type; DS1990A iButton
// fobs report family 0x33 or 0x01. The serial is the device's unique
// 48-bit number, printed as twelve hex digits. The kernel's CRC byte is
// not part of the name and is not stored.
//
// # Binary Form
//
// ParseID packs an identifier into a TokenID, a 7-byte array holding
// the family code followed by the six serial bytes in the order they
// appear in the text. TokenID is comparable, so it can key maps and
// be compared with == directly; this binary form is also the record
// format of the persisted key list.
package onewire
