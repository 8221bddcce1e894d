// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding/json"

	"github.com/google/uuid"
)

// UUID is the BSON UUID type. It is stored on the wire as a binary value
// with subtype 0x04, or 0x03 for values written by legacy drivers.
type UUID [16]byte

// NilUUID is the zero value for UUID.
var NilUUID UUID

// NewUUID returns a random Version 4 UUID or panics.
func NewUUID() UUID {
	return NewUUIDV4()
}

// NewUUIDV4 returns a Version 4 UUID or panics.
func NewUUIDV4() UUID {
	return UUID(uuid.New())
}

// NewUUIDV1 returns a Version 1 UUID or panics. The UUID is based on the
// current NodeID and clock sequence, and the current time.
func NewUUIDV1() UUID {
	return UUID(uuid.Must(uuid.NewUUID()))
}

// ParseUUID decodes s into a UUID or returns an error. The standard UUID
// forms of xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx and
// urn:uuid:xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx are decoded as well as the
// Microsoft encoding {xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx} and the raw hex
// encoding: xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx.
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilUUID, &InvalidArgumentError{Message: "invalid UUID string: " + err.Error()}
	}
	return UUID(u), nil
}

// MustParseUUID is like ParseUUID but panics if the string cannot be parsed.
// It simplifies safe initialization of global variables holding UUIDs.
func MustParseUUID(s string) UUID {
	return UUID(uuid.MustParse(s))
}

// UUIDFromBytes creates a new UUID from a byte slice. Returns an error if the
// slice does not have a length of 16. The bytes are copied from the slice.
func UUIDFromBytes(b []byte) (UUID, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return NilUUID, &InvalidArgumentError{Message: "invalid UUID bytes: " + err.Error()}
	}
	return UUID(u), nil
}

// UUIDFromBinary converts a BSON binary value to a UUID. The binary subtype
// must be TypeBinaryUUID or the legacy TypeBinaryUUIDOld and the data must be
// 16 bytes long.
func UUIDFromBinary(b Binary) (UUID, error) {
	if b.Subtype != TypeBinaryUUID && b.Subtype != TypeBinaryUUIDOld {
		return NilUUID, &InvalidArgumentError{
			Message: "expected binary subtype 0x03 or 0x04 for a UUID, got 0x" + formatByteHex(b.Subtype),
		}
	}
	return UUIDFromBytes(b.Data)
}

// Binary returns the BSON binary form of the UUID, using subtype 0x04.
func (id UUID) Binary() Binary {
	return Binary{Subtype: TypeBinaryUUID, Data: append([]byte(nil), id[:]...)}
}

// String returns the string form of the UUID,
// xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.
func (id UUID) String() string {
	return uuid.UUID(id).String()
}

// IsZero returns true if id is the nil UUID.
func (id UUID) IsZero() bool {
	return id == NilUUID
}

// Equal returns true if two UUIDs are equal.
func (id UUID) Equal(id2 UUID) bool {
	return id == id2
}

// MarshalJSON returns the UUID as a string.
func (id UUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON populates the UUID from a JSON string.
func (id *UUID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*id = UUID(u)
	return nil
}

const hexDigits = "0123456789abcdef"

func formatByteHex(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0x0F]})
}
