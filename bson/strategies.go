// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import "time"

type nilEncodingKind int

const (
	nilEncodingOmit nilEncodingKind = iota
	nilEncodingInclude
)

// NilEncodingStrategy controls how nil values passed to Encoder.EncodeField
// are handled.
type NilEncodingStrategy struct {
	kind nilEncodingKind
}

var (
	// NilEncodingOmit skips nil fields entirely. It is the default. A
	// top-level encoding pass that produced no fields yields a nil Document.
	NilEncodingOmit = NilEncodingStrategy{kind: nilEncodingOmit}

	// NilEncodingInclude stores nil fields as explicit BSON null values.
	NilEncodingInclude = NilEncodingStrategy{kind: nilEncodingInclude}
)

type dateEncodingKind int

const (
	dateEncodingBSONDateTime dateEncodingKind = iota
	dateEncodingMillisecondsSince1970
	dateEncodingSecondsSince1970
	dateEncodingISO8601
	dateEncodingFormatted
	dateEncodingCustom
)

// DateEncodingStrategy controls how time.Time values are stored.
type DateEncodingStrategy struct {
	kind   dateEncodingKind
	layout string
	fn     func(time.Time) (Value, error)
}

var (
	// DateEncodingBSONDateTime stores time.Time values as BSON datetimes,
	// truncated to millisecond precision. It is the default.
	DateEncodingBSONDateTime = DateEncodingStrategy{kind: dateEncodingBSONDateTime}

	// DateEncodingMillisecondsSince1970 stores time.Time values as the int64
	// number of milliseconds since the Unix epoch.
	DateEncodingMillisecondsSince1970 = DateEncodingStrategy{kind: dateEncodingMillisecondsSince1970}

	// DateEncodingSecondsSince1970 stores time.Time values as the double
	// number of seconds since the Unix epoch.
	DateEncodingSecondsSince1970 = DateEncodingStrategy{kind: dateEncodingSecondsSince1970}

	// DateEncodingISO8601 stores time.Time values as ISO 8601 strings with
	// millisecond precision in UTC.
	DateEncodingISO8601 = DateEncodingStrategy{kind: dateEncodingISO8601}
)

// DateEncodingFormatted stores time.Time values as strings in the given
// time.Format layout.
func DateEncodingFormatted(layout string) DateEncodingStrategy {
	return DateEncodingStrategy{kind: dateEncodingFormatted, layout: layout}
}

// DateEncodingCustom stores time.Time values using fn.
func DateEncodingCustom(fn func(time.Time) (Value, error)) DateEncodingStrategy {
	return DateEncodingStrategy{kind: dateEncodingCustom, fn: fn}
}

// DateDecodingStrategy controls how time.Time targets are read. Each strategy
// mirrors a DateEncodingStrategy; decoding with a different strategy than the
// value was encoded with fails.
type DateDecodingStrategy struct {
	kind   dateEncodingKind
	layout string
	fn     func(dec *Decoder, v Value) (time.Time, error)
}

var (
	// DateDecodingBSONDateTime reads time.Time values from BSON datetimes.
	// It is the default.
	DateDecodingBSONDateTime = DateDecodingStrategy{kind: dateEncodingBSONDateTime}

	// DateDecodingMillisecondsSince1970 reads time.Time values from integer
	// milliseconds since the Unix epoch.
	DateDecodingMillisecondsSince1970 = DateDecodingStrategy{kind: dateEncodingMillisecondsSince1970}

	// DateDecodingSecondsSince1970 reads time.Time values from double seconds
	// since the Unix epoch.
	DateDecodingSecondsSince1970 = DateDecodingStrategy{kind: dateEncodingSecondsSince1970}

	// DateDecodingISO8601 reads time.Time values from ISO 8601 strings.
	DateDecodingISO8601 = DateDecodingStrategy{kind: dateEncodingISO8601}
)

// DateDecodingFormatted reads time.Time values from strings in the given
// time.Parse layout.
func DateDecodingFormatted(layout string) DateDecodingStrategy {
	return DateDecodingStrategy{kind: dateEncodingFormatted, layout: layout}
}

// DateDecodingCustom reads time.Time values using fn.
func DateDecodingCustom(fn func(dec *Decoder, v Value) (time.Time, error)) DateDecodingStrategy {
	return DateDecodingStrategy{kind: dateEncodingCustom, fn: fn}
}

type uuidCodingKind int

const (
	uuidCodingBinary uuidCodingKind = iota
	uuidCodingDeferred
)

// UUIDEncodingStrategy controls how UUID values are stored.
type UUIDEncodingStrategy struct {
	kind uuidCodingKind
}

var (
	// UUIDEncodingBinary stores UUIDs as BSON binary values with subtype 4.
	// It is the default.
	UUIDEncodingBinary = UUIDEncodingStrategy{kind: uuidCodingBinary}

	// UUIDEncodingDeferred stores UUIDs in their canonical string form.
	UUIDEncodingDeferred = UUIDEncodingStrategy{kind: uuidCodingDeferred}
)

// UUIDDecodingStrategy controls how UUID targets are read.
type UUIDDecodingStrategy struct {
	kind uuidCodingKind
}

var (
	// UUIDDecodingBinary reads UUIDs from BSON binary values. The stored
	// subtype must be 4 or the legacy 3; anything else is corrupted data. It
	// is the default.
	UUIDDecodingBinary = UUIDDecodingStrategy{kind: uuidCodingBinary}

	// UUIDDecodingDeferred reads UUIDs from their canonical string form.
	UUIDDecodingDeferred = UUIDDecodingStrategy{kind: uuidCodingDeferred}
)

type dataCodingKind int

const (
	dataEncodingBinary dataCodingKind = iota
	dataEncodingBase64
	dataEncodingCustom
)

// DataEncodingStrategy controls how []byte values are stored.
type DataEncodingStrategy struct {
	kind dataCodingKind
	fn   func([]byte) (Value, error)
}

var (
	// DataEncodingBinary stores []byte values as BSON binary values with the
	// generic subtype. It is the default.
	DataEncodingBinary = DataEncodingStrategy{kind: dataEncodingBinary}

	// DataEncodingBase64 stores []byte values as base64 strings.
	DataEncodingBase64 = DataEncodingStrategy{kind: dataEncodingBase64}
)

// DataEncodingCustom stores []byte values using fn.
func DataEncodingCustom(fn func([]byte) (Value, error)) DataEncodingStrategy {
	return DataEncodingStrategy{kind: dataEncodingCustom, fn: fn}
}

// DataDecodingStrategy controls how []byte targets are read.
type DataDecodingStrategy struct {
	kind dataCodingKind
	fn   func(dec *Decoder, v Value) ([]byte, error)
}

var (
	// DataDecodingBinary reads []byte values from BSON binary values with the
	// generic or legacy generic subtype. It is the default.
	DataDecodingBinary = DataDecodingStrategy{kind: dataEncodingBinary}

	// DataDecodingBase64 reads []byte values from base64 strings.
	DataDecodingBase64 = DataDecodingStrategy{kind: dataEncodingBase64}
)

// DataDecodingCustom reads []byte values using fn.
func DataDecodingCustom(fn func(dec *Decoder, v Value) ([]byte, error)) DataDecodingStrategy {
	return DataDecodingStrategy{kind: dataEncodingCustom, fn: fn}
}
