// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"
)

// ErrDecodeToNil is returned when the decode target is nil.
var ErrDecodeToNil = &LogicError{Message: "cannot decode into a nil target"}

// DocumentUnmarshaler is the interface implemented by record types that can
// decode themselves from a BSON document. UnmarshalDocument is typically
// implemented in terms of DecodeField and DecodeOptionalField.
type DocumentUnmarshaler interface {
	UnmarshalDocument(dec *Decoder, doc *Document) error
}

// ValueUnmarshaler is the interface implemented by types that can decode
// themselves from a single BSON value.
type ValueUnmarshaler interface {
	UnmarshalBSONValue(v Value) error
}

// scalarEnvelopeKey is the synthetic key DecodeExtJSON wraps top-level
// scalars in so that they can travel through the per-field machinery.
const scalarEnvelopeKey = "value"

// A Decoder converts BSON documents back into Go values. Decoding walks the
// target without reflection: supported concrete pointer types are filled
// directly, and everything else must implement DocumentUnmarshaler or
// ValueUnmarshaler.
//
// A Decoder is stateful during a call to Decode and must not be used from
// multiple goroutines concurrently.
type Decoder struct {
	dateStrategy DateDecodingStrategy
	uuidStrategy UUIDDecodingStrategy
	dataStrategy DataDecodingStrategy

	path []string
}

// NewDecoder returns a Decoder with the default strategies: time.Time is
// read from BSON datetimes, UUIDs from binary subtype 4 or 3, and []byte
// from generic binary.
func NewDecoder() *Decoder {
	return &Decoder{
		dateStrategy: DateDecodingBSONDateTime,
		uuidStrategy: UUIDDecodingBinary,
		dataStrategy: DataDecodingBinary,
	}
}

// SetDateDecodingStrategy configures how time.Time targets are read.
func (d *Decoder) SetDateDecodingStrategy(s DateDecodingStrategy) {
	d.dateStrategy = s
}

// SetUUIDDecodingStrategy configures how UUID targets are read.
func (d *Decoder) SetUUIDDecodingStrategy(s UUIDDecodingStrategy) {
	d.uuidStrategy = s
}

// SetDataDecodingStrategy configures how []byte targets are read.
func (d *Decoder) SetDataDecodingStrategy(s DataDecodingStrategy) {
	d.dataStrategy = s
}

// Decode fills dst from doc. The target must be document shaped: a
// DocumentUnmarshaler, a *Document, a *D, an *M or *map[string]interface{},
// a *Value, or a *interface{}. Extended types such as ObjectID or Decimal128
// exist only as fields of a document, so pointers to them are rejected here
// with an error saying to decode through a containing record type instead.
func (d *Decoder) Decode(dst interface{}, doc *Document) error {
	if dst == nil {
		return ErrDecodeToNil
	}
	if doc == nil {
		return ErrNilDocument
	}

	switch t := dst.(type) {
	case DocumentUnmarshaler:
		return t.UnmarshalDocument(d, doc)
	case *Document:
		if t == nil {
			return ErrDecodeToNil
		}
		*t = *doc.Copy()
		return nil
	case **Document:
		if t == nil {
			return ErrDecodeToNil
		}
		*t = doc.Copy()
		return nil
	case *D:
		if t == nil {
			return ErrDecodeToNil
		}
		pairs := make(D, 0, doc.Len())
		itr := doc.Iterator()
		for itr.Next() {
			pairs = append(pairs, E{Key: itr.Key(), Value: itr.Value().Interface()})
		}
		if err := itr.Err(); err != nil {
			return err
		}
		*t = pairs
		return nil
	case *M:
		if t == nil {
			return ErrDecodeToNil
		}
		m, err := documentToMap(doc)
		if err != nil {
			return err
		}
		*t = m
		return nil
	case *map[string]interface{}:
		if t == nil {
			return ErrDecodeToNil
		}
		m, err := documentToMap(doc)
		if err != nil {
			return err
		}
		*t = m
		return nil
	case *Value:
		if t == nil {
			return ErrDecodeToNil
		}
		*t = VC.Document(doc.Copy())
		return nil
	case *interface{}:
		if t == nil {
			return ErrDecodeToNil
		}
		*t = doc.Copy()
		return nil
	case *ObjectID, *Decimal128, *Timestamp, *Regex, *DBPointer, *JavaScript,
		*Symbol, *CodeWithScope, *Binary, *UUID, *DateTime, *MinKey, *MaxKey,
		*Null, *Undefined:
		return &LogicError{Message: fmt.Sprintf(
			"%T can only be decoded from a field of a document; decode into a record type or use DecodeField", dst)}
	default:
		return &LogicError{Message: fmt.Sprintf("cannot decode a document into %T", dst)}
	}
}

// DecodeBytes fills dst from a standalone BSON byte slice.
func (d *Decoder) DecodeBytes(dst interface{}, data []byte) error {
	doc, err := ReadDocument(data)
	if err != nil {
		return err
	}
	return d.Decode(dst, doc)
}

// DecodeExtJSON fills dst from extended JSON text. Documents decode as with
// Decode; a top-level scalar is wrapped in a single-field envelope so that
// scalar targets work too.
func (d *Decoder) DecodeExtJSON(dst interface{}, data []byte) error {
	v, err := parseExtJSONValue(data)
	if err != nil {
		return err
	}
	if doc, ok := v.DocumentOK(); ok {
		return d.Decode(dst, doc)
	}
	env := NewDocument(Element{Key: scalarEnvelopeKey, Value: v})
	return d.DecodeField(env, scalarEnvelopeKey, dst)
}

// DecodeField fills dst from the value stored under key in doc. An absent
// key is a KeyNotFoundError; a null value that dst cannot represent is a
// ValueNotFoundError; a value of the wrong type is a TypeMismatchError.
func (d *Decoder) DecodeField(doc *Document, key string, dst interface{}) error {
	if doc == nil {
		return ErrNilDocument
	}
	v, ok := doc.Lookup(key)
	if !ok {
		return &KeyNotFoundError{Path: d.pathSnapshot(), Key: key}
	}

	d.pushPath(key)
	defer d.popPath()
	return d.decodeValue(v, dst)
}

// DecodeOptionalField fills dst from the value stored under key in doc and
// reports whether a usable value was present. An absent key or a null value
// leaves dst untouched and returns found=false with no error.
func (d *Decoder) DecodeOptionalField(doc *Document, key string, dst interface{}) (bool, error) {
	if doc == nil {
		return false, ErrNilDocument
	}
	v, ok := doc.Lookup(key)
	if !ok || v.Type() == TypeNull {
		return false, nil
	}

	d.pushPath(key)
	defer d.popPath()
	if err := d.decodeValue(v, dst); err != nil {
		return false, err
	}
	return true, nil
}

// DecodeValue fills dst from a single Value. It is the core dispatch behind
// DecodeField and is usable directly from UnmarshalDocument implementations
// that already hold a Value.
func (d *Decoder) DecodeValue(v Value, dst interface{}) error {
	return d.decodeValue(v, dst)
}

func (d *Decoder) decodeValue(v Value, dst interface{}) error {
	if dst == nil {
		return ErrDecodeToNil
	}
	if t, ok := dst.(*Value); ok {
		if t == nil {
			return ErrDecodeToNil
		}
		*t = v
		return nil
	}
	if v.Type() == TypeNull {
		return d.decodeNull(dst)
	}

	switch t := dst.(type) {
	case *bool:
		b, ok := v.BooleanOK()
		if !ok {
			return d.typeMismatch(TypeBoolean, v)
		}
		*t = b
		return nil
	case *string:
		s, ok := v.StringValueOK()
		if !ok {
			return d.typeMismatch(TypeString, v)
		}
		*t = s
		return nil
	case *int32:
		if !v.IsNumber() {
			return d.typeMismatch(TypeInt32, v)
		}
		i, ok := v.asInt32()
		if !ok {
			return d.lossyNumber(TypeInt32, v)
		}
		*t = i
		return nil
	case *int64:
		if !v.IsNumber() {
			return d.typeMismatch(TypeInt64, v)
		}
		i, ok := v.asInt64()
		if !ok {
			return d.lossyNumber(TypeInt64, v)
		}
		*t = i
		return nil
	case *int:
		if !v.IsNumber() {
			return d.typeMismatch(TypeInt64, v)
		}
		i, ok := v.asInt()
		if !ok {
			return d.lossyNumber(TypeInt64, v)
		}
		*t = i
		return nil
	case *float64:
		if !v.IsNumber() {
			return d.typeMismatch(TypeDouble, v)
		}
		f, ok := v.asFloat64()
		if !ok {
			return d.lossyNumber(TypeDouble, v)
		}
		*t = f
		return nil
	case *time.Time:
		tm, err := d.decodeTime(v)
		if err != nil {
			return err
		}
		*t = tm
		return nil
	case *UUID:
		id, err := d.decodeUUID(v)
		if err != nil {
			return err
		}
		*t = id
		return nil
	case *[]byte:
		data, err := d.decodeData(v)
		if err != nil {
			return err
		}
		*t = data
		return nil
	case *ObjectID:
		oid, ok := v.ObjectIDOK()
		if !ok {
			return d.typeMismatch(TypeObjectID, v)
		}
		*t = oid
		return nil
	case *Decimal128:
		dec, ok := v.Decimal128OK()
		if !ok {
			return d.typeMismatch(TypeDecimal128, v)
		}
		*t = dec
		return nil
	case *DateTime:
		dt, ok := v.DateTimeOK()
		if !ok {
			return d.typeMismatch(TypeDateTime, v)
		}
		*t = dt
		return nil
	case *Timestamp:
		ts, ok := v.TimestampOK()
		if !ok {
			return d.typeMismatch(TypeTimestamp, v)
		}
		*t = ts
		return nil
	case *Regex:
		r, ok := v.RegexOK()
		if !ok {
			return d.typeMismatch(TypeRegex, v)
		}
		*t = r
		return nil
	case *DBPointer:
		p, ok := v.DBPointerOK()
		if !ok {
			return d.typeMismatch(TypeDBPointer, v)
		}
		*t = p
		return nil
	case *JavaScript:
		js, ok := v.JavaScriptOK()
		if !ok {
			return d.typeMismatch(TypeJavaScript, v)
		}
		*t = js
		return nil
	case *Symbol:
		s, ok := v.SymbolOK()
		if !ok {
			return d.typeMismatch(TypeSymbol, v)
		}
		*t = s
		return nil
	case *CodeWithScope:
		cws, ok := v.CodeWithScopeOK()
		if !ok {
			return d.typeMismatch(TypeCodeWithScope, v)
		}
		*t = cws
		return nil
	case *Binary:
		b, ok := v.BinaryOK()
		if !ok {
			return d.typeMismatch(TypeBinary, v)
		}
		*t = b
		return nil
	case *MinKey:
		if v.Type() != TypeMinKey {
			return d.typeMismatch(TypeMinKey, v)
		}
		*t = MinKey{}
		return nil
	case *MaxKey:
		if v.Type() != TypeMaxKey {
			return d.typeMismatch(TypeMaxKey, v)
		}
		*t = MaxKey{}
		return nil
	case *Null:
		return d.typeMismatch(TypeNull, v)
	case *Undefined:
		if v.Type() != TypeUndefined {
			return d.typeMismatch(TypeUndefined, v)
		}
		*t = Undefined{}
		return nil
	case *Document:
		doc, ok := v.DocumentOK()
		if !ok {
			return d.typeMismatch(TypeEmbeddedDocument, v)
		}
		*t = *doc.Copy()
		return nil
	case **Document:
		doc, ok := v.DocumentOK()
		if !ok {
			return d.typeMismatch(TypeEmbeddedDocument, v)
		}
		*t = doc.Copy()
		return nil
	case *Array:
		arr, ok := v.ArrayOK()
		if !ok {
			return d.typeMismatch(TypeArray, v)
		}
		*t = *ArrayFromDocument(arr.doc.Copy())
		return nil
	case **Array:
		arr, ok := v.ArrayOK()
		if !ok {
			return d.typeMismatch(TypeArray, v)
		}
		*t = ArrayFromDocument(arr.doc.Copy())
		return nil
	case *[]Value:
		arr, ok := v.ArrayOK()
		if !ok {
			return d.typeMismatch(TypeArray, v)
		}
		*t = arr.Values()
		return nil
	case *[]interface{}:
		arr, ok := v.ArrayOK()
		if !ok {
			return d.typeMismatch(TypeArray, v)
		}
		vals := arr.Values()
		out := make([]interface{}, len(vals))
		for i, val := range vals {
			out[i] = val.Interface()
		}
		*t = out
		return nil
	case *M:
		doc, ok := v.DocumentOK()
		if !ok {
			return d.typeMismatch(TypeEmbeddedDocument, v)
		}
		m, err := documentToMap(doc)
		if err != nil {
			return err
		}
		*t = m
		return nil
	case *map[string]interface{}:
		doc, ok := v.DocumentOK()
		if !ok {
			return d.typeMismatch(TypeEmbeddedDocument, v)
		}
		m, err := documentToMap(doc)
		if err != nil {
			return err
		}
		*t = m
		return nil
	case *interface{}:
		*t = v.Interface()
		return nil
	case **int32:
		return d.decodeOptionalScalar(v, t)
	case **int64:
		return d.decodeOptionalScalar(v, t)
	case **int:
		return d.decodeOptionalScalar(v, t)
	case **string:
		return d.decodeOptionalScalar(v, t)
	case **bool:
		return d.decodeOptionalScalar(v, t)
	case **float64:
		return d.decodeOptionalScalar(v, t)
	case **time.Time:
		return d.decodeOptionalScalar(v, t)
	case **ObjectID:
		return d.decodeOptionalScalar(v, t)
	case **UUID:
		return d.decodeOptionalScalar(v, t)
	case DocumentUnmarshaler:
		doc, ok := v.DocumentOK()
		if !ok {
			return d.typeMismatch(TypeEmbeddedDocument, v)
		}
		return t.UnmarshalDocument(d, doc)
	case ValueUnmarshaler:
		return t.UnmarshalBSONValue(v)
	default:
		return &LogicError{Message: fmt.Sprintf("cannot decode into unsupported type %T", dst)}
	}
}

// decodeNull handles a BSON null value. Targets that can represent the
// absence of a value are cleared; everything else reports the value as not
// found.
func (d *Decoder) decodeNull(dst interface{}) error {
	switch t := dst.(type) {
	case ValueUnmarshaler:
		return t.UnmarshalBSONValue(VC.Null())
	case *Null:
		*t = Null{}
		return nil
	case *interface{}:
		*t = nil
		return nil
	case **int32:
		*t = nil
		return nil
	case **int64:
		*t = nil
		return nil
	case **int:
		*t = nil
		return nil
	case **string:
		*t = nil
		return nil
	case **bool:
		*t = nil
		return nil
	case **float64:
		*t = nil
		return nil
	case **time.Time:
		*t = nil
		return nil
	case **ObjectID:
		*t = nil
		return nil
	case **UUID:
		*t = nil
		return nil
	case **Document:
		*t = nil
		return nil
	case **Array:
		*t = nil
		return nil
	default:
		return d.valueNotFound()
	}
}

// decodeOptionalScalar fills a pointer-to-pointer target with a freshly
// allocated value. Nulls were already handled by decodeNull.
func (d *Decoder) decodeOptionalScalar(v Value, dst interface{}) error {
	switch t := dst.(type) {
	case **int32:
		var out int32
		if err := d.decodeValue(v, &out); err != nil {
			return err
		}
		*t = &out
	case **int64:
		var out int64
		if err := d.decodeValue(v, &out); err != nil {
			return err
		}
		*t = &out
	case **int:
		var out int
		if err := d.decodeValue(v, &out); err != nil {
			return err
		}
		*t = &out
	case **string:
		var out string
		if err := d.decodeValue(v, &out); err != nil {
			return err
		}
		*t = &out
	case **bool:
		var out bool
		if err := d.decodeValue(v, &out); err != nil {
			return err
		}
		*t = &out
	case **float64:
		var out float64
		if err := d.decodeValue(v, &out); err != nil {
			return err
		}
		*t = &out
	case **time.Time:
		var out time.Time
		if err := d.decodeValue(v, &out); err != nil {
			return err
		}
		*t = &out
	case **ObjectID:
		var out ObjectID
		if err := d.decodeValue(v, &out); err != nil {
			return err
		}
		*t = &out
	case **UUID:
		var out UUID
		if err := d.decodeValue(v, &out); err != nil {
			return err
		}
		*t = &out
	default:
		return &LogicError{Message: fmt.Sprintf("cannot decode into unsupported type %T", dst)}
	}
	return nil
}

func (d *Decoder) decodeTime(v Value) (time.Time, error) {
	switch d.dateStrategy.kind {
	case dateEncodingMillisecondsSince1970:
		if !v.IsNumber() {
			return time.Time{}, d.typeMismatch(TypeInt64, v)
		}
		ms, ok := v.asInt64()
		if !ok {
			return time.Time{}, d.lossyNumber(TypeInt64, v)
		}
		return time.UnixMilli(ms), nil
	case dateEncodingSecondsSince1970:
		if !v.IsNumber() {
			return time.Time{}, d.typeMismatch(TypeDouble, v)
		}
		secs, ok := v.asFloat64()
		if !ok {
			return time.Time{}, d.lossyNumber(TypeDouble, v)
		}
		return time.UnixMilli(int64(math.Round(secs * 1000.0))), nil
	case dateEncodingISO8601:
		s, ok := v.StringValueOK()
		if !ok {
			return time.Time{}, d.typeMismatch(TypeString, v)
		}
		tm, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, d.corrupted("%q is not an ISO 8601 date", s)
		}
		return tm, nil
	case dateEncodingFormatted:
		s, ok := v.StringValueOK()
		if !ok {
			return time.Time{}, d.typeMismatch(TypeString, v)
		}
		tm, err := time.Parse(d.dateStrategy.layout, s)
		if err != nil {
			return time.Time{}, d.corrupted("%q does not match the date layout %q", s, d.dateStrategy.layout)
		}
		return tm, nil
	case dateEncodingCustom:
		return d.dateStrategy.fn(d, v)
	default:
		tm, ok := v.TimeOK()
		if !ok {
			return time.Time{}, d.typeMismatch(TypeDateTime, v)
		}
		return tm, nil
	}
}

func (d *Decoder) decodeUUID(v Value) (UUID, error) {
	if d.uuidStrategy.kind == uuidCodingDeferred {
		s, ok := v.StringValueOK()
		if !ok {
			return UUID{}, d.typeMismatch(TypeString, v)
		}
		id, err := ParseUUID(s)
		if err != nil {
			return UUID{}, d.corrupted("%q is not a UUID", s)
		}
		return id, nil
	}

	b, ok := v.BinaryOK()
	if !ok {
		return UUID{}, d.typeMismatch(TypeBinary, v)
	}
	if b.Subtype != TypeBinaryUUID && b.Subtype != TypeBinaryUUIDOld {
		return UUID{}, d.corrupted("binary subtype %d is not a UUID subtype", b.Subtype)
	}
	if len(b.Data) != 16 {
		return UUID{}, d.corrupted("UUID binary data has length %d, want 16", len(b.Data))
	}
	id, err := UUIDFromBytes(b.Data)
	if err != nil {
		return UUID{}, d.corrupted("%s", err)
	}
	return id, nil
}

func (d *Decoder) decodeData(v Value) ([]byte, error) {
	switch d.dataStrategy.kind {
	case dataEncodingBase64:
		s, ok := v.StringValueOK()
		if !ok {
			return nil, d.typeMismatch(TypeString, v)
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, d.corrupted("%q is not base64 data", s)
		}
		return data, nil
	case dataEncodingCustom:
		return d.dataStrategy.fn(d, v)
	default:
		b, ok := v.BinaryOK()
		if !ok {
			return nil, d.typeMismatch(TypeBinary, v)
		}
		if b.Subtype != TypeBinaryGeneric && b.Subtype != TypeBinaryBinaryOld {
			return nil, d.corrupted("binary subtype %d is not a data subtype", b.Subtype)
		}
		return b.Data, nil
	}
}

func documentToMap(doc *Document) (map[string]interface{}, error) {
	m := make(map[string]interface{}, doc.Len())
	itr := doc.Iterator()
	for itr.Next() {
		m[itr.Key()] = itr.Value().Interface()
	}
	if err := itr.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *Decoder) pushPath(key string) {
	d.path = append(d.path, key)
}

func (d *Decoder) popPath() {
	d.path = d.path[:len(d.path)-1]
}

func (d *Decoder) pathSnapshot() []string {
	if len(d.path) == 0 {
		return nil
	}
	return append([]string(nil), d.path...)
}

func (d *Decoder) typeMismatch(expected Type, v Value) error {
	return &TypeMismatchError{Path: d.pathSnapshot(), Expected: expected, Actual: v.Type()}
}

// lossyNumber reports a numeric value that has the right kind but cannot be
// represented by the target without loss.
func (d *Decoder) lossyNumber(expected Type, v Value) error {
	return &TypeMismatchError{
		Path:     d.pathSnapshot(),
		Expected: expected,
		Actual:   v.Type(),
		Message:  fmt.Sprintf("value %v cannot be represented exactly", v.Interface()),
	}
}

func (d *Decoder) valueNotFound() error {
	if len(d.path) == 0 {
		return &ValueNotFoundError{}
	}
	parent := append([]string(nil), d.path[:len(d.path)-1]...)
	return &ValueNotFoundError{Path: parent, Key: d.path[len(d.path)-1]}
}

func (d *Decoder) corrupted(format string, args ...interface{}) error {
	return &DataCorruptedError{Path: d.pathSnapshot(), Message: fmt.Sprintf(format, args...)}
}

// Unmarshal decodes standalone BSON bytes into dst using a default Decoder.
func Unmarshal(data []byte, dst interface{}) error {
	return NewDecoder().DecodeBytes(dst, data)
}

// UnmarshalExtJSON decodes extended JSON text into dst using a default
// Decoder.
func UnmarshalExtJSON(data []byte, dst interface{}) error {
	return NewDecoder().DecodeExtJSON(dst, data)
}
