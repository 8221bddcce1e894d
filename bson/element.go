// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strings"
	"time"

	"github.com/mongodb/mongo-swift-driver-sub005/bson/elements"
)

// Element is a key/value pair inside a Document.
type Element struct {
	Key   string
	Value Value
}

// Equal compares e to e2 and returns true if they are equal.
func (e Element) Equal(e2 Element) bool {
	return e.Key == e2.Key && e.Value.Equal(e2.Value)
}

// EC is a convenience variable provided for access to the ElementConstructor
// methods.
var EC ElementConstructor

// ElementConstructor is used as a namespace for element constructor functions.
type ElementConstructor struct{}

// Double creates a double element with the given key and value.
func (ElementConstructor) Double(key string, f float64) Element {
	return Element{Key: key, Value: VC.Double(f)}
}

// String creates a string element with the given key and value.
func (ElementConstructor) String(key string, val string) Element {
	return Element{Key: key, Value: VC.String(val)}
}

// SubDocument creates a subdocument element with the given key and value.
func (ElementConstructor) SubDocument(key string, d *Document) Element {
	return Element{Key: key, Value: VC.Document(d)}
}

// Array creates an array element with the given key and value.
func (ElementConstructor) Array(key string, a *Array) Element {
	return Element{Key: key, Value: VC.Array(a)}
}

// Binary creates a binary element with the given key and value.
func (ElementConstructor) Binary(key string, b []byte) Element {
	return Element{Key: key, Value: VC.Binary(b)}
}

// BinaryWithSubtype creates a binary element with the given key, value, and
// subtype.
func (ElementConstructor) BinaryWithSubtype(key string, b []byte, btype byte) Element {
	return Element{Key: key, Value: VC.BinaryWithSubtype(b, btype)}
}

// UUID creates a binary element with the UUID subtype from the given key and
// value.
func (ElementConstructor) UUID(key string, id UUID) Element {
	return Element{Key: key, Value: VC.UUID(id)}
}

// Undefined creates an undefined element with the given key.
func (ElementConstructor) Undefined(key string) Element {
	return Element{Key: key, Value: VC.Undefined()}
}

// ObjectID creates an objectid element with the given key and value.
func (ElementConstructor) ObjectID(key string, oid ObjectID) Element {
	return Element{Key: key, Value: VC.ObjectID(oid)}
}

// Boolean creates a boolean element with the given key and value.
func (ElementConstructor) Boolean(key string, b bool) Element {
	return Element{Key: key, Value: VC.Boolean(b)}
}

// DateTime creates a datetime element with the given key and value. The value
// is in milliseconds since the Unix epoch.
func (ElementConstructor) DateTime(key string, dt int64) Element {
	return Element{Key: key, Value: VC.DateTime(dt)}
}

// Time creates a datetime element with the given key and value, truncated to
// millisecond precision.
func (ElementConstructor) Time(key string, t time.Time) Element {
	return Element{Key: key, Value: VC.Time(t)}
}

// Null creates a null element with the given key.
func (ElementConstructor) Null(key string) Element {
	return Element{Key: key, Value: VC.Null()}
}

// Regex creates a regex element with the given key and value.
func (ElementConstructor) Regex(key string, pattern, options string) Element {
	return Element{Key: key, Value: VC.Regex(pattern, options)}
}

// DBPointer creates a dbpointer element with the given key and value.
func (ElementConstructor) DBPointer(key string, ns string, oid ObjectID) Element {
	return Element{Key: key, Value: VC.DBPointer(ns, oid)}
}

// JavaScript creates a JavaScript code element with the given key and value.
func (ElementConstructor) JavaScript(key string, code string) Element {
	return Element{Key: key, Value: VC.JavaScript(code)}
}

// Symbol creates a symbol element with the given key and value.
func (ElementConstructor) Symbol(key string, symbol string) Element {
	return Element{Key: key, Value: VC.Symbol(symbol)}
}

// CodeWithScope creates a JavaScript code with scope element with the given
// key and value.
func (ElementConstructor) CodeWithScope(key string, code string, scope *Document) Element {
	return Element{Key: key, Value: VC.CodeWithScope(code, scope)}
}

// Int32 creates an int32 element with the given key and value.
func (ElementConstructor) Int32(key string, i int32) Element {
	return Element{Key: key, Value: VC.Int32(i)}
}

// Timestamp creates a timestamp element with the given key and value.
func (ElementConstructor) Timestamp(key string, t uint32, i uint32) Element {
	return Element{Key: key, Value: VC.Timestamp(t, i)}
}

// Int64 creates an int64 element with the given key and value.
func (ElementConstructor) Int64(key string, i int64) Element {
	return Element{Key: key, Value: VC.Int64(i)}
}

// Decimal128 creates a decimal128 element with the given key and value.
func (ElementConstructor) Decimal128(key string, d Decimal128) Element {
	return Element{Key: key, Value: VC.Decimal128(d)}
}

// MinKey creates a minkey element with the given key.
func (ElementConstructor) MinKey(key string) Element {
	return Element{Key: key, Value: VC.MinKey()}
}

// MaxKey creates a maxkey element with the given key.
func (ElementConstructor) MaxKey(key string) Element {
	return Element{Key: key, Value: VC.MaxKey()}
}

// validateKey ensures a string can be used as an element key or as a
// component of a BSON regex, both of which are encoded as C strings.
func validateKey(key string) error {
	if strings.IndexByte(key, 0x00) != -1 {
		return &InvalidArgumentError{Message: "key cannot contain a null byte"}
	}
	return nil
}

// sizeValue returns the number of bytes the wire form of v's payload
// occupies.
func sizeValue(v Value) (int, error) {
	switch v.Type() {
	case TypeDouble, TypeDateTime, TypeInt64, TypeTimestamp:
		return 8, nil
	case TypeString:
		return 4 + len(v.StringValue()) + 1, nil
	case TypeEmbeddedDocument:
		return len(v.Document().raw()), nil
	case TypeArray:
		return len(v.Array().doc.raw()), nil
	case TypeBinary:
		b := v.Binary()
		if b.Subtype == TypeBinaryBinaryOld {
			return 5 + 4 + len(b.Data), nil
		}
		return 5 + len(b.Data), nil
	case TypeUndefined, TypeNull, TypeMinKey, TypeMaxKey:
		return 0, nil
	case TypeObjectID:
		return 12, nil
	case TypeBoolean:
		return 1, nil
	case TypeRegex:
		r := v.Regex()
		return len(r.Pattern) + 1 + len(r.Options) + 1, nil
	case TypeDBPointer:
		dbp := v.DBPointer()
		return 4 + len(dbp.DB) + 1 + 12, nil
	case TypeJavaScript:
		return 4 + len(v.JavaScript()) + 1, nil
	case TypeSymbol:
		return 4 + len(v.Symbol()) + 1, nil
	case TypeCodeWithScope:
		cws := v.CodeWithScope()
		return 4 + 4 + len(cws.Code) + 1 + len(cws.Scope.raw()), nil
	case TypeInt32:
		return 4, nil
	case TypeDecimal128:
		return 16, nil
	default:
		return 0, &InvalidArgumentError{Message: "value is invalid and cannot be encoded"}
	}
}

// encodeElement writes the wire form of an element, identifier byte through
// payload, to writer at start. The destination must already have been sized
// with sizeValue.
func encodeElement(start uint, writer []byte, key string, v Value) (int, error) {
	switch v.Type() {
	case TypeDouble:
		return elements.Double.Element(start, writer, key, v.Double())
	case TypeString:
		return elements.String.Element(start, writer, key, v.StringValue())
	case TypeEmbeddedDocument:
		return elements.Document.Element(start, writer, key, v.Document().raw())
	case TypeArray:
		return elements.Array.Element(start, writer, key, v.Array().doc.raw())
	case TypeBinary:
		b := v.Binary()
		return elements.Binary.Element(start, writer, key, b.Data, b.Subtype)
	case TypeUndefined:
		return encodeHeaderOnly(start, writer, key, TypeUndefined)
	case TypeObjectID:
		return elements.ObjectID.Element(start, writer, key, v.ObjectID())
	case TypeBoolean:
		return elements.Boolean.Element(start, writer, key, v.Boolean())
	case TypeDateTime:
		return elements.DateTime.Element(start, writer, key, int64(v.DateTime()))
	case TypeNull:
		return encodeHeaderOnly(start, writer, key, TypeNull)
	case TypeRegex:
		r := v.Regex()
		return elements.Regex.Element(start, writer, key, r.Pattern, r.Options)
	case TypeDBPointer:
		dbp := v.DBPointer()
		return elements.DBPointer.Element(start, writer, key, dbp.DB, dbp.Pointer)
	case TypeJavaScript:
		return elements.JavaScript.Element(start, writer, key, string(v.JavaScript()))
	case TypeSymbol:
		return elements.Symbol.Element(start, writer, key, string(v.Symbol()))
	case TypeCodeWithScope:
		cws := v.CodeWithScope()
		return elements.CodeWithScope.Element(start, writer, key, cws.Code, cws.Scope.raw())
	case TypeInt32:
		return elements.Int32.Element(start, writer, key, v.Int32())
	case TypeTimestamp:
		ts := v.Timestamp()
		return elements.Timestamp.Element(start, writer, key, ts.T, ts.I)
	case TypeInt64:
		return elements.Int64.Element(start, writer, key, v.Int64())
	case TypeDecimal128:
		h, l := v.Decimal128().GetBytes()
		return elements.Decimal128.Element(start, writer, key, h, l)
	case TypeMinKey:
		return encodeHeaderOnly(start, writer, key, TypeMinKey)
	case TypeMaxKey:
		return encodeHeaderOnly(start, writer, key, TypeMaxKey)
	default:
		return 0, &InvalidArgumentError{Message: "value is invalid and cannot be encoded"}
	}
}

// encodeHeaderOnly handles the types whose wire form is only an identifier
// byte and a key.
func encodeHeaderOnly(start uint, writer []byte, key string, t Type) (int, error) {
	var total int

	n, err := elements.Byte.Encode(start, writer, byte(t))
	start += uint(n)
	total += n
	if err != nil {
		return total, err
	}

	n, err = elements.CString.Encode(start, writer, key)
	total += n
	if err != nil {
		return total, err
	}

	return total, nil
}

// appendElement grows dst by the exact wire size of the element and encodes
// the element into the new space.
func appendElement(dst []byte, key string, v Value) ([]byte, error) {
	size, err := sizeValue(v)
	if err != nil {
		return dst, err
	}

	start := len(dst)
	dst = append(dst, make([]byte, 1+len(key)+1+size)...)
	if _, err := encodeElement(uint(start), dst, key, v); err != nil {
		return dst, err
	}

	return dst, nil
}
