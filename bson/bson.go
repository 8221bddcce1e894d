// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson is a library for reading, writing, and manipulating BSON
// documents.
//
// The core type is Document, an ordered map of string keys to Values kept in
// wire form at all times, so reading a document from bytes and writing it
// back out never re-encodes anything. Copying a Document is cheap: the copy
// shares the original's buffer until one of the two is mutated.
//
// Value is a tagged union over every BSON type. Values are built through the
// VC constructor namespace and read back through typed accessors, which come
// in a panicking form (Double, StringValue, ...) and a two-return form
// (DoubleOK, StringValueOK, ...).
//
// Documents convert to and from MongoDB Extended JSON, in both the
// canonical and the relaxed flavor, through MarshalExtJSON and ParseExtJSON.
//
// Encoder and Decoder convert between Go values and documents without
// reflection. Types participate by implementing DocumentMarshaler and
// DocumentUnmarshaler (records) or ValueMarshaler and ValueUnmarshaler
// (single values).
package bson

// E represents a single element of a D.
type E struct {
	Key   string
	Value interface{}
}

// D is an ordered representation of a BSON document used with Encoder and
// Decoder. The order of the elements is preserved.
//
// Example usage:
//
//	bson.D{{"foo", "bar"}, {"hello", "world"}, {"pi", 3.14159}}
type D []E

// M is an unordered representation of a BSON document used with Encoder and
// Decoder. Encoding an M sorts its keys, so the result is deterministic but
// the original insertion order is not preserved.
//
// Example usage:
//
//	bson.M{"foo": "bar", "hello": "world", "pi": 3.14159}
type M map[string]interface{}

// A is an ordered representation of a BSON array.
//
// Example usage:
//
//	bson.A{"bar", "world", 3.14159, bson.D{{"qux", 12345}}}
type A []interface{}
