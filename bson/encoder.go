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
	"sort"
	"strconv"
	"time"
)

// DocumentMarshaler is the interface implemented by record types that can
// encode themselves as a BSON document. MarshalDocument is called with an
// encoder whose current frame is the document under construction;
// implementations append their fields with EncodeField.
type DocumentMarshaler interface {
	MarshalDocument(enc *Encoder) error
}

// ValueMarshaler is the interface implemented by types that can encode
// themselves as a single BSON value.
type ValueMarshaler interface {
	MarshalBSONValue() (Value, error)
}

// An Encoder converts Go values into BSON documents. Encoding walks the value
// without reflection: supported concrete types are mapped directly, and
// everything else must implement DocumentMarshaler or ValueMarshaler.
//
// An Encoder is stateful during a call to Encode and must not be used from
// multiple goroutines concurrently.
type Encoder struct {
	nilStrategy  NilEncodingStrategy
	dateStrategy DateEncodingStrategy
	uuidStrategy UUIDEncodingStrategy
	dataStrategy DataEncodingStrategy

	frames []*Document
	path   []string
}

// NewEncoder returns an Encoder with the default strategies: nil values are
// omitted, time.Time becomes a BSON datetime, UUIDs become binary subtype 4,
// and []byte becomes generic binary.
func NewEncoder() *Encoder {
	return &Encoder{
		nilStrategy:  NilEncodingOmit,
		dateStrategy: DateEncodingBSONDateTime,
		uuidStrategy: UUIDEncodingBinary,
		dataStrategy: DataEncodingBinary,
	}
}

// SetNilEncodingStrategy configures how nil values passed to EncodeField are
// handled.
func (e *Encoder) SetNilEncodingStrategy(s NilEncodingStrategy) {
	e.nilStrategy = s
}

// SetDateEncodingStrategy configures how time.Time values are stored.
func (e *Encoder) SetDateEncodingStrategy(s DateEncodingStrategy) {
	e.dateStrategy = s
}

// SetUUIDEncodingStrategy configures how UUID values are stored.
func (e *Encoder) SetUUIDEncodingStrategy(s UUIDEncodingStrategy) {
	e.uuidStrategy = s
}

// SetDataEncodingStrategy configures how []byte values are stored.
func (e *Encoder) SetDataEncodingStrategy(s DataEncodingStrategy) {
	e.dataStrategy = s
}

// Encode converts value into a Document. The value must be document shaped: a
// *Document, a document typed Value, a D, an M or map[string]interface{}, a
// DocumentMarshaler, or a ValueMarshaler whose value is a document. Anything
// else returns an InvalidValueError.
//
// Under NilEncodingOmit a nil value, or a marshaling pass that produced no
// fields, yields a nil Document and a nil error.
func (e *Encoder) Encode(value interface{}) (*Document, error) {
	switch t := value.(type) {
	case nil:
		return nil, nil
	case *Document:
		if t == nil {
			return nil, nil
		}
		return t.Copy(), nil
	case Value:
		doc, ok := t.DocumentOK()
		if !ok {
			return nil, e.invalidValue(value, "top-level value of type %v is not a document", t.Type())
		}
		return doc.Copy(), nil
	case D:
		return e.collapse(e.encodePairs(t))
	case []E:
		return e.collapse(e.encodePairs(t))
	case M:
		return e.collapse(e.encodeMap(t))
	case map[string]interface{}:
		return e.collapse(e.encodeMap(t))
	case DocumentMarshaler:
		return e.collapse(e.encodeMarshaler(t))
	case ValueMarshaler:
		v, err := t.MarshalBSONValue()
		if err != nil {
			return nil, err
		}
		doc, ok := v.DocumentOK()
		if !ok {
			return nil, e.invalidValue(value, "top-level value of type %v is not a document", v.Type())
		}
		return doc.Copy(), nil
	default:
		return nil, e.invalidValue(value, "cannot encode type %T as a top-level document", value)
	}
}

// EncodeField encodes value under key into the document currently under
// construction. It may only be called during an encoding pass, from inside a
// MarshalDocument implementation; calling it outside of one panics with a
// LogicError.
func (e *Encoder) EncodeField(key string, value interface{}) error {
	frame := e.currentFrame()

	if isNilValue(value) {
		if e.nilStrategy.kind == nilEncodingOmit {
			return nil
		}
		return frame.Append(key, VC.Null())
	}

	e.pushPath(key)
	defer e.popPath()

	v, err := e.encodeValue(value)
	if err != nil {
		return err
	}
	return frame.Append(key, v)
}

// collapse applies the empty-pass rule: under NilEncodingOmit a document that
// ended up with no fields becomes nil.
func (e *Encoder) collapse(doc *Document, err error) (*Document, error) {
	if err != nil {
		return nil, err
	}
	if e.nilStrategy.kind == nilEncodingOmit && doc.Len() == 0 {
		return nil, nil
	}
	return doc, nil
}

func (e *Encoder) encodeMarshaler(m DocumentMarshaler) (*Document, error) {
	doc := NewDocument()
	e.pushFrame(doc)
	defer e.popFrame()

	if err := m.MarshalDocument(e); err != nil {
		return nil, err
	}
	return doc, nil
}

func (e *Encoder) encodePairs(pairs []E) (*Document, error) {
	doc := NewDocument()
	e.pushFrame(doc)
	defer e.popFrame()

	for _, pair := range pairs {
		if err := e.EncodeField(pair.Key, pair.Value); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (e *Encoder) encodeMap(m map[string]interface{}) (*Document, error) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	doc := NewDocument()
	e.pushFrame(doc)
	defer e.popFrame()

	for _, key := range keys {
		if err := e.EncodeField(key, m[key]); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// encodeValue maps a non-nil Go value to a BSON Value.
func (e *Encoder) encodeValue(value interface{}) (Value, error) {
	switch t := value.(type) {
	case Value:
		if t.IsZero() {
			return Value{}, e.invalidValue(value, "cannot encode the zero Value")
		}
		return t, nil
	case *Document:
		return VC.Document(t), nil
	case *Array:
		return VC.Array(t), nil
	case D:
		doc, err := e.encodePairs(t)
		if err != nil {
			return Value{}, err
		}
		return VC.Document(doc), nil
	case []E:
		doc, err := e.encodePairs(t)
		if err != nil {
			return Value{}, err
		}
		return VC.Document(doc), nil
	case M:
		doc, err := e.encodeMap(t)
		if err != nil {
			return Value{}, err
		}
		return VC.Document(doc), nil
	case map[string]interface{}:
		doc, err := e.encodeMap(t)
		if err != nil {
			return Value{}, err
		}
		return VC.Document(doc), nil
	case A:
		arr, err := e.encodeSlice(t)
		if err != nil {
			return Value{}, err
		}
		return VC.Array(arr), nil
	case []interface{}:
		arr, err := e.encodeSlice(t)
		if err != nil {
			return Value{}, err
		}
		return VC.Array(arr), nil
	case []Value:
		arr := NewArray()
		if err := arr.Append(t...); err != nil {
			return Value{}, err
		}
		return VC.Array(arr), nil
	case []string:
		arr := NewArray()
		for _, s := range t {
			if err := arr.Append(VC.String(s)); err != nil {
				return Value{}, err
			}
		}
		return VC.Array(arr), nil
	case string:
		return VC.String(t), nil
	case bool:
		return VC.Boolean(t), nil
	case float64:
		return VC.Double(t), nil
	case float32:
		return VC.Double(float64(t)), nil
	case int8:
		return VC.Int32(int32(t)), nil
	case int16:
		return VC.Int32(int32(t)), nil
	case int32:
		return VC.Int32(t), nil
	case int64:
		return VC.Int64(t), nil
	case int:
		if t >= math.MinInt32 && t <= math.MaxInt32 {
			return VC.Int32(int32(t)), nil
		}
		return VC.Int64(int64(t)), nil
	case uint8:
		return VC.Int32(int32(t)), nil
	case uint16:
		return VC.Int32(int32(t)), nil
	case uint32:
		return VC.Int64(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, e.invalidValue(value, "%d overflows the largest BSON integer", t)
		}
		return VC.Int64(int64(t)), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Value{}, e.invalidValue(value, "%d overflows the largest BSON integer", t)
		}
		return VC.Int64(int64(t)), nil
	case []byte:
		return e.encodeData(t)
	case time.Time:
		return e.encodeTime(t)
	case *time.Time:
		return e.encodeTime(*t)
	case UUID:
		return e.encodeUUID(t)
	case *UUID:
		return e.encodeUUID(*t)
	case ObjectID:
		return VC.ObjectID(t), nil
	case *ObjectID:
		return VC.ObjectID(*t), nil
	case Decimal128:
		return VC.Decimal128(t), nil
	case *Decimal128:
		return VC.Decimal128(*t), nil
	case DateTime:
		return VC.DateTime(int64(t)), nil
	case Timestamp:
		return VC.Timestamp(t.T, t.I), nil
	case Binary:
		return VC.BinaryWithSubtype(t.Data, t.Subtype), nil
	case Regex:
		return VC.Regex(t.Pattern, t.Options), nil
	case DBPointer:
		return VC.DBPointer(t.DB, t.Pointer), nil
	case JavaScript:
		return VC.JavaScript(string(t)), nil
	case Symbol:
		return VC.Symbol(string(t)), nil
	case CodeWithScope:
		return VC.CodeWithScope(t.Code, t.Scope), nil
	case Null:
		return VC.Null(), nil
	case Undefined:
		return VC.Undefined(), nil
	case MinKey:
		return VC.MinKey(), nil
	case MaxKey:
		return VC.MaxKey(), nil
	case *string:
		return VC.String(*t), nil
	case *bool:
		return VC.Boolean(*t), nil
	case *float64:
		return VC.Double(*t), nil
	case *int32:
		return VC.Int32(*t), nil
	case *int64:
		return VC.Int64(*t), nil
	case *int:
		return e.encodeValue(*t)
	case DocumentMarshaler:
		doc, err := e.encodeMarshaler(t)
		if err != nil {
			return Value{}, err
		}
		return VC.Document(doc), nil
	case ValueMarshaler:
		return t.MarshalBSONValue()
	default:
		return Value{}, e.invalidValue(value, "cannot encode value of type %T", value)
	}
}

func (e *Encoder) encodeSlice(items []interface{}) (*Array, error) {
	arr := NewArray()
	for i, item := range items {
		v, err := e.encodeSliceElement(i, item)
		if err != nil {
			return nil, err
		}
		if err := arr.Append(v); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

// encodeSliceElement keeps array positions stable: nil elements become BSON
// null regardless of the nil strategy, since omitting them would renumber the
// elements that follow.
func (e *Encoder) encodeSliceElement(index int, item interface{}) (Value, error) {
	e.pushPath(strconv.Itoa(index))
	defer e.popPath()

	if isNilValue(item) {
		return VC.Null(), nil
	}
	return e.encodeValue(item)
}

func (e *Encoder) encodeTime(t time.Time) (Value, error) {
	switch e.dateStrategy.kind {
	case dateEncodingMillisecondsSince1970:
		return VC.Int64(t.UnixMilli()), nil
	case dateEncodingSecondsSince1970:
		return VC.Double(float64(t.UnixMilli()) / 1000.0), nil
	case dateEncodingISO8601:
		return VC.String(t.UTC().Format(rfc3339Milli)), nil
	case dateEncodingFormatted:
		return VC.String(t.Format(e.dateStrategy.layout)), nil
	case dateEncodingCustom:
		return e.dateStrategy.fn(t)
	default:
		return VC.Time(t), nil
	}
}

func (e *Encoder) encodeUUID(id UUID) (Value, error) {
	if e.uuidStrategy.kind == uuidCodingDeferred {
		return VC.String(id.String()), nil
	}
	return VC.UUID(id), nil
}

func (e *Encoder) encodeData(data []byte) (Value, error) {
	switch e.dataStrategy.kind {
	case dataEncodingBase64:
		return VC.String(base64.StdEncoding.EncodeToString(data)), nil
	case dataEncodingCustom:
		return e.dataStrategy.fn(data)
	default:
		return VC.Binary(data), nil
	}
}

func (e *Encoder) pushFrame(doc *Document) {
	e.frames = append(e.frames, doc)
}

func (e *Encoder) popFrame() {
	e.frames = e.frames[:len(e.frames)-1]
}

func (e *Encoder) currentFrame() *Document {
	if len(e.frames) == 0 {
		panic(&LogicError{Message: "EncodeField called outside of an encoding pass"})
	}
	return e.frames[len(e.frames)-1]
}

func (e *Encoder) pushPath(key string) {
	e.path = append(e.path, key)
}

func (e *Encoder) popPath() {
	e.path = e.path[:len(e.path)-1]
}

func (e *Encoder) pathSnapshot() []string {
	if len(e.path) == 0 {
		return nil
	}
	return append([]string(nil), e.path...)
}

func (e *Encoder) invalidValue(value interface{}, format string, args ...interface{}) error {
	return &InvalidValueError{
		Path:    e.pathSnapshot(),
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	}
}

// isNilValue reports whether value is nil for the purposes of the nil
// strategy: an untyped nil or a nil pointer. Nil slices and maps encode as
// empty containers instead.
func isNilValue(value interface{}) bool {
	switch t := value.(type) {
	case nil:
		return true
	case *Document:
		return t == nil
	case *Array:
		return t == nil
	case *time.Time:
		return t == nil
	case *UUID:
		return t == nil
	case *ObjectID:
		return t == nil
	case *Decimal128:
		return t == nil
	case *string:
		return t == nil
	case *bool:
		return t == nil
	case *float64:
		return t == nil
	case *int32:
		return t == nil
	case *int64:
		return t == nil
	case *int:
		return t == nil
	default:
		return false
	}
}

// Marshal encodes value with a default Encoder and returns the standalone
// BSON bytes. A nil resulting document yields nil bytes.
func Marshal(value interface{}) ([]byte, error) {
	doc, err := NewEncoder().Encode(value)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return doc.MarshalBSON()
}
