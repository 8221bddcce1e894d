// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type extJSONWriter struct {
	*bytes.Buffer
	canonical bool
}

// MarshalExtJSON converts a document into an extended JSON byte slice. If
// canonical is true the output is canonical extended JSON, which wraps every
// value in its type wrapper. Otherwise the output is relaxed extended JSON,
// which prints in-range numbers and dates in plain JSON forms.
func MarshalExtJSON(d *Document, canonical bool) ([]byte, error) {
	if d == nil {
		return nil, ErrNilDocument
	}

	w := &extJSONWriter{bytes.NewBuffer(make([]byte, 0, 256)), canonical}
	if err := w.writeDocument(d); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// String implements the fmt.Stringer interface. The document is rendered as
// relaxed extended JSON.
func (d *Document) String() string {
	b, err := MarshalExtJSON(d, false)
	if err != nil {
		return ""
	}

	return string(b)
}

// MarshalJSON implements the json.Marshaler interface. The document is
// rendered as relaxed extended JSON.
func (d *Document) MarshalJSON() ([]byte, error) {
	return MarshalExtJSON(d, false)
}

// String implements the fmt.Stringer interface. The array is rendered as
// relaxed extended JSON.
func (a *Array) String() string {
	if a == nil {
		return ""
	}

	w := &extJSONWriter{bytes.NewBuffer(nil), false}
	if err := w.writeArray(a); err != nil {
		return ""
	}

	return w.String()
}

// String returns the canonical extended JSON form of the value. The zero
// Value renders as the empty string.
func (v Value) String() string {
	if v.IsZero() {
		return ""
	}

	w := &extJSONWriter{bytes.NewBuffer(nil), true}
	if err := w.writeValue(v); err != nil {
		return ""
	}

	return w.String()
}

func (w *extJSONWriter) writeDocument(d *Document) error {
	if err := w.WriteByte('{'); err != nil {
		return err
	}

	itr := d.Iterator()
	first := true
	for itr.Next() {
		if !first {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		first = false

		if err := w.writeKey(itr.Key()); err != nil {
			return err
		}
		if err := w.writeValue(itr.Value()); err != nil {
			return err
		}
	}
	if err := itr.Err(); err != nil {
		return err
	}

	return w.WriteByte('}')
}

func (w *extJSONWriter) writeArray(a *Array) error {
	if err := w.WriteByte('['); err != nil {
		return err
	}

	itr := a.Iterator()
	first := true
	for itr.Next() {
		if !first {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		first = false

		if err := w.writeValue(itr.Value()); err != nil {
			return err
		}
	}
	if err := itr.Err(); err != nil {
		return err
	}

	return w.WriteByte(']')
}

func (w *extJSONWriter) writeValue(v Value) error {
	switch v.Type() {
	case TypeDouble:
		return w.writeDoubleValue(v.Double())
	case TypeString:
		return w.writeStringLiteral(v.StringValue())
	case TypeEmbeddedDocument:
		return w.writeDocument(v.Document())
	case TypeArray:
		return w.writeArray(v.Array())
	case TypeBinary:
		b := v.Binary()
		return w.writeBinaryValue(b.Data, b.Subtype)
	case TypeUndefined:
		return w.writeUndefinedValue()
	case TypeObjectID:
		return w.writeObjectIDValue(v.ObjectID())
	case TypeBoolean:
		return w.writeBooleanValue(v.Boolean())
	case TypeDateTime:
		return w.writeDatetimeValue(int64(v.DateTime()))
	case TypeNull:
		return w.writeNullValue()
	case TypeRegex:
		r := v.Regex()
		return w.writeRegexValue(r.Pattern, r.Options)
	case TypeDBPointer:
		p := v.DBPointer()
		return w.writeDBPointerValue(p.DB, p.Pointer)
	case TypeJavaScript:
		return w.writeJavaScriptValue(string(v.JavaScript()))
	case TypeSymbol:
		return w.writeSymbolValue(string(v.Symbol()))
	case TypeCodeWithScope:
		cws := v.CodeWithScope()
		return w.writeCodeWithScopeValue(cws.Code, cws.Scope)
	case TypeInt32:
		return w.writeInt32Value(v.Int32())
	case TypeTimestamp:
		return w.writeTimestampValue(v.Timestamp())
	case TypeInt64:
		return w.writeInt64Value(v.Int64())
	case TypeDecimal128:
		return w.writeDecimalValue(v.Decimal128())
	case TypeMinKey:
		return w.writeMinKeyValue()
	case TypeMaxKey:
		return w.writeMaxKeyValue()
	}

	return fmt.Errorf("unknown element type %s", v.Type())
}

func (w *extJSONWriter) writeKey(s string) error {
	if err := w.writeStringLiteral(s); err != nil {
		return err
	}

	return w.WriteByte(':')
}

// writeStringLiteral writes s as a quoted JSON string, escaping quotes,
// backslashes and control characters. Multi-byte UTF-8 sequences pass
// through unchanged.
func (w *extJSONWriter) writeStringLiteral(s string) error {
	if err := w.WriteByte('"'); err != nil {
		return err
	}

	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}

		w.WriteString(s[start:i])
		switch c {
		case '"':
			w.WriteString(`\"`)
		case '\\':
			w.WriteString(`\\`)
		case '\b':
			w.WriteString(`\b`)
		case '\f':
			w.WriteString(`\f`)
		case '\n':
			w.WriteString(`\n`)
		case '\r':
			w.WriteString(`\r`)
		case '\t':
			w.WriteString(`\t`)
		default:
			fmt.Fprintf(w, `\u%04x`, c)
		}
		start = i + 1
	}
	w.WriteString(s[start:])

	return w.WriteByte('"')
}

func (w *extJSONWriter) writeDoubleValue(f float64) error {
	s := formatDouble(f)

	// Relaxed output still wraps non-finite doubles: bare Infinity and NaN
	// are not valid JSON.
	if w.canonical || math.IsInf(f, 0) || math.IsNaN(f) {
		_, err := w.WriteString(`{"$numberDouble":"` + s + `"}`)
		return err
	}

	_, err := w.WriteString(s)
	return err
}

// formatDouble renders f the way extended JSON expects: integral values keep
// one decimal place so the type survives a round trip.
func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}

	s := strconv.FormatFloat(f, 'G', -1, 64)
	if !strings.ContainsAny(s, ".E") {
		s += ".0"
	}

	return s
}

func (w *extJSONWriter) writeBinaryValue(data []byte, subtype byte) error {
	w.WriteString(`{"$binary":{"base64":"`)
	w.WriteString(base64.StdEncoding.EncodeToString(data))
	w.WriteString(`","subType":"`)
	w.WriteString(hex.EncodeToString([]byte{subtype}))

	_, err := w.WriteString(`"}}`)
	return err
}

func (w *extJSONWriter) writeUndefinedValue() error {
	_, err := w.WriteString(`{"$undefined":true}`)
	return err
}

func (w *extJSONWriter) writeObjectIDValue(oid ObjectID) error {
	_, err := w.WriteString(`{"$oid":"` + oid.Hex() + `"}`)
	return err
}

func (w *extJSONWriter) writeBooleanValue(b bool) error {
	_, err := w.WriteString(strconv.FormatBool(b))
	return err
}

func (w *extJSONWriter) writeDatetimeValue(ms int64) error {
	if !w.canonical {
		t := time.Unix(ms/1e3, ms%1e3*1e6).UTC()
		if t.Year() >= 1970 && t.Year() <= 9999 {
			w.WriteString(`{"$date":"`)
			w.WriteString(t.Format(rfc3339Milli))

			_, err := w.WriteString(`"}`)
			return err
		}
	}

	w.WriteString(`{"$date":{"$numberLong":"`)
	w.WriteString(strconv.FormatInt(ms, 10))

	_, err := w.WriteString(`"}}`)
	return err
}

func (w *extJSONWriter) writeNullValue() error {
	_, err := w.WriteString("null")
	return err
}

func (w *extJSONWriter) writeRegexValue(pattern, options string) error {
	w.WriteString(`{"$regularExpression":{"pattern":`)
	if err := w.writeStringLiteral(pattern); err != nil {
		return err
	}
	w.WriteString(`,"options":`)
	if err := w.writeStringLiteral(options); err != nil {
		return err
	}

	_, err := w.WriteString(`}}`)
	return err
}

func (w *extJSONWriter) writeDBPointerValue(ns string, oid ObjectID) error {
	w.WriteString(`{"$dbPointer":{"$ref":`)
	if err := w.writeStringLiteral(ns); err != nil {
		return err
	}
	w.WriteString(`,"$id":{"$oid":"` + oid.Hex() + `"}`)

	_, err := w.WriteString(`}}`)
	return err
}

func (w *extJSONWriter) writeJavaScriptValue(code string) error {
	w.WriteString(`{"$code":`)
	if err := w.writeStringLiteral(code); err != nil {
		return err
	}

	return w.WriteByte('}')
}

func (w *extJSONWriter) writeSymbolValue(symbol string) error {
	w.WriteString(`{"$symbol":`)
	if err := w.writeStringLiteral(symbol); err != nil {
		return err
	}

	return w.WriteByte('}')
}

func (w *extJSONWriter) writeCodeWithScopeValue(code string, scope *Document) error {
	w.WriteString(`{"$code":`)
	if err := w.writeStringLiteral(code); err != nil {
		return err
	}
	w.WriteString(`,"$scope":`)
	if err := w.writeDocument(scope); err != nil {
		return err
	}

	return w.WriteByte('}')
}

func (w *extJSONWriter) writeInt32Value(i int32) error {
	s := strconv.FormatInt(int64(i), 10)

	if w.canonical {
		_, err := w.WriteString(`{"$numberInt":"` + s + `"}`)
		return err
	}

	_, err := w.WriteString(s)
	return err
}

func (w *extJSONWriter) writeTimestampValue(ts Timestamp) error {
	w.WriteString(`{"$timestamp":{"t":`)
	w.WriteString(strconv.FormatUint(uint64(ts.T), 10))
	w.WriteString(`,"i":`)
	w.WriteString(strconv.FormatUint(uint64(ts.I), 10))

	_, err := w.WriteString(`}}`)
	return err
}

func (w *extJSONWriter) writeInt64Value(i int64) error {
	s := strconv.FormatInt(i, 10)

	if w.canonical {
		_, err := w.WriteString(`{"$numberLong":"` + s + `"}`)
		return err
	}

	_, err := w.WriteString(s)
	return err
}

func (w *extJSONWriter) writeDecimalValue(d Decimal128) error {
	_, err := w.WriteString(`{"$numberDecimal":"` + d.String() + `"}`)
	return err
}

func (w *extJSONWriter) writeMinKeyValue() error {
	_, err := w.WriteString(`{"$minKey":1}`)
	return err
}

func (w *extJSONWriter) writeMaxKeyValue() error {
	_, err := w.WriteString(`{"$maxKey":1}`)
	return err
}
