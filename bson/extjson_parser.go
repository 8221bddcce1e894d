// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

// rfc3339Milli is the datetime layout of relaxed extended JSON. Trailing
// zeros in the fractional seconds are trimmed on output and optional on
// input.
const rfc3339Milli = "2006-01-02T15:04:05.999Z07:00"

type wrapperType byte

const (
	none wrapperType = iota
	objectID
	symbol
	int32Type
	int64Type
	double
	decimalType
	binaryData
	code
	timestamp
	regex
	dbPointer
	dateTime
	dbRef
	minKey
	maxKey
	undefined
)

func wrapperKeyType(key []byte) wrapperType {
	switch string(key) {
	case "$numberInt":
		return int32Type
	case "$numberLong":
		return int64Type
	case "$oid":
		return objectID
	case "$symbol":
		return symbol
	case "$numberDouble":
		return double
	case "$numberDecimal":
		return decimalType
	case "$binary":
		return binaryData
	case "$code", "$scope":
		return code
	case "$timestamp":
		return timestamp
	case "$regularExpression":
		return regex
	case "$dbPointer":
		return dbPointer
	case "$date":
		return dateTime
	case "$ref", "$id", "$db":
		return dbRef
	case "$minKey":
		return minKey
	case "$maxKey":
		return maxKey
	case "$undefined":
		return undefined
	}

	return none
}

// ParseExtJSON parses a MongoDB extended JSON object into a *Document. Both
// the canonical and relaxed forms are accepted, including mixed input. The
// root object must be a plain document, not a type wrapper; wrappers are
// recognized on nested object values.
func ParseExtJSON(json []byte) (*Document, error) {
	data := bytes.TrimSpace(json)
	if len(data) < 2 || data[0] != '{' || data[len(data)-1] != '}' {
		return nil, &InvalidArgumentError{Message: "extended JSON document must be a JSON object"}
	}

	wt, err := firstKeyWrapperType(data)
	if err != nil {
		return nil, invalidExtJSON(err)
	}
	if wt != none && wt != dbRef {
		return nil, &InvalidArgumentError{Message: "extended JSON document cannot be a type wrapper"}
	}

	d, err := parseDocument(data)
	if err != nil {
		return nil, invalidExtJSON(err)
	}

	return d, nil
}

// ParseExtJSONArray parses a MongoDB extended JSON array into an *Array.
func ParseExtJSONArray(json []byte) (*Array, error) {
	data := bytes.TrimSpace(json)
	if len(data) < 2 || data[0] != '[' || data[len(data)-1] != ']' {
		return nil, &InvalidArgumentError{Message: "extended JSON array must be a JSON array"}
	}

	a, err := parseArray(data)
	if err != nil {
		return nil, invalidExtJSON(err)
	}

	return a, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. The input must be
// a valid extended JSON object.
func (d *Document) UnmarshalJSON(b []byte) error {
	if d == nil {
		return ErrNilDocument
	}

	parsed, err := ParseExtJSON(b)
	if err != nil {
		return err
	}

	d.setStorage(parsed.raw())
	return nil
}

func invalidExtJSON(err error) error {
	if _, ok := err.(*InvalidArgumentError); ok {
		return err
	}

	return &InvalidArgumentError{Message: "invalid extended JSON: " + err.Error()}
}

func parseDocument(data []byte) (*Document, error) {
	d := NewDocument()

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		k, err := jsonparser.ParseString(key)
		if err != nil {
			return fmt.Errorf("invalid escaping in document key: %s", string(key))
		}

		v, err := parseValue(value, dataType)
		if err != nil {
			return err
		}

		return d.Append(k, v)
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

func parseArray(data []byte) (*Array, error) {
	a := NewArray()

	var parseErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if parseErr != nil {
			return
		}
		if err != nil {
			parseErr = err
			return
		}

		v, err := parseValue(value, dataType)
		if err != nil {
			parseErr = err
			return
		}

		parseErr = a.Append(v)
	})
	if err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}

	return a, nil
}

func parseValue(data []byte, dataType jsonparser.ValueType) (Value, error) {
	switch dataType {
	case jsonparser.String:
		str, err := jsonparser.ParseString(data)
		if err != nil {
			return Value{}, fmt.Errorf("invalid escaping in string value: %s", string(data))
		}

		return VC.String(str), nil
	case jsonparser.Number:
		return parseNumber(data)
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return Value{}, fmt.Errorf("invalid JSON boolean value: %s", string(data))
		}

		return VC.Boolean(b), nil
	case jsonparser.Null:
		return VC.Null(), nil
	case jsonparser.Object:
		return parseObjectValue(data)
	case jsonparser.Array:
		a, err := parseArray(data)
		if err != nil {
			return Value{}, err
		}

		return VC.Array(a), nil
	}

	return Value{}, fmt.Errorf("invalid JSON value type: %s", dataType.String())
}

// parseNumber converts an unwrapped JSON number into the narrowest BSON
// number type that holds it: int32, then int64, then double. Numbers with a
// fraction or an exponent are always doubles.
func parseNumber(data []byte) (Value, error) {
	if strings.ContainsAny(string(data), ".eE") {
		f, err := jsonparser.ParseFloat(data)
		if err != nil {
			return Value{}, fmt.Errorf("invalid JSON number value: %s", string(data))
		}

		return VC.Double(f), nil
	}

	i, err := jsonparser.ParseInt(data)
	if err != nil {
		// Integral but too large for int64.
		f, ferr := jsonparser.ParseFloat(data)
		if ferr != nil {
			return Value{}, fmt.Errorf("invalid JSON number value: %s", string(data))
		}

		return VC.Double(f), nil
	}

	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return VC.Int32(int32(i)), nil
	}

	return VC.Int64(i), nil
}

// parseExtJSONValue parses a single extended JSON value of any JSON kind.
// This is the strict entry used by the decoder's JSON text path.
func parseExtJSONValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Value{}, fmt.Errorf("empty JSON input")
	}

	switch data[0] {
	case '{':
		return parseObjectValue(data)
	case '[':
		a, err := parseArray(data)
		if err != nil {
			return Value{}, err
		}

		return VC.Array(a), nil
	case '"':
		if len(data) < 2 || data[len(data)-1] != '"' {
			return Value{}, fmt.Errorf("invalid JSON string value: %s", string(data))
		}

		return parseValue(data[1:len(data)-1], jsonparser.String)
	case 't', 'f':
		return parseValue(data, jsonparser.Boolean)
	case 'n':
		if string(data) != "null" {
			return Value{}, fmt.Errorf("invalid JSON value: %s", string(data))
		}

		return VC.Null(), nil
	}

	return parseValue(data, jsonparser.Number)
}

// firstKeyWrapperType reports the wrapper type named by the first key of a
// JSON object, or none.
func firstKeyWrapperType(data []byte) (wrapperType, error) {
	wt := none
	first := true

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		if first {
			wt = wrapperKeyType(key)
			first = false
		}
		return nil
	})

	return wt, err
}

// parseObjectValue decides whether a JSON object is an extended JSON wrapper
// or a plain embedded document. An object is a wrapper exactly when its first
// key is a wrapper key; a DBRef is a plain document.
func parseObjectValue(data []byte) (Value, error) {
	wt, err := firstKeyWrapperType(data)
	if err != nil {
		return Value{}, err
	}

	if wt == none || wt == dbRef {
		d, err := parseDocument(data)
		if err != nil {
			return Value{}, err
		}

		return VC.Document(d), nil
	}

	return parseWrapperValue(wt, data)
}

func parseWrapperValue(wt wrapperType, data []byte) (Value, error) {
	switch wt {
	case code:
		return parseCodeValue(data)
	case objectID:
		inner, dt, err := wrapperValueBytes(data, "$oid")
		if err != nil {
			return Value{}, err
		}

		oid, err := parseObjectID(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.ObjectID(oid), nil
	case symbol:
		inner, dt, err := wrapperValueBytes(data, "$symbol")
		if err != nil {
			return Value{}, err
		}

		s, err := parseSymbol(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.Symbol(s), nil
	case int32Type:
		inner, dt, err := wrapperValueBytes(data, "$numberInt")
		if err != nil {
			return Value{}, err
		}

		i, err := parseInt32(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.Int32(i), nil
	case int64Type:
		inner, dt, err := wrapperValueBytes(data, "$numberLong")
		if err != nil {
			return Value{}, err
		}

		i, err := parseInt64(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.Int64(i), nil
	case double:
		inner, dt, err := wrapperValueBytes(data, "$numberDouble")
		if err != nil {
			return Value{}, err
		}

		f, err := parseDouble(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.Double(f), nil
	case decimalType:
		inner, dt, err := wrapperValueBytes(data, "$numberDecimal")
		if err != nil {
			return Value{}, err
		}

		dec, err := parseDecimal(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.Decimal128(dec), nil
	case binaryData:
		inner, dt, err := wrapperValueBytes(data, "$binary")
		if err != nil {
			return Value{}, err
		}

		b, subtype, err := parseBinary(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.BinaryWithSubtype(b, subtype), nil
	case timestamp:
		inner, dt, err := wrapperValueBytes(data, "$timestamp")
		if err != nil {
			return Value{}, err
		}

		t, i, err := parseTimestamp(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.Timestamp(t, i), nil
	case regex:
		inner, dt, err := wrapperValueBytes(data, "$regularExpression")
		if err != nil {
			return Value{}, err
		}

		pattern, options, err := parseRegex(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.Regex(pattern, options), nil
	case dbPointer:
		inner, dt, err := wrapperValueBytes(data, "$dbPointer")
		if err != nil {
			return Value{}, err
		}

		ns, oid, err := parseDBPointer(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.DBPointer(ns, oid), nil
	case dateTime:
		inner, dt, err := wrapperValueBytes(data, "$date")
		if err != nil {
			return Value{}, err
		}

		ms, err := parseDatetime(inner, dt)
		if err != nil {
			return Value{}, err
		}

		return VC.DateTime(ms), nil
	case minKey:
		inner, dt, err := wrapperValueBytes(data, "$minKey")
		if err != nil {
			return Value{}, err
		}

		if err := parseMinKey(inner, dt); err != nil {
			return Value{}, err
		}

		return VC.MinKey(), nil
	case maxKey:
		inner, dt, err := wrapperValueBytes(data, "$maxKey")
		if err != nil {
			return Value{}, err
		}

		if err := parseMaxKey(inner, dt); err != nil {
			return Value{}, err
		}

		return VC.MaxKey(), nil
	case undefined:
		inner, dt, err := wrapperValueBytes(data, "$undefined")
		if err != nil {
			return Value{}, err
		}

		if err := parseUndefined(inner, dt); err != nil {
			return Value{}, err
		}

		return VC.Undefined(), nil
	}

	return Value{}, fmt.Errorf("unrecognized extended JSON wrapper in: %s", string(data))
}

// wrapperValueBytes extracts the value of a single-field wrapper object,
// rejecting duplicate, missing, and extra keys.
func wrapperValueBytes(data []byte, name string) ([]byte, jsonparser.ValueType, error) {
	var inner []byte
	var innerType jsonparser.ValueType
	found := false

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		if string(key) != name {
			return fmt.Errorf("invalid key in %s object: %s", name, string(key))
		}
		if found {
			return fmt.Errorf("duplicate %s key in: %s", name, string(data))
		}

		inner = value
		innerType = dataType
		found = true
		return nil
	})
	if err != nil {
		return nil, jsonparser.NotExist, err
	}

	if !found {
		return nil, jsonparser.NotExist, fmt.Errorf("missing %s field in: %s", name, string(data))
	}

	return inner, innerType, nil
}

func parseCodeValue(data []byte) (Value, error) {
	var codeBytes, scopeBytes []byte
	var codeType, scopeType jsonparser.ValueType
	haveCode := false
	haveScope := false

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		switch string(key) {
		case "$code":
			if haveCode {
				return fmt.Errorf("duplicate $code key in: %s", string(data))
			}

			codeBytes, codeType, haveCode = value, dataType, true
		case "$scope":
			if haveScope {
				return fmt.Errorf("duplicate $scope key in: %s", string(data))
			}

			scopeBytes, scopeType, haveScope = value, dataType, true
		default:
			return fmt.Errorf("invalid key in $code object: %s", string(key))
		}

		return nil
	})
	if err != nil {
		return Value{}, err
	}

	if !haveCode {
		return Value{}, fmt.Errorf("missing $code field in: %s", string(data))
	}

	c, err := parseCode(codeBytes, codeType)
	if err != nil {
		return Value{}, err
	}

	if !haveScope {
		return VC.JavaScript(c), nil
	}

	scope, err := parseScope(scopeBytes, scopeType)
	if err != nil {
		return Value{}, err
	}

	return VC.CodeWithScope(c, scope), nil
}

func parseObjectID(data []byte, dataType jsonparser.ValueType) (ObjectID, error) {
	if dataType != jsonparser.String {
		return ObjectID{}, fmt.Errorf("$oid value should be string, but instead is %s", dataType.String())
	}

	oid, err := ObjectIDFromHex(string(data))
	if err != nil {
		return ObjectID{}, fmt.Errorf("invalid $oid value string: %s", string(data))
	}

	return oid, nil
}

func parseSymbol(data []byte, dataType jsonparser.ValueType) (string, error) {
	if dataType != jsonparser.String {
		return "", fmt.Errorf("$symbol value should be string, but instead is %s", dataType.String())
	}

	str, err := jsonparser.ParseString(data)
	if err != nil {
		return "", fmt.Errorf("invalid escaping in symbol string: %s", string(data))
	}

	return str, nil
}

func parseInt32(data []byte, dataType jsonparser.ValueType) (int32, error) {
	if dataType != jsonparser.String {
		return 0, fmt.Errorf("$numberInt value should be string, but instead is %s", dataType.String())
	}

	i, err := jsonparser.ParseInt(data)
	if err != nil {
		return 0, fmt.Errorf("invalid $numberInt number value: %s", string(data))
	}

	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, fmt.Errorf("$numberInt value should be int32 but instead is int64: %d", i)
	}

	return int32(i), nil
}

func parseInt64(data []byte, dataType jsonparser.ValueType) (int64, error) {
	if dataType != jsonparser.String {
		return 0, fmt.Errorf("$numberLong value should be string, but instead is %s", dataType.String())
	}

	i, err := jsonparser.ParseInt(data)
	if err != nil {
		return 0, fmt.Errorf("invalid $numberLong number value: %s", string(data))
	}

	return i, nil
}

func parseDouble(data []byte, dataType jsonparser.ValueType) (float64, error) {
	if dataType != jsonparser.String {
		return 0, fmt.Errorf("$numberDouble value should be string, but instead is %s", dataType.String())
	}

	switch string(data) {
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}

	f, err := jsonparser.ParseFloat(data)
	if err != nil {
		return 0, fmt.Errorf("invalid $numberDouble number value: %s", string(data))
	}

	return f, nil
}

func parseDecimal(data []byte, dataType jsonparser.ValueType) (Decimal128, error) {
	if dataType != jsonparser.String {
		return Decimal128{}, fmt.Errorf("$numberDecimal value should be string, but instead is %s", dataType.String())
	}

	d, err := ParseDecimal128(string(data))
	if err != nil {
		return Decimal128{}, fmt.Errorf("invalid $numberDecimal string: %s", string(data))
	}

	return d, nil
}

func parseBinary(data []byte, dataType jsonparser.ValueType) ([]byte, byte, error) {
	if dataType != jsonparser.Object {
		return nil, 0, fmt.Errorf("$binary value should be object, but instead is %s", dataType.String())
	}

	var b []byte
	var subType *int64

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		switch string(key) {
		case "base64":
			if b != nil {
				return fmt.Errorf("duplicate base64 key in $binary: %s", string(data))
			}

			if dataType != jsonparser.String {
				return fmt.Errorf("$binary base64 value should be string, but instead is %s", dataType.String())
			}

			base64Bytes, err := base64.StdEncoding.DecodeString(string(value))
			if err != nil {
				return fmt.Errorf("invalid $binary base64 string: %s", string(value))
			}

			b = base64Bytes
		case "subType":
			if subType != nil {
				return fmt.Errorf("duplicate subType key in $binary: %s", string(data))
			}

			if dataType != jsonparser.String {
				return fmt.Errorf("$binary subType value should be string, but instead is %s", dataType.String())
			}

			i, err := strconv.ParseInt(string(value), 16, 64)
			if err != nil || i < 0 || i > math.MaxUint8 {
				return fmt.Errorf("invalid $binary subType string: %s", string(value))
			}

			subType = &i
		default:
			return fmt.Errorf("invalid key in $binary object: %s", string(key))
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	if b == nil {
		return nil, 0, fmt.Errorf("missing base64 field in $binary object: %s", string(data))
	}

	if subType == nil {
		return nil, 0, fmt.Errorf("missing subType field in $binary object: %s", string(data))
	}

	return b, byte(*subType), nil
}

func parseCode(data []byte, dataType jsonparser.ValueType) (string, error) {
	if dataType != jsonparser.String {
		return "", fmt.Errorf("$code value should be string, but instead is %s", dataType.String())
	}

	str, err := jsonparser.ParseString(data)
	if err != nil {
		return "", fmt.Errorf("invalid escaping in $code string: %s", string(data))
	}

	return str, nil
}

func parseScope(data []byte, dataType jsonparser.ValueType) (*Document, error) {
	if dataType != jsonparser.Object {
		return nil, fmt.Errorf("$scope value should be object, but instead is %s", dataType.String())
	}

	return parseDocument(data)
}

func parseTimestamp(data []byte, dataType jsonparser.ValueType) (uint32, uint32, error) {
	if dataType != jsonparser.Object {
		return 0, 0, fmt.Errorf("$timestamp value should be object, but instead is %s", dataType.String())
	}

	var t *uint32
	var inc *uint32

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		switch string(key) {
		case "t":
			if t != nil {
				return fmt.Errorf("duplicate t key in $timestamp: %s", string(data))
			}

			if dataType != jsonparser.Number {
				return fmt.Errorf("$timestamp t value should be number, but instead is %s", dataType.String())
			}

			i, err := jsonparser.ParseInt(value)
			if err != nil {
				return fmt.Errorf("invalid $timestamp t number: %s", string(value))
			}

			if i < 0 || i > math.MaxUint32 {
				return fmt.Errorf("$timestamp t number should be uint32: %s", string(value))
			}

			u := uint32(i)
			t = &u
		case "i":
			if inc != nil {
				return fmt.Errorf("duplicate i key in $timestamp: %s", string(data))
			}

			if dataType != jsonparser.Number {
				return fmt.Errorf("$timestamp i value should be number, but instead is %s", dataType.String())
			}

			i, err := jsonparser.ParseInt(value)
			if err != nil {
				return fmt.Errorf("invalid $timestamp i number: %s", string(value))
			}

			if i < 0 || i > math.MaxUint32 {
				return fmt.Errorf("$timestamp i number should be uint32: %s", string(value))
			}

			u := uint32(i)
			inc = &u
		default:
			return fmt.Errorf("invalid key in $timestamp object: %s", string(key))
		}

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	if t == nil {
		return 0, 0, fmt.Errorf("missing t field in $timestamp object: %s", string(data))
	}

	if inc == nil {
		return 0, 0, fmt.Errorf("missing i field in $timestamp object: %s", string(data))
	}

	return *t, *inc, nil
}

func parseRegex(data []byte, dataType jsonparser.ValueType) (string, string, error) {
	if dataType != jsonparser.Object {
		return "", "", fmt.Errorf("$regularExpression value should be object, but instead is %s", dataType.String())
	}

	var pat *string
	var opt *string

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		switch string(key) {
		case "pattern":
			if pat != nil {
				return fmt.Errorf("duplicate pattern key in $regularExpression: %s", string(data))
			}

			if dataType != jsonparser.String {
				return fmt.Errorf("$regularExpression pattern value should be string, but instead is %s", dataType.String())
			}

			str, err := jsonparser.ParseString(value)
			if err != nil {
				return fmt.Errorf("invalid escaping in $regularExpression pattern: %s", string(value))
			}

			pat = &str
		case "options":
			if opt != nil {
				return fmt.Errorf("duplicate options key in $regularExpression: %s", string(data))
			}

			if dataType != jsonparser.String {
				return fmt.Errorf("$regularExpression options value should be string, but instead is %s", dataType.String())
			}

			str, err := jsonparser.ParseString(value)
			if err != nil {
				return fmt.Errorf("invalid escaping in $regularExpression options: %s", string(value))
			}

			opt = &str
		default:
			return fmt.Errorf("invalid key in $regularExpression object: %s", string(key))
		}

		return nil
	})
	if err != nil {
		return "", "", err
	}

	if pat == nil {
		return "", "", fmt.Errorf("missing pattern field in $regularExpression object: %s", string(data))
	}

	if opt == nil {
		return "", "", fmt.Errorf("missing options field in $regularExpression object: %s", string(data))
	}

	return *pat, *opt, nil
}

func parseDBPointer(data []byte, dataType jsonparser.ValueType) (string, ObjectID, error) {
	var oid ObjectID
	var ns *string
	oidFound := false

	if dataType != jsonparser.Object {
		return "", oid, fmt.Errorf("$dbPointer value should be object, but instead is %s", dataType.String())
	}

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		switch string(key) {
		case "$ref":
			if ns != nil {
				return fmt.Errorf("duplicate $ref key in $dbPointer: %s", string(data))
			}

			if dataType != jsonparser.String {
				return fmt.Errorf("$dbPointer $ref value should be string, but instead is %s", dataType.String())
			}

			str, err := jsonparser.ParseString(value)
			if err != nil {
				return fmt.Errorf("invalid escaping in $dbPointer $ref: %s", string(value))
			}

			ns = &str
		case "$id":
			if oidFound {
				return fmt.Errorf("duplicate $id key in $dbPointer: %s", string(data))
			}

			if dataType != jsonparser.Object {
				return fmt.Errorf("$dbPointer $id value should be object, but instead is %s", dataType.String())
			}

			id, err := parseDBPointerObjectID(value)
			if err != nil {
				return err
			}

			oid = id
			oidFound = true
		default:
			return fmt.Errorf("invalid key in $dbPointer object: %s", string(key))
		}

		return nil
	})
	if err != nil {
		return "", oid, err
	}

	if ns == nil {
		return "", oid, fmt.Errorf("missing $ref field in $dbPointer object: %s", string(data))
	}

	if !oidFound {
		return "", oid, fmt.Errorf("missing $id field in $dbPointer object: %s", string(data))
	}

	return *ns, oid, nil
}

func parseDBPointerObjectID(data []byte) (ObjectID, error) {
	var oid ObjectID
	oidFound := false

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		switch string(key) {
		case "$oid":
			if oidFound {
				return fmt.Errorf("duplicate $oid key in $dbPointer $id: %s", string(data))
			}

			var err error
			oid, err = parseObjectID(value, dataType)
			if err != nil {
				return fmt.Errorf("invalid $dbPointer $id $oid value: %s", err)
			}

			oidFound = true
		default:
			return fmt.Errorf("invalid key in $dbPointer $id object: %s", string(key))
		}

		return nil
	})
	if err != nil {
		return oid, err
	}

	if !oidFound {
		return oid, fmt.Errorf("missing $oid field in $dbPointer $id object: %s", string(data))
	}

	return oid, nil
}

func parseDatetime(data []byte, dataType jsonparser.ValueType) (int64, error) {
	switch dataType {
	case jsonparser.String:
		return parseDatetimeString(data)
	case jsonparser.Object:
		return parseDatetimeObject(data)
	}

	return 0, fmt.Errorf("$date value should be string or object, but instead is %s", dataType.String())
}

func parseDatetimeString(data []byte) (int64, error) {
	t, err := time.Parse(rfc3339Milli, string(data))
	if err != nil {
		return 0, fmt.Errorf("invalid $date value string: %s", string(data))
	}

	return t.Unix()*1000 + int64(t.Nanosecond())/1e6, nil
}

func parseDatetimeObject(data []byte) (int64, error) {
	var d *int64

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		switch string(key) {
		case "$numberLong":
			if d != nil {
				return fmt.Errorf("duplicate $numberLong key in $date: %s", string(data))
			}

			i, err := parseInt64(value, dataType)
			if err != nil {
				return err
			}

			d = &i
		default:
			return fmt.Errorf("invalid key in $date object: %s", string(key))
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if d == nil {
		return 0, fmt.Errorf("missing $numberLong field in $date object: %s", string(data))
	}

	return *d, nil
}

func parseMinKey(data []byte, dataType jsonparser.ValueType) error {
	if dataType != jsonparser.Number {
		return fmt.Errorf("$minKey value should be number, but instead is %s", dataType.String())
	}

	i, err := jsonparser.ParseInt(data)
	if err != nil {
		return fmt.Errorf("invalid $minKey number value: %s", string(data))
	}

	if i != 1 {
		return fmt.Errorf("$minKey value must be 1, but instead is %d", i)
	}

	return nil
}

func parseMaxKey(data []byte, dataType jsonparser.ValueType) error {
	if dataType != jsonparser.Number {
		return fmt.Errorf("$maxKey value should be number, but instead is %s", dataType.String())
	}

	i, err := jsonparser.ParseInt(data)
	if err != nil {
		return fmt.Errorf("invalid $maxKey number value: %s", string(data))
	}

	if i != 1 {
		return fmt.Errorf("$maxKey value must be 1, but instead is %d", i)
	}

	return nil
}

func parseUndefined(data []byte, dataType jsonparser.ValueType) error {
	if dataType != jsonparser.Boolean {
		return fmt.Errorf("$undefined value should be boolean, but instead is %s", dataType.String())
	}

	b, err := jsonparser.ParseBoolean(data)
	if err != nil {
		return fmt.Errorf("invalid $undefined boolean value: %s", string(data))
	}

	if !b {
		return fmt.Errorf("$undefined value should be true, but instead is %v", b)
	}

	return nil
}
