// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"

	"github.com/buger/jsonparser"
)

// MarshalJSON implements the json.Marshaler interface. The value is rendered
// as canonical extended JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsZero() {
		return nil, &LogicError{Message: "cannot marshal an invalid value"}
	}

	w := &extJSONWriter{bytes.NewBuffer(nil), true}
	if err := w.writeValue(v); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. JSON does not
// identify BSON types unambiguously, so candidate types are tried in a fixed
// order and the first one that accepts the input wins: null, string, binary,
// objectID, boolean, regex, code with scope, int32, int64, double,
// decimal128, MinKey, MaxKey, array, document. Failed candidates are
// skipped, so a malformed wrapper object decodes as a plain document rather
// than failing. Datetimes are deliberately not tried: a $date wrapper
// decodes as a document here and callers that need datetimes should decode
// through a document instead.
func (v *Value) UnmarshalJSON(b []byte) error {
	data := bytes.TrimSpace(b)
	if len(data) == 0 {
		return &InvalidArgumentError{Message: "cannot decode a value from empty JSON input"}
	}

	switch data[0] {
	case 'n':
		if string(data) == "null" {
			*v = VC.Null()
			return nil
		}
	case '"':
		if len(data) >= 2 && data[len(data)-1] == '"' {
			if str, err := jsonparser.ParseString(data[1 : len(data)-1]); err == nil {
				*v = VC.String(str)
				return nil
			}
		}
	case 't', 'f':
		if bv, err := jsonparser.ParseBoolean(data); err == nil {
			*v = VC.Boolean(bv)
			return nil
		}
	case '{':
		if val, err := valueFromAmbiguousObject(data); err == nil {
			*v = val
			return nil
		}
	case '[':
		if a, err := parseArray(data); err == nil {
			*v = VC.Array(a)
			return nil
		}
	default:
		if val, err := parseNumber(data); err == nil {
			*v = val
			return nil
		}
	}

	return &InvalidArgumentError{Message: "no BSON type can represent the JSON value: " + string(data)}
}

// ambiguousObjectWrappers is the order in which wrapper types are tried for
// a JSON object before it falls back to a plain document.
var ambiguousObjectWrappers = []wrapperType{
	binaryData,
	objectID,
	regex,
	code,
	int32Type,
	int64Type,
	double,
	decimalType,
	minKey,
	maxKey,
}

func valueFromAmbiguousObject(data []byte) (Value, error) {
	for _, wt := range ambiguousObjectWrappers {
		if val, err := parseWrapperValue(wt, data); err == nil {
			return val, nil
		}
	}

	d, err := parseDocument(data)
	if err != nil {
		return Value{}, err
	}

	return VC.Document(d), nil
}
