// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValueMarshalJSON(t *testing.T) {
	t.Run("canonical output", func(t *testing.T) {
		testCases := []struct {
			name string
			v    Value
			want string
		}{
			{"string", VC.String("x"), `"x"`},
			{"int32", VC.Int32(5), `{"$numberInt":"5"}`},
			{"int64", VC.Int64(5), `{"$numberLong":"5"}`},
			{"double", VC.Double(2.5), `{"$numberDouble":"2.5"}`},
			{"boolean", VC.Boolean(true), `true`},
			{"null", VC.Null(), `null`},
			{"document", VC.Document(NewDocument(EC.Int64("a", 1))), `{"a":{"$numberLong":"1"}}`},
			{"array", VC.Array(NewArray(VC.Int32(1), VC.String("a"))), `[{"$numberInt":"1"},"a"]`},
			{"minKey", VC.MinKey(), `{"$minKey":1}`},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := json.Marshal(tc.v)
				noerr(t, err)
				if string(got) != tc.want {
					t.Errorf("Unexpected result. got %s; want %s", string(got), tc.want)
				}
			})
		}
	})

	t.Run("zero value", func(t *testing.T) {
		var v Value
		_, err := v.MarshalJSON()
		want := &LogicError{Message: "cannot marshal an invalid value"}
		if !compareErrors(err, want) {
			t.Errorf("Unexpected error. got %v; want %v", err, want)
		}
	})
}

func TestValueUnmarshalJSON(t *testing.T) {
	oid := ObjectID{0x56, 0xe1, 0xfc, 0x72, 0xe0, 0xc9, 0x17, 0xe9, 0xc4, 0x71, 0x41, 0x61}

	t.Run("success", func(t *testing.T) {
		testCases := []struct {
			name string
			json string
			want Value
		}{
			{"null", `null`, VC.Null()},
			{"true", `true`, VC.Boolean(true)},
			{"false", `false`, VC.Boolean(false)},
			{"string", `"hi"`, VC.String("hi")},
			{"string with escape", `"h\ni"`, VC.String("h\ni")},
			{"small integer", `5`, VC.Int32(5)},
			{"large integer", `2147483648`, VC.Int64(math.MaxInt32 + 1)},
			{"fraction", `1.5`, VC.Double(1.5)},
			{"negative zero", `-0.0`, VC.Double(math.Copysign(0, -1))},
			{"leading whitespace", ` 5 `, VC.Int32(5)},
			{"array", `[1,2]`, VC.Array(NewArray(VC.Int32(1), VC.Int32(2)))},
			{"objectID wrapper", `{"$oid":"56e1fc72e0c917e9c4714161"}`, VC.ObjectID(oid)},
			{"binary wrapper", `{"$binary":{"base64":"AQID","subType":"00"}}`, VC.Binary([]byte{1, 2, 3})},
			{"regex wrapper", `{"$regularExpression":{"pattern":"a","options":"i"}}`, VC.Regex("a", "i")},
			{"code wrapper", `{"$code":"x"}`, VC.JavaScript("x")},
			{"code with scope wrapper", `{"$code":"x","$scope":{"y":1}}`, VC.CodeWithScope("x", NewDocument(EC.Int32("y", 1)))},
			{"int32 wrapper", `{"$numberInt":"5"}`, VC.Int32(5)},
			{"int64 wrapper", `{"$numberLong":"5"}`, VC.Int64(5)},
			{"double wrapper", `{"$numberDouble":"2.5"}`, VC.Double(2.5)},
			{"minKey wrapper", `{"$minKey":1}`, VC.MinKey()},
			{"maxKey wrapper", `{"$maxKey":1}`, VC.MaxKey()},
			{"plain document", `{"a":1}`, VC.Document(NewDocument(EC.Int32("a", 1)))},
			{"empty document", `{}`, VC.Document(NewDocument())},
			{"unknown wrapper key stays a document", `{"$foo":1}`, VC.Document(NewDocument(EC.Int32("$foo", 1)))},
			{"malformed wrapper falls back to document", `{"$oid":"zzz"}`, VC.Document(NewDocument(EC.String("$oid", "zzz")))},
			{"symbol wrapper is not a candidate", `{"$symbol":"s"}`, VC.Document(NewDocument(EC.String("$symbol", "s")))},
			{"date wrapper is not a candidate", `{"$date":{"$numberLong":"5"}}`, VC.Document(NewDocument(EC.Int64("$date", 5)))},
			{"timestamp wrapper is not a candidate", `{"$timestamp":{"t":1,"i":2}}`, VC.Document(NewDocument(EC.SubDocument("$timestamp", NewDocument(EC.Int32("t", 1), EC.Int32("i", 2)))))},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				var v Value
				err := v.UnmarshalJSON([]byte(tc.json))
				noerr(t, err)
				if !v.Equal(tc.want) {
					t.Errorf("Values differ. got %v; want %v", v, tc.want)
				}
			})
		}
	})

	t.Run("decimal wrapper", func(t *testing.T) {
		dec, err := ParseDecimal128("1.5")
		noerr(t, err)

		var v Value
		err = v.UnmarshalJSON([]byte(`{"$numberDecimal":"1.5"}`))
		noerr(t, err)
		if !v.Equal(VC.Decimal128(dec)) {
			t.Errorf("Values differ. got %v; want %v", v, VC.Decimal128(dec))
		}
	})

	t.Run("errors", func(t *testing.T) {
		t.Run("empty input", func(t *testing.T) {
			var v Value
			err := v.UnmarshalJSON([]byte("  "))
			want := &InvalidArgumentError{Message: "cannot decode a value from empty JSON input"}
			if !compareErrors(err, want) {
				t.Errorf("Unexpected error. got %v; want %v", err, want)
			}
		})

		testCases := []struct {
			name string
			json string
		}{
			{"bad null literal", `nul`},
			{"unterminated string", `"abc`},
			{"bad boolean literal", `truthy`},
			{"bad number", `1.2.3`},
			{"bad array", `[1,`},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				var v Value
				err := v.UnmarshalJSON([]byte(tc.json))
				want := &InvalidArgumentError{Message: "no BSON type can represent the JSON value: " + tc.json}
				if !compareErrors(err, want) {
					t.Errorf("Unexpected error. got %v; want %v", err, want)
				}
			})
		}
	})

	t.Run("json.Unmarshal round trip", func(t *testing.T) {
		orig := VC.Document(NewDocument(EC.Int32("a", 1), EC.String("b", "c")))
		b, err := json.Marshal(orig)
		noerr(t, err)

		var v Value
		err = json.Unmarshal(b, &v)
		noerr(t, err)
		if !v.Equal(orig) {
			t.Errorf("Values differ. got %v; want %v", v, orig)
		}
	})
}
