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

func TestParseExtJSON(t *testing.T) {
	oid := ObjectID{0x56, 0xe1, 0xfc, 0x72, 0xe0, 0xc9, 0x17, 0xe9, 0xc4, 0x71, 0x41, 0x61}

	t.Run("plain values", func(t *testing.T) {
		got, err := ParseExtJSON([]byte(`{"a": 1, "b": "two", "c": true, "d": null, "e": false}`))
		noerr(t, err)

		want := NewDocument(
			EC.Int32("a", 1),
			EC.String("b", "two"),
			EC.Boolean("c", true),
			EC.Null("d"),
			EC.Boolean("e", false),
		)
		if !got.Equal(want) {
			t.Errorf("Documents differ. got %v; want %v", got, want)
		}
	})

	t.Run("number narrowing", func(t *testing.T) {
		testCases := []struct {
			name string
			json string
			want Value
		}{
			{"small integer is int32", `{"a":1}`, VC.Int32(1)},
			{"max int32", `{"a":2147483647}`, VC.Int32(math.MaxInt32)},
			{"min int32", `{"a":-2147483648}`, VC.Int32(math.MinInt32)},
			{"above int32 is int64", `{"a":2147483648}`, VC.Int64(math.MaxInt32 + 1)},
			{"below int32 is int64", `{"a":-2147483649}`, VC.Int64(math.MinInt32 - 1)},
			{"max int64", `{"a":9223372036854775807}`, VC.Int64(math.MaxInt64)},
			{"fraction is double", `{"a":1.5}`, VC.Double(1.5)},
			{"exponent is double", `{"a":1e3}`, VC.Double(1000)},
			{"integral with point is double", `{"a":5.0}`, VC.Double(5)},
			{"above int64 is double", `{"a":99999999999999999999}`, VC.Double(1e20)},
			{"negative zero is double", `{"a":-0.0}`, VC.Double(math.Copysign(0, -1))},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := ParseExtJSON([]byte(tc.json))
				noerr(t, err)

				want := NewDocument(Element{Key: "a", Value: tc.want})
				if !got.Equal(want) {
					t.Errorf("Documents differ. got %v; want %v", got, want)
				}
			})
		}
	})

	t.Run("wrappers", func(t *testing.T) {
		dec, err := ParseDecimal128("-7.50")
		noerr(t, err)

		testCases := []struct {
			name string
			json string
			want Element
		}{
			{"objectID", `{"a":{"$oid":"56e1fc72e0c917e9c4714161"}}`, EC.ObjectID("a", oid)},
			{"symbol", `{"a":{"$symbol":"sym"}}`, EC.Symbol("a", "sym")},
			{"int32", `{"a":{"$numberInt":"-2147483648"}}`, EC.Int32("a", math.MinInt32)},
			{"int64", `{"a":{"$numberLong":"9223372036854775807"}}`, EC.Int64("a", math.MaxInt64)},
			{"double", `{"a":{"$numberDouble":"2.5"}}`, EC.Double("a", 2.5)},
			{"double infinity", `{"a":{"$numberDouble":"Infinity"}}`, EC.Double("a", math.Inf(1))},
			{"double negative infinity", `{"a":{"$numberDouble":"-Infinity"}}`, EC.Double("a", math.Inf(-1))},
			{"double NaN", `{"a":{"$numberDouble":"NaN"}}`, EC.Double("a", math.NaN())},
			{"decimal128", `{"a":{"$numberDecimal":"-7.50"}}`, EC.Decimal128("a", dec)},
			{"binary", `{"a":{"$binary":{"base64":"AQID","subType":"00"}}}`, EC.Binary("a", []byte{1, 2, 3})},
			{"binary keys without wrapper stay documents", `{"a":{"subType":"80","base64":"AQID"}}`, EC.SubDocument("a", NewDocument(EC.String("subType", "80"), EC.String("base64", "AQID")))},
			{"binary user subtype", `{"a":{"$binary":{"base64":"AQID","subType":"80"}}}`, EC.BinaryWithSubtype("a", []byte{1, 2, 3}, 0x80)},
			{"binary uuid subtype", `{"a":{"$binary":{"subType":"04","base64":"AQID"}}}`, EC.BinaryWithSubtype("a", []byte{1, 2, 3}, 0x04)},
			{"code", `{"a":{"$code":"x = 1;"}}`, EC.JavaScript("a", "x = 1;")},
			{"code with scope", `{"a":{"$code":"x","$scope":{"y":1}}}`, EC.CodeWithScope("a", "x", NewDocument(EC.Int32("y", 1)))},
			{"scope before code", `{"a":{"$scope":{"y":1},"$code":"x"}}`, EC.CodeWithScope("a", "x", NewDocument(EC.Int32("y", 1)))},
			{"timestamp", `{"a":{"$timestamp":{"t":42,"i":1}}}`, EC.Timestamp("a", 42, 1)},
			{"regex", `{"a":{"$regularExpression":{"pattern":"ab*","options":"im"}}}`, EC.Regex("a", "ab*", "im")},
			{"regex empty", `{"a":{"$regularExpression":{"options":"","pattern":""}}}`, EC.Regex("a", "", "")},
			{"dbPointer", `{"a":{"$dbPointer":{"$ref":"db.coll","$id":{"$oid":"56e1fc72e0c917e9c4714161"}}}}`, EC.DBPointer("a", "db.coll", oid)},
			{"date string", `{"a":{"$date":"2012-12-24T12:15:30.501Z"}}`, EC.DateTime("a", 1356351330501)},
			{"date string without millis", `{"a":{"$date":"2012-12-24T12:15:30Z"}}`, EC.DateTime("a", 1356351330000)},
			{"date string with offset", `{"a":{"$date":"2012-12-24T12:15:30.501+05:00"}}`, EC.DateTime("a", 1356333330501)},
			{"date numberLong", `{"a":{"$date":{"$numberLong":"-62135596800000"}}}`, EC.DateTime("a", -62135596800000)},
			{"minKey", `{"a":{"$minKey":1}}`, EC.MinKey("a")},
			{"maxKey", `{"a":{"$maxKey":1}}`, EC.MaxKey("a")},
			{"undefined", `{"a":{"$undefined":true}}`, EC.Undefined("a")},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := ParseExtJSON([]byte(tc.json))
				noerr(t, err)

				want := NewDocument(tc.want)
				if !got.Equal(want) {
					t.Errorf("Documents differ. got %v; want %v", got, want)
				}
			})
		}
	})

	t.Run("dbref is a plain document", func(t *testing.T) {
		got, err := ParseExtJSON([]byte(`{"ref":{"$ref":"coll","$id":42,"$db":"other"}}`))
		noerr(t, err)

		want := NewDocument(EC.SubDocument("ref", NewDocument(
			EC.String("$ref", "coll"),
			EC.Int32("$id", 42),
			EC.String("$db", "other"),
		)))
		if !got.Equal(want) {
			t.Errorf("Documents differ. got %v; want %v", got, want)
		}
	})

	t.Run("unknown dollar keys stay documents", func(t *testing.T) {
		got, err := ParseExtJSON([]byte(`{"a":{"$foo":1}}`))
		noerr(t, err)

		want := NewDocument(EC.SubDocument("a", NewDocument(EC.Int32("$foo", 1))))
		if !got.Equal(want) {
			t.Errorf("Documents differ. got %v; want %v", got, want)
		}
	})

	t.Run("nested", func(t *testing.T) {
		got, err := ParseExtJSON([]byte(`{"a":[1,{"b":{"$numberLong":"2"}}],"c":{"d":[true]}}`))
		noerr(t, err)

		want := NewDocument(
			EC.Array("a", NewArray(
				VC.Int32(1),
				VC.Document(NewDocument(EC.Int64("b", 2))),
			)),
			EC.SubDocument("c", NewDocument(EC.Array("d", NewArray(VC.Boolean(true))))),
		)
		if !got.Equal(want) {
			t.Errorf("Documents differ. got %v; want %v", got, want)
		}
	})

	t.Run("escaped keys and strings", func(t *testing.T) {
		got, err := ParseExtJSON([]byte(`{"café":"éclair","b":"line\nbreak"}`))
		noerr(t, err)

		want := NewDocument(
			EC.String("café", "éclair"),
			EC.String("b", "line\nbreak"),
		)
		if !got.Equal(want) {
			t.Errorf("Documents differ. got %v; want %v", got, want)
		}
	})

	t.Run("root", func(t *testing.T) {
		t.Run("must be an object", func(t *testing.T) {
			_, err := ParseExtJSON([]byte(`[1]`))
			want := &InvalidArgumentError{Message: "extended JSON document must be a JSON object"}
			if !compareErrors(err, want) {
				t.Errorf("Unexpected error. got %v; want %v", err, want)
			}
		})

		t.Run("cannot be a type wrapper", func(t *testing.T) {
			_, err := ParseExtJSON([]byte(`{"$numberInt":"5"}`))
			want := &InvalidArgumentError{Message: "extended JSON document cannot be a type wrapper"}
			if !compareErrors(err, want) {
				t.Errorf("Unexpected error. got %v; want %v", err, want)
			}
		})

		t.Run("dbref keys are allowed", func(t *testing.T) {
			got, err := ParseExtJSON([]byte(`{"$ref":"coll","$id":1}`))
			noerr(t, err)

			want := NewDocument(EC.String("$ref", "coll"), EC.Int32("$id", 1))
			if !got.Equal(want) {
				t.Errorf("Documents differ. got %v; want %v", got, want)
			}
		})

		t.Run("empty object", func(t *testing.T) {
			got, err := ParseExtJSON([]byte(` {} `))
			noerr(t, err)
			if got.Len() != 0 {
				t.Errorf("Unexpected length. got %d; want 0", got.Len())
			}
		})
	})

	t.Run("errors", func(t *testing.T) {
		testCases := []struct {
			name string
			json string
			want error
		}{
			{
				"wrapper value of wrong JSON type",
				`{"a":{"$numberInt":5}}`,
				&InvalidArgumentError{Message: "invalid extended JSON: $numberInt value should be string, but instead is number"},
			},
			{
				"minKey must be 1",
				`{"a":{"$minKey":2}}`,
				&InvalidArgumentError{Message: "invalid extended JSON: $minKey value must be 1, but instead is 2"},
			},
			{
				"undefined must be true",
				`{"a":{"$undefined":false}}`,
				&InvalidArgumentError{Message: "invalid extended JSON: $undefined value should be true, but instead is false"},
			},
			{
				"bad objectID hex",
				`{"a":{"$oid":"56e1fc72e0c917e9c471416"}}`,
				&InvalidArgumentError{Message: "invalid extended JSON: invalid $oid value string: 56e1fc72e0c917e9c471416"},
			},
			{
				"timestamp missing increment",
				`{"a":{"$timestamp":{"t":1}}}`,
				&InvalidArgumentError{Message: `invalid extended JSON: missing i field in $timestamp object: {"t":1}`},
			},
			{
				"timestamp out of range",
				`{"a":{"$timestamp":{"t":-1,"i":1}}}`,
				&InvalidArgumentError{Message: "invalid extended JSON: $timestamp t number should be uint32: -1"},
			},
			{
				"binary missing subType",
				`{"a":{"$binary":{"base64":"AQ=="}}}`,
				&InvalidArgumentError{Message: `invalid extended JSON: missing subType field in $binary object: {"base64":"AQ=="}`},
			},
			{
				"binary bad base64",
				`{"a":{"$binary":{"base64":"x","subType":"00"}}}`,
				&InvalidArgumentError{Message: "invalid extended JSON: invalid $binary base64 string: x"},
			},
			{
				"date with partial string",
				`{"a":{"$date":"2018-01-01"}}`,
				&InvalidArgumentError{Message: "invalid extended JSON: invalid $date value string: 2018-01-01"},
			},
			{
				"extra key in wrapper",
				`{"a":{"$oid":"56e1fc72e0c917e9c4714161","b":1}}`,
				&InvalidArgumentError{Message: "invalid extended JSON: invalid key in $oid object: b"},
			},
			{
				"numberInt out of range",
				`{"a":{"$numberInt":"2147483648"}}`,
				&InvalidArgumentError{Message: "invalid extended JSON: $numberInt value should be int32 but instead is int64: 2147483648"},
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := ParseExtJSON([]byte(tc.json))
				if !compareErrors(err, tc.want) {
					t.Errorf("Unexpected error. got %v; want %v", err, tc.want)
				}
			})
		}
	})
}

func TestParseExtJSONArray(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		got, err := ParseExtJSONArray([]byte(`[1,"a",{"b":true},[2]]`))
		noerr(t, err)

		want := NewArray(
			VC.Int32(1),
			VC.String("a"),
			VC.Document(NewDocument(EC.Boolean("b", true))),
			VC.Array(NewArray(VC.Int32(2))),
		)
		if !got.Equal(want) {
			t.Errorf("Arrays differ. got %v; want %v", got, want)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, err := ParseExtJSONArray([]byte(`[]`))
		noerr(t, err)
		if got.Len() != 0 {
			t.Errorf("Unexpected length. got %d; want 0", got.Len())
		}
	})

	t.Run("must be an array", func(t *testing.T) {
		_, err := ParseExtJSONArray([]byte(`{}`))
		want := &InvalidArgumentError{Message: "extended JSON array must be a JSON array"}
		if !compareErrors(err, want) {
			t.Errorf("Unexpected error. got %v; want %v", err, want)
		}
	})

	t.Run("invalid element", func(t *testing.T) {
		_, err := ParseExtJSONArray([]byte(`[{"$oid":"zzz"}]`))
		if err == nil {
			t.Error("Expected an error but got nil")
		}
	})
}

func TestDocumentJSON(t *testing.T) {
	t.Run("UnmarshalJSON", func(t *testing.T) {
		doc := NewDocument()
		err := json.Unmarshal([]byte(`{"a":{"$oid":"56e1fc72e0c917e9c4714161"},"b":[1,2]}`), doc)
		noerr(t, err)

		oid := ObjectID{0x56, 0xe1, 0xfc, 0x72, 0xe0, 0xc9, 0x17, 0xe9, 0xc4, 0x71, 0x41, 0x61}
		want := NewDocument(
			EC.ObjectID("a", oid),
			EC.Array("b", NewArray(VC.Int32(1), VC.Int32(2))),
		)
		if !doc.Equal(want) {
			t.Errorf("Documents differ. got %v; want %v", doc, want)
		}
	})

	t.Run("UnmarshalJSON rejects non-objects", func(t *testing.T) {
		doc := NewDocument()
		err := json.Unmarshal([]byte(`[1]`), doc)
		if err == nil {
			t.Error("Expected an error but got nil")
		}
	})

	t.Run("MarshalJSON round trip", func(t *testing.T) {
		doc := NewDocument(
			EC.Int32("a", 1),
			EC.String("b", "two"),
			EC.SubDocument("c", NewDocument(EC.Boolean("d", true))),
		)

		b, err := json.Marshal(doc)
		noerr(t, err)

		want := `{"a":1,"b":"two","c":{"d":true}}`
		if string(b) != want {
			t.Errorf("Unexpected result. got %s; want %s", string(b), want)
		}

		parsed := NewDocument()
		err = json.Unmarshal(b, parsed)
		noerr(t, err)
		if !parsed.Equal(doc) {
			t.Errorf("Documents differ. got %v; want %v", parsed, doc)
		}
	})
}

func TestMarshalExtJSON(t *testing.T) {
	oid := ObjectID{0x56, 0xe1, 0xfc, 0x72, 0xe0, 0xc9, 0x17, 0xe9, 0xc4, 0x71, 0x41, 0x61}

	t.Run("relaxed", func(t *testing.T) {
		dec, err := ParseDecimal128("-7.50")
		noerr(t, err)

		testCases := []struct {
			name string
			doc  *Document
			want string
		}{
			{"empty", NewDocument(), `{}`},
			{"int32", NewDocument(EC.Int32("a", 1)), `{"a":1}`},
			{"int64", NewDocument(EC.Int64("a", math.MaxInt64)), `{"a":9223372036854775807}`},
			{"double", NewDocument(EC.Double("a", 3.14)), `{"a":3.14}`},
			{"integral double keeps a decimal", NewDocument(EC.Double("a", 5)), `{"a":5.0}`},
			{"double with exponent", NewDocument(EC.Double("a", 1e100)), `{"a":1E+100}`},
			{"negative zero", NewDocument(EC.Double("a", math.Copysign(0, -1))), `{"a":-0.0}`},
			{"infinity stays wrapped", NewDocument(EC.Double("a", math.Inf(1))), `{"a":{"$numberDouble":"Infinity"}}`},
			{"NaN stays wrapped", NewDocument(EC.Double("a", math.NaN())), `{"a":{"$numberDouble":"NaN"}}`},
			{"string", NewDocument(EC.String("a", "b")), `{"a":"b"}`},
			{"string escapes", NewDocument(EC.String("a", "b\"c\\d\ne\x01")), `{"a":"b\"c\\d\ne\u0001"}`},
			{"multibyte passthrough", NewDocument(EC.String("café", "日本")), `{"café":"日本"}`},
			{"boolean and null", NewDocument(EC.Boolean("a", true), EC.Null("b")), `{"a":true,"b":null}`},
			{"datetime in range", NewDocument(EC.DateTime("a", 1356351330501)), `{"a":{"$date":"2012-12-24T12:15:30.501Z"}}`},
			{"datetime trims trailing zeros", NewDocument(EC.DateTime("a", 1356351330000)), `{"a":{"$date":"2012-12-24T12:15:30Z"}}`},
			{"datetime before epoch", NewDocument(EC.DateTime("a", -1)), `{"a":{"$date":{"$numberLong":"-1"}}}`},
			{"subdocument and array", NewDocument(
				EC.SubDocument("d", NewDocument(EC.String("x", "y"))),
				EC.Array("a", NewArray(VC.Int32(1), VC.Null())),
			), `{"d":{"x":"y"},"a":[1,null]}`},
			{"binary", NewDocument(EC.Binary("a", []byte{1, 2, 3})), `{"a":{"$binary":{"base64":"AQID","subType":"00"}}}`},
			{"binary user subtype", NewDocument(EC.BinaryWithSubtype("a", []byte{1, 2, 3}, 0x80)), `{"a":{"$binary":{"base64":"AQID","subType":"80"}}}`},
			{"objectID", NewDocument(EC.ObjectID("a", oid)), `{"a":{"$oid":"56e1fc72e0c917e9c4714161"}}`},
			{"regex", NewDocument(EC.Regex("a", "ab", "im")), `{"a":{"$regularExpression":{"pattern":"ab","options":"im"}}}`},
			{"timestamp", NewDocument(EC.Timestamp("a", 42, 1)), `{"a":{"$timestamp":{"t":42,"i":1}}}`},
			{"decimal128", NewDocument(EC.Decimal128("a", dec)), `{"a":{"$numberDecimal":"-7.50"}}`},
			{"symbol", NewDocument(EC.Symbol("a", "s")), `{"a":{"$symbol":"s"}}`},
			{"javascript", NewDocument(EC.JavaScript("a", "x = 1;")), `{"a":{"$code":"x = 1;"}}`},
			{"code with scope", NewDocument(EC.CodeWithScope("a", "x", NewDocument(EC.Int32("y", 1)))), `{"a":{"$code":"x","$scope":{"y":1}}}`},
			{"dbPointer", NewDocument(EC.DBPointer("a", "db.coll", oid)), `{"a":{"$dbPointer":{"$ref":"db.coll","$id":{"$oid":"56e1fc72e0c917e9c4714161"}}}}`},
			{"minKey and maxKey", NewDocument(EC.MinKey("a"), EC.MaxKey("b")), `{"a":{"$minKey":1},"b":{"$maxKey":1}}`},
			{"undefined", NewDocument(EC.Undefined("a")), `{"a":{"$undefined":true}}`},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := MarshalExtJSON(tc.doc, false)
				noerr(t, err)
				if string(got) != tc.want {
					t.Errorf("Unexpected result. got %s; want %s", string(got), tc.want)
				}
			})
		}
	})

	t.Run("canonical", func(t *testing.T) {
		testCases := []struct {
			name string
			doc  *Document
			want string
		}{
			{"int32", NewDocument(EC.Int32("a", 1)), `{"a":{"$numberInt":"1"}}`},
			{"int64", NewDocument(EC.Int64("a", 42)), `{"a":{"$numberLong":"42"}}`},
			{"double", NewDocument(EC.Double("a", 3.14)), `{"a":{"$numberDouble":"3.14"}}`},
			{"integral double", NewDocument(EC.Double("a", 5)), `{"a":{"$numberDouble":"5.0"}}`},
			{"datetime is always numberLong", NewDocument(EC.DateTime("a", 1356351330501)), `{"a":{"$date":{"$numberLong":"1356351330501"}}}`},
			{"array elements are wrapped", NewDocument(EC.Array("a", NewArray(VC.Int32(1), VC.Boolean(true)))), `{"a":[{"$numberInt":"1"},true]}`},
			{"scope is canonical", NewDocument(EC.CodeWithScope("a", "x", NewDocument(EC.Int32("y", 1)))), `{"a":{"$code":"x","$scope":{"y":{"$numberInt":"1"}}}}`},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := MarshalExtJSON(tc.doc, true)
				noerr(t, err)
				if string(got) != tc.want {
					t.Errorf("Unexpected result. got %s; want %s", string(got), tc.want)
				}
			})
		}
	})

	t.Run("nil document", func(t *testing.T) {
		_, err := MarshalExtJSON(nil, false)
		if err != ErrNilDocument {
			t.Errorf("Unexpected error. got %v; want %v", err, ErrNilDocument)
		}
	})
}

func TestExtJSONStringers(t *testing.T) {
	t.Run("Document", func(t *testing.T) {
		doc := NewDocument(EC.Int32("a", 1), EC.String("b", "c"))
		if got, want := doc.String(), `{"a":1,"b":"c"}`; got != want {
			t.Errorf("Unexpected result. got %s; want %s", got, want)
		}
	})

	t.Run("Array", func(t *testing.T) {
		arr := NewArray(VC.Int32(1), VC.String("a"))
		if got, want := arr.String(), `[1,"a"]`; got != want {
			t.Errorf("Unexpected result. got %s; want %s", got, want)
		}

		var nilArr *Array
		if got := nilArr.String(); got != "" {
			t.Errorf("Unexpected result. got %s; want empty string", got)
		}
	})

	t.Run("Value is canonical", func(t *testing.T) {
		testCases := []struct {
			name string
			v    Value
			want string
		}{
			{"int32", VC.Int32(5), `{"$numberInt":"5"}`},
			{"double", VC.Double(2.5), `{"$numberDouble":"2.5"}`},
			{"string", VC.String("x"), `"x"`},
			{"zero value", Value{}, ""},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				if got := tc.v.String(); got != tc.want {
					t.Errorf("Unexpected result. got %q; want %q", got, tc.want)
				}
			})
		}
	})
}
