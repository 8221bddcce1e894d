// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/pretty"
)

// corpusCase exercises one BSON value through every conversion the library
// supports: bytes to Document, Document back to bytes, Document to canonical
// and relaxed extended JSON, and extended JSON back to bytes. A lossy case is
// one whose extended JSON form cannot reproduce the original bytes exactly.
type corpusCase struct {
	description       string
	canonicalBSON     string
	canonicalExtJSON  string
	relaxedExtJSON    string
	degenerateExtJSON string
	lossy             bool
}

var corpusValidCases = []corpusCase{
	{
		description:       "double 1.0",
		canonicalBSON:     "10000000016400000000000000F03F00",
		canonicalExtJSON:  `{"d":{"$numberDouble":"1.0"}}`,
		relaxedExtJSON:    `{"d":1.0}`,
		degenerateExtJSON: `{"d":{"$numberDouble":"1"}}`,
	},
	{
		description:      "double 1E+100",
		canonicalBSON:    "100000000164007DC39425AD49B25400",
		canonicalExtJSON: `{"d":{"$numberDouble":"1E+100"}}`,
		relaxedExtJSON:   `{"d":1E+100}`,
	},
	{
		description:      "double negative zero",
		canonicalBSON:    "10000000016400000000000000008000",
		canonicalExtJSON: `{"d":{"$numberDouble":"-0.0"}}`,
		relaxedExtJSON:   `{"d":-0.0}`,
	},
	{
		description:      "double NaN",
		canonicalBSON:    "10000000016400000000000000F87F00",
		canonicalExtJSON: `{"d":{"$numberDouble":"NaN"}}`,
		lossy:            true,
	},
	{
		description:      "string",
		canonicalBSON:    "0E00000002730002000000620000",
		canonicalExtJSON: `{"s":"b"}`,
	},
	{
		description:       "int32",
		canonicalBSON:     "0C0000001069002A00000000",
		canonicalExtJSON:  `{"i":{"$numberInt":"42"}}`,
		relaxedExtJSON:    `{"i":42}`,
		degenerateExtJSON: `{"i":{"$numberInt":"042"}}`,
	},
	{
		description:      "int64 max",
		canonicalBSON:    "10000000126100FFFFFFFFFFFFFF7F00",
		canonicalExtJSON: `{"a":{"$numberLong":"9223372036854775807"}}`,
		relaxedExtJSON:   `{"a":9223372036854775807}`,
	},
	{
		description:      "objectID",
		canonicalBSON:    "1400000007610056E1FC72E0C917E9C471416100",
		canonicalExtJSON: `{"a":{"$oid":"56e1fc72e0c917e9c4714161"}}`,
	},
	{
		description:      "boolean true",
		canonicalBSON:    "090000000862000100",
		canonicalExtJSON: `{"b":true}`,
	},
	{
		description:      "null",
		canonicalBSON:    "080000000A610000",
		canonicalExtJSON: `{"a":null}`,
	},
	{
		description:       "datetime after epoch",
		canonicalBSON:     "10000000096100C5E441CF3B01000000",
		canonicalExtJSON:  `{"a":{"$date":{"$numberLong":"1356351330501"}}}`,
		relaxedExtJSON:    `{"a":{"$date":"2012-12-24T12:15:30.501Z"}}`,
		degenerateExtJSON: `{"a":{"$date":"2012-12-24T12:15:30.501Z"}}`,
	},
	{
		description:      "datetime before epoch",
		canonicalBSON:    "10000000096100FFFFFFFFFFFFFFFF00",
		canonicalExtJSON: `{"a":{"$date":{"$numberLong":"-1"}}}`,
		relaxedExtJSON:   `{"a":{"$date":{"$numberLong":"-1"}}}`,
	},
	{
		description:      "binary generic subtype",
		canonicalBSON:    "120000000578000500000000010203040500",
		canonicalExtJSON: `{"x":{"$binary":{"base64":"AQIDBAU=","subType":"00"}}}`,
	},
	{
		description:      "binary uuid subtype",
		canonicalBSON:    "1D000000057800100000000400112233445566778899AABBCCDDEEFF00",
		canonicalExtJSON: `{"x":{"$binary":{"base64":"ABEiM0RVZneImaq7zN3u/w==","subType":"04"}}}`,
	},
	{
		description:      "regex",
		canonicalBSON:    "0E0000000B6100616200696D0000",
		canonicalExtJSON: `{"a":{"$regularExpression":{"pattern":"ab","options":"im"}}}`,
	},
	{
		description:      "timestamp",
		canonicalBSON:    "100000001161002A00000015CD5B0700",
		canonicalExtJSON: `{"a":{"$timestamp":{"t":123456789,"i":42}}}`,
	},
	{
		description:      "minKey",
		canonicalBSON:    "08000000FF610000",
		canonicalExtJSON: `{"a":{"$minKey":1}}`,
	},
	{
		description:      "maxKey",
		canonicalBSON:    "080000007F610000",
		canonicalExtJSON: `{"a":{"$maxKey":1}}`,
	},
	{
		description:      "undefined",
		canonicalBSON:    "0800000006610000",
		canonicalExtJSON: `{"a":{"$undefined":true}}`,
	},
	{
		description:      "symbol",
		canonicalBSON:    "0E0000000E610002000000620000",
		canonicalExtJSON: `{"a":{"$symbol":"b"}}`,
	},
	{
		description:      "javascript",
		canonicalBSON:    "190000000D61000D0000006162616261626162616261620000",
		canonicalExtJSON: `{"a":{"$code":"abababababab"}}`,
	},
	{
		description:      "code with scope",
		canonicalBSON:    "1F0000000F610017000000030000006162000C000000107800010000000000",
		canonicalExtJSON: `{"a":{"$code":"ab","$scope":{"x":{"$numberInt":"1"}}}}`,
		relaxedExtJSON:   `{"a":{"$code":"ab","$scope":{"x":1}}}`,
	},
	{
		description:      "decimal128",
		canonicalBSON:    "18000000136400EE020000000000000000000000003CB000",
		canonicalExtJSON: `{"d":{"$numberDecimal":"-7.50"}}`,
	},
	{
		description:      "dbPointer",
		canonicalBSON:    "1A0000000C610002000000620056E1FC72E0C917E9C471416100",
		canonicalExtJSON: `{"a":{"$dbPointer":{"$ref":"b","$id":{"$oid":"56e1fc72e0c917e9c4714161"}}}}`,
	},
	{
		description:      "subdocument and array",
		canonicalBSON:    "2C0000000361000E000000026200020000006300000464001300000010300001000000103100020000000000",
		canonicalExtJSON: `{"a":{"b":"c"},"d":[{"$numberInt":"1"},{"$numberInt":"2"}]}`,
		relaxedExtJSON:   `{"a":{"b":"c"},"d":[1,2]}`,
	},
	{
		description:      "empty document",
		canonicalBSON:    "0500000000",
		canonicalExtJSON: `{}`,
	},
}

var corpusDecodeErrors = []struct {
	description string
	bson        string
}{
	{"document length longer than buffer", "09000000016600"},
	{"document length shorter than minimum", "0400000000"},
	{"missing null terminator", "0500000001"},
	{"invalid type byte", "08000000FE610000"},
	{"string length exceeds buffer", "0D000000026100FF0000007800"},
	{"boolean byte out of range", "090000000862000200"},
}

var corpusParseErrors = []struct {
	description string
	extjson     string
}{
	{"oid with non-hex character", `{"x":{"$oid":"56e1fc72e0c917e9c471416g"}}`},
	{"dbPointer ref of wrong type", `{"x":{"$dbPointer":{"$ref":1,"$id":{"$oid":"56e1fc72e0c917e9c4714161"}}}}`},
	{"date with number value", `{"x":{"$date":12345}}`},
	{"binary with bad subType hex", `{"x":{"$binary":{"base64":"AQ==","subType":"0y"}}}`},
	{"code of wrong type", `{"x":{"$code":1}}`},
	{"regex missing options", `{"x":{"$regularExpression":{"pattern":"a"}}}`},
	{"maxKey not 1", `{"x":{"$maxKey":0}}`},
	{"timestamp i out of range", `{"x":{"$timestamp":{"t":1,"i":4294967296}}}`},
}

func corpusReadDocument(t *testing.T, hexStr string) *Document {
	t.Helper()
	b, err := hex.DecodeString(hexStr)
	require.NoError(t, err)
	doc, err := ReadDocument(b)
	require.NoError(t, err)
	return doc
}

func requireHexEqual(t *testing.T, want string, got []byte) {
	t.Helper()
	require.Equal(t, strings.ToUpper(want), strings.ToUpper(hex.EncodeToString(got)))
}

func requireJSONEqual(t *testing.T, want string, got []byte) {
	t.Helper()
	w := string(pretty.Ugly([]byte(want)))
	g := string(pretty.Ugly(got))
	if w != g {
		t.Fatalf("extended JSON mismatch (-want +got):\n%s", cmp.Diff(w, g))
	}
}

func TestExtJSONCorpus(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, tc := range corpusValidCases {
			t.Run(tc.description, func(t *testing.T) {
				doc := corpusReadDocument(t, tc.canonicalBSON)

				// bson -> bson
				b, err := doc.MarshalBSON()
				require.NoError(t, err)
				requireHexEqual(t, tc.canonicalBSON, b)

				// bson -> canonical extended JSON
				cEJ, err := MarshalExtJSON(doc, true)
				require.NoError(t, err)
				requireJSONEqual(t, tc.canonicalExtJSON, cEJ)

				// canonical extended JSON round trips through the document model
				parsed, err := ParseExtJSON([]byte(tc.canonicalExtJSON))
				require.NoError(t, err)
				rt, err := MarshalExtJSON(parsed, true)
				require.NoError(t, err)
				requireJSONEqual(t, tc.canonicalExtJSON, rt)

				// canonical extended JSON -> bson, unless the JSON form is lossy
				if !tc.lossy {
					b, err = parsed.MarshalBSON()
					require.NoError(t, err)
					requireHexEqual(t, tc.canonicalBSON, b)
				}

				if tc.relaxedExtJSON != "" {
					// bson -> relaxed extended JSON
					rEJ, err := MarshalExtJSON(doc, false)
					require.NoError(t, err)
					requireJSONEqual(t, tc.relaxedExtJSON, rEJ)

					// relaxed extended JSON round trips to itself
					rparsed, err := ParseExtJSON([]byte(tc.relaxedExtJSON))
					require.NoError(t, err)
					rrt, err := MarshalExtJSON(rparsed, false)
					require.NoError(t, err)
					requireJSONEqual(t, tc.relaxedExtJSON, rrt)
				}

				if tc.degenerateExtJSON != "" {
					dparsed, err := ParseExtJSON([]byte(tc.degenerateExtJSON))
					require.NoError(t, err)
					dEJ, err := MarshalExtJSON(dparsed, true)
					require.NoError(t, err)
					requireJSONEqual(t, tc.canonicalExtJSON, dEJ)

					if !tc.lossy {
						b, err = dparsed.MarshalBSON()
						require.NoError(t, err)
						requireHexEqual(t, tc.canonicalBSON, b)
					}
				}
			})
		}
	})

	t.Run("decode errors", func(t *testing.T) {
		for _, tc := range corpusDecodeErrors {
			t.Run(tc.description, func(t *testing.T) {
				b, err := hex.DecodeString(tc.bson)
				require.NoError(t, err)
				_, err = ReadDocument(b)
				require.Error(t, err)
			})
		}
	})

	t.Run("parse errors", func(t *testing.T) {
		for _, tc := range corpusParseErrors {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ParseExtJSON([]byte(tc.extjson))
				require.Error(t, err)
			})
		}
	})
}
