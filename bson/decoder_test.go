// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecoder(t *testing.T) {
	oid := ObjectID{0x56, 0xe1, 0xfc, 0x72, 0xe0, 0xc9, 0x17, 0xe9, 0xc4, 0x71, 0x41, 0x61}

	t.Run("top-level shapes", func(t *testing.T) {
		doc := NewDocument(EC.Int32("a", 1), EC.String("b", "two"))

		t.Run("nil target", func(t *testing.T) {
			err := NewDecoder().Decode(nil, doc)
			require.Equal(t, ErrDecodeToNil, err)
		})

		t.Run("nil document", func(t *testing.T) {
			var m M
			err := NewDecoder().Decode(&m, nil)
			require.Equal(t, ErrNilDocument, err)
		})

		t.Run("document", func(t *testing.T) {
			dst := NewDocument()
			require.NoError(t, NewDecoder().Decode(dst, doc))
			require.True(t, dst.Equal(doc))

			require.NoError(t, dst.Append("c", VC.Int32(3)))
			require.Equal(t, 2, doc.Len())
		})

		t.Run("document pointer", func(t *testing.T) {
			var dst *Document
			require.NoError(t, NewDecoder().Decode(&dst, doc))
			require.True(t, dst.Equal(doc))
		})

		t.Run("pairs", func(t *testing.T) {
			var pairs D
			require.NoError(t, NewDecoder().Decode(&pairs, doc))
			require.Equal(t, D{{"a", int32(1)}, {"b", "two"}}, pairs)
		})

		t.Run("map", func(t *testing.T) {
			var m M
			require.NoError(t, NewDecoder().Decode(&m, doc))
			require.Equal(t, M{"a": int32(1), "b": "two"}, m)
		})

		t.Run("value", func(t *testing.T) {
			var v Value
			require.NoError(t, NewDecoder().Decode(&v, doc))
			d, ok := v.DocumentOK()
			require.True(t, ok)
			require.True(t, d.Equal(doc))
		})

		t.Run("interface", func(t *testing.T) {
			var i interface{}
			require.NoError(t, NewDecoder().Decode(&i, doc))
			d, ok := i.(*Document)
			require.True(t, ok)
			require.True(t, d.Equal(doc))
		})

		t.Run("record", func(t *testing.T) {
			var c coordinate
			src := NewDocument(EC.Int32("x", 3), EC.Int32("y", 4))
			require.NoError(t, NewDecoder().Decode(&c, src))
			require.Equal(t, coordinate{X: 3, Y: 4}, c)
		})

		t.Run("extended type at the top level", func(t *testing.T) {
			var id ObjectID
			err := NewDecoder().Decode(&id, doc)
			want := &LogicError{Message: "*bson.ObjectID can only be decoded from a field of a document; decode into a record type or use DecodeField"}
			require.Equal(t, want, err)
		})

		t.Run("unsupported target", func(t *testing.T) {
			var i int
			err := NewDecoder().Decode(&i, doc)
			want := &LogicError{Message: "cannot decode a document into *int"}
			require.Equal(t, want, err)
		})
	})

	t.Run("DecodeBytes", func(t *testing.T) {
		data, err := NewDocument(EC.Int32("a", 1)).MarshalBSON()
		require.NoError(t, err)

		var m M
		require.NoError(t, NewDecoder().DecodeBytes(&m, data))
		require.Equal(t, M{"a": int32(1)}, m)

		err = NewDecoder().DecodeBytes(&m, []byte{0x04, 0x00, 0x00, 0x00, 0x00})
		require.Error(t, err)
	})

	t.Run("DecodeField", func(t *testing.T) {
		doc := NewDocument(
			EC.Int32("i32", 42),
			EC.Int64("i64", math.MaxInt64),
			EC.Double("f", 2.0),
			EC.String("s", "hello"),
			EC.Null("n"),
		)

		t.Run("present scalar", func(t *testing.T) {
			var s string
			require.NoError(t, NewDecoder().DecodeField(doc, "s", &s))
			require.Equal(t, "hello", s)
		})

		t.Run("numbers convert when exact", func(t *testing.T) {
			var i32 int32
			require.NoError(t, NewDecoder().DecodeField(doc, "f", &i32))
			require.Equal(t, int32(2), i32)

			var f float64
			require.NoError(t, NewDecoder().DecodeField(doc, "i32", &f))
			require.Equal(t, 42.0, f)

			var i int
			require.NoError(t, NewDecoder().DecodeField(doc, "i64", &i))
			require.Equal(t, math.MaxInt64, i)
		})

		t.Run("absent key", func(t *testing.T) {
			var s string
			err := NewDecoder().DecodeField(doc, "missing", &s)
			require.Equal(t, &KeyNotFoundError{Key: "missing"}, err)
		})

		t.Run("null into a scalar", func(t *testing.T) {
			var s string
			err := NewDecoder().DecodeField(doc, "n", &s)
			require.Equal(t, &ValueNotFoundError{Key: "n"}, err)
		})

		t.Run("null into an interface", func(t *testing.T) {
			i := interface{}("sentinel")
			require.NoError(t, NewDecoder().DecodeField(doc, "n", &i))
			require.Nil(t, i)
		})

		t.Run("null clears an optional target", func(t *testing.T) {
			existing := int32(7)
			p := &existing
			require.NoError(t, NewDecoder().DecodeField(doc, "n", &p))
			require.Nil(t, p)
		})

		t.Run("type mismatch", func(t *testing.T) {
			var i32 int32
			err := NewDecoder().DecodeField(doc, "s", &i32)
			require.Equal(t, &TypeMismatchError{
				Path:     []string{"s"},
				Expected: TypeInt32,
				Actual:   TypeString,
			}, err)
		})

		t.Run("lossy int64 to int32", func(t *testing.T) {
			var i32 int32
			err := NewDecoder().DecodeField(doc, "i64", &i32)
			require.Equal(t, &TypeMismatchError{
				Path:     []string{"i64"},
				Expected: TypeInt32,
				Actual:   TypeInt64,
				Message:  "value 9223372036854775807 cannot be represented exactly",
			}, err)
		})

		t.Run("lossy int64 to float64", func(t *testing.T) {
			src := NewDocument(EC.Int64("v", 1<<53+1))
			var f float64
			err := NewDecoder().DecodeField(src, "v", &f)
			var tme *TypeMismatchError
			require.ErrorAs(t, err, &tme)
		})

		t.Run("lossy double to int32", func(t *testing.T) {
			src := NewDocument(EC.Double("v", 1.5))
			var i32 int32
			err := NewDecoder().DecodeField(src, "v", &i32)
			var tme *TypeMismatchError
			require.ErrorAs(t, err, &tme)
		})

		t.Run("nested record path", func(t *testing.T) {
			src := NewDocument(EC.SubDocument("outer", NewDocument(EC.String("x", "oops"))))
			var c coordinate
			err := NewDecoder().DecodeField(src, "outer", &c)
			var tme *TypeMismatchError
			require.ErrorAs(t, err, &tme)
			require.Equal(t, []string{"outer", "x"}, tme.Path)
		})

		t.Run("nil document", func(t *testing.T) {
			var s string
			err := NewDecoder().DecodeField(nil, "a", &s)
			require.Equal(t, ErrNilDocument, err)
		})
	})

	t.Run("DecodeOptionalField", func(t *testing.T) {
		doc := NewDocument(EC.Int32("a", 1), EC.Null("n"))

		t.Run("present", func(t *testing.T) {
			var i32 int32
			found, err := NewDecoder().DecodeOptionalField(doc, "a", &i32)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, int32(1), i32)
		})

		t.Run("absent", func(t *testing.T) {
			i32 := int32(7)
			found, err := NewDecoder().DecodeOptionalField(doc, "missing", &i32)
			require.NoError(t, err)
			require.False(t, found)
			require.Equal(t, int32(7), i32)
		})

		t.Run("null", func(t *testing.T) {
			i32 := int32(7)
			found, err := NewDecoder().DecodeOptionalField(doc, "n", &i32)
			require.NoError(t, err)
			require.False(t, found)
			require.Equal(t, int32(7), i32)
		})

		t.Run("wrong type", func(t *testing.T) {
			var s string
			found, err := NewDecoder().DecodeOptionalField(doc, "a", &s)
			require.Error(t, err)
			require.False(t, found)
		})
	})

	t.Run("DecodeValue", func(t *testing.T) {
		t.Run("scalar", func(t *testing.T) {
			var i32 int32
			require.NoError(t, NewDecoder().DecodeValue(VC.Int32(5), &i32))
			require.Equal(t, int32(5), i32)
		})

		t.Run("value target captures anything", func(t *testing.T) {
			var v Value
			require.NoError(t, NewDecoder().DecodeValue(VC.Null(), &v))
			require.Equal(t, TypeNull, v.Type())
		})

		t.Run("value unmarshaler", func(t *testing.T) {
			var c celsius
			require.NoError(t, NewDecoder().DecodeValue(VC.Double(21.5), &c))
			require.Equal(t, celsius(21.5), c)
		})
	})

	t.Run("extended types through fields", func(t *testing.T) {
		dec128, err := ParseDecimal128("1.5")
		require.NoError(t, err)
		scope := NewDocument(EC.Int32("y", 1))

		doc := NewDocument(
			EC.ObjectID("oid", oid),
			EC.Decimal128("dec", dec128),
			EC.Timestamp("ts", 42, 1),
			EC.Regex("re", "ab", "i"),
			EC.DBPointer("dbp", "db.coll", oid),
			EC.JavaScript("js", "x = 1;"),
			EC.Symbol("sym", "s"),
			EC.CodeWithScope("cws", "x", scope),
			EC.BinaryWithSubtype("bin", []byte{1, 2}, 0x80),
			EC.DateTime("dt", 1234),
			EC.MinKey("min"),
			EC.MaxKey("max"),
			EC.Undefined("undef"),
			EC.Null("null"),
			EC.SubDocument("sub", NewDocument(EC.Int32("a", 1))),
			EC.Array("arr", NewArray(VC.Int32(1), VC.String("two"))),
		)
		dec := NewDecoder()

		var gotOID ObjectID
		require.NoError(t, dec.DecodeField(doc, "oid", &gotOID))
		require.Equal(t, oid, gotOID)

		var gotDec Decimal128
		require.NoError(t, dec.DecodeField(doc, "dec", &gotDec))
		require.Equal(t, dec128, gotDec)

		var gotTS Timestamp
		require.NoError(t, dec.DecodeField(doc, "ts", &gotTS))
		require.Equal(t, Timestamp{T: 42, I: 1}, gotTS)

		var gotRe Regex
		require.NoError(t, dec.DecodeField(doc, "re", &gotRe))
		require.Equal(t, Regex{Pattern: "ab", Options: "i"}, gotRe)

		var gotDBP DBPointer
		require.NoError(t, dec.DecodeField(doc, "dbp", &gotDBP))
		require.Equal(t, DBPointer{DB: "db.coll", Pointer: oid}, gotDBP)

		var gotJS JavaScript
		require.NoError(t, dec.DecodeField(doc, "js", &gotJS))
		require.Equal(t, JavaScript("x = 1;"), gotJS)

		var gotSym Symbol
		require.NoError(t, dec.DecodeField(doc, "sym", &gotSym))
		require.Equal(t, Symbol("s"), gotSym)

		var gotCWS CodeWithScope
		require.NoError(t, dec.DecodeField(doc, "cws", &gotCWS))
		require.Equal(t, "x", gotCWS.Code)
		require.True(t, gotCWS.Scope.Equal(scope))

		var gotBin Binary
		require.NoError(t, dec.DecodeField(doc, "bin", &gotBin))
		require.Equal(t, Binary{Subtype: 0x80, Data: []byte{1, 2}}, gotBin)

		var gotDT DateTime
		require.NoError(t, dec.DecodeField(doc, "dt", &gotDT))
		require.Equal(t, DateTime(1234), gotDT)

		var gotMin MinKey
		require.NoError(t, dec.DecodeField(doc, "min", &gotMin))

		var gotMax MaxKey
		require.NoError(t, dec.DecodeField(doc, "max", &gotMax))

		var gotUndef Undefined
		require.NoError(t, dec.DecodeField(doc, "undef", &gotUndef))

		var gotNull Null
		require.NoError(t, dec.DecodeField(doc, "null", &gotNull))

		var gotSub *Document
		require.NoError(t, dec.DecodeField(doc, "sub", &gotSub))
		require.True(t, gotSub.Equal(NewDocument(EC.Int32("a", 1))))

		var gotArr *Array
		require.NoError(t, dec.DecodeField(doc, "arr", &gotArr))
		require.True(t, gotArr.Equal(NewArray(VC.Int32(1), VC.String("two"))))

		var gotVals []Value
		require.NoError(t, dec.DecodeField(doc, "arr", &gotVals))
		require.Len(t, gotVals, 2)
		require.True(t, gotVals[0].Equal(VC.Int32(1)))

		var gotIfaces []interface{}
		require.NoError(t, dec.DecodeField(doc, "arr", &gotIfaces))
		require.Equal(t, []interface{}{int32(1), "two"}, gotIfaces)

		t.Run("null target rejects non-null", func(t *testing.T) {
			var n Null
			err := dec.DecodeField(doc, "oid", &n)
			var tme *TypeMismatchError
			require.ErrorAs(t, err, &tme)
		})
	})

	t.Run("date strategies", func(t *testing.T) {
		tm := time.Date(2018, 1, 1, 1, 1, 1, 0, time.UTC)

		testCases := []struct {
			name     string
			strategy DateDecodingStrategy
			v        Value
		}{
			{"bson datetime", DateDecodingBSONDateTime, VC.Time(tm)},
			{"milliseconds since 1970", DateDecodingMillisecondsSince1970, VC.Int64(tm.UnixMilli())},
			{"seconds since 1970", DateDecodingSecondsSince1970, VC.Double(float64(tm.UnixMilli()) / 1000.0)},
			{"iso8601", DateDecodingISO8601, VC.String("2018-01-01T01:01:01Z")},
			{"formatted", DateDecodingFormatted("2006-01-02T15:04:05Z07:00"), VC.String("2018-01-01T01:01:01Z")},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				dec := NewDecoder()
				dec.SetDateDecodingStrategy(tc.strategy)

				var got time.Time
				require.NoError(t, dec.DecodeValue(tc.v, &got))
				require.True(t, got.Equal(tm), "got %v; want %v", got, tm)
			})
		}

		t.Run("custom", func(t *testing.T) {
			dec := NewDecoder()
			dec.SetDateDecodingStrategy(DateDecodingCustom(func(_ *Decoder, v Value) (time.Time, error) {
				ms, err := v.AsInt64()
				if err != nil {
					return time.Time{}, err
				}
				return time.UnixMilli(ms), nil
			}))

			var got time.Time
			require.NoError(t, dec.DecodeValue(VC.Int64(tm.UnixMilli()), &got))
			require.True(t, got.Equal(tm))
		})

		t.Run("default strategy rejects numbers", func(t *testing.T) {
			var got time.Time
			err := NewDecoder().DecodeValue(VC.Int64(5), &got)
			var tme *TypeMismatchError
			require.ErrorAs(t, err, &tme)
		})

		t.Run("iso8601 rejects malformed strings", func(t *testing.T) {
			dec := NewDecoder()
			dec.SetDateDecodingStrategy(DateDecodingISO8601)

			var got time.Time
			err := dec.DecodeValue(VC.String("yesterday"), &got)
			var dce *DataCorruptedError
			require.ErrorAs(t, err, &dce)
		})
	})

	t.Run("uuid strategies", func(t *testing.T) {
		id := MustParseUUID("00112233-4455-6677-8899-aabbccddeeff")

		t.Run("binary subtype 4", func(t *testing.T) {
			var got UUID
			require.NoError(t, NewDecoder().DecodeValue(VC.UUID(id), &got))
			require.Equal(t, id, got)
		})

		t.Run("legacy binary subtype 3", func(t *testing.T) {
			var got UUID
			v := VC.BinaryWithSubtype(id[:], TypeBinaryUUIDOld)
			require.NoError(t, NewDecoder().DecodeValue(v, &got))
			require.Equal(t, id, got)
		})

		t.Run("wrong subtype is corrupted data", func(t *testing.T) {
			var got UUID
			err := NewDecoder().DecodeValue(VC.Binary(id[:]), &got)
			var dce *DataCorruptedError
			require.ErrorAs(t, err, &dce)
		})

		t.Run("wrong length is corrupted data", func(t *testing.T) {
			var got UUID
			err := NewDecoder().DecodeValue(VC.BinaryWithSubtype([]byte{1, 2}, TypeBinaryUUID), &got)
			var dce *DataCorruptedError
			require.ErrorAs(t, err, &dce)
		})

		t.Run("deferred from string", func(t *testing.T) {
			dec := NewDecoder()
			dec.SetUUIDDecodingStrategy(UUIDDecodingDeferred)

			var got UUID
			require.NoError(t, dec.DecodeValue(VC.String("00112233-4455-6677-8899-aabbccddeeff"), &got))
			require.Equal(t, id, got)
		})

		t.Run("deferred rejects malformed strings", func(t *testing.T) {
			dec := NewDecoder()
			dec.SetUUIDDecodingStrategy(UUIDDecodingDeferred)

			var got UUID
			err := dec.DecodeValue(VC.String("not-a-uuid"), &got)
			var dce *DataCorruptedError
			require.ErrorAs(t, err, &dce)
		})
	})

	t.Run("data strategies", func(t *testing.T) {
		t.Run("binary", func(t *testing.T) {
			var got []byte
			require.NoError(t, NewDecoder().DecodeValue(VC.Binary([]byte{1, 2}), &got))
			require.Equal(t, []byte{1, 2}, got)
		})

		t.Run("legacy generic subtype", func(t *testing.T) {
			var got []byte
			v := VC.BinaryWithSubtype([]byte{1, 2}, TypeBinaryBinaryOld)
			require.NoError(t, NewDecoder().DecodeValue(v, &got))
			require.Equal(t, []byte{1, 2}, got)
		})

		t.Run("non-data subtype is corrupted data", func(t *testing.T) {
			var got []byte
			err := NewDecoder().DecodeValue(VC.BinaryWithSubtype([]byte{1, 2}, 0x80), &got)
			var dce *DataCorruptedError
			require.ErrorAs(t, err, &dce)
		})

		t.Run("base64", func(t *testing.T) {
			dec := NewDecoder()
			dec.SetDataDecodingStrategy(DataDecodingBase64)

			var got []byte
			require.NoError(t, dec.DecodeValue(VC.String("AQI="), &got))
			require.Equal(t, []byte{1, 2}, got)
		})

		t.Run("base64 rejects malformed strings", func(t *testing.T) {
			dec := NewDecoder()
			dec.SetDataDecodingStrategy(DataDecodingBase64)

			var got []byte
			err := dec.DecodeValue(VC.String("!"), &got)
			var dce *DataCorruptedError
			require.ErrorAs(t, err, &dce)
		})
	})

	t.Run("DecodeExtJSON", func(t *testing.T) {
		t.Run("document", func(t *testing.T) {
			var m M
			require.NoError(t, NewDecoder().DecodeExtJSON(&m, []byte(`{"a":{"$numberInt":"5"}}`)))
			require.Equal(t, M{"a": int32(5)}, m)
		})

		t.Run("scalar envelope", func(t *testing.T) {
			var i32 int32
			require.NoError(t, NewDecoder().DecodeExtJSON(&i32, []byte(`5`)))
			require.Equal(t, int32(5), i32)
		})

		t.Run("scalar envelope path", func(t *testing.T) {
			var i32 int32
			err := NewDecoder().DecodeExtJSON(&i32, []byte(`"five"`))
			var tme *TypeMismatchError
			require.ErrorAs(t, err, &tme)
			require.Equal(t, []string{"value"}, tme.Path)
		})

		t.Run("malformed input", func(t *testing.T) {
			var m M
			require.Error(t, NewDecoder().DecodeExtJSON(&m, []byte(`{`)))
		})
	})

	t.Run("round trip through records", func(t *testing.T) {
		orig := region{Name: "origin", Center: coordinate{X: 3, Y: 4}}
		doc, err := NewEncoder().Encode(orig)
		require.NoError(t, err)

		var got region
		require.NoError(t, NewDecoder().Decode(&got, doc))
		require.Equal(t, orig, got)
	})
}

func TestUnmarshalFunc(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		data, err := NewDocument(EC.Int32("a", 1)).MarshalBSON()
		require.NoError(t, err)

		var m M
		require.NoError(t, Unmarshal(data, &m))
		require.Equal(t, M{"a": int32(1)}, m)
	})

	t.Run("extended JSON", func(t *testing.T) {
		var m M
		require.NoError(t, UnmarshalExtJSON([]byte(`{"a":1}`), &m))
		require.Equal(t, M{"a": int32(1)}, m)
	})
}
