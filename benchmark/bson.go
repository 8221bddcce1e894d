// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mongodb/mongo-swift-driver-sub005/bson"
)

const (
	flatBSONData = "flat_bson"
	deepBSONData = "deep_bson"
	fullBSONData = "full_bson"

	flatDocumentKeys = 145
	deepDocumentKeys = 126
	fullDocumentKeys = 92
)

// utility functions for the bson benchmarks
//
// The source documents are generated rather than read from disk: a wide
// document of scalars, a deeply nested document, and a document holding
// every value type.

func loadSourceDocument(dataSet string) (*bson.Document, error) {
	var doc *bson.Document
	var err error
	switch dataSet {
	case flatBSONData:
		doc, err = flatDocument()
	case deepBSONData:
		doc, err = deepDocument()
	case fullBSONData:
		doc, err = fullDocument()
	default:
		return nil, errors.Errorf("unknown bson data set %q", dataSet)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "building %s corpus document", dataSet)
	}

	if doc.Len() == 0 {
		return nil, errors.New("empty bson document")
	}

	return doc, nil
}

func loadSourceRaw(dataSet string) ([]byte, error) {
	doc, err := loadSourceDocument(dataSet)
	if err != nil {
		return nil, err
	}

	raw, err := doc.MarshalBSON()
	if err != nil {
		return nil, errors.Wrapf(err, "marshaling %s corpus document", dataSet)
	}

	return raw, nil
}

func loadSourceExtJSON(dataSet string) ([]byte, error) {
	doc, err := loadSourceDocument(dataSet)
	if err != nil {
		return nil, err
	}

	data, err := bson.MarshalExtJSON(doc, true)
	if err != nil {
		return nil, errors.Wrapf(err, "rendering %s corpus document", dataSet)
	}

	return data, nil
}

func flatDocument() (*bson.Document, error) {
	doc := bson.NewDocument()
	for i := 0; i < 29; i++ {
		elems := []bson.Element{
			bson.EC.String(fmt.Sprintf("string_%d", i), strings.Repeat("perf", 1+i%5)),
			bson.EC.Int32(fmt.Sprintf("int32_%d", i), int32(i*2147)),
			bson.EC.Int64(fmt.Sprintf("int64_%d", i), int64(i)<<33),
			bson.EC.Double(fmt.Sprintf("double_%d", i), float64(i)*1.5),
			bson.EC.ObjectID(fmt.Sprintf("oid_%d", i), bson.NewObjectID()),
		}
		for _, e := range elems {
			if err := doc.Append(e.Key, e.Value); err != nil {
				return nil, err
			}
		}
	}

	return doc, nil
}

func deepDocument() (*bson.Document, error) {
	doc := bson.NewDocument()
	for i := 0; i < 6; i++ {
		branch := bson.NewDocument()
		for j := 0; j < 4; j++ {
			leaf := bson.NewDocument()
			for k := 0; k < 4; k++ {
				if err := leaf.Append(fmt.Sprintf("value_%d", k), bson.VC.Int64(int64(i*100+j*10+k))); err != nil {
					return nil, err
				}
			}
			if err := branch.Append(fmt.Sprintf("level2_%d", j), bson.VC.Document(leaf)); err != nil {
				return nil, err
			}
		}
		if err := doc.Append(fmt.Sprintf("level1_%d", i), bson.VC.Document(branch)); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func fullDocument() (*bson.Document, error) {
	oid, err := bson.ObjectIDFromHex("57e193d7a9cc81b4027498b5")
	if err != nil {
		return nil, err
	}
	dec, err := bson.ParseDecimal128("2.000")
	if err != nil {
		return nil, err
	}
	id := bson.MustParseUUID("c8edabc3-f738-4ca3-b68d-ab92a91478a3")
	when := time.Date(2016, 8, 9, 10, 11, 12, 0, time.UTC)

	doc := bson.NewDocument()
	for i := 0; i < 4; i++ {
		sub := bson.NewDocument()
		if err := sub.Append("a", bson.VC.Int32(int32(i))); err != nil {
			return nil, err
		}
		scope := bson.NewDocument()
		if err := scope.Append("x", bson.VC.Int32(int32(i))); err != nil {
			return nil, err
		}
		arr := bson.NewArray(bson.VC.Int32(int32(i)), bson.VC.String("b"), bson.VC.Double(3.5))

		elems := []bson.Element{
			bson.EC.Double(fmt.Sprintf("double_%d", i), float64(i)+0.5),
			bson.EC.String(fmt.Sprintf("string_%d", i), "declension"),
			bson.EC.SubDocument(fmt.Sprintf("document_%d", i), sub),
			bson.EC.Array(fmt.Sprintf("array_%d", i), arr),
			bson.EC.Binary(fmt.Sprintf("binary_%d", i), []byte{0x01, 0x02, 0x03, 0x04, byte(i)}),
			bson.EC.UUID(fmt.Sprintf("uuid_%d", i), id),
			bson.EC.Undefined(fmt.Sprintf("undefined_%d", i)),
			bson.EC.ObjectID(fmt.Sprintf("objectid_%d", i), oid),
			bson.EC.Boolean(fmt.Sprintf("boolean_%d", i), i%2 == 0),
			bson.EC.Time(fmt.Sprintf("datetime_%d", i), when.Add(time.Duration(i)*time.Hour)),
			bson.EC.Null(fmt.Sprintf("null_%d", i)),
			bson.EC.Regex(fmt.Sprintf("regex_%d", i), "^abc", "imx"),
			bson.EC.DBPointer(fmt.Sprintf("dbpointer_%d", i), "db.collection", oid),
			bson.EC.JavaScript(fmt.Sprintf("javascript_%d", i), "function(){ return 1; }"),
			bson.EC.Symbol(fmt.Sprintf("symbol_%d", i), "symbol"),
			bson.EC.CodeWithScope(fmt.Sprintf("codewithscope_%d", i), "function(){ return x; }", scope),
			bson.EC.Int32(fmt.Sprintf("int32_%d", i), int32(i*42)),
			bson.EC.Timestamp(fmt.Sprintf("timestamp_%d", i), uint32(1462500000+i), uint32(i)),
			bson.EC.Int64(fmt.Sprintf("int64_%d", i), int64(i)<<40),
			bson.EC.Decimal128(fmt.Sprintf("decimal128_%d", i), dec),
			bson.EC.MinKey(fmt.Sprintf("minkey_%d", i)),
			bson.EC.MaxKey(fmt.Sprintf("maxkey_%d", i)),
		}
		for _, e := range elems {
			if err := doc.Append(e.Key, e.Value); err != nil {
				return nil, err
			}
		}
	}

	return doc, nil
}

// countKeys walks doc and returns the number of keys, including the keys of
// embedded documents.
func countKeys(doc *bson.Document) (int, error) {
	n := 0
	itr := doc.Iterator()
	for itr.Next() {
		n++
		if itr.Type() == bson.TypeEmbeddedDocument {
			sub, err := countKeys(itr.Value().Document())
			if err != nil {
				return 0, err
			}
			n += sub
		}
	}
	if err := itr.Err(); err != nil {
		return 0, err
	}

	return n, nil
}
