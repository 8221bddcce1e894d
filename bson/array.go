// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"io"
	"strconv"
)

// Array represents an array in BSON. On the wire an array is a document
// whose keys are the decimal indexes "0", "1", and so on, and Array keeps
// that document form at all times. Operations that disturb the numbering,
// such as Delete, are more expensive than their Document counterparts
// because the keys after the removed index must be rewritten.
type Array struct {
	doc *Document
}

// NewArray creates a new array with the specified values. It panics if a
// value cannot be encoded.
func NewArray(values ...Value) *Array {
	a := &Array{doc: NewDocument()}
	if err := a.Append(values...); err != nil {
		panic(err)
	}
	return a
}

// ArrayFromDocument creates an array from a *Document. The returned array
// does not make a copy of the *Document, so any changes made to either will
// be present in both.
func ArrayFromDocument(doc *Document) *Array {
	return &Array{doc: doc}
}

// Len returns the number of elements in the array.
func (a *Array) Len() int {
	return a.doc.Len()
}

// Reset clears all elements from the array.
func (a *Array) Reset() {
	a.doc.Reset()
}

// Validate ensures that the array's underlying BSON is valid.
func (a *Array) Validate() error {
	return a.doc.Validate()
}

// Lookup returns the value in the array at the given index or an error if it
// cannot be found.
func (a *Array) Lookup(index uint) (Value, error) {
	elem, err := a.doc.ElementAt(index)
	if err != nil {
		return Value{}, err
	}
	return elem.Value, nil
}

// Values returns every value in the array, in order.
func (a *Array) Values() []Value {
	return a.doc.Values()
}

// Append adds the given values to the end of the array.
func (a *Array) Append(values ...Value) error {
	n := a.Len()
	for _, v := range values {
		if err := a.doc.Append(strconv.Itoa(n), v); err != nil {
			return err
		}
		n++
	}
	return nil
}

// Set replaces the value at the given index with the parameter value.
func (a *Array) Set(index uint, v Value) error {
	if index >= uint(a.Len()) {
		return ErrOutOfBounds
	}
	return a.doc.Set(strconv.FormatUint(uint64(index), 10), v)
}

// Delete removes the value at the given index from the array, returning the
// removed value and whether an element was removed. Every element after the
// removed index is renumbered.
func (a *Array) Delete(index uint) (Value, bool) {
	vals := a.Values()
	if index >= uint(len(vals)) {
		return Value{}, false
	}

	removed := vals[index]
	rebuilt := NewArray(append(vals[:index:index], vals[index+1:]...)...)
	a.doc = rebuilt.doc
	return removed, true
}

// Equal compares this array to another, returning true if they are equal.
func (a *Array) Equal(a2 *Array) bool {
	if a == nil || a2 == nil {
		return a == a2
	}
	return a.doc.Equal(a2.doc)
}

// WriteTo implements the io.WriterTo interface.
func (a *Array) WriteTo(w io.Writer) (int64, error) {
	return a.doc.WriteTo(w)
}

// MarshalBSON implements the Marshaler interface.
func (a *Array) MarshalBSON() ([]byte, error) {
	return a.doc.MarshalBSON()
}

// Iterator returns an ArrayIterator that can be used to iterate through the
// elements of this Array.
func (a *Array) Iterator() *ArrayIterator {
	return newArrayIterator(a)
}
