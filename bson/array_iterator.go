// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

// ArrayIterator facilitates iterating over a bson.Array.
type ArrayIterator struct {
	itr *DocumentIterator
	idx int
	val Value
}

func newArrayIterator(a *Array) *ArrayIterator {
	return &ArrayIterator{itr: a.doc.Iterator(), idx: -1}
}

// Next fetches the next value in the Array, returning whether or not it
// could be fetched successfully. If true is returned, call Value to get the
// value. If false is returned, call Err to check if an error occurred.
func (iter *ArrayIterator) Next() bool {
	if !iter.itr.Next() {
		return false
	}

	iter.val = iter.itr.Value()
	iter.idx++

	return true
}

// Index returns the index of the current value, or -1 before the first
// successful call to Next.
func (iter *ArrayIterator) Index() int {
	return iter.idx
}

// Value returns the current value of the ArrayIterator. The returned value
// is the zero Value if this function is called before the first successful
// call to Next.
func (iter *ArrayIterator) Value() Value {
	return iter.val
}

// Err returns the error that occurred while iterating, or nil if none
// occurred.
func (iter *ArrayIterator) Err() error {
	return iter.itr.Err()
}
