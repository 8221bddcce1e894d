// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-stack/stack"
)

// InvalidArgumentError indicates that raw bytes or JSON text provided by the
// caller could not be parsed.
type InvalidArgumentError struct {
	Message string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Message
}

// LogicError indicates recoverable API misuse, such as constructing an
// ObjectID or Decimal128 from malformed input.
type LogicError struct {
	Message string
}

// Error implements the error interface.
func (e *LogicError) Error() string {
	return e.Message
}

// InternalError indicates a violated internal invariant. It carries the stack
// at the point where the invariant was found broken.
type InternalError struct {
	Message string
	Stack   stack.CallStack
}

// NewInternalError creates a new InternalError with the given message and the
// current stack.
func NewInternalError(msg string) *InternalError {
	return &InternalError{Message: msg, Stack: stack.Trace().TrimRuntime()}
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}

// ErrorStack returns a string representing the stack at the point where the
// error occurred.
func (e *InternalError) ErrorStack() string {
	s := bytes.NewBufferString(e.Message + ": [")

	for i, call := range e.Stack {
		if i != 0 {
			s.WriteString(", ")
		}

		// go vet doesn't like %k even though it's part of stack's API, so we move the format
		// string so it doesn't complain. (We also can't make it a constant, or go vet still
		// complains.)
		callFormat := "%k.%n %v"

		s.WriteString(fmt.Sprintf(callFormat, call, call, call))
	}

	s.WriteRune(']')

	return s.String()
}

// DocumentTooLargeError indicates that an append would have grown a document
// past the maximum encodable size.
type DocumentTooLargeError struct {
	Attempted int64
}

// Error implements the error interface.
func (e *DocumentTooLargeError) Error() string {
	return fmt.Sprintf("document size %d exceeds maximum of %d bytes", e.Attempted, MaxDocumentSize)
}

// TypeMismatchError indicates that a value of one BSON type was found where a
// different type was requested. Message, when set, carries extra detail such
// as why a numeric value of the right kind was still unusable.
type TypeMismatchError struct {
	Path     []string
	Expected Type
	Actual   Type
	Message  string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	s := fmt.Sprintf("decoding error at %s: expected %v, found %v", pathString(e.Path), e.Expected, e.Actual)
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}

// ValueNotFoundError indicates that a value required during decoding was
// absent or explicitly null.
type ValueNotFoundError struct {
	Path []string
	Key  string
}

// Error implements the error interface.
func (e *ValueNotFoundError) Error() string {
	return fmt.Sprintf("decoding error at %s: no value for key %q", pathString(e.Path), e.Key)
}

// KeyNotFoundError indicates that a key required during decoding was absent.
type KeyNotFoundError struct {
	Path []string
	Key  string
}

// Error implements the error interface.
func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("decoding error at %s: key %q not found", pathString(e.Path), e.Key)
}

// DataCorruptedError indicates that stored data is structurally valid BSON
// but semantically unusable for the requested decode, such as a UUID binary
// value with the wrong subtype.
type DataCorruptedError struct {
	Path    []string
	Message string
}

// Error implements the error interface.
func (e *DataCorruptedError) Error() string {
	return fmt.Sprintf("corrupted data at %s: %s", pathString(e.Path), e.Message)
}

// InvalidValueError indicates that a value could not be encoded to BSON.
type InvalidValueError struct {
	Path    []string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("encoding error at %s: %s", pathString(e.Path), e.Message)
}

// ValueTypeError is the panic value produced when a typed accessor is called
// on a Value holding a different type.
type ValueTypeError struct {
	Method string
	Type   Type
}

// Error implements the error interface.
func (vte ValueTypeError) Error() string {
	return "Call of " + vte.Method + " on " + vte.Type.String() + " type"
}

func pathString(path []string) string {
	if len(path) == 0 {
		return "(root)"
	}
	return strings.Join(path, ".")
}
