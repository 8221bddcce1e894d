package bson

import (
	"bytes"
	"fmt"

	"github.com/mongodb/mongo-swift-driver-sub005/bson/elements"
)

// ErrUninitializedIterator is used as a panic value whenever Key, Type,
// Value, or OverwriteCurrent is invoked on a DocumentIterator that is not
// positioned on an element.
var ErrUninitializedIterator = &LogicError{Message: "method call on an unpositioned DocumentIterator"}

// DocumentIterator facilitates iterating over a bson.Document. A new
// iterator is positioned before the first element; each call to Next
// advances it by one element until the document is exhausted. Key, Type, and
// Value describe the element the iterator is positioned on and panic if it
// is not positioned on one.
//
// The iterator reads the document's buffer directly. Mutating the document
// in any way other than through this iterator's OverwriteCurrent invalidates
// the iterator.
type DocumentIterator struct {
	d    *Document
	data []byte
	pos  uint32
	elem elemRef
	err  error
}

// elemRef locates the current element within the buffer. The zero elemRef
// means the iterator is not positioned on an element, which works because no
// valid element carries the type byte 0x00.
type elemRef struct {
	start  uint32
	keyEnd uint32
	t      Type
}

func newDocumentIterator(d *Document) *DocumentIterator {
	return &DocumentIterator{d: d, data: d.raw(), pos: 4}
}

// Next advances to the next element of the document, returning whether there
// was one. It returns false once the document is exhausted, or if the
// underlying buffer is corrupted, which Err disambiguates.
func (itr *DocumentIterator) Next() bool {
	if itr.err != nil {
		return false
	}
	if int(itr.pos) >= len(itr.data)-1 {
		itr.elem = elemRef{}
		return false
	}

	t := Type(itr.data[itr.pos])
	if !t.IsValid() {
		itr.stop(&InvalidArgumentError{Message: fmt.Sprintf("invalid BSON type 0x%02x", byte(t))})
		return false
	}

	keyStart := itr.pos + 1
	idx := bytes.IndexByte(itr.data[keyStart:len(itr.data)-1], 0x00)
	if idx < 0 {
		itr.stop(ErrInvalidKey)
		return false
	}
	keyEnd := keyStart + uint32(idx) + 1

	size, err := sizeElementValue(t, itr.data, keyEnd)
	if err != nil {
		itr.stop(err)
		return false
	}
	if int64(keyEnd)+int64(size) > int64(len(itr.data)-1) {
		itr.stop(ErrInvalidLength)
		return false
	}

	itr.elem = elemRef{start: itr.pos, keyEnd: keyEnd, t: t}
	itr.pos = keyEnd + size
	return true
}

func (itr *DocumentIterator) stop(err error) {
	itr.err = err
	itr.elem = elemRef{}
}

// Err returns the error that occurred when iterating, or nil if none
// occurred.
func (itr *DocumentIterator) Err() error {
	return itr.err
}

// Key returns the key of the current element.
func (itr *DocumentIterator) Key() string {
	itr.mustBePositioned()
	return string(itr.keyBytes())
}

// Type returns the BSON type of the current element.
func (itr *DocumentIterator) Type() Type {
	itr.mustBePositioned()
	return itr.elem.t
}

// Value returns the value of the current element. The returned Value does
// not share memory with the document, so it stays usable after the document
// changes.
func (itr *DocumentIterator) Value() Value {
	itr.mustBePositioned()
	v, err := readElementValue(itr.elem.t, itr.data, itr.elem.keyEnd)
	if err != nil {
		panic(err)
	}
	return v
}

// Element returns the current element as a key/value pair.
func (itr *DocumentIterator) Element() Element {
	return Element{Key: itr.Key(), Value: itr.Value()}
}

// Find advances the iterator until it is positioned on an element with the
// provided key, starting with the element after the current one, and returns
// whether such an element was found. When the key is absent the iterator is
// left exhausted.
func (itr *DocumentIterator) Find(key string) bool {
	k := []byte(key)
	for itr.Next() {
		if bytes.Equal(itr.keyBytes(), k) {
			return true
		}
	}
	return false
}

// OverwriteCurrent replaces the value of the current element inside the
// document's buffer. The new value must have the same type as the current
// element and that type must be fixed width; any other overwrite would
// corrupt the buffer, so it panics. If the buffer is shared with copies of
// the document it is cloned first, exactly as for any other mutation.
func (itr *DocumentIterator) OverwriteCurrent(v Value) {
	itr.mustBePositioned()
	t := itr.elem.t
	if v.Type() != t || !t.FixedWidth() {
		panic(&LogicError{Message: fmt.Sprintf("cannot overwrite a %v value with a %v value in place", t, v.Type())})
	}

	if itr.d != nil {
		itr.d.ensureExclusive()
		// Offsets survive the clone, the bytes are identical.
		itr.data = itr.d.raw()
	}

	off := uint(itr.elem.keyEnd)
	switch t {
	case TypeDouble:
		_, _ = elements.Double.Encode(off, itr.data, v.Double())
	case TypeObjectID:
		_, _ = elements.ObjectID.Encode(off, itr.data, v.ObjectID())
	case TypeBoolean:
		_, _ = elements.Boolean.Encode(off, itr.data, v.Boolean())
	case TypeDateTime:
		_, _ = elements.DateTime.Encode(off, itr.data, int64(v.DateTime()))
	case TypeInt32:
		_, _ = elements.Int32.Encode(off, itr.data, v.Int32())
	case TypeTimestamp:
		ts := v.Timestamp()
		_, _ = elements.Timestamp.Encode(off, itr.data, ts.T, ts.I)
	case TypeInt64:
		_, _ = elements.Int64.Encode(off, itr.data, v.Int64())
	case TypeDecimal128:
		h, l := v.Decimal128().GetBytes()
		_, _ = elements.Decimal128.Encode(off, itr.data, h, l)
	}
}

// span returns the raw byte range of the current element, identifier byte
// through end of value.
func (itr *DocumentIterator) span() (uint32, uint32) {
	itr.mustBePositioned()
	return itr.elem.start, itr.pos
}

func (itr *DocumentIterator) keyBytes() []byte {
	return itr.data[itr.elem.start+1 : itr.elem.keyEnd-1]
}

func (itr *DocumentIterator) mustBePositioned() {
	if itr.elem.t == Type(0) {
		panic(ErrUninitializedIterator)
	}
}

// sizeElementValue returns the width in bytes of the value portion of an
// element of type t starting at off. Widths declared inside the value are
// trusted here; the caller bounds the result against the enclosing frame.
func sizeElementValue(t Type, data []byte, off uint32) (uint32, error) {
	switch t {
	case TypeDouble, TypeDateTime, TypeTimestamp, TypeInt64:
		return 8, nil
	case TypeString, TypeJavaScript, TypeSymbol:
		l, err := elements.Int32.Decode(uint(off), data)
		if err != nil {
			return 0, ErrInvalidLength
		}
		if l < 1 {
			return 0, &InvalidArgumentError{Message: "string length is invalid"}
		}
		return 4 + uint32(l), nil
	case TypeEmbeddedDocument, TypeArray:
		l, err := elements.Int32.Decode(uint(off), data)
		if err != nil {
			return 0, ErrInvalidLength
		}
		if l < 5 {
			return 0, ErrInvalidLength
		}
		return uint32(l), nil
	case TypeBinary:
		l, err := elements.Int32.Decode(uint(off), data)
		if err != nil {
			return 0, ErrInvalidLength
		}
		if l < 0 {
			return 0, &InvalidArgumentError{Message: "binary length is invalid"}
		}
		return 5 + uint32(l), nil
	case TypeUndefined, TypeNull, TypeMinKey, TypeMaxKey:
		return 0, nil
	case TypeObjectID:
		return 12, nil
	case TypeBoolean:
		return 1, nil
	case TypeInt32:
		return 4, nil
	case TypeDecimal128:
		return 16, nil
	case TypeRegex:
		i := bytes.IndexByte(data[off:], 0x00)
		if i < 0 {
			return 0, &InvalidArgumentError{Message: "regex pattern is missing a null terminator"}
		}
		j := bytes.IndexByte(data[off+uint32(i)+1:], 0x00)
		if j < 0 {
			return 0, &InvalidArgumentError{Message: "regex options are missing a null terminator"}
		}
		return uint32(i) + 1 + uint32(j) + 1, nil
	case TypeDBPointer:
		l, err := elements.Int32.Decode(uint(off), data)
		if err != nil {
			return 0, ErrInvalidLength
		}
		if l < 1 {
			return 0, &InvalidArgumentError{Message: "string length is invalid"}
		}
		return 4 + uint32(l) + 12, nil
	case TypeCodeWithScope:
		l, err := elements.Int32.Decode(uint(off), data)
		if err != nil {
			return 0, ErrInvalidLength
		}
		if l < 14 {
			return 0, &InvalidArgumentError{Message: "code with scope length is invalid"}
		}
		return uint32(l), nil
	default:
		return 0, &InvalidArgumentError{Message: fmt.Sprintf("invalid BSON type 0x%02x", byte(t))}
	}
}

// readElementValue materializes the value portion of an element as a Value.
// Variable width payloads are copied out of data, never aliased.
func readElementValue(t Type, data []byte, off uint32) (Value, error) {
	switch t {
	case TypeDouble:
		f, err := elements.Double.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.Double(f), nil
	case TypeString:
		s, _, err := elements.String.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.String(s), nil
	case TypeEmbeddedDocument:
		sub, err := readFrame(data, off)
		if err != nil {
			return Value{}, err
		}
		return VC.Document(&Document{s: newStorage(sub)}), nil
	case TypeArray:
		sub, err := readFrame(data, off)
		if err != nil {
			return Value{}, err
		}
		return VC.Array(&Array{doc: &Document{s: newStorage(sub)}}), nil
	case TypeBinary:
		subtype, view, _, err := elements.Binary.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.BinaryWithSubtype(append(make([]byte, 0, len(view)), view...), subtype), nil
	case TypeUndefined:
		return VC.Undefined(), nil
	case TypeObjectID:
		oid, err := elements.ObjectID.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.ObjectID(oid), nil
	case TypeBoolean:
		b, err := elements.Boolean.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.Boolean(b), nil
	case TypeDateTime:
		dt, err := elements.DateTime.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.DateTime(dt), nil
	case TypeNull:
		return VC.Null(), nil
	case TypeRegex:
		pattern, options, _, err := elements.Regex.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.Regex(pattern, options), nil
	case TypeDBPointer:
		ns, oid, _, err := elements.DBPointer.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.DBPointer(ns, oid), nil
	case TypeJavaScript:
		code, _, err := elements.JavaScript.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.JavaScript(code), nil
	case TypeSymbol:
		symbol, _, err := elements.Symbol.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.Symbol(symbol), nil
	case TypeCodeWithScope:
		code, view, _, err := elements.CodeWithScope.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		scope := append(make([]byte, 0, len(view)), view...)
		return VC.CodeWithScope(code, &Document{s: newStorage(scope)}), nil
	case TypeInt32:
		i, err := elements.Int32.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.Int32(i), nil
	case TypeTimestamp:
		tv, iv, err := elements.Timestamp.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.Timestamp(tv, iv), nil
	case TypeInt64:
		i, err := elements.Int64.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.Int64(i), nil
	case TypeDecimal128:
		h, l, err := elements.Decimal128.Decode(uint(off), data)
		if err != nil {
			return Value{}, err
		}
		return VC.Decimal128(NewDecimal128(h, l)), nil
	case TypeMinKey:
		return VC.MinKey(), nil
	case TypeMaxKey:
		return VC.MaxKey(), nil
	default:
		return Value{}, &InvalidArgumentError{Message: fmt.Sprintf("invalid BSON type 0x%02x", byte(t))}
	}
}

// readFrame copies the document frame that starts at off out of data.
func readFrame(data []byte, off uint32) ([]byte, error) {
	l, err := elements.Int32.Decode(uint(off), data)
	if err != nil {
		return nil, ErrInvalidLength
	}
	if l < 5 || int64(off)+int64(l) > int64(len(data)) {
		return nil, ErrInvalidLength
	}
	return append(make([]byte, 0, l), data[off:off+uint32(l)]...), nil
}
