package bson

import (
	"bytes"
	"io"
	"math"
	"strings"
	"sync/atomic"

	"github.com/mongodb/mongo-swift-driver-sub005/bson/elements"
)

// MaxDocumentSize is the largest frame, in bytes, a Document will hold.
const MaxDocumentSize = math.MaxInt32

// validateMaxDepth is the deepest nesting Validate will follow before
// declaring the document invalid.
const validateMaxDepth = 2048

// ErrNilDocument indicates that an operation was attempted on a nil *bson.Document.
var ErrNilDocument = &LogicError{Message: "document is nil"}

// ErrInvalidLength indicates that a length in a binary representation of a BSON document is invalid.
var ErrInvalidLength = &InvalidArgumentError{Message: "document length is invalid"}

// ErrInvalidKey indicates that the BSON representation of a key is missing a null terminator.
var ErrInvalidKey = &InvalidArgumentError{Message: "invalid document key"}

// ErrOutOfBounds indicates that an index provided to access something was invalid.
var ErrOutOfBounds = &InvalidArgumentError{Message: "out of bounds"}

// emptyFrame is the wire form of a document with no elements. It backs
// Documents that have no storage of their own yet and must never be written
// to.
var emptyFrame = []byte{0x05, 0x00, 0x00, 0x00, 0x00}

// storage is the buffer shared by every Document produced from the same Copy
// chain. The refs count tracks how many Documents reference buf, so a
// mutation knows whether the buffer must be cloned before it is written.
type storage struct {
	buf  []byte
	refs atomic.Int64
}

func newStorage(buf []byte) *storage {
	s := &storage{buf: buf}
	s.refs.Store(1)
	return s
}

// Document is a mutable ordered map that compactly represents a BSON
// document. The elements live in a single contiguous buffer in wire form.
//
// The zero value is an empty document ready for use. Copy shares the buffer
// between the original and the copy, and the first mutation through either
// one clones it, so copies are cheap until written to. A single Document
// value must not be mutated from multiple goroutines at once.
type Document struct {
	s *storage
}

// NewDocument creates a Document from the provided elements, in order. It
// panics if an element cannot be encoded.
func NewDocument(elems ...Element) *Document {
	doc := &Document{}
	doc.init()

	for _, elem := range elems {
		if err := doc.Append(elem.Key, elem.Value); err != nil {
			panic(err)
		}
	}

	return doc
}

// ReadDocument will create a Document using the provided slice of bytes. If
// the slice of bytes is not a valid BSON document, this method will return an
// error.
func ReadDocument(b []byte) (*Document, error) {
	var doc = new(Document)
	err := doc.UnmarshalBSON(b)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// NewDocumentFromReader will create a Document from the next BSON document in
// the provided io.Reader.
func NewDocumentFromReader(r io.Reader) (*Document, error) {
	var doc = new(Document)
	_, err := doc.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// init gives a zero Document storage of its own.
func (d *Document) init() {
	if d.s == nil {
		d.s = newStorage([]byte{0x05, 0x00, 0x00, 0x00, 0x00})
	}
}

// raw returns the document's frame without copying. Callers must not write
// to the returned slice.
func (d *Document) raw() []byte {
	if d == nil || d.s == nil {
		return emptyFrame
	}
	return d.s.buf
}

// setStorage points d at a freshly built frame, releasing its reference to
// the old storage.
func (d *Document) setStorage(buf []byte) {
	old := d.s
	d.s = newStorage(buf)
	if old != nil {
		old.refs.Add(-1)
	}
}

// ensureExclusive makes d the sole owner of its storage, cloning the buffer
// if it is currently shared. The old reference is released only after the
// clone is attached: a sharer that observes the count falling to one is
// allowed to write its buffer in place, which must not happen while the
// bytes are still being read here.
func (d *Document) ensureExclusive() {
	d.init()
	if d.s.refs.Load() == 1 {
		return
	}

	old := d.s
	d.s = newStorage(append(make([]byte, 0, len(old.buf)), old.buf...))
	old.refs.Add(-1)
}

// Copy returns a Document that shares d's underlying buffer. Whichever of
// the two is mutated first clones the buffer at that point, so neither ever
// observes changes made through the other.
func (d *Document) Copy() *Document {
	if d == nil {
		return nil
	}
	d.init()
	d.s.refs.Add(1)
	return &Document{s: d.s}
}

// Len returns the number of elements in the document.
func (d *Document) Len() int {
	var n int
	itr := d.Iterator()
	for itr.Next() {
		n++
	}
	return n
}

// Count is an alias of Len.
func (d *Document) Count() int { return d.Len() }

// Keys returns the element keys of this document, in insertion order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, 8)
	itr := d.Iterator()
	for itr.Next() {
		keys = append(keys, itr.Key())
	}
	return keys
}

// Values returns the element values of this document, in insertion order.
func (d *Document) Values() []Value {
	vals := make([]Value, 0, 8)
	itr := d.Iterator()
	for itr.Next() {
		vals = append(vals, itr.Value())
	}
	return vals
}

// Has returns whether the document contains an element with the provided
// key.
func (d *Document) Has(key string) bool {
	itr := d.Iterator()
	return itr.Find(key)
}

// Lookup returns the value for the provided key. The second return value
// reports whether the key was present, which keeps a stored null distinct
// from a missing key.
func (d *Document) Lookup(key string) (Value, bool) {
	itr := d.Iterator()
	if !itr.Find(key) {
		return Value{}, false
	}
	return itr.Value(), true
}

// LookupErr is the same as Lookup, except it returns a KeyNotFoundError when
// the key is absent.
func (d *Document) LookupErr(key string) (Value, error) {
	itr := d.Iterator()
	if !itr.Find(key) {
		if err := itr.Err(); err != nil {
			return Value{}, err
		}
		return Value{}, &KeyNotFoundError{Key: key}
	}
	return itr.Value(), nil
}

// ElementAt retrieves the element at the given index in a Document.
func (d *Document) ElementAt(index uint) (Element, error) {
	var i uint
	itr := d.Iterator()
	for itr.Next() {
		if i == index {
			return Element{Key: itr.Key(), Value: itr.Value()}, nil
		}
		i++
	}
	if err := itr.Err(); err != nil {
		return Element{}, err
	}
	return Element{}, ErrOutOfBounds
}

// Iterator creates a DocumentIterator positioned before the first element of
// this document and returns it.
func (d *Document) Iterator() *DocumentIterator {
	return newDocumentIterator(d)
}

// Append adds an element with the provided key and value to the end of the
// document, without looking at the keys already present. Appending a key the
// document already contains produces a document with duplicate keys, which
// Lookup, Set, and Delete resolve as the first occurrence.
func (d *Document) Append(key string, v Value) error {
	if d == nil {
		return ErrNilDocument
	}
	if err := checkEncodable(key, v); err != nil {
		return err
	}

	size, err := sizeValue(v)
	if err != nil {
		return err
	}
	newLen := int64(len(d.raw())) + int64(1+len(key)+1+size)
	if newLen > MaxDocumentSize {
		return &DocumentTooLargeError{Attempted: newLen}
	}

	d.ensureExclusive()
	base := len(d.s.buf) - 1
	buf, err := appendElement(d.s.buf[:base], key, v)
	if err != nil {
		d.s.buf[base] = 0x00
		return NewInternalError("element encoding failed: " + err.Error())
	}
	buf = append(buf, 0x00)
	setLength(buf)
	d.s.buf = buf
	return nil
}

// Set stores the value under the provided key. If the key is absent the
// element is appended. If the key is present and both the old and new values
// have the same fixed-width type, the value bytes are overwritten in place.
// Otherwise the document is rebuilt around the new value, leaving the
// element in its original position.
func (d *Document) Set(key string, v Value) error {
	if d == nil {
		return ErrNilDocument
	}
	if err := checkEncodable(key, v); err != nil {
		return err
	}

	itr := d.Iterator()
	if !itr.Find(key) {
		if err := itr.Err(); err != nil {
			return err
		}
		return d.Append(key, v)
	}

	if t := itr.Type(); t == v.Type() && t.FixedWidth() {
		itr.OverwriteCurrent(v)
		return nil
	}

	return d.replaceValue(itr, key, v)
}

// replaceValue rebuilds the frame with the element the iterator is
// positioned on replaced by key and v.
func (d *Document) replaceValue(itr *DocumentIterator, key string, v Value) error {
	size, err := sizeValue(v)
	if err != nil {
		return err
	}

	raw := d.raw()
	start, end := itr.span()
	newLen := int64(len(raw)) - int64(end-start) + int64(1+len(key)+1+size)
	if newLen > MaxDocumentSize {
		return &DocumentTooLargeError{Attempted: newLen}
	}

	buf := make([]byte, 0, newLen)
	buf = append(buf, raw[:start]...)
	buf, err = appendElement(buf, key, v)
	if err != nil {
		return NewInternalError("element encoding failed: " + err.Error())
	}
	buf = append(buf, raw[end:]...)
	setLength(buf)
	d.setStorage(buf)
	return nil
}

// Delete removes the first element with the provided key from the document.
// It returns whether an element was removed.
func (d *Document) Delete(key string) bool {
	if d == nil || d.s == nil {
		return false
	}

	itr := d.Iterator()
	if !itr.Find(key) {
		return false
	}

	raw := d.raw()
	start, end := itr.span()
	buf := make([]byte, 0, len(raw)-int(end-start))
	buf = append(buf, raw[:start]...)
	buf = append(buf, raw[end:]...)
	setLength(buf)
	d.setStorage(buf)
	return true
}

// Merge appends every element of other to d, by concatenating the raw
// element bytes. Keys are deliberately not deduplicated: merging documents
// that share keys produces a document with duplicate keys.
func (d *Document) Merge(other *Document) error {
	if d == nil || other == nil {
		return ErrNilDocument
	}

	oraw := other.raw()
	if len(oraw) <= 5 {
		return nil
	}
	newLen := int64(len(d.raw())) + int64(len(oraw)) - 5
	if newLen > MaxDocumentSize {
		return NewInternalError("merged document would exceed the maximum document size")
	}

	d.ensureExclusive()
	base := len(d.s.buf) - 1
	buf := append(d.s.buf[:base], oraw[4:len(oraw)-1]...)
	buf = append(buf, 0x00)
	setLength(buf)
	d.s.buf = buf
	return nil
}

// WithID returns d itself if the document already has an _id element.
// Otherwise it returns a new document with a freshly generated ObjectID _id
// element first, followed by every element of d. d is never modified.
func (d *Document) WithID() (*Document, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	if d.Has("_id") {
		return d, nil
	}

	out := NewDocument(EC.ObjectID("_id", NewObjectID()))
	if err := out.Merge(d); err != nil {
		return nil, err
	}
	return out, nil
}

// Subsequence returns a new document holding the elements in the half-open
// index range [start, end), in their original order. The source document is
// unchanged.
func (d *Document) Subsequence(start, end int) (*Document, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	if start < 0 || end < start {
		return nil, ErrOutOfBounds
	}

	raw := d.raw()
	buf := make([]byte, 0, len(raw))
	buf = append(buf, 0x00, 0x00, 0x00, 0x00)

	var idx int
	itr := d.Iterator()
	for itr.Next() {
		if idx >= start && idx < end {
			s, e := itr.span()
			buf = append(buf, raw[s:e]...)
		}
		idx++
	}
	if err := itr.Err(); err != nil {
		return nil, err
	}
	if end > idx {
		return nil, ErrOutOfBounds
	}

	buf = append(buf, 0x00)
	setLength(buf)
	return &Document{s: newStorage(buf)}, nil
}

// Prefix returns a new document holding the first n elements of d. If the
// document has fewer than n elements the whole document is returned.
func (d *Document) Prefix(n int) *Document {
	ln := d.Len()
	out, _ := d.Subsequence(0, clampRange(n, ln))
	return out
}

// Suffix returns a new document holding the last n elements of d. If the
// document has fewer than n elements the whole document is returned.
func (d *Document) Suffix(n int) *Document {
	ln := d.Len()
	out, _ := d.Subsequence(ln-clampRange(n, ln), ln)
	return out
}

// Drop returns a new document holding every element of d except the first n.
func (d *Document) Drop(n int) *Document {
	ln := d.Len()
	out, _ := d.Subsequence(clampRange(n, ln), ln)
	return out
}

func clampRange(n, ln int) int {
	if n < 0 {
		return 0
	}
	if n > ln {
		return ln
	}
	return n
}

// Reset clears the document so it can be reused.
func (d *Document) Reset() {
	d.setStorage([]byte{0x05, 0x00, 0x00, 0x00, 0x00})
}

// Equal compares this document to another, returning true if they are equal.
func (d *Document) Equal(d2 *Document) bool {
	if d == nil || d2 == nil {
		return d == d2
	}
	return bytes.Equal(d.raw(), d2.raw())
}

// Bytes returns a copy of the document's wire form.
func (d *Document) Bytes() []byte {
	raw := d.raw()
	return append(make([]byte, 0, len(raw)), raw...)
}

// Validate walks the entire frame, including embedded documents and arrays,
// and reports the first structural problem it finds.
func (d *Document) Validate() error {
	if d == nil {
		return ErrNilDocument
	}
	return validateFrame(d.raw(), 0)
}

// MarshalBSON implements the Marshaler interface.
func (d *Document) MarshalBSON() ([]byte, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	return d.Bytes(), nil
}

// UnmarshalBSON implements the Unmarshaler interface.
func (d *Document) UnmarshalBSON(b []byte) error {
	if d == nil {
		return ErrNilDocument
	}
	if err := validateFrame(b, 0); err != nil {
		return err
	}
	d.setStorage(append(make([]byte, 0, len(b)), b...))
	return nil
}

// WriteTo implements the io.WriterTo interface.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.raw())
	return int64(n), err
}

// ReadFrom will read one BSON document from the given io.Reader.
func (d *Document) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	sizeBuf := make([]byte, 4)
	n, err := io.ReadFull(r, sizeBuf)
	total += int64(n)
	if err != nil {
		return total, err
	}
	givenLength := readi32(sizeBuf)
	if givenLength < 5 {
		return total, ErrInvalidLength
	}
	b := make([]byte, givenLength)
	copy(b[0:4], sizeBuf)
	n, err = io.ReadFull(r, b[4:])
	total += int64(n)
	if err != nil {
		return total, err
	}
	err = d.UnmarshalBSON(b)
	return total, err
}

// checkEncodable rejects key/value pairs that cannot be represented on the
// wire: keys and regex components are C strings and cannot hold null bytes,
// and the zero Value has no type.
func checkEncodable(key string, v Value) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if v.IsZero() {
		return &InvalidArgumentError{Message: "value is invalid and cannot be encoded"}
	}
	if r, ok := v.RegexOK(); ok {
		if strings.IndexByte(r.Pattern, 0x00) != -1 || strings.IndexByte(r.Options, 0x00) != -1 {
			return &InvalidArgumentError{Message: "regex pattern and options cannot contain a null byte"}
		}
	}
	return nil
}

// validateFrame checks a single document frame: length prefix, element
// structure, and trailing null byte. Embedded documents, arrays, and code
// with scope values are validated recursively.
func validateFrame(b []byte, depth uint32) error {
	if depth >= validateMaxDepth {
		return &InvalidArgumentError{Message: "document exceeds the maximum allowed nesting depth"}
	}
	if len(b) < 5 {
		return ErrInvalidLength
	}
	if int64(readi32(b)) != int64(len(b)) {
		return ErrInvalidLength
	}
	if b[len(b)-1] != 0x00 {
		return &InvalidArgumentError{Message: "document is missing a null terminator"}
	}

	pos := uint32(4)
	end := uint32(len(b) - 1)
	for pos < end {
		t := Type(b[pos])
		pos++

		idx := bytes.IndexByte(b[pos:end], 0x00)
		if idx < 0 {
			return ErrInvalidKey
		}
		pos += uint32(idx) + 1

		n, err := validateElementValue(t, b, pos, end, depth)
		if err != nil {
			return err
		}
		pos += n
	}
	if pos != end {
		return ErrInvalidLength
	}
	return nil
}

// validateElementValue checks the value portion of one element, returning
// its width.
func validateElementValue(t Type, b []byte, pos, end, depth uint32) (uint32, error) {
	size, err := sizeElementValue(t, b, pos)
	if err != nil {
		return 0, err
	}
	if int64(pos)+int64(size) > int64(end) {
		return 0, ErrInvalidLength
	}

	switch t {
	case TypeString, TypeJavaScript, TypeSymbol:
		if _, _, err := elements.String.Decode(uint(pos), b); err != nil {
			return 0, &InvalidArgumentError{Message: "string value is invalid"}
		}
	case TypeEmbeddedDocument, TypeArray:
		if err := validateFrame(b[pos:pos+size], depth+1); err != nil {
			return 0, err
		}
	case TypeBinary:
		if _, _, _, err := elements.Binary.Decode(uint(pos), b); err != nil {
			return 0, &InvalidArgumentError{Message: "binary value is invalid"}
		}
	case TypeBoolean:
		if _, err := elements.Boolean.Decode(uint(pos), b); err != nil {
			return 0, &InvalidArgumentError{Message: "boolean value must be 0x00 or 0x01"}
		}
	case TypeDBPointer:
		if _, _, err := elements.String.Decode(uint(pos), b); err != nil {
			return 0, &InvalidArgumentError{Message: "dbpointer namespace is invalid"}
		}
	case TypeCodeWithScope:
		_, scope, _, err := elements.CodeWithScope.Decode(uint(pos), b)
		if err != nil {
			return 0, &InvalidArgumentError{Message: "code with scope value is invalid"}
		}
		if err := validateFrame(scope, depth+1); err != nil {
			return 0, err
		}
	}
	return size, nil
}

// setLength stamps the total frame length into the first four bytes.
func setLength(b []byte) {
	_, _ = elements.Int32.Encode(0, b, int32(len(b)))
}

func readi32(b []byte) int32 {
	_ = b[3] // bounds check hint to compiler; see golang.org/issue/14808
	return int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16 | int32(b[3])<<24
}
