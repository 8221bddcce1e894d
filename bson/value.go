package bson

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"time"
)

// Value represents a BSON value.
type Value struct {
	// NOTE: The bootstrap is a small amount of space that'll be on the stack. At 15 bytes this
	// doesn't make this type any larger, since there are 7 bytes of padding and we want an int64 to
	// store small values (e.g. boolean, double, int64, etc...). The primitive property is where all
	// of the larger values go. They will use either Go primitives or the primitive types in this
	// package.
	t         Type
	bootstrap [15]byte
	primitive interface{}
}

func (v Value) string() string {
	if v.primitive != nil {
		return v.primitive.(string)
	}
	// The string will either end with a null byte or it fills the entire bootstrap space.
	idx := bytes.IndexByte(v.bootstrap[:], 0x00)
	if idx == -1 {
		idx = 15
	}
	return string(v.bootstrap[:idx])
}

func (v Value) i64() int64 {
	return int64(v.bootstrap[0]) | int64(v.bootstrap[1])<<8 | int64(v.bootstrap[2])<<16 |
		int64(v.bootstrap[3])<<24 | int64(v.bootstrap[4])<<32 | int64(v.bootstrap[5])<<40 |
		int64(v.bootstrap[6])<<48 | int64(v.bootstrap[7])<<56
}

// IsZero returns true if this value is the uninitialized Value.
func (v Value) IsZero() bool { return v.t == Type(0) }

// Type returns the BSON type of this value.
func (v Value) Type() Type { return v.t }

// IsNumber returns true if the type of v is a numeric BSON type.
func (v Value) IsNumber() bool {
	switch v.t {
	case TypeDouble, TypeInt32, TypeInt64, TypeDecimal128:
		return true
	default:
		return false
	}
}

// Interface returns the Go value of this Value as an empty interface.
//
// This method will return nil if the Value is uninitialized, otherwise it will
// return a Go primitive or one of the primitive types in this package.
func (v Value) Interface() interface{} {
	switch v.t {
	case TypeDouble:
		return v.Double()
	case TypeString:
		return v.StringValue()
	case TypeEmbeddedDocument:
		return v.Document()
	case TypeArray:
		return v.Array()
	case TypeBinary:
		return v.Binary()
	case TypeUndefined:
		return Undefined{}
	case TypeObjectID:
		return v.ObjectID()
	case TypeBoolean:
		return v.Boolean()
	case TypeDateTime:
		return v.DateTime()
	case TypeNull:
		return Null{}
	case TypeRegex:
		return v.Regex()
	case TypeDBPointer:
		return v.DBPointer()
	case TypeJavaScript:
		return v.JavaScript()
	case TypeSymbol:
		return v.Symbol()
	case TypeCodeWithScope:
		return v.CodeWithScope()
	case TypeInt32:
		return v.Int32()
	case TypeTimestamp:
		return v.Timestamp()
	case TypeInt64:
		return v.Int64()
	case TypeDecimal128:
		return v.Decimal128()
	case TypeMinKey:
		return MinKey{}
	case TypeMaxKey:
		return MaxKey{}
	default:
		return nil
	}
}

// Double returns the BSON double value the Value represents. It panics if the
// value is a BSON type other than double.
func (v Value) Double() float64 {
	if v.t != TypeDouble {
		panic(ValueTypeError{"bson.Value.Double", v.t})
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.bootstrap[0:8]))
}

// DoubleOK is the same as Double, but returns a boolean instead of panicking.
func (v Value) DoubleOK() (float64, bool) {
	if v.t != TypeDouble {
		return 0, false
	}
	return v.Double(), true
}

// StringValue returns the BSON string the Value represents. It panics if the
// value is a BSON type other than string.
//
// NOTE: This method is called StringValue to avoid it implementing the
// fmt.Stringer interface.
func (v Value) StringValue() string {
	if v.t != TypeString {
		panic(ValueTypeError{"bson.Value.StringValue", v.t})
	}
	return v.string()
}

// StringValueOK is the same as StringValue, but returns a boolean instead of
// panicking.
func (v Value) StringValueOK() (string, bool) {
	if v.t != TypeString {
		return "", false
	}
	return v.StringValue(), true
}

// Document returns the BSON embedded document value the Value represents. It
// panics if the value is a BSON type other than embedded document.
func (v Value) Document() *Document {
	if v.t != TypeEmbeddedDocument {
		panic(ValueTypeError{"bson.Value.Document", v.t})
	}
	return v.primitive.(*Document)
}

// DocumentOK is the same as Document, except it returns a boolean instead of
// panicking.
func (v Value) DocumentOK() (*Document, bool) {
	if v.t != TypeEmbeddedDocument {
		return nil, false
	}
	return v.Document(), true
}

// Array returns the BSON array value the Value represents. It panics if the
// value is a BSON type other than array.
func (v Value) Array() *Array {
	if v.t != TypeArray {
		panic(ValueTypeError{"bson.Value.Array", v.t})
	}
	return v.primitive.(*Array)
}

// ArrayOK is the same as Array, except it returns a boolean instead of
// panicking.
func (v Value) ArrayOK() (*Array, bool) {
	if v.t != TypeArray {
		return nil, false
	}
	return v.Array(), true
}

// Binary returns the BSON binary value the Value represents. It panics if the
// value is a BSON type other than binary.
func (v Value) Binary() Binary {
	if v.t != TypeBinary {
		panic(ValueTypeError{"bson.Value.Binary", v.t})
	}
	return v.primitive.(Binary)
}

// BinaryOK is the same as Binary, except it returns a boolean instead of
// panicking.
func (v Value) BinaryOK() (Binary, bool) {
	if v.t != TypeBinary {
		return Binary{}, false
	}
	return v.Binary(), true
}

// UUID returns the UUID stored in the Value as a binary value with the UUID
// subtype. It panics if the value is not a binary or the subtype is not 0x03
// or 0x04.
func (v Value) UUID() UUID {
	id, ok := v.UUIDOK()
	if !ok {
		panic(ValueTypeError{"bson.Value.UUID", v.t})
	}
	return id
}

// UUIDOK is the same as UUID, except it returns a boolean instead of
// panicking.
func (v Value) UUIDOK() (UUID, bool) {
	b, ok := v.BinaryOK()
	if !ok {
		return NilUUID, false
	}
	id, err := UUIDFromBinary(b)
	if err != nil {
		return NilUUID, false
	}
	return id, true
}

// ObjectID returns the BSON ObjectID the Value represents. It panics if the
// value is a BSON type other than ObjectID.
func (v Value) ObjectID() ObjectID {
	if v.t != TypeObjectID {
		panic(ValueTypeError{"bson.Value.ObjectID", v.t})
	}
	var oid ObjectID
	copy(oid[:], v.bootstrap[:12])
	return oid
}

// ObjectIDOK is the same as ObjectID, except it returns a boolean instead of
// panicking.
func (v Value) ObjectIDOK() (ObjectID, bool) {
	if v.t != TypeObjectID {
		return ObjectID{}, false
	}
	return v.ObjectID(), true
}

// Boolean returns the BSON boolean the Value represents. It panics if the
// value is a BSON type other than boolean.
func (v Value) Boolean() bool {
	if v.t != TypeBoolean {
		panic(ValueTypeError{"bson.Value.Boolean", v.t})
	}
	return v.bootstrap[0] == 0x01
}

// BooleanOK is the same as Boolean, except it returns a boolean instead of
// panicking.
func (v Value) BooleanOK() (bool, bool) {
	if v.t != TypeBoolean {
		return false, false
	}
	return v.Boolean(), true
}

// DateTime returns the BSON datetime the Value represents. It panics if the
// value is a BSON type other than datetime.
func (v Value) DateTime() DateTime {
	if v.t != TypeDateTime {
		panic(ValueTypeError{"bson.Value.DateTime", v.t})
	}
	return DateTime(v.i64())
}

// DateTimeOK is the same as DateTime, except it returns a boolean instead of
// panicking.
func (v Value) DateTimeOK() (DateTime, bool) {
	if v.t != TypeDateTime {
		return 0, false
	}
	return v.DateTime(), true
}

// Time returns the BSON datetime the Value represents as time.Time. It panics
// if the value is a BSON type other than datetime.
func (v Value) Time() time.Time {
	return v.DateTime().Time()
}

// TimeOK is the same as Time, except it returns a boolean instead of
// panicking.
func (v Value) TimeOK() (time.Time, bool) {
	if v.t != TypeDateTime {
		return time.Time{}, false
	}
	return v.Time(), true
}

// Regex returns the BSON regex the Value represents. It panics if the value
// is a BSON type other than regex.
func (v Value) Regex() Regex {
	if v.t != TypeRegex {
		panic(ValueTypeError{"bson.Value.Regex", v.t})
	}
	return v.primitive.(Regex)
}

// RegexOK is the same as Regex, except that it returns a boolean instead of
// panicking.
func (v Value) RegexOK() (Regex, bool) {
	if v.t != TypeRegex {
		return Regex{}, false
	}
	return v.Regex(), true
}

// DBPointer returns the BSON dbpointer the Value represents. It panics if the
// value is a BSON type other than dbpointer.
func (v Value) DBPointer() DBPointer {
	if v.t != TypeDBPointer {
		panic(ValueTypeError{"bson.Value.DBPointer", v.t})
	}
	return v.primitive.(DBPointer)
}

// DBPointerOK is the same as DBPointer, except that it returns a boolean
// instead of panicking.
func (v Value) DBPointerOK() (DBPointer, bool) {
	if v.t != TypeDBPointer {
		return DBPointer{}, false
	}
	return v.DBPointer(), true
}

// JavaScript returns the BSON JavaScript code the Value represents. It panics
// if the value is a BSON type other than JavaScript code.
func (v Value) JavaScript() JavaScript {
	if v.t != TypeJavaScript {
		panic(ValueTypeError{"bson.Value.JavaScript", v.t})
	}
	return JavaScript(v.string())
}

// JavaScriptOK is the same as JavaScript, except that it returns a boolean
// instead of panicking.
func (v Value) JavaScriptOK() (JavaScript, bool) {
	if v.t != TypeJavaScript {
		return "", false
	}
	return v.JavaScript(), true
}

// Symbol returns the BSON symbol the Value represents. It panics if the value
// is a BSON type other than symbol.
func (v Value) Symbol() Symbol {
	if v.t != TypeSymbol {
		panic(ValueTypeError{"bson.Value.Symbol", v.t})
	}
	return Symbol(v.string())
}

// SymbolOK is the same as Symbol, except that it returns a boolean instead of
// panicking.
func (v Value) SymbolOK() (Symbol, bool) {
	if v.t != TypeSymbol {
		return "", false
	}
	return v.Symbol(), true
}

// CodeWithScope returns the BSON code with scope value the Value represents.
// It panics if the value is a BSON type other than code with scope.
func (v Value) CodeWithScope() CodeWithScope {
	if v.t != TypeCodeWithScope {
		panic(ValueTypeError{"bson.Value.CodeWithScope", v.t})
	}
	return v.primitive.(CodeWithScope)
}

// CodeWithScopeOK is the same as CodeWithScope, except that it returns a
// boolean instead of panicking.
func (v Value) CodeWithScopeOK() (CodeWithScope, bool) {
	if v.t != TypeCodeWithScope {
		return CodeWithScope{}, false
	}
	return v.CodeWithScope(), true
}

// Int32 returns the BSON int32 the Value represents. It panics if the value
// is a BSON type other than int32.
func (v Value) Int32() int32 {
	if v.t != TypeInt32 {
		panic(ValueTypeError{"bson.Value.Int32", v.t})
	}
	return int32(v.bootstrap[0]) | int32(v.bootstrap[1])<<8 |
		int32(v.bootstrap[2])<<16 | int32(v.bootstrap[3])<<24
}

// Int32OK is the same as Int32, except that it returns a boolean instead of
// panicking.
func (v Value) Int32OK() (int32, bool) {
	if v.t != TypeInt32 {
		return 0, false
	}
	return v.Int32(), true
}

// Timestamp returns the BSON timestamp the Value represents. It panics if the
// value is a BSON type other than timestamp.
func (v Value) Timestamp() Timestamp {
	if v.t != TypeTimestamp {
		panic(ValueTypeError{"bson.Value.Timestamp", v.t})
	}
	return Timestamp{
		I: uint32(v.bootstrap[0]) | uint32(v.bootstrap[1])<<8 |
			uint32(v.bootstrap[2])<<16 | uint32(v.bootstrap[3])<<24,
		T: uint32(v.bootstrap[4]) | uint32(v.bootstrap[5])<<8 |
			uint32(v.bootstrap[6])<<16 | uint32(v.bootstrap[7])<<24,
	}
}

// TimestampOK is the same as Timestamp, except that it returns a boolean
// instead of panicking.
func (v Value) TimestampOK() (Timestamp, bool) {
	if v.t != TypeTimestamp {
		return Timestamp{}, false
	}
	return v.Timestamp(), true
}

// Int64 returns the BSON int64 the Value represents. It panics if the value
// is a BSON type other than int64.
func (v Value) Int64() int64 {
	if v.t != TypeInt64 {
		panic(ValueTypeError{"bson.Value.Int64", v.t})
	}
	return v.i64()
}

// Int64OK is the same as Int64, except that it returns a boolean instead of
// panicking.
func (v Value) Int64OK() (int64, bool) {
	if v.t != TypeInt64 {
		return 0, false
	}
	return v.Int64(), true
}

// Decimal128 returns the BSON decimal128 value the Value represents. It
// panics if the value is a BSON type other than decimal128.
func (v Value) Decimal128() Decimal128 {
	if v.t != TypeDecimal128 {
		panic(ValueTypeError{"bson.Value.Decimal128", v.t})
	}
	return v.primitive.(Decimal128)
}

// Decimal128OK is the same as Decimal128, except that it returns a boolean
// instead of panicking.
func (v Value) Decimal128OK() (Decimal128, bool) {
	if v.t != TypeDecimal128 {
		return Decimal128{}, false
	}
	return v.Decimal128(), true
}

// Equal compares v to v2 and returns true if they are equal.
func (v Value) Equal(v2 Value) bool {
	if v.t != v2.t {
		return false
	}
	switch v.t {
	case TypeDouble, TypeDateTime:
		return bytes.Equal(v.bootstrap[0:8], v2.bootstrap[0:8])
	case TypeString:
		return v.string() == v2.string()
	case TypeEmbeddedDocument:
		return v.Document().Equal(v2.Document())
	case TypeArray:
		return v.Array().Equal(v2.Array())
	case TypeBinary:
		return v.Binary().Equal(v2.Binary())
	case TypeUndefined:
		return true
	case TypeObjectID:
		return bytes.Equal(v.bootstrap[0:12], v2.bootstrap[0:12])
	case TypeBoolean:
		return v.bootstrap[0] == v2.bootstrap[0]
	case TypeNull:
		return true
	case TypeRegex:
		return v.Regex().Equal(v2.Regex())
	case TypeDBPointer:
		return v.DBPointer().Equal(v2.DBPointer())
	case TypeJavaScript:
		return v.JavaScript() == v2.JavaScript()
	case TypeSymbol:
		return v.Symbol() == v2.Symbol()
	case TypeCodeWithScope:
		cws, cws2 := v.CodeWithScope(), v2.CodeWithScope()
		return cws.Code == cws2.Code && cws.Scope.Equal(cws2.Scope)
	case TypeInt32:
		return v.Int32() == v2.Int32()
	case TypeTimestamp:
		return v.Timestamp().Equal(v2.Timestamp())
	case TypeInt64:
		return v.Int64() == v2.Int64()
	case TypeDecimal128:
		return v.Decimal128() == v2.Decimal128()
	case TypeMinKey, TypeMaxKey:
		return true
	default:
		return true
	}
}

// VC is a convenience variable provided for access to the ValueConstructor
// methods.
var VC ValueConstructor

// ValueConstructor is used as a namespace for value constructor functions.
type ValueConstructor struct{}

// Double constructs a BSON double Value.
func (ValueConstructor) Double(f64 float64) Value {
	v := Value{t: TypeDouble}
	binary.LittleEndian.PutUint64(v.bootstrap[0:8], math.Float64bits(f64))
	return v
}

// String constructs a BSON string Value.
func (ValueConstructor) String(str string) Value {
	return stringLikeValue(TypeString, str)
}

// Document constructs a Value from the given document. A nil document becomes
// a BSON null Value.
func (ValueConstructor) Document(d *Document) Value {
	if d == nil {
		return VC.Null()
	}
	return Value{t: TypeEmbeddedDocument, primitive: d}
}

// Array constructs a Value from the given array. A nil array becomes a BSON
// null Value.
func (ValueConstructor) Array(a *Array) Value {
	if a == nil {
		return VC.Null()
	}
	return Value{t: TypeArray, primitive: a}
}

// Binary constructs a BSON binary Value with the generic subtype.
func (ValueConstructor) Binary(data []byte) Value {
	return VC.BinaryWithSubtype(data, TypeBinaryGeneric)
}

// BinaryWithSubtype constructs a BSON binary Value with the given subtype.
func (ValueConstructor) BinaryWithSubtype(data []byte, subtype byte) Value {
	return Value{t: TypeBinary, primitive: Binary{Subtype: subtype, Data: data}}
}

// UUID constructs a BSON binary Value with the UUID subtype.
func (ValueConstructor) UUID(id UUID) Value {
	return Value{t: TypeBinary, primitive: id.Binary()}
}

// Undefined constructs a BSON undefined Value.
func (ValueConstructor) Undefined() Value {
	return Value{t: TypeUndefined}
}

// ObjectID constructs a BSON objectid Value.
func (ValueConstructor) ObjectID(oid ObjectID) Value {
	v := Value{t: TypeObjectID}
	copy(v.bootstrap[0:12], oid[:])
	return v
}

// Boolean constructs a BSON boolean Value.
func (ValueConstructor) Boolean(b bool) Value {
	v := Value{t: TypeBoolean}
	if b {
		v.bootstrap[0] = 0x01
	}
	return v
}

// DateTime constructs a BSON datetime Value from milliseconds since the Unix
// epoch.
func (ValueConstructor) DateTime(dt int64) Value {
	v := Value{t: TypeDateTime}
	binary.LittleEndian.PutUint64(v.bootstrap[0:8], uint64(dt))
	return v
}

// Time constructs a BSON datetime Value from the given time, truncated to
// millisecond precision.
func (ValueConstructor) Time(t time.Time) Value {
	return VC.DateTime(int64(NewDateTimeFromTime(t)))
}

// Null constructs a BSON null Value.
func (ValueConstructor) Null() Value {
	return Value{t: TypeNull}
}

// Regex constructs a BSON regex Value.
func (ValueConstructor) Regex(pattern, options string) Value {
	return Value{t: TypeRegex, primitive: Regex{Pattern: pattern, Options: options}}
}

// DBPointer constructs a BSON dbpointer Value.
func (ValueConstructor) DBPointer(ns string, oid ObjectID) Value {
	return Value{t: TypeDBPointer, primitive: DBPointer{DB: ns, Pointer: oid}}
}

// JavaScript constructs a BSON JavaScript code Value.
func (ValueConstructor) JavaScript(code string) Value {
	return stringLikeValue(TypeJavaScript, code)
}

// Symbol constructs a BSON symbol Value.
func (ValueConstructor) Symbol(s string) Value {
	return stringLikeValue(TypeSymbol, s)
}

// CodeWithScope constructs a BSON JavaScript code with scope Value.
func (ValueConstructor) CodeWithScope(code string, scope *Document) Value {
	return Value{t: TypeCodeWithScope, primitive: CodeWithScope{Code: code, Scope: scope}}
}

// Int32 constructs a BSON int32 Value.
func (ValueConstructor) Int32(i int32) Value {
	v := Value{t: TypeInt32}
	binary.LittleEndian.PutUint32(v.bootstrap[0:4], uint32(i))
	return v
}

// Timestamp constructs a BSON timestamp Value.
func (ValueConstructor) Timestamp(t uint32, i uint32) Value {
	v := Value{t: TypeTimestamp}
	binary.LittleEndian.PutUint32(v.bootstrap[0:4], i)
	binary.LittleEndian.PutUint32(v.bootstrap[4:8], t)
	return v
}

// Int64 constructs a BSON int64 Value.
func (ValueConstructor) Int64(i int64) Value {
	v := Value{t: TypeInt64}
	binary.LittleEndian.PutUint64(v.bootstrap[0:8], uint64(i))
	return v
}

// Decimal128 constructs a BSON decimal128 Value.
func (ValueConstructor) Decimal128(d Decimal128) Value {
	return Value{t: TypeDecimal128, primitive: d}
}

// MinKey constructs a BSON minkey Value.
func (ValueConstructor) MinKey() Value {
	return Value{t: TypeMinKey}
}

// MaxKey constructs a BSON maxkey Value.
func (ValueConstructor) MaxKey() Value {
	return Value{t: TypeMaxKey}
}

// stringLikeValue stores short strings in the bootstrap space. Strings that
// contain a null byte always go through primitive, since the bootstrap form
// is null terminated.
func stringLikeValue(t Type, str string) Value {
	v := Value{t: t}
	switch {
	case len(str) < 16 && strings.IndexByte(str, 0x00) == -1:
		copy(v.bootstrap[:], str)
	default:
		v.primitive = str
	}
	return v
}
