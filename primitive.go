// Package vdb holds the built-in scalar type names shared by the catalog,
// the conversion lattice, the function library and the resolver.
package vdb

import (
	"fmt"
	"strings"
)

// Built-in type names.  Types are identified by their canonical lowercase
// name; an array of T is written "T[]".
const (
	String     = "string"
	Char       = "char"
	Boolean    = "boolean"
	Byte       = "byte"
	Short      = "short"
	Integer    = "integer"
	Long       = "long"
	BigInteger = "biginteger"
	Float      = "float"
	Double     = "double"
	BigDecimal = "bigdecimal"
	Date       = "date"
	Time       = "time"
	Timestamp  = "timestamp"
	Object     = "object"
	Blob       = "blob"
	Clob       = "clob"
	XML        = "xml"
	Varbinary  = "varbinary"
	Geometry   = "geometry"
	JSON       = "json"
	Null       = "null"
)

const (
	IDString = iota
	IDChar
	IDBoolean
	IDByte
	IDShort
	IDInteger
	IDLong
	IDBigInteger
	IDFloat
	IDDouble
	IDBigDecimal
	IDDate
	IDTime
	IDTimestamp
	IDObject
	IDBlob
	IDClob
	IDXML
	IDVarbinary
	IDGeometry
	IDJSON
	IDNull
)

var primitives = []string{
	String,     // IDString     = 0
	Char,       // IDChar       = 1
	Boolean,    // IDBoolean    = 2
	Byte,       // IDByte       = 3
	Short,      // IDShort      = 4
	Integer,    // IDInteger    = 5
	Long,       // IDLong       = 6
	BigInteger, // IDBigInteger = 7
	Float,      // IDFloat      = 8
	Double,     // IDDouble     = 9
	BigDecimal, // IDBigDecimal = 10
	Date,       // IDDate       = 11
	Time,       // IDTime       = 12
	Timestamp,  // IDTimestamp  = 13
	Object,     // IDObject     = 14
	Blob,       // IDBlob       = 15
	Clob,       // IDClob       = 16
	XML,        // IDXML        = 17
	Varbinary,  // IDVarbinary  = 18
	Geometry,   // IDGeometry   = 19
	JSON,       // IDJSON       = 20
	Null,       // IDNull       = 21
}

var aliases = map[string]string{
	"varchar":  String,
	"int":      Integer,
	"smallint": Short,
	"tinyint":  Byte,
	"bigint":   Long,
	"real":     Float,
	"decimal":  BigDecimal,
	"numeric":  BigDecimal,
	"bool":     Boolean,
}

// Primitives returns the names of the built-in scalar types in ID order.
func Primitives() []string {
	return append([]string(nil), primitives...)
}

// LookupPrimitive returns the canonical name of a built-in type given its
// name or one of its SQL aliases.  Array types are accepted.
func LookupPrimitive(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if elem, ok := strings.CutSuffix(name, "[]"); ok {
		t, ok := LookupPrimitive(elem)
		if !ok || t == Null {
			return "", false
		}
		return ArrayOf(t), true
	}
	if t, ok := aliases[name]; ok {
		return t, true
	}
	if PrimitiveID(name) >= 0 {
		return name, true
	}
	return "", false
}

// PrimitiveID returns the ID of the named scalar type or -1.
func PrimitiveID(name string) int {
	for id, t := range primitives {
		if t == name {
			return id
		}
	}
	return -1
}

func MustLookupPrimitive(name string) string {
	t, ok := LookupPrimitive(name)
	if !ok {
		panic(fmt.Sprintf("unknown type %q", name))
	}
	return t
}

func IsArray(typ string) bool {
	return strings.HasSuffix(typ, "[]")
}

func ArrayOf(typ string) string {
	return typ + "[]"
}

// ComponentType returns the element type of an array type or typ itself
// when it is not an array.
func ComponentType(typ string) string {
	return strings.TrimSuffix(typ, "[]")
}

func IsInteger(typ string) bool {
	switch typ {
	case Byte, Short, Integer, Long, BigInteger:
		return true
	}
	return false
}

func IsFloat(typ string) bool {
	return typ == Float || typ == Double
}

func IsNumber(typ string) bool {
	return IsInteger(typ) || IsFloat(typ) || typ == BigDecimal
}

func IsTemporal(typ string) bool {
	return typ == Date || typ == Time || typ == Timestamp
}

// IsLOB reports whether values of typ are streamed rather than held inline.
func IsLOB(typ string) bool {
	switch typ {
	case Blob, Clob, XML, Geometry, JSON:
		return true
	}
	return false
}
