package field

// ValueType is the canonical name of a value type. Reflected types may
// carry names outside the predefined set; they are kept verbatim.
type ValueType string

// Canonical value types.
const (
	ValueBoolean        ValueType = "Boolean"
	ValueByte           ValueType = "Byte"
	ValueInt16          ValueType = "Int16"
	ValueInt32          ValueType = "Int32"
	ValueInt64          ValueType = "Int64"
	ValueSingle         ValueType = "Single"
	ValueDouble         ValueType = "Double"
	ValueDecimal        ValueType = "Decimal"
	ValueString         ValueType = "String"
	ValueChar           ValueType = "Char"
	ValueByteArray      ValueType = "ByteArray"
	ValueDateTime       ValueType = "DateTime"
	ValueDateTimeOffset ValueType = "DateTimeOffset"
	ValueTimeSpan       ValueType = "TimeSpan"
	ValueGuid           ValueType = "Guid"
	ValueObject         ValueType = "Object"
)

// ValueTypes lists the predefined value types.
var ValueTypes = []ValueType{
	ValueBoolean, ValueByte, ValueInt16, ValueInt32, ValueInt64,
	ValueSingle, ValueDouble, ValueDecimal, ValueString, ValueChar,
	ValueByteArray, ValueDateTime, ValueDateTimeOffset, ValueTimeSpan,
	ValueGuid, ValueObject,
}

// String implements fmt.Stringer.
func (v ValueType) String() string { return string(v) }

// IsReference reports whether values of this type are references and
// therefore nullable without an explicit nullable marker.
func (v ValueType) IsReference() bool {
	switch v {
	case ValueString, ValueByteArray, ValueObject:
		return true
	default:
		return false
	}
}

// Known reports whether v is one of the predefined value types.
func (v ValueType) Known() bool {
	for _, t := range ValueTypes {
		if t == v {
			return true
		}
	}
	return false
}

// DefaultSourceType returns the source type used for a value type when no
// declared database type exists, e.g. for reflected properties.
func DefaultSourceType(v ValueType) SourceType {
	switch v {
	case ValueBoolean:
		return Bit
	case ValueByte:
		return TinyInt
	case ValueInt16:
		return SmallInt
	case ValueInt32:
		return Int
	case ValueInt64:
		return BigInt
	case ValueSingle:
		return Real
	case ValueDouble:
		return Float
	case ValueDecimal:
		return Decimal
	case ValueString:
		return NVarChar
	case ValueChar:
		return NChar
	case ValueByteArray:
		return VarBinary
	case ValueDateTime:
		return DateTime2
	case ValueDateTimeOffset:
		return DateTimeOffset
	case ValueTimeSpan:
		return Time
	case ValueGuid:
		return UniqueIdentifier
	case ValueObject:
		return SQLVariant
	default:
		return SourceUnknown
	}
}
