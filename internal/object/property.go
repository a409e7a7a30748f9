package object

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/gridstage/internal/core"
)

// ErrPropertyType is returned when a property is read as the wrong type.
var ErrPropertyType = errors.New("object: property type mismatch")

// PropertyName is the closed set of property names used by the core.
type PropertyName string

// Property names emitted by core types.
const (
	PropTag            PropertyName = "tag"
	PropDirection      PropertyName = "direction"
	PropPosition       PropertyName = "position"
	PropRotation       PropertyName = "rotation"
	PropActive         PropertyName = "active"
	PropState          PropertyName = "state"
	PropCollisionGroup PropertyName = "collisionGroup"
	PropCollisionID    PropertyName = "collisionId"
	PropObstacle       PropertyName = "obstacle"
	PropSpeed          PropertyName = "speed"
	PropTimescale      PropertyName = "timescale"
	PropCentre         PropertyName = "centre"
	PropSize           PropertyName = "size"
	PropVisible        PropertyName = "visible"
	PropFrozen         PropertyName = "frozen"
)

// Kind discriminates the value stored in a Property.
type Kind uint8

// Property value kinds.
const (
	KindBool Kind = iota
	KindInt
	KindUint
	KindFloat
	KindDouble
	KindString
	KindVector2f
	KindVector2i
	KindIndex
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindVector2f:
		return "Vector2f"
	case KindVector2i:
		return "Vector2i"
	case KindIndex:
		return "Index"
	case KindObject:
		return "Object"
	default:
		return "unknown"
	}
}

// Value lists the Go types a Property can hold.
type Value interface {
	bool | int | uint | float32 | float64 | string |
		core.Vector2f | core.Vector2i | core.Index | *Object
}

// Property is a named, typed value and the payload of change notifications.
type Property struct {
	name  PropertyName
	kind  Kind
	value any
}

// NewProperty creates a property holding v.
func NewProperty[T Value](name PropertyName, v T) Property {
	return Property{name: name, kind: kindOf(any(v)), value: v}
}

func kindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int:
		return KindInt
	case uint:
		return KindUint
	case float32:
		return KindFloat
	case float64:
		return KindDouble
	case string:
		return KindString
	case core.Vector2f:
		return KindVector2f
	case core.Vector2i:
		return KindVector2i
	case core.Index:
		return KindIndex
	default:
		return KindObject
	}
}

// Name returns the property name.
func (p Property) Name() PropertyName {
	return p.name
}

// Kind returns the stored value's kind.
func (p Property) Kind() Kind {
	return p.kind
}

// Raw returns the stored value without type checking.
func (p Property) Raw() any {
	return p.value
}

// Get returns the value as T or ErrPropertyType.
func Get[T Value](p Property) (T, error) {
	v, ok := p.value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q holds %s, requested %T", ErrPropertyType, p.name, p.kind, zero)
	}
	return v, nil
}

// MustGet returns the value as T and panics on a type mismatch.
func MustGet[T Value](p Property) T {
	v, err := Get[T](p)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns a string representation of the property.
func (p Property) String() string {
	return fmt.Sprintf("%s(%s)=%v", p.name, p.kind, p.value)
}
