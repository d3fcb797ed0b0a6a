package vm

import "strings"

// PropertyAttributes packs a property's kind and flags into one byte. The
// zero value is AttrEmpty and means "no such property".
type PropertyAttributes uint8

const (
	AttrWritable PropertyAttributes = 1 << iota
	AttrEnumerable
	AttrConfigurable
	AttrAccessor
	attrValid
)

const (
	AttrEmpty PropertyAttributes = 0
	// AttrDefault is what plain assignment creates.
	AttrDefault = attrValid | AttrWritable | AttrEnumerable | AttrConfigurable
	// AttrNone is a data property with every flag cleared.
	AttrNone = attrValid
)

func DataAttributes(writable, enumerable, configurable bool) PropertyAttributes {
	a := attrValid
	if writable {
		a |= AttrWritable
	}
	if enumerable {
		a |= AttrEnumerable
	}
	if configurable {
		a |= AttrConfigurable
	}
	return a
}

// AccessorAttributes never carries AttrWritable; getter and setter presence
// governs writability.
func AccessorAttributes(enumerable, configurable bool) PropertyAttributes {
	a := attrValid | AttrAccessor
	if enumerable {
		a |= AttrEnumerable
	}
	if configurable {
		a |= AttrConfigurable
	}
	return a
}

func (a PropertyAttributes) IsEmpty() bool    { return a&attrValid == 0 }
func (a PropertyAttributes) IsAccessor() bool { return !a.IsEmpty() && a&AttrAccessor != 0 }
func (a PropertyAttributes) IsData() bool     { return !a.IsEmpty() && a&AttrAccessor == 0 }

func (a PropertyAttributes) Writable() bool {
	return a.IsData() && a&AttrWritable != 0
}

func (a PropertyAttributes) Enumerable() bool   { return a&AttrEnumerable != 0 }
func (a PropertyAttributes) Configurable() bool { return a&AttrConfigurable != 0 }

func (a PropertyAttributes) with(flag PropertyAttributes) PropertyAttributes {
	return a | flag
}

func (a PropertyAttributes) without(flag PropertyAttributes) PropertyAttributes {
	return a &^ flag
}

func (a PropertyAttributes) String() string {
	if a.IsEmpty() {
		return "empty"
	}
	var flags []string
	if a.Writable() {
		flags = append(flags, "w")
	}
	if a.Enumerable() {
		flags = append(flags, "e")
	}
	if a.Configurable() {
		flags = append(flags, "c")
	}
	kind := "data"
	if a.IsAccessor() {
		kind = "accessor"
	}
	return kind + "(" + strings.Join(flags, ",") + ")"
}

// Property is the resolved content of one own property: a value for data
// properties, getter/setter (Undefined when absent) for accessors.
type Property struct {
	Value  Value
	Getter Value
	Setter Value
	Attrs  PropertyAttributes
}

func dataProperty(v Value, attrs PropertyAttributes) Property {
	return Property{Value: v, Getter: Undefined, Setter: Undefined, Attrs: attrs}
}

func accessorProperty(getter, setter Value, attrs PropertyAttributes) Property {
	return Property{Value: Undefined, Getter: getter, Setter: setter, Attrs: attrs}
}

func (p Property) IsAccessor() bool { return p.Attrs.IsAccessor() }
