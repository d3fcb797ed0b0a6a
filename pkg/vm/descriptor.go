package vm

// Flag is a tri-state descriptor field: absent, false or true.
type Flag uint8

const (
	FlagNotSet Flag = iota
	FlagFalse
	FlagTrue
)

func ToFlag(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

func (f Flag) IsSet() bool { return f != FlagNotSet }
func (f Flag) Bool() bool  { return f == FlagTrue }

// PropertyDescriptor is the partial property record used by define
// operations. Absent fields leave the current property untouched.
type PropertyDescriptor struct {
	Value    Value
	HasValue bool
	Getter   Value
	HasGet   bool
	Setter   Value
	HasSet   bool

	Writable     Flag
	Enumerable   Flag
	Configurable Flag
}

func (d PropertyDescriptor) IsAccessor() bool { return d.HasGet || d.HasSet }
func (d PropertyDescriptor) IsData() bool     { return d.HasValue || d.Writable.IsSet() }
func (d PropertyDescriptor) IsGeneric() bool  { return !d.IsAccessor() && !d.IsData() }

// isEmpty reports a descriptor without any field.
func (d PropertyDescriptor) isEmpty() bool {
	return d.IsGeneric() && !d.Enumerable.IsSet() && !d.Configurable.IsSet()
}

// isValueOnly is the shape of a plain assignment: only [[Value]] present.
func (d PropertyDescriptor) isValueOnly() bool {
	return d.HasValue && !d.IsAccessor() && !d.Writable.IsSet() && !d.Enumerable.IsSet() && !d.Configurable.IsSet()
}

// DataDescriptor is a complete data descriptor.
func DataDescriptor(v Value, writable, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Value:        v,
		HasValue:     true,
		Writable:     ToFlag(writable),
		Enumerable:   ToFlag(enumerable),
		Configurable: ToFlag(configurable),
	}
}

// AccessorDescriptor is a complete accessor descriptor; pass Undefined for a
// missing half.
func AccessorDescriptor(getter, setter Value, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Getter:       getter,
		HasGet:       true,
		Setter:       setter,
		HasSet:       true,
		Enumerable:   ToFlag(enumerable),
		Configurable: ToFlag(configurable),
	}
}

// DescriptorFromProperty returns the complete descriptor of an existing property.
func DescriptorFromProperty(p Property) PropertyDescriptor {
	if p.Attrs.IsAccessor() {
		return AccessorDescriptor(p.Getter, p.Setter, p.Attrs.Enumerable(), p.Attrs.Configurable())
	}
	return DataDescriptor(p.Value, p.Attrs.Writable(), p.Attrs.Enumerable(), p.Attrs.Configurable())
}

// Equal compares field presence and values with SameValue.
func (d PropertyDescriptor) Equal(o PropertyDescriptor) bool {
	if d.HasValue != o.HasValue || d.HasGet != o.HasGet || d.HasSet != o.HasSet {
		return false
	}
	if d.Writable != o.Writable || d.Enumerable != o.Enumerable || d.Configurable != o.Configurable {
		return false
	}
	if d.HasValue && !d.Value.Is(o.Value) {
		return false
	}
	if d.HasGet && !d.Getter.Is(o.Getter) {
		return false
	}
	if d.HasSet && !d.Setter.Is(o.Setter) {
		return false
	}
	return true
}

// ToPropertyDescriptor reads a descriptor object. Fields are read in the
// order enumerable, configurable, value, writable, get, set; getters on the
// descriptor object run and may throw.
func (r *Realm) ToPropertyDescriptor(v Value) (PropertyDescriptor, error) {
	var d PropertyDescriptor
	obj := r.Object(v)
	if obj == nil {
		return d, r.NewTypeError("Property description must be an object: %s", r.inspect(v))
	}

	// Each field read is its own access site; descriptor literals tend to
	// share shapes, so the realm keeps one inline cache per field.
	sites := &r.descriptorSites
	readValue := func(key PropertyKey, site *PropInlineCache) (Value, bool, error) {
		if !obj.HasProperty(r, key) {
			return Undefined, false, nil
		}
		val, err := obj.GetCached(r, key, site)
		if err != nil {
			return Undefined, false, err
		}
		return val, true, nil
	}
	readFlag := func(key PropertyKey, site *PropInlineCache) (Flag, error) {
		val, ok, err := readValue(key, site)
		if !ok || err != nil {
			return FlagNotSet, err
		}
		return ToFlag(ToBoolean(val)), nil
	}

	var err error
	if d.Enumerable, err = readFlag(keyEnumerable, &sites[0]); err != nil {
		return d, err
	}
	if d.Configurable, err = readFlag(keyConfigurable, &sites[1]); err != nil {
		return d, err
	}
	if d.Value, d.HasValue, err = readValue(keyValue, &sites[2]); err != nil {
		return d, err
	}
	if d.Writable, err = readFlag(keyWritable, &sites[3]); err != nil {
		return d, err
	}
	if d.Getter, d.HasGet, err = readValue(keyGet, &sites[4]); err != nil {
		return d, err
	}
	if d.HasGet && !d.Getter.IsUndefined() && !r.IsCallable(d.Getter) {
		return d, r.NewTypeError("Getter must be a function: %s", r.inspect(d.Getter))
	}
	if d.Setter, d.HasSet, err = readValue(keySet, &sites[5]); err != nil {
		return d, err
	}
	if d.HasSet && !d.Setter.IsUndefined() && !r.IsCallable(d.Setter) {
		return d, r.NewTypeError("Setter must be a function: %s", r.inspect(d.Setter))
	}
	if d.IsAccessor() && d.IsData() {
		return d, r.NewTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
	}
	return d, nil
}

// FromPropertyDescriptor builds the plain object form of d. Only present
// fields are written.
func (r *Realm) FromPropertyDescriptor(d PropertyDescriptor) Value {
	obj := r.NewObject()
	if d.HasValue {
		obj.SetOwn(r, keyValue, d.Value)
	}
	if d.Writable.IsSet() {
		obj.SetOwn(r, keyWritable, BooleanValue(d.Writable.Bool()))
	}
	if d.HasGet {
		obj.SetOwn(r, keyGet, d.Getter)
	}
	if d.HasSet {
		obj.SetOwn(r, keySet, d.Setter)
	}
	if d.Enumerable.IsSet() {
		obj.SetOwn(r, keyEnumerable, BooleanValue(d.Enumerable.Bool()))
	}
	if d.Configurable.IsSet() {
		obj.SetOwn(r, keyConfigurable, BooleanValue(d.Configurable.Bool()))
	}
	return obj.Value()
}

var (
	keyValue        = StringKey("value")
	keyWritable     = StringKey("writable")
	keyEnumerable   = StringKey("enumerable")
	keyConfigurable = StringKey("configurable")
	keyGet          = StringKey("get")
	keySet          = StringKey("set")
)
