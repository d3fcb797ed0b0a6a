package vm

import "math"

// arraySetLength handles definitions of an array's length. A value that is
// not a valid uint32 is a RangeError. Shrinking stops at the highest
// non-configurable element; the result is then false and length is left at
// the achieved value.
func (o *Object) arraySetLength(r *Realm, desc PropertyDescriptor) (bool, error) {
	if desc.IsAccessor() || desc.Configurable == FlagTrue || desc.Enumerable == FlagTrue {
		return false, nil
	}
	writable := o.array.LengthWritable()

	if !desc.HasValue {
		if desc.Writable == FlagTrue && !writable {
			return false, nil
		}
		if desc.Writable == FlagFalse {
			o.array.SetLengthWritable(false)
		}
		return true, nil
	}

	newLen, err := r.toArrayLength(desc.Value)
	if err != nil {
		return false, err
	}
	oldLen := o.array.Length()
	if newLen == oldLen {
		if desc.Writable == FlagTrue && !writable {
			return false, nil
		}
		if desc.Writable == FlagFalse {
			o.array.SetLengthWritable(false)
		}
		return true, nil
	}
	if !writable {
		return false, nil
	}
	if newLen > oldLen {
		o.array.SetLength(newLen)
		if desc.Writable == FlagFalse {
			o.array.SetLengthWritable(false)
		}
		return true, nil
	}

	achieved := o.array.Truncate(newLen)
	if desc.Writable == FlagFalse {
		o.array.SetLengthWritable(false)
	}
	return achieved == newLen, nil
}

// toArrayLength converts v with ToUint32 and requires the conversion to be
// lossless.
func (r *Realm) toArrayLength(v Value) (uint32, error) {
	if v.IsNumber() {
		f := v.AsNumber()
		if u := ToUint32(f); float64(u) == f {
			return u, nil
		}
		return 0, r.NewRangeError("Invalid array length")
	}
	num, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	u := ToUint32(num)
	if float64(u) != num {
		return 0, r.NewRangeError("Invalid array length")
	}
	return u, nil
}

// ArrayLength reports the length of an array or the "length" property of
// any other object, clamped to uint32.
func (o *Object) ArrayLength(r *Realm) (uint32, error) {
	if o.kind == KindArray {
		return o.array.Length(), nil
	}
	v, err := o.GetValue(r, keyLength)
	if err != nil {
		return 0, err
	}
	n, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || n <= 0 {
		return 0, nil
	}
	if n >= math.MaxUint32 {
		return math.MaxUint32, nil
	}
	return uint32(n), nil
}

// Push appends values at the current length.
func (o *Object) Push(r *Realm, values ...Value) (bool, error) {
	n, err := o.ArrayLength(r)
	if err != nil {
		return false, err
	}
	for i, v := range values {
		ok, err := o.Put(r, IndexKey(n+uint32(i)), v, o.Value())
		if err != nil || !ok {
			return ok, err
		}
	}
	if o.kind != KindArray {
		return o.Put(r, keyLength, NumberValue(float64(n)+float64(len(values))), o.Value())
	}
	return true, nil
}

// Elements returns the values at 0..length-1 (holes read through Get).
func (o *Object) Elements(r *Realm) ([]Value, error) {
	n, err := o.ArrayLength(r)
	if err != nil {
		return nil, err
	}
	out := make([]Value, 0, min(n, 1024))
	for i := uint32(0); i < n; i++ {
		v, err := o.Get(r, IndexKey(i), o.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
