package vm

type IntegrityLevel uint8

const (
	IntegritySealed IntegrityLevel = iota
	IntegrityFrozen
)

func (l IntegrityLevel) String() string {
	if l == IntegrityFrozen {
		return "frozen"
	}
	return "sealed"
}

// SetIntegrityLevel seals or freezes the object: no further extension and
// every own property non-configurable (and, when frozen, data properties
// read-only).
func (o *Object) SetIntegrityLevel(r *Realm, level IntegrityLevel) (bool, error) {
	if !o.PreventExtensions(r) {
		return false, nil
	}
	if level == IntegrityFrozen {
		o.shape = o.shape.Freeze()
	} else {
		o.shape = o.shape.Seal()
	}

	for _, idx := range o.array.Indices() {
		desc := PropertyDescriptor{Configurable: FlagFalse}
		if level == IntegrityFrozen {
			if p, ok := o.getOwnIndex(idx); ok && p.Attrs.IsData() {
				desc.Writable = FlagFalse
			}
		}
		if _, err := o.DefineOwnProperty(r, IndexKey(idx), desc); err != nil {
			return false, err
		}
	}
	if o.kind == KindArray && level == IntegrityFrozen {
		o.array.SetLengthWritable(false)
	}
	return true, nil
}

// TestIntegrityLevel reports whether the object is already sealed or frozen.
func (o *Object) TestIntegrityLevel(r *Realm, level IntegrityLevel) bool {
	if o.IsExtensible() {
		return false
	}
	for _, key := range o.OwnPropertyKeys(r) {
		p, ok := o.GetOwnProperty(r, key)
		if !ok {
			continue
		}
		if p.Attrs.Configurable() {
			return false
		}
		if level == IntegrityFrozen && p.Attrs.Writable() {
			return false
		}
	}
	return true
}

func (o *Object) IsSealed(r *Realm) bool { return o.TestIntegrityLevel(r, IntegritySealed) }
func (o *Object) IsFrozen(r *Realm) bool { return o.TestIntegrityLevel(r, IntegrityFrozen) }
