package vm

import "unicode/utf16"

// String wrapper objects expose one read-only, enumerable property per UTF-16
// code unit plus a read-only length. Neither lives in storage.

// CodeUnitString renders one UTF-16 code unit as a string.
func CodeUnitString(u uint16) string {
	if utf16.IsSurrogate(rune(u)) {
		// Lone surrogates have no UTF-8 form; keep the replacement rune.
		return string(utf16.DecodeRune(rune(u), 0))
	}
	return string(rune(u))
}

// stringDefine reconciles a define against a virtual string property. The
// second result is false when key is not one of them.
func (o *Object) stringDefine(r *Realm, key PropertyKey, desc PropertyDescriptor) (bool, bool) {
	virtual := key == keyLength || (key.IsIndex() && int64(key.Index()) < int64(len(o.units)))
	if !virtual {
		return false, false
	}
	current, _ := o.GetOwnProperty(r, key)
	_, ok := validateAndApply(current, true, desc, o.shape.extensible)
	return ok, true
}

// StringLength is the code unit count of a String wrapper.
func (o *Object) StringLength() int {
	return len(o.units)
}
