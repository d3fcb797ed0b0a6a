package vm

import (
	"errors"
	"fmt"
	"strings"

	"objmodel/pkg/source"
)

// Exception is a thrown script value travelling up the Go call stack as an
// error. Protocol algorithms never create one for a plain rule violation;
// those return false.
type Exception struct {
	value   Value
	message string
	trace   []source.Location
}

func (e *Exception) Error() string {
	if len(e.trace) == 0 {
		return e.message
	}
	var sb strings.Builder
	sb.WriteString(e.message)
	for _, loc := range e.trace {
		sb.WriteString("\n    at ")
		sb.WriteString(loc.String())
	}
	return sb.String()
}

// Value returns the thrown value.
func (e *Exception) Value() Value { return e.value }

// Trace lists the script functions the exception passed through, innermost first.
func (e *Exception) Trace() []source.Location { return e.trace }

// Throw wraps an arbitrary script value as an exception.
func (r *Realm) Throw(v Value) error {
	return &Exception{value: v, message: "Uncaught " + r.describeThrown(v)}
}

// AsException unwraps err to a script exception.
func AsException(err error) (*Exception, bool) {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc, true
	}
	return nil, false
}

func (r *Realm) newError(proto Value, name, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	obj := r.NewErrorObject(proto, msg)
	return &Exception{value: obj.Value(), message: name + ": " + msg}
}

// NewErrorObject creates an Error instance with an own message.
func (r *Realm) NewErrorObject(proto Value, message string) *Object {
	obj := r.newObject(KindError, "Error", proto)
	obj.SetOwnNonEnumerable(r, keyMessage, NewString(message))
	return obj
}

func (r *Realm) NewError(format string, args ...any) error {
	return r.newError(r.ErrorPrototype, "Error", format, args...)
}

func (r *Realm) NewTypeError(format string, args ...any) error {
	return r.newError(r.TypeErrorPrototype, "TypeError", format, args...)
}

func (r *Realm) NewRangeError(format string, args ...any) error {
	return r.newError(r.RangeErrorPrototype, "RangeError", format, args...)
}

func (r *Realm) NewReferenceError(format string, args ...any) error {
	return r.newError(r.ReferenceErrorPrototype, "ReferenceError", format, args...)
}

func (r *Realm) NewSyntaxError(format string, args ...any) error {
	return r.newError(r.SyntaxErrorPrototype, "SyntaxError", format, args...)
}

// ThrowOnFalse turns a rejected protocol operation into a TypeError, the
// way strict-mode assignment and Object.defineProperty report failures.
func (r *Realm) ThrowOnFalse(ok bool, err error, format string, args ...any) error {
	if err != nil {
		return err
	}
	if !ok {
		return r.NewTypeError(format, args...)
	}
	return nil
}

// ErrorName returns the "name" seen through the thrown value's prototype
// chain, e.g. "TypeError".
func (r *Realm) ErrorName(err error) string {
	exc, ok := AsException(err)
	if !ok {
		return ""
	}
	obj := r.Object(exc.value)
	if obj == nil {
		return ""
	}
	p, _, ok := obj.FindProperty(r, keyName)
	if !ok || !p.Value.IsString() {
		return ""
	}
	return p.Value.AsString()
}

func (r *Realm) describeThrown(v Value) string {
	obj := r.Object(v)
	if obj == nil || obj.kind != KindError {
		return r.inspect(v)
	}
	name, msg := "Error", ""
	if p, _, ok := obj.FindProperty(r, keyName); ok && p.Value.IsString() {
		name = p.Value.AsString()
	}
	if p, ok := obj.GetOwnProperty(r, keyMessage); ok && p.Value.IsString() {
		msg = p.Value.AsString()
	}
	if msg == "" {
		return name
	}
	return name + ": " + msg
}
