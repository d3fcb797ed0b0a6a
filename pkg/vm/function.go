package vm

import (
	"math"

	"objmodel/pkg/source"
)

type CallableKind uint8

const (
	CallableScript CallableKind = iota
	CallableArrow
	CallableClass
	CallableBound
	CallableNative
)

func (k CallableKind) String() string {
	switch k {
	case CallableScript:
		return "script"
	case CallableArrow:
		return "arrow"
	case CallableClass:
		return "class"
	case CallableBound:
		return "bound"
	case CallableNative:
		return "native"
	default:
		return "unknown"
	}
}

// FunctionBody is the compiled code of a script, arrow or class function.
// The interpreter provides it; the object model only invokes it.
type FunctionBody interface {
	Invoke(r *Realm, inv *Invocation) (Value, error)
}

// BodyFunc adapts a plain Go function to FunctionBody.
type BodyFunc func(r *Realm, inv *Invocation) (Value, error)

func (f BodyFunc) Invoke(r *Realm, inv *Invocation) (Value, error) { return f(r, inv) }

// NativeFunc is the entry point of a host function.
type NativeFunc func(r *Realm, call FunctionCall) (Value, error)

// FunctionCall carries the receiver and arguments of a native call.
// NewTarget is Undefined for plain calls.
type FunctionCall struct {
	This      Value
	Args      []Value
	NewTarget Value
}

// Argument returns argument i or Undefined.
func (c FunctionCall) Argument(i int) Value {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return Undefined
}

// IsConstructCall reports whether the native entry runs under new.
func (c FunctionCall) IsConstructCall() bool { return !c.NewTarget.IsUndefined() }

// Callable is the function payload of a function object. Exactly one
// variant is active, selected by kind.
type Callable struct {
	kind     CallableKind
	name     string
	body     FunctionBody
	strict   bool
	location source.Location

	lexicalThis Value // arrow

	derived bool // class

	target    Value // bound
	boundThis Value
	boundArgs []Value

	native        NativeFunc
	constructible bool
}

func (c *Callable) Kind() CallableKind        { return c.kind }
func (c *Callable) Name() string              { return c.name }
func (c *Callable) IsStrict() bool            { return c.strict }
func (c *Callable) IsDerived() bool           { return c.derived }
func (c *Callable) Location() source.Location { return c.location }
func (c *Callable) BoundTarget() Value        { return c.target }
func (c *Callable) BoundThis() Value          { return c.boundThis }
func (c *Callable) BoundArguments() []Value   { return c.boundArgs }

func (c *Callable) markChildren(visit func(Value)) {
	switch c.kind {
	case CallableArrow:
		visit(c.lexicalThis)
	case CallableBound:
		visit(c.target)
		visit(c.boundThis)
		for _, v := range c.boundArgs {
			visit(v)
		}
	}
}

// FunctionSpec describes a script-defined function.
type FunctionSpec struct {
	Name     string
	Length   int
	Body     FunctionBody
	Strict   bool
	Location source.Location
}

func (r *Realm) newFunctionObject(c *Callable, proto Value, length int) *Object {
	obj := r.newObject(KindFunction, "Function", proto)
	obj.callable = c
	obj.DefineData(r, keyLength, IntegerValue(int64(length)), DataAttributes(false, false, true))
	obj.DefineData(r, keyName, NewString(c.name), DataAttributes(false, false, true))
	return obj
}

// NewScriptFunction creates an ordinary function with a fresh prototype
// object linked back through "constructor".
func (r *Realm) NewScriptFunction(spec FunctionSpec) *Object {
	fn := r.newFunctionObject(&Callable{
		kind:     CallableScript,
		name:     spec.Name,
		body:     spec.Body,
		strict:   spec.Strict,
		location: spec.Location,
	}, r.FunctionPrototype, spec.Length)

	proto := r.NewObject()
	proto.DefineData(r, keyConstructor, fn.Value(), DataAttributes(true, false, true))
	fn.DefineData(r, keyPrototype, proto.Value(), DataAttributes(true, false, false))
	return fn
}

// NewArrowFunction creates an arrow function closing over lexicalThis. Arrow
// functions have no prototype and cannot be constructed.
func (r *Realm) NewArrowFunction(spec FunctionSpec, lexicalThis Value) *Object {
	return r.newFunctionObject(&Callable{
		kind:        CallableArrow,
		name:        spec.Name,
		body:        spec.Body,
		strict:      spec.Strict,
		location:    spec.Location,
		lexicalThis: lexicalThis,
	}, r.FunctionPrototype, spec.Length)
}

// NewClassConstructor creates a class constructor. parent is Undefined for a
// base class, a constructor for "extends C", or Null for "extends null".
// A nil body on a derived class acts as the default constructor.
func (r *Realm) NewClassConstructor(spec FunctionSpec, parent Value) (*Object, error) {
	derived := !parent.IsUndefined()
	ctorParent := r.FunctionPrototype
	protoParent := r.ObjectPrototype

	switch {
	case !derived:
	case parent.IsNull():
		protoParent = Null
	case r.IsConstructor(parent):
		ctorParent = parent
		pp, err := r.Object(parent).GetValue(r, keyPrototype)
		if err != nil {
			return nil, err
		}
		if !pp.IsObject() && !pp.IsNull() {
			return nil, r.NewTypeError("Class extends value does not have valid prototype property %s", r.inspect(pp))
		}
		protoParent = pp
	default:
		return nil, r.NewTypeError("Class extends value %s is not a constructor or null", r.inspect(parent))
	}

	ctor := r.newFunctionObject(&Callable{
		kind:     CallableClass,
		name:     spec.Name,
		body:     spec.Body,
		strict:   true,
		location: spec.Location,
		derived:  derived,
	}, ctorParent, spec.Length)

	proto := r.NewObjectWithProto(protoParent)
	proto.DefineData(r, keyConstructor, ctor.Value(), DataAttributes(true, false, true))
	ctor.DefineData(r, keyPrototype, proto.Value(), AttrNone)
	return ctor, nil
}

// NewNativeFunction wraps a host function that cannot be constructed.
func (r *Realm) NewNativeFunction(name string, length int, fn NativeFunc) *Object {
	return r.newFunctionObject(&Callable{
		kind:   CallableNative,
		name:   name,
		strict: true,
		native: fn,
	}, r.FunctionPrototype, length)
}

// NewNativeConstructor wraps a host function usable with new. The caller
// installs "prototype".
func (r *Realm) NewNativeConstructor(name string, length int, fn NativeFunc) *Object {
	return r.newFunctionObject(&Callable{
		kind:          CallableNative,
		name:          name,
		strict:        true,
		native:        fn,
		constructible: true,
	}, r.FunctionPrototype, length)
}

// BindFunction creates a bound function. Binding a bound function produces
// one record against the ultimate target; the innermost this and the
// concatenated arguments win.
func (r *Realm) BindFunction(target Value, this Value, args []Value) (*Object, error) {
	tobj := r.Object(target)
	if tobj == nil || tobj.callable == nil {
		return nil, r.NewTypeError("Bind must be called on a function")
	}

	name, length, err := r.boundNameAndLength(tobj, len(args))
	if err != nil {
		return nil, err
	}

	c := &Callable{
		kind:      CallableBound,
		name:      "bound " + name,
		strict:    true,
		target:    target,
		boundThis: this,
		boundArgs: append([]Value(nil), args...),
	}
	if inner := tobj.callable; inner.kind == CallableBound {
		c.target = inner.target
		c.boundThis = inner.boundThis
		c.boundArgs = append(append([]Value(nil), inner.boundArgs...), args...)
	}
	return r.newFunctionObject(c, tobj.PrototypeValue(), length), nil
}

func (r *Realm) boundNameAndLength(target *Object, bound int) (string, int, error) {
	length := 0
	if target.HasOwnProperty(r, keyLength) {
		lv, err := target.GetValue(r, keyLength)
		if err != nil {
			return "", 0, err
		}
		if lv.IsNumber() {
			if n := lv.AsNumber(); !math.IsNaN(n) {
				length = max(0, int(max(min(n, 1<<31), -1))-bound)
			}
		}
	}
	nv, err := target.GetValue(r, keyName)
	if err != nil {
		return "", 0, err
	}
	name := ""
	if nv.IsString() {
		name = nv.AsString()
	}
	return name, length, nil
}

// IsCallable reports whether v is a function object.
func (r *Realm) IsCallable(v Value) bool {
	obj := r.Object(v)
	return obj != nil && obj.callable != nil
}

// IsConstructor reports whether v can be used with new.
func (r *Realm) IsConstructor(v Value) bool {
	obj := r.Object(v)
	if obj == nil || obj.callable == nil {
		return false
	}
	c := obj.callable
	switch c.kind {
	case CallableScript, CallableClass:
		return true
	case CallableBound:
		return r.IsConstructor(c.target)
	case CallableNative:
		return c.constructible
	default:
		return false
	}
}

// FunctionName returns the callable's intrinsic name.
func (r *Realm) FunctionName(v Value) string {
	if obj := r.Object(v); obj != nil && obj.callable != nil {
		return obj.callable.name
	}
	return ""
}
