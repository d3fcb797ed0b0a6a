package vm

import (
	"errors"
)

// Invocation is the activation record handed to a FunctionBody. Its Args
// slice is the argument frame that mapped arguments objects alias.
type Invocation struct {
	realm     *Realm
	Callee    *Object
	Args      []Value
	NewTarget Value

	this      Value
	thisBound bool
	arguments *Object
	// strict bodies see the arguments as they were on entry
	entryArgs Frame
}

// argumentValues is a detached copy of an argument frame.
type argumentValues []Value

func (a argumentValues) ArgumentCount() int { return len(a) }

func (a argumentValues) Argument(i int) Value {
	if i >= 0 && i < len(a) {
		return a[i]
	}
	return Undefined
}

func (a argumentValues) SetArgument(i int, v Value) {
	if i >= 0 && i < len(a) {
		a[i] = v
	}
}

// This returns the receiver. In a derived constructor it is unbound until
// SuperCall completes, and reading it is a ReferenceError.
func (inv *Invocation) This() (Value, error) {
	if !inv.thisBound {
		return Undefined, inv.realm.NewReferenceError("Must call super constructor in derived class before accessing 'this' or returning from derived constructor")
	}
	return inv.this, nil
}

// IsThisBound reports whether this has been initialized.
func (inv *Invocation) IsThisBound() bool { return inv.thisBound }

// IsConstructCall reports whether the body runs under new.
func (inv *Invocation) IsConstructCall() bool { return !inv.NewTarget.IsUndefined() }

// ArgumentCount, Argument and SetArgument make the invocation a Frame.
func (inv *Invocation) ArgumentCount() int { return len(inv.Args) }

func (inv *Invocation) Argument(i int) Value {
	if i >= 0 && i < len(inv.Args) {
		return inv.Args[i]
	}
	return Undefined
}

func (inv *Invocation) SetArgument(i int, v Value) {
	if i >= 0 && i < len(inv.Args) {
		inv.Args[i] = v
	}
}

// Arguments returns the arguments object of this invocation, creating it on
// first use. Arrow functions have none and get nil. A strict body's object
// holds the values passed at call time even if parameters were reassigned
// before the first request.
func (inv *Invocation) Arguments(formals int) *Object {
	if inv.arguments != nil {
		return inv.arguments
	}
	c := inv.Callee.callable
	if c.kind == CallableArrow {
		return nil
	}
	var frame Frame = inv
	if c.strict && inv.entryArgs != nil {
		frame = inv.entryArgs
	}
	inv.arguments = inv.realm.NewArguments(frame, formals, inv.Callee.Value(), c.strict)
	return inv.arguments
}

// SuperCall runs the parent constructor of a derived class constructor with
// the same new.target and binds this to the result.
func (inv *Invocation) SuperCall(args []Value) (Value, error) {
	r := inv.realm
	c := inv.Callee.callable
	if c.kind != CallableClass || !c.derived || inv.NewTarget.IsUndefined() {
		return Undefined, r.NewSyntaxError("'super' keyword unexpected here")
	}
	parent := inv.Callee.PrototypeValue()
	if !r.IsConstructor(parent) {
		return Undefined, r.NewTypeError("Super constructor %s of anonymous class is not a constructor", r.inspect(parent))
	}
	result, err := r.Construct(parent, args, inv.NewTarget)
	if err != nil {
		return Undefined, err
	}
	if inv.thisBound {
		return Undefined, r.NewReferenceError("Super constructor may only be called once")
	}
	inv.this = result
	inv.thisBound = true
	return result, nil
}

// Call invokes fn with the given receiver and arguments.
func (r *Realm) Call(fn Value, this Value, args []Value) (Value, error) {
	obj := r.Object(fn)
	if obj == nil || obj.callable == nil {
		return Undefined, r.NewTypeError("%s is not a function", r.inspect(fn))
	}
	if len(args) > r.opts.MaxArguments {
		return Undefined, r.NewTypeError("Too many arguments in function call (only %d allowed)", r.opts.MaxArguments)
	}

	c := obj.callable
	switch c.kind {
	case CallableScript:
		if !c.strict {
			this = r.coerceThis(this)
		}
		return r.invoke(obj, &Invocation{realm: r, Callee: obj, Args: args, NewTarget: Undefined, this: this, thisBound: true})

	case CallableArrow:
		return r.invoke(obj, &Invocation{realm: r, Callee: obj, Args: args, NewTarget: Undefined, this: c.lexicalThis, thisBound: true})

	case CallableClass:
		return Undefined, r.NewTypeError("Class constructor %s cannot be invoked without 'new'", c.name)

	case CallableBound:
		return r.Call(c.target, c.boundThis, concatArgs(c.boundArgs, args))

	case CallableNative:
		return c.native(r, FunctionCall{This: this, Args: args, NewTarget: Undefined})
	}
	return Undefined, r.NewTypeError("%s is not a function", r.inspect(fn))
}

// Construct invokes fn as a constructor. newTarget defaults to fn.
func (r *Realm) Construct(fn Value, args []Value, newTarget Value) (Value, error) {
	if newTarget.IsUndefined() {
		newTarget = fn
	}
	if !r.IsConstructor(fn) {
		return Undefined, r.NewTypeError("%s is not a constructor", r.inspect(fn))
	}
	if len(args) > r.opts.MaxArguments {
		return Undefined, r.NewTypeError("Too many arguments in function call (only %d allowed)", r.opts.MaxArguments)
	}

	obj := r.Object(fn)
	c := obj.callable
	switch c.kind {
	case CallableScript:
		return r.constructBase(obj, args, newTarget)

	case CallableClass:
		if !c.derived {
			return r.constructBase(obj, args, newTarget)
		}
		return r.constructDerived(obj, args, newTarget)

	case CallableBound:
		if newTarget.Is(fn) {
			newTarget = c.target
		}
		return r.Construct(c.target, concatArgs(c.boundArgs, args), newTarget)

	case CallableNative:
		result, err := c.native(r, FunctionCall{This: Undefined, Args: args, NewTarget: newTarget})
		if err != nil {
			return Undefined, err
		}
		if !result.IsObject() {
			return Undefined, r.NewTypeError("%s did not return an object", c.name)
		}
		return result, nil
	}
	return Undefined, r.NewTypeError("%s is not a constructor", r.inspect(fn))
}

func (r *Realm) constructBase(fn *Object, args []Value, newTarget Value) (Value, error) {
	proto, err := r.PrototypeFromConstructor(newTarget, r.ObjectPrototype)
	if err != nil {
		return Undefined, err
	}
	thisObj := r.NewObjectWithProto(proto)
	inv := &Invocation{realm: r, Callee: fn, Args: args, NewTarget: newTarget, this: thisObj.Value(), thisBound: true}
	result, err := r.invoke(fn, inv)
	if err != nil {
		return Undefined, err
	}
	if result.IsObject() {
		return result, nil
	}
	return thisObj.Value(), nil
}

func (r *Realm) constructDerived(fn *Object, args []Value, newTarget Value) (Value, error) {
	inv := &Invocation{realm: r, Callee: fn, Args: args, NewTarget: newTarget, this: Undefined}
	var (
		result = Undefined
		err    error
	)
	if fn.callable.body == nil {
		_, err = inv.SuperCall(args)
	} else {
		result, err = r.invoke(fn, inv)
	}
	if err != nil {
		return Undefined, err
	}
	if !inv.thisBound {
		return Undefined, r.NewReferenceError("Must call super constructor in derived class before accessing 'this' or returning from derived constructor")
	}
	if result.IsObject() {
		return result, nil
	}
	if !result.IsUndefined() {
		return Undefined, r.NewTypeError("Derived constructors may only return object or undefined")
	}
	return inv.this, nil
}

// invoke runs a script body and stamps the callable's location onto
// exceptions passing through it.
func (r *Realm) invoke(fn *Object, inv *Invocation) (Value, error) {
	c := fn.callable
	if c.body == nil {
		return Undefined, nil
	}
	// The frame owns its registers; callers keep their slice.
	inv.Args = append([]Value(nil), inv.Args...)
	if c.strict && c.kind != CallableArrow {
		inv.entryArgs = argumentValues(append([]Value(nil), inv.Args...))
	}
	result, err := c.body.Invoke(r, inv)
	if err != nil {
		var exc *Exception
		if errors.As(err, &exc) && !c.location.IsZero() {
			loc := c.location
			if loc.Function == "" {
				loc.Function = c.name
			}
			exc.trace = append(exc.trace, loc)
		}
		return Undefined, err
	}
	return result, nil
}

// coerceThis applies the non-strict receiver rules: nullish becomes the
// global object, primitives are wrapped.
func (r *Realm) coerceThis(this Value) Value {
	if this.IsNullish() {
		return r.GlobalObject.Value()
	}
	if !this.IsObject() {
		obj, _ := r.ToObject(this)
		return obj.Value()
	}
	return this
}

// PrototypeFromConstructor reads newTarget.prototype, falling back to
// fallback when it is not an object.
func (r *Realm) PrototypeFromConstructor(newTarget Value, fallback Value) (Value, error) {
	ctor := r.Object(newTarget)
	if ctor == nil {
		return fallback, nil
	}
	proto, err := ctor.GetValue(r, keyPrototype)
	if err != nil {
		return Undefined, err
	}
	if !proto.IsObject() {
		return fallback, nil
	}
	return proto, nil
}

func concatArgs(bound, args []Value) []Value {
	if len(bound) == 0 {
		return args
	}
	out := make([]Value, 0, len(bound)+len(args))
	out = append(out, bound...)
	return append(out, args...)
}
