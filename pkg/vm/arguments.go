package vm

// Frame is the view of a call's argument registers that an arguments object
// aliases. The interpreter owns the registers; the binding reads and writes
// through this interface.
type Frame interface {
	ArgumentCount() int
	Argument(i int) Value
	SetArgument(i int, v Value)
}

type argumentsState uint8

const (
	argumentsLazy argumentsState = iota
	argumentsMaterialized
)

// ArgumentsBinding is the payload of an arguments object.
//
// A lazy binding has no element storage: indices below the argument count
// read straight from the frame. The first structural change copies the
// values into storage (materialization, one way). Non-strict bindings keep
// index i mapped to the frame while bit i is set; strict bindings are
// materialized at creation and never mapped.
type ArgumentsBinding struct {
	frame   Frame
	argc    int
	formals int
	mapped  []uint64
	strict  bool
	state   argumentsState
	callee  Value
}

// NewArguments creates the arguments object of an invocation. formals is
// the number of declared parameters; callee is the function being run.
func (r *Realm) NewArguments(frame Frame, formals int, callee Value, strict bool) *Object {
	obj := r.newObject(KindArguments, "Arguments", r.ObjectPrototype)
	argc := frame.ArgumentCount()
	b := &ArgumentsBinding{
		frame:   frame,
		argc:    argc,
		formals: formals,
		strict:  strict,
		callee:  callee,
	}
	obj.arguments = b

	obj.DefineData(r, keyLength, IntegerValue(int64(argc)), DataAttributes(true, false, true))
	if strict {
		b.materialize(r, obj)
		thrower := r.ThrowTypeErrorFunc
		obj.DefineAccessor(r, keyCallee, thrower, thrower, AccessorAttributes(false, false))
		obj.DefineAccessor(r, keyCaller, thrower, thrower, AccessorAttributes(false, false))
		return obj
	}

	n := min(argc, formals)
	if n > 0 {
		b.mapped = make([]uint64, (n+63)/64)
		for i := 0; i < n; i++ {
			b.mapped[i/64] |= 1 << (i % 64)
		}
	}
	obj.DefineData(r, keyCallee, callee, DataAttributes(true, false, true))
	return obj
}

func (b *ArgumentsBinding) IsStrict() bool       { return b.strict }
func (b *ArgumentsBinding) IsMaterialized() bool { return b.state == argumentsMaterialized }
func (b *ArgumentsBinding) ArgumentCount() int   { return b.argc }

// IsMapped reports whether index i still aliases the frame.
func (b *ArgumentsBinding) IsMapped(i uint32) bool {
	if int64(i) >= int64(len(b.mapped))*64 {
		return false
	}
	return b.mapped[i/64]&(1<<(i%64)) != 0
}

func (b *ArgumentsBinding) unmap(i uint32) {
	if b.IsMapped(i) {
		b.mapped[i/64] &^= 1 << (i % 64)
	}
}

func (b *ArgumentsBinding) materialize(r *Realm, o *Object) {
	if b.state == argumentsMaterialized {
		return
	}
	for i := 0; i < b.argc; i++ {
		v := b.frame.Argument(i)
		r.heap.recordStore(o.ref, v)
		o.array.Set(uint32(i), dataProperty(v, AttrDefault))
	}
	b.state = argumentsMaterialized
	r.log.Debug().Int("argc", b.argc).Bool("strict", b.strict).Msg("arguments materialized")
}

func (b *ArgumentsBinding) getIndex(o *Object, idx uint32) (Property, bool) {
	if b.state == argumentsLazy {
		if int64(idx) < int64(b.argc) {
			return dataProperty(b.frame.Argument(int(idx)), AttrDefault), true
		}
		return o.array.Get(idx)
	}
	p, ok := o.array.Get(idx)
	if ok && b.IsMapped(idx) && p.Attrs.IsData() {
		p.Value = b.frame.Argument(int(idx))
	}
	return p, ok
}

func (b *ArgumentsBinding) defineIndex(r *Realm, o *Object, idx uint32, desc PropertyDescriptor) bool {
	// Plain assignment to a mapped index stays lazy.
	if b.state == argumentsLazy && desc.isValueOnly() && b.IsMapped(idx) {
		b.frame.SetArgument(int(idx), desc.Value)
		r.heap.recordStore(o.ref, desc.Value)
		return true
	}

	b.materialize(r, o)
	mapped := b.IsMapped(idx)
	applied := desc
	if mapped && desc.IsData() && !desc.HasValue && desc.Writable == FlagFalse {
		applied.Value = b.frame.Argument(int(idx))
		applied.HasValue = true
	}
	if !o.ordinaryDefine(r, IndexKey(idx), applied) {
		return false
	}
	if mapped {
		if desc.IsAccessor() {
			b.unmap(idx)
		} else {
			if desc.HasValue {
				b.frame.SetArgument(int(idx), desc.Value)
			}
			if desc.Writable == FlagFalse {
				b.unmap(idx)
			}
		}
	}
	return true
}

func (b *ArgumentsBinding) deleteIndex(r *Realm, o *Object, idx uint32) bool {
	b.materialize(r, o)
	if !o.array.Delete(idx) {
		return false
	}
	b.unmap(idx)
	return true
}

func (b *ArgumentsBinding) markChildren(visit func(Value)) {
	visit(b.callee)
	for i := 0; i < b.argc; i++ {
		if b.state == argumentsLazy || b.IsMapped(uint32(i)) {
			visit(b.frame.Argument(i))
		}
	}
}
