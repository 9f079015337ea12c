package resources

// RefCount implements shared ownership for GPU objects. An object starts with one
// reference held by its creator; the last Release runs the destroy hooks once,
// newest hook first.
type RefCount struct {
	references int32
	destroyed  bool
	hooks      []func()
}

func (r *RefCount) init() {
	r.references = 1
}

func (r *RefCount) Acquire() {
	r.references++
}

func (r *RefCount) References() int32 {
	return r.references
}

func (r *RefCount) Destroyed() bool {
	return r.destroyed
}

// OnDestroy registers fn to run when the last reference is released.
func (r *RefCount) OnDestroy(fn func()) {
	r.hooks = append(r.hooks, fn)
}

// drop releases one reference and reports whether it was the last one.
func (r *RefCount) drop() bool {
	if r.destroyed || r.references <= 0 {
		return false
	}
	r.references--
	if r.references > 0 {
		return false
	}
	r.destroyed = true
	for i := len(r.hooks) - 1; i >= 0; i-- {
		r.hooks[i]()
	}
	r.hooks = nil
	return true
}
