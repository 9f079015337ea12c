package core

import (
	"github.com/cockroachdb/errors"
)

// IdentifierPool hands out small integer ids for live objects and reuses freed slots.
// An id stays valid until it is released.
type IdentifierPool struct {
	owners []interface{}
	live   int
}

func NewIdentifierPool(capacity int) *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, 0, capacity),
	}
}

// Acquire returns a new id for owner. Ids start at 1 so that 0 can mean "none".
func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	p.live++
	for i := range p.owners {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return uint32(i) + 1
		}
	}
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners))
}

func (p *IdentifierPool) Release(id uint32) error {
	if id == 0 || int(id) > len(p.owners) {
		return errors.Newf("identifier release: id '%d' out of range (max=%d). Nothing was done", id, len(p.owners))
	}
	if p.owners[id-1] == nil {
		return errors.Wrapf(ErrReleased, "identifier release: id '%d'", id)
	}
	p.owners[id-1] = nil
	p.live--
	return nil
}

func (p *IdentifierPool) Owner(id uint32) interface{} {
	if id == 0 || int(id) > len(p.owners) {
		return nil
	}
	return p.owners[id-1]
}

// Live returns the number of ids currently held.
func (p *IdentifierPool) Live() int {
	return p.live
}

// Each calls fn for every live id in ascending order.
func (p *IdentifierPool) Each(fn func(id uint32, owner interface{})) {
	for i, o := range p.owners {
		if o != nil {
			fn(uint32(i)+1, o)
		}
	}
}
