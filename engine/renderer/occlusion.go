package renderer

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/resources"
)

// OcclusionPending is reported by UpdateOcclusionQuery while the GPU has no result yet.
const OcclusionPending uint32 = math.MaxInt32

// CreateOcclusionQuery creates a query. Binary queries only report whether any sample passed.
func (d *Driver) CreateOcclusionQuery(binary bool) (*resources.OcclusionQuery, error) {
	q := resources.NewOcclusionQuery(0, binary, d.backend)
	q.ID = d.queries.Acquire(q)
	if err := d.backend.QueryCreate(q); err != nil {
		d.releaseID(d.queries, q.ID)
		return nil, errors.Wrap(err, "creating occlusion query")
	}
	q.OnDestroy(func() {
		// Close an open query before the backend deletes it.
		if d.activeQuery == q {
			d.activeQuery = nil
			q.SetActive(false)
			if err := d.backend.QueryEnd(q); err != nil {
				core.LogError("ending occlusion query %d on release: %s", q.ID, err)
			}
		}
		if d.conditional == q {
			d.endConditionalRender()
		}
		d.releaseID(d.queries, q.ID)
	})
	return q, nil
}

// BeginOcclusionQuery starts counting samples into q. Only one query records at a time;
// a begin while another is active is ignored.
func (d *Driver) BeginOcclusionQuery(q *resources.OcclusionQuery) error {
	if q == nil || q.Destroyed() {
		return errors.Wrap(core.ErrReleased, "occlusion query")
	}
	if d.activeQuery != nil {
		core.LogWarn("occlusion query %d still active, ignoring begin of %d", d.activeQuery.ID, q.ID)
		return nil
	}
	if err := d.backend.QueryBegin(q); err != nil {
		return err
	}
	q.SetActive(true)
	q.SetResult(0, false)
	d.activeQuery = q
	return nil
}

func (d *Driver) EndOcclusionQuery(q *resources.OcclusionQuery) error {
	if q == nil || q != d.activeQuery {
		return nil
	}
	d.activeQuery = nil
	q.SetActive(false)
	return d.backend.QueryEnd(q)
}

// UpdateOcclusionQuery fetches the result of q. Without block it returns OcclusionPending
// when the GPU has not finished yet.
func (d *Driver) UpdateOcclusionQuery(q *resources.OcclusionQuery, block bool) uint32 {
	if q == nil || q.Destroyed() || q.Active() {
		return OcclusionPending
	}
	if q.Available() {
		return q.Result()
	}
	result, ok := d.backend.QueryResult(q, block)
	if !ok {
		return OcclusionPending
	}
	if q.Binary && result > 0 {
		result = 1
	}
	q.SetResult(result, true)
	return result
}

func (d *Driver) beginConditionalRender(q *resources.OcclusionQuery) error {
	if d.conditional == q {
		return nil
	}
	if d.conditional != nil {
		d.endConditionalRender()
	}
	if err := d.backend.ConditionalRenderBegin(q); err != nil {
		return err
	}
	d.conditional = q
	return nil
}

func (d *Driver) endConditionalRender() {
	if d.conditional == nil {
		return
	}
	d.conditional = nil
	if err := d.backend.ConditionalRenderEnd(); err != nil {
		core.LogError(err.Error())
	}
}
