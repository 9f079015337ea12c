package resources

type QueryOps interface {
	QueryDestroy(query *OcclusionQuery)
}

/** @brief An occlusion query. Binary queries only report whether anything passed. */
type OcclusionQuery struct {
	RefCount
	ID     uint32
	Binary bool

	result    uint32
	available bool
	active    bool

	InternalData interface{}
}

func NewOcclusionQuery(id uint32, binary bool, ops QueryOps) *OcclusionQuery {
	q := &OcclusionQuery{ID: id, Binary: binary}
	q.init()
	q.OnDestroy(func() {
		ops.QueryDestroy(q)
		q.InternalData = nil
	})
	return q
}

// Result returns the last fetched sample count, or 0/1 for binary queries.
func (q *OcclusionQuery) Result() uint32 {
	return q.result
}

// Available reports whether Result holds a value from the GPU.
func (q *OcclusionQuery) Available() bool {
	return q.available
}

func (q *OcclusionQuery) SetResult(result uint32, available bool) {
	q.result = result
	q.available = available
}

func (q *OcclusionQuery) Active() bool {
	return q.active
}

func (q *OcclusionQuery) SetActive(active bool) {
	q.active = active
}

func (q *OcclusionQuery) Release() {
	q.drop()
}
