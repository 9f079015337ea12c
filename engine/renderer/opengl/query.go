package opengl

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/spaghettifunk/prism/engine/resources"
)

type glQuery struct {
	handle uint32
	target uint32
}

func queryOf(q *resources.OcclusionQuery) (*glQuery, error) {
	gq, ok := q.InternalData.(*glQuery)
	if !ok {
		return nil, errors.Newf("occlusion query %d has no OpenGL object", q.ID)
	}
	return gq, nil
}

func (r *OpenGLRenderer) QueryCreate(q *resources.OcclusionQuery) error {
	gq := &glQuery{target: gl.SAMPLES_PASSED}
	if q.Binary {
		gq.target = gl.ANY_SAMPLES_PASSED
	}
	gl.CreateQueries(gq.target, 1, &gq.handle)
	if gq.handle == 0 {
		return errors.New("glCreateQueries returned no object")
	}
	q.InternalData = gq
	return nil
}

func (r *OpenGLRenderer) QueryDestroy(q *resources.OcclusionQuery) {
	gq, err := queryOf(q)
	if err != nil {
		return
	}
	gl.DeleteQueries(1, &gq.handle)
	q.InternalData = nil
}

func (r *OpenGLRenderer) QueryBegin(q *resources.OcclusionQuery) error {
	gq, err := queryOf(q)
	if err != nil {
		return err
	}
	gl.BeginQuery(gq.target, gq.handle)
	return nil
}

func (r *OpenGLRenderer) QueryEnd(q *resources.OcclusionQuery) error {
	gq, err := queryOf(q)
	if err != nil {
		return err
	}
	gl.EndQuery(gq.target)
	return nil
}

func (r *OpenGLRenderer) QueryResult(q *resources.OcclusionQuery, wait bool) (uint32, bool) {
	gq, err := queryOf(q)
	if err != nil {
		return 0, false
	}
	if !wait {
		var available uint32
		gl.GetQueryObjectuiv(gq.handle, gl.QUERY_RESULT_AVAILABLE, &available)
		if available == gl.FALSE {
			return 0, false
		}
	}
	var result uint32
	gl.GetQueryObjectuiv(gq.handle, gl.QUERY_RESULT, &result)
	return result, true
}

func (r *OpenGLRenderer) ConditionalRenderBegin(q *resources.OcclusionQuery) error {
	gq, err := queryOf(q)
	if err != nil {
		return err
	}
	gl.BeginConditionalRender(gq.handle, gl.QUERY_WAIT)
	return nil
}

func (r *OpenGLRenderer) ConditionalRenderEnd() error {
	gl.EndConditionalRender()
	return nil
}
