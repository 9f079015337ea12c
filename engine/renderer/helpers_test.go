package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/null"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T) (*Driver, *null.Backend) {
	t.Helper()
	backend := null.New()
	d, err := New(backend, "test", 640, 480, core.DefaultEngineConfig().Driver)
	require.NoError(t, err)
	t.Cleanup(func() {
		if !d.closed {
			require.NoError(t, d.Shutdown())
		}
	})
	return d, backend
}

func floats(values ...float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// separateMeshBuffer builds n vertices with position, normal and uv in three buffers.
func separateMeshBuffer(n int) (*assets.CPUMeshBuffer, [3][]byte) {
	var pos, nrm, uv []float32
	for i := 0; i < n; i++ {
		f := float32(i)
		pos = append(pos, f, f+0.25, f+0.5)
		nrm = append(nrm, 0, 0, 1)
		uv = append(uv, f/float32(n), 1-f/float32(n))
	}
	data := [3][]byte{floats(pos...), floats(nrm...), floats(uv...)}
	mb := assets.NewCPUMeshBuffer()
	mb.SetAttribute(metadata.AttributePosition, assets.NewCPUBuffer(data[0]), metadata.ComponentsThree, metadata.ComponentFloat, 0, 0)
	mb.SetAttribute(metadata.AttributeNormal, assets.NewCPUBuffer(data[1]), metadata.ComponentsThree, metadata.ComponentFloat, 0, 0)
	mb.SetAttribute(metadata.AttributeTexcoord0, assets.NewCPUBuffer(data[2]), metadata.ComponentsTwo, metadata.ComponentFloat, 0, 0)
	mb.IndexCount = uint32(n)
	return mb, data
}

func sequence(from, n uint32) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = from + uint32(i)
	}
	return out
}

func setIndices(mb *assets.CPUMeshBuffer, indices []uint32, itype metadata.IndexType) []byte {
	var data []byte
	if itype == metadata.IndexType16 {
		data = make([]byte, 2*len(indices))
		for i, ix := range indices {
			binary.LittleEndian.PutUint16(data[i*2:], uint16(ix))
		}
	} else {
		data = make([]byte, 4*len(indices))
		for i, ix := range indices {
			binary.LittleEndian.PutUint32(data[i*4:], ix)
		}
	}
	mb.SetIndices(assets.NewCPUBuffer(data), itype, uint32(len(indices)))
	return data
}
