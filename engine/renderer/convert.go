package renderer

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

/** @brief How CPU attribute data is arranged into GPU buffers during conversion. */
type PackingPolicy int

const (
	/** @brief One GPU buffer per distinct source buffer, keeping strides and relative offsets. */
	PackingMirrorLayout PackingPolicy = iota
	/** @brief All attributes interleaved into one vertex buffer, indices in their own buffer. */
	PackingInterleaveAttributes
	/** @brief Like PackingInterleaveAttributes with the indices appended to the vertex buffer. */
	PackingInterleaveAll
)

func (p PackingPolicy) String() string {
	switch p {
	case PackingMirrorLayout:
		return "mirror"
	case PackingInterleaveAttributes:
		return "interleave-attributes"
	case PackingInterleaveAll:
		return "interleave-all"
	}
	return "unknown"
}

func (p PackingPolicy) validate() error {
	switch p {
	case PackingMirrorLayout, PackingInterleaveAttributes, PackingInterleaveAll:
		return nil
	}
	return errors.Wrapf(core.ErrUnsupportedPacking, "policy %d", p)
}

func ParsePackingPolicy(s string) (PackingPolicy, error) {
	switch s {
	case "mirror":
		return PackingMirrorLayout, nil
	case "interleave-attributes":
		return PackingInterleaveAttributes, nil
	case "interleave-all":
		return PackingInterleaveAll, nil
	}
	return -1, errors.Wrapf(core.ErrUnsupportedPacking, "%q", s)
}

/** @brief A CPU mesh buffer that was left out of a converted mesh. */
type SkippedMeshBuffer struct {
	Index int
	Err   error
}

type ConversionReport struct {
	Converted int
	Skipped   []SkippedMeshBuffer
}

// CreateGPUMeshFromCPU converts every mesh buffer of cpu under policy. Mesh buffers that
// fail validation are logged, listed in the report and skipped. An unsupported policy
// is rejected before any mesh buffer is looked at and returns a nil mesh.
func (d *Driver) CreateGPUMeshFromCPU(cpu *assets.CPUMesh, policy PackingPolicy) (*resources.Mesh, *ConversionReport, error) {
	report := &ConversionReport{}
	if cpu == nil {
		return nil, report, errors.New("nil cpu mesh")
	}
	if err := policy.validate(); err != nil {
		core.LogError("mesh %q: %s", cpu.Name, err)
		return nil, report, err
	}

	out := resources.NewMesh(cpu.Name)
	for i, src := range cpu.Buffers {
		mb, err := d.CreateGPUMeshBufferFromCPU(src, policy)
		if err != nil {
			core.LogError("mesh %q: skipping mesh buffer %d: %s", cpu.Name, i, err)
			report.Skipped = append(report.Skipped, SkippedMeshBuffer{Index: i, Err: err})
			continue
		}
		out.AddMeshBuffer(mb)
		report.Converted++
	}
	return out, report, nil
}

// CreateGPUMeshBufferFromCPU converts a single mesh buffer. The source is never modified.
func (d *Driver) CreateGPUMeshBufferFromCPU(src *assets.CPUMeshBuffer, policy PackingPolicy) (*resources.MeshBuffer, error) {
	if src == nil {
		return nil, errors.Wrap(core.ErrEmptyMeshBuffer, "nil mesh buffer")
	}
	if err := policy.validate(); err != nil {
		return nil, err
	}
	a, err := analyzeMeshBuffer(src)
	if err != nil {
		return nil, err
	}

	format, err := d.CreateVertexFormat()
	if err != nil {
		return nil, err
	}
	// the mesh buffer takes its own reference
	defer format.Release()

	var indexOffset uint64
	switch policy {
	case PackingMirrorLayout:
		err = d.mirrorLayout(format, a)
	case PackingInterleaveAttributes, PackingInterleaveAll:
		indexOffset, err = d.interleave(format, a, policy == PackingInterleaveAll)
	}
	if err != nil {
		return nil, err
	}

	mb := resources.NewMeshBuffer(resources.MeshBufferDesc{
		Primitive:         src.Primitive,
		IndexType:         a.indexType,
		IndexCount:        src.IndexCount,
		BaseVertex:        0,
		BaseInstance:      src.BaseInstance,
		InstanceCount:     src.InstanceCount,
		IndexBufferOffset: indexOffset,
		IndexMinBound:     0,
		IndexMaxBound:     a.maxBound,
	}, format)
	mb.SetBoundingBox(src.ComputeBoundingBox())
	mb.SetMaterial(src.Material)
	return mb, nil
}

type analyzedAttribute struct {
	id      metadata.VertexAttributeID
	mapping assets.AttributeMapping
	size    uint32
	stride  uint32
	// binding is the position in meshAnalysis.attributes of the first attribute reading the same buffer
	binding int
}

type meshAnalysis struct {
	attributes []analyzedAttribute
	// firstVertex is the first source vertex any index references, base vertex included
	firstVertex uint64
	// maxBound is the largest index after rebasing on firstVertex
	maxBound uint32
	// indexType and indices describe the rebased index data, unknown and nil when not indexed
	indexType metadata.IndexType
	indices   []byte
}

func analyzeMeshBuffer(src *assets.CPUMeshBuffer) (*meshAnalysis, error) {
	a := &meshAnalysis{}
	for i, m := range src.Attributes {
		if !m.InUse() {
			continue
		}
		id := metadata.VertexAttributeID(i)
		size := m.Size()
		if size == metadata.InvalidAttributeSize {
			return nil, errors.Wrapf(core.ErrInvalidAttributeSpec, "attribute %d: %s x %d", id, m.Type, m.Components)
		}
		at := analyzedAttribute{id: id, mapping: m, size: size, stride: m.EffectiveStride(), binding: len(a.attributes)}
		for k, prev := range a.attributes {
			if prev.mapping.Buffer == m.Buffer {
				at.binding = k
				break
			}
		}
		a.attributes = append(a.attributes, at)
	}
	if len(a.attributes) == 0 {
		return nil, errors.Wrap(core.ErrEmptyMeshBuffer, "no vertex attributes")
	}
	if src.IndexCount == 0 {
		return nil, errors.Wrap(core.ErrEmptyMeshBuffer, "index count is 0")
	}

	if src.Indices != nil && src.IndexType == metadata.IndexTypeUnknown {
		return nil, errors.Wrap(core.ErrInvalidIndexType, "index buffer without index type")
	}
	if src.Indexed() {
		if err := a.analyzeIndices(src); err != nil {
			return nil, err
		}
		return a, nil
	}

	last := int64(src.BaseVertex) + int64(src.IndexCount) - 1
	if src.BaseVertex < 0 {
		return nil, errors.Wrapf(core.ErrIndexOutOfBounds, "negative base vertex %d", src.BaseVertex)
	}
	if err := a.checkBounds(uint64(last)); err != nil {
		return nil, err
	}
	a.firstVertex = uint64(src.BaseVertex)
	a.maxBound = src.IndexCount - 1
	return a, nil
}

func (a *meshAnalysis) analyzeIndices(src *assets.CPUMeshBuffer) error {
	raw := src.IndexBytes()
	if raw == nil {
		return errors.Wrapf(core.ErrIndexOutOfBounds, "index buffer holds fewer than %d indices", src.IndexCount)
	}
	minIx, maxIx := ^uint32(0), uint32(0)
	for i := uint32(0); i < src.IndexCount; i++ {
		ix := readIndex(raw, src.IndexType, i)
		minIx = min(minIx, ix)
		maxIx = max(maxIx, ix)
	}

	first := int64(minIx) + int64(src.BaseVertex)
	if first < 0 {
		return errors.Wrapf(core.ErrIndexOutOfBounds, "vertex %d is negative", first)
	}
	if err := a.checkBounds(uint64(int64(maxIx) + int64(src.BaseVertex))); err != nil {
		return err
	}

	a.firstVertex = uint64(first)
	a.maxBound = maxIx - minIx
	if a.maxBound < 0x10000 {
		a.indexType = metadata.IndexType16
	} else {
		a.indexType = metadata.IndexType32
	}

	if a.indexType == src.IndexType && minIx == 0 {
		a.indices = append([]byte(nil), raw...)
		return nil
	}
	a.indices = make([]byte, uint64(src.IndexCount)*uint64(a.indexType.Size()))
	for i := uint32(0); i < src.IndexCount; i++ {
		ix := readIndex(raw, src.IndexType, i) - minIx
		if a.indexType == metadata.IndexType16 {
			binary.LittleEndian.PutUint16(a.indices[i*2:], uint16(ix))
		} else {
			binary.LittleEndian.PutUint32(a.indices[i*4:], ix)
		}
	}
	return nil
}

// checkBounds verifies that vertex last lies inside every attribute's source buffer.
func (a *meshAnalysis) checkBounds(last uint64) error {
	for _, at := range a.attributes {
		end := at.mapping.Offset + last*uint64(at.stride) + uint64(at.size)
		if end > at.mapping.Buffer.Size() {
			return errors.Wrapf(core.ErrIndexOutOfBounds, "attribute %d: vertex %d ends at byte %d past buffer size %d", at.id, last, end, at.mapping.Buffer.Size())
		}
	}
	return nil
}

func readIndex(raw []byte, itype metadata.IndexType, i uint32) uint32 {
	if itype == metadata.IndexType16 {
		return uint32(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return binary.LittleEndian.Uint32(raw[i*4:])
}

func (d *Driver) createIndexBuffer(format *resources.VertexFormat, a *meshAnalysis) error {
	if a.indices == nil {
		return nil
	}
	ib, err := d.CreateFilledDeviceLocalBuffer(a.indices)
	if err != nil {
		return err
	}
	format.SetIndexBuffer(ib)
	ib.Release()
	return nil
}

// mirrorLayout copies the referenced window of every distinct source buffer.
func (d *Driver) mirrorLayout(format *resources.VertexFormat, a *meshAnalysis) error {
	if err := d.createIndexBuffer(format, a); err != nil {
		return err
	}

	n := len(a.attributes)
	windowMin := make([]uint64, n)
	windowMax := make([]uint64, n)
	for i, at := range a.attributes {
		lo := at.mapping.Offset + a.firstVertex*uint64(at.stride)
		hi := lo + uint64(a.maxBound)*uint64(at.stride) + uint64(at.size)
		if at.binding == i {
			windowMin[i], windowMax[i] = lo, hi
			continue
		}
		windowMin[at.binding] = min(windowMin[at.binding], lo)
		windowMax[at.binding] = max(windowMax[at.binding], hi)
	}

	gpu := make([]*resources.Buffer, n)
	defer func() {
		for _, b := range gpu {
			if b != nil {
				b.Release()
			}
		}
	}()
	for i, at := range a.attributes {
		if at.binding == i {
			window := at.mapping.Buffer.Bytes()[windowMin[i]:windowMax[i]]
			b, err := d.CreateFilledDeviceLocalBuffer(window)
			if err != nil {
				return err
			}
			gpu[i] = b
		}
		offset := at.mapping.Offset + a.firstVertex*uint64(at.stride) - windowMin[at.binding]
		if err := format.SetAttribute(at.id, gpu[at.binding], at.mapping.Components, at.mapping.Type, at.stride, offset); err != nil {
			return err
		}
	}
	return nil
}

// interleave packs all attributes into one vertex buffer and returns the index buffer offset.
func (d *Driver) interleave(format *resources.VertexFormat, a *meshAnalysis, withIndices bool) (uint64, error) {
	vertexSize := uint64(0)
	for _, at := range a.attributes {
		vertexSize += uint64(at.size)
	}
	vertexBytes := vertexSize * (uint64(a.maxBound) + 1)
	total := vertexBytes
	if withIndices && a.indices != nil {
		// index data must start on a multiple of the index size
		vertexBytes = math.AlignUp(vertexBytes, uint64(a.indexType.Size()))
		total = vertexBytes + uint64(len(a.indices))
	}

	mem := make([]byte, total)
	at := uint64(0)
	for v := uint64(0); v <= uint64(a.maxBound); v++ {
		for _, attr := range a.attributes {
			from := attr.mapping.Offset + (a.firstVertex+v)*uint64(attr.stride)
			copy(mem[at:at+uint64(attr.size)], attr.mapping.Buffer.Bytes()[from:from+uint64(attr.size)])
			at += uint64(attr.size)
		}
	}
	if withIndices {
		copy(mem[vertexBytes:], a.indices)
	}

	vb, err := d.CreateFilledDeviceLocalBuffer(mem)
	if err != nil {
		return 0, err
	}
	defer vb.Release()

	offset := uint64(0)
	for _, attr := range a.attributes {
		if err := format.SetAttribute(attr.id, vb, attr.mapping.Components, attr.mapping.Type, uint32(vertexSize), offset); err != nil {
			return 0, err
		}
		offset += uint64(attr.size)
	}

	if a.indices == nil {
		return 0, nil
	}
	if withIndices {
		format.SetIndexBuffer(vb)
		return vertexBytes, nil
	}
	return 0, d.createIndexBuffer(format, a)
}
