package renderer

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// BuildStatsString describes the live GPU objects, the sampler cache and the draw counters
// as a JSON document.
func (d *Driver) BuildStatsString() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()

	obj.Name("Driver").String(d.id.String())
	obj.Name("Backend").String(d.backend.Type().String())

	counts := d.Live()
	live := obj.Name("Live").Object()
	live.Name("Buffers").Int(counts.Buffers)
	live.Name("VertexFormats").Int(counts.VertexFormats)
	live.Name("Textures").Int(counts.Textures)
	live.Name("OcclusionQueries").Int(counts.OcclusionQueries)
	live.Name("DescriptorSets").Int(counts.DescriptorSets)
	live.End()

	d.samplers.buildStatsString(obj.Name("Samplers"))

	stages := obj.Name("TextureStages").Array()
	for i, tex := range d.stages.textures {
		if tex == nil {
			continue
		}
		s := stages.Object()
		s.Name("Stage").Int(i)
		s.Name("Texture").String(tex.Name)
		s.End()
	}
	stages.End()

	draws := obj.Name("Draws").Object()
	draws.Name("Frame").Int(int(d.stats.DrawCalls))
	draws.Name("FrameIndirect").Int(int(d.stats.IndirectDraws))
	draws.Name("FramePrimitives").Int(int(d.stats.Primitives))
	draws.Name("Total").Float64(float64(d.stats.TotalDrawCalls))
	draws.Name("TotalPrimitives").Float64(float64(d.stats.TotalPrimitives))
	draws.End()

	obj.End()
	return string(writer.Bytes())
}

func (c *SamplerCache) buildStatsString(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("Cached").Int(c.Len())
	obj.Name("Created").Int(c.Created())
	entries := obj.Name("Entries").Array()
	defer entries.End()
	c.Each(func(hash uint64, handle metadata.SamplerHandle, params metadata.TextureSamplingParams) {
		e := entries.Object()
		e.Name("Handle").Float64(float64(handle))
		e.Name("MinFilter").Int(int(params.MinFilter))
		e.Name("MagFilter").Int(int(params.MagFilter))
		e.Name("Anisotropy").Int(int(params.Anisotropy))
		e.Name("LODBias").Float64(float64(params.LODBias))
		e.End()
	})
}
