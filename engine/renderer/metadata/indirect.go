package metadata

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

/** @brief Byte size of one DrawElementsIndirectCommand as the GPU reads it. */
const DrawElementsIndirectCommandSize = 20

/**
 * @brief Arguments of one indexed draw sourced from a GPU buffer.
 * The field order matches the layout graphics APIs expect.
 */
type DrawElementsIndirectCommand struct {
	Count         uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	BaseInstance  uint32
}

// Marshal writes the command as five little-endian 32-bit words.
func (c DrawElementsIndirectCommand) Marshal() []byte {
	out := make([]byte, DrawElementsIndirectCommandSize)
	c.put(out)
	return out
}

func (c DrawElementsIndirectCommand) put(out []byte) {
	binary.LittleEndian.PutUint32(out[0:4], c.Count)
	binary.LittleEndian.PutUint32(out[4:8], c.InstanceCount)
	binary.LittleEndian.PutUint32(out[8:12], c.FirstIndex)
	binary.LittleEndian.PutUint32(out[12:16], uint32(c.BaseVertex))
	binary.LittleEndian.PutUint32(out[16:20], c.BaseInstance)
}

// EncodeIndirectCommands packs commands back to back in order.
func EncodeIndirectCommands(cmds []DrawElementsIndirectCommand) []byte {
	out := make([]byte, len(cmds)*DrawElementsIndirectCommandSize)
	for i, c := range cmds {
		c.put(out[i*DrawElementsIndirectCommandSize:])
	}
	return out
}

func DecodeIndirectCommands(data []byte) ([]DrawElementsIndirectCommand, error) {
	if len(data)%DrawElementsIndirectCommandSize != 0 {
		return nil, errors.Newf("indirect command data of %d bytes is not a multiple of %d", len(data), DrawElementsIndirectCommandSize)
	}
	out := make([]DrawElementsIndirectCommand, len(data)/DrawElementsIndirectCommandSize)
	for i := range out {
		b := data[i*DrawElementsIndirectCommandSize:]
		out[i] = DrawElementsIndirectCommand{
			Count:         binary.LittleEndian.Uint32(b[0:4]),
			InstanceCount: binary.LittleEndian.Uint32(b[4:8]),
			FirstIndex:    binary.LittleEndian.Uint32(b[8:12]),
			BaseVertex:    int32(binary.LittleEndian.Uint32(b[12:16])),
			BaseInstance:  binary.LittleEndian.Uint32(b[16:20]),
		}
	}
	return out, nil
}
