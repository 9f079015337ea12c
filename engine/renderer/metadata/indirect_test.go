package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndirectCommandLayout(t *testing.T) {
	cmd := DrawElementsIndirectCommand{
		Count:         0x04030201,
		InstanceCount: 1,
		FirstIndex:    0x0000ff00,
		BaseVertex:    -1,
		BaseInstance:  7,
	}
	assert.Equal(t, []byte{
		0x01, 0x02, 0x03, 0x04,
		0x01, 0x00, 0x00, 0x00,
		0x00, 0xff, 0x00, 0x00,
		0xff, 0xff, 0xff, 0xff,
		0x07, 0x00, 0x00, 0x00,
	}, cmd.Marshal())
}

func TestIndirectCommandsKeepOrder(t *testing.T) {
	cmds := []DrawElementsIndirectCommand{
		{Count: 36, InstanceCount: 1, FirstIndex: 0, BaseVertex: 0},
		{Count: 6, InstanceCount: 2, FirstIndex: 36, BaseVertex: 24, BaseInstance: 1},
		{Count: 3, InstanceCount: 1, FirstIndex: 42, BaseVertex: 28},
	}
	data := EncodeIndirectCommands(cmds)
	require.Len(t, data, 3*DrawElementsIndirectCommandSize)

	back, err := DecodeIndirectCommands(data)
	require.NoError(t, err)
	assert.Equal(t, cmds, back)

	_, err = DecodeIndirectCommands(data[:7])
	assert.Error(t, err)
}
