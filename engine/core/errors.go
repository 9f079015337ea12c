package core

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidAttributeSpec = errors.New("invalid vertex attribute component specification")
	ErrIndexOutOfBounds     = errors.New("index range exceeds attribute buffer bounds")
	ErrInvalidIndexType     = errors.New("unknown index type")
	ErrEmptyMeshBuffer      = errors.New("mesh buffer has nothing to draw")
	ErrUnsupportedPacking   = errors.New("unsupported mesh packing policy")
	ErrUnsupportedUsage     = errors.New("unsupported buffer usage pattern")
	ErrBufferOverflow       = errors.New("write exceeds buffer size")
	ErrForeignTexture       = errors.New("texture belongs to a different driver")
	ErrBatchShapeMismatch   = errors.New("mesh buffer shape does not match draw batch")
	ErrBatchBuilt           = errors.New("draw batches already built")
	ErrInvalidStage         = errors.New("texture stage out of range")
	ErrDriverInit           = errors.New("driver initialization failed")
	ErrBackendUnavailable   = errors.New("backend unavailable")
	ErrReleased             = errors.New("object already released")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrNotFound             = errors.New("not found")
	ErrUnknown              = errors.New("unknown")
)
