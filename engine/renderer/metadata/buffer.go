package metadata

/** @brief How the CPU intends to access a buffer after creation. */
type BufferUsage uint8

const (
	BufferUsageNone BufferUsage = iota
	BufferUsageRead
	BufferUsageWrite
	BufferUsageReadWrite
)

func (u BufferUsage) String() string {
	switch u {
	case BufferUsageNone:
		return "none"
	case BufferUsageRead:
		return "read"
	case BufferUsageWrite:
		return "write"
	case BufferUsageReadWrite:
		return "read_write"
	}
	return "unknown"
}

func (u BufferUsage) CanRead() bool {
	return u == BufferUsageRead || u == BufferUsageReadWrite
}

func (u BufferUsage) CanWrite() bool {
	return u == BufferUsageWrite || u == BufferUsageReadWrite
}

/** @brief Storage flags resolved from a BufferDesc. Backends map them onto API storage bits. */
type BufferFlags uint8

const (
	/** @brief Sub-range updates after creation are allowed. */
	BufferFlagDynamicStorage BufferFlags = 1 << iota
	/** @brief Prefer host memory over device-local memory. */
	BufferFlagClientStorage
	/** @brief The CPU may map the buffer for reading. */
	BufferFlagMapRead
	/** @brief The CPU may map the buffer for writing. */
	BufferFlagMapWrite
	/** @brief The mapping stays valid while the GPU uses the buffer. */
	BufferFlagPersistent
	/** @brief CPU writes through the mapping are visible without an explicit flush. */
	BufferFlagCoherent
)

func (f BufferFlags) Has(flag BufferFlags) bool {
	return f&flag == flag
}

/** @brief Creation parameters of a GPU buffer. */
type BufferDesc struct {
	Usage BufferUsage
	/** @brief Allows SubData writes after creation. */
	CanUpdateSubData bool
	/** @brief Keep the storage in client (host) memory. */
	InClientMemory bool
	/** @brief Map for the whole lifetime of the buffer. */
	Persistent bool
	/** @brief Persistent mapping does not need explicit flushes. */
	Coherent bool
}

// Flags resolves the descriptor into storage flags. Persistent mappings require a usage
// that allows mapping; ok is false otherwise.
func (d BufferDesc) Flags() (flags BufferFlags, ok bool) {
	if d.CanUpdateSubData {
		flags |= BufferFlagDynamicStorage
	}
	if d.InClientMemory {
		flags |= BufferFlagClientStorage
	}
	if d.Usage.CanRead() {
		flags |= BufferFlagMapRead
	}
	if d.Usage.CanWrite() {
		flags |= BufferFlagMapWrite
	}
	if d.Persistent {
		if d.Usage == BufferUsageNone {
			return 0, false
		}
		flags |= BufferFlagPersistent
		if d.Coherent {
			flags |= BufferFlagCoherent
		}
	}
	return flags, true
}
