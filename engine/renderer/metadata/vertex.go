package metadata

/** @brief Number of vertex attribute slots a vertex format exposes. */
const VertexAttributeCount = 16

/** @brief Identifies one of the fixed vertex attribute slots. */
type VertexAttributeID uint8

const (
	AttributePosition VertexAttributeID = iota
	AttributeColor
	AttributeTexcoord0
	AttributeNormal
	Attribute4
	Attribute5
	Attribute6
	Attribute7
	Attribute8
	Attribute9
	Attribute10
	Attribute11
	Attribute12
	Attribute13
	Attribute14
	Attribute15
)

func (id VertexAttributeID) Valid() bool {
	return id < VertexAttributeCount
}

/** @brief How a stored vertex component is laid out and how the shader reads it back. */
type ComponentType uint8

const (
	ComponentFloat ComponentType = iota
	ComponentHalfFloat
	ComponentDoubleInFloatOut
	ComponentUnsignedInt10F11F11FRev
	// normalized integer forms, read as float in [0,1] or [-1,1]
	ComponentNormalizedInt2101010Rev
	ComponentNormalizedUnsignedInt2101010Rev
	ComponentNormalizedByte
	ComponentNormalizedUnsignedByte
	ComponentNormalizedShort
	ComponentNormalizedUnsignedShort
	ComponentNormalizedInt
	ComponentNormalizedUnsignedInt
	// scaled integer forms, converted to float without normalization
	ComponentInt2101010Rev
	ComponentUnsignedInt2101010Rev
	ComponentByte
	ComponentUnsignedByte
	ComponentShort
	ComponentUnsignedShort
	ComponentInt
	ComponentUnsignedInt
	// integer forms, read as integers by the shader
	ComponentIntegerInt2101010Rev
	ComponentIntegerUnsignedInt2101010Rev
	ComponentIntegerByte
	ComponentIntegerUnsignedByte
	ComponentIntegerShort
	ComponentIntegerUnsignedShort
	ComponentIntegerInt
	ComponentIntegerUnsignedInt
	ComponentDoubleInDoubleOut

	ComponentTypeCount
)

var componentTypeNames = [ComponentTypeCount]string{
	"float", "half_float", "double_in_float_out", "uint_10f_11f_11f_rev",
	"norm_int_2_10_10_10_rev", "norm_uint_2_10_10_10_rev", "norm_byte", "norm_ubyte",
	"norm_short", "norm_ushort", "norm_int", "norm_uint",
	"int_2_10_10_10_rev", "uint_2_10_10_10_rev", "byte", "ubyte", "short", "ushort", "int", "uint",
	"integer_int_2_10_10_10_rev", "integer_uint_2_10_10_10_rev", "integer_byte", "integer_ubyte",
	"integer_short", "integer_ushort", "integer_int", "integer_uint",
	"double_in_double_out",
}

func (t ComponentType) String() string {
	if t >= ComponentTypeCount {
		return "unknown"
	}
	return componentTypeNames[t]
}

// IsNormalized reports whether integer data is normalized when read as float.
func (t ComponentType) IsNormalized() bool {
	return t >= ComponentNormalizedInt2101010Rev && t <= ComponentNormalizedUnsignedInt
}

// IsInteger reports whether the shader reads the attribute as an integer.
func (t ComponentType) IsInteger() bool {
	return t >= ComponentIntegerInt2101010Rev && t <= ComponentIntegerUnsignedInt
}

// IsPacked reports whether all components share a single 32-bit word.
func (t ComponentType) IsPacked() bool {
	switch t {
	case ComponentUnsignedInt10F11F11FRev,
		ComponentNormalizedInt2101010Rev, ComponentNormalizedUnsignedInt2101010Rev,
		ComponentInt2101010Rev, ComponentUnsignedInt2101010Rev,
		ComponentIntegerInt2101010Rev, ComponentIntegerUnsignedInt2101010Rev:
		return true
	}
	return false
}

// componentBytes is the storage size of one component, 0 for packed types.
func (t ComponentType) componentBytes() uint32 {
	switch t {
	case ComponentNormalizedByte, ComponentNormalizedUnsignedByte,
		ComponentByte, ComponentUnsignedByte,
		ComponentIntegerByte, ComponentIntegerUnsignedByte:
		return 1
	case ComponentHalfFloat,
		ComponentNormalizedShort, ComponentNormalizedUnsignedShort,
		ComponentShort, ComponentUnsignedShort,
		ComponentIntegerShort, ComponentIntegerUnsignedShort:
		return 2
	case ComponentFloat,
		ComponentNormalizedInt, ComponentNormalizedUnsignedInt,
		ComponentInt, ComponentUnsignedInt,
		ComponentIntegerInt, ComponentIntegerUnsignedInt:
		return 4
	case ComponentDoubleInFloatOut, ComponentDoubleInDoubleOut:
		return 8
	}
	return 0
}

/** @brief Number of components per attribute. ComponentsBGRA reads four components in reversed order. */
type ComponentCount uint8

const (
	ComponentsNone ComponentCount = iota
	ComponentsOne
	ComponentsTwo
	ComponentsThree
	ComponentsFour
	ComponentsBGRA

	ComponentCountCount
)

// Components returns how many values the shader receives.
func (c ComponentCount) Components() uint32 {
	switch c {
	case ComponentsOne:
		return 1
	case ComponentsTwo:
		return 2
	case ComponentsThree:
		return 3
	case ComponentsFour, ComponentsBGRA:
		return 4
	}
	return 0
}

/** @brief Marks a (type, count) pair that no attribute may use. */
const InvalidAttributeSize uint32 = 0xdeadbeef

var attributeSizes [ComponentTypeCount][ComponentCountCount]uint32

func init() {
	for t := ComponentType(0); t < ComponentTypeCount; t++ {
		for c := ComponentCount(0); c < ComponentCountCount; c++ {
			attributeSizes[t][c] = computeAttributeSize(t, c)
		}
	}
}

func computeAttributeSize(t ComponentType, c ComponentCount) uint32 {
	switch {
	case c == ComponentsNone:
		return InvalidAttributeSize
	case t == ComponentUnsignedInt10F11F11FRev:
		if c == ComponentsThree {
			return 4
		}
		return InvalidAttributeSize
	case c == ComponentsBGRA:
		// only normalized formats can be swizzled
		switch t {
		case ComponentNormalizedUnsignedByte,
			ComponentNormalizedInt2101010Rev, ComponentNormalizedUnsignedInt2101010Rev:
			return 4
		}
		return InvalidAttributeSize
	case t.IsPacked():
		if c == ComponentsFour {
			return 4
		}
		return InvalidAttributeSize
	}
	return t.componentBytes() * c.Components()
}

// AttributeSize returns the byte size of one attribute element, or InvalidAttributeSize.
func AttributeSize(t ComponentType, c ComponentCount) uint32 {
	if t >= ComponentTypeCount || c >= ComponentCountCount {
		return InvalidAttributeSize
	}
	return attributeSizes[t][c]
}

func ValidAttribute(t ComponentType, c ComponentCount) bool {
	return AttributeSize(t, c) != InvalidAttributeSize
}
