package assets

import (
	"encoding/binary"
	gomath "math"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func decodeAttribute(data []byte, ctype metadata.ComponentType, count metadata.ComponentCount) [4]float32 {
	out := [4]float32{0, 0, 0, 1}
	n := int(count.Components())

	switch ctype {
	case metadata.ComponentUnsignedInt10F11F11FRev:
		w := binary.LittleEndian.Uint32(data)
		out[0] = unsignedSmallFloat(w&0x7ff, 6)
		out[1] = unsignedSmallFloat((w>>11)&0x7ff, 6)
		out[2] = unsignedSmallFloat((w>>22)&0x3ff, 5)
		return out
	case metadata.ComponentNormalizedInt2101010Rev, metadata.ComponentInt2101010Rev, metadata.ComponentIntegerInt2101010Rev:
		out = decode2101010(binary.LittleEndian.Uint32(data), true, ctype.IsNormalized())
		return swizzle(out, count)
	case metadata.ComponentNormalizedUnsignedInt2101010Rev, metadata.ComponentUnsignedInt2101010Rev, metadata.ComponentIntegerUnsignedInt2101010Rev:
		out = decode2101010(binary.LittleEndian.Uint32(data), false, ctype.IsNormalized())
		return swizzle(out, count)
	}

	for i := 0; i < n; i++ {
		out[i] = decodeComponent(data, i, ctype)
	}
	return swizzle(out, count)
}

func swizzle(v [4]float32, count metadata.ComponentCount) [4]float32 {
	if count == metadata.ComponentsBGRA {
		v[0], v[2] = v[2], v[0]
	}
	return v
}

func decodeComponent(data []byte, i int, ctype metadata.ComponentType) float32 {
	switch ctype {
	case metadata.ComponentFloat:
		return math32.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	case metadata.ComponentHalfFloat:
		return HalfToFloat32(binary.LittleEndian.Uint16(data[i*2:]))
	case metadata.ComponentDoubleInFloatOut, metadata.ComponentDoubleInDoubleOut:
		return float32(gomath.Float64frombits(binary.LittleEndian.Uint64(data[i*8:])))

	case metadata.ComponentNormalizedByte:
		return max(float32(int8(data[i]))/127, -1)
	case metadata.ComponentNormalizedUnsignedByte:
		return float32(data[i]) / 255
	case metadata.ComponentNormalizedShort:
		return max(float32(int16(binary.LittleEndian.Uint16(data[i*2:])))/32767, -1)
	case metadata.ComponentNormalizedUnsignedShort:
		return float32(binary.LittleEndian.Uint16(data[i*2:])) / 65535
	case metadata.ComponentNormalizedInt:
		return max(float32(float64(int32(binary.LittleEndian.Uint32(data[i*4:])))/gomath.MaxInt32), -1)
	case metadata.ComponentNormalizedUnsignedInt:
		return float32(float64(binary.LittleEndian.Uint32(data[i*4:])) / gomath.MaxUint32)

	case metadata.ComponentByte, metadata.ComponentIntegerByte:
		return float32(int8(data[i]))
	case metadata.ComponentUnsignedByte, metadata.ComponentIntegerUnsignedByte:
		return float32(data[i])
	case metadata.ComponentShort, metadata.ComponentIntegerShort:
		return float32(int16(binary.LittleEndian.Uint16(data[i*2:])))
	case metadata.ComponentUnsignedShort, metadata.ComponentIntegerUnsignedShort:
		return float32(binary.LittleEndian.Uint16(data[i*2:]))
	case metadata.ComponentInt, metadata.ComponentIntegerInt:
		return float32(int32(binary.LittleEndian.Uint32(data[i*4:])))
	case metadata.ComponentUnsignedInt, metadata.ComponentIntegerUnsignedInt:
		return float32(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return 0
}

func decode2101010(w uint32, signed, normalized bool) [4]float32 {
	var out [4]float32
	bits := [4]uint32{10, 10, 10, 2}
	shift := uint32(0)
	for i, b := range bits {
		raw := (w >> shift) & (1<<b - 1)
		shift += b
		if !signed {
			out[i] = float32(raw)
			if normalized {
				out[i] /= float32(uint32(1)<<b - 1)
			}
			continue
		}
		// sign extend
		v := int32(raw<<(32-b)) >> (32 - b)
		out[i] = float32(v)
		if normalized {
			out[i] = max(out[i]/float32(int32(1)<<(b-1)-1), -1)
		}
	}
	return out
}

// unsignedSmallFloat decodes the 11 and 10 bit floats of the packed 10F_11F_11F format.
func unsignedSmallFloat(bits uint32, mantissaBits uint32) float32 {
	exp := bits >> mantissaBits
	mant := bits & (1<<mantissaBits - 1)
	scale := float32(uint32(1) << mantissaBits)
	switch {
	case exp == 0:
		return math32.Ldexp(float32(mant)/scale, -14)
	case exp == 31:
		if mant == 0 {
			return math32.Inf(1)
		}
		return math32.NaN()
	}
	return math32.Ldexp(1+float32(mant)/scale, int(exp)-15)
}

// HalfToFloat32 converts an IEEE 754 binary16 value.
func HalfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h) & 0x3ff

	switch exp {
	case 0:
		if mant == 0 {
			return math32.Float32frombits(sign)
		}
		// subnormal, renormalize
		e := int32(0)
		for mant&0x400 == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3ff
		return math32.Float32frombits(sign | uint32(e+1+127-15)<<23 | mant<<13)
	case 0x1f:
		return math32.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	return math32.Float32frombits(sign | (exp+127-15)<<23 | mant<<13)
}

// Float32ToHalf converts to binary16 with round toward zero. Values past the
// half range become infinity.
func Float32ToHalf(f float32) uint16 {
	bits := math32.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23) & 0xff
	mant := bits & 0x7fffff

	switch {
	case exp == 0xff:
		if mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	case exp-127+15 >= 0x1f:
		return sign | 0x7c00
	case exp-127+15 <= 0:
		shift := uint32(14 - (exp - 127 + 15))
		if shift > 24 {
			return sign
		}
		return sign | uint16((mant|0x800000)>>shift)
	}
	return sign | uint16(exp-127+15)<<10 | uint16(mant>>13)
}
