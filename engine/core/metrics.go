package core

import (
	"math"
	"time"

	"github.com/spaghettifunk/prism/engine/containers"
)

const AVG_COUNT int = 30

// fpsPeriod is how much time must pass before FPS and the primitive average are recomputed.
const fpsPeriod = 1500 * time.Millisecond

// FrameMetrics tracks frame times and primitive throughput for the render loop.
type FrameMetrics struct {
	frameTimes *containers.RingQueue[float64]
	msAvg      float64

	start             time.Time
	fps               int32
	framesCounted     uint32
	primitive         uint32
	primitivesCounted uint32
	primitiveAverage  uint32
	primitiveTotal    uint64
}

func NewFrameMetrics(now time.Time) *FrameMetrics {
	return &FrameMetrics{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
		start:      now,
		fps:        60,
	}
}

// RegisterFrame records one finished frame that took frameElapsed and submitted primitives.
func (m *FrameMetrics) RegisterFrame(now time.Time, frameElapsed time.Duration, primitives uint32) {
	m.frameTimes.Push(float64(frameElapsed) / float64(time.Millisecond))
	if m.frameTimes.IsFull() {
		sum := 0.0
		m.frameTimes.Each(func(ms float64) { sum += ms })
		m.msAvg = sum / float64(m.frameTimes.Len())
	}

	m.framesCounted++
	m.primitive = primitives
	m.primitivesCounted += primitives
	m.primitiveTotal += uint64(primitives)

	elapsed := now.Sub(m.start)
	if elapsed >= fpsPeriod {
		ms := float64(elapsed) / float64(time.Millisecond)
		m.fps = int32(math.Ceil(1000.0 * float64(m.framesCounted) / ms))
		m.primitiveAverage = uint32(math.Ceil(1000.0 * float64(m.primitivesCounted) / ms))
		m.framesCounted = 0
		m.primitivesCounted = 0
		m.start = now
	}
}

func (m *FrameMetrics) FPS() int32 {
	return m.fps
}

// FrameTime returns the average frame time in milliseconds over the last AVG_COUNT frames.
func (m *FrameMetrics) FrameTime() float64 {
	return m.msAvg
}

func (m *FrameMetrics) Primitive() uint32 {
	return m.primitive
}

func (m *FrameMetrics) PrimitiveAverage() uint32 {
	return m.primitiveAverage
}

func (m *FrameMetrics) PrimitiveTotal() uint64 {
	return m.primitiveTotal
}
