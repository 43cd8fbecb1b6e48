package pipeline

// Buffer sizing
const (
	bufferGrowthFactor = 2 // Factor for buffer growth
	minBufferFrames    = 2 // Initial ring capacity in frames
)
