package filterbank

// Frame is a subband frame laid out as [band][channel][slot].
type Frame struct {
	Bands    int
	Channels int
	Slots    int
	Data     []complex128
}

// NewFrame allocates a zeroed frame.
func NewFrame(bands, channels, slots int) *Frame {
	return &Frame{
		Bands:    bands,
		Channels: channels,
		Slots:    slots,
		Data:     make([]complex128, bands*channels*slots),
	}
}

// Index returns the flat offset of (band, ch, slot).
func (f *Frame) Index(band, ch, slot int) int {
	return (band*f.Channels+ch)*f.Slots + slot
}

// At returns the coefficient at (band, ch, slot).
func (f *Frame) At(band, ch, slot int) complex128 {
	return f.Data[f.Index(band, ch, slot)]
}

// Set stores v at (band, ch, slot).
func (f *Frame) Set(band, ch, slot int, v complex128) {
	f.Data[f.Index(band, ch, slot)] = v
}

// Band returns the [channel][slot] block for one band as a sub-slice.
func (f *Frame) Band(band int) []complex128 {
	n := f.Channels * f.Slots
	return f.Data[band*n : (band+1)*n]
}

// Zero clears every coefficient.
func (f *Frame) Zero() {
	clear(f.Data)
}

// Resize changes the channel count, reusing storage when it is large enough.
// Existing contents are discarded.
func (f *Frame) Resize(channels int) {
	n := f.Bands * channels * f.Slots
	if cap(f.Data) >= n {
		f.Data = f.Data[:n]
	} else {
		f.Data = make([]complex128, n)
	}
	f.Channels = channels
	f.Zero()
}
