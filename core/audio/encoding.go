package audio

import "time"

const (
	// DefaultSampleRate is the sample rate the realtime service expects for
	// pcm16 in both directions.
	DefaultSampleRate = 24000
	// TelephonySampleRate is the fixed sample rate of the G.711 formats.
	TelephonySampleRate = 8000
)

// Format names the wire audio formats supported by the realtime service.
type Format string

const (
	FormatPCM16    Format = "pcm16"
	FormatG711Ulaw Format = "g711_ulaw"
	FormatG711Alaw Format = "g711_alaw"
)

func (f Format) Name() string {
	return string(f)
}

// SampleSize returns the number of bytes per sample, or -1 for an unknown
// format.
func (f Format) SampleSize() int {
	switch f {
	case FormatG711Ulaw, FormatG711Alaw:
		return 1
	case FormatPCM16:
		return 2
	}
	return -1
}

// EncodingInfo describes one direction of an audio stream.
type EncodingInfo struct {
	SampleRate int
	Format     Format
}

func DefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: FormatPCM16}
}

func TelephonyEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: TelephonySampleRate, Format: FormatG711Ulaw}
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// SilenceValue is the byte that encodes silence in this format.
func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case FormatG711Alaw:
		return 0x55
	case FormatG711Ulaw:
		return 0xFF
	}
	return 0
}

// FrameDuration reports how long a frame of n bytes plays for.
func (e EncodingInfo) FrameDuration(n int) time.Duration {
	sampleSize := e.Format.SampleSize()
	if sampleSize <= 0 || e.SampleRate <= 0 {
		return 0
	}
	samples := n / sampleSize
	return time.Duration(float64(samples) / float64(e.SampleRate) * float64(time.Second))
}

// FrameSize reports how many bytes encode a frame of the given duration.
func (e EncodingInfo) FrameSize(d time.Duration) int {
	sampleSize := e.Format.SampleSize()
	if sampleSize <= 0 || e.SampleRate <= 0 {
		return 0
	}
	samples := int(float64(d) / float64(time.Second) * float64(e.SampleRate))
	return samples * sampleSize
}
