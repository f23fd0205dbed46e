package audio

import (
	"testing"
	"time"
)

func TestFrameDurationRoundTripsWithFrameSize(t *testing.T) {
	testCases := []struct {
		name     string
		encoding EncodingInfo
		duration time.Duration
	}{
		{name: "pcm16 20ms", encoding: DefaultEncodingInfo(), duration: 20 * time.Millisecond},
		{name: "ulaw 20ms", encoding: TelephonyEncodingInfo(), duration: 20 * time.Millisecond},
		{name: "pcm16 1s", encoding: DefaultEncodingInfo(), duration: time.Second},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			size := testCase.encoding.FrameSize(testCase.duration)
			if size <= 0 {
				t.Fatalf("expected a positive frame size, got %d", size)
			}
			if got := testCase.encoding.FrameDuration(size); got != testCase.duration {
				t.Fatalf("expected duration %v, got %v", testCase.duration, got)
			}
		})
	}
}

func TestUnknownFormatReportsNoSize(t *testing.T) {
	encoding := EncodingInfo{SampleRate: 8000, Format: Format("opus")}
	if size := encoding.Format.SampleSize(); size != -1 {
		t.Fatalf("expected unknown format sample size -1, got %d", size)
	}
	if d := encoding.FrameDuration(160); d != 0 {
		t.Fatalf("expected zero duration for unknown format, got %v", d)
	}
}

func TestSilenceValues(t *testing.T) {
	if v := TelephonyEncodingInfo().SilenceValue(); v != 0xFF {
		t.Fatalf("expected ulaw silence 0xFF, got %#x", v)
	}
	if v := (EncodingInfo{SampleRate: 8000, Format: FormatG711Alaw}).SilenceValue(); v != 0x55 {
		t.Fatalf("expected alaw silence 0x55, got %#x", v)
	}
	if v := DefaultEncodingInfo().SilenceValue(); v != 0 {
		t.Fatalf("expected pcm16 silence 0, got %#x", v)
	}
}
