package transcribe

import (
	"bytes"
	"encoding/binary"
	"github.com/myrjola/casefile/internal/errors"
	"io"
	"log/slog"
	"math"
)

// SampleRate is the rate of the mono samples the worker accepts.
const SampleRate = 16000

const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
	maxFmtSize       = 64
	minSampleRate    = 8000
	maxSampleRate    = 192000
)

var (
	ErrInvalidWAV        = errors.NewSentinel("invalid wav")
	ErrUnsupportedFormat = errors.NewSentinel("unsupported wav format")
)

type wavFormat struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// DecodeWAV reads a RIFF WAVE stream with 8 or 16 bit PCM or 32 bit float samples recorded at 8 to 192 kHz, mixes it
// down to mono and resamples it to SampleRate.
func DecodeWAV(r io.Reader) ([]float32, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(ErrInvalidWAV, "read riff header")
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, errors.Wrap(ErrInvalidWAV, "not a riff wave stream")
	}

	var (
		format    *wavFormat
		chunkHead [8]byte
	)
	for {
		if _, err := io.ReadFull(r, chunkHead[:]); err != nil {
			return nil, errors.Wrap(ErrInvalidWAV, "missing data chunk")
		}
		id := string(chunkHead[0:4])
		size := binary.LittleEndian.Uint32(chunkHead[4:8])

		switch id {
		case "fmt ":
			if size < 16 || size > maxFmtSize { //nolint:mnd // fixed part of the fmt chunk
				return nil, errors.Wrap(ErrInvalidWAV, "bad fmt chunk size", slog.Int("size", int(size)))
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, errors.Wrap(ErrInvalidWAV, "read fmt chunk")
			}
			format = &wavFormat{}
			if err := binary.Read(bytes.NewReader(body[:16]), binary.LittleEndian, format); err != nil {
				return nil, errors.Wrap(ErrInvalidWAV, "parse fmt chunk")
			}
		case "data":
			if format == nil {
				return nil, errors.Wrap(ErrInvalidWAV, "data chunk before fmt chunk")
			}
			data, err := io.ReadAll(io.LimitReader(r, int64(size)))
			if err != nil {
				return nil, errors.Wrap(err, "read data chunk")
			}
			samples, err := decodeSamples(*format, data)
			if err != nil {
				return nil, err
			}
			return Resample(samples, int(format.SampleRate), SampleRate), nil
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, errors.Wrap(ErrInvalidWAV, "skip chunk", slog.String("chunk", id))
			}
		}
		if size%2 == 1 {
			// Chunks are padded to an even size.
			if _, err := io.CopyN(io.Discard, r, 1); err != nil {
				return nil, errors.Wrap(ErrInvalidWAV, "skip chunk padding")
			}
		}
	}
}

func decodeSamples(f wavFormat, data []byte) ([]float32, error) {
	if f.Channels == 0 || f.SampleRate == 0 {
		return nil, errors.Wrap(ErrInvalidWAV, "zero channels or sample rate")
	}
	attrs := []slog.Attr{slog.Int("audio_format", int(f.AudioFormat)), slog.Int("bits", int(f.BitsPerSample))}
	// The resampled length scales with SampleRate/rate.
	if f.SampleRate < minSampleRate || f.SampleRate > maxSampleRate {
		return nil, errors.Wrap(ErrUnsupportedFormat, "sample rate out of range",
			append(attrs, slog.Int("sample_rate", int(f.SampleRate)))...)
	}

	var sample func(b []byte) float32
	switch {
	case (f.AudioFormat == formatPCM || f.AudioFormat == formatExtensible) && f.BitsPerSample == 8:
		sample = func(b []byte) float32 { return (float32(b[0]) - 128) / 128 } //nolint:mnd // unsigned 8 bit
	case (f.AudioFormat == formatPCM || f.AudioFormat == formatExtensible) && f.BitsPerSample == 16:
		sample = func(b []byte) float32 { return float32(int16(binary.LittleEndian.Uint16(b))) / math.MaxInt16 }
	case f.AudioFormat == formatFloat && f.BitsPerSample == 32:
		sample = func(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }
	default:
		return nil, errors.Wrap(ErrUnsupportedFormat, "decode samples", attrs...)
	}

	width := int(f.BitsPerSample / 8) //nolint:mnd // bits per byte
	channels := int(f.Channels)
	frameSize := width * channels
	frames := len(data) / frameSize
	mono := make([]float32, frames)
	for i := range frames {
		var sum float32
		frame := data[i*frameSize : (i+1)*frameSize]
		for c := range channels {
			sum += sample(frame[c*width : (c+1)*width])
		}
		mono[i] = sum / float32(channels)
	}
	return mono, nil
}

// Resample converts samples from one rate to another with linear interpolation.
func Resample(samples []float32, from, to int) []float32 {
	if from == to || len(samples) == 0 {
		return samples
	}
	n := int(int64(len(samples)) * int64(to) / int64(from))
	out := make([]float32, n)
	ratio := float64(from) / float64(to)
	last := len(samples) - 1
	for i := range n {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= last {
			out[i] = samples[last]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}

// EncodeWAV writes samples as a mono 16 bit PCM WAV stream.
func EncodeWAV(w io.Writer, samples []float32, rate int) error {
	const bitsPerSample = 16
	dataSize := uint32(len(samples) * 2) //nolint:gosec,mnd // two bytes per sample
	header := struct {
		RIFF     [4]byte
		Size     uint32
		WAVE     [4]byte
		FmtID    [4]byte
		FmtSize  uint32
		Format   wavFormat
		DataID   [4]byte
		DataSize uint32
	}{
		RIFF:    [4]byte{'R', 'I', 'F', 'F'},
		Size:    36 + dataSize, //nolint:mnd // header bytes after the size field
		WAVE:    [4]byte{'W', 'A', 'V', 'E'},
		FmtID:   [4]byte{'f', 'm', 't', ' '},
		FmtSize: 16, //nolint:mnd // PCM fmt chunk
		Format: wavFormat{
			AudioFormat:   formatPCM,
			Channels:      1,
			SampleRate:    uint32(rate),     //nolint:gosec // sample rates are small
			ByteRate:      uint32(rate * 2), //nolint:gosec,mnd // mono 16 bit
			BlockAlign:    2,                //nolint:mnd // mono 16 bit
			BitsPerSample: bitsPerSample,
		},
		DataID:   [4]byte{'d', 'a', 't', 'a'},
		DataSize: dataSize,
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return errors.Wrap(err, "write wav header")
	}

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		s = max(-1, min(1, s))
		pcm[i] = int16(math.Round(float64(s) * math.MaxInt16))
	}
	if err := binary.Write(w, binary.LittleEndian, pcm); err != nil {
		return errors.Wrap(err, "write wav samples")
	}
	return nil
}
