package notifyclient

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"foodhub/internal/domain"
)

const (
	sampleRate   = 22050
	bitsPerFrame = 16
	amplitude    = 0.35
	rampSamples  = sampleRate / 100
)

type tone struct {
	freq    float64
	seconds float64
}

// newOrderCue is a rising three-note chime with short rests between notes.
var newOrderCue = []tone{
	{880, 0.12}, {0, 0.03},
	{1174.66, 0.12}, {0, 0.03},
	{1567.98, 0.24},
}

// SynthesizeCue renders the new order chime as a mono 16-bit WAV file.
func SynthesizeCue() []byte {
	return synthesize(newOrderCue)
}

func synthesize(tones []tone) []byte {
	var samples []int16
	for _, t := range tones {
		n := int(t.seconds * sampleRate)
		ramp := rampSamples
		for i := 0; i < n; i++ {
			if t.freq == 0 {
				samples = append(samples, 0)
				continue
			}
			env := 1.0
			if i < ramp {
				env = float64(i) / float64(ramp)
			} else if n-i < ramp {
				env = float64(n-i) / float64(ramp)
			}
			v := amplitude * env * math.Sin(2*math.Pi*t.freq*float64(i)/sampleRate)
			samples = append(samples, int16(v*math.MaxInt16))
		}
	}
	return encodeWAV(samples)
}

func encodeWAV(samples []int16) []byte {
	dataSize := uint32(len(samples) * bitsPerFrame / 8)
	blockAlign := uint16(bitsPerFrame / 8)

	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerFrame))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// SoundEffect pipes the synthesized chime to a player command. The cue is
// generated once; there is no file to go missing.
type SoundEffect struct {
	enabled bool
	player  []string
	runner  CommandRunner
	cue     []byte
}

func NewSoundEffect(enabled bool, player []string, runner CommandRunner) *SoundEffect {
	return &SoundEffect{
		enabled: enabled,
		player:  player,
		runner:  runner,
		cue:     SynthesizeCue(),
	}
}

func (s *SoundEffect) Name() string { return "sound" }

func (s *SoundEffect) Apply(ctx context.Context, _ domain.Event) error {
	if !s.enabled {
		return nil
	}
	if len(s.player) == 0 {
		return fmt.Errorf("no player command configured")
	}
	return s.runner.Run(ctx, s.cue, s.player[0], s.player[1:]...)
}
