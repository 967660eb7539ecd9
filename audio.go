package quirk8

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/generator"
	"github.com/gordonklaus/portaudio"
	"github.com/retroenv/retrogolib/log"
)

const (
	toneFrequency float64 = 440.0
	toneBufferLen int     = 512
	sampleRate    float64 = 44100
)

// Beep plays a sine tone for as long as the sound timer keeps it started.
// Start and Stop are idempotent.
type Beep struct {
	logger  *log.Logger
	wg      sync.WaitGroup
	playing atomic.Bool
}

// Start begins playing the tone. It returns immediately; playback runs on its
// own goroutine until Stop or context cancellation.
func (b *Beep) Start(ctx context.Context) error {
	if !b.playing.CompareAndSwap(false, true) {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		b.playing.Store(false)
		return err
	}

	buffer := &audio.FloatBuffer{
		Data:   make([]float64, toneBufferLen),
		Format: audio.FormatMono44100,
	}

	osc := generator.NewOsc(generator.WaveSine, toneFrequency, buffer.Format.SampleRate)
	osc.Amplitude = 1

	b.wg.Go(func() {
		b.play(ctx, osc, buffer)
	})

	return nil
}

func (b *Beep) play(ctx context.Context, osc *generator.Osc, buffer *audio.FloatBuffer) {
	defer func() {
		_ = portaudio.Terminate()
	}()

	out := make([]float32, toneBufferLen)

	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, len(out), &out)
	if err != nil {
		b.logger.Error("opening audio stream", log.Err(err))
		return
	}
	defer func() {
		_ = stream.Close()
	}()

	if err := stream.Start(); err != nil {
		b.logger.Error("starting audio stream", log.Err(err))
		return
	}
	defer func() {
		_ = stream.Stop()
	}()

	for b.playing.Load() && ctx.Err() == nil {
		if err := osc.Fill(buffer); err != nil {
			b.logger.Error("filling tone buffer", log.Err(err))
		}

		for i, sample := range buffer.Data {
			out[i] = float32(sample)
		}

		if err := stream.Write(); err != nil {
			b.logger.Error("writing to audio stream", log.Err(err))
		}
	}
}

// Stop ends playback and waits for the playback goroutine to exit.
func (b *Beep) Stop() {
	if !b.playing.CompareAndSwap(true, false) {
		return
	}
	b.wg.Wait()
}
