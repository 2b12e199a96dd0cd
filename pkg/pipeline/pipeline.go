package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/background"
	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/detect"
	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/events"
	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/videoio"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//frameQueueDepth is the capture -> processing hand-off depth. Under
//backpressure the capture side drops the oldest queued frame rather than
//stalling on a slow consumer.
const frameQueueDepth = 2

//Config carries every tunable of a detection session. Zero values are not
//defaulted here; the caller resolves defaults from configuration.
type Config struct {
	Source      string
	Width       int
	Height      int
	NumFrames   int
	Method      background.Method
	Threshold   int
	BlurSize    int
	MinArea     int
	Confidence  float64
	FPS         float64
	ShowPreview bool
	SaveVideo   bool
	OutputPath  string
}

//Session drives one detection run: a one-shot background estimation pass
//followed by the per-frame classify -> extract -> record loop. The background
//image is frozen once estimated; lighting or scene changes require a fresh
//EstimateBackground pass.
type Session struct {
	cfg Config
	rec *events.Recorder

	mu            sync.Mutex
	bg            gocv.Mat
	hasBackground bool
	fps           float64
}

//New creates a session recording into the given event log
func New(cfg Config, rec *events.Recorder) *Session {
	return &Session{cfg: cfg, rec: rec}
}

//EstimateBackground samples up to cfg.NumFrames frames from the source and
//computes the frozen reference background. The sample buffer is released once
//the background is computed.
func (s *Session) EstimateBackground(ctx context.Context) error {
	src, err := videoio.Open(s.cfg.Source, s.cfg.Width, s.cfg.Height)
	if err != nil {
		return err
	}
	defer src.Close()

	frames, err := background.Sample(ctx, src, s.cfg.NumFrames)
	if err != nil {
		return err
	}
	defer background.CloseFrames(frames)

	log.Printf("EstimateBackground: Computing background model (%s) from %d frames", s.cfg.Method, len(frames))
	bg, err := background.Estimate(frames, s.cfg.Method)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.hasBackground {
		s.bg.Close()
	}
	s.bg = bg
	s.hasBackground = true
	s.mu.Unlock()

	log.Printf("EstimateBackground: Background model computed successfully")
	return nil
}

//SetBackground installs an externally computed background image. The session
//takes ownership of the Mat.
func (s *Session) SetBackground(bg gocv.Mat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasBackground {
		s.bg.Close()
	}
	s.bg = bg
	s.hasBackground = true
}

//Background returns a caller-owned copy of the frozen background image
func (s *Session) Background() (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasBackground {
		return gocv.Mat{}, errors.New("pipeline: background not estimated yet")
	}
	return s.bg.Clone(), nil
}

//BackgroundJPEG encodes the frozen background for the HTTP surface
func (s *Session) BackgroundJPEG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasBackground {
		return nil, errors.New("pipeline: background not estimated yet")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, s.bg)
	if err != nil {
		return nil, errors.Wrap(err, "BackgroundJPEG: could not encode background")
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

//FPS returns the processing rate measured over the current run
func (s *Session) FPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fps
}

func (s *Session) setFPS(fps float64) {
	s.mu.Lock()
	s.fps = fps
	s.mu.Unlock()
}

//Close releases the session's background image
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasBackground {
		s.bg.Close()
		s.hasBackground = false
	}
}

//frameSource is the read surface the detection loop consumes; satisfied by
//*videoio.FrameSource
type frameSource interface {
	Read(dst *gocv.Mat) bool
}

//Run executes the detection loop until the stream ends or ctx is cancelled.
//Cancellation is cooperative: the stop signal is checked once per iteration
//and the current frame's work always completes, so partial frames are never
//recorded. Capture runs on it's own goroutine so display and IO latency do
//not stall the source.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	ready := s.hasBackground
	s.mu.Unlock()
	if !ready {
		return errors.New("pipeline: background not estimated yet")
	}

	src, err := videoio.Open(s.cfg.Source, s.cfg.Width, s.cfg.Height)
	if err != nil {
		return err
	}
	defer src.Close()

	var writer *videoio.Writer
	if s.cfg.SaveVideo {
		writer, err = videoio.NewWriter(s.cfg.OutputPath, src.FPS(s.cfg.FPS), s.cfg.Width, s.cfg.Height)
		if err != nil {
			return err
		}
		defer writer.Close()
	}

	return s.run(ctx, src, writer)
}

func (s *Session) run(ctx context.Context, src frameSource, writer *videoio.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := s.startCapture(ctx, src)
	//every return path must stop capture first, otherwise draining blocks on
	//a goroutine that is still producing
	defer func() {
		cancel()
		for f := range frames {
			f.Close()
		}
	}()

	var preview *previewWindows
	if s.cfg.ShowPreview {
		preview = newPreviewWindows()
		defer preview.Close()
	}

	log.Printf("Run: Starting motion detection on '%s'", s.cfg.Source)

	frameCount := 0
	startTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Run: Motion detection stopped, processed %d frames", frameCount)
			return nil
		case frame, ok := <-frames:
			if !ok {
				log.Printf("Run: Source ended, processed %d frames", frameCount)
				return nil
			}

			if err := s.processFrame(frame, preview, writer); err != nil {
				frame.Close()
				return err
			}
			frame.Close()

			frameCount++
			if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
				s.setFPS(float64(frameCount) / elapsed)
			}

			if preview != nil && preview.quitRequested() {
				log.Printf("Run: Motion detection stopped by user")
				return nil
			}
		}
	}
}

//processFrame runs one frame through the classify -> extract -> record steps
//and hands the results to the independent display/recording consumers
func (s *Session) processFrame(frame gocv.Mat, preview *previewWindows, writer *videoio.Writer) error {
	//clone under the lock: SetBackground and EstimateBackground close the old
	//Mat when they swap it, so a bare header copy could dangle mid-Classify
	s.mu.Lock()
	bg := s.bg.Clone()
	s.mu.Unlock()
	defer bg.Close()

	isolated, mask, err := detect.Classify(frame, bg, s.cfg.Threshold, s.cfg.BlurSize)
	if err != nil {
		return err
	}
	defer isolated.Close()
	defer mask.Close()

	regions := detect.ExtractRegions(mask, s.cfg.MinArea)

	if ev := s.rec.RecordIfMotion(regions, s.cfg.Confidence); ev != nil {
		log.Printf("processFrame: Motion detected: %d objects (confidence: %.2f)", ev.ObjectCount, ev.Confidence)
	}

	if preview == nil && writer == nil {
		return nil
	}

	annotated := frame.Clone()
	defer annotated.Close()
	detect.DrawRegions(&annotated, regions, s.FPS())

	if writer != nil {
		if err := writer.Write(annotated); err != nil {
			//recording failures are logged, not fatal to detection
			log.Printf("processFrame: Could not write output frame, got '%v'", err)
		}
	}

	if preview != nil {
		preview.show(annotated, isolated, mask)
	}

	return nil
}

//startCapture reads frames on a dedicated goroutine into a bounded queue.
//When the queue is full the oldest frame is dropped so capture never blocks
//indefinitely behind a slow processing step.
func (s *Session) startCapture(ctx context.Context, src frameSource) chan gocv.Mat {
	frames := make(chan gocv.Mat, frameQueueDepth)

	go func() {
		defer close(frames)

		img := gocv.NewMat()
		defer img.Close()

		for {
			if ctx.Err() != nil {
				return
			}
			if !src.Read(&img) {
				return
			}

			f := img.Clone()
			select {
			case frames <- f:
			default:
				select {
				case stale := <-frames:
					stale.Close()
				default:
				}
				select {
				case frames <- f:
				default:
					f.Close()
				}
			}
		}
	}()

	return frames
}
