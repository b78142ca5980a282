package main

import "time"

// FrameState counts frames and measures the frame rate. The render loop owns
// it and passes it to whatever needs timing.
type FrameState struct {
	Index   uint64        // Frames completed
	Elapsed time.Duration // Since the first frame
	FPS     float64       // Averaged over the last full second

	start     time.Time
	fpsFrames int
	fpsTime   time.Time
}

// NewFrameState starts the clock at now.
func NewFrameState(now time.Time) FrameState {
	return FrameState{start: now, fpsTime: now}
}

// Tick records a finished frame.
func (s *FrameState) Tick(now time.Time) {
	s.Index++
	s.Elapsed = now.Sub(s.start)

	s.fpsFrames++
	if d := now.Sub(s.fpsTime); d >= time.Second {
		s.FPS = float64(s.fpsFrames) / d.Seconds()
		s.fpsFrames = 0
		s.fpsTime = now
	}
}
