package posegen

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/crease/internal/domain/pose"
	"github.com/okian/crease/internal/domain/scoring"
)

// Body layout of the placeholder skeleton, as offsets from the frame centre.
const (
	headRise       = 100.0
	shoulderHalf   = 60.0
	elbowHalf      = 80.0
	elbowDrop      = 60.0
	wristHalf      = 90.0
	wristDrop      = 120.0
	hipHalf        = 40.0
	hipDrop        = 100.0
	kneeHalf       = 50.0
	kneeDrop       = 180.0
	ankleHalf      = 45.0
	ankleDrop      = 260.0
	eyeHalf        = 10.0
	eyeRise        = 8.0
	earHalf        = 20.0
	jitterPx       = 2.0
	swingRadius    = 70.0
	stridePx       = 6.0
	minResponseMs  = 180.0
	responseSpread = 420.0
)

// Mock returns an upright placeholder skeleton centred in a width x height
// frame.
func Mock(width, height float64) pose.Skeleton {
	cx, cy := width/2, height/2
	at := func(dx, dy, conf float64) pose.Keypoint {
		return pose.Keypoint{X: cx + dx, Y: cy + dy, Confidence: conf}
	}
	return pose.Skeleton{
		Nose:          at(0, -headRise, 0.9),
		LeftEye:       at(-eyeHalf, -headRise-eyeRise, 0.9),
		RightEye:      at(eyeHalf, -headRise-eyeRise, 0.9),
		LeftEar:       at(-earHalf, -headRise, 0.85),
		RightEar:      at(earHalf, -headRise, 0.85),
		LeftShoulder:  at(-shoulderHalf, 0, 0.9),
		RightShoulder: at(shoulderHalf, 0, 0.9),
		LeftElbow:     at(-elbowHalf, elbowDrop, 0.85),
		RightElbow:    at(elbowHalf, elbowDrop, 0.85),
		LeftWrist:     at(-wristHalf, wristDrop, 0.8),
		RightWrist:    at(wristHalf, wristDrop, 0.8),
		LeftHip:       at(-hipHalf, hipDrop, 0.9),
		RightHip:      at(hipHalf, hipDrop, 0.9),
		LeftKnee:      at(-kneeHalf, kneeDrop, 0.85),
		RightKnee:     at(kneeHalf, kneeDrop, 0.85),
		LeftAnkle:     at(-ankleHalf, ankleDrop, 0.8),
		RightAnkle:    at(ankleHalf, ankleDrop, 0.8),
	}
}

// Generator animates the placeholder skeleton into sessions of frames.
type Generator struct {
	rng           *rand.Rand
	width, height float64
	now           func() time.Time
}

// NewGenerator creates a generator for the given frame size. The same seed
// yields the same poses; ids are always fresh.
func NewGenerator(width, height float64, seed uint64) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x5eed)), //nolint:gosec // synthetic poses
		width:  width,
		height: height,
		now:    time.Now,
	}
}

// Sessions builds one session per player, cycling players through modes.
func (g *Generator) Sessions(players, frames int, modes []scoring.Mode) []Session {
	if len(modes) == 0 {
		modes = scoring.Modes()
	}
	out := make([]Session, players)
	for i := range out {
		out[i] = g.session(uuid.NewString(), modes[i%len(modes)], frames)
	}
	return out
}

func (g *Generator) session(playerID string, mode scoring.Mode, frames int) Session {
	s := Session{ID: uuid.NewString(), PlayerID: playerID, Mode: mode}
	// each player swings at its own pace and moves at its own speed
	pace := 0.2 + g.rng.Float64()*0.6
	stride := g.rng.Float64() * stridePx
	s.Frames = make([]FrameRequest, frames)
	for i := range s.Frames {
		sk := g.pose(i, pace, stride)
		f := FrameRequest{
			FrameID:   uuid.NewString(),
			SessionID: s.ID,
			PlayerID:  playerID,
			Mode:      mode,
			Skeleton:  sk,
			TS:        g.now().UTC().Format(time.RFC3339),
		}
		switch mode {
		case scoring.Shot:
			f.BatContact = i > 0 && i%3 == 0
		case scoring.Fielding:
			f.ResponseMs = minResponseMs + g.rng.Float64()*responseSpread
		}
		s.Frames[i] = f
	}
	return s
}

// pose is frame i of a swing: the bat arm sweeps an arc, the body drifts
// sideways and every joint jitters.
func (g *Generator) pose(i int, pace, stride float64) pose.Skeleton {
	s := Mock(g.width, g.height)
	phase := float64(i) * pace
	shift := float64(i) * stride

	for _, k := range joints(&s) {
		k.X += shift + g.jitter()
		k.Y += g.jitter()
	}
	s.RightWrist.X = s.RightElbow.X + swingRadius*math.Cos(phase)
	s.RightWrist.Y = s.RightElbow.Y + swingRadius*math.Sin(phase)
	return s
}

func (g *Generator) jitter() float64 { return (g.rng.Float64()*2 - 1) * jitterPx }

func joints(s *pose.Skeleton) []*pose.Keypoint {
	return []*pose.Keypoint{
		&s.Nose, &s.LeftEye, &s.RightEye, &s.LeftEar, &s.RightEar,
		&s.LeftShoulder, &s.RightShoulder, &s.LeftElbow, &s.RightElbow,
		&s.LeftWrist, &s.RightWrist, &s.LeftHip, &s.RightHip,
		&s.LeftKnee, &s.RightKnee, &s.LeftAnkle, &s.RightAnkle,
	}
}
