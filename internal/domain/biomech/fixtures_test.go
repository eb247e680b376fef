package biomech_test

import (
	"github.com/okian/crease/internal/domain/biomech"
	"github.com/okian/crease/internal/domain/pose"
)

func kp(x, y float64) pose.Keypoint { return pose.Keypoint{X: x, Y: y, Confidence: 0.9} }

// standing is an upright player facing the camera: level shoulders and hips,
// right arm hanging straight and both knees slightly flexed (about 169 deg).
func standing() pose.Skeleton {
	return pose.Skeleton{
		Nose:          kp(100, 50),
		LeftEye:       kp(95, 45),
		RightEye:      kp(105, 45),
		LeftEar:       kp(90, 50),
		RightEar:      kp(110, 50),
		LeftShoulder:  kp(80, 100),
		RightShoulder: kp(120, 100),
		LeftElbow:     kp(70, 150),
		RightElbow:    kp(120, 150),
		LeftWrist:     kp(60, 200),
		RightWrist:    kp(120, 200),
		LeftHip:       kp(90, 200),
		RightHip:      kp(110, 200),
		LeftKnee:      kp(90, 300),
		RightKnee:     kp(110, 300),
		LeftAnkle:     kp(110, 400),
		RightAnkle:    kp(90, 400),
	}
}

// shifted moves the whole skeleton by (dx, dy).
func shifted(s pose.Skeleton, dx, dy float64) pose.Skeleton {
	for _, k := range []*pose.Keypoint{
		&s.Nose, &s.LeftEye, &s.RightEye, &s.LeftEar, &s.RightEar,
		&s.LeftShoulder, &s.RightShoulder, &s.LeftElbow, &s.RightElbow,
		&s.LeftWrist, &s.RightWrist, &s.LeftHip, &s.RightHip,
		&s.LeftKnee, &s.RightKnee, &s.LeftAnkle, &s.RightAnkle,
	} {
		k.X += dx
		k.Y += dy
	}
	return s
}

// trail builds a history whose frames are the standing pose translated to
// each x offset in turn.
func trail(xs ...float64) []pose.Skeleton {
	out := make([]pose.Skeleton, len(xs))
	for i, x := range xs {
		out[i] = shifted(standing(), x, 0)
	}
	return out
}

func texts(recs []biomech.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Text
	}
	return out
}
