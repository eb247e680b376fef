// Package pose models a 17-keypoint 2-D skeleton and the geometry primitives
// the analyzers are built on.
//
// Coordinates are image pixels with the origin at the top-left corner and y
// increasing downward. The geometry does not validate its input: NaN in,
// NaN out. Decoding from JSON does insist on every joint being present.
package pose

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Keypoint is a single tracked landmark.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Vec returns the keypoint position as a plane vector.
func (k Keypoint) Vec() r2.Vec { return r2.Vec{X: k.X, Y: k.Y} }

// Skeleton is the full set of keypoints for one video frame. Occluded joints
// keep their field with a low or zero confidence.
type Skeleton struct {
	Nose          Keypoint `json:"nose"`
	LeftEye       Keypoint `json:"leftEye"`
	RightEye      Keypoint `json:"rightEye"`
	LeftEar       Keypoint `json:"leftEar"`
	RightEar      Keypoint `json:"rightEar"`
	LeftShoulder  Keypoint `json:"leftShoulder"`
	RightShoulder Keypoint `json:"rightShoulder"`
	LeftElbow     Keypoint `json:"leftElbow"`
	RightElbow    Keypoint `json:"rightElbow"`
	LeftWrist     Keypoint `json:"leftWrist"`
	RightWrist    Keypoint `json:"rightWrist"`
	LeftHip       Keypoint `json:"leftHip"`
	RightHip      Keypoint `json:"rightHip"`
	LeftKnee      Keypoint `json:"leftKnee"`
	RightKnee     Keypoint `json:"rightKnee"`
	LeftAnkle     Keypoint `json:"leftAnkle"`
	RightAnkle    Keypoint `json:"rightAnkle"`
}

// Keypoints returns the joints in canonical order, nose first.
func (s Skeleton) Keypoints() [17]Keypoint {
	return [17]Keypoint{
		s.Nose, s.LeftEye, s.RightEye, s.LeftEar, s.RightEar,
		s.LeftShoulder, s.RightShoulder, s.LeftElbow, s.RightElbow,
		s.LeftWrist, s.RightWrist, s.LeftHip, s.RightHip,
		s.LeftKnee, s.RightKnee, s.LeftAnkle, s.RightAnkle,
	}
}

// Finite reports whether every coordinate and confidence is a finite number.
func (s Skeleton) Finite() bool {
	for _, k := range s.Keypoints() {
		if !finite(k.X) || !finite(k.Y) || !finite(k.Confidence) {
			return false
		}
	}
	return true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Angle returns the angle at vertex b between the rays b->a and b->c, in
// degrees within [0,180]. Coincident points yield whatever atan2 yields.
func Angle(a, b, c Keypoint) float64 {
	rad := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	deg := math.Abs(rad * 180 / math.Pi)
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}

// Distance is the Euclidean distance between p and q.
func Distance(p, q Keypoint) float64 {
	return r2.Norm(r2.Sub(p.Vec(), q.Vec()))
}

// HipCenter is the midpoint between the two hips.
func HipCenter(s Skeleton) Keypoint {
	return Keypoint{
		X:          (s.LeftHip.X + s.RightHip.X) / 2,
		Y:          (s.LeftHip.Y + s.RightHip.Y) / 2,
		Confidence: 1,
	}
}

// ShoulderCenterY is the mean height of the two shoulders.
func ShoulderCenterY(s Skeleton) float64 {
	return (s.LeftShoulder.Y + s.RightShoulder.Y) / 2
}

// ShoulderBearing is the bearing in radians of the line from the left to the
// right shoulder.
func ShoulderBearing(s Skeleton) float64 {
	return math.Atan2(s.RightShoulder.Y-s.LeftShoulder.Y, s.RightShoulder.X-s.LeftShoulder.X)
}

// Displacement returns the vector from p to q.
func Displacement(p, q Keypoint) r2.Vec {
	return r2.Sub(q.Vec(), p.Vec())
}
