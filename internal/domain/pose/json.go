package pose

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrIncompleteSkeleton is returned when decoding a skeleton or keypoint
// that leaves out a field. A missing joint would otherwise sit at the image
// origin and be scored like any other.
var ErrIncompleteSkeleton = errors.New("incomplete skeleton")

type wireKeypoint struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Confidence float64  `json:"confidence"`
}

// UnmarshalJSON requires x and y. An absent confidence reads as 0.
func (k *Keypoint) UnmarshalJSON(data []byte) error {
	var w wireKeypoint
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.X == nil:
		return fmt.Errorf("%w: keypoint without x", ErrIncompleteSkeleton)
	case w.Y == nil:
		return fmt.Errorf("%w: keypoint without y", ErrIncompleteSkeleton)
	}
	*k = Keypoint{X: *w.X, Y: *w.Y, Confidence: w.Confidence}
	return nil
}

type wireSkeleton struct {
	Nose          *Keypoint `json:"nose"`
	LeftEye       *Keypoint `json:"leftEye"`
	RightEye      *Keypoint `json:"rightEye"`
	LeftEar       *Keypoint `json:"leftEar"`
	RightEar      *Keypoint `json:"rightEar"`
	LeftShoulder  *Keypoint `json:"leftShoulder"`
	RightShoulder *Keypoint `json:"rightShoulder"`
	LeftElbow     *Keypoint `json:"leftElbow"`
	RightElbow    *Keypoint `json:"rightElbow"`
	LeftWrist     *Keypoint `json:"leftWrist"`
	RightWrist    *Keypoint `json:"rightWrist"`
	LeftHip       *Keypoint `json:"leftHip"`
	RightHip      *Keypoint `json:"rightHip"`
	LeftKnee      *Keypoint `json:"leftKnee"`
	RightKnee     *Keypoint `json:"rightKnee"`
	LeftAnkle     *Keypoint `json:"leftAnkle"`
	RightAnkle    *Keypoint `json:"rightAnkle"`
}

// UnmarshalJSON decodes a skeleton and fails with ErrIncompleteSkeleton,
// naming the first missing joint, unless all 17 are present. A JSON null
// counts as missing every joint.
func (s *Skeleton) UnmarshalJSON(data []byte) error {
	var w wireSkeleton
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var out Skeleton
	joints := []struct {
		name string
		src  *Keypoint
		dst  *Keypoint
	}{
		{"nose", w.Nose, &out.Nose},
		{"leftEye", w.LeftEye, &out.LeftEye},
		{"rightEye", w.RightEye, &out.RightEye},
		{"leftEar", w.LeftEar, &out.LeftEar},
		{"rightEar", w.RightEar, &out.RightEar},
		{"leftShoulder", w.LeftShoulder, &out.LeftShoulder},
		{"rightShoulder", w.RightShoulder, &out.RightShoulder},
		{"leftElbow", w.LeftElbow, &out.LeftElbow},
		{"rightElbow", w.RightElbow, &out.RightElbow},
		{"leftWrist", w.LeftWrist, &out.LeftWrist},
		{"rightWrist", w.RightWrist, &out.RightWrist},
		{"leftHip", w.LeftHip, &out.LeftHip},
		{"rightHip", w.RightHip, &out.RightHip},
		{"leftKnee", w.LeftKnee, &out.LeftKnee},
		{"rightKnee", w.RightKnee, &out.RightKnee},
		{"leftAnkle", w.LeftAnkle, &out.LeftAnkle},
		{"rightAnkle", w.RightAnkle, &out.RightAnkle},
	}
	for _, j := range joints {
		if j.src == nil {
			return fmt.Errorf("%w: missing %s", ErrIncompleteSkeleton, j.name)
		}
		*j.dst = *j.src
	}
	*s = out
	return nil
}
