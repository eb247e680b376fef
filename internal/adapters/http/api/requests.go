package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/pose"
	"github.com/okian/crease/internal/domain/scoring"
)

// analyzeRequest mirrors the OpenAPI schema for POST /analyze.
type analyzeRequest struct {
	Mode       string          `json:"mode"`
	PlayerID   string          `json:"player_id"`
	SessionID  string          `json:"session_id"`
	FrameID    string          `json:"frame_id"`
	Current    *pose.Skeleton  `json:"current"`
	Previous   pose.Optional   `json:"previous"`
	History    []pose.Skeleton `json:"history"`
	BatContact bool            `json:"bat_contact"`
	TriggerMs  float64         `json:"trigger_ms"`
	ResponseMs float64         `json:"response_ms"`
}

func (r analyzeRequest) input() (scoring.Input, error) {
	mode, err := scoring.ParseMode(r.Mode)
	if err != nil {
		return scoring.Input{}, err
	}
	if r.Current == nil {
		return scoring.Input{}, errors.New("missing current")
	}
	if err := finiteSkeletons(*r.Current, r.Previous, r.History); err != nil {
		return scoring.Input{}, err
	}
	return scoring.Input{
		FrameID:    r.FrameID,
		SessionID:  r.SessionID,
		PlayerID:   r.PlayerID,
		Mode:       mode,
		Current:    *r.Current,
		Previous:   r.Previous,
		History:    r.History,
		BatContact: r.BatContact,
		TriggerMs:  r.TriggerMs,
		ResponseMs: r.ResponseMs,
	}, nil
}

// frameRequest mirrors the OpenAPI schema for POST /frames. Previous frames
// come from the session, not the client.
type frameRequest struct {
	FrameID    string         `json:"frame_id"`
	SessionID  string         `json:"session_id"`
	PlayerID   string         `json:"player_id"`
	Mode       string         `json:"mode"`
	Skeleton   *pose.Skeleton `json:"skeleton"`
	BatContact bool           `json:"bat_contact"`
	TriggerMs  float64        `json:"trigger_ms"`
	ResponseMs float64        `json:"response_ms"`
	TS         string         `json:"ts"`
}

func (r frameRequest) frame(now time.Time) (model.Frame, error) {
	switch {
	case strings.TrimSpace(r.FrameID) == "":
		return model.Frame{}, errors.New("missing frame_id")
	case strings.TrimSpace(r.SessionID) == "":
		return model.Frame{}, errors.New("missing session_id")
	case strings.TrimSpace(r.PlayerID) == "":
		return model.Frame{}, errors.New("missing player_id")
	case r.Skeleton == nil:
		return model.Frame{}, errors.New("missing skeleton")
	}
	mode, err := scoring.ParseMode(r.Mode)
	if err != nil {
		return model.Frame{}, err
	}
	if err := finiteSkeletons(*r.Skeleton, pose.None(), nil); err != nil {
		return model.Frame{}, err
	}
	ts := now
	if r.TS != "" {
		if ts, err = time.Parse(time.RFC3339, r.TS); err != nil {
			return model.Frame{}, errors.New("invalid ts; must be RFC3339")
		}
	}
	return model.Frame{
		FrameID:    r.FrameID,
		SessionID:  r.SessionID,
		PlayerID:   r.PlayerID,
		Mode:       mode,
		Skeleton:   *r.Skeleton,
		BatContact: r.BatContact,
		TriggerMs:  r.TriggerMs,
		ResponseMs: r.ResponseMs,
		TS:         ts,
	}, nil
}

func finiteSkeletons(cur pose.Skeleton, prev pose.Optional, history []pose.Skeleton) error {
	if !cur.Finite() {
		return errors.New("current skeleton has non-finite values")
	}
	if p, ok := prev.Get(); ok && !p.Finite() {
		return errors.New("previous skeleton has non-finite values")
	}
	for i, s := range history {
		if !s.Finite() {
			return fmt.Errorf("history[%d] has non-finite values", i)
		}
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
