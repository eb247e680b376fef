// Package session keeps the recent skeleton history of each capture session.
// Analysers are pure, so the movement, fielding and shot metrics that need
// earlier frames read them from here.
package session

import (
	"container/list"
	"context"
	"sync"

	"github.com/okian/crease/internal/domain/pose"
	"github.com/okian/crease/pkg/metrics"
)

const (
	defaultWindow      = 30
	defaultMaxSessions = 10000
)

type window struct {
	id    string
	poses []pose.Skeleton
}

// Tracker holds a bounded window of skeletons per session. When more than
// maxSessions are live, the least recently observed one is dropped.
type Tracker struct {
	mu          sync.Mutex
	sessions    map[string]*list.Element
	lru         *list.List // front = most recently observed
	window      int
	maxSessions int
}

// NewTracker creates a tracker with configuration options.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		sessions:    make(map[string]*list.Element),
		lru:         list.New(),
		window:      defaultWindow,
		maxSessions: defaultMaxSessions,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Observe returns the frames seen so far for sessionID, oldest first, and the
// latest of them as the previous frame. The new skeleton is appended in the
// same critical section, so concurrent uploads for a session see a consistent
// order. The returned slice is a copy.
func (t *Tracker) Observe(ctx context.Context, sessionID string, s pose.Skeleton) (pose.Optional, []pose.Skeleton, error) {
	if err := ctx.Err(); err != nil {
		return pose.None(), nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.touch(sessionID)
	history := make([]pose.Skeleton, len(w.poses))
	copy(history, w.poses)

	if len(w.poses) >= t.window {
		copy(w.poses, w.poses[1:])
		w.poses = w.poses[:t.window-1]
	}
	w.poses = append(w.poses, s)

	return pose.Last(history), history, nil
}

// touch returns the window for id, creating it and evicting the stalest
// session if needed. Caller holds mu.
func (t *Tracker) touch(id string) *window {
	if el, ok := t.sessions[id]; ok {
		t.lru.MoveToFront(el)
		return el.Value.(*window)
	}
	if t.maxSessions > 0 && t.lru.Len() >= t.maxSessions {
		oldest := t.lru.Back()
		t.lru.Remove(oldest)
		delete(t.sessions, oldest.Value.(*window).id)
		metrics.RecordSessionEviction()
	}
	w := &window{id: id, poses: make([]pose.Skeleton, 0, t.window)}
	t.sessions[id] = t.lru.PushFront(w)
	metrics.UpdateActiveSessions(t.lru.Len())
	return w
}

// Reset forgets a session. It reports whether the session existed.
func (t *Tracker) Reset(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.sessions[sessionID]
	if !ok {
		return false
	}
	t.lru.Remove(el)
	delete(t.sessions, sessionID)
	metrics.UpdateActiveSessions(t.lru.Len())
	return true
}

// Len returns the number of tracked sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lru.Len()
}
