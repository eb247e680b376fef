package history

import (
	"context"

	"github.com/okian/crease/internal/domain/scoring"
)

// Nop discards writes and lists nothing. It stands in when persistence is
// disabled.
type Nop struct{}

func (Nop) Record(context.Context, scoring.Scorecard) error { return nil }

func (Nop) List(_ context.Context, _ string, _ scoring.Mode, limit int) ([]Entry, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	return []Entry{}, nil
}

func (Nop) Delete(context.Context, string) error { return ErrNotFound }

func (Nop) Close() error { return nil }
