package theme

import (
	"context"
	"strings"

	"nextstep-cv/internal/store"
)

const (
	Dark  = "dark"
	Light = "light"

	// PreferenceHeader is the client hint browsers send with the user's
	// color scheme once the server asks for it via Accept-CH.
	PreferenceHeader = "Sec-CH-Prefers-Color-Scheme"
)

// State resolves and persists the dark/light preference for one client.
type State struct {
	store store.Store
}

func New(s store.Store) *State {
	return &State{store: s}
}

// IsDark returns the stored preference. Without one it falls back to the
// platform hint, and that fallback is not written back.
func (s *State) IsDark(ctx context.Context, platformHint string) (bool, error) {
	v, ok, err := s.store.Get(ctx, store.KeyTheme)
	if err != nil {
		return false, err
	}
	if ok {
		return v == Dark, nil
	}
	return strings.EqualFold(strings.Trim(platformHint, `" `), Dark), nil
}

func (s *State) Set(ctx context.Context, dark bool) error {
	v := Light
	if dark {
		v = Dark
	}
	return s.store.Set(ctx, store.KeyTheme, v)
}

// Toggle flips the effective preference and persists the result.
func (s *State) Toggle(ctx context.Context, platformHint string) (bool, error) {
	dark, err := s.IsDark(ctx, platformHint)
	if err != nil {
		return false, err
	}
	dark = !dark
	return dark, s.Set(ctx, dark)
}
