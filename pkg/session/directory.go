package session

import (
	"context"
	"strings"
)

// Directory resolves user records for the session join.
// Implementations return ErrProfileNotFound when nothing matches.
type Directory interface {
	ProfileByID(ctx context.Context, id string) (*Profile, error)
	ProfileByEmail(ctx context.Context, email string) (*Profile, error)
}

// seedIndex holds fixed demo identities keyed by lowercased email.
type seedIndex map[string]Profile

func newSeedIndex(profiles []Profile) seedIndex {
	idx := make(seedIndex, len(profiles))
	for _, p := range profiles {
		if p.Email == "" {
			continue
		}
		idx[strings.ToLower(strings.TrimSpace(p.Email))] = p
	}
	return idx
}

func (s seedIndex) lookup(email string) (Profile, bool) {
	p, ok := s[strings.ToLower(strings.TrimSpace(email))]
	return p, ok
}
