package app

import "github.com/dkraev/parley/internal/core"

// Authorizer decides whether an identity may read/post in a room. It is
// stateless and evaluated fresh on every use; nothing here is cached.
type Authorizer struct{}

// CanParticipate applies the precedence below. The order matters: an expert
// who is not on the roster must still pass, and an unknown roster must not
// pre-emptively block a possibly-authorized user — the backend re-checks on
// the next write anyway.
//
//  1. no user -> no
//  2. admin -> yes
//  3. room author -> yes
//  4. expert -> yes
//  5. roster unknown -> yes (authoritative check deferred to the backend)
//  6. otherwise -> roster membership
func (Authorizer) CanParticipate(s core.RoomSession) bool {
	if s.User == nil {
		return false
	}
	if s.User.IsAdmin() {
		return true
	}
	if s.User.Email == s.Room.AuthorEmail {
		return true
	}
	if s.User.IsExpert() {
		return true
	}
	if !s.Roster.Known {
		return true
	}
	return s.Roster.Contains(s.User.Email)
}
