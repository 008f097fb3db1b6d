package app

import "github.com/dkraev/parley/internal/domain"

// DeletionPolicy models "undo my last post": a non-admin may delete only
// their own most recent message, never an earlier one. Admins may delete
// anything.
type DeletionPolicy struct{}

func (DeletionPolicy) CanDelete(msg domain.Message, all []domain.Message, user *domain.Identity) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	if msg.AuthorEmail != user.Email {
		return false
	}
	latest, ok := latestBy(all, user.Email)
	return ok && latest.ID == msg.ID
}

// latestBy finds the author's most recent message by CreatedAt. On equal
// timestamps the earliest-listed one wins, which keeps the decision
// deterministic.
func latestBy(all []domain.Message, email string) (domain.Message, bool) {
	var latest domain.Message
	found := false
	for _, m := range all {
		if m.AuthorEmail != email {
			continue
		}
		if !found || m.CreatedAt.After(latest.CreatedAt) {
			latest = m
			found = true
		}
	}
	return latest, found
}
