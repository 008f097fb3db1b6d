package domain

type Participant struct {
	Email string `json:"email"`
}

// Roster is the tri-state participant list of a room. Known=false means the
// roster could not be loaded (fetch failed or was forbidden), which is a
// different thing from a loaded-but-empty roster.
type Roster struct {
	Known   bool
	Members []Participant
}

func UnknownRoster() Roster { return Roster{} }

func KnownRoster(members []Participant) Roster {
	return Roster{Known: true, Members: members}
}

func (r Roster) Contains(email string) bool {
	for _, m := range r.Members {
		if m.Email == email {
			return true
		}
	}
	return false
}
