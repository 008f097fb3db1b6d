package domain

type RoomID string

type Room struct {
	ID          RoomID `json:"id"`
	Title       string `json:"title"`
	AuthorEmail string `json:"author_email"`
}
