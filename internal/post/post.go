package post

import "time"

type Post struct {
	Id               string    `json:"_id"`
	UserId           string    `json:"userId"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	Topics           []string  `json:"topics"`
	ExpiresInMinutes int       `json:"expiresInMinutes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// Expired is the only place post lifecycle is decided. There is no stored
// flag and no background sweep; every read and write applies this predicate
// to the same fixed expiry timestamp.
func (p Post) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Mark is a user's reaction to a post: true for like, false for dislike.
// At most one row exists per (post, user) pair.
type Mark struct {
	PostId string `json:"postId,omitempty"`
	UserId string `json:"userId,omitempty"`
	Mark   bool   `json:"mark"`
}

type Comment struct {
	Id        string    `json:"_id"`
	PostId    string    `json:"postId"`
	UserId    string    `json:"userId"`
	Author    string    `json:"author,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Counters struct {
	LikesCount    int `json:"likesCount"`
	DislikesCount int `json:"dislikesCount"`
}

// PostAndMarks is the enriched wire shape: the post, its owner's display
// name, live counters and the full comment thread.
type PostAndMarks struct {
	Post
	Owner string `json:"owner,omitempty"`
	Counters
	Comments []Comment `json:"comments"`
}
