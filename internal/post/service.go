package post

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"

	"mingle/internal/common"
)

type Service struct {
	db *sql.DB
}

func NewService(d *sql.DB) *Service {
	return &Service{
		db: d,
	}
}

var (
	postCol    = "id, user_id, title, body, created_at, expires_at"
	commentCol = "id, post_id, user_id, content, created_at"
)

// NewPost validates and stores a post. The expiry timestamp is computed once
// here and never recomputed.
func (s *Service) NewPost(p Post) (Post, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Body = strings.TrimSpace(p.Body)
	if p.Title == "" {
		return Post{}, common.InvalidArgumentError(nil, "title is missing")
	}
	if p.Body == "" {
		return Post{}, common.InvalidArgumentError(nil, "you are trying to create an empty post")
	}
	if p.ExpiresInMinutes <= 0 {
		return Post{}, common.InvalidArgumentError(nil, "expiresInMinutes must be positive")
	}
	var topics []string
	seen := make(map[string]bool)
	for _, t := range p.Topics {
		if t = strings.TrimSpace(t); t != "" && !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return Post{}, common.InvalidArgumentError(nil, "topic is missing")
	}
	p.Topics = topics

	p.Id = uuid.NewV4().String()
	p.CreatedAt = time.Now()
	p.ExpiresAt = p.CreatedAt.Add(time.Duration(p.ExpiresInMinutes) * time.Minute)

	tx, err := s.db.Begin()
	if err != nil {
		return Post{}, common.DataBaseError(err)
	}
	query := fmt.Sprintf("INSERT INTO posts (%s) VALUES ($1, $2, $3, $4, $5, $6)", postCol)
	if _, err := tx.Exec(query, p.Id, p.UserId, p.Title, p.Body, p.CreatedAt, p.ExpiresAt); err != nil {
		tx.Rollback()
		common.ErrorLogger.Println(err)
		return Post{}, common.DataBaseError(err)
	}
	for _, t := range p.Topics {
		if _, err := tx.Exec("INSERT INTO post_topics (post_id, topic) VALUES ($1, $2)", p.Id, t); err != nil {
			tx.Rollback()
			common.ErrorLogger.Println(err)
			return Post{}, common.DataBaseError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Post{}, common.DataBaseError(err)
	}
	return p, nil
}

func (s *Service) FindById(postID string) (Post, error) {
	query := fmt.Sprintf("SELECT %s FROM posts WHERE id=$1", postCol)
	row := s.db.QueryRow(query, postID)

	var p Post
	err := row.Scan(&p.Id, &p.UserId, &p.Title, &p.Body, &p.CreatedAt, &p.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, common.NotFoundError(nil, "cannot find post")
	}
	if err != nil {
		return Post{}, common.DataBaseError(err)
	}
	p.Topics, err = s.loadTopics(postID)
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *Service) loadTopics(postID string) ([]string, error) {
	rows, err := s.db.Query("SELECT topic FROM post_topics WHERE post_id=$1 ORDER BY topic", postID)
	if err != nil {
		return nil, common.DataBaseError(err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			common.WarningLogger.Println(err)
			continue
		}
		topics = append(topics, t)
	}
	return topics, nil
}

// AddMark upserts the caller's reaction on a post. Self-reactions and
// reactions on expired posts are rejected before anything is written. The
// single upsert statement on the (post_id, user_id) key is what keeps
// concurrent like/dislike calls from the same user linearizable: repeating a
// mark is a no-op and switching it replaces the row atomically.
func (s *Service) AddMark(m Mark) (Counters, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Counters{}, common.DataBaseError(err)
	}
	defer tx.Rollback()

	var p Post
	row := tx.QueryRow("SELECT user_id, expires_at FROM posts WHERE id=$1", m.PostId)
	if err := row.Scan(&p.UserId, &p.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Counters{}, common.NotFoundError(nil, "cannot find post")
		}
		return Counters{}, common.DataBaseError(err)
	}
	if p.Expired(time.Now()) {
		return Counters{}, common.ForbiddenError(nil, "post is expired")
	}
	if p.UserId == m.UserId {
		return Counters{}, common.ForbiddenError(nil, "you cannot react to your own post")
	}

	query := `INSERT INTO likes_dislikes (post_id, user_id, mark) VALUES ($1, $2, $3)
		ON CONFLICT(post_id, user_id) DO UPDATE SET mark=excluded.mark`
	if _, err := tx.Exec(query, m.PostId, m.UserId, m.Mark); err != nil {
		common.ErrorLogger.Println(err)
		return Counters{}, common.DataBaseError(err)
	}

	counters, err := countMarks(tx, m.PostId)
	if err != nil {
		return Counters{}, err
	}
	if err := tx.Commit(); err != nil {
		return Counters{}, common.DataBaseError(err)
	}
	return counters, nil
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func countMarks(q querier, postID string) (Counters, error) {
	query := `SELECT coalesce(sum(case when mark then 1 else 0 end), 0)     as likes,
		coalesce(sum(case when not mark then 1 else 0 end), 0) as dislikes
		FROM likes_dislikes WHERE post_id=$1`
	var c Counters
	if err := q.QueryRow(query, postID).Scan(&c.LikesCount, &c.DislikesCount); err != nil {
		return Counters{}, common.DataBaseError(err)
	}
	return c, nil
}

// AddComment appends to a post's thread. Owners may comment on their own
// posts; expired posts take no new comments.
func (s *Service) AddComment(c Comment) (Comment, error) {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return Comment{}, common.InvalidArgumentError(nil, "you are trying to add an empty comment")
	}

	p, err := s.FindById(c.PostId)
	if err != nil {
		return Comment{}, err
	}
	if p.Expired(time.Now()) {
		return Comment{}, common.ForbiddenError(nil, "post is expired")
	}

	c.Id = uuid.NewV4().String()
	c.CreatedAt = time.Now()
	query := fmt.Sprintf("INSERT INTO comments (%s) VALUES ($1, $2, $3, $4, $5)", commentCol)
	if _, err := s.db.Exec(query, c.Id, c.PostId, c.UserId, c.Text, c.CreatedAt); err != nil {
		common.ErrorLogger.Println(err)
		return Comment{}, common.DataBaseError(err)
	}
	return c, nil
}

func (s *Service) CommentsByPostId(postID string) ([]Comment, error) {
	query := `SELECT c.id, c.post_id, c.user_id, u.name, c.content, c.created_at
		FROM comments c INNER JOIN users u ON u.id = c.user_id
		WHERE c.post_id=$1
		ORDER BY c.created_at, c.id`
	rows, err := s.db.Query(query, postID)
	if err != nil {
		return nil, common.DataBaseError(err)
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.Id, &c.PostId, &c.UserId, &c.Author, &c.Text, &c.CreatedAt); err != nil {
			common.WarningLogger.Println(err)
			continue
		}
		comments = append(comments, c)
	}
	return comments, nil
}
