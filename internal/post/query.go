package post

import (
	"database/sql"
	"time"

	"mingle/internal/common"
)

// selectEnriched is the shared projection for topic queries: post row, owner
// name and mark counters in one pass. Callers append their own WHERE tail.
const selectEnriched = `SELECT p.id,
       p.user_id,
       u.name,
       p.title,
       p.body,
       p.created_at,
       p.expires_at,
       coalesce(ld.likes, 0)    as likes,
       coalesce(ld.dislikes, 0) as dislikes
FROM posts p
         INNER JOIN users u ON u.id = p.user_id
         LEFT JOIN (
    SELECT post_id,
           sum(case when mark then 1 else 0 end)     AS likes,
           sum(case when not mark then 1 else 0 end) AS dislikes
    FROM likes_dislikes
    GROUP BY post_id
) AS ld ON p.id = ld.post_id
WHERE p.id IN (SELECT post_id FROM post_topics WHERE topic = $1)`

// FindByTopic returns every post carrying the topic, expired ones included,
// in creation order, enriched with counters and the full comment thread.
func (s *Service) FindByTopic(topic string) ([]PostAndMarks, error) {
	query := selectEnriched + `
ORDER BY p.created_at, p.id`
	rows, err := s.db.Query(query, topic)
	if err != nil {
		return nil, common.DataBaseError(err)
	}
	posts, err := s.scanEnriched(rows)
	if err != nil {
		return nil, err
	}
	return s.attach(posts)
}

// ExpiredByTopic returns the subset of a topic for which the expiry gate
// already holds at now. Nothing qualifying is an empty slice, not an error.
func (s *Service) ExpiredByTopic(topic string, now time.Time) ([]PostAndMarks, error) {
	query := selectEnriched + `
  AND p.expires_at <= $2
ORDER BY p.created_at, p.id`
	rows, err := s.db.Query(query, topic, now)
	if err != nil {
		return nil, common.DataBaseError(err)
	}
	posts, err := s.scanEnriched(rows)
	if err != nil {
		return nil, err
	}
	return s.attach(posts)
}

// MostActive picks the non-expired post in the topic with the highest
// likes+dislikes+comments total. Ties go to the earliest created post.
func (s *Service) MostActive(topic string, now time.Time) (PostAndMarks, error) {
	query := selectEnriched + `
  AND p.expires_at > $2
ORDER BY (coalesce(ld.likes, 0) + coalesce(ld.dislikes, 0) + coalesce((
    SELECT count(*) FROM comments c WHERE c.post_id = p.id
), 0)) DESC, p.created_at, p.id
LIMIT 1`
	rows, err := s.db.Query(query, topic, now)
	if err != nil {
		return PostAndMarks{}, common.DataBaseError(err)
	}
	posts, err := s.scanEnriched(rows)
	if err != nil {
		return PostAndMarks{}, err
	}
	if len(posts) == 0 {
		return PostAndMarks{}, common.NotFoundError(nil, "no active post in this topic")
	}
	posts, err = s.attach(posts)
	if err != nil {
		return PostAndMarks{}, err
	}
	return posts[0], nil
}

func (s *Service) scanEnriched(rows *sql.Rows) ([]PostAndMarks, error) {
	defer rows.Close()

	posts := make([]PostAndMarks, 0)
	for rows.Next() {
		var p PostAndMarks
		err := rows.Scan(&p.Id, &p.Post.UserId, &p.Owner, &p.Title, &p.Body,
			&p.CreatedAt, &p.ExpiresAt, &p.LikesCount, &p.DislikesCount)
		if err != nil {
			common.WarningLogger.Println(err)
			continue
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.DataBaseError(err)
	}
	return posts, nil
}

func (s *Service) attach(posts []PostAndMarks) ([]PostAndMarks, error) {
	for i := range posts {
		topics, err := s.loadTopics(posts[i].Id)
		if err != nil {
			return nil, err
		}
		posts[i].Topics = topics
		comments, err := s.CommentsByPostId(posts[i].Id)
		if err != nil {
			return nil, err
		}
		posts[i].Comments = comments
	}
	return posts, nil
}
