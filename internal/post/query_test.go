package post

import (
	"net/http"
	"time"

	. "gopkg.in/check.v1"
)

func (s *ServiceSuite) TestFindByTopic(c *C) {
	tech1 := s.newPost(c, s.owner, []string{"Tech"}, 5)
	tech2 := s.newPost(c, s.nick, []string{"Tech", "Health"}, 5)
	s.newPost(c, s.olga, []string{"Sport"}, 5)

	_, err := s.svc.AddMark(Mark{PostId: tech1.Id, UserId: s.nick, Mark: true})
	c.Assert(err, IsNil)
	_, err = s.svc.AddComment(Comment{PostId: tech1.Id, UserId: s.olga, Text: "hi"})
	c.Assert(err, IsNil)

	posts, err := s.svc.FindByTopic("Tech")
	c.Assert(err, IsNil)
	c.Assert(posts, HasLen, 2)
	c.Assert(posts[0].Id, Equals, tech1.Id)
	c.Assert(posts[1].Id, Equals, tech2.Id)
	c.Assert(posts[0].LikesCount, Equals, 1)
	c.Assert(posts[0].Comments, HasLen, 1)
	c.Assert(posts[0].Owner, Equals, "Mary")
	c.Assert(posts[1].Comments, HasLen, 0)
}

func (s *ServiceSuite) TestFindByTopicIncludesExpired(c *C) {
	p := s.newPost(c, s.owner, []string{"Tech"}, 1)
	s.expire(c, p.Id)

	posts, err := s.svc.FindByTopic("Tech")
	c.Assert(err, IsNil)
	c.Assert(posts, HasLen, 1)
}

func (s *ServiceSuite) TestFindByEmptyTopic(c *C) {
	posts, err := s.svc.FindByTopic("Ghosts")
	c.Assert(err, IsNil)
	c.Assert(posts, NotNil)
	c.Assert(posts, HasLen, 0)
}

func (s *ServiceSuite) TestExpiredByTopicPartition(c *C) {
	active := s.newPost(c, s.owner, []string{"Health"}, 5)
	stale := s.newPost(c, s.nick, []string{"Health"}, 1)
	s.expire(c, stale.Id)

	expired, err := s.svc.ExpiredByTopic("Health", time.Now())
	c.Assert(err, IsNil)
	c.Assert(expired, HasLen, 1)
	c.Assert(expired[0].Id, Equals, stale.Id)

	all, err := s.svc.FindByTopic("Health")
	c.Assert(err, IsNil)
	c.Assert(all, HasLen, 2)
	c.Assert(all[0].Id, Equals, active.Id)
}

func (s *ServiceSuite) TestExpiredByTopicEmpty(c *C) {
	s.newPost(c, s.owner, []string{"Sport"}, 5)

	expired, err := s.svc.ExpiredByTopic("Sport", time.Now())
	c.Assert(err, IsNil)
	c.Assert(expired, NotNil)
	c.Assert(expired, HasLen, 0)
}

func (s *ServiceSuite) TestMostActive(c *C) {
	mary := s.newPost(c, s.owner, []string{"Tech"}, 5)
	nick := s.newPost(c, s.nick, []string{"Tech"}, 5)
	s.newPost(c, s.olga, []string{"Tech"}, 5)

	// mary: 2 likes + 1 dislike + 2 comments = 5, nick: 1 like = 1
	for _, m := range []Mark{
		{PostId: mary.Id, UserId: s.nick, Mark: true},
		{PostId: mary.Id, UserId: s.olga, Mark: true},
		{PostId: mary.Id, UserId: s.nestor, Mark: false},
		{PostId: nick.Id, UserId: s.nestor, Mark: true},
	} {
		_, err := s.svc.AddMark(m)
		c.Assert(err, IsNil)
	}
	for _, text := range []string{"Nick comment #1", "Olga comment #1"} {
		_, err := s.svc.AddComment(Comment{PostId: mary.Id, UserId: s.nick, Text: text})
		c.Assert(err, IsNil)
	}

	top, err := s.svc.MostActive("Tech", time.Now())
	c.Assert(err, IsNil)
	c.Assert(top.Id, Equals, mary.Id)
	c.Assert(top.Counters, Equals, Counters{LikesCount: 2, DislikesCount: 1})
	c.Assert(top.Comments, HasLen, 2)
}

func (s *ServiceSuite) TestMostActiveSkipsExpired(c *C) {
	busy := s.newPost(c, s.owner, []string{"Tech"}, 1)
	quiet := s.newPost(c, s.nick, []string{"Tech"}, 5)

	_, err := s.svc.AddMark(Mark{PostId: busy.Id, UserId: s.nick, Mark: true})
	c.Assert(err, IsNil)
	s.expire(c, busy.Id)

	top, err := s.svc.MostActive("Tech", time.Now())
	c.Assert(err, IsNil)
	c.Assert(top.Id, Equals, quiet.Id)
}

func (s *ServiceSuite) TestMostActiveTieBreaksOnCreation(c *C) {
	younger := s.newPost(c, s.owner, []string{"Tech"}, 5)
	older := s.newPost(c, s.nick, []string{"Tech"}, 5)
	s.backdate(c, older.Id, time.Hour)

	for _, m := range []Mark{
		{PostId: younger.Id, UserId: s.nestor, Mark: true},
		{PostId: older.Id, UserId: s.olga, Mark: true},
	} {
		_, err := s.svc.AddMark(m)
		c.Assert(err, IsNil)
	}

	top, err := s.svc.MostActive("Tech", time.Now())
	c.Assert(err, IsNil)
	c.Assert(top.Id, Equals, older.Id)
}

func (s *ServiceSuite) TestMostActiveNone(c *C) {
	stale := s.newPost(c, s.owner, []string{"Tech"}, 1)
	s.expire(c, stale.Id)

	_, err := s.svc.MostActive("Tech", time.Now())
	c.Assert(statusOf(c, err), Equals, http.StatusNotFound)

	_, err = s.svc.MostActive("Ghosts", time.Now())
	c.Assert(statusOf(c, err), Equals, http.StatusNotFound)
}
