// Package memstore is an in-memory implementation of store.Store. It backs
// unit tests and the dev-mode server when no MongoDB URI is configured.
// Transactions take a global lock and snapshot all collections up front; a
// failed transaction restores the snapshot, so commit is all-or-nothing just
// like the Mongo session transactions it stands in for.
package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/store"
)

// ErrInjectedWrite is returned by writes once the configured failure budget is
// exhausted. Test hook only.
var ErrInjectedWrite = errors.New("memstore: injected write failure")

type txKey struct{}

type MemStore struct {
	mu sync.Mutex

	users    map[string]*models.User
	blogs    map[string]*models.Blog
	posts    map[string]*models.Post
	comments map[string]*models.Comment
	reports  map[string]*models.Report

	// seq orders documents by insertion for deterministic listings.
	seq    int64
	order  map[string]int64
	inTx   bool
	writes int
	// failAfter > 0 makes the (failAfter+1)th transactional write fail.
	failAfter int
}

func New() *MemStore {
	return &MemStore{
		users:    make(map[string]*models.User),
		blogs:    make(map[string]*models.Blog),
		posts:    make(map[string]*models.Post),
		comments: make(map[string]*models.Comment),
		reports:  make(map[string]*models.Report),
		order:    make(map[string]int64),
	}
}

func (s *MemStore) Users() store.UserRepo       { return &userRepo{s} }
func (s *MemStore) Blogs() store.BlogRepo       { return &blogRepo{s} }
func (s *MemStore) Posts() store.PostRepo       { return &postRepo{s} }
func (s *MemStore) Comments() store.CommentRepo { return &commentRepo{s} }
func (s *MemStore) Reports() store.ReportRepo   { return &reportRepo{s} }

func (s *MemStore) Close(ctx context.Context) error { return nil }

// FailAfterWrites arms the injected-failure hook: within a transaction, the
// first n writes succeed and every write after that fails. n < 0 disarms.
func (s *MemStore) FailAfterWrites(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter = n
}

func (s *MemStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == s {
		// Already inside this store's transaction; join it.
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	s.inTx = true
	s.writes = 0
	err := fn(context.WithValue(ctx, txKey{}, s))
	s.inTx = false
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// lock acquires the store lock unless ctx is already inside this store's
// transaction (the transaction holds the lock for its whole duration).
func (s *MemStore) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// checkWrite enforces the injected-failure budget. Callers must hold the lock.
func (s *MemStore) checkWrite() error {
	if !s.inTx {
		return nil
	}
	if s.failAfter > 0 && s.writes >= s.failAfter {
		return ErrInjectedWrite
	}
	s.writes++
	return nil
}

func (s *MemStore) nextSeq(id string) {
	s.seq++
	s.order[id] = s.seq
}

type snapshot struct {
	users    map[string]*models.User
	blogs    map[string]*models.Blog
	posts    map[string]*models.Post
	comments map[string]*models.Comment
	reports  map[string]*models.Report
	order    map[string]int64
	seq      int64
}

func (s *MemStore) snapshot() snapshot {
	snap := snapshot{
		users:    make(map[string]*models.User, len(s.users)),
		blogs:    make(map[string]*models.Blog, len(s.blogs)),
		posts:    make(map[string]*models.Post, len(s.posts)),
		comments: make(map[string]*models.Comment, len(s.comments)),
		reports:  make(map[string]*models.Report, len(s.reports)),
		order:    make(map[string]int64, len(s.order)),
		seq:      s.seq,
	}
	for k, v := range s.users {
		snap.users[k] = cloneUser(v)
	}
	for k, v := range s.blogs {
		snap.blogs[k] = cloneBlog(v)
	}
	for k, v := range s.posts {
		snap.posts[k] = clonePost(v)
	}
	for k, v := range s.comments {
		snap.comments[k] = cloneComment(v)
	}
	for k, v := range s.reports {
		snap.reports[k] = cloneReport(v)
	}
	for k, v := range s.order {
		snap.order[k] = v
	}
	return snap
}

func (s *MemStore) restore(snap snapshot) {
	s.users = snap.users
	s.blogs = snap.blogs
	s.posts = snap.posts
	s.comments = snap.comments
	s.reports = snap.reports
	s.order = snap.order
	s.seq = snap.seq
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func cloneBlog(b *models.Blog) *models.Blog {
	c := *b
	return &c
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	return &c
}

func cloneComment(c *models.Comment) *models.Comment {
	cp := *c
	return &cp
}

func cloneReport(r *models.Report) *models.Report {
	c := *r
	if r.Resolution != nil {
		res := *r.Resolution
		c.Resolution = &res
	}
	return &c
}
