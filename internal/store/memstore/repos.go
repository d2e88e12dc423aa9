package memstore

import (
	"context"
	"sort"

	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/store"
)

func paginate[T any](items []T, page int) []T {
	start := page * store.PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + store.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// --- users ---

type userRepo struct{ s *MemStore }

func (r *userRepo) Insert(ctx context.Context, u *models.User) error {
	defer r.s.lock(ctx)()
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	r.s.users[u.ID] = cloneUser(u)
	r.s.nextSeq(u.ID)
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.s.lock(ctx)()
	for _, u := range r.s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.s.lock(ctx)()
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *userRepo) Find(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	defer r.s.lock(ctx)()
	out := make([]*models.User, 0)
	for _, u := range r.s.users {
		if filter.Username != "" && u.Username != filter.Username {
			continue
		}
		if filter.FirstName != "" && u.FirstName != filter.FirstName {
			continue
		}
		if filter.LastName != "" && u.LastName != filter.LastName {
			continue
		}
		if filter.Email != "" && u.Email != filter.Email {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.AccountType != "" && u.AccountType != filter.AccountType {
			continue
		}
		if !filter.CreatedAfter.IsZero() && u.AccountCreated.Before(filter.CreatedAfter) {
			continue
		}
		if !filter.CreatedBefore.IsZero() && u.AccountCreated.After(filter.CreatedBefore) {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AccountCreated.Equal(out[j].AccountCreated) {
			return out[i].AccountCreated.After(out[j].AccountCreated)
		}
		return r.s.order[out[i].ID] > r.s.order[out[j].ID]
	})
	return paginate(out, filter.Page), nil
}

func (r *userRepo) update(ctx context.Context, id string, mutate func(*models.User)) error {
	defer r.s.lock(ctx)()
	u, ok := r.s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	mutate(u)
	return nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id string, set map[string]string) error {
	return r.update(ctx, id, func(u *models.User) {
		if v, ok := set["first_name"]; ok {
			u.FirstName = v
		}
		if v, ok := set["last_name"]; ok {
			u.LastName = v
		}
		if v, ok := set["email"]; ok {
			u.Email = v
		}
	})
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (r *userRepo) UpdatePublic(ctx context.Context, id string, public bool) error {
	return r.update(ctx, id, func(u *models.User) { u.Public = public })
}

func (r *userRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.update(ctx, id, func(u *models.User) { u.Status = status })
}

func (r *userRepo) UpdateAccountType(ctx context.Context, id, accountType string) error {
	return r.update(ctx, id, func(u *models.User) { u.AccountType = accountType })
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.users[id]; !ok {
		return store.ErrNotFound
	}
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	delete(r.s.users, id)
	return nil
}

// --- blogs ---

type blogRepo struct{ s *MemStore }

func (r *blogRepo) Insert(ctx context.Context, b *models.Blog) error {
	defer r.s.lock(ctx)()
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	r.s.blogs[b.ID] = cloneBlog(b)
	r.s.nextSeq(b.ID)
	return nil
}

func (r *blogRepo) FindByID(ctx context.Context, id string) (*models.Blog, error) {
	defer r.s.lock(ctx)()
	b, ok := r.s.blogs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneBlog(b), nil
}

func (r *blogRepo) FindByName(ctx context.Context, name string) (*models.Blog, error) {
	defer r.s.lock(ctx)()
	for _, b := range r.s.blogs {
		if b.Name == name {
			return cloneBlog(b), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *blogRepo) Find(ctx context.Context, filter models.BlogFilter) ([]*models.Blog, error) {
	defer r.s.lock(ctx)()
	out := make([]*models.Blog, 0)
	for _, b := range r.s.blogs {
		if !filter.IncludePrivate && b.Private {
			continue
		}
		if filter.OwnerID != "" && b.Owner.Doc != filter.OwnerID {
			continue
		}
		out = append(out, cloneBlog(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}
		return r.s.order[out[i].ID] > r.s.order[out[j].ID]
	})
	return out, nil
}

func (r *blogRepo) Update(ctx context.Context, id string, set map[string]interface{}) error {
	defer r.s.lock(ctx)()
	b, ok := r.s.blogs[id]
	if !ok {
		return store.ErrNotFound
	}
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	if v, ok := set["title"].(string); ok {
		b.Title = v
	}
	if v, ok := set["description"].(string); ok {
		b.Description = v
	}
	if v, ok := set["private"].(bool); ok {
		b.Private = v
	}
	return nil
}

func (r *blogRepo) UpdateOwnerStatus(ctx context.Context, ownerID, status string) error {
	defer r.s.lock(ctx)()
	for _, b := range r.s.blogs {
		if b.Owner.Doc == ownerID {
			if err := r.s.checkWrite(); err != nil {
				return err
			}
			b.Owner.Status = status
		}
	}
	return nil
}

func (r *blogRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.blogs[id]; !ok {
		return store.ErrNotFound
	}
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	delete(r.s.blogs, id)
	return nil
}

func (r *blogRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	defer r.s.lock(ctx)()
	for id, b := range r.s.blogs {
		if b.Owner.Doc == ownerID {
			if err := r.s.checkWrite(); err != nil {
				return err
			}
			delete(r.s.blogs, id)
		}
	}
	return nil
}

// --- posts ---

type postRepo struct{ s *MemStore }

func postVisible(p *models.Post) bool {
	return !p.Private && !p.Blog.Private && p.Author.Status != models.StatusBanned
}

func (r *postRepo) Insert(ctx context.Context, p *models.Post) error {
	defer r.s.lock(ctx)()
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	r.s.posts[p.ID] = clonePost(p)
	r.s.nextSeq(p.ID)
	return nil
}

func (r *postRepo) FindByID(ctx context.Context, id string) (*models.Post, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *postRepo) FindVisible(ctx context.Context, id string) (*models.Post, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.posts[id]
	if !ok || !postVisible(p) {
		return nil, store.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *postRepo) collect(keep func(*models.Post) bool) []*models.Post {
	out := make([]*models.Post, 0)
	for _, p := range r.s.posts {
		if keep(p) {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}
		return r.s.order[out[i].ID] > r.s.order[out[j].ID]
	})
	return out
}

func (r *postRepo) FindByBlog(ctx context.Context, blogID string, includePrivate bool) ([]*models.Post, error) {
	defer r.s.lock(ctx)()
	return r.collect(func(p *models.Post) bool {
		if p.Blog.Doc != blogID {
			return false
		}
		return includePrivate || !p.Private
	}), nil
}

func (r *postRepo) FindByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	defer r.s.lock(ctx)()
	return r.collect(func(p *models.Post) bool { return p.Author.Doc == authorID }), nil
}

func (r *postRepo) Recent(ctx context.Context, limit int) ([]*models.Post, error) {
	defer r.s.lock(ctx)()
	if limit <= 0 {
		limit = 10
	}
	out := r.collect(postVisible)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *postRepo) UpdateAuthorStatus(ctx context.Context, authorID, status string) error {
	defer r.s.lock(ctx)()
	for _, p := range r.s.posts {
		if p.Author.Doc == authorID {
			if err := r.s.checkWrite(); err != nil {
				return err
			}
			p.Author.Status = status
		}
	}
	return nil
}

func (r *postRepo) UpdateBlogPrivate(ctx context.Context, blogID string, private bool) error {
	defer r.s.lock(ctx)()
	for _, p := range r.s.posts {
		if p.Blog.Doc == blogID {
			if err := r.s.checkWrite(); err != nil {
				return err
			}
			p.Blog.Private = private
		}
	}
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.posts[id]; !ok {
		return store.ErrNotFound
	}
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	delete(r.s.posts, id)
	return nil
}

func (r *postRepo) DeleteByBlog(ctx context.Context, blogID string) error {
	defer r.s.lock(ctx)()
	for id, p := range r.s.posts {
		if p.Blog.Doc == blogID {
			if err := r.s.checkWrite(); err != nil {
				return err
			}
			delete(r.s.posts, id)
		}
	}
	return nil
}

func (r *postRepo) DeleteByAuthor(ctx context.Context, authorID string) error {
	defer r.s.lock(ctx)()
	for id, p := range r.s.posts {
		if p.Author.Doc == authorID {
			if err := r.s.checkWrite(); err != nil {
				return err
			}
			delete(r.s.posts, id)
		}
	}
	return nil
}

// --- comments ---

type commentRepo struct{ s *MemStore }

func (r *commentRepo) Insert(ctx context.Context, c *models.Comment) error {
	defer r.s.lock(ctx)()
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	r.s.comments[c.ID] = cloneComment(c)
	r.s.nextSeq(c.ID)
	return nil
}

func (r *commentRepo) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneComment(c), nil
}

func (r *commentRepo) collect(keep func(*models.Comment) bool) []*models.Comment {
	out := make([]*models.Comment, 0)
	for _, c := range r.s.comments {
		if keep(c) {
			out = append(out, cloneComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return r.s.order[out[i].ID] < r.s.order[out[j].ID]
	})
	return out
}

func (r *commentRepo) FindByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	defer r.s.lock(ctx)()
	return r.collect(func(c *models.Comment) bool {
		return c.BlogPost == postID && c.Author.Status != models.StatusBanned
	}), nil
}

func (r *commentRepo) FindByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error) {
	defer r.s.lock(ctx)()
	return r.collect(func(c *models.Comment) bool { return c.Author.Doc == authorID }), nil
}

func (r *commentRepo) UpdateAuthorStatus(ctx context.Context, authorID, status string) error {
	defer r.s.lock(ctx)()
	for _, c := range r.s.comments {
		if c.Author.Doc == authorID {
			if err := r.s.checkWrite(); err != nil {
				return err
			}
			c.Author.Status = status
		}
	}
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.comments[id]; !ok {
		return store.ErrNotFound
	}
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	delete(r.s.comments, id)
	return nil
}

func (r *commentRepo) DeleteByAuthor(ctx context.Context, authorID string) error {
	defer r.s.lock(ctx)()
	for id, c := range r.s.comments {
		if c.Author.Doc == authorID {
			if err := r.s.checkWrite(); err != nil {
				return err
			}
			delete(r.s.comments, id)
		}
	}
	return nil
}

// --- reports ---

type reportRepo struct{ s *MemStore }

func (r *reportRepo) Insert(ctx context.Context, rep *models.Report) error {
	defer r.s.lock(ctx)()
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	c := cloneReport(rep)
	c.Settled = false
	c.Resolution = nil
	r.s.reports[rep.ID] = c
	r.s.nextSeq(rep.ID)
	return nil
}

func (r *reportRepo) FindByID(ctx context.Context, id string) (*models.Report, error) {
	defer r.s.lock(ctx)()
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneReport(rep), nil
}

func (r *reportRepo) Find(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error) {
	defer r.s.lock(ctx)()
	out := make([]*models.Report, 0)
	for _, rep := range r.s.reports {
		if filter.Settled != nil && rep.Settled != *filter.Settled {
			continue
		}
		if filter.ContentType != "" && rep.ContentType != filter.ContentType {
			continue
		}
		if filter.ReportedUser != "" && rep.ReportedUser != filter.ReportedUser {
			continue
		}
		if filter.ReportingUser != "" && rep.ReportingUser != filter.ReportingUser {
			continue
		}
		if filter.RespondingModerator != "" &&
			(rep.Resolution == nil || rep.Resolution.RespondingModerator != filter.RespondingModerator) {
			continue
		}
		if !filter.CreatedAfter.IsZero() && rep.ReportCreated.Before(filter.CreatedAfter) {
			continue
		}
		if !filter.CreatedBefore.IsZero() && rep.ReportCreated.After(filter.CreatedBefore) {
			continue
		}
		if !filter.ActionAfter.IsZero() &&
			(rep.Resolution == nil || rep.Resolution.DateOfAction.Before(filter.ActionAfter)) {
			continue
		}
		if !filter.ActionBefore.IsZero() &&
			(rep.Resolution == nil || rep.Resolution.DateOfAction.After(filter.ActionBefore)) {
			continue
		}
		out = append(out, cloneReport(rep))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReportCreated.Equal(out[j].ReportCreated) {
			return out[i].ReportCreated.After(out[j].ReportCreated)
		}
		return r.s.order[out[i].ID] > r.s.order[out[j].ID]
	})
	return paginate(out, filter.Page), nil
}

func (r *reportRepo) ExistsFor(ctx context.Context, contentID, reportingUser string) (bool, error) {
	defer r.s.lock(ctx)()
	for _, rep := range r.s.reports {
		if rep.ContentID == contentID && rep.ReportingUser == reportingUser {
			return true, nil
		}
	}
	return false, nil
}

func (r *reportRepo) Settle(ctx context.Context, id string, res models.Resolution) error {
	defer r.s.lock(ctx)()
	rep, ok := r.s.reports[id]
	if !ok {
		return store.ErrNotFound
	}
	if err := r.s.checkWrite(); err != nil {
		return err
	}
	rep.Settled = true
	resCopy := res
	rep.Resolution = &resCopy
	return nil
}
