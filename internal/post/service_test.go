package post

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/hitoshi/nikki/internal/form"
	"github.com/hitoshi/nikki/internal/model"
)

// --- モック ---

type mockPostRepo struct {
	createFn            func(ctx context.Context, post *model.Post) error
	findByIDAndAuthorFn func(ctx context.Context, id int64, username string) (*model.PostWithAuthor, error)
	listAllFn           func(ctx context.Context, limit, offset int) ([]model.PostWithAuthor, error)
	listByGroupFn       func(ctx context.Context, groupID string, limit, offset int) ([]model.PostWithAuthor, error)
	listByAuthorFn      func(ctx context.Context, authorID string, limit, offset int) ([]model.PostWithAuthor, error)
	countAllFn          func(ctx context.Context) (int, error)
	countByGroupFn      func(ctx context.Context, groupID string) (int, error)
	countByAuthorFn     func(ctx context.Context, authorID string) (int, error)
	updateFn            func(ctx context.Context, post *model.Post) error
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.Post) error {
	return m.createFn(ctx, post)
}
func (m *mockPostRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	return nil, nil
}
func (m *mockPostRepo) FindByIDAndAuthor(ctx context.Context, id int64, username string) (*model.PostWithAuthor, error) {
	return m.findByIDAndAuthorFn(ctx, id, username)
}
func (m *mockPostRepo) ListAll(ctx context.Context, limit, offset int) ([]model.PostWithAuthor, error) {
	return m.listAllFn(ctx, limit, offset)
}
func (m *mockPostRepo) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]model.PostWithAuthor, error) {
	return m.listByGroupFn(ctx, groupID, limit, offset)
}
func (m *mockPostRepo) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]model.PostWithAuthor, error) {
	return m.listByAuthorFn(ctx, authorID, limit, offset)
}
func (m *mockPostRepo) CountAll(ctx context.Context) (int, error) {
	return m.countAllFn(ctx)
}
func (m *mockPostRepo) CountByGroup(ctx context.Context, groupID string) (int, error) {
	return m.countByGroupFn(ctx, groupID)
}
func (m *mockPostRepo) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	return m.countByAuthorFn(ctx, authorID)
}
func (m *mockPostRepo) Update(ctx context.Context, post *model.Post) error {
	return m.updateFn(ctx, post)
}

type mockGroupRepo struct {
	findBySlugFn func(ctx context.Context, slug string) (*model.Group, error)
}

func (m *mockGroupRepo) Create(ctx context.Context, group *model.Group) error { return nil }
func (m *mockGroupRepo) FindByID(ctx context.Context, id string) (*model.Group, error) {
	return nil, nil
}
func (m *mockGroupRepo) FindBySlug(ctx context.Context, slug string) (*model.Group, error) {
	return m.findBySlugFn(ctx, slug)
}
func (m *mockGroupRepo) ListAll(ctx context.Context) ([]*model.Group, error) {
	return nil, nil
}

type mockUserRepo struct {
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.findByUsernameFn(ctx, username)
}

type countingRecorder struct {
	created int
}

func (r *countingRecorder) RecordPostCreated() { r.created++ }

func makePosts(n int) []model.PostWithAuthor {
	posts := make([]model.PostWithAuthor, n)
	for i := range posts {
		posts[i] = model.PostWithAuthor{
			Post:           model.Post{ID: int64(n - i), Text: "post"},
			AuthorUsername: "hitoshi",
		}
	}
	return posts
}

// --- テスト ---

func TestLatest(t *testing.T) {
	var gotLimit, gotOffset int
	postRepo := &mockPostRepo{
		countAllFn: func(ctx context.Context) (int, error) { return 25, nil },
		listAllFn: func(ctx context.Context, limit, offset int) ([]model.PostWithAuthor, error) {
			gotLimit, gotOffset = limit, offset
			return makePosts(10), nil
		},
	}
	svc := NewService(postRepo, &mockGroupRepo{}, &mockUserRepo{}, 10, nil)

	listing, err := svc.Latest(context.Background(), "2")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if gotLimit != 10 || gotOffset != 10 {
		t.Errorf("query limit/offset = %d/%d, want 10/10", gotLimit, gotOffset)
	}
	if listing.Page.Number != 2 || listing.Page.NumPages != 3 {
		t.Errorf("page = %d/%d, want 2/3", listing.Page.Number, listing.Page.NumPages)
	}
	if len(listing.Posts) != 10 {
		t.Errorf("len(Posts) = %d, want 10", len(listing.Posts))
	}
}

func TestLatestClampsOutOfRangePage(t *testing.T) {
	postRepo := &mockPostRepo{
		countAllFn: func(ctx context.Context) (int, error) { return 5, nil },
		listAllFn: func(ctx context.Context, limit, offset int) ([]model.PostWithAuthor, error) {
			if offset != 0 {
				t.Errorf("offset = %d, want 0 after clamping", offset)
			}
			return makePosts(5), nil
		},
	}
	svc := NewService(postRepo, &mockGroupRepo{}, &mockUserRepo{}, 10, nil)

	listing, err := svc.Latest(context.Background(), "99")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if listing.Page.Number != 1 {
		t.Errorf("page number = %d, want 1", listing.Page.Number)
	}
}

func TestByGroup(t *testing.T) {
	group := &model.Group{ID: "g1", Title: "日常", Slug: "daily"}
	postRepo := &mockPostRepo{
		countByGroupFn: func(ctx context.Context, groupID string) (int, error) {
			if groupID != "g1" {
				t.Errorf("groupID = %q, want g1", groupID)
			}
			return 3, nil
		},
		listByGroupFn: func(ctx context.Context, groupID string, limit, offset int) ([]model.PostWithAuthor, error) {
			return makePosts(3), nil
		},
	}
	groupRepo := &mockGroupRepo{
		findBySlugFn: func(ctx context.Context, slug string) (*model.Group, error) {
			if slug == "daily" {
				return group, nil
			}
			return nil, nil
		},
	}
	svc := NewService(postRepo, groupRepo, &mockUserRepo{}, 10, nil)

	listing, err := svc.ByGroup(context.Background(), "daily", "")
	if err != nil {
		t.Fatalf("ByGroup() error = %v", err)
	}
	if listing.Group.Title != "日常" {
		t.Errorf("group title = %q, want 日常", listing.Group.Title)
	}
	if len(listing.Posts) != 3 {
		t.Errorf("len(Posts) = %d, want 3", len(listing.Posts))
	}
}

func TestByGroupNotFound(t *testing.T) {
	groupRepo := &mockGroupRepo{
		findBySlugFn: func(ctx context.Context, slug string) (*model.Group, error) {
			return nil, nil
		},
	}
	svc := NewService(&mockPostRepo{}, groupRepo, &mockUserRepo{}, 10, nil)

	_, err := svc.ByGroup(context.Background(), "nosuch", "1")
	if !model.IsNotFound(err) {
		t.Errorf("ByGroup() error = %v, want not_found", err)
	}
}

func TestByAuthor(t *testing.T) {
	author := &model.User{ID: "u1", Username: "hitoshi"}
	userRepo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username == "hitoshi" {
				return author, nil
			}
			return nil, nil
		},
	}
	postRepo := &mockPostRepo{
		countByAuthorFn: func(ctx context.Context, authorID string) (int, error) { return 12, nil },
		listByAuthorFn: func(ctx context.Context, authorID string, limit, offset int) ([]model.PostWithAuthor, error) {
			if authorID != "u1" {
				t.Errorf("authorID = %q, want u1", authorID)
			}
			return makePosts(10), nil
		},
	}
	svc := NewService(postRepo, &mockGroupRepo{}, userRepo, 10, nil)

	listing, err := svc.ByAuthor(context.Background(), "hitoshi", "1")
	if err != nil {
		t.Fatalf("ByAuthor() error = %v", err)
	}
	if listing.Total != 12 {
		t.Errorf("Total = %d, want 12", listing.Total)
	}
	if listing.Page.NumPages != 2 {
		t.Errorf("NumPages = %d, want 2", listing.Page.NumPages)
	}
}

func TestByAuthorNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := NewService(&mockPostRepo{}, &mockGroupRepo{}, userRepo, 10, nil)

	_, err := svc.ByAuthor(context.Background(), "ghost", "1")
	if !model.IsNotFound(err) {
		t.Errorf("ByAuthor() error = %v, want not_found", err)
	}
}

func TestDetailByAuthor(t *testing.T) {
	found := &model.PostWithAuthor{
		Post:           model.Post{ID: 5, Text: "本文", AuthorID: "u1"},
		AuthorUsername: "hitoshi",
	}
	postRepo := &mockPostRepo{
		findByIDAndAuthorFn: func(ctx context.Context, id int64, username string) (*model.PostWithAuthor, error) {
			if id == 5 && username == "hitoshi" {
				return found, nil
			}
			return nil, nil
		},
		countByAuthorFn: func(ctx context.Context, authorID string) (int, error) { return 8, nil },
	}
	svc := NewService(postRepo, &mockGroupRepo{}, &mockUserRepo{}, 10, nil)

	detail, err := svc.DetailByAuthor(context.Background(), "hitoshi", 5)
	if err != nil {
		t.Fatalf("DetailByAuthor() error = %v", err)
	}
	if detail.Post.ID != 5 {
		t.Errorf("post ID = %d, want 5", detail.Post.ID)
	}
	if detail.AuthorPostCount != 8 {
		t.Errorf("AuthorPostCount = %d, want 8", detail.AuthorPostCount)
	}

	_, err = svc.DetailByAuthor(context.Background(), "other", 5)
	if !model.IsNotFound(err) {
		t.Errorf("DetailByAuthor() with wrong author error = %v, want not_found", err)
	}
}

func TestCreate(t *testing.T) {
	var created *model.Post
	postRepo := &mockPostRepo{
		createFn: func(ctx context.Context, post *model.Post) error {
			post.ID = 42
			created = post
			return nil
		},
	}
	recorder := &countingRecorder{}
	svc := NewService(postRepo, &mockGroupRepo{}, &mockUserRepo{}, 10, recorder)

	f := form.ParsePostForm(url.Values{"text": {"新しい日記"}, "group": {"g1"}})
	author := &model.User{ID: "u1", Username: "hitoshi"}

	post, err := svc.Create(context.Background(), author, f)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if post.ID != 42 {
		t.Errorf("post ID = %d, want 42", post.ID)
	}
	if created.AuthorID != "u1" {
		t.Errorf("AuthorID = %q, want u1", created.AuthorID)
	}
	if created.GroupID == nil || *created.GroupID != "g1" {
		t.Errorf("GroupID = %v, want g1", created.GroupID)
	}
	if created.PublishedAt.IsZero() {
		t.Error("PublishedAt must be set on create")
	}
	if recorder.created != 1 {
		t.Errorf("RecordPostCreated called %d times, want 1", recorder.created)
	}
}

func TestForEditRejectsNonAuthor(t *testing.T) {
	found := &model.PostWithAuthor{
		Post:           model.Post{ID: 5, AuthorID: "u1"},
		AuthorUsername: "hitoshi",
	}
	postRepo := &mockPostRepo{
		findByIDAndAuthorFn: func(ctx context.Context, id int64, username string) (*model.PostWithAuthor, error) {
			return found, nil
		},
	}
	svc := NewService(postRepo, &mockGroupRepo{}, &mockUserRepo{}, 10, nil)

	other := &model.User{ID: "u2", Username: "someone"}
	_, err := svc.ForEdit(context.Background(), other, "hitoshi", 5)
	if !model.IsNotAuthor(err) {
		t.Errorf("ForEdit() error = %v, want not-author error", err)
	}

	owner := &model.User{ID: "u1", Username: "hitoshi"}
	got, err := svc.ForEdit(context.Background(), owner, "hitoshi", 5)
	if err != nil {
		t.Fatalf("ForEdit() by owner error = %v", err)
	}
	if got.ID != 5 {
		t.Errorf("post ID = %d, want 5", got.ID)
	}
}

func TestUpdatePreservesAuthorAndPublishedAt(t *testing.T) {
	published := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	groupID := "g1"
	found := &model.PostWithAuthor{
		Post: model.Post{
			ID:          5,
			Text:        "元の本文",
			AuthorID:    "u1",
			GroupID:     &groupID,
			PublishedAt: published,
		},
		AuthorUsername: "hitoshi",
	}
	var updated *model.Post
	postRepo := &mockPostRepo{
		findByIDAndAuthorFn: func(ctx context.Context, id int64, username string) (*model.PostWithAuthor, error) {
			return found, nil
		},
		updateFn: func(ctx context.Context, post *model.Post) error {
			updated = post
			return nil
		},
	}
	svc := NewService(postRepo, &mockGroupRepo{}, &mockUserRepo{}, 10, nil)

	owner := &model.User{ID: "u1", Username: "hitoshi"}
	f := form.ParsePostForm(url.Values{"text": {"直した本文"}, "group": {""}})

	post, err := svc.Update(context.Background(), owner, "hitoshi", 5, f)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if post.Text != "直した本文" {
		t.Errorf("Text = %q, want 直した本文", post.Text)
	}
	if post.GroupID != nil {
		t.Errorf("GroupID = %v, want nil after clearing", post.GroupID)
	}
	if updated.AuthorID != "u1" {
		t.Errorf("AuthorID = %q, author must not change", updated.AuthorID)
	}
	if !updated.PublishedAt.Equal(published) {
		t.Errorf("PublishedAt = %v, must not change on edit", updated.PublishedAt)
	}
}
