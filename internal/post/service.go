// Package post は投稿の作成・編集・一覧取得のサービスを提供する。
package post

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/nikki/internal/form"
	"github.com/hitoshi/nikki/internal/model"
	"github.com/hitoshi/nikki/internal/pagination"
	"github.com/hitoshi/nikki/internal/repository"
)

// CreationRecorder は投稿作成メトリクスの記録に必要なインターフェース。
// metrics.Recorderの部分集合として定義する。
type CreationRecorder interface {
	RecordPostCreated()
}

// nopRecorder はメトリクス未設定時に使うレコーダー。
type nopRecorder struct{}

func (nopRecorder) RecordPostCreated() {}

// Service は投稿のユースケースを実装するサービス。
type Service struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	pageSize  int
	recorder  CreationRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderがnilの場合はメトリクスを記録しない。
func NewService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	pageSize int,
	recorder CreationRecorder,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		pageSize:  pageSize,
		recorder:  recorder,
	}
}

// Listing は新着順の投稿一覧とページ情報。
type Listing struct {
	Posts []model.PostWithAuthor
	Page  pagination.Page
}

// GroupListing はグループ別一覧の結果。
type GroupListing struct {
	Group *model.Group
	Posts []model.PostWithAuthor
	Page  pagination.Page
}

// AuthorListing は著者プロフィール一覧の結果。
// Totalは著者の全投稿数で、ページングとは独立に表示する。
type AuthorListing struct {
	Author *model.User
	Total  int
	Posts  []model.PostWithAuthor
	Page   pagination.Page
}

// Detail は投稿詳細の結果。
type Detail struct {
	Post            *model.PostWithAuthor
	AuthorPostCount int
}

// Latest は全投稿の新着順一覧をページ指定付きで返す。
// rawPageが不正な場合は1ページ目、範囲外の場合は最終ページに丸める。
func (s *Service) Latest(ctx context.Context, rawPage string) (*Listing, error) {
	total, err := s.postRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("投稿数の取得に失敗しました: %w", err)
	}

	page := pagination.New(total, s.pageSize).Page(rawPage)
	posts, err := s.postRepo.ListAll(ctx, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}

	return &Listing{Posts: posts, Page: page}, nil
}

// ByGroup は指定slugのグループの投稿一覧を返す。
// グループが存在しない場合はnot_foundカテゴリのAppErrorを返す。
func (s *Service) ByGroup(ctx context.Context, slug, rawPage string) (*GroupListing, error) {
	group, err := s.groupRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("グループの取得に失敗しました: %w", err)
	}
	if group == nil {
		return nil, model.NewGroupNotFoundError(slug)
	}

	total, err := s.postRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("グループ投稿数の取得に失敗しました: %w", err)
	}

	page := pagination.New(total, s.pageSize).Page(rawPage)
	posts, err := s.postRepo.ListByGroup(ctx, group.ID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("グループ投稿一覧の取得に失敗しました: %w", err)
	}

	return &GroupListing{Group: group, Posts: posts, Page: page}, nil
}

// ByAuthor は指定ユーザー名の著者の投稿一覧を返す。
// ユーザーが存在しない場合はnot_foundカテゴリのAppErrorを返す。
func (s *Service) ByAuthor(ctx context.Context, username, rawPage string) (*AuthorListing, error) {
	author, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("著者の取得に失敗しました: %w", err)
	}
	if author == nil {
		return nil, model.NewUserNotFoundError(username)
	}

	total, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("著者投稿数の取得に失敗しました: %w", err)
	}

	page := pagination.New(total, s.pageSize).Page(rawPage)
	posts, err := s.postRepo.ListByAuthor(ctx, author.ID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("著者投稿一覧の取得に失敗しました: %w", err)
	}

	return &AuthorListing{Author: author, Total: total, Posts: posts, Page: page}, nil
}

// DetailByAuthor は投稿IDと著者ユーザー名の組で投稿詳細を返す。
// IDと著者の組が一致しない場合はnot_foundカテゴリのAppErrorを返す。
func (s *Service) DetailByAuthor(ctx context.Context, username string, postID int64) (*Detail, error) {
	found, err := s.postRepo.FindByIDAndAuthor(ctx, postID, username)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if found == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	count, err := s.postRepo.CountByAuthor(ctx, found.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("著者投稿数の取得に失敗しました: %w", err)
	}

	return &Detail{Post: found, AuthorPostCount: count}, nil
}

// Create は検証済みフォームから新しい投稿を作成する。
// 著者は呼び出し時点のログインユーザーに固定される。
func (s *Service) Create(ctx context.Context, author *model.User, f *form.PostForm) (*model.Post, error) {
	now := time.Now()
	post := &model.Post{
		AuthorID:    author.ID,
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.Apply(post)

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}

	s.recorder.RecordPostCreated()
	return post, nil
}

// ForEdit は編集対象の投稿を所有権チェック付きで返す。
// 投稿が存在しない場合はnot_found、著者以外の場合はauthカテゴリのAppErrorを返す。
func (s *Service) ForEdit(ctx context.Context, user *model.User, username string, postID int64) (*model.PostWithAuthor, error) {
	found, err := s.postRepo.FindByIDAndAuthor(ctx, postID, username)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if found == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	if found.AuthorID != user.ID {
		return nil, model.NewNotAuthorError(postID)
	}
	return found, nil
}

// Update は検証済みフォームの値で投稿の本文とグループを更新する。
// 著者とpublished_atは保持される。所有権チェックはForEditと同じ。
func (s *Service) Update(ctx context.Context, user *model.User, username string, postID int64, f *form.PostForm) (*model.Post, error) {
	found, err := s.ForEdit(ctx, user, username, postID)
	if err != nil {
		return nil, err
	}

	post := found.Post
	f.Apply(&post)
	post.UpdatedAt = time.Now()

	if err := s.postRepo.Update(ctx, &post); err != nil {
		return nil, fmt.Errorf("投稿の更新に失敗しました: %w", err)
	}

	return &post, nil
}
