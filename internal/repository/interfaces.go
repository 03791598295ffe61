// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/nikki/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// ユーザー名が重複している場合はconflictカテゴリのAppErrorを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// GroupRepository はグループデータの永続化インターフェース。
// グループの更新・削除は存在しない。作成は管理者操作とフィクスチャのみが行う。
type GroupRepository interface {
	// Create はグループを作成する。
	// slugが重複している場合はconflictカテゴリのAppErrorを返す。
	Create(ctx context.Context, group *model.Group) error

	// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Group, error)

	// FindBySlug は指定slugのグループを取得する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Group, error)

	// ListAll は全グループをタイトル昇順で返す。投稿フォームの選択肢用。
	ListAll(ctx context.Context) ([]*model.Group, error)
}

// PostRepository は投稿データの永続化インターフェース。
// 一覧は常にpublished_at降順、同時刻はid降順（挿入順）で安定に並ぶ。
// 削除操作は公開していない。
type PostRepository interface {
	// Create は投稿を作成し、採番されたIDをpost.IDに書き戻す。
	Create(ctx context.Context, post *model.Post) error

	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Post, error)

	// FindByIDAndAuthor は投稿IDと著者ユーザー名の組で投稿を取得する。
	// どちらか一方でも一致しない場合はnilを返す。
	FindByIDAndAuthor(ctx context.Context, id int64, username string) (*model.PostWithAuthor, error)

	// ListAll は全投稿を新着順で返す。
	ListAll(ctx context.Context, limit, offset int) ([]model.PostWithAuthor, error)

	// ListByGroup は指定グループの投稿を新着順で返す。
	ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]model.PostWithAuthor, error)

	// ListByAuthor は指定ユーザーの投稿を新着順で返す。
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]model.PostWithAuthor, error)

	// CountAll は全投稿数を返す。
	CountAll(ctx context.Context) (int, error)

	// CountByGroup は指定グループの投稿数を返す。
	CountByGroup(ctx context.Context, groupID string) (int, error)

	// CountByAuthor は指定ユーザーの投稿数を返す。
	CountByAuthor(ctx context.Context, authorID string) (int, error)

	// Update は投稿の本文とグループのみを更新する。
	// 著者とpublished_atは変更しない。
	Update(ctx context.Context, post *model.Post) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
