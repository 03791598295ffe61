package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nikki/internal/model"
)

// postListColumns は一覧取得で使うSELECT句。
// 著者とグループをJOINし、published_at降順・id降順（挿入順）で安定に並べる。
const postListColumns = `
	SELECT p.id, p.text, p.author_id, p.group_id,
	       p.published_at, p.created_at, p.updated_at,
	       u.username,
	       COALESCE(g.title, ''), COALESCE(g.slug, '')
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

const postListOrder = ` ORDER BY p.published_at DESC, p.id DESC LIMIT $%d OFFSET $%d`

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// Create は投稿を作成し、採番されたIDをpost.IDに書き戻す。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	var groupID sql.NullString
	if post.GroupID != nil {
		groupID = sql.NullString{String: *post.GroupID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (text, author_id, group_id, published_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		post.Text, post.AuthorID, groupID, post.PublishedAt, post.CreatedAt, post.UpdatedAt,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	post := &model.Post{}
	var groupID sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, text, author_id, group_id, published_at, created_at, updated_at
		 FROM posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &post.Text, &post.AuthorID, &groupID,
		&post.PublishedAt, &post.CreatedAt, &post.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}

	if groupID.Valid {
		post.GroupID = &groupID.String
	}
	return post, nil
}

// FindByIDAndAuthor は投稿IDと著者ユーザー名の組で投稿を取得する。
// どちらか一方でも一致しない場合はnilを返す。
func (r *PostgresPostRepo) FindByIDAndAuthor(ctx context.Context, id int64, username string) (*model.PostWithAuthor, error) {
	row := r.db.QueryRowContext(ctx,
		postListColumns+` WHERE p.id = $1 AND u.username = $2`,
		id, username,
	)

	post, err := scanPostWithAuthor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("著者指定での投稿の取得に失敗しました: %w", err)
	}
	return post, nil
}

// ListAll は全投稿を新着順で返す。
func (r *PostgresPostRepo) ListAll(ctx context.Context, limit, offset int) ([]model.PostWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		postListColumns+fmt.Sprintf(postListOrder, 1, 2),
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	return collectPosts(rows)
}

// ListByGroup は指定グループの投稿を新着順で返す。
func (r *PostgresPostRepo) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]model.PostWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		postListColumns+` WHERE p.group_id = $1`+fmt.Sprintf(postListOrder, 2, 3),
		groupID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("グループの投稿一覧の取得に失敗しました: %w", err)
	}
	return collectPosts(rows)
}

// ListByAuthor は指定ユーザーの投稿を新着順で返す。
func (r *PostgresPostRepo) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]model.PostWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		postListColumns+` WHERE p.author_id = $1`+fmt.Sprintf(postListOrder, 2, 3),
		authorID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("著者の投稿一覧の取得に失敗しました: %w", err)
	}
	return collectPosts(rows)
}

// CountAll は全投稿数を返す。
func (r *PostgresPostRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("投稿数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// CountByGroup は指定グループの投稿数を返す。
func (r *PostgresPostRepo) CountByGroup(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE group_id = $1`, groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("グループの投稿数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// CountByAuthor は指定ユーザーの投稿数を返す。
func (r *PostgresPostRepo) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("著者の投稿数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// Update は投稿の本文とグループのみを更新する。
// 著者とpublished_atは変更しない。
func (r *PostgresPostRepo) Update(ctx context.Context, post *model.Post) error {
	var groupID sql.NullString
	if post.GroupID != nil {
		groupID = sql.NullString{String: *post.GroupID, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET text = $1, group_id = $2, updated_at = now() WHERE id = $3`,
		post.Text, groupID, post.ID,
	)
	if err != nil {
		return fmt.Errorf("投稿の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewPostNotFoundError(post.ID)
	}
	return nil
}

// rowScanner はsql.Rowとsql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostWithAuthor(row rowScanner) (*model.PostWithAuthor, error) {
	post := &model.PostWithAuthor{}
	var groupID sql.NullString

	err := row.Scan(
		&post.ID, &post.Text, &post.AuthorID, &groupID,
		&post.PublishedAt, &post.CreatedAt, &post.UpdatedAt,
		&post.AuthorUsername,
		&post.GroupTitle, &post.GroupSlug,
	)
	if err != nil {
		return nil, err
	}

	if groupID.Valid {
		post.GroupID = &groupID.String
	}
	return post, nil
}

func collectPosts(rows *sql.Rows) ([]model.PostWithAuthor, error) {
	defer rows.Close()

	var posts []model.PostWithAuthor
	for rows.Next() {
		post, err := scanPostWithAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("投稿行の読み取りに失敗しました: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投稿一覧の走査に失敗しました: %w", err)
	}

	return posts, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
