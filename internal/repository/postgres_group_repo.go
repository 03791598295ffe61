package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nikki/internal/model"
)

// PostgresGroupRepo はPostgreSQLを使用したグループリポジトリ。
type PostgresGroupRepo struct {
	db *sql.DB
}

// NewPostgresGroupRepo はPostgresGroupRepoを生成する。
func NewPostgresGroupRepo(db *sql.DB) *PostgresGroupRepo {
	return &PostgresGroupRepo{db: db}
}

// Create はグループを作成する。
// slugが重複している場合はconflictカテゴリのAppErrorを返す。
func (r *PostgresGroupRepo) Create(ctx context.Context, group *model.Group) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO groups (id, title, slug, description, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		group.ID, group.Title, group.Slug, group.Description, group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return model.NewSlugTakenError(group.Slug)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindByID(ctx context.Context, id string) (*model.Group, error) {
	group := &model.Group{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, slug, description, created_at FROM groups WHERE id = $1`,
		id,
	).Scan(&group.ID, &group.Title, &group.Slug, &group.Description, &group.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group by ID: %w", err)
	}

	return group, nil
}

// FindBySlug は指定slugのグループを取得する。見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindBySlug(ctx context.Context, slug string) (*model.Group, error) {
	group := &model.Group{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, slug, description, created_at FROM groups WHERE slug = $1`,
		slug,
	).Scan(&group.ID, &group.Title, &group.Slug, &group.Description, &group.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group by slug: %w", err)
	}

	return group, nil
}

// ListAll は全グループをタイトル昇順で返す。投稿フォームの選択肢用。
func (r *PostgresGroupRepo) ListAll(ctx context.Context) ([]*model.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, slug, description, created_at FROM groups ORDER BY title`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*model.Group
	for rows.Next() {
		group := &model.Group{}
		if err := rows.Scan(&group.ID, &group.Title, &group.Slug, &group.Description, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// compile-time interface check
var _ GroupRepository = (*PostgresGroupRepo)(nil)
