package repository

import (
	"errors"
	"strings"
	"testing"

	"github.com/lib/pq"

	"github.com/hitoshi/nikki/internal/model"
)

// 各Postgresリポジトリがインターフェースを満たすことを検証
func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
	var _ GroupRepository = (*PostgresGroupRepo)(nil)
	var _ PostRepository = (*PostgresPostRepo)(nil)
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

// コンストラクタが正しく初期化されることを検証
func TestNewPostgresRepos_Initialize(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Error("expected non-nil user repo")
	}
	if NewPostgresGroupRepo(nil) == nil {
		t.Error("expected non-nil group repo")
	}
	if NewPostgresPostRepo(nil) == nil {
		t.Error("expected non-nil post repo")
	}
	if NewPostgresSessionRepo(nil) == nil {
		t.Error("expected non-nil session repo")
	}
}

// 一意制約違反の判定ロジックを検証
func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"wrapped unique violation", wrapErr(&pq.Error{Code: "23505"}), true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func wrapErr(err error) error {
	return errors.Join(errors.New("insert failed"), err)
}

// 一覧SQLの並び順がpublished_at降順・id降順であることを検証
// （同時刻の投稿は挿入順で安定に並ぶ必要がある）
func TestPostListOrder_StableTiebreak(t *testing.T) {
	if !strings.Contains(postListOrder, "p.published_at DESC, p.id DESC") {
		t.Errorf("postListOrder = %q, want published_at DESC with id DESC tiebreak", postListOrder)
	}
}

// 23505がconflictカテゴリのAppErrorに変換されることを確認するための
// エラーマッピングの直接検証
func TestUniqueViolationMapsToConflict(t *testing.T) {
	err := model.NewUsernameTakenError("mr_tester")
	if !model.IsConflict(err) {
		t.Error("expected username taken error to be conflict")
	}
	err = model.NewSlugTakenError("test-form")
	if !model.IsConflict(err) {
		t.Error("expected slug taken error to be conflict")
	}
}
