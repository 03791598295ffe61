// Package form は投稿フォームのバインディングとバリデーションを提供する。
package form

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hitoshi/nikki/internal/model"
)

// フィールド名
const (
	FieldText  = "text"
	FieldGroup = "group"
)

// GroupFinder はグループ存在確認に必要なインターフェース。
// repository.GroupRepositoryの部分集合として定義する。
type GroupFinder interface {
	FindByID(ctx context.Context, id string) (*model.Group, error)
}

// PostForm は投稿の入力値とフィールド単位のエラーを保持する。
// バリデーション失敗時は何も永続化せず、呼び出し側がエラー付きで再描画する。
type PostForm struct {
	Text    string
	GroupID string // 選択されたグループID。未選択は空文字列。
	Errors  map[string]string
}

// NewPostForm は空のPostFormを生成する。新規投稿フォームのGET表示用。
func NewPostForm() *PostForm {
	return &PostForm{Errors: map[string]string{}}
}

// ParsePostForm は送信されたフォーム値からPostFormを生成する。
func ParsePostForm(values url.Values) *PostForm {
	return &PostForm{
		Text:    values.Get(FieldText),
		GroupID: strings.TrimSpace(values.Get(FieldGroup)),
		Errors:  map[string]string{},
	}
}

// FromPost は既存投稿の値で埋めたPostFormを生成する。編集フォームのGET表示用。
func FromPost(post *model.Post) *PostForm {
	f := &PostForm{
		Text:   post.Text,
		Errors: map[string]string{},
	}
	if post.GroupID != nil {
		f.GroupID = *post.GroupID
	}
	return f
}

// Validate はフォーム値を検証し、有効ならtrueを返す。
// 本文は空白のみを許さない。グループは指定されている場合のみ存在確認する。
func (f *PostForm) Validate(ctx context.Context, groups GroupFinder) (bool, error) {
	f.Errors = map[string]string{}

	if strings.TrimSpace(f.Text) == "" {
		f.Errors[FieldText] = "本文を入力してください。"
	}

	if f.GroupID != "" {
		group, err := groups.FindByID(ctx, f.GroupID)
		if err != nil {
			return false, fmt.Errorf("グループの存在確認に失敗しました: %w", err)
		}
		if group == nil {
			f.Errors[FieldGroup] = "指定されたグループが存在しません。"
		}
	}

	return len(f.Errors) == 0, nil
}

// HasError は指定フィールドにエラーがあるかを返す。
func (f *PostForm) HasError(field string) bool {
	_, ok := f.Errors[field]
	return ok
}

// Apply は検証済みの値を投稿に反映する。
// 著者とpublished_atには触れない。
func (f *PostForm) Apply(post *model.Post) {
	post.Text = f.Text
	if f.GroupID == "" {
		post.GroupID = nil
	} else {
		groupID := f.GroupID
		post.GroupID = &groupID
	}
}
