// Package model はドメインモデルを定義する。
package model

import (
	"time"
	"unicode/utf8"
)

// previewRunes は一覧やログで使うプレビューの最大文字数。
const previewRunes = 15

// Post はユーザーが投稿した記事を表す。
// 著者は作成後に変更されない。グループは任意で、編集で付け替えられる。
type Post struct {
	ID          int64
	Text        string
	AuthorID    string
	GroupID     *string
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Preview は本文の先頭15文字を返す。管理画面やログでの表示用。
func (p *Post) Preview() string {
	if utf8.RuneCountInString(p.Text) <= previewRunes {
		return p.Text
	}
	runes := []rune(p.Text)
	return string(runes[:previewRunes])
}

// PostWithAuthor は投稿と著者・グループ情報をJOINして取得した読み取り専用モデル。
// 一覧表示で追加クエリを発行しないために使う。
type PostWithAuthor struct {
	Post
	AuthorUsername string
	GroupTitle     string
	GroupSlug      string
}

// HasGroup は投稿にグループが設定されているかを返す。
func (p *PostWithAuthor) HasGroup() bool {
	return p.GroupSlug != ""
}
