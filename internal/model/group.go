// Package model はドメインモデルを定義する。
package model

import "time"

// Group は投稿が任意で属するカテゴリを表す。
// Slugは一覧URL（/group/{slug}/)の一部になるため一意。
// 管理者またはフィクスチャのみが作成し、投稿から参照された後は変更しない。
type Group struct {
	ID          string
	Title       string
	Slug        string
	Description string
	CreatedAt   time.Time
}

// String は表示名を返す。
func (g *Group) String() string {
	return g.Title
}
