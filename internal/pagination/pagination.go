// Package pagination は一覧表示のページ分割を提供する。
package pagination

import "strconv"

// DefaultPageSize は1ページあたりの投稿数のデフォルト値。
const DefaultPageSize = 10

// Paginator は件数とページサイズからページ割りを計算する。
type Paginator struct {
	total    int
	pageSize int
}

// New はPaginatorを生成する。pageSizeが0以下の場合はDefaultPageSizeを使う。
func New(total, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	return &Paginator{total: total, pageSize: pageSize}
}

// NumPages は総ページ数を返す。空のコレクションでも1ページとして扱う。
func (p *Paginator) NumPages() int {
	if p.total == 0 {
		return 1
	}
	return (p.total + p.pageSize - 1) / p.pageSize
}

// Page はクエリパラメータの生の値からページを解決する。
// 欠落・非数値・1未満は1ページ目、最終ページ超過は最終ページに丸める。
func (p *Paginator) Page(raw string) Page {
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		number = 1
	}
	if last := p.NumPages(); number > last {
		number = last
	}

	return Page{
		Number:   number,
		NumPages: p.NumPages(),
		Total:    p.total,
		pageSize: p.pageSize,
	}
}

// Page は解決済みの1ページ分のウィンドウを表す。
type Page struct {
	Number   int
	NumPages int
	Total    int
	pageSize int
}

// Limit はこのページで取得する最大件数を返す。
func (pg Page) Limit() int {
	return pg.pageSize
}

// Offset はこのページの先頭要素のオフセットを返す。
func (pg Page) Offset() int {
	return (pg.Number - 1) * pg.pageSize
}

// HasNext は次ページが存在するかを返す。
func (pg Page) HasNext() bool {
	return pg.Number < pg.NumPages
}

// HasPrev は前ページが存在するかを返す。
func (pg Page) HasPrev() bool {
	return pg.Number > 1
}

// NextNumber は次ページ番号を返す。HasNextがfalseの場合は現在ページを返す。
func (pg Page) NextNumber() int {
	if pg.HasNext() {
		return pg.Number + 1
	}
	return pg.Number
}

// PrevNumber は前ページ番号を返す。HasPrevがfalseの場合は現在ページを返す。
func (pg Page) PrevNumber() int {
	if pg.HasPrev() {
		return pg.Number - 1
	}
	return pg.Number
}
