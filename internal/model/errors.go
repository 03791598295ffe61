// Package model はドメインモデルを定義する。
package model

import "fmt"

// AppError は統一エラーフォーマットを表す。
// カテゴリはハンドラーでのHTTPレスポンス分岐に使う。
type AppError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: not_found, conflict, validation, auth
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeGroupNotFound = "GROUP_NOT_FOUND"
	ErrCodeUserNotFound  = "USER_NOT_FOUND"
	ErrCodePostNotFound  = "POST_NOT_FOUND"
	ErrCodeUsernameTaken = "USERNAME_TAKEN"
	ErrCodeSlugTaken     = "SLUG_TAKEN"
	ErrCodeInvalidForm   = "INVALID_FORM"
	ErrCodeLoginRequired = "LOGIN_REQUIRED"
	ErrCodeNotAuthor     = "NOT_AUTHOR"
	ErrCodeLoginFailed   = "LOGIN_FAILED"
)

// IsNotFound はエラーがnot_foundカテゴリのAppErrorかを判定する。
func IsNotFound(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Category == "not_found"
}

// IsConflict はエラーがconflictカテゴリのAppErrorかを判定する。
func IsConflict(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Category == "conflict"
}

// IsNotAuthor はエラーが著者以外による編集エラーかを判定する。
func IsNotAuthor(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == ErrCodeNotAuthor
}

// NewGroupNotFoundError はグループ未検出エラーを生成する。
func NewGroupNotFoundError(slug string) *AppError {
	return &AppError{
		Code:     ErrCodeGroupNotFound,
		Message:  fmt.Sprintf("指定されたグループが見つかりません: %s", slug),
		Category: "not_found",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(username string) *AppError {
	return &AppError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", username),
		Category: "not_found",
	}
}

// NewPostNotFoundError は投稿未検出エラーを生成する。
func NewPostNotFoundError(postID int64) *AppError {
	return &AppError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %d", postID),
		Category: "not_found",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *AppError {
	return &AppError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("このユーザー名は既に使われています: %s", username),
		Category: "conflict",
	}
}

// NewSlugTakenError はグループslug重複エラーを生成する。
func NewSlugTakenError(slug string) *AppError {
	return &AppError{
		Code:     ErrCodeSlugTaken,
		Message:  fmt.Sprintf("このslugは既に使われています: %s", slug),
		Category: "conflict",
	}
}

// NewNotAuthorError は著者以外による編集エラーを生成する。
// ハンドラーはこのエラーを投稿詳細へのリダイレクトとして扱う。
func NewNotAuthorError(postID int64) *AppError {
	return &AppError{
		Code:     ErrCodeNotAuthor,
		Message:  fmt.Sprintf("投稿の著者ではありません: %d", postID),
		Category: "auth",
	}
}

// NewLoginFailedError はログイン失敗エラーを生成する。
// ユーザーの存在有無を区別しない単一のメッセージを返す。
func NewLoginFailedError() *AppError {
	return &AppError{
		Code:     ErrCodeLoginFailed,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
	}
}
