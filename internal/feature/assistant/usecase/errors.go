package usecase

import "errors"

var (
	// ErrExtractionFailed はレシート解析のいずれかの段階が失敗した場合に返されます。
	ErrExtractionFailed = errors.New("receipt extraction failed")
	// ErrChatFailed はチャット応答の生成に失敗した場合に返されます。
	ErrChatFailed = errors.New("chat failed")
	// ErrInvalidImage はアップロードされたデータが画像として扱えない場合に返されます。
	// ErrExtractionFailedでラップされます。
	ErrInvalidImage = errors.New("invalid receipt image")
)
