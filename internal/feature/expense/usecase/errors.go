package usecase

import "errors"

var (
	// ErrStorageUnavailable は台帳の読み書きに失敗した場合に返されます。
	ErrStorageUnavailable = errors.New("expense storage unavailable")
	// ErrNoOwner は所有者IDが指定されていない場合に返されます。
	ErrNoOwner = errors.New("expense owner is required")
)
