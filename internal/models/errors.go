package models

import (
	"errors"
)

var (
	ErrUserNotFound         = errors.New("models: user not found")
	ErrInvalidCredentials   = errors.New("models: invalid credentials")
	ErrDuplicateEmail       = errors.New("models: duplicate email")
	ErrUnknownProduct       = errors.New("models: unknown product")
	ErrInsufficientBalance  = errors.New("models: insufficient balance")
	ErrDuplicateTransaction = errors.New("models: transaction already applied")
	ErrInvalidEntitlement   = errors.New("models: invalid entitlement type")
)
