package giftcard

import "errors"

var (
	ErrNotFound            = errors.New("gift card not found")
	ErrAmbiguousCode       = errors.New("redeem code matches more than one card")
	ErrAlreadyRedeemed     = errors.New("gift card already redeemed")
	ErrNotActive           = errors.New("gift card is not active")
	ErrTestPurchase        = errors.New("gift card is a test-mode purchase")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
