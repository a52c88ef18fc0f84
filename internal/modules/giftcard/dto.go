package giftcard

type PurchaseRequest struct {
	Amount         float64 `json:"amount" binding:"required,gt=0"` // dollars
	SenderName     string  `json:"sender_name" binding:"required"`
	SenderEmail    string  `json:"sender_email" binding:"required,email"`
	RecipientName  string  `json:"recipient_name" binding:"required"`
	RecipientEmail string  `json:"recipient_email" binding:"required,email"`
	Message        string  `json:"message"`
}

type RedeemRequest struct {
	Code string `json:"code" binding:"required"` // short redeem code or full id
}

type UseRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"` // dollars
	ServiceName string  `json:"service_name"`
	Notes       string  `json:"notes"`
}
