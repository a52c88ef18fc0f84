package payment

type DepositSessionRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

type DepositSessionResponse struct {
	URL string `json:"url"`
}
