package admin

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type StaffTokenRequest struct {
	Name string `json:"name" binding:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}
