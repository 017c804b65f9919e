package dto

import "time"

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type PaymentIntentResponse struct {
	Success         bool   `json:"success"`
	ClientSecret    string `json:"client_secret"`
	OrderID         int64  `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type NonceResponse struct {
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

type ApprovalRequestResponse struct {
	Success bool   `json:"success"`
	OrderID int64  `json:"order_id"`
	Email   string `json:"email"`
	Resent  bool   `json:"resent"`
}

type OrderNoteResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
