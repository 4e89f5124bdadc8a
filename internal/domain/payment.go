package domain

import "time"

// PaymentRecord is an append-only log entry for a completed payment.
// ParcelID is not checked against the parcel store.
type PaymentRecord struct {
	ID              string        `json:"_id"`
	ParcelID        string        `json:"parcelId"`
	UserEmail       string        `json:"userEmail"`
	Amount          float64       `json:"amount"`
	PaymentIntentID string        `json:"paymentIntentId"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// NewPaymentRecord stamps a record as paid at the given time.
func NewPaymentRecord(parcelID, userEmail string, amount float64, intentID string, at time.Time) *PaymentRecord {
	return &PaymentRecord{
		ParcelID:        parcelID,
		UserEmail:       userEmail,
		Amount:          amount,
		PaymentIntentID: intentID,
		PaymentStatus:   PaymentStatusPaid,
		CreatedAt:       at,
	}
}
