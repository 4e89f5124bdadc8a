package dto

type CreatePaymentIntentRequest struct {
	AmountInCents int64 `json:"amountInCents"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type RecordPaymentRequest struct {
	ParcelID        string  `json:"parcelId"`
	UserEmail       string  `json:"userEmail"`
	Amount          float64 `json:"amount"`
	PaymentIntentID string  `json:"paymentIntentId"`
}

type RecordPaymentResponse struct {
	Message string         `json:"message"`
	Result  InsertResponse `json:"result"`
}
