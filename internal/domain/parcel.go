package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Document keys used by every store and by the HTTP API.
const (
	FieldID            = "_id"
	FieldSenderName    = "sender_name"
	FieldReceiverName  = "receiver_name"
	FieldUserEmail     = "user_email"
	FieldPaymentStatus = "payment_status"
	FieldPaidAt        = "paidAt"
)

// PaymentStatus is empty for an unpaid parcel; stores only ever write "paid".
type PaymentStatus string

const PaymentStatusPaid PaymentStatus = "paid"

// Represents a single delivery record tracked by the service.
// Known fields are typed; anything else the client sends is kept in Extra
// and stored verbatim alongside them.
// PaymentStatus is empty until the parcel is marked paid.
type Parcel struct {
	ID            string
	SenderName    string
	ReceiverName  string
	UserEmail     string
	PaymentStatus PaymentStatus
	PaidAt        *time.Time
	Extra         map[string]any
}

// Validate enforces the only schema rule: sender and receiver are required.
func (p *Parcel) Validate() error {
	if strings.TrimSpace(p.SenderName) == "" || strings.TrimSpace(p.ReceiverName) == "" {
		return NewValidationError("Sender & Receiver required!")
	}
	return nil
}

// IsPaid reports whether the parcel reached the terminal payment state.
func (p *Parcel) IsPaid() bool {
	return p.PaymentStatus == PaymentStatusPaid
}

// Fields flattens the parcel into a document without its identifier.
func (p *Parcel) Fields() map[string]any {
	out := make(map[string]any, len(p.Extra)+5)
	for k, v := range p.Extra {
		out[k] = v
	}

	out[FieldSenderName] = p.SenderName
	out[FieldReceiverName] = p.ReceiverName
	if p.UserEmail != "" {
		out[FieldUserEmail] = p.UserEmail
	}
	if p.PaymentStatus != "" {
		out[FieldPaymentStatus] = string(p.PaymentStatus)
	}
	if p.PaidAt != nil {
		out[FieldPaidAt] = *p.PaidAt
	}

	return out
}

// ParcelFromFields builds a Parcel from a flat document.
// Values of an unexpected type for a known key, including a paidAt that is not a
// timestamp, are kept in Extra untouched. Stored documents always decode.
func ParcelFromFields(fields map[string]any) *Parcel {
	p := &Parcel{Extra: make(map[string]any)}

	for k, v := range fields {
		switch k {
		case FieldID:
			if s, ok := v.(string); ok {
				p.ID = s
				continue
			}
		case FieldSenderName:
			if s, ok := v.(string); ok {
				p.SenderName = s
				continue
			}
		case FieldReceiverName:
			if s, ok := v.(string); ok {
				p.ReceiverName = s
				continue
			}
		case FieldUserEmail:
			if s, ok := v.(string); ok {
				p.UserEmail = s
				continue
			}
		case FieldPaymentStatus:
			if s, ok := v.(string); ok {
				p.PaymentStatus = PaymentStatus(s)
				continue
			}
		case FieldPaidAt:
			if t, err := parseTime(v); err == nil && t != nil {
				p.PaidAt = t
				continue
			}
		}

		p.Extra[k] = v
	}

	return p
}

func parseTime(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &t, nil
	case *time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, nil
	}
}

func (p Parcel) MarshalJSON() ([]byte, error) {
	doc := p.Fields()
	if p.ID != "" {
		doc[FieldID] = p.ID
	}
	return json.Marshal(doc)
}

func (p *Parcel) UnmarshalJSON(b []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	*p = *ParcelFromFields(fields)
	return nil
}
