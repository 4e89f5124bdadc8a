package repositories

import (
	"time"

	"gorm.io/datatypes"
)

// parcelRow stores the parcel document as jsonb. user_email and payment_status are
// mirrored into columns so the list filter and the paid transition can use them.
// seq is filled by the database and orders rows by insertion.
type parcelRow struct {
	ID            string            `gorm:"column:id;type:uuid;primaryKey"`
	Seq           int64             `gorm:"column:seq;type:bigserial;<-:false"`
	UserEmail     string            `gorm:"column:user_email;index"`
	PaymentStatus string            `gorm:"column:payment_status"`
	Doc           datatypes.JSONMap `gorm:"column:doc;type:jsonb;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at"`
}

func (parcelRow) TableName() string { return "parcels" }

type paymentRow struct {
	ID              string    `gorm:"column:id;type:uuid;primaryKey"`
	Seq             int64     `gorm:"column:seq;type:bigserial;<-:false"`
	ParcelID        string    `gorm:"column:parcel_id"`
	UserEmail       string    `gorm:"column:user_email;index"`
	Amount          float64   `gorm:"column:amount"`
	PaymentIntentID string    `gorm:"column:payment_intent_id"`
	PaymentStatus   string    `gorm:"column:payment_status"`
	CreatedAt       time.Time `gorm:"column:created_at;index"`
}

func (paymentRow) TableName() string { return "paymentHistory" }
