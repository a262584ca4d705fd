package models

import (
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingFailed    BookingStatus = "FAILED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking is one lesson purchase attempt and its settlement state.
//
// PaymentIntentID correlates the row with the Stripe payment intent. For the
// checkout-session flow the real intent id is not known at creation time, so
// the row is keyed by a provisional "pending_<sessionID>" value until the
// checkout.session.completed event carries the real one.
type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Duration  int  `gorm:"column:duration" json:"duration"`
	IsPackage bool `gorm:"column:is_package" json:"isPackage"`

	// Amount in major units (dollars), fixed at creation from the pricing table.
	Amount float64 `gorm:"column:amount" json:"amount"`

	PaymentIntentID string        `gorm:"column:payment_intent_id;size:191;uniqueIndex" json:"paymentIntentId"`
	Status          BookingStatus `gorm:"column:status;size:32;index" json:"status"`
}
