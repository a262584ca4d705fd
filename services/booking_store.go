// services/booking_store.go
package services

import (
	"errors"

	"lesson-backend/models"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDuplicateBooking means a booking already exists for the payment
	// intent id, which the unique index on payment_intent_id enforces.
	ErrDuplicateBooking = errors.New("booking already exists for this payment intent")
)

// BookingStore is the persistence surface the payment and webhook services
// work against. The write operations are single-row updates matched on
// payment intent id + current status, so concurrent webhook deliveries for
// the same booking race safely: one matches, the rest match zero rows.
type BookingStore interface {
	Create(booking *models.Booking) error
	FindByIntentID(intentID string) (*models.Booking, error)

	// Transition moves the booking keyed by intentID from status `from` to
	// status `to` and reports how many rows matched (0 or 1).
	Transition(intentID string, from, to models.BookingStatus) (int64, error)

	// CompleteCheckout rewrites the provisional key to the real payment
	// intent id and marks the booking COMPLETED in one update.
	CompleteCheckout(provisionalID, realIntentID string) (int64, error)

	LogEvent(event *models.WebhookEvent) error
}

// GormBookingStore is the MySQL-backed BookingStore.
type GormBookingStore struct {
	DB *gorm.DB
}

func NewGormBookingStore(db *gorm.DB) *GormBookingStore {
	return &GormBookingStore{DB: db}
}

func (s *GormBookingStore) Create(booking *models.Booking) error {
	if err := s.DB.Create(booking).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrDuplicateBooking
		}
		return err
	}
	return nil
}

func (s *GormBookingStore) FindByIntentID(intentID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.Where("payment_intent_id = ?", intentID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *GormBookingStore) Transition(intentID string, from, to models.BookingStatus) (int64, error) {
	res := s.DB.Model(&models.Booking{}).
		Where("payment_intent_id = ? AND status = ?", intentID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (s *GormBookingStore) CompleteCheckout(provisionalID, realIntentID string) (int64, error) {
	res := s.DB.Model(&models.Booking{}).
		Where("payment_intent_id = ? AND status = ?", provisionalID, models.BookingPending).
		Updates(map[string]interface{}{
			"payment_intent_id": realIntentID,
			"status":            models.BookingCompleted,
		})
	return res.RowsAffected, res.Error
}

func (s *GormBookingStore) LogEvent(event *models.WebhookEvent) error {
	return s.DB.Create(event).Error
}
