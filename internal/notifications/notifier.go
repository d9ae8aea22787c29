package notifications

import (
	"context"
	"time"

	"courtly/internal/bookings"
	"courtly/pkg/logger"

	"github.com/google/uuid"
)

// BookingNotifier adapts the event producer to the bookings package's
// Notifier hook. Publishing happens off the request goroutine; a publish
// failure is logged, never surfaced to the caller.
type BookingNotifier struct {
	producer Producer
	log      *logger.Logger
}

func NewBookingNotifier(producer Producer, log *logger.Logger) *BookingNotifier {
	return &BookingNotifier{producer: producer, log: log}
}

func (n *BookingNotifier) BookingConfirmed(ctx context.Context, b *bookings.Booking) {
	n.publish(EventBookingConfirmed, b, 0)
}

func (n *BookingNotifier) BookingCancelled(ctx context.Context, b *bookings.Booking, refunded int) {
	n.publish(EventBookingCancelled, b, refunded)
}

func (n *BookingNotifier) publish(eventType EventType, b *bookings.Booking, refunded int) {
	event := &BookingEvent{
		ID:            uuid.New(),
		Type:          eventType,
		BookingNo:     b.BookingNo,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		ClubID:        b.ClubID,
		BookingDate:   b.BookingDate.Format("2006-01-02"),
		TotalCost:     b.TotalCost,
		RefundedCoins: refunded,
		OccurredAt:    time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := n.producer.PublishBookingEvent(ctx, event); err != nil {
			n.log.ErrorWithContext(ctx, "failed to publish booking event", err, map[string]interface{}{
				"booking_no": b.BookingNo,
				"type":       string(eventType),
			})
		}
	}()
}
