package bookings

import (
	"time"

	"courtly/internal/slots"
)

// BookedSlotView is one slot of a booking as shown to clients.
type BookedSlotView struct {
	SlotID      string       `json:"slot_id"`
	ServiceDate string       `json:"service_date"`
	StartTime   string       `json:"start_time"`
	EndTime     string       `json:"end_time"`
	CourtName   string       `json:"court_name"`
	PriceCoins  int          `json:"price_coins"`
	SlotStatus  slots.Status `json:"slot_status"`
}

// BookingResponse is the client-facing view of a booking.
type BookingResponse struct {
	ID            string           `json:"id"`
	BookingNo     string           `json:"booking_no"`
	Status        Status           `json:"status"`
	BookingDate   string           `json:"booking_date"`
	TotalCost     int              `json:"total_cost"`
	Method        Method           `json:"booking_method"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	CustomerName  string           `json:"customer_name"`
	AbleToCancel  bool             `json:"able_to_cancel"`
	CancelledAt   *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	Slots         []BookedSlotView `json:"slots"`
}

func (s *service) toResponse(b *Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:            b.ID.String(),
		BookingNo:     b.BookingNo,
		Status:        b.Status,
		BookingDate:   b.BookingDate.Format("2006-01-02"),
		TotalCost:     b.TotalCost,
		Method:        b.Method,
		PaymentMethod: b.PaymentMethod,
		CustomerName:  b.CustomerName,
		AbleToCancel:  b.Status.CanTransition(StatusCancelled) && s.withinCancelWindow(b),
		CancelledAt:   b.CancelledAt,
		CreatedAt:     b.CreatedAt,
	}
	for _, link := range b.Slots {
		view := BookedSlotView{
			SlotID:     link.SlotID.String(),
			PriceCoins: link.PriceCoins,
		}
		if link.Slot != nil {
			view.ServiceDate = link.Slot.ServiceDate.Format("2006-01-02")
			view.StartTime = link.Slot.StartAt.Format("15:04")
			view.EndTime = link.Slot.EndAt.Format("15:04")
			view.SlotStatus = link.Slot.CurrentStatus()
			if link.Slot.Court != nil {
				view.CourtName = link.Slot.Court.Name
			}
		}
		resp.Slots = append(resp.Slots, view)
	}
	return resp
}
