package bookings

// TimeRangeItem selects the slots covering a court's time range on one day.
type TimeRangeItem struct {
	CourtID   string `json:"court_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime string `json:"start_time" binding:"required"` // HH:MM
	EndTime   string `json:"end_time" binding:"required"`   // HH:MM
}

// CreateBookingRequest books slots either by explicit ids or by time ranges.
type CreateBookingRequest struct {
	ClubID  string          `json:"club_id" binding:"required,uuid"`
	SlotIDs []string        `json:"slot_ids" binding:"omitempty,dive,uuid"`
	Items   []TimeRangeItem `json:"items" binding:"omitempty,dive"`
}

// WalkInRequest is the manager desk booking payload.
type WalkInRequest struct {
	ClubID        string   `json:"club_id" binding:"required,uuid"`
	SlotIDs       []string `json:"slot_ids" binding:"required,min=1,dive,uuid"`
	CustomerName  string   `json:"customer_name" binding:"required,min=2,max=200"`
	CustomerEmail string   `json:"customer_email" binding:"omitempty,email"`
}
