package slots

// GenerateRequest asks for slot generation over a date range.
type GenerateRequest struct {
	ClubID string `json:"club_id" binding:"required,uuid"`
	From   string `json:"from" binding:"required"` // YYYY-MM-DD
	To     string `json:"to" binding:"required"`   // YYYY-MM-DD
}

// TransitionRequest is a single manual status change.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// BulkTransitionItem is one entry of a bulk status change.
type BulkTransitionItem struct {
	SlotID string `json:"slot_id" binding:"required,uuid"`
	Status string `json:"status" binding:"required"`
}

// BulkTransitionRequest updates many slots in one call.
type BulkTransitionRequest struct {
	Items []BulkTransitionItem `json:"items" binding:"required,min=1,dive"`
}

// SlotListRequest fetches specific slots, typically for a booking summary.
type SlotListRequest struct {
	SlotIDs []string `json:"slot_ids" binding:"required,min=1,dive,uuid"`
}

// MaintenanceToggleRequest flips slots between available and maintenance.
type MaintenanceToggleRequest struct {
	SlotIDs []string `json:"slot_ids" binding:"required,min=1,dive,uuid"`
	Enable  *bool    `json:"enable" binding:"required"`
}
