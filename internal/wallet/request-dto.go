package wallet

type TopupCreateRequest struct {
	AmountTHB    int    `json:"amount_thb" binding:"required,gt=0"`
	TransferDate string `json:"transfer_date" binding:"required,datetime=2006-01-02"`
	TransferTime string `json:"transfer_time" binding:"required,datetime=15:04"`
	SlipPath     string `json:"slip_path" binding:"omitempty,max=255"`
}

type TopupReviewRequest struct {
	Approve bool `json:"approve"`
}
