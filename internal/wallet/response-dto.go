package wallet

type BalanceResponse struct {
	Balance int `json:"balance"`
}
