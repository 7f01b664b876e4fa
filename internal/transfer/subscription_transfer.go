package transfer

type CheckoutResponse struct {
	URL string `json:"url"`
}
