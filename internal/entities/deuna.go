package entities

// PaymentQR is the DeUna peer payment link rendered for a customer's
// banca-web page.
type PaymentQR struct {
	Link           string `json:"link"`
	PNGBase64      string `json:"qr_b64"`
	PeerCustomerID int64  `json:"peer_customer_id"`
}

// ScanPrefill is the payload backing the simulated QR-scan page: the
// payer's account plus the destination account to prefill.
type ScanPrefill struct {
	Payer                AccountSummary `json:"payer"`
	DestinationAccountID int64          `json:"destination_account_id"`
}
