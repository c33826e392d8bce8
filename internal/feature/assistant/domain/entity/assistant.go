// Package entity defines the domain models for the assistant feature.
package entity

// Role identifies the speaker of a conversation turn sent to the model.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatTurn is one prior turn supplied by the client. The server keeps no
// conversation state; the client resends its history on every request.
type ChatTurn struct {
	Text     string
	FromUser bool
}

// Message is a turn in the exact order it is sent to the model.
type Message struct {
	Role Role
	Text string
}

// ReceiptImage is an uploaded receipt photo after content sniffing.
type ReceiptImage struct {
	Data     []byte
	MIMEType string
}

// ReceiptFields are the values extracted from a receipt by the model.
type ReceiptFields struct {
	Merchant string
	Date     string
	Amount   float64
	Category string
}
