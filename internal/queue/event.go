// Package queue defines message payloads exchanged over the message broker.
package queue

// ConfirmationEmailEvent is published whenever an account needs a
// confirmation email: at signup and on explicit re-request. It carries
// the signed confirmation token so the consumer can build the link
// without touching the database.
type ConfirmationEmailEvent struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Token       string `json:"token"`
	RequestedAt string `json:"requested_at"`
}
