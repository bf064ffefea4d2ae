package domain

import "time"

// Activity lists as named in the record store.
const (
	ListSignups  = "signups"
	ListLogins   = "logins"
	ListPayments = "payments"
)

// SignupEntry records a completed account creation.
type SignupEntry struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	Membership MembershipTier `json:"membership"`
	Timestamp  time.Time      `json:"timestamp"`
	IP         string         `json:"ip,omitempty"`
}

// LoginEntry records a successful login.
type LoginEntry struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip,omitempty"`
}

// PaymentEntry records a payment-method selection. The email is taken as
// submitted and is not required to match an existing user record.
type PaymentEntry struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PaymentMethod string    `json:"paymentMethod"`
	Timestamp     time.Time `json:"timestamp"`
	IP            string    `json:"ip,omitempty"`
}
