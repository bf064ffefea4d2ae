package domain

import "time"

type MembershipTier string

const (
	MembershipNone    MembershipTier = "none"
	MembershipRegular MembershipTier = "regular"
	MembershipVIP     MembershipTier = "vip"
	MembershipVVIP    MembershipTier = "vvip"
)

// ValidMembership reports whether tier is one of the known membership tiers.
func ValidMembership(tier MembershipTier) bool {
	switch tier {
	case MembershipNone, MembershipRegular, MembershipVIP, MembershipVVIP:
		return true
	}
	return false
}

// User is the persisted member record, keyed by email. The struct is also the
// storage encoding, so field names follow the stored JSON shape.
type User struct {
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Credential string         `json:"credential,omitempty"`
	Membership MembershipTier `json:"membership"`
	CreatedAt  time.Time      `json:"createdAt"`
	Verified   bool           `json:"verified"`
}

// PublicUser is the subset of User returned to signup/login callers.
type PublicUser struct {
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Membership MembershipTier `json:"membership"`
}

// Public returns the caller-safe view of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		Name:       u.Name,
		Email:      u.Email,
		Membership: u.Membership,
	}
}

// Redacted returns a copy of the user with the credential stripped.
func (u User) Redacted() User {
	u.Credential = ""
	return u
}
