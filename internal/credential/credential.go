// Package credential encodes passwords for storage.
//
// The scheme is a deterministic, reversible base64 transform carried over
// from the system this service replaces. It is NOT a hash: anyone holding a
// stored credential can recover the password, and identical passwords
// produce identical credentials across users. A salted one-way function
// would be a deliberate behavior change; see DESIGN.md.
package credential

import (
	"crypto/subtle"
	"encoding/base64"
)

// Encode returns the stored form of password. Same input, same output.
func Encode(password string) string {
	return base64.StdEncoding.EncodeToString([]byte(password))
}

// Verify reports whether password encodes to credential. The comparison is
// constant time, for what little that is worth given the scheme.
func Verify(password, credential string) bool {
	return subtle.ConstantTimeCompare([]byte(Encode(password)), []byte(credential)) == 1
}
