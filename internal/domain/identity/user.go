package identity

import "errors"

var ErrNotFound = errors.New("identity: user not found")

// UserProfile is the subset of a user record the storefront reads. Names and
// email may be empty.
type UserProfile struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
}
