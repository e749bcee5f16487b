// Package models contains data structures for the application's domain models.
package models

// Profile is the on-ledger identity record for an account. At most one
// profile exists per account; it is created once and only its username, bio
// and content reference are mutable afterwards.
type Profile struct {
	Account        string `json:"account"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	ContentRef     string `json:"content_ref"`
	FollowerCount  uint64 `json:"follower_count"`
	FollowingCount uint64 `json:"following_count"`
	Active         bool   `json:"active"`
}
