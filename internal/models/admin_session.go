package models

import (
	"time"
)

// AdminSession is the persisted record of one logged-in administrator.
// The JSON shape is the storage contract: the writer always serializes the
// full object and the reader must tolerate a missing or unparseable entry.
// The session token keys the storage entry and is not part of the payload.
type AdminSession struct {
	AdminID      int       `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	LoginTime    time.Time `json:"loginTime"`
	LastActivity time.Time `json:"lastActivity,omitzero"`

	Token string `json:"-"`
}

// ExpiresAt returns the moment the session stops being restorable. Expiry is
// anchored to login time; activity updates never move it.
func (s *AdminSession) ExpiresAt(ttl time.Duration) time.Time {
	return s.LoginTime.Add(ttl)
}

// ExpiredAt reports whether the session is past its TTL at the given instant.
func (s *AdminSession) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return !now.Before(s.ExpiresAt(ttl))
}
