package model

import "time"

// ShareRecord maps a short opaque id to one profile snapshot.
// ExpiresAt is nominal for the in-memory store; the redis store enforces it.
type ShareRecord struct {
	ID        string           `json:"id"`
	Profile   GeneratedProfile `json:"profile"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}
