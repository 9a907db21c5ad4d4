// Package actor manages the customer identities behind inbound messages.
package actor

import "time"

// Actor is a customer identity keyed by (provider, login).
type Actor struct {
	ID         string    `json:"id"`
	GivenName  string    `json:"given_name"`
	FamilyName string    `json:"family_name"`
	Handle     string    `json:"handle"`
	Provider   string    `json:"provider"`
	Login      string    `json:"login"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName renders the actor's name for titles and logs.
func (a Actor) DisplayName() string {
	if a.FamilyName == "" {
		return a.GivenName
	}
	return a.GivenName + " " + a.FamilyName
}

// CreateInput holds the fields for inserting an actor.
type CreateInput struct {
	GivenName  string
	FamilyName string
	Handle     string
	Provider   string
	Login      string
}
