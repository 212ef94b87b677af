// Package repository implements data access over MySQL for events,
// sheets, reservations, users and refresh tokens. Sentinel errors that
// cross repository boundaries live here so that services and handlers
// can distinguish failure cases with errors.Is.
package repository

import "errors"

// ErrEventNotFound is returned when an event id does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrLoginNameExists is returned when registering a user whose login
// name is already taken.
var ErrLoginNameExists = errors.New("login name already exists")
