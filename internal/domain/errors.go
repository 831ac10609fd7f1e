// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyRunning indicates a poller is already active for the bot.
var ErrAlreadyRunning = errors.New("poller already running")

// ErrInvalidCredential indicates a platform credential failed validation.
var ErrInvalidCredential = errors.New("invalid platform credential")
