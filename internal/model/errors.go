package model

import "errors"

var (
	// ErrUserNotFound is returned when no credential record exists for a username.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a credential record that already exists.
	ErrUserExists = errors.New("user already exists")

	// ErrWrongPassword is returned when a supplied password does not match the stored hash.
	ErrWrongPassword = errors.New("wrong password")
)
