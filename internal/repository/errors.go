// Package repository contains data access logic separated from HTTP
// handlers. This file defines error values reused across repositories so
// higher layers can distinguish failure scenarios without string
// matching.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique
// email index on accounts. Handlers should translate this into an HTTP
// 409 response.
var ErrEmailExists = errors.New("email already exists")
