// Package repository implements data access over MySQL. Sentinel errors let
// handlers map failure modes to HTTP status codes without inspecting driver
// error strings themselves.
package repository

import "errors"

// ErrUsernameExists is returned when registering a username that is already
// taken. Handlers translate it into a 400 response.
var ErrUsernameExists = errors.New("username already exists")

// ErrTaskExists is returned when creating a task whose title the owner
// already uses. Handlers translate it into a 400 response.
var ErrTaskExists = errors.New("task with this title already exists")
