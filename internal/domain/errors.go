package domain

import "errors"

// Domain errors
var (
	ErrNotFound              = errors.New("not found")
	ErrCorruptRecord         = errors.New("corrupt record")
	ErrStorageWrite          = errors.New("storage write failed")
	ErrDuplicateUsername     = errors.New("username already taken")
	ErrInvalidUsername       = errors.New("invalid username: spaces are not allowed")
	ErrInvalidPassword       = errors.New("password cannot contain line breaks")
	ErrInvalidOpponent       = errors.New("invalid opponent name")
	ErrWeakPassword          = errors.New("password should be 8-15 characters with a letter, a digit and a special character")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAlreadyFriends        = errors.New("already friends with this player")
	ErrRequestAlreadyPending = errors.New("friend request already pending")
	ErrSelfRequest           = errors.New("cannot send a friend request to yourself")
	ErrThemeNotFound         = errors.New("theme not found")
	ErrAlreadyQueued         = errors.New("player already in queue")
	ErrQueueFull             = errors.New("waiting queue is full")
	ErrBufferFull            = errors.New("match buffer is full")
	ErrEmpty                 = errors.New("collection is empty")
	ErrInvalidSave           = errors.New("invalid save file format")
)

// IsNotFoundError checks if an error is a not-found type error.
// A corrupt record is treated the same as a missing one.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorruptRecord) || errors.Is(err, ErrThemeNotFound)
}

// IsCapacityError checks if an error means a bounded structure is full
func IsCapacityError(err error) bool {
	return errors.Is(err, ErrQueueFull) || errors.Is(err, ErrBufferFull)
}
