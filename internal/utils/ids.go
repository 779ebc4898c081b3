// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"errors"
	"strconv"
)

// ErrInvalidID is returned by ParseID for anything but a positive decimal id.
var ErrInvalidID = errors.New("id must be a positive integer")

// ParseID converts a path segment into a row id. Signs, whitespace, zero and
// values that overflow uint are rejected.
//
// Example:
//
//	id, err := utils.ParseID("42") // 42, nil
//	_, err = utils.ParseID("0")    // ErrInvalidID
//	_, err = utils.ParseID("abc")  // ErrInvalidID
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, strconv.IntSize)
	if err != nil || n == 0 {
		return 0, ErrInvalidID
	}
	return uint(n), nil
}
