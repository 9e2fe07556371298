package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures for the trigger surface and batch results.
// Auth and Validation errors reject a request before any side effect;
// Upstream and Persistence errors are collected per batch item; State errors
// reject an individual mutation that the current game state forbids.
type ErrorKind string

const (
	ErrorKindAuth        ErrorKind = "auth"
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindUpstream    ErrorKind = "upstream"
	ErrorKindPersistence ErrorKind = "persistence"
	ErrorKindState       ErrorKind = "state"
)

// Error is a classified error with an optional wrapped cause
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AuthError reports a missing or mismatched admin token
func AuthError(msg string) *Error {
	return &Error{Kind: ErrorKindAuth, Msg: msg}
}

// ValidationError reports a missing or out-of-range request parameter
func ValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrorKindValidation, Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError reports an unavailable or malformed feed payload
func UpstreamError(msg string, err error) *Error {
	return &Error{Kind: ErrorKindUpstream, Msg: msg, Err: err}
}

// PersistenceError reports a failed store write
func PersistenceError(msg string, err error) *Error {
	return &Error{Kind: ErrorKindPersistence, Msg: msg, Err: err}
}

// StateError reports a mutation the current game state forbids,
// e.g. editing a pick whose game is locked
func StateError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrorKindState, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the classification of err, or empty string for
// unclassified errors
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
