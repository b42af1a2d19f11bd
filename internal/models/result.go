// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package models

// ResultKind tags a FetchResult.
type ResultKind int

// Result kinds
const (
	KindFound ResultKind = iota
	KindNotFound
	KindTransient
)

func (k ResultKind) String() string {
	switch k {
	case KindFound:
		return "found"
	case KindNotFound:
		return "not_found"
	default:
		return "transient"
	}
}

// FetchResult is the typed outcome of a remote call. Remote JSON is decoded
// into one of these at the client boundary so untyped shapes never reach the core.
type FetchResult[T any] struct {
	Kind  ResultKind
	Value T
	Err   error
}

// Found wraps a successful value.
func Found[T any](v T) FetchResult[T] {
	return FetchResult[T]{Kind: KindFound, Value: v}
}

// Missing reports that the remote has no such resource.
func Missing[T any]() FetchResult[T] {
	return FetchResult[T]{Kind: KindNotFound}
}

// Transient wraps a retryable failure.
func Transient[T any](err error) FetchResult[T] {
	return FetchResult[T]{Kind: KindTransient, Err: err}
}

// Ok reports whether the result carries a value.
func (r FetchResult[T]) Ok() bool {
	return r.Kind == KindFound
}
