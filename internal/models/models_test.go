// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{"wikipedia", SourceWikipedia, false},
		{" Grokipedia ", SourceGrokipedia, false},
		{"britannica", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSource(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSource(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSource(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type netTimeout struct{}

func (netTimeout) Error() string { return "i/o timeout" }
func (netTimeout) Timeout() bool { return true }

func TestStoreWriteErrorTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("exec: %w", context.DeadlineExceeded), true},
		{"net timeout", netTimeout{}, true},
		{"constraint", errors.New("constraint violation"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("batch: %w", &StoreWriteError{Table: "catalog_entries", Err: tt.err})
			if got := IsStoreTimeout(err); got != tt.want {
				t.Errorf("IsStoreTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	transient := fmt.Errorf("fetch: %w", &TransientFetchError{Op: "GET", URL: "https://x", StatusCode: 503})
	if !IsTransient(transient) {
		t.Error("expected transient error to be classified")
	}
	if IsNotFound(transient) {
		t.Error("transient error classified as not found")
	}

	nf := &NotFoundError{Resource: "article", Key: "Foo"}
	if !IsNotFound(nf) {
		t.Error("expected not found error to be classified")
	}
	if nf.Error() != `article "Foo" not found` {
		t.Errorf("unexpected message %q", nf.Error())
	}

	ce := &ConfigurationError{Component: "verdict generator", Setting: "XAI_API_KEY"}
	if !IsConfiguration(ce) {
		t.Error("expected configuration error to be classified")
	}

	inner := errors.New("index unreadable")
	sf := &SyncFailedError{Err: inner}
	if !errors.Is(sf, inner) {
		t.Error("SyncFailedError should unwrap to its cause")
	}
}

func TestFetchResult(t *testing.T) {
	found := Found(Article{Title: "Go"})
	if !found.Ok() || found.Value.Title != "Go" || found.Kind.String() != "found" {
		t.Errorf("unexpected found result %+v", found)
	}

	missing := Missing[Article]()
	if missing.Ok() || missing.Kind != KindNotFound {
		t.Errorf("unexpected missing result %+v", missing)
	}

	cause := errors.New("boom")
	tr := Transient[Article](cause)
	if tr.Ok() || !errors.Is(tr.Err, cause) || tr.Kind.String() != "transient" {
		t.Errorf("unexpected transient result %+v", tr)
	}
}

func TestCachedVerdictFreshAt(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	v := CachedVerdict{Topic: "Go", Verdict: "x", CreatedAt: created}
	week := 7 * 24 * time.Hour

	if !v.FreshAt(created.Add(week-time.Second), week) {
		t.Error("verdict should be fresh just inside the window")
	}
	if v.FreshAt(created.Add(week), week) {
		t.Error("verdict should be stale at the window boundary")
	}
}
