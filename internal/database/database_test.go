// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/models"
)

// testDBSemaphore serializes DuckDB usage across tests.
// DuckDB CGO calls can hang when many connections run concurrently under CI pressure.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database with timeout protection.
// The semaphore is held for the entire test and released via t.Cleanup.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		db, err := New(cfg)
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() { _ = res.db.Close() })
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

func strPtr(s string) *string { return &s }

func entry(id, lastMod, key string) models.CatalogEntry {
	e := models.CatalogEntry{Identifier: id, NormalizedKey: key, DisplayTitle: strPtr(id)}
	if lastMod != "" {
		e.LastModified = strPtr(lastMod)
	}
	return e
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestSchemaVersion(t *testing.T) {
	db := setupTestDB(t)
	version, err := db.GetCurrentSchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion() error = %v", err)
	}
	if want := migrations[len(migrations)-1].version; version != want {
		t.Errorf("schema version = %d, want %d", version, want)
	}
}

func TestCatalogUpsertAndDiff(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	n, err := db.UpsertCatalogEntries(ctx, []models.CatalogEntry{
		entry("Go_(programming_language)", "2026-01-01", "go(programminglanguage)"),
		entry("Rust", "", "rust"),
	})
	if err != nil {
		t.Fatalf("UpsertCatalogEntries() error = %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	existing, err := db.ExistingLastModified(ctx, []string{"Go_(programming_language)", "Rust", "Zig"})
	if err != nil {
		t.Fatalf("ExistingLastModified() error = %v", err)
	}
	if got := existing["Go_(programming_language)"]; got == nil || *got != "2026-01-01" {
		t.Errorf("Go last_modified = %v, want 2026-01-01", got)
	}
	if got, ok := existing["Rust"]; !ok || got != nil {
		t.Errorf("Rust should exist with nil last_modified, got %v (present %v)", got, ok)
	}
	if _, ok := existing["Zig"]; ok {
		t.Error("Zig should not exist")
	}

	// Re-upsert is idempotent and updates in place
	if err := db.UpsertCatalogEntry(ctx, entry("Rust", "2026-02-02", "rust")); err != nil {
		t.Fatalf("UpsertCatalogEntry() error = %v", err)
	}
	count, err := db.CountCatalogEntries(ctx)
	if err != nil {
		t.Fatalf("CountCatalogEntries() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestFindIdentifierByNormalizedKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.UpsertCatalogEntries(ctx, []models.CatalogEntry{
		entry("new_york", "", "newyork"),
		entry("New_York", "", "newyork"),
		entry("NEW_YORK", "", "newyork"),
	})
	if err != nil {
		t.Fatalf("UpsertCatalogEntries() error = %v", err)
	}

	id, ok, err := db.FindIdentifierByNormalizedKey(ctx, "newyork")
	if err != nil || !ok {
		t.Fatalf("FindIdentifierByNormalizedKey() = %q, %v, %v", id, ok, err)
	}
	if id != "NEW_YORK" {
		t.Errorf("tie-break winner = %q, want NEW_YORK", id)
	}

	_, ok, err = db.FindIdentifierByNormalizedKey(ctx, "boston")
	if err != nil || ok {
		t.Errorf("expected miss for boston, got ok=%v err=%v", ok, err)
	}
}

func TestSearchCatalog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.UpsertCatalogEntries(ctx, []models.CatalogEntry{
		entry("Python_(programming_language)", "", "python(programminglanguage)"),
		entry("Monty_Python", "", "montypython"),
		entry("Ruby", "", "ruby"),
	})
	if err != nil {
		t.Fatalf("UpsertCatalogEntries() error = %v", err)
	}

	got, err := db.SearchCatalog(ctx, "python", 10)
	if err != nil {
		t.Fatalf("SearchCatalog() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("SearchCatalog() returned %d entries, want 2", len(got))
	}
	if got[0].Identifier != "Monty_Python" || got[1].Identifier != "Python_(programming_language)" {
		t.Errorf("unexpected order: %s, %s", got[0].Identifier, got[1].Identifier)
	}

	limited, err := db.SearchCatalog(ctx, "python", 1)
	if err != nil {
		t.Fatalf("SearchCatalog() error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit not applied: got %d", len(limited))
	}
}

func TestExistingIdentifiers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertCatalogEntry(ctx, entry("Ada_Lovelace", "", "adalovelace")); err != nil {
		t.Fatalf("UpsertCatalogEntry() error = %v", err)
	}

	found, err := db.ExistingIdentifiers(ctx, []string{"Ada_Lovelace", "ada_lovelace"})
	if err != nil {
		t.Fatalf("ExistingIdentifiers() error = %v", err)
	}
	if !found["Ada_Lovelace"] {
		t.Error("Ada_Lovelace should exist")
	}
	if found["ada_lovelace"] {
		t.Error("identifier matching is case-sensitive")
	}
}

func TestNormalizedKeyBackfill(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.UpsertCatalogEntries(ctx, []models.CatalogEntry{
		entry("Alpha", "", ""),
		entry("Beta", "", "beta"),
	})
	if err != nil {
		t.Fatalf("UpsertCatalogEntries() error = %v", err)
	}

	missing, err := db.EntriesMissingNormalizedKey(ctx, 10)
	if err != nil {
		t.Fatalf("EntriesMissingNormalizedKey() error = %v", err)
	}
	if len(missing) != 1 || missing[0].Identifier != "Alpha" {
		t.Fatalf("unexpected missing entries: %+v", missing)
	}

	if _, err := db.SetNormalizedKeys(ctx, map[string]string{"Alpha": "alpha"}); err != nil {
		t.Fatalf("SetNormalizedKeys() error = %v", err)
	}
	missing, err = db.EntriesMissingNormalizedKey(ctx, 10)
	if err != nil {
		t.Fatalf("EntriesMissingNormalizedKey() error = %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("expected no entries missing keys, got %d", len(missing))
	}
}

func TestSyncStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	status, err := db.GetSyncStatus(ctx)
	if err != nil {
		t.Fatalf("GetSyncStatus() error = %v", err)
	}
	if status.State != models.SyncIdle {
		t.Errorf("initial state = %q, want idle", status.State)
	}

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	completed := started.Add(time.Hour)
	want := models.SyncStatus{
		State:        models.SyncCompleted,
		StartedAt:    &started,
		CompletedAt:  &completed,
		TotalEntries: 42,
	}
	if err := db.SetSyncStatus(ctx, want); err != nil {
		t.Fatalf("SetSyncStatus() error = %v", err)
	}

	got, err := db.GetSyncStatus(ctx)
	if err != nil {
		t.Fatalf("GetSyncStatus() error = %v", err)
	}
	if got.State != models.SyncCompleted || got.TotalEntries != 42 || got.LastError != "" {
		t.Errorf("unexpected status: %+v", got)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}

	if err := db.SetSyncStatus(ctx, models.SyncStatus{State: models.SyncFailed, StartedAt: &started, LastError: "index unreachable"}); err != nil {
		t.Fatalf("SetSyncStatus() error = %v", err)
	}
	got, _ = db.GetSyncStatus(ctx)
	if got.State != models.SyncFailed || got.LastError != "index unreachable" || got.CompletedAt != nil {
		t.Errorf("unexpected failed status: %+v", got)
	}
}

func TestSaveTopicMapping(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	steps := []struct {
		identifier  string
		wantOutcome models.MappingOutcome
		wantVotes   int
	}{
		{"Go_(programming_language)", models.MappingCreated, 1},
		{"Go_(programming_language)", models.MappingUpvoted, 2},
		{"Go_(programming_language)", models.MappingUpvoted, 3},
		{"Go_(game)", models.MappingUpdated, 1},
	}

	for _, step := range steps {
		outcome, err := db.SaveTopicMapping(ctx, "Go", step.identifier)
		if err != nil {
			t.Fatalf("SaveTopicMapping(%q) error = %v", step.identifier, err)
		}
		if outcome != step.wantOutcome {
			t.Errorf("SaveTopicMapping(%q) = %q, want %q", step.identifier, outcome, step.wantOutcome)
		}

		m, err := db.GetTopicMapping(ctx, "Go")
		if err != nil || m == nil {
			t.Fatalf("GetTopicMapping() = %v, %v", m, err)
		}
		if m.CatalogIdentifier != step.identifier || m.VoteCount != step.wantVotes {
			t.Errorf("mapping = %s/%d, want %s/%d", m.CatalogIdentifier, m.VoteCount, step.identifier, step.wantVotes)
		}
	}

	m, err := db.GetTopicMapping(ctx, "Unknown")
	if err != nil || m != nil {
		t.Errorf("expected nil mapping for unknown topic, got %v, %v", m, err)
	}
}

func TestSaveTopicMappingConcurrent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := db.SaveTopicMapping(ctx, "Mars", "Mars"); err != nil {
				t.Errorf("SaveTopicMapping() error = %v", err)
			}
		}()
	}
	wg.Wait()

	m, err := db.GetTopicMapping(ctx, "Mars")
	if err != nil || m == nil {
		t.Fatalf("GetTopicMapping() = %v, %v", m, err)
	}
	if m.VoteCount != writers {
		t.Errorf("vote_count = %d, want %d", m.VoteCount, writers)
	}
}

func TestCachedArticles(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	got, err := db.GetCachedArticle(ctx, "Go", models.SourceWikipedia)
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %v, %v", got, err)
	}

	a := models.CachedArticle{
		Topic:     "Go",
		Source:    models.SourceWikipedia,
		Article:   models.Article{Title: "Go", Extract: "A language", URL: "https://en.wikipedia.org/wiki/Go"},
		UpdatedAt: time.Now().UTC(),
	}
	if err := db.PutCachedArticle(ctx, a); err != nil {
		t.Fatalf("PutCachedArticle() error = %v", err)
	}

	got, err = db.GetCachedArticle(ctx, "Go", models.SourceWikipedia)
	if err != nil || got == nil {
		t.Fatalf("GetCachedArticle() = %v, %v", got, err)
	}
	if got.Article.Extract != "A language" || got.Article.Thumbnail != "" {
		t.Errorf("unexpected article: %+v", got.Article)
	}

	other, err := db.GetCachedArticle(ctx, "Go", models.SourceGrokipedia)
	if err != nil || other != nil {
		t.Errorf("sources must be cached independently, got %v, %v", other, err)
	}
}

func TestDeleteCachedComparison(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, src := range []models.Source{models.SourceWikipedia, models.SourceGrokipedia} {
		a := models.CachedArticle{Topic: "Mercury", Source: src, Article: models.Article{Title: "Mercury"}, UpdatedAt: now}
		if err := db.PutCachedArticle(ctx, a); err != nil {
			t.Fatalf("PutCachedArticle(%s) error = %v", src, err)
		}
	}
	if err := db.PutCachedVerdict(ctx, models.CachedVerdict{Topic: "Mercury", Verdict: "old", CreatedAt: now}); err != nil {
		t.Fatalf("PutCachedVerdict() error = %v", err)
	}

	if err := db.DeleteCachedComparison(ctx, "Mercury"); err != nil {
		t.Fatalf("DeleteCachedComparison() error = %v", err)
	}

	if got, err := db.GetCachedArticle(ctx, "Mercury", models.SourceGrokipedia); err != nil || got != nil {
		t.Errorf("grokipedia article = %v, %v, want miss", got, err)
	}
	if got, err := db.GetCachedVerdict(ctx, "Mercury"); err != nil || got != nil {
		t.Errorf("verdict = %v, %v, want miss", got, err)
	}
	if got, err := db.GetCachedArticle(ctx, "Mercury", models.SourceWikipedia); err != nil || got == nil {
		t.Errorf("wikipedia article = %v, %v, want kept", got, err)
	}

	if err := db.DeleteCachedComparison(ctx, "Never cached"); err != nil {
		t.Errorf("DeleteCachedComparison() on miss error = %v", err)
	}
}

func TestCachedVerdicts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-8 * 24 * time.Hour).Truncate(time.Microsecond)
	if err := db.PutCachedVerdict(ctx, models.CachedVerdict{Topic: "Go", Verdict: "stale", CreatedAt: old}); err != nil {
		t.Fatalf("PutCachedVerdict() error = %v", err)
	}

	fresh := time.Now().UTC().Truncate(time.Microsecond)
	if err := db.PutCachedVerdict(ctx, models.CachedVerdict{Topic: "Go", Verdict: "fresh", CreatedAt: fresh}); err != nil {
		t.Fatalf("PutCachedVerdict() error = %v", err)
	}

	got, err := db.GetCachedVerdict(ctx, "Go")
	if err != nil || got == nil {
		t.Fatalf("GetCachedVerdict() = %v, %v", got, err)
	}
	if got.Verdict != "fresh" || !got.CreatedAt.Equal(fresh) {
		t.Errorf("stale row not overwritten: %+v", got)
	}
}

func TestTrustVotes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := db.IncrementTrustVote(ctx, "Go", models.SourceGrokipedia); err != nil {
			t.Fatalf("IncrementTrustVote() error = %v", err)
		}
	}

	votes, err := db.GetTrustVotes(ctx, "Go")
	if err != nil {
		t.Fatalf("GetTrustVotes() error = %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("expected both sources, got %d", len(votes))
	}
	if votes[0].Source != models.SourceWikipedia || votes[0].Votes != 0 {
		t.Errorf("wikipedia votes = %+v", votes[0])
	}
	if votes[1].Source != models.SourceGrokipedia || votes[1].Votes != 3 {
		t.Errorf("grokipedia votes = %+v", votes[1])
	}
}

func TestWriteErrorTimeout(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := db.UpsertCatalogEntries(ctx, []models.CatalogEntry{entry("Late", "", "late")})
	if err == nil {
		t.Fatal("expected error for expired context")
	}
	if !models.IsStoreTimeout(err) {
		t.Errorf("expected timeout-class StoreWriteError, got %v", err)
	}
}

func TestTableCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertCatalogEntry(ctx, entry("One", "", "one")); err != nil {
		t.Fatalf("UpsertCatalogEntry() error = %v", err)
	}
	counts, err := db.TableCounts(ctx)
	if err != nil {
		t.Fatalf("TableCounts() error = %v", err)
	}
	if counts["catalog_entries"] != 1 || counts["topic_mappings"] != 0 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
