// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package compare

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/wikithat/internal/cache"
	"github.com/tomtom215/wikithat/internal/models"
	"github.com/tomtom215/wikithat/internal/ratelimit"
	"github.com/tomtom215/wikithat/internal/validation"
)

type contentStore struct {
	mu       sync.Mutex
	articles map[string]models.CachedArticle
	verdicts map[string]models.CachedVerdict
}

func newContentStore() *contentStore {
	return &contentStore{
		articles: make(map[string]models.CachedArticle),
		verdicts: make(map[string]models.CachedVerdict),
	}
}

func (s *contentStore) GetCachedArticle(_ context.Context, topic string, source models.Source) (*models.CachedArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[string(source)+"|"+topic]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *contentStore) PutCachedArticle(_ context.Context, a models.CachedArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[string(a.Source)+"|"+a.Topic] = a
	return nil
}

func (s *contentStore) GetCachedVerdict(_ context.Context, topic string) (*models.CachedVerdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.verdicts[topic]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *contentStore) PutCachedVerdict(_ context.Context, v models.CachedVerdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdicts[v.Topic] = v
	return nil
}

type mapResolver map[string]string

func (m mapResolver) Resolve(_ context.Context, topic string) string {
	if id, ok := m[topic]; ok {
		return id
	}
	return strings.ReplaceAll(topic, " ", "_")
}

type fakeWiki struct {
	res   models.FetchResult[models.Article]
	calls int32
}

func (f *fakeWiki) FetchArticleSummary(_ context.Context, topic string) models.FetchResult[models.Article] {
	atomic.AddInt32(&f.calls, 1)
	if f.res.Kind == models.KindFound {
		a := f.res.Value
		a.Title = topic
		return models.Found(a)
	}
	return f.res
}

type fakeGrok struct {
	res    models.FetchResult[models.Article]
	calls  int32
	lastID atomic.Value
}

func (f *fakeGrok) FetchArticleContent(_ context.Context, identifier string) models.FetchResult[models.Article] {
	atomic.AddInt32(&f.calls, 1)
	f.lastID.Store(identifier)
	return f.res
}

type fakeVerdicts struct {
	calls   int
	lastA   string
	lastB   string
	verdict string
	err     error
}

func (f *fakeVerdicts) GenerateVerdict(_ context.Context, _, a, b string) (string, error) {
	f.calls++
	f.lastA, f.lastB = a, b
	return f.verdict, f.err
}

type voteStore struct {
	mu    sync.Mutex
	votes map[string]int64
	err   error
}

func (s *voteStore) IncrementTrustVote(_ context.Context, topic string, source models.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.votes == nil {
		s.votes = make(map[string]int64)
	}
	s.votes[topic+"|"+string(source)]++
	return nil
}

func (s *voteStore) GetTrustVotes(_ context.Context, topic string) ([]models.TrustVotes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []models.TrustVotes{
		{Topic: topic, Source: models.SourceWikipedia, Votes: s.votes[topic+"|wikipedia"]},
		{Topic: topic, Source: models.SourceGrokipedia, Votes: s.votes[topic+"|grokipedia"]},
	}, nil
}

type slugStore struct {
	rows map[string]*string
	err  error
	seen []string
}

func (s *slugStore) ExistingLastModified(_ context.Context, ids []string) (map[string]*string, error) {
	s.seen = append(s.seen, ids...)
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]*string)
	for _, id := range ids {
		if v, ok := s.rows[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

type brokenStore struct{}

func (brokenStore) Increment(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store unavailable")
}

type fixture struct {
	svc      *Service
	wiki     *fakeWiki
	grok     *fakeGrok
	verdicts *fakeVerdicts
	votes    *voteStore
	slugs    *slugStore
	content  *contentStore
}

func newFixture(limit int) *fixture {
	lastmod := "2026-01-02"
	f := &fixture{
		wiki:     &fakeWiki{res: models.Found(models.Article{Extract: "A summary", URL: "https://en.wikipedia.org/wiki/X"})},
		grok:     &fakeGrok{res: models.Found(models.Article{Title: "X", Extract: "B content"})},
		verdicts: &fakeVerdicts{verdict: "Both agree."},
		votes:    &voteStore{},
		slugs:    &slugStore{rows: map[string]*string{"Albert_Einstein": &lastmod, "Mercury": nil}},
		content:  newContentStore(),
	}
	store := ratelimit.NewMemoryStore(0)
	f.svc = NewService(Deps{
		Resolver:       mapResolver{"Mercury": "Mercury_(planet)"},
		Content:        cache.NewContentCache(f.content, nil),
		Wikipedia:      f.wiki,
		Grokipedia:     f.grok,
		Verdicts:       f.verdicts,
		Votes:          f.votes,
		Slugs:          f.slugs,
		VerdictLimiter: ratelimit.NewVerdictLimiter(store, limit, time.Minute),
		VoteLimiter:    ratelimit.NewLimiter(ratelimit.ActionTrustVote, store, limit, time.Minute),
		ScrapeLimiter:  ratelimit.NewLimiter(ratelimit.ActionScrape, store, limit, time.Minute),
	})
	return f
}

func TestArticles(t *testing.T) {
	transient := models.Transient[models.Article](&models.TransientFetchError{Op: "fetch", Err: errors.New("503")})

	tests := []struct {
		name            string
		wiki            models.FetchResult[models.Article]
		grok            models.FetchResult[models.Article]
		wantErr         bool
		wantWiki        bool
		wantGrok        bool
		wantUnavailable string
	}{
		{"both found", models.Found(models.Article{}), models.Found(models.Article{Title: "B"}), false, true, true, ""},
		{"grokipedia missing", models.Found(models.Article{}), models.Missing[models.Article](), false, true, false, ""},
		{"grokipedia down", models.Found(models.Article{}), transient, false, true, false, "grokipedia"},
		{"wikipedia down", transient, models.Found(models.Article{Title: "B"}), false, false, true, "wikipedia"},
		{"both down", transient, transient, true, false, false, "wikipedia,grokipedia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(10)
			f.wiki.res = tt.wiki
			f.grok.res = tt.grok

			cmp, err := f.svc.Articles(context.Background(), "  Mercury ")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Articles() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !models.IsTransient(err) {
				t.Errorf("error %v should be transient", err)
			}
			if cmp.Topic != "Mercury" || cmp.Identifier != "Mercury_(planet)" {
				t.Errorf("topic/identifier = %q/%q", cmp.Topic, cmp.Identifier)
			}
			if (cmp.Wikipedia != nil) != tt.wantWiki || (cmp.Grokipedia != nil) != tt.wantGrok {
				t.Errorf("sides = wiki:%v grok:%v", cmp.Wikipedia != nil, cmp.Grokipedia != nil)
			}
			var names []string
			for _, s := range cmp.Unavailable {
				names = append(names, string(s))
			}
			if got := strings.Join(names, ","); got != tt.wantUnavailable {
				t.Errorf("Unavailable = %q, want %q", got, tt.wantUnavailable)
			}
			if id, _ := f.grok.lastID.Load().(string); id != "Mercury_(planet)" {
				t.Errorf("grokipedia fetched %q, want resolved identifier", id)
			}
		})
	}
}

func TestArticles_CachesFoundSides(t *testing.T) {
	f := newFixture(10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Articles(ctx, "Albert Einstein"); err != nil {
			t.Fatalf("Articles() error = %v", err)
		}
	}
	if f.wiki.calls != 1 || f.grok.calls != 1 {
		t.Errorf("fetch calls = wiki:%d grok:%d, want 1 each", f.wiki.calls, f.grok.calls)
	}
}

func TestArticles_WithoutGrokipedia(t *testing.T) {
	f := newFixture(10)
	f.svc.d.Grokipedia = nil

	cmp, err := f.svc.Articles(context.Background(), "Mars")
	if err != nil || cmp.Wikipedia == nil || cmp.Grokipedia != nil {
		t.Errorf("Articles() = %+v, %v", cmp, err)
	}

	f.wiki.res = models.Transient[models.Article](&models.TransientFetchError{Op: "fetch", Err: errors.New("timeout")})
	if _, err := f.svc.Articles(context.Background(), "Venus"); !models.IsTransient(err) {
		t.Errorf("error = %v, want transient", err)
	}
}

func TestArticles_RejectsEmptyTopic(t *testing.T) {
	f := newFixture(10)
	if _, err := f.svc.Articles(context.Background(), "   "); !errors.Is(err, validation.ErrEmptyInput) {
		t.Errorf("error = %v, want ErrEmptyInput", err)
	}
	if f.wiki.calls != 0 {
		t.Errorf("wiki calls = %d, want 0", f.wiki.calls)
	}
}

func TestVerdict(t *testing.T) {
	f := newFixture(10)
	ctx := context.Background()

	res, err := f.svc.Verdict(ctx, "Mercury", "203.0.113.7")
	if err != nil {
		t.Fatalf("Verdict() error = %v", err)
	}
	if res.Verdict != "Both agree." || res.Cached {
		t.Errorf("first result = %+v", res)
	}
	if f.verdicts.lastA != "https://en.wikipedia.org/wiki/Mercury" {
		t.Errorf("source A url = %q", f.verdicts.lastA)
	}
	if f.verdicts.lastB != "https://grokipedia.com/page/Mercury_%28planet%29" && f.verdicts.lastB != "https://grokipedia.com/page/Mercury_(planet)" {
		t.Errorf("source B url = %q", f.verdicts.lastB)
	}
	if res.Decision.Remaining != 9 {
		t.Errorf("Remaining = %d, want 9", res.Decision.Remaining)
	}

	res, err = f.svc.Verdict(ctx, "Mercury", "203.0.113.7")
	if err != nil || !res.Cached {
		t.Errorf("second result = %+v, %v (want cached)", res, err)
	}
	if f.verdicts.calls != 1 {
		t.Errorf("generator calls = %d, want 1", f.verdicts.calls)
	}
}

func TestVerdict_QuotaCountsCachedResponses(t *testing.T) {
	f := newFixture(2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Verdict(ctx, "Mercury", "198.51.100.1"); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}
	res, err := f.svc.Verdict(ctx, "Mercury", "198.51.100.1")
	if !errors.Is(err, models.ErrRateLimited) {
		t.Fatalf("third call error = %v, want ErrRateLimited", err)
	}
	if res.Decision.Allowed || res.Decision.Remaining != 0 {
		t.Errorf("decision = %+v", res.Decision)
	}

	// Other callers have their own window.
	if _, err := f.svc.Verdict(ctx, "Mercury", "198.51.100.2"); err != nil {
		t.Errorf("other caller error = %v", err)
	}
}

func TestVerdict_FailsClosed(t *testing.T) {
	f := newFixture(10)
	f.svc.d.VerdictLimiter = ratelimit.NewVerdictLimiter(brokenStore{}, 10, time.Minute)

	_, err := f.svc.Verdict(context.Background(), "Mercury", "203.0.113.7")
	if !errors.Is(err, models.ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
	if f.verdicts.calls != 0 {
		t.Errorf("generator calls = %d, want 0", f.verdicts.calls)
	}
}

func TestVerdict_Errors(t *testing.T) {
	f := newFixture(10)
	f.verdicts.err = &models.TransientFetchError{Op: "verdict", Err: errors.New("upstream 500")}

	if _, err := f.svc.Verdict(context.Background(), "Mercury", "x"); !models.IsTransient(err) {
		t.Errorf("error = %v, want transient", err)
	}
	if len(f.content.verdicts) != 0 {
		t.Error("failed generation should not be cached")
	}

	f.svc.d.Verdicts = nil
	if _, err := f.svc.Verdict(context.Background(), "Mercury", "x"); !models.IsConfiguration(err) {
		t.Errorf("error = %v, want configuration error", err)
	}
}

func TestVote(t *testing.T) {
	f := newFixture(10)
	ctx := context.Background()

	steps := []struct {
		source    string
		wantCount int64
		want      VoteCounts
	}{
		{"wikipedia", 1, VoteCounts{Wikipedia: 1}},
		{"grokipedia", 1, VoteCounts{Wikipedia: 1, Grokipedia: 1}},
		{"grokipedia", 2, VoteCounts{Wikipedia: 1, Grokipedia: 2}},
	}
	for _, st := range steps {
		res, err := f.svc.Vote(ctx, "Mercury", st.source, "203.0.113.7")
		if err != nil {
			t.Fatalf("Vote(%s) error = %v", st.source, err)
		}
		if res.Count != st.wantCount || res.Counts != st.want {
			t.Errorf("Vote(%s) = %+v, want count %d counts %+v", st.source, res, st.wantCount, st.want)
		}
	}

	got, err := f.svc.Votes(ctx, "Mercury")
	if err != nil || got != (VoteCounts{Wikipedia: 1, Grokipedia: 2}) {
		t.Errorf("Votes() = %+v, %v", got, err)
	}
}

func TestVote_Rejections(t *testing.T) {
	f := newFixture(1)
	ctx := context.Background()

	if _, err := f.svc.Vote(ctx, "Mercury", "britannica", "a"); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("invalid source error = %v", err)
	}
	if _, err := f.svc.Vote(ctx, "Mercury", "wikipedia", "a"); err != nil {
		t.Fatalf("first vote error = %v", err)
	}
	if _, err := f.svc.Vote(ctx, "Mercury", "wikipedia", "a"); !errors.Is(err, models.ErrRateLimited) {
		t.Errorf("second vote error = %v, want ErrRateLimited", err)
	}
	if got := f.votes.votes["Mercury|wikipedia"]; got != 1 {
		t.Errorf("stored votes = %d, want 1", got)
	}
}

func TestVote_FailsOpen(t *testing.T) {
	f := newFixture(10)
	f.svc.d.VoteLimiter = ratelimit.NewLimiter(ratelimit.ActionTrustVote, brokenStore{}, 10, time.Minute)

	res, err := f.svc.Vote(context.Background(), "Mercury", "wikipedia", "a")
	if err != nil || res.Count != 1 {
		t.Errorf("Vote() = %+v, %v", res, err)
	}
}

func TestCheckSlugs(t *testing.T) {
	f := newFixture(10)
	ctx := context.Background()

	checks, err := f.svc.CheckSlugs(ctx, []string{"Albert_Einstein", " Unknown_Page ", "Mercury"})
	if err != nil {
		t.Fatalf("CheckSlugs() error = %v", err)
	}
	if len(checks) != 3 {
		t.Fatalf("len = %d", len(checks))
	}

	if c := checks[0]; !c.Exists || c.Title == nil || *c.Title != "Albert Einstein" || c.LastModified == nil || *c.LastModified != "2026-01-02" {
		t.Errorf("checks[0] = %+v", c)
	}
	if c := checks[1]; c.Exists || c.Slug != "Unknown_Page" || c.Title != nil {
		t.Errorf("checks[1] = %+v", c)
	}
	if c := checks[2]; !c.Exists || c.LastModified != nil {
		t.Errorf("checks[2] = %+v", c)
	}
}

func TestCheckSlugs_Bounds(t *testing.T) {
	f := newFixture(10)
	ctx := context.Background()

	if _, err := f.svc.CheckSlugs(ctx, nil); !errors.Is(err, ErrNoSlugs) {
		t.Errorf("empty error = %v", err)
	}

	many := make([]string, MaxSlugsPerCheck+1)
	for i := range many {
		many[i] = "Slug"
	}
	if _, err := f.svc.CheckSlugs(ctx, many); !errors.Is(err, ErrTooManySlugs) {
		t.Errorf("oversized error = %v", err)
	}
	if _, err := f.svc.CheckSlugs(ctx, many[:MaxSlugsPerCheck]); err != nil {
		t.Errorf("max batch error = %v", err)
	}

	if _, err := f.svc.CheckSlugs(ctx, []string{"ok", "  "}); !errors.Is(err, validation.ErrEmptyInput) {
		t.Errorf("blank slug error = %v", err)
	}
}

func TestCheckSlug(t *testing.T) {
	f := newFixture(10)

	c, err := f.svc.CheckSlug(context.Background(), "Albert_Einstein")
	if err != nil || !c.Exists {
		t.Errorf("CheckSlug() = %+v, %v", c, err)
	}

	f.slugs.err = errors.New("db down")
	if _, err := f.svc.CheckSlug(context.Background(), "Albert_Einstein"); err == nil {
		t.Error("expected store error")
	}
}

func TestGrokipediaArticle(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		res     models.FetchResult[models.Article]
		check   func(error) bool
		wantHit bool
	}{
		{"found", "Albert_Einstein", models.Found(models.Article{Title: "Albert Einstein"}), nil, true},
		{"missing", "Nope", models.Missing[models.Article](), models.IsNotFound, false},
		{"upstream down", "Down", models.Transient[models.Article](&models.TransientFetchError{Op: "scrape", Err: errors.New("502")}), models.IsTransient, false},
		{"invalid slug", "../etc/passwd", models.Found(models.Article{}), func(err error) bool { return errors.Is(err, ErrInvalidSlug) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(10)
			f.grok.res = tt.res

			a, d, err := f.svc.GrokipediaArticle(context.Background(), tt.slug, "203.0.113.7")
			if tt.check == nil && err != nil {
				t.Fatalf("error = %v", err)
			}
			if tt.check != nil && !tt.check(err) {
				t.Errorf("error = %v", err)
			}
			if (a != nil) != tt.wantHit {
				t.Errorf("article = %+v", a)
			}
			if !d.Allowed || d.Limit != 10 {
				t.Errorf("decision = %+v", d)
			}
		})
	}
}

func TestGrokipediaArticle_RateLimitedAndUnconfigured(t *testing.T) {
	f := newFixture(1)
	ctx := context.Background()

	if _, _, err := f.svc.GrokipediaArticle(ctx, "Mars", "a"); err != nil {
		t.Fatalf("first call error = %v", err)
	}
	if _, _, err := f.svc.GrokipediaArticle(ctx, "Mars", "a"); !errors.Is(err, models.ErrRateLimited) {
		t.Errorf("second call error = %v, want ErrRateLimited", err)
	}

	f.svc.d.Grokipedia = nil
	if _, _, err := f.svc.GrokipediaArticle(ctx, "Mars", "b"); !models.IsConfiguration(err) {
		t.Errorf("error = %v, want configuration error", err)
	}
}
