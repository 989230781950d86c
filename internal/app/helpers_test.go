package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"school_dashboard/internal/domain/substitution"
	"school_dashboard/internal/infra/database"
	"school_dashboard/internal/infra/planparser"
	"school_dashboard/internal/testutil"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

var errBoom = errors.New("boom")

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestCache(t *testing.T) *CacheService {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewCacheService(database.NewSQLCacheRepository(db), testLogger())
}

type fakeDSB struct {
	tables []substitution.TimeTable
	news   []substitution.News
	err    error
}

func (f *fakeDSB) TimeTables(context.Context) ([]substitution.TimeTable, error) {
	return f.tables, f.err
}

func (f *fakeDSB) News(context.Context) ([]substitution.News, error) {
	return f.news, f.err
}

type fakeFetcher struct {
	pages map[string]*planparser.Document
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*planparser.Document, error) {
	doc, ok := f.pages[url]
	if !ok {
		return nil, errBoom
	}
	// Callers mutate the plan, hand out a copy.
	plan := *doc.Plan
	plan.Entries = append([]*substitution.Entry(nil), doc.Plan.Entries...)
	if doc.Plan.News != nil {
		news := *doc.Plan.News
		news.NewsItems = append([]string(nil), doc.Plan.News.NewsItems...)
		plan.News = &news
	}
	return &planparser.Document{Plan: &plan, RawHTML: doc.RawHTML}, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeTelegram struct {
	mu     sync.Mutex
	sent   []sentMessage
	failOn map[int64]bool
}

func (f *fakeTelegram) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[chatID] {
		return errBoom
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
