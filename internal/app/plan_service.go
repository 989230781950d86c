package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"school_dashboard/internal/domain/cache"
	"school_dashboard/internal/domain/substitution"
	"school_dashboard/internal/infra/metrics"
	"school_dashboard/internal/infra/planparser"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TimeTableSource lists the plan pages currently published.
type TimeTableSource interface {
	TimeTables(ctx context.Context) ([]substitution.TimeTable, error)
}

// PlanFetcher downloads and parses one plan page.
type PlanFetcher interface {
	Fetch(ctx context.Context, url string) (*planparser.Document, error)
}

// PlanUpdate summarises one plan refresh.
type PlanUpdate struct {
	Plans []*substitution.Plan
	// ChangedGroups are the group names with at least one page whose stored
	// content changed.
	ChangedGroups    []string
	ChangedDocuments int
	FailedPages      int
	Unclassified     int
}

// Changed reports whether any stored plan page changed.
func (u *PlanUpdate) Changed() bool {
	return u.ChangedDocuments > 0
}

// GroupedPlan is today's substitution entries bucketed per grade.
type GroupedPlan struct {
	Date         string                      `json:"date"`
	Title        string                      `json:"title"`
	Order        []substitution.GradeKey     `json:"order"`
	Grades       substitution.GroupedEntries `json:"grades"`
	Unclassified []*substitution.Entry       `json:"unclassified"`
	News         *substitution.DailyNews     `json:"news"`
	Total        int                         `json:"total"`
}

type PlanService struct {
	timetables TimeTableSource
	fetcher    PlanFetcher
	documents  substitution.DocumentRepository
	cache      *CacheService
	log        *logrus.Entry

	mu     sync.RWMutex
	latest []*substitution.Plan
}

func NewPlanService(
	timetables TimeTableSource,
	fetcher PlanFetcher,
	documents substitution.DocumentRepository,
	cache *CacheService,
	log *logrus.Entry,
) *PlanService {
	return &PlanService{
		timetables: timetables,
		fetcher:    fetcher,
		documents:  documents,
		cache:      cache,
		log:        log.WithField("component", "plan_service"),
		latest:     make([]*substitution.Plan, 0),
	}
}

type timetableGroup struct {
	id     uuid.UUID
	name   string
	tables []substitution.TimeTable
}

// groupTimeTables groups tables with a detail URL by UUID, keeping the order
// in which UUIDs first appear.
func groupTimeTables(tables []substitution.TimeTable) []*timetableGroup {
	groups := make([]*timetableGroup, 0)
	index := make(map[uuid.UUID]*timetableGroup)
	for _, t := range tables {
		if strings.TrimSpace(t.Detail) == "" {
			continue
		}
		g, ok := index[t.UUID]
		if !ok {
			g = &timetableGroup{id: t.UUID, name: t.GroupName}
			index[t.UUID] = g
			groups = append(groups, g)
		}
		g.tables = append(g.tables, t)
	}
	return groups
}

// Update fetches every plan page, persists the raw pages and combines the
// pages of each day into one plan. A failing page is logged and skipped.
func (s *PlanService) Update(ctx context.Context) (*PlanUpdate, error) {
	started := time.Now()
	log := s.log.WithField("run", started.Format(time.RFC3339))
	log.Info("Starting plan update")

	tables, err := s.timetables.TimeTables(ctx)
	if err != nil {
		metrics.ObserveFetch(metrics.SourcePlans, started, err)
		log.WithError(err).Error("Failed to load timetables")
		return nil, err
	}

	groups := groupTimeTables(tables)
	log.WithFields(logrus.Fields{"timetables": len(tables), "groups": len(groups)}).Info("Received timetables")

	update := &PlanUpdate{Plans: make([]*substitution.Plan, 0, len(groups))}
	for _, g := range groups {
		combined, changed := s.combineGroup(ctx, g, update, log)
		if changed {
			update.ChangedGroups = append(update.ChangedGroups, g.name)
		}
		if combined == nil {
			log.WithField("uuid", g.id).Warn("No page of group could be parsed")
			continue
		}
		combined.SortPriority = substitution.Priority(g.name)

		_, unclassified := substitution.GroupEntries(combined.Entries)
		for _, e := range unclassified {
			log.WithFields(logrus.Fields{"classes": e.Classes, "period": e.Period, "date": e.Date}).Warn("Entry matches no grade")
		}
		update.Unclassified += len(unclassified)
		update.Plans = append(update.Plans, combined)
	}
	substitution.SortPlans(update.Plans)
	metrics.UnclassifiedEntries.Add(float64(update.Unclassified))
	metrics.PlanDocumentsChanged.Add(float64(update.ChangedDocuments))

	s.mu.Lock()
	s.latest = update.Plans
	s.mu.Unlock()

	s.cache.StoreQuietly(ctx, cache.KeyPlans, update.Plans)
	metrics.ObserveFetch(metrics.SourcePlans, started, nil)
	log.WithFields(logrus.Fields{
		"plans":    len(update.Plans),
		"changed":  update.ChangedDocuments,
		"failed":   update.FailedPages,
		"duration": time.Since(started).String(),
	}).Info("Finished plan update")
	return update, nil
}

func (s *PlanService) combineGroup(ctx context.Context, g *timetableGroup, update *PlanUpdate, log *logrus.Entry) (*substitution.Plan, bool) {
	var combined *substitution.Plan
	changed := false
	for _, table := range g.tables {
		pageLog := log.WithFields(logrus.Fields{"group": g.name, "detail": table.Detail})
		doc, err := s.fetcher.Fetch(ctx, table.Detail)
		if err != nil {
			update.FailedPages++
			pageLog.WithError(err).Error("Failed to parse plan page")
			continue
		}
		if s.persist(ctx, table, doc, pageLog) {
			update.ChangedDocuments++
			changed = true
		}

		plan := doc.Plan
		if plan.News == nil {
			plan.News = &substitution.DailyNews{Date: plan.Date, NewsItems: make([]string, 0)}
		}
		if combined == nil {
			combined = plan
			continue
		}
		combined.Entries = append(combined.Entries, plan.Entries...)
		combined.News = substitution.MergeNews(combined.News, plan.News)
	}
	return combined, changed
}

// persist stores the raw page and reports whether its content changed.
func (s *PlanService) persist(ctx context.Context, table substitution.TimeTable, doc *planparser.Document, log *logrus.Entry) bool {
	if strings.TrimSpace(doc.RawHTML) == "" {
		log.Warn("Skipping storage of empty plan page")
		return false
	}
	planDate := table.Date
	if doc.Plan != nil && doc.Plan.Date != "" {
		planDate = doc.Plan.Date
	}
	record := &substitution.PlanDocument{
		PlanUUID:    table.UUID,
		GroupName:   table.GroupName,
		PlanDate:    planDate,
		Title:       substitution.FileName(table.Detail),
		SourceDate:  table.Date,
		SourceTitle: table.Title,
		DetailURL:   table.Detail,
		RawHTML:     doc.RawHTML,
		ContentHash: substitution.ContentHash(doc.RawHTML),
	}
	record.ApplyPageInfo()

	changed, err := s.documents.Save(ctx, record)
	if err != nil {
		log.WithError(err).Error("Failed to store plan page")
		return false
	}
	if changed {
		log.WithField("id", record.ID).Info("Stored changed plan page")
	}
	return changed
}

// Plans returns the plans of the last update, or the cached ones when no
// update has produced any yet.
func (s *PlanService) Plans(ctx context.Context) ([]*substitution.Plan, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if len(latest) > 0 {
		return latest, nil
	}

	var cached []*substitution.Plan
	ok, err := s.cache.Load(ctx, cache.KeyPlans, &cached)
	if err != nil {
		return nil, err
	}
	if !ok {
		return latest, nil
	}
	return cached, nil
}

// Grouped buckets the entries of today's plans per grade.
func (s *PlanService) Grouped(ctx context.Context, now time.Time) (*GroupedPlan, error) {
	plans, err := s.Plans(ctx)
	if err != nil {
		return nil, err
	}
	return GroupPlans(plans, now), nil
}

// GroupPlans combines the plans for the day of now into one grouped view.
func GroupPlans(plans []*substitution.Plan, now time.Time) *GroupedPlan {
	today := substitution.TodayPlans(plans, now)
	view := &GroupedPlan{
		Order:        substitution.DisplayOrder,
		Unclassified: make([]*substitution.Entry, 0),
	}
	var entries []*substitution.Entry
	for _, p := range today {
		if view.Date == "" {
			view.Date = p.Date
			view.Title = p.Title
		}
		entries = append(entries, p.Entries...)
		view.News = substitution.MergeNews(view.News, p.News)
	}
	view.Grades, view.Unclassified = substitution.GroupEntries(entries)
	if view.Unclassified == nil {
		view.Unclassified = make([]*substitution.Entry, 0)
	}
	view.Total = len(entries)
	return view
}
