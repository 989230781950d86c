package app

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"school_dashboard/internal/domain/subscriber"
	"school_dashboard/internal/domain/substitution"
	domainTelegram "school_dashboard/internal/domain/telegram"
	"school_dashboard/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// NotificationReport counts the messages of one notification run.
type NotificationReport struct {
	Sent   int
	Failed int
}

// NotificationService tells subscribers about their grade's entries after a
// plan update changed stored documents.
type NotificationService struct {
	subscribers    subscriber.Repository
	telegramClient domainTelegram.Client
	log            *logrus.Entry
}

func NewNotificationService(subscribers subscriber.Repository, client domainTelegram.Client, log *logrus.Entry) *NotificationService {
	return &NotificationService{
		subscribers:    subscribers,
		telegramClient: client,
		log:            log.WithField("component", "notification_service"),
	}
}

// NotifyPlanUpdate sends every active subscriber the entries of today's plan
// for their grade. Nothing is sent when no document changed. A failed send
// is logged and counted; the run continues with the next chat.
func (s *NotificationService) NotifyPlanUpdate(ctx context.Context, update *PlanUpdate, now time.Time) (*NotificationReport, error) {
	report := &NotificationReport{}
	if update == nil || !update.Changed() {
		return report, nil
	}

	view := GroupPlans(update.Plans, now)
	if view.Total == 0 {
		s.log.Info("Plan changed but has no entries for today, no notifications sent")
		return report, nil
	}

	for _, grade := range substitution.AllGrades {
		entries := view.Grades[grade]
		if len(entries) == 0 {
			continue
		}
		subs, err := s.subscribers.ListActiveByGrade(ctx, grade)
		if err != nil {
			return report, fmt.Errorf("failed to list subscribers of grade %s: %w", grade, err)
		}
		if len(subs) == 0 {
			continue
		}

		text := FormatGradeMessage(grade, view.Date, entries)
		for _, sub := range subs {
			err := s.telegramClient.SendMessage(sub.ChatID, text, &telebot.SendOptions{ParseMode: telebot.ModeHTML})
			if err != nil {
				report.Failed++
				metrics.NotificationsSent.WithLabelValues("failed").Inc()
				s.log.WithError(err).WithFields(logrus.Fields{"chat_id": sub.ChatID, "grade": grade}).Error("Failed to send plan notification")
				continue
			}
			report.Sent++
			metrics.NotificationsSent.WithLabelValues("sent").Inc()
		}
	}

	s.log.WithFields(logrus.Fields{"sent": report.Sent, "failed": report.Failed}).Info("Plan notifications finished")
	return report, nil
}

// FormatGradeMessage renders the entries of one grade as a Telegram HTML message.
func FormatGradeMessage(grade substitution.GradeKey, date string, entries []*substitution.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Vertretungsplan Stufe %s</b>", grade)
	if date != "" {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(date))
	}
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString("\nKeine Einträge.")
		return b.String()
	}
	for _, e := range entries {
		b.WriteString("\n• ")
		b.WriteString(html.EscapeString(formatEntry(e)))
	}
	return b.String()
}

func formatEntry(e *substitution.Entry) string {
	parts := make([]string, 0, 6)
	if e.Period != "" {
		parts = append(parts, e.Period+". Std.")
	}
	parts = append(parts, e.Classes)
	subject := e.Subject
	switch {
	case subject == "":
		subject = e.OriginalSubject
	case e.OriginalSubject != "" && e.OriginalSubject != subject:
		subject = e.OriginalSubject + " → " + subject
	}
	for _, p := range []string{e.Type, subject, e.Substitute, roomText(e.NewRoom), e.Comment} {
		if p = strings.TrimSpace(p); p != "" && p != "---" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}

func roomText(room string) string {
	if strings.TrimSpace(room) == "" {
		return ""
	}
	return "Raum " + room
}
