package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"school_dashboard/internal/app"
	"school_dashboard/internal/domain/substitution"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// PlanReader returns today's plan grouped per grade.
type PlanReader interface {
	Grouped(ctx context.Context, now time.Time) (*app.GroupedPlan, error)
}

// CommandHandlers answers the bot commands. Every reply is Telegram HTML.
type CommandHandlers struct {
	subscriptions *app.SubscriptionService
	plans         PlanReader
	now           func() time.Time
	log           *logrus.Entry
}

func NewCommandHandlers(subscriptions *app.SubscriptionService, plans PlanReader, log *logrus.Entry) *CommandHandlers {
	return &CommandHandlers{
		subscriptions: subscriptions,
		plans:         plans,
		now:           time.Now,
		log:           log.WithField("component", "telegram_commands"),
	}
}

const genericErrorReply = "Es ist ein Fehler aufgetreten. Bitte versuche es später erneut."

// Register wires all commands into b.
func (h *CommandHandlers) Register(ctx context.Context, b *telebot.Bot) {
	handle := func(command string, reply func(c telebot.Context) string) {
		b.Handle(command, func(c telebot.Context) error {
			h.log.WithFields(logrus.Fields{"command": command, "sender_id": c.Sender().ID}).Info("Command received")
			return c.Send(reply(c), &telebot.SendOptions{ParseMode: telebot.ModeHTML})
		})
	}

	handle("/start", func(c telebot.Context) string {
		return h.StartReply(c.Sender().ID, c.Sender().FirstName)
	})
	handle("/help", func(c telebot.Context) string {
		return h.HelpReply(c.Sender().ID)
	})
	handle("/abonnieren", func(c telebot.Context) string {
		return h.SubscribeReply(ctx, c.Chat().ID, c.Sender().FirstName, c.Args())
	})
	handle("/abbestellen", func(c telebot.Context) string {
		return h.UnsubscribeReply(ctx, c.Chat().ID)
	})
	handle("/vertretung", func(c telebot.Context) string {
		return h.PlanReply(ctx, c.Chat().ID, c.Args())
	})
	handle("/abonnenten", func(c telebot.Context) string {
		return h.SubscribersReply(ctx, c.Sender().ID)
	})
}

func (h *CommandHandlers) StartReply(senderID int64, firstName string) string {
	greeting := "Hallo!"
	if firstName != "" {
		greeting = fmt.Sprintf("Hallo %s!", html.EscapeString(firstName))
	}
	if h.subscriptions.IsAdmin(senderID) {
		return greeting + " Du bist als Administrator angemeldet. /help zeigt alle Befehle."
	}
	return greeting + " Ich schicke dir Änderungen am Vertretungsplan für deine Stufe.\n" +
		"Melde dich mit <code>/abonnieren 9</code> an. /help zeigt alle Befehle."
}

func (h *CommandHandlers) HelpReply(senderID int64) string {
	var b strings.Builder
	b.WriteString("<b>Befehle</b>\n\n")
	b.WriteString("/abonnieren &lt;Stufe&gt; - Benachrichtigungen für Stufe 7 bis 12\n")
	b.WriteString("/abbestellen - Benachrichtigungen beenden\n")
	b.WriteString("/vertretung [Stufe] - heutige Vertretungen anzeigen\n")
	b.WriteString("/help - diese Hilfe")
	if h.subscriptions.IsAdmin(senderID) {
		b.WriteString("\n\n<b>Administration</b>\n/abonnenten - alle Abonnenten auflisten")
	}
	return b.String()
}

func (h *CommandHandlers) SubscribeReply(ctx context.Context, chatID int64, firstName string, args []string) string {
	if len(args) != 1 {
		return "Bitte gib deine Stufe an, z. B. <code>/abonnieren 9</code>."
	}
	grade, err := substitution.ParseGradeKey(args[0])
	if err != nil {
		return "Ungültige Stufe. Erlaubt sind 7 bis 12."
	}

	sub, err := h.subscriptions.Subscribe(ctx, chatID, firstName, grade)
	switch {
	case errors.Is(err, app.ErrAlreadySubscribed):
		return fmt.Sprintf("Du hast Stufe %s bereits abonniert.", grade)
	case err != nil:
		h.log.WithError(err).WithField("chat_id", chatID).Error("Failed to subscribe")
		return genericErrorReply
	}
	h.log.WithFields(logrus.Fields{"chat_id": chatID, "grade": sub.Grade}).Info("Chat subscribed")
	return fmt.Sprintf("Erledigt! Du bekommst ab jetzt Änderungen für Stufe %s.", sub.Grade)
}

func (h *CommandHandlers) UnsubscribeReply(ctx context.Context, chatID int64) string {
	_, err := h.subscriptions.Unsubscribe(ctx, chatID)
	switch {
	case errors.Is(err, app.ErrNotSubscribed):
		return "Du hast nichts abonniert."
	case err != nil:
		h.log.WithError(err).WithField("chat_id", chatID).Error("Failed to unsubscribe")
		return genericErrorReply
	}
	h.log.WithField("chat_id", chatID).Info("Chat unsubscribed")
	return "Du bekommst keine Benachrichtigungen mehr."
}

// PlanReply shows today's entries for the given grade, or for the grade the
// chat subscribed to.
func (h *CommandHandlers) PlanReply(ctx context.Context, chatID int64, args []string) string {
	var grade substitution.GradeKey
	if len(args) > 0 {
		g, err := substitution.ParseGradeKey(args[0])
		if err != nil {
			return "Ungültige Stufe. Erlaubt sind 7 bis 12."
		}
		grade = g
	} else {
		sub, err := h.subscriptions.Subscription(ctx, chatID)
		if err != nil {
			if errors.Is(err, app.ErrNotSubscribed) {
				return "Bitte gib eine Stufe an, z. B. <code>/vertretung 9</code>."
			}
			h.log.WithError(err).WithField("chat_id", chatID).Error("Failed to read subscription")
			return genericErrorReply
		}
		grade = sub.Grade
	}

	view, err := h.plans.Grouped(ctx, h.now())
	if err != nil {
		h.log.WithError(err).Error("Failed to load plans")
		return genericErrorReply
	}
	if view.Total == 0 {
		return "Für heute liegt kein Vertretungsplan vor."
	}
	return app.FormatGradeMessage(grade, view.Date, view.Grades[grade])
}
