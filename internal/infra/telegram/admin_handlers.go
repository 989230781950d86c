package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"school_dashboard/internal/app"
)

const unauthorizedReply = "Fehler: Du hast keine Berechtigung für diesen Befehl."

// SubscribersReply lists every subscriber for the admin.
func (h *CommandHandlers) SubscribersReply(ctx context.Context, senderID int64) string {
	subs, err := h.subscriptions.ListSubscribers(ctx, senderID)
	if err != nil {
		if errors.Is(err, app.ErrAdminNotAuthorized) {
			h.log.WithField("sender_id", senderID).Warn("Unauthorized access attempt")
			return unauthorizedReply
		}
		h.log.WithError(err).Error("Failed to list subscribers")
		return genericErrorReply
	}
	if len(subs) == 0 {
		return "Es gibt noch keine Abonnenten."
	}

	active := 0
	var b strings.Builder
	for _, s := range subs {
		status := "aktiv"
		if s.IsActive {
			active++
		} else {
			status = "inaktiv"
		}
		name := s.FirstName
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&b, "\n%d · %s · Stufe %s · %s", s.ChatID, html.EscapeString(name), s.Grade, status)
	}
	return fmt.Sprintf("<b>Abonnenten</b> (%d aktiv, %d gesamt)\n%s", active, len(subs), b.String())
}
