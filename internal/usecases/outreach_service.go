package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"leadflow/internal/entities"
	"leadflow/internal/infrastructure/grok"
	"leadflow/internal/interfaces"
)

// DraftRequest is the body of POST /leads/:id/outreach.
type DraftRequest struct {
	TemplateID   int      `json:"template_id" binding:"required"`
	Channel      string   `json:"channel"` // optional, must match the template when set
	Temperature  *float64 `json:"temperature"`
	Instructions string   `json:"instructions"` // extra guidance for the model
}

type OutreachService struct {
	llm          interfaces.ChatCompleter
	leads        interfaces.LeadStore
	companies    interfaces.CompanyStore
	templates    interfaces.TemplateStore
	messages     interfaces.MessageStore
	interactions interfaces.InteractionStore
	messengers   map[string]interfaces.Messenger
	gate         interfaces.SendGate
	log          *slog.Logger
}

func NewOutreachService(
	llm interfaces.ChatCompleter,
	leads interfaces.LeadStore,
	companies interfaces.CompanyStore,
	templates interfaces.TemplateStore,
	messages interfaces.MessageStore,
	interactions interfaces.InteractionStore,
	messengers map[string]interfaces.Messenger,
	gate interfaces.SendGate,
	log *slog.Logger,
) *OutreachService {
	return &OutreachService{
		llm:          llm,
		leads:        leads,
		companies:    companies,
		templates:    templates,
		messages:     messages,
		interactions: interactions,
		messengers:   messengers,
		gate:         gate,
		log:          log.With("component", "outreach"),
	}
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-z_]+)\s*\}\}`)

// renderTemplate substitutes {{placeholder}} tokens from lead and company
// fields. Unknown placeholders are left untouched so they show up in the
// draft for a human to fix.
func renderTemplate(text string, lead *entities.Lead, company *entities.Company) string {
	fields := map[string]string{
		"first_name": lead.FirstName,
		"last_name":  lead.LastName,
		"full_name":  lead.FullName(),
		"title":      lead.Title,
		"email":      lead.Email,
		"company":    company.Name,
		"industry":   company.Industry,
		"size":       company.Size,
		"domain":     company.Domain,
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(token string) string {
		name := placeholderRe.FindStringSubmatch(token)[1]
		if value, ok := fields[name]; ok {
			return value
		}
		return token
	})
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	ssnRe   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
)

const redactedToken = "[redacted]"

// redactPII masks email, phone and SSN shapes in text, except values that
// belong to the lead itself. Reports whether anything was masked.
func redactPII(text string, lead *entities.Lead) (string, bool) {
	own := map[string]bool{}
	if lead.Email != "" {
		own[strings.ToLower(lead.Email)] = true
	}
	if lead.Phone != "" {
		own[normalizePhone(lead.Phone)] = true
	}

	redacted := false
	mask := func(allowOwn func(string) bool) func(string) string {
		return func(match string) string {
			if allowOwn(match) {
				return match
			}
			redacted = true
			return redactedToken
		}
	}

	text = emailRe.ReplaceAllStringFunc(text, mask(func(m string) bool {
		return own[strings.ToLower(m)]
	}))
	text = ssnRe.ReplaceAllStringFunc(text, mask(func(string) bool { return false }))
	text = phoneRe.ReplaceAllStringFunc(text, mask(func(m string) bool {
		return own[normalizePhone(m)]
	}))
	return text, redacted
}

func normalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DraftMessage renders the template for a lead, has the model personalize
// it, redacts stray PII and stores the result as a draft.
func (s *OutreachService) DraftMessage(ctx context.Context, leadID int, req DraftRequest) (*entities.Message, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, lead.CompanyID)
	if err != nil {
		return nil, err
	}
	template, err := s.templates.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if req.Channel != "" && req.Channel != template.Channel {
		return nil, ErrChannelMismatch
	}

	subject := renderTemplate(template.Subject, lead, company)
	draft := renderTemplate(template.Body, lead, company)

	system := "You are a sales development copywriter. Rewrite the draft below " +
		"so it reads naturally and speaks to the recipient's role and company. " +
		"Keep it short, keep the channel-appropriate tone, and do not invent facts. " +
		"Return only the rewritten message text."
	if req.Instructions != "" {
		system += " Additional guidance: " + req.Instructions
	}
	user := fmt.Sprintf("Channel: %s\nRecipient: %s, %s at %s (%s)\n\nDraft:\n%s",
		template.Channel, lead.FullName(), lead.Title, company.Name, company.Industry, draft)

	completion, err := s.llm.Complete(ctx, []grok.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, grok.Options{Temperature: req.Temperature, MaxTokens: 1024})
	if err != nil {
		return nil, err
	}

	body, piiFound := redactPII(strings.TrimSpace(completion.Content), lead)
	if piiFound {
		s.log.Warn("draft contained contact data, redacted",
			"lead_id", lead.ID, "template_id", template.ID)
	}

	msg := &entities.Message{
		LeadID:      lead.ID,
		TemplateID:  &template.ID,
		Direction:   entities.DirectionOutbound,
		Channel:     template.Channel,
		Status:      entities.MessageDraft,
		Subject:     subject,
		Body:        body,
		PIIRedacted: piiFound,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.log.Info("draft created",
		"lead_id", lead.ID,
		"message_id", msg.ID,
		"channel", msg.Channel,
		"pii_redacted", piiFound)
	return msg, nil
}

// SendMessage dispatches a drafted message on its channel. Telegram and
// WhatsApp go out directly; email and linkedin are marked queued for the
// external sender.
func (s *OutreachService) SendMessage(ctx context.Context, messageID int) (*entities.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Status == entities.MessageSent {
		return nil, ErrAlreadySent
	}
	if msg.Direction != entities.DirectionOutbound ||
		(msg.Status != entities.MessageDraft && msg.Status != entities.MessageQueued && msg.Status != entities.MessageFailed) {
		return nil, ErrNotSendable
	}
	if !s.gate.Allow(msg.LeadID) {
		return nil, ErrSendThrottled
	}

	lead, err := s.leads.GetByID(ctx, msg.LeadID)
	if err != nil {
		return nil, err
	}

	messenger, direct := s.messengers[msg.Channel]
	if !direct {
		switch msg.Channel {
		case entities.ChannelEmail, entities.ChannelLinkedin:
			if err := s.messages.MarkStatus(ctx, msg.ID, entities.MessageQueued, nil); err != nil {
				return nil, err
			}
			msg.Status = entities.MessageQueued
			s.log.Info("message queued for external sender",
				"message_id", msg.ID, "channel", msg.Channel)
			return msg, nil
		default:
			return nil, ErrUnknownChannel
		}
	}

	destination := destinationFor(lead, msg.Channel)
	if destination == "" {
		return nil, ErrNoDestination
	}

	if err := messenger.SendText(ctx, destination, msg.Body); err != nil {
		if markErr := s.messages.MarkStatus(ctx, msg.ID, entities.MessageFailed, nil); markErr != nil {
			s.log.Error("mark message failed", "message_id", msg.ID, "error", markErr)
		}
		return nil, fmt.Errorf("send on %s: %w", msg.Channel, err)
	}

	now := time.Now().UTC()
	if err := s.messages.MarkStatus(ctx, msg.ID, entities.MessageSent, &now); err != nil {
		return nil, err
	}
	msg.Status = entities.MessageSent
	msg.SentAt = &now

	interaction := &entities.Interaction{
		LeadID:  msg.LeadID,
		Kind:    entities.InteractionMessageSent,
		Content: fmt.Sprintf("sent %s message %d", msg.Channel, msg.ID),
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, err
	}

	s.log.Info("message sent",
		"message_id", msg.ID,
		"lead_id", msg.LeadID,
		"channel", msg.Channel)
	return msg, nil
}

// destinationFor picks the lead field a channel delivers to.
func destinationFor(lead *entities.Lead, channel string) string {
	switch channel {
	case entities.ChannelEmail:
		return lead.Email
	case entities.ChannelLinkedin:
		return lead.LinkedinURL
	case entities.ChannelTelegram, entities.ChannelWhatsApp:
		return lead.Phone
	default:
		return ""
	}
}
