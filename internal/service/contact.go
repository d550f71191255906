package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shalteor/kitchenhub/internal/models"
)

// SendContactMessage validates a contact form and hands it to the sender
func (s *Service) SendContactMessage(ctx context.Context, name, email, subject, body string) (*models.ContactMessage, error) {
	msg := models.ContactMessage{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
	}
	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Body == "" {
		return nil, validationError("All fields are required!")
	}
	if tooLong(msg.Name) {
		return nil, nameTooLong("Name")
	}

	msg.ID = uuid.NewString()
	msg.ReceivedAt = time.Now().UTC()

	if s.contact == nil {
		return nil, &Error{Kind: ErrStore, Message: "Contact form is not available right now."}
	}
	if err := s.contact.Send(ctx, msg); err != nil {
		s.logger.Error("contact delivery failed", zap.String("message_id", msg.ID), zap.Error(err))
		return nil, &Error{Kind: ErrStore, Message: "Your message could not be sent. Please try again later.", Err: err}
	}
	return &msg, nil
}
