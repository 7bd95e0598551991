package message

import (
	"context"
	"errors"
)

// ErrMissingFields is returned when a contact-form field is empty. It is
// checked before any database call is made.
var ErrMissingFields = errors.New("name, email and message are required")

// Repo is the persistence surface the service needs.
type Repo interface {
	Insert(ctx context.Context, m Message) (Message, error)
	List(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles the contact form and the admin message view.
type Service struct {
	repo Repo
}

// NewService creates a service backed by a repository.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Submit validates and stores a visitor message.
func (s *Service) Submit(ctx context.Context, name, email, body string) (Message, error) {
	if name == "" || email == "" || body == "" {
		return Message{}, ErrMissingFields
	}
	return s.repo.Insert(ctx, Message{Name: name, Email: email, Body: body})
}

// List returns all messages, newest first.
func (s *Service) List(ctx context.Context) ([]Message, error) {
	return s.repo.List(ctx)
}

// Delete removes a message by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
