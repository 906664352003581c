package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/model"
	"github.com/gauravnainwal518/note-app/internal/repository"
)

// NoteService exposes note operations scoped to an owner.
type NoteService interface {
	Create(ctx context.Context, ownerID uuid.UUID, title, content string) (*model.Note, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error)
	Delete(ctx context.Context, ownerID, noteID uuid.UUID) error
}

type noteService struct {
	notes  repository.NoteRepository
	policy *bluemonday.Policy
	options
}

// NewNoteService creates a note service. Notes are plain text and are stored
// as sent unless sanitize is set, in which case markup is stripped from title
// and content while the remaining text keeps its characters.
func NewNoteService(notes repository.NoteRepository, sanitize bool, opts ...Option) NoteService {
	s := &noteService{notes: notes, options: newOptions(opts)}
	if sanitize {
		s.policy = bluemonday.StrictPolicy()
	}
	return s
}

func (s *noteService) Create(ctx context.Context, ownerID uuid.UUID, title, content string) (*model.Note, error) {
	if err := requireNoteFields(title, content); err != nil {
		return nil, err
	}
	if s.policy != nil {
		title = s.stripMarkup(title)
		content = s.stripMarkup(content)
		// markup-only input is empty once sanitized
		if err := requireNoteFields(title, content); err != nil {
			return nil, err
		}
	}

	note := &model.Note{
		OwnerID: ownerID,
		Title:   strings.TrimSpace(title),
		Content: content,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	s.metrics.NoteCreated()
	return note, nil
}

func (s *noteService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	notes, err := s.notes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

func (s *noteService) Delete(ctx context.Context, ownerID, noteID uuid.UUID) error {
	if err := s.notes.DeleteByOwner(ctx, ownerID, noteID); err != nil {
		return wrapUnlessDomain("delete note", err)
	}
	s.metrics.NoteDeleted()
	return nil
}

// stripMarkup drops tags. bluemonday escapes the text it keeps, so the
// entities are decoded again to leave "Tom & Jerry" untouched.
func (s *noteService) stripMarkup(text string) string {
	return html.UnescapeString(s.policy.Sanitize(text))
}

func requireNoteFields(title, content string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return fmt.Errorf("%w: title is required", apperrors.ErrValidationFailed)
	case strings.TrimSpace(content) == "":
		return fmt.Errorf("%w: content is required", apperrors.ErrValidationFailed)
	}
	return nil
}
