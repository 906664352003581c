package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/model"
)

// NoteRepository defines note persistence operations. Every read and delete
// is scoped to an owner.
type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error)
	// DeleteByOwner removes the note only when both ids match, otherwise it
	// returns apperrors.ErrNoteNotFound.
	DeleteByOwner(ctx context.Context, ownerID, noteID uuid.UUID) error
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new GORM-backed note repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

// Create creates a new note.
func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	return translate(r.db.WithContext(ctx).Omit("Owner").Create(note).Error, apperrors.ErrNoteNotFound)
}

// ListByOwner lists the owner's notes in store order.
func (r *noteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	notes := []model.Note{}
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// DeleteByOwner deletes a note owned by ownerID.
func (r *noteRepository) DeleteByOwner(ctx context.Context, ownerID, noteID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", noteID, ownerID).
		Delete(&model.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNoteNotFound
	}
	return nil
}
