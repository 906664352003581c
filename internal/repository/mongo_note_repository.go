package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gauravnainwal518/note-app/internal/db"
	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/model"
)

type noteDocument struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"ownerId"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d noteDocument) model() (model.Note, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return model.Note{}, fmt.Errorf("decode note id %q: %w", d.ID, err)
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return model.Note{}, fmt.Errorf("decode note owner %q: %w", d.OwnerID, err)
	}
	return model.Note{
		ID:        id,
		OwnerID:   ownerID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type mongoNoteRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoNoteRepository builds a NoteRepository over the notes collection.
func NewMongoNoteRepository(database *mongo.Database) NoteRepository {
	return &mongoNoteRepository{
		coll: database.Collection(db.NotesCollection),
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (r *mongoNoteRepository) Create(ctx context.Context, note *model.Note) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	now := r.now()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, noteDocument{
		ID:        note.ID.String(),
		OwnerID:   note.OwnerID.String(),
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoNoteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	cur, err := r.coll.Find(ctx, bson.M{"ownerId": ownerID.String()})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	notes := []model.Note{}
	for cur.Next(ctx) {
		var doc noteDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		note, err := doc.model()
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *mongoNoteRepository) DeleteByOwner(ctx context.Context, ownerID, noteID uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": noteID.String(), "ownerId": ownerID.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNoteNotFound
	}
	return nil
}
