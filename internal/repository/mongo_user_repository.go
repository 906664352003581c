package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gauravnainwal518/note-app/internal/db"
	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/model"
)

type userDocument struct {
	ID              string     `bson:"_id"`
	Name            string     `bson:"name"`
	Email           string     `bson:"email"`
	GoogleSubjectID *string    `bson:"googleSubjectId,omitempty"`
	OTPCode         *string    `bson:"otpCode,omitempty"`
	OTPExpiresAt    *time.Time `bson:"otpExpiresAt,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt"`
}

func newUserDocument(u *model.User) userDocument {
	return userDocument{
		ID:              u.ID.String(),
		Name:            u.Name,
		Email:           u.Email,
		GoogleSubjectID: u.GoogleSubjectID,
		OTPCode:         u.OTPCode,
		OTPExpiresAt:    u.OTPExpiresAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (d userDocument) model() (*model.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode user id %q: %w", d.ID, err)
	}
	return &model.User{
		ID:              id,
		Name:            d.Name,
		Email:           d.Email,
		GoogleSubjectID: d.GoogleSubjectID,
		OTPCode:         d.OTPCode,
		OTPExpiresAt:    d.OTPExpiresAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

type mongoUserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoUserRepository builds a UserRepository over the users collection.
func NewMongoUserRepository(database *mongo.Database) UserRepository {
	return &mongoUserRepository{
		coll: database.Collection(db.UsersCollection),
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, newUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, changes ProfileChanges) error {
	if changes.empty() {
		return nil
	}
	set := bson.M{"updatedAt": r.now()}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.GoogleSubjectID != nil {
		set["googleSubjectId"] = *changes.GoogleSubjectID
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByGoogleSubject(ctx context.Context, subject string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"googleSubjectId": subject})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return doc.model()
}

func (r *mongoUserRepository) SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{
			"otpCode":      code,
			"otpExpiresAt": expiresAt.UTC(),
			"updatedAt":    r.now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) ConsumeOTP(ctx context.Context, id uuid.UUID, code string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String(), "otpCode": code},
		bson.M{
			"$unset": bson.M{"otpCode": "", "otpExpiresAt": ""},
			"$set":   bson.M{"updatedAt": r.now()},
		},
		options.Update().SetUpsert(false),
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
