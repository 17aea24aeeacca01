package settings

import (
	"context"
	"errors"
	"time"

	"studytrack-activity-svc/src/clients"
	"studytrack-activity-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const settingsDocID = "assistant-prompts"

// Repository persists the single admin settings document.
type Repository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	collection *mongo.Collection
}

func NewSettingsRepository(db *clients.MongoDB, collectionName string) Repository {
	return &settingsRepository{collection: db.Database.Collection(collectionName)}
}

// Get returns the stored settings, or the defaults when nothing has been
// saved yet.
func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	filter := bson.M{"_id": settingsDocID}

	err := r.collection.FindOne(ctx, filter).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.DefaultSettings(), nil
		}
		logrus.WithError(err).Error("Failed to read settings")
		return nil, models.ErrDatabaseQuery
	}

	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	settings.UpdatedAt = time.Now()

	filter := bson.M{"_id": settingsDocID}
	update := bson.M{"$set": settings}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		logrus.WithError(err).Error("Failed to save settings")
		return models.ErrDatabaseUpdate
	}

	return nil
}
