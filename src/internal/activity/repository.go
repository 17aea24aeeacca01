package activity

import (
	"context"
	"errors"

	"studytrack-activity-svc/src/clients"
	"studytrack-activity-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is the durable archive behind the redis cache: generated
// histories are written wholesale and read back when the cache is cold.
type Repository interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.ActivityHistory, error)
	Upsert(ctx context.Context, history *models.ActivityHistory) error
}

type historyRepository struct {
	collection *mongo.Collection
}

func NewHistoryRepository(db *clients.MongoDB, collectionName string) Repository {
	return &historyRepository{collection: db.Database.Collection(collectionName)}
}

func (r *historyRepository) GetByStudentID(ctx context.Context, studentID string) (*models.ActivityHistory, error) {
	var history models.ActivityHistory
	filter := bson.M{"student_id": studentID}

	err := r.collection.FindOne(ctx, filter).Decode(&history)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logrus.WithError(err).WithField("student_id", studentID).Error("Failed to read archived history")
		return nil, models.ErrDatabaseQuery
	}

	return &history, nil
}

func (r *historyRepository) Upsert(ctx context.Context, history *models.ActivityHistory) error {
	filter := bson.M{"student_id": history.StudentID}
	update := bson.M{"$set": history}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		logrus.WithError(err).WithField("student_id", history.StudentID).Error("Failed to archive history")
		return models.ErrDatabaseUpdate
	}

	return nil
}
