package enrollment

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatusReportMarker records that a terminal status was delivered to the
// marketplace for one project and respondent outcome. Its presence makes
// repeated delivery attempts no-ops.
type StatusReportMarker struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Fingerprint string             `bson:"fingerprint"`
	ProjectCode string             `bson:"projectCode"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (dbService *EnrollmentDBService) CreateIndexForStatusReportMarkers() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionStatusReportMarkers().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "fingerprint", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "projectCode", Value: 1},
				},
			},
			{
				Keys: bson.D{
					{Key: "createdAt", Value: 1},
				},
			},
		},
	)
	return err
}

// HasMarker reports whether a delivery marker exists for the fingerprint.
func (dbService *EnrollmentDBService) HasMarker(ctx context.Context, fingerprint string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(dbService.timeout)*time.Second)
	defer cancel()

	filter := bson.M{"fingerprint": fingerprint}
	count, err := dbService.collectionStatusReportMarkers().CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetMarker writes the delivery marker for the fingerprint. A concurrent
// writer winning the race is fine, the marker exists either way.
func (dbService *EnrollmentDBService) SetMarker(ctx context.Context, fingerprint string, projectCode string, status string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(dbService.timeout)*time.Second)
	defer cancel()

	marker := StatusReportMarker{
		Fingerprint: fingerprint,
		ProjectCode: projectCode,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	_, err := dbService.collectionStatusReportMarkers().InsertOne(ctx, marker)
	if err != nil && isDuplicateKeyError(err) {
		return nil
	}
	return err
}

// DeleteMarkersOlderThan removes markers created before the reference time
// and returns the number of removed documents.
func (dbService *EnrollmentDBService) DeleteMarkersOlderThan(olderThan time.Time) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"createdAt": bson.M{"$lt": olderThan}}
	res, err := dbService.collectionStatusReportMarkers().DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func isDuplicateKeyError(err error) bool {
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == 11000 {
				return true
			}
		}
	}
	return false
}
