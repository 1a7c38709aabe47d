package enrollment

import (
	"context"
	"log/slog"
	"time"

	"github.com/panel-framework/panel-backend/pkg/db"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection names
const (
	COLLECTION_NAME_STATUS_REPORT_MARKERS = "status-report-markers"
	COLLECTION_NAME_STATUS_REPORTS        = "status-reports"
)

type EnrollmentDBService struct {
	DBClient        *mongo.Client
	timeout         int
	noCursorTimeout bool
	DBNamePrefix    string
}

func NewEnrollmentDBService(configs db.DBConfig) (*EnrollmentDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	enrollmentDBSc := &EnrollmentDBService{
		DBClient:        dbClient,
		timeout:         configs.Timeout,
		noCursorTimeout: configs.NoCursorTimeout,
		DBNamePrefix:    configs.DBNamePrefix,
	}

	if configs.RunIndexCreation {
		enrollmentDBSc.ensureIndexes()
	}
	return enrollmentDBSc, nil
}

func (dbService *EnrollmentDBService) getDBName() string {
	return dbService.DBNamePrefix + "enrollment"
}

func (dbService *EnrollmentDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *EnrollmentDBService) collectionStatusReportMarkers() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_STATUS_REPORT_MARKERS)
}

func (dbService *EnrollmentDBService) collectionStatusReports() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_STATUS_REPORTS)
}

func (dbService *EnrollmentDBService) ensureIndexes() {
	slog.Debug("Ensuring indexes for enrollment DB")

	err := dbService.CreateIndexForStatusReportMarkers()
	if err != nil {
		slog.Debug("Error creating indexes for status report markers: ", slog.String("error", err.Error()))
	}

	err = dbService.CreateIndexForStatusReports()
	if err != nil {
		slog.Debug("Error creating indexes for status reports: ", slog.String("error", err.Error()))
	}
}
