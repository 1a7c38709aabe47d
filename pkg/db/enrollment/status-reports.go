package enrollment

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaginationInfos struct {
	TotalCount  int64 `json:"totalCount"`
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	PageSize    int64 `json:"pageSize"`
}

func prepPaginationInfos(totalCount int64, page int64, limit int64) *PaginationInfos {
	if limit < 1 {
		limit = 10
	}
	totalPages := (totalCount + limit - 1) / limit
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	return &PaginationInfos{
		TotalCount:  totalCount,
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    limit,
	}
}

// StatusReport is the audit record of one delivered status report.
type StatusReport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Marketplace string             `bson:"marketplace"`
	ProjectCode string             `bson:"projectCode"`
	Status      string             `bson:"status"`
	ReportedAt  time.Time          `bson:"reportedAt"`
}

func (dbService *EnrollmentDBService) CreateIndexForStatusReports() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionStatusReports().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "projectCode", Value: 1},
					{Key: "reportedAt", Value: 1},
				},
			},
		},
	)
	return err
}

// SaveStatusReport appends the audit record for a delivered report.
func (dbService *EnrollmentDBService) SaveStatusReport(ctx context.Context, report StatusReport) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(dbService.timeout)*time.Second)
	defer cancel()

	if report.ReportedAt.IsZero() {
		report.ReportedAt = time.Now()
	}
	_, err := dbService.collectionStatusReports().InsertOne(ctx, report)
	return err
}

// get paginated status reports by query
func (dbService *EnrollmentDBService) GetStatusReports(filter bson.M, sort bson.M, page int64, limit int64) (reports []StatusReport, paginationInfo *PaginationInfos, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	totalCount, err := dbService.GetStatusReportsCount(filter)
	if err != nil {
		return reports, nil, err
	}

	paginationInfo = prepPaginationInfos(
		totalCount,
		page,
		limit,
	)

	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize

	if len(sort) == 0 {
		sort = bson.M{"reportedAt": -1}
	}

	opts := options.Find().SetSort(sort).SetSkip(skip).SetLimit(paginationInfo.PageSize)
	cursor, err := dbService.collectionStatusReports().Find(ctx, filter, opts)
	if err != nil {
		return reports, nil, err
	}
	defer cursor.Close(ctx)

	reports = []StatusReport{}
	err = cursor.All(ctx, &reports)
	if err != nil {
		return reports, nil, err
	}

	return reports, paginationInfo, nil
}

func (dbService *EnrollmentDBService) GetStatusReportsCount(filter bson.M) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	return dbService.collectionStatusReports().CountDocuments(ctx, filter)
}
