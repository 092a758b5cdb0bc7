package responses

import (
	"context"
	"errors"
	"fmt"

	"Backend-GACP-Survey/src/database"
	"Backend-GACP-Survey/src/models"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository ที่เก็บคำตอบแบบประเมิน
type Repository interface {
	Create(ctx context.Context, response *models.SurveyResponse) error
	FindByID(ctx context.Context, responseID string) (*models.SurveyResponse, error)
	// Update บันทึกเมื่อ revision ตรงกับที่อ่านมาเท่านั้น แล้วเพิ่ม revision ขึ้นหนึ่ง
	Update(ctx context.Context, response *models.SurveyResponse) error
	ListBySurvey(ctx context.Context, surveyID string, params models.PaginationParams) ([]models.SurveyResponse, int64, error)
	ListByRespondent(ctx context.Context, respondentID string, params models.PaginationParams) ([]models.SurveyResponse, int64, error)
	CountByStatus(ctx context.Context, surveyID string) (map[models.ResponseStatus]int64, error)
	ScoreStats(ctx context.Context, surveyID string) (*models.ScoreStats, error)
}

var sortableFields = []string{"createdAt", "updatedAt", "submittedAt", "overallProgress", "status"}

// listProjection ตัดข้อมูลขนาดใหญ่ออกจากหน้ารายการ
var listProjection = bson.M{"answers": 0, "auditTrail": 0, "sessions": 0}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(database.ResponseCollection)}
}

func (r *mongoRepository) Create(ctx context.Context, response *models.SurveyResponse) error {
	_, err := r.coll.InsertOne(ctx, response)
	if mongo.IsDuplicateKeyError(err) {
		return models.NewValidationError("รหัสคำตอบซ้ำ: " + response.ResponseID)
	}
	return err
}

func (r *mongoRepository) FindByID(ctx context.Context, responseID string) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	err := r.coll.FindOne(ctx, bson.M{"responseId": responseID}).Decode(&response)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("response %s: %w", responseID, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *mongoRepository) Update(ctx context.Context, response *models.SurveyResponse) error {
	expected := response.Revision
	response.Revision = expected + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"responseId": response.ResponseID, "revision": expected}, response)
	if err != nil {
		response.Revision = expected
		return err
	}
	if res.MatchedCount == 0 {
		response.Revision = expected
		n, err := r.coll.CountDocuments(ctx, bson.M{"responseId": response.ResponseID})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("response %s: %w", response.ResponseID, models.ErrNotFound)
		}
		return models.ErrRevisionConflict
	}
	return nil
}

func (r *mongoRepository) ListBySurvey(ctx context.Context, surveyID string, params models.PaginationParams) ([]models.SurveyResponse, int64, error) {
	return r.list(ctx, bson.M{"surveyId": surveyID}, params)
}

func (r *mongoRepository) ListByRespondent(ctx context.Context, respondentID string, params models.PaginationParams) ([]models.SurveyResponse, int64, error) {
	return r.list(ctx, bson.M{"respondentId": respondentID}, params)
}

func (r *mongoRepository) list(ctx context.Context, filter bson.M, params models.PaginationParams) ([]models.SurveyResponse, int64, error) {
	params.Normalize(sortableFields...)
	if params.Status != "" {
		filter["status"] = params.Status
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(params.GetSkip()).
		SetLimit(int64(params.Limit)).
		SetSort(bson.D{{Key: params.SortBy, Value: params.GetSortOrder()}}).
		SetProjection(listProjection)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	out := []models.SurveyResponse{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// CountByStatus นับจำนวนคำตอบของแบบประเมินแยกตามสถานะ
func (r *mongoRepository) CountByStatus(ctx context.Context, surveyID string) (map[models.ResponseStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"surveyId": surveyID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate responses: %v", err)
	}
	defer cursor.Close(ctx)

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation results: %v", err)
	}

	counts := map[models.ResponseStatus]int64{}
	for _, row := range rows {
		counts[models.ResponseStatus(cast.ToString(row["_id"]))] = cast.ToInt64(row["count"])
	}
	return counts, nil
}

// ScoreStats สถิติคะแนนของคำตอบที่คิดคะแนนแล้ว
func (r *mongoRepository) ScoreStats(ctx context.Context, surveyID string) (*models.ScoreStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"surveyId": surveyID, "scoring": bson.M{"$ne": nil}}}},
		{{Key: "$facet", Value: bson.M{
			"overall": bson.A{
				bson.M{"$group": bson.M{
					"_id":     nil,
					"scored":  bson.M{"$sum": 1},
					"average": bson.M{"$avg": "$scoring.percentage"},
					"passed":  bson.M{"$sum": bson.M{"$cond": bson.A{"$passed", 1, 0}}},
				}},
			},
			"compliance": bson.A{
				bson.M{"$group": bson.M{
					"_id":   "$scoring.complianceLevel",
					"count": bson.M{"$sum": 1},
				}},
			},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate score stats: %v", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Overall    []bson.M `bson:"overall"`
		Compliance []bson.M `bson:"compliance"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode score stats: %v", err)
	}

	stats := &models.ScoreStats{ComplianceCounts: map[models.ComplianceLevel]int64{}}
	if len(rows) == 0 {
		return stats, nil
	}
	if len(rows[0].Overall) > 0 {
		o := rows[0].Overall[0]
		stats.Scored = cast.ToInt64(o["scored"])
		stats.AveragePercentage = cast.ToFloat64(o["average"])
		stats.Passed = cast.ToInt64(o["passed"])
	}
	for _, row := range rows[0].Compliance {
		stats.ComplianceCounts[models.ComplianceLevel(cast.ToString(row["_id"]))] = cast.ToInt64(row["count"])
	}
	return stats, nil
}
