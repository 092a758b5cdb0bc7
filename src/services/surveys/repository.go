package surveys

import (
	"context"
	"errors"
	"fmt"

	"Backend-GACP-Survey/src/database"
	"Backend-GACP-Survey/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository ที่เก็บแบบประเมิน
type Repository interface {
	Create(ctx context.Context, survey *models.Survey) error
	FindByID(ctx context.Context, surveyID string) (*models.Survey, error)
	List(ctx context.Context, params models.PaginationParams) ([]models.Survey, int64, error)
	// Update บันทึกเมื่อ revision ตรงกับที่อ่านมาเท่านั้น แล้วเพิ่ม revision ขึ้นหนึ่ง
	Update(ctx context.Context, survey *models.Survey) error
}

var sortableFields = []string{"createdAt", "lastModified", "title", "status"}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(database.SurveyCollection)}
}

func (r *mongoRepository) Create(ctx context.Context, survey *models.Survey) error {
	_, err := r.coll.InsertOne(ctx, survey)
	if mongo.IsDuplicateKeyError(err) {
		return models.NewValidationError("รหัสแบบประเมินซ้ำ: " + survey.SurveyID)
	}
	return err
}

func (r *mongoRepository) FindByID(ctx context.Context, surveyID string) (*models.Survey, error) {
	var survey models.Survey
	err := r.coll.FindOne(ctx, bson.M{"surveyId": surveyID}).Decode(&survey)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("survey %s: %w", surveyID, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *mongoRepository) List(ctx context.Context, params models.PaginationParams) ([]models.Survey, int64, error) {
	params.Normalize(sortableFields...)
	filter := bson.M{}
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
		SetProjection(bson.M{"sections": 0})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	surveys := []models.Survey{}
	if err := cursor.All(ctx, &surveys); err != nil {
		return nil, 0, err
	}
	return surveys, total, nil
}

func (r *mongoRepository) Update(ctx context.Context, survey *models.Survey) error {
	expected := survey.Revision
	survey.Revision = expected + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"surveyId": survey.SurveyID, "revision": expected}, survey)
	if err != nil {
		survey.Revision = expected
		return err
	}
	if res.MatchedCount == 0 {
		survey.Revision = expected
		n, err := r.coll.CountDocuments(ctx, bson.M{"surveyId": survey.SurveyID})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("survey %s: %w", survey.SurveyID, models.ErrNotFound)
		}
		return models.ErrRevisionConflict
	}
	return nil
}
