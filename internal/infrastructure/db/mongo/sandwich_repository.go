package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
	"github.com/sandwichlab/sandwich-api/internal/core/ports"
)

const (
	collectionSandwiches = "sandwiches"
	collectionRatings    = "ratings"
)

type SandwichRepository struct {
	sandwiches *mongo.Collection
	ratings    *mongo.Collection
	client     *mongo.Client
}

func NewSandwichRepository(db *mongo.Database) *SandwichRepository {
	return &SandwichRepository{
		sandwiches: db.Collection(collectionSandwiches),
		ratings:    db.Collection(collectionRatings),
		client:     db.Client(),
	}
}

type mongoSandwich struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	Type         string             `bson:"type"`
	Images       []string           `bson:"images"`
	Ingredients  []string           `bson:"ingredients,omitempty"`
	Price        *float64           `bson:"price,omitempty"`
	UserID       string             `bson:"user_id"`
	RestaurantID string             `bson:"restaurant_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type mongoRating struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Overall      float64            `bson:"overall"`
	Taste        float64            `bson:"taste"`
	Texture      float64            `bson:"texture"`
	Presentation float64            `bson:"presentation"`
	Review       string             `bson:"review,omitempty"`
	SandwichID   string             `bson:"sandwich_id"`
	UserID       string             `bson:"user_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// CreateWithRating inserts the sandwich and its rating inside one MongoDB
// transaction, so readers never observe a sandwich without its initial
// rating. Generated ids are written back onto the domain structs.
func (r *SandwichRepository) CreateWithRating(ctx context.Context, s *domain.Sandwich, rating *domain.Rating) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return storageErr("start session", err)
	}
	defer session.EndSession(ctx)

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = now
	}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		sandwichDoc := mongoSandwich{
			Title:        s.Title,
			Description:  s.Description,
			Type:         string(s.Type),
			Images:       s.Images,
			Ingredients:  s.Ingredients,
			Price:        s.Price,
			UserID:       s.UserID,
			RestaurantID: s.RestaurantID,
			CreatedAt:    s.CreatedAt,
		}
		res, err := r.sandwiches.InsertOne(sc, sandwichDoc)
		if err != nil {
			return nil, err
		}
		sandwichID := res.InsertedID.(primitive.ObjectID)

		ratingDoc := mongoRating{
			Overall:      rating.Overall,
			Taste:        rating.Taste,
			Texture:      rating.Texture,
			Presentation: rating.Presentation,
			Review:       rating.Review,
			SandwichID:   sandwichID.Hex(),
			UserID:       rating.UserID,
			CreatedAt:    rating.CreatedAt,
		}
		ratingRes, err := r.ratings.InsertOne(sc, ratingDoc)
		if err != nil {
			return nil, err
		}

		s.ID = sandwichID.Hex()
		rating.SandwichID = s.ID
		rating.ID = ratingRes.InsertedID.(primitive.ObjectID).Hex()
		return nil, nil
	})
	if err != nil {
		return storageErr("create sandwich with rating", err)
	}
	return nil
}

func (r *SandwichRepository) FindByID(ctx context.Context, id string) (*domain.Sandwich, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSandwichNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ms mongoSandwich
	if err := r.sandwiches.FindOne(ctx, bson.M{"_id": oid}).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSandwichNotFound
		}
		return nil, storageErr("find sandwich", err)
	}
	return ms.toDomain(), nil
}

// List returns sandwiches matching filter, ordered by creation time. The
// text query is a case-insensitive substring match on title or description.
func (r *SandwichRepository) List(ctx context.Context, filter ports.SandwichFilter) ([]*domain.Sandwich, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}
	if filter.Type != "" {
		query["type"] = string(filter.Type)
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}

	direction := -1
	if filter.Oldest {
		direction = 1
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: direction},
		{Key: "_id", Value: direction},
	})

	cur, err := r.sandwiches.Find(ctx, query, opts)
	if err != nil {
		return nil, storageErr("list sandwiches", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Sandwich
	for cur.Next(ctx) {
		var ms mongoSandwich
		if err := cur.Decode(&ms); err != nil {
			return nil, storageErr("decode sandwich", err)
		}
		out = append(out, ms.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, storageErr("iterate sandwiches", err)
	}
	return out, nil
}

// RatingsBySandwichIDs fetches every rating for the given sandwiches in one
// query, keyed by sandwich id.
func (r *SandwichRepository) RatingsBySandwichIDs(ctx context.Context, ids []string) (map[string][]domain.Rating, error) {
	ratings := make(map[string][]domain.Rating, len(ids))
	if len(ids) == 0 {
		return ratings, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.ratings.Find(ctx, bson.M{"sandwich_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storageErr("find ratings", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var mr mongoRating
		if err := cur.Decode(&mr); err != nil {
			return nil, storageErr("decode rating", err)
		}
		ratings[mr.SandwichID] = append(ratings[mr.SandwichID], mr.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, storageErr("iterate ratings", err)
	}
	return ratings, nil
}

// EnsureIndexes creates the indexes backing discovery queries and rating
// aggregation.
func (r *SandwichRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sandwichIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}
	if _, err := r.sandwiches.Indexes().CreateMany(ctx, sandwichIndexes); err != nil {
		return err
	}

	ratingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sandwich_id", Value: 1}}},
	}
	_, err := r.ratings.Indexes().CreateMany(ctx, ratingIndexes)
	return err
}

func (ms mongoSandwich) toDomain() *domain.Sandwich {
	return &domain.Sandwich{
		ID:           ms.ID.Hex(),
		Title:        ms.Title,
		Description:  ms.Description,
		Type:         domain.SandwichType(ms.Type),
		Images:       ms.Images,
		Ingredients:  ms.Ingredients,
		Price:        ms.Price,
		UserID:       ms.UserID,
		RestaurantID: ms.RestaurantID,
		CreatedAt:    ms.CreatedAt,
	}
}

func (mr mongoRating) toDomain() domain.Rating {
	return domain.Rating{
		ID:           mr.ID.Hex(),
		Overall:      mr.Overall,
		Taste:        mr.Taste,
		Texture:      mr.Texture,
		Presentation: mr.Presentation,
		Review:       mr.Review,
		SandwichID:   mr.SandwichID,
		UserID:       mr.UserID,
		CreatedAt:    mr.CreatedAt,
	}
}
