package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
)

const collectionRestaurants = "restaurants"

type RestaurantRepository struct {
	col *mongo.Collection
}

func NewRestaurantRepository(db *mongo.Database) *RestaurantRepository {
	return &RestaurantRepository{col: db.Collection(collectionRestaurants)}
}

type mongoRestaurant struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Address   string             `bson:"address,omitempty"`
	City      string             `bson:"city,omitempty"`
	State     string             `bson:"state,omitempty"`
	Country   string             `bson:"country,omitempty"`
	Website   string             `bson:"website,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

// Create inserts a restaurant. The unique index on name turns a concurrent
// insert of the same restaurant into domain.ErrRestaurantExists.
func (r *RestaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoRestaurant{
		Name:      restaurant.Name,
		Address:   restaurant.Address,
		City:      restaurant.City,
		State:     restaurant.State,
		Country:   restaurant.Country,
		Website:   restaurant.Website,
		CreatedAt: restaurant.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRestaurantExists
		}
		return nil, storageErr("insert restaurant", err)
	}

	created := *restaurant
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	created.CreatedAt = doc.CreatedAt
	return &created, nil
}

func (r *RestaurantRepository) FindByName(ctx context.Context, name string) (*domain.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRestaurant
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRestaurantNotFound
		}
		return nil, storageErr("find restaurant", err)
	}
	return mr.toDomain(), nil
}

// NamesByIDs resolves restaurant ids to names in one query.
func (r *RestaurantRepository) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return names, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"name": 1})
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, storageErr("find restaurants", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var mr mongoRestaurant
		if err := cur.Decode(&mr); err != nil {
			return nil, storageErr("decode restaurant", err)
		}
		names[mr.ID.Hex()] = mr.Name
	}
	if err := cur.Err(); err != nil {
		return nil, storageErr("iterate restaurants", err)
	}
	return names, nil
}

// EnsureIndexes creates the unique name index the deduplicator relies on.
func (r *RestaurantRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (mr mongoRestaurant) toDomain() *domain.Restaurant {
	return &domain.Restaurant{
		ID:        mr.ID.Hex(),
		Name:      mr.Name,
		Address:   mr.Address,
		City:      mr.City,
		State:     mr.State,
		Country:   mr.Country,
		Website:   mr.Website,
		CreatedAt: mr.CreatedAt,
	}
}
