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

const (
	collectionLikes    = "likes"
	collectionComments = "comments"
)

type LikeRepository struct {
	col *mongo.Collection
}

func NewLikeRepository(db *mongo.Database) *LikeRepository {
	return &LikeRepository{col: db.Collection(collectionLikes)}
}

type mongoLike struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	SandwichID string             `bson:"sandwich_id"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (r *LikeRepository) FindLike(ctx context.Context, userID, sandwichID string) (*domain.Like, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ml mongoLike
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "sandwich_id": sandwichID}).Decode(&ml)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLikeNotFound
		}
		return nil, storageErr("find like", err)
	}
	return ml.toDomain(), nil
}

// CreateLike inserts a like. A duplicate key means another request of the
// same user won the race; the existing like is returned instead of an error.
func (r *LikeRepository) CreateLike(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoLike{
		UserID:     like.UserID,
		SandwichID: like.SandwichID,
		CreatedAt:  like.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.FindLike(ctx, like.UserID, like.SandwichID)
		}
		return nil, storageErr("insert like", err)
	}

	created := *like
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	created.CreatedAt = doc.CreatedAt
	return &created, nil
}

func (r *LikeRepository) DeleteLike(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrLikeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storageErr("delete like", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrLikeNotFound
	}
	return nil
}

func (r *LikeRepository) CountLikes(ctx context.Context, sandwichID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	count, err := r.col.CountDocuments(ctx, bson.M{"sandwich_id": sandwichID})
	if err != nil {
		return 0, storageErr("count likes", err)
	}
	return count, nil
}

// EnsureIndexes creates the unique (user, sandwich) index that makes the like
// toggle race-safe.
func (r *LikeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "sandwich_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "sandwich_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (ml mongoLike) toDomain() *domain.Like {
	return &domain.Like{
		ID:         ml.ID.Hex(),
		UserID:     ml.UserID,
		SandwichID: ml.SandwichID,
		CreatedAt:  ml.CreatedAt,
	}
}

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(collectionComments)}
}

type mongoComment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Content    string             `bson:"content"`
	SandwichID string             `bson:"sandwich_id"`
	UserID     string             `bson:"user_id"`
	ParentID   string             `bson:"parent_id,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (r *CommentRepository) CreateComment(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoComment{
		Content:    c.Content,
		SandwichID: c.SandwichID,
		UserID:     c.UserID,
		ParentID:   c.ParentID,
		CreatedAt:  c.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, storageErr("insert comment", err)
	}

	created := *c
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	created.CreatedAt = doc.CreatedAt
	return &created, nil
}

func (r *CommentRepository) FindCommentByID(ctx context.Context, id string) (*domain.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCommentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoComment
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, storageErr("find comment", err)
	}
	return mc.toDomain(), nil
}

// CommentsBySandwich returns every comment on the sandwich; the service
// assembles them into threads.
func (r *CommentRepository) CommentsBySandwich(ctx context.Context, sandwichID string) ([]domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"sandwich_id": sandwichID})
	if err != nil {
		return nil, storageErr("find comments", err)
	}
	defer cur.Close(ctx)

	var out []domain.Comment
	for cur.Next(ctx) {
		var mc mongoComment
		if err := cur.Decode(&mc); err != nil {
			return nil, storageErr("decode comment", err)
		}
		out = append(out, *mc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, storageErr("iterate comments", err)
	}
	return out, nil
}

func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sandwich_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (mc mongoComment) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:         mc.ID.Hex(),
		Content:    mc.Content,
		SandwichID: mc.SandwichID,
		UserID:     mc.UserID,
		ParentID:   mc.ParentID,
		CreatedAt:  mc.CreatedAt,
	}
}
