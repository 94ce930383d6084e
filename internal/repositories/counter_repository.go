package repositories

import (
	"context"

	"github.com/anonto42/quartfeed/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository defines the interface for the page-hit counter
type CounterRepository interface {
	// Increment adds one hit and returns the new total.
	Increment(ctx context.Context) (int64, error)
}

// PostgresCounterRepository keeps the counter in the SQL counter table
type PostgresCounterRepository struct {
	db *gorm.DB
}

func NewPostgresCounterRepository(db *gorm.DB) *PostgresCounterRepository {
	return &PostgresCounterRepository{db: db}
}

func (r *PostgresCounterRepository) Increment(ctx context.Context) (int64, error) {
	var counter models.Counter
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Counter{ID: models.CounterID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Counter{}).
			Where("id = ?", models.CounterID).
			UpdateColumn("hits", gorm.Expr("hits + ?", 1)).Error; err != nil {
			return err
		}
		return tx.First(&counter, models.CounterID).Error
	})
	if err != nil {
		return 0, err
	}
	return counter.Hits, nil
}

// MongoCounterRepository keeps the counter in a MongoDB collection
type MongoCounterRepository struct {
	collection *mongo.Collection
}

// NewMongoCounterRepository creates a new MongoCounterRepository
func NewMongoCounterRepository(db *mongo.Database) *MongoCounterRepository {
	return &MongoCounterRepository{collection: db.Collection("counter")}
}

func (r *MongoCounterRepository) Increment(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter models.Counter
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": models.CounterID},
		bson.M{"$inc": bson.M{"hits": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Hits, nil
}
