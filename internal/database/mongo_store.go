package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"novaflix/models"
)

const usersCollection = "users"

// MongoStore keeps one document per account in the users collection.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewMongoStore connects to uri and ensures the unique email index exists.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	users := client.Database(dbName).Collection(usersCollection)
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create email index: %w", err)
	}

	log.Printf("[database] connected to mongo database=%s", dbName)
	return &MongoStore{client: client, users: users}, nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (models.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (models.Account, error) {
	var doc models.AccountStorage
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("find account: %w", err)
	}
	return doc.ToAccount(), nil
}

func (s *MongoStore) Insert(ctx context.Context, account models.Account) error {
	if _, err := s.users.InsertOne(ctx, account.ToStorage()); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// UpdateFields applies a single-document $set so concurrent writers touching
// different fields do not clobber each other.
func (s *MongoStore) UpdateFields(ctx context.Context, id string, update models.AccountUpdate) (models.Account, error) {
	set := bson.D{}
	if update.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *update.Name})
	}
	if update.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *update.Email})
	}
	if update.Avatar != nil {
		set = append(set, bson.E{Key: "avatar", Value: *update.Avatar})
	}
	if update.Watchlist != nil {
		watchlist := *update.Watchlist
		if watchlist == nil {
			watchlist = []int64{}
		}
		set = append(set, bson.E{Key: "watchlist", Value: watchlist})
	}
	if !update.UpdatedAt.IsZero() {
		set = append(set, bson.E{Key: "updated_at", Value: update.UpdatedAt})
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.AccountStorage
	err := s.users.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Account{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return models.Account{}, ErrDuplicateEmail
		}
		return models.Account{}, fmt.Errorf("update account: %w", err)
	}
	return doc.ToAccount(), nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
