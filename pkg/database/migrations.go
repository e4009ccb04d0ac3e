package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique and query indexes the services rely on.
// The unique partial indexes back the one-driver-per-user and unique
// NID/license invariants at the storage layer.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, userIndexes); err != nil {
		return err
	}

	driverIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "nid_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "license_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "driver_status", Value: 1}},
		},
	}
	if _, err := db.Collection("drivers").Indexes().CreateMany(ctx, driverIndexes); err != nil {
		return err
	}

	rideIndexes := []mongo.IndexModel{
		// One active ride per rider and per driver, enforced by the storage
		// layer. The partial filters keep terminal rides out of the unique
		// constraint.
		{
			Keys: bson.D{{Key: "rider_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
				"status": bson.M{"$in": []string{"REQUESTED", "ACCEPTED", "IN_TRANSIT"}},
			}),
		},
		{
			Keys: bson.D{{Key: "driver_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
				"status": bson.M{"$in": []string{"ACCEPTED", "PICKED_UP", "IN_TRANSIT"}},
			}),
		},
		{
			Keys: bson.D{{Key: "rider_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "driver_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	if _, err := db.Collection("rides").Indexes().CreateMany(ctx, rideIndexes); err != nil {
		return err
	}

	return nil
}
