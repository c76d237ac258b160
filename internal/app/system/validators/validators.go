// Package validators creates the collections this service writes to and
// attaches JSON-Schema validators where the server supports them.
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// collectionSpec is one collection and its optional validator.
type collectionSpec struct {
	name   string
	schema bson.M
}

func specs() []collectionSpec {
	return []collectionSpec{
		{name: audit.Collection, schema: auditSchema()},
	}
}

// EnsureAll creates missing collections and attaches their validators.
// Servers without collMod validators (some DocumentDB versions) get the
// collection only. Problems are collected so startup reports all of them.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string
	for _, s := range specs() {
		if err := ensureSpec(ctx, db, s, logger); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureSpec(ctx context.Context, db *mongo.Database, s collectionSpec, logger *zap.Logger) error {
	created, err := ensureCollection(ctx, db, s.name)
	if err != nil {
		return err
	}
	if created {
		logger.Info("created collection", zap.String("collection", s.name))
	}
	if s.schema == nil {
		return nil
	}

	err = setValidator(ctx, db, s.name, s.schema)
	switch {
	case err == nil:
		logger.Debug("validator ensured", zap.String("collection", s.name))
		return nil
	case isUnsupported(err):
		logger.Info("validator skipped (unsupported)", zap.String("collection", s.name))
		return nil
	default:
		return err
	}
}

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection reports created only when this call made the collection.
// A failed listing falls back to create, tolerating a concurrent creator.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	if exists, err := collectionExists(ctx, db, name); err == nil && exists {
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExists(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	return db.RunCommand(ctx, cmd).Err()
}

// commandError matches err against server error codes, then against
// phrases in the message (case-insensitive).
func commandError(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// NamespaceExists (48).
func isNamespaceExists(err error) bool {
	return commandError(err, []int32{48}, "already exists", "namespace exists")
}

// CommandNotFound (59) or CommandNotSupported (115).
func isUnsupported(err error) bool {
	return commandError(err, []int32{59, 115}, "no such command", "not implemented", "not supported")
}

// auditSchema mirrors audit.Event. Details stays open; its keys vary by
// event type.
func auditSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"created_at", "category", "event_type", "ip", "success"},
			"properties": bson.M{
				"created_at":     bson.M{"bsonType": "date"},
				"category":       bson.M{"enum": bson.A{audit.CategoryAuth}},
				"event_type":     bson.M{"bsonType": "string", "minLength": 1},
				"user_id":        bson.M{"bsonType": "string"},
				"ip":             bson.M{"bsonType": "string"},
				"user_agent":     bson.M{"bsonType": "string"},
				"request_id":     bson.M{"bsonType": "string"},
				"success":        bson.M{"bsonType": "bool"},
				"failure_reason": bson.M{"bsonType": "string"},
				"details":        bson.M{"bsonType": "object"},
			},
		},
	}
}
