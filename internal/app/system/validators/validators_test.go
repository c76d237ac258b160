package validators

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/store/audit"
	"github.com/dalemusser/gestaoalimentar/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := EnsureAll(ctx, db, zap.NewNop()); err != nil {
			t.Fatalf("EnsureAll() run %d error = %v", i+1, err)
		}
	}

	exists, err := collectionExists(ctx, db, audit.Collection)
	if err != nil {
		t.Fatalf("collectionExists: %v", err)
	}
	if !exists {
		t.Fatalf("%s should exist after EnsureAll", audit.Collection)
	}
}

func TestEnsureAll_AuditValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	store := audit.New(db)
	good := audit.Event{
		CreatedAt: time.Now().UTC(),
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		IP:        "10.0.0.1",
		Success:   true,
	}
	if err := store.Log(ctx, good); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	_, err := db.Collection(audit.Collection).InsertOne(ctx, bson.M{"category": "billing"})
	if err == nil {
		t.Skip("server accepted the document; validators unsupported here")
	}
}

func TestEnsureCollection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := ensureCollection(ctx, db, "scratch")
	if err != nil || !created {
		t.Fatalf("first ensureCollection = (%v, %v), want (true, nil)", created, err)
	}
	created, err = ensureCollection(ctx, db, "scratch")
	if err != nil || created {
		t.Fatalf("second ensureCollection = (%v, %v), want (false, nil)", created, err)
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(error) bool
		err  error
		want bool
	}{
		{"exists nil", isNamespaceExists, nil, false},
		{"exists message", isNamespaceExists, errors.New("Collection already exists"), true},
		{"exists code 48", isNamespaceExists, mongo.CommandError{Code: 48}, true},
		{"exists other", isNamespaceExists, errors.New("boom"), false},
		{"no such command code 59", isUnsupported, mongo.CommandError{Code: 59}, true},
		{"no such command message", isUnsupported, errors.New("no such command: collMod"), true},
		{"not implemented code 115", isUnsupported, mongo.CommandError{Code: 115}, true},
		{"not supported message", isUnsupported, mongo.CommandError{Message: "Feature not supported"}, true},
		{"unsupported other", isUnsupported, errors.New("boom"), false},
		{"unsupported nil", isUnsupported, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuditSchema(t *testing.T) {
	js, ok := auditSchema()["$jsonSchema"].(bson.M)
	if !ok {
		t.Fatal("auditSchema should carry a $jsonSchema document")
	}
	required, _ := js["required"].(bson.A)
	want := map[string]bool{"created_at": true, "category": true, "event_type": true, "ip": true, "success": true}
	if len(required) != len(want) {
		t.Fatalf("required = %v", required)
	}
	for _, f := range required {
		if !want[f.(string)] {
			t.Errorf("unexpected required field %v", f)
		}
	}
}
