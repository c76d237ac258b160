// Package testutil provides shared helpers for tests: a disposable Mongo
// database, a fake backend server, request builders and template boot.
package testutil

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	// DefaultTestDBURI is used unless GESTAO_TEST_MONGO_URI is set.
	DefaultTestDBURI = "mongodb://localhost:27017"
	// TestDBName prefixes every per-test database.
	TestDBName = "gestao_test"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

func testDBURI() string {
	if v := os.Getenv("GESTAO_TEST_MONGO_URI"); v != "" {
		return v
	}
	return DefaultTestDBURI
}

// getClient returns a client shared by all tests in the process.
func getClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(testDBURI()).
			SetMaxPoolSize(50).
			SetConnectTimeout(3 * time.Second).
			SetServerSelectionTimeout(3 * time.Second)

		client, clientErr = mongo.Connect(ctx, opts)
		if clientErr != nil {
			return
		}
		clientErr = client.Ping(ctx, nil)
	})
	return client, clientErr
}

// SetupTestDB returns an empty database with indexes in place, unique to
// the calling test and dropped on cleanup. The test is skipped when Mongo
// is not reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	c, err := getClient()
	if err != nil {
		t.Skipf("mongo not reachable at %s: %v", testDBURI(), err)
	}

	db := c.Database(TestDBName + "_" + dbSuffix(t.Name()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Drop(ctx); err != nil {
		t.Fatalf("failed to drop test database: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop test database on cleanup: %v", err)
		}
	})

	return db
}

// dbSuffix maps a test name onto database-safe characters. Mongo caps
// database names at 63 bytes and the prefix takes 11.
func dbSuffix(name string) string {
	const maxLen = 50
	if len(name) > maxLen {
		name = name[:maxLen]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, name)
}

// TestContext returns a context with a generous timeout for test operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
