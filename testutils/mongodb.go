// Package testutils contains helpers shared by tests.
package testutils

import (
	"os"
	"testing"

	"go.viam.com/utils"
)

// MongoDBURIEnv names the environment variable holding the test database URI.
const MongoDBURIEnv = "MONGODB_TEST_URI"

// BackingMongoDBURI returns the URI of the MongoDB to test against. The test is skipped when
// none is configured.
func BackingMongoDBURI(t *testing.T) string {
	t.Helper()
	uri := os.Getenv(MongoDBURIEnv)
	if uri == "" {
		t.Skipf("%s not set", MongoDBURIEnv)
	}
	return uri
}

// NewMongoDBNamespace returns a new random namespace to use.
func NewMongoDBNamespace() (string, string) {
	return "laneplanner_test_" + utils.RandomAlphaString(5), utils.RandomAlphaString(5)
}
