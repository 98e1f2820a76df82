package mongodb

import (
	"testing"
	"time"

	"github.com/ogurasousui/employee-directory/internal/platform/config"
)

func TestBuildClientOptions(t *testing.T) {
	t.Parallel()

	opts, err := BuildClientOptions(config.MongoDBConfig{
		URI:            "mongodb://localhost:27017/?maxPoolSize=25",
		Database:       "directory",
		Collection:     "employees",
		ConnectTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("BuildClientOptions returned error: %v", err)
	}

	if opts.AppName == nil || *opts.AppName != appName {
		t.Errorf("unexpected app name: %v", opts.AppName)
	}
	if opts.ConnectTimeout == nil || *opts.ConnectTimeout != 3*time.Second {
		t.Errorf("unexpected connect timeout: %v", opts.ConnectTimeout)
	}
	if opts.MaxPoolSize == nil || *opts.MaxPoolSize != 25 {
		t.Errorf("pool size from URI was not applied: %v", opts.MaxPoolSize)
	}
	if len(opts.Hosts) != 1 || opts.Hosts[0] != "localhost:27017" {
		t.Errorf("unexpected hosts: %v", opts.Hosts)
	}
}

func TestBuildClientOptions_InvalidURI(t *testing.T) {
	t.Parallel()

	if _, err := BuildClientOptions(config.MongoDBConfig{URI: "postgres://nope"}); err == nil {
		t.Fatal("expected error for non-mongodb URI")
	}
}
