package service_test

import (
	"context"
	"testing"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/testutil"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/version"
)

// TestSystemService tests health and version reporting.
//
// WHY: Operators rely on these endpoints to tell whether the schema caught up
// with the binary after a deploy.
func TestSystemService(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)

		// Execute
		err := svc.CheckHealth()

		// Assert
		if err != nil {
			t.Errorf("CheckHealth() returned unexpected error: %v", err)
		}
	})

	t.Run("closed database is unhealthy", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)
		db.Close()

		// Execute
		err := svc.CheckHealth()

		// Assert
		if err == nil {
			t.Error("Expected error from closed database")
		}
	})

	t.Run("reports migrated schema", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)

		// Execute
		info, err := svc.GetVersionInfo(context.Background())

		// Assert
		if err != nil {
			t.Fatalf("GetVersionInfo() returned unexpected error: %v", err)
		}
		if info.AppVersion != version.Version {
			t.Errorf("Expected app version %s, got %s", version.Version, info.AppVersion)
		}
		if info.DbVersion != "1" {
			t.Errorf("Expected schema version 1, got %s", info.DbVersion)
		}
		if info.MigrationNeeded || info.MigrationMessage != nil {
			t.Error("Expected no pending migration")
		}
		if !info.Features["quotes"] {
			t.Errorf("Expected quotes feature, got %v", info.Features)
		}
	})
}
