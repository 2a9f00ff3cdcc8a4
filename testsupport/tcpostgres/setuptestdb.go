//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/racepace/pkg/db/migrate"
	database "github.com/mpapenbr/racepace/pkg/db/postgres"
)

// SetupTestDB creates a pg connection pool for the racepace test database
// running in a testcontainer.
func SetupTestDB() *pgxpool.Pool {
	ctx := context.Background()
	container, err := StartContainer(ctx)
	if err != nil {
		log.Fatal(err)
	}
	dbURL, err := container.ConnectionURL(ctx)
	if err != nil {
		log.Fatal(err)
	}
	return setupPool(ctx, dbURL)
}

// SetupExternalTestDB uses the database referenced by TESTDB_URL.
func SetupExternalTestDB() *pgxpool.Pool {
	return setupPool(context.Background(), os.Getenv("TESTDB_URL"))
}

func setupPool(ctx context.Context, dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDB(dbURL); err != nil {
		log.Fatal(err)
	}
	pool, err := database.InitWithURL(ctx, dbURL)
	if err != nil {
		log.Fatal(err)
	}
	return pool
}

func ClearAnalysisTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from analysis")
}

// ClearSessionTables removes all sessions, dependent rows are removed by cascade.
func ClearSessionTables(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from session")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearAnalysisTable(pool)
	ClearSessionTables(pool)
}
