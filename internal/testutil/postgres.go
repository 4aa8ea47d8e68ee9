// Package testutil provides test helpers, including database container
// management for repository integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lorencia/mmoserver/internal/config"
	"github.com/lorencia/mmoserver/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	pc := &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pc
}

// ApplyMigrations runs the schema creation SQL directly for tests.
// This avoids requiring the migrate tool in the test environment.
//
// Precondition: Pool must be connected.
// Postcondition: The accounts, characters, and monster_templates tables exist,
// and the standard monster templates are seeded.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	schema := `
		CREATE TABLE IF NOT EXISTS accounts (
			id            BIGSERIAL    PRIMARY KEY,
			username      VARCHAR(64)  NOT NULL UNIQUE,
			password_hash TEXT         NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		INSERT INTO accounts (username, password_hash) VALUES ('world', '*')
			ON CONFLICT (username) DO NOTHING;

		CREATE TABLE IF NOT EXISTS characters (
			id         BIGSERIAL        PRIMARY KEY,
			account_id BIGINT           NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
			name       VARCHAR(32)      NOT NULL UNIQUE,
			class      VARCHAR(32)      NOT NULL,
			level      INTEGER          NOT NULL DEFAULT 1,
			experience INTEGER          NOT NULL DEFAULT 0,
			hp         INTEGER          NOT NULL,
			max_hp     INTEGER          NOT NULL,
			mp         INTEGER          NOT NULL,
			max_mp     INTEGER          NOT NULL,
			attack     INTEGER          NOT NULL,
			defense    INTEGER          NOT NULL,
			pos_x      DOUBLE PRECISION NOT NULL DEFAULT 0,
			pos_y      DOUBLE PRECISION NOT NULL DEFAULT 0,
			pos_z      DOUBLE PRECISION NOT NULL DEFAULT 0,
			map        VARCHAR(64)      NOT NULL,
			created_at TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_characters_account_id ON characters (account_id);

		CREATE TABLE IF NOT EXISTS monster_templates (
			id           BIGSERIAL        PRIMARY KEY,
			name         VARCHAR(64)      NOT NULL UNIQUE,
			level        INTEGER          NOT NULL,
			hp           INTEGER          NOT NULL,
			attack       INTEGER          NOT NULL,
			defense      INTEGER          NOT NULL,
			xp_reward    INTEGER          NOT NULL,
			move_speed   DOUBLE PRECISION NOT NULL,
			attack_speed DOUBLE PRECISION NOT NULL
		);

		INSERT INTO monster_templates (name, level, hp, attack, defense, xp_reward, move_speed, attack_speed)
		VALUES
			('Slime', 1, 50, 5, 2, 10, 0.8, 1.5),
			('Wolf', 5, 120, 15, 5, 50, 1.2, 1.0),
			('Orc', 10, 250, 30, 10, 100, 1.0, 0.8)
		ON CONFLICT (name) DO NOTHING;
	`

	_, err := pc.RawPool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// NewPool starts a migrated PostgreSQL container and returns its raw pool.
// Cleanup is registered on t.
//
// Precondition: Docker must be available.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.RawPool
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.Config.User, pc.Config.Password,
		pc.Config.Host, pc.Config.Port,
		pc.Config.Name, pc.Config.SSLMode,
	)
}
