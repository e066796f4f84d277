//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	msql "timekeeper/internal/adapter/mysql"
	"timekeeper/internal/adapter/system"
	"timekeeper/internal/domain"
	"timekeeper/internal/migrate"
	"timekeeper/internal/repository"
	"timekeeper/internal/session"
	"timekeeper/internal/usecase"
)

func TestTrackingOnMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "testdb",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "test",
			"MYSQL_PASSWORD":      "pass",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = mysqlC.Terminate(context.Background()) })

	host, err := mysqlC.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := mysqlC.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true", "test", "pass", host, port.Port(), "testdb")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := migrate.Run(ctx, dsn, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := msql.NewStore(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("mysql store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := system.Clock{}
	repo := repository.New(store, clock, system.UUIDSource{}, logger)
	register := session.NewRegister(repo, repo, clock, logger)
	engine := usecase.NewEngine(repo, register, clock, logger)

	owner := "e2e-user"
	project, err := repo.CreateProject(ctx, owner, domain.CreateProjectRequest{Name: "Client work"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	// Start, then start again: the first entry must be closed and only one
	// entry may remain open.
	first, err := engine.Start(ctx, owner, domain.CreateTimeEntryRequest{ProjectID: project.ID, Description: "morning"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := engine.Start(ctx, owner, domain.CreateTimeEntryRequest{ProjectID: project.ID, Description: "afternoon"})
	if err != nil {
		t.Fatalf("second start: %v", err)
	}

	closed, err := repo.GetTimeEntry(ctx, owner, first.ID)
	if err != nil {
		t.Fatalf("get first entry: %v", err)
	}
	if closed.EndTime == nil {
		t.Fatal("expected first entry closed by second start")
	}

	entries, err := repo.ListTimeEntries(ctx, owner)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	open := 0
	for _, e := range entries {
		if e.EndTime == nil {
			open++
		}
	}
	if open != 1 {
		t.Fatalf("expected exactly one open entry, got %d", open)
	}

	active, err := engine.Active(ctx, owner)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active == nil || active.EntryID != second.ID {
		t.Fatalf("expected pointer at second entry, got %+v", active)
	}

	// Stop twice: the second call is a no-op.
	if _, err := engine.Stop(ctx, owner); err != nil {
		t.Fatalf("stop: %v", err)
	}
	again, err := engine.Stop(ctx, owner)
	if err != nil {
		t.Fatalf("idle stop: %v", err)
	}
	if again != nil {
		t.Fatalf("expected nil on idle stop, got %+v", again)
	}

	// Verify the rows landed in the backing table: one project, two
	// entries, and no active-session pointer after the stop.
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_records").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 records (1 project + 2 entries), got %d", count)
	}

	ptr, err := repo.GetActiveSession(ctx, owner)
	if err != nil {
		t.Fatalf("get active session: %v", err)
	}
	if ptr != nil {
		t.Fatalf("expected no pointer after stop, got %+v", ptr)
	}
}
