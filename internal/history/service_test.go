package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/clipmark/clipmark-agent/internal/db"
)

func setupTestService(t *testing.T) (*Service, *SQLiteRepository) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := NewRepository(database.Conn())
	return NewService(repo, nil), repo
}

func TestService_BeginSucceed(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	id, err := svc.Begin(ctx, "abcdefghijk", "https://youtu.be/abcdefghijk", 10, 20)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	e, err := svc.Get(ctx, id)
	if err != nil || e == nil {
		t.Fatalf("Get() = %v, %v", e, err)
	}
	if e.Status != StatusPending {
		t.Fatalf("status = %s, want pending", e.Status)
	}

	if err := svc.Succeed(ctx, id, "/files/clip123.mp4", "http://origin/files/clip123.mp4"); err != nil {
		t.Fatalf("Succeed() error = %v", err)
	}

	e, _ = svc.Get(ctx, id)
	if e.Status != StatusSucceeded {
		t.Errorf("status = %s, want succeeded", e.Status)
	}
	if e.ResultPath != "/files/clip123.mp4" || e.DownloadURL != "http://origin/files/clip123.mp4" {
		t.Errorf("result = %q / %q", e.ResultPath, e.DownloadURL)
	}
	if e.StartS != 10 || e.EndS != 20 {
		t.Errorf("range = %v-%v, want 10-20", e.StartS, e.EndS)
	}
}

func TestService_Fail(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	id, _ := svc.Begin(ctx, "abcdefghijk", "https://youtu.be/abcdefghijk", 0, 5)
	if err := svc.Fail(ctx, id, errors.New("HTTP 502")); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	e, _ := svc.Get(ctx, id)
	if e.Status != StatusFailed || e.Error != "HTTP 502" {
		t.Fatalf("export = %+v", e)
	}
}

func TestService_Supersede(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	id, _ := svc.Begin(ctx, "abcdefghijk", "https://youtu.be/abcdefghijk", 0, 5)
	svc.Supersede(ctx, id, "/files/old.mp4", "http://origin/files/old.mp4")

	e, _ := svc.Get(ctx, id)
	if e.Status != StatusSuperseded || e.ResultPath != "/files/old.mp4" {
		t.Fatalf("export = %+v", e)
	}
}

func TestService_RecentNewestFirst(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	first, _ := svc.Begin(ctx, "aaaaaaaaaaa", "https://youtu.be/aaaaaaaaaaa", 0, 1)
	second, _ := svc.Begin(ctx, "bbbbbbbbbbb", "https://youtu.be/bbbbbbbbbbb", 0, 1)

	exports, err := svc.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(exports) != 2 {
		t.Fatalf("len = %d, want 2", len(exports))
	}
	if exports[0].ID != second || exports[1].ID != first {
		t.Fatalf("order = %s, %s; want newest first", exports[0].ID, exports[1].ID)
	}
}

func TestService_GetMissing(t *testing.T) {
	svc, _ := setupTestService(t)
	e, err := svc.Get(context.Background(), "missing")
	if err != nil || e != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", e, err)
	}
}

func TestRepository_Config(t *testing.T) {
	_, repo := setupTestService(t)
	ctx := context.Background()

	v, err := repo.GetConfig(ctx, "auth_token")
	if err != nil || v != "" {
		t.Fatalf("GetConfig(unset) = %q, %v", v, err)
	}

	repo.SetConfig(ctx, "auth_token", "one")
	repo.SetConfig(ctx, "auth_token", "two")

	v, _ = repo.GetConfig(ctx, "auth_token")
	if v != "two" {
		t.Fatalf("GetConfig() = %q, want two", v)
	}
}
