package jobs_test

import (
	"context"
	"errors"
	"testing"

	"lathe/internal/jobs"
	"lathe/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record, err := store.Insert(ctx, "tr-123", 1, "Bracket")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if record.ID == 0 {
		t.Fatal("expected record ID to be assigned")
	}
	if record.Status != jobs.StatusPending {
		t.Fatalf("new record status = %q, want pending", record.Status)
	}
	if record.TranslationID != "tr-123" || record.Generation != 1 || record.Label != "Bracket" {
		t.Fatalf("unexpected record fields: %#v", record)
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record, err := store.Insert(ctx, "tr-1", 1, "Plate")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	fetched, err := reopened.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID after reopen failed: %v", err)
	}
	if fetched.Label != "Plate" {
		t.Fatalf("unexpected record after reopen: %#v", fetched)
	}
}

func TestStatusTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	completed, err := store.Insert(ctx, "tr-a", 1, "A")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	failed, err := store.Insert(ctx, "tr-b", 2, "B")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	superseded, err := store.Insert(ctx, "tr-c", 2, "C")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := store.MarkComplete(ctx, completed.ID); err != nil {
		t.Fatalf("MarkComplete failed: %v", err)
	}
	if err := store.MarkFailed(ctx, failed.ID, "geometry too complex"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	if err := store.MarkSuperseded(ctx, superseded.ID); err != nil {
		t.Fatalf("MarkSuperseded failed: %v", err)
	}

	checks := []struct {
		id      int64
		status  jobs.Status
		message string
	}{
		{completed.ID, jobs.StatusComplete, ""},
		{failed.ID, jobs.StatusFailed, "geometry too complex"},
		{superseded.ID, jobs.StatusSuperseded, ""},
	}
	for _, check := range checks {
		record, err := store.GetByID(ctx, check.id)
		if err != nil {
			t.Fatalf("GetByID(%d) failed: %v", check.id, err)
		}
		if record.Status != check.status {
			t.Errorf("job %d status = %q, want %q", check.id, record.Status, check.status)
		}
		if record.ErrorMessage != check.message {
			t.Errorf("job %d error = %q, want %q", check.id, record.ErrorMessage, check.message)
		}
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, label := range []string{"first", "second", "third"} {
		if _, err := store.Insert(ctx, "tr-"+label, 1, label); err != nil {
			t.Fatalf("Insert(%s) failed: %v", label, err)
		}
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("List returned %d records, want 3", len(records))
	}
	if records[0].Label != "third" || records[2].Label != "first" {
		t.Errorf("unexpected ordering: %q, %q, %q", records[0].Label, records[1].Label, records[2].Label)
	}
}

func TestMissingJobReturnsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.GetByID(ctx, 999); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("GetByID error = %v, want ErrNotFound", err)
	}
	if err := store.MarkComplete(ctx, 999); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("MarkComplete error = %v, want ErrNotFound", err)
	}
}
