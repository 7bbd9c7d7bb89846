package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
)

// ----- Fake blob store -----

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	putErr  error
	delErr  error
}

func newMemBlobs() *memBlobs { return &memBlobs{objects: map[string][]byte{}} }

func (b *memBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return b.putErr
	}
	b.objects[key] = data
	return nil
}

func (b *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[key], nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.delErr != nil {
		return b.delErr
	}
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func seedMessage(t *testing.T, db *gorm.DB, userID, recipient, content string, createdAt time.Time) *domain.Message {
	t.Helper()
	m, err := repo.CreateMessage(db, userID, recipient, content, false, nil)
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}
	if !createdAt.IsZero() {
		if err := db.Model(&domain.Message{}).Where("id = ?", m.ID).
			UpdateColumn("created_at", createdAt).Error; err != nil {
			t.Fatalf("backdate message: %v", err)
		}
		m.CreatedAt = createdAt
	}
	return m
}

func writeTempAudio(t *testing.T, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "voice.m4a")
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write temp audio: %v", err)
	}
	return p
}

// ----- Tests -----

func TestSend_Validation(t *testing.T) {
	svc := &MessageService{DB: newTestDB(t)}

	if _, err := svc.Send(context.Background(), "", "Mom", "hi"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.Send(context.Background(), "u1", "   ", "hi"); !errors.Is(err, ErrEmptyRecipient) {
		t.Fatalf("expected ErrEmptyRecipient, got %v", err)
	}
	if _, err := svc.Send(context.Background(), "u1", "Mom", "  \t "); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestSend_PersistsTextMessage(t *testing.T) {
	db := newTestDB(t)
	svc := &MessageService{DB: db}

	m, err := svc.Send(context.Background(), "u1", "  Mom  ", "  never said this  ")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if m.RecipientName != "Mom" || m.Content != "never said this" {
		t.Fatalf("trim not applied: %+v", m)
	}
	if m.IsVoice || m.AudioPath != nil {
		t.Fatalf("text message flagged as voice: %+v", m)
	}
}

func TestSendVoice_UploadThenRowThenTempCleanup(t *testing.T) {
	db := newTestDB(t)
	blobs := newMemBlobs()
	svc := &MessageService{DB: db, Blobs: blobs}

	audio := writeTempAudio(t, []byte("m4a-bytes"))
	m, err := svc.SendVoice(context.Background(), "u1", "Dad", audio)
	if err != nil {
		t.Fatalf("SendVoice error: %v", err)
	}
	if !m.IsVoice || m.AudioPath == nil {
		t.Fatalf("voice flags missing: %+v", m)
	}
	if !strings.HasPrefix(*m.AudioPath, "voiceMessages/u1/") || !strings.HasSuffix(*m.AudioPath, ".m4a") {
		t.Fatalf("unexpected voice key %q", *m.AudioPath)
	}
	if _, ok := blobs.objects[*m.AudioPath]; !ok {
		t.Fatalf("recording not uploaded under %q", *m.AudioPath)
	}
	if _, err := os.Stat(audio); !os.IsNotExist(err) {
		t.Fatalf("temp file should be removed, stat err = %v", err)
	}
}

func TestSendVoice_EmptyAudio(t *testing.T) {
	svc := &MessageService{DB: newTestDB(t), Blobs: newMemBlobs()}

	audio := writeTempAudio(t, nil)
	if _, err := svc.SendVoice(context.Background(), "u1", "Dad", audio); !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("expected ErrEmptyAudio, got %v", err)
	}
}

func TestSendVoice_FailedUploadLeavesNoRow(t *testing.T) {
	db := newTestDB(t)
	blobs := newMemBlobs()
	blobs.putErr = errors.New("bucket down")
	svc := &MessageService{DB: db, Blobs: blobs}

	audio := writeTempAudio(t, []byte("m4a-bytes"))
	if _, err := svc.SendVoice(context.Background(), "u1", "Dad", audio); err == nil {
		t.Fatalf("expected upload error")
	}
	msgs, err := repo.ListMessages(db, "u1")
	if err != nil || len(msgs) != 0 {
		t.Fatalf("failed upload must leave no row, got %d (%v)", len(msgs), err)
	}
}

func TestThreads_GroupingCasingAndOrder(t *testing.T) {
	db := newTestDB(t)
	svc := &MessageService{DB: db}

	now := time.Now().UTC()
	seedMessage(t, db, "u1", "mom", "one", now.Add(-3*time.Hour))
	seedMessage(t, db, "u1", "mom", "two", now.Add(-time.Hour))
	// exact-label grouping: "Mom" is a separate thread from "mom"
	seedMessage(t, db, "u1", "Mom", "other", now.Add(-2*time.Hour))
	seedMessage(t, db, "u1", "dad", "three", now.Add(-30*time.Minute))
	// another user's messages never leak in
	seedMessage(t, db, "u2", "mom", "not mine", now)

	threads, err := svc.Threads(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Threads error: %v", err)
	}
	if len(threads) != 3 {
		t.Fatalf("expected 3 threads, got %d", len(threads))
	}
	// newest thread first: dad (30m) > mom (1h) > Mom (2h)
	if threads[0].RecipientName != "dad" || threads[1].RecipientName != "mom" || threads[2].RecipientName != "Mom" {
		t.Fatalf("thread order wrong: %s %s %s",
			threads[0].RecipientName, threads[1].RecipientName, threads[2].RecipientName)
	}
	if threads[0].DisplayName != "Dad" {
		t.Fatalf("display name casing: got %q", threads[0].DisplayName)
	}
	// messages inside a thread are oldest first
	mom := threads[1]
	if len(mom.Messages) != 2 || mom.Messages[0].Content != "one" || mom.Messages[1].Content != "two" {
		t.Fatalf("mom thread messages wrong: %+v", mom.Messages)
	}
}

func TestThread_SingleRecipientAscending(t *testing.T) {
	db := newTestDB(t)
	svc := &MessageService{DB: db}

	now := time.Now().UTC()
	seedMessage(t, db, "u1", "mom", "late", now)
	seedMessage(t, db, "u1", "mom", "early", now.Add(-time.Hour))
	seedMessage(t, db, "u1", "dad", "noise", now)

	msgs, err := svc.Thread(context.Background(), "u1", "mom")
	if err != nil {
		t.Fatalf("Thread error: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "early" || msgs[1].Content != "late" {
		t.Fatalf("thread wrong: %+v", msgs)
	}
}

func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)
	msgs := []domain.Message{
		{ID: "a", CreatedAt: day1},
		{ID: "b", CreatedAt: day1.Add(4 * time.Hour)},
		{ID: "c", CreatedAt: day2},
	}

	groups := GroupByDay(msgs, time.UTC)
	if len(groups) != 2 {
		t.Fatalf("expected 2 day groups, got %d", len(groups))
	}
	if len(groups[0].Messages) != 2 || len(groups[1].Messages) != 1 {
		t.Fatalf("group sizes wrong: %d %d", len(groups[0].Messages), len(groups[1].Messages))
	}
	if !groups[0].Day.Equal(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("day bucket wrong: %v", groups[0].Day)
	}

	if got := GroupByDay(nil, time.UTC); len(got) != 0 {
		t.Fatalf("empty input should group to nothing, got %d", len(got))
	}
}

func TestDeleteThread_RowsFirstBlobsAfter(t *testing.T) {
	db := newTestDB(t)
	blobs := newMemBlobs()
	svc := &MessageService{DB: db, Blobs: blobs}

	audio := writeTempAudio(t, []byte("m4a-bytes"))
	voiced, err := svc.SendVoice(context.Background(), "u1", "mom", audio)
	if err != nil {
		t.Fatalf("SendVoice error: %v", err)
	}
	seedMessage(t, db, "u1", "mom", "text too", time.Time{})
	seedMessage(t, db, "u1", "dad", "keep me", time.Time{})

	if err := svc.DeleteThread(context.Background(), "u1", "mom"); err != nil {
		t.Fatalf("DeleteThread error: %v", err)
	}

	msgs, err := repo.ListMessages(db, "u1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].RecipientName != "dad" {
		t.Fatalf("only dad thread should remain: %+v", msgs)
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != *voiced.AudioPath {
		t.Fatalf("voice recording not cleaned up: %v", blobs.deleted)
	}
}

func TestDeleteThread_BlobFailureDoesNotFail(t *testing.T) {
	db := newTestDB(t)
	blobs := newMemBlobs()
	svc := &MessageService{DB: db, Blobs: blobs}

	audio := writeTempAudio(t, []byte("m4a-bytes"))
	if _, err := svc.SendVoice(context.Background(), "u1", "mom", audio); err != nil {
		t.Fatalf("SendVoice error: %v", err)
	}
	blobs.delErr = errors.New("bucket down")

	if err := svc.DeleteThread(context.Background(), "u1", "mom"); err != nil {
		t.Fatalf("blob cleanup failure must not fail the delete: %v", err)
	}
	msgs, err := repo.ListMessages(db, "u1")
	if err != nil || len(msgs) != 0 {
		t.Fatalf("rows must be gone regardless: %d (%v)", len(msgs), err)
	}
}

func TestDeleteMessage_SingleRowAndRecording(t *testing.T) {
	db := newTestDB(t)
	blobs := newMemBlobs()
	svc := &MessageService{DB: db, Blobs: blobs}

	audio := writeTempAudio(t, []byte("m4a-bytes"))
	voiced, err := svc.SendVoice(context.Background(), "u1", "mom", audio)
	if err != nil {
		t.Fatalf("SendVoice error: %v", err)
	}

	if err := svc.DeleteMessage(context.Background(), "u1", voiced.ID); err != nil {
		t.Fatalf("DeleteMessage error: %v", err)
	}
	if len(blobs.deleted) != 1 {
		t.Fatalf("recording not deleted: %v", blobs.deleted)
	}

	if err := svc.DeleteMessage(context.Background(), "u1", voiced.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestDeleteMessage_NotOwned(t *testing.T) {
	db := newTestDB(t)
	svc := &MessageService{DB: db}

	m := seedMessage(t, db, "owner", "mom", "private", time.Time{})
	if err := svc.DeleteMessage(context.Background(), "intruder", m.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound for foreign message, got %v", err)
	}
}
