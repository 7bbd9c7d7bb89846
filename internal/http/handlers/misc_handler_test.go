package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flyawayapp/go-journal-backend/internal/auth"
	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/http/middleware"
	"github.com/flyawayapp/go-journal-backend/internal/mindfulness"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
)

// ---------- Mood ----------

func TestSaveMood_BadJSON_Validation_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newAPI(t)
	r := gin.New()
	r.POST("/mood", h.SaveMood)

	if w := doJSON(t, r, http.MethodPost, "/mood", "u1", "{bad"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}
	// "mood":0 fails the required binding; 6 passes binding and fails validation
	if w := doJSON(t, r, http.MethodPost, "/mood", "u1", `{"mood":0}`); w.Code != http.StatusBadRequest {
		t.Fatalf("mood 0 -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/mood", "u1", `{"mood":6}`); w.Code != http.StatusBadRequest {
		t.Fatalf("mood 6 -> %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/mood", "u1", `{"mood":4,"note":"slept well"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("save -> %d body=%s", w.Code, w.Body.String())
	}
	var out domain.MoodEntry
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.UserID != "u1" || out.Mood != 4 || out.Note == nil || *out.Note != "slept well" {
		t.Fatalf("unexpected entry: %#v", out)
	}
}

func TestTodayMood_EmptyThenCheckedIn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newAPI(t)
	r := gin.New()
	r.POST("/mood", h.SaveMood)
	r.GET("/mood/today", h.TodayMood)

	w := doJSON(t, r, http.MethodGet, "/mood/today", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("today -> %d", w.Code)
	}
	var resp TodayMoodResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.CheckedIn || resp.Entry != nil {
		t.Fatalf("unexpected pre-checkin: %#v", resp)
	}

	if w := doJSON(t, r, http.MethodPost, "/mood", "u1", `{"mood":2}`); w.Code != http.StatusCreated {
		t.Fatalf("save -> %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/mood/today", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("today after save -> %d", w.Code)
	}
	resp = TodayMoodResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !resp.CheckedIn || resp.Entry == nil || resp.Entry.Mood != 2 {
		t.Fatalf("unexpected checkin: %#v", resp)
	}
}

func TestMoodHistory_WindowDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, db := newAPI(t)
	r := gin.New()
	r.GET("/mood/history", h.MoodHistory)

	old := domain.MoodEntry{ID: uuid.NewString(), UserID: "u1", Mood: 1, CreatedAt: time.Now().AddDate(0, 0, -40)}
	recent := domain.MoodEntry{ID: uuid.NewString(), UserID: "u1", Mood: 5, CreatedAt: time.Now().Add(-time.Hour)}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&recent).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/mood/history", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("history -> %d", w.Code)
	}
	var items []domain.MoodEntry
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(items) != 1 || items[0].Mood != 5 {
		t.Fatalf("default window items: %#v", items)
	}

	// days=0 widens to all history
	w = doJSON(t, r, http.MethodGet, "/mood/history?days=0", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("all history -> %d", w.Code)
	}
	items = nil
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("all-history items = %d", len(items))
	}
}

// ---------- Milestones ----------

func TestMilestones_CRUD(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newAPI(t)
	r := gin.New()
	r.POST("/milestones", h.CreateMilestone)
	r.GET("/milestones", h.ListMilestones)
	r.PUT("/milestones/:id", h.UpdateMilestone)
	r.DELETE("/milestones/:id", h.DeleteMilestone)

	if w := doJSON(t, r, http.MethodPost, "/milestones", "u1", "{bad"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/milestones", "u1", `{"title":"no date"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing date -> %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/milestones", "u1",
		`{"title":"  The day we said goodbye  ","event_date":"2026-01-15T00:00:00Z"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
	}
	var mv MilestoneView
	if err := json.Unmarshal(w.Body.Bytes(), &mv); err != nil {
		t.Fatalf("json: %v", err)
	}
	if mv.Title != "The day we said goodbye" {
		t.Fatalf("title = %q", mv.Title)
	}
	if mv.DaysSince < 0 || mv.TimeSinceText == "" {
		t.Fatalf("derived fields: %#v", mv)
	}

	w = doJSON(t, r, http.MethodGet, "/milestones", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	var views []MilestoneView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(views) != 1 || views[0].ID != mv.ID {
		t.Fatalf("list: %#v", views)
	}

	if w := doJSON(t, r, http.MethodPut, "/milestones/nope", "u1", `{"title":"x","event_date":"2026-02-01T00:00:00Z"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, "/milestones/"+uuid.NewString(), "u1", `{"title":"x","event_date":"2026-02-01T00:00:00Z"}`); w.Code != http.StatusNotFound {
		t.Fatalf("missing -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, "/milestones/"+mv.ID, "u1", `{"title":"Renamed","event_date":"2026-02-01T00:00:00Z"}`); w.Code != http.StatusNoContent {
		t.Fatalf("update -> %d", w.Code)
	}

	// Foreign delete is a 404; the owner's delete sticks
	if w := doJSON(t, r, http.MethodDelete, "/milestones/"+mv.ID, "u2", ""); w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/milestones/"+mv.ID, "u1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/milestones/"+mv.ID, "u1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("redelete -> %d", w.Code)
	}
}

// ---------- Reports ----------

func TestSubmitReport_Validation_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, db := newAPI(t)
	r := gin.New()
	r.POST("/reports", h.SubmitReport)

	if w := doJSON(t, r, http.MethodPost, "/reports", "u1", "{bad"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/reports", "u1", `{"thought_id":"t1","reason":"Because"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad reason -> %d", w.Code)
	}

	th, err := repo.CreateThought(context.Background(), db, &domain.Thought{
		UserID: "author", Content: "reported", IsPublic: true,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"thought_id":"` + th.ID + `","reported_user_id":"author","reason":"` + string(domain.ReasonHarassment) + `","additional_context":"   "}`
	w := doJSON(t, r, http.MethodPost, "/reports", "u1", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("report -> %d body=%s", w.Code, w.Body.String())
	}
	var rep domain.ContentReport
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("json: %v", err)
	}
	if rep.ReportingUserID != "u1" || rep.ReportedThoughtID != th.ID || rep.ReportedUserID != "author" {
		t.Fatalf("unexpected report: %#v", rep)
	}
	if rep.AdditionalContext != nil {
		t.Fatalf("blank context kept: %#v", rep.AdditionalContext)
	}
}

func TestSubmitReport_RetryWithSameKeyReplays(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, db := newAPI(t)
	r := gin.New()
	r.POST("/reports", middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil), h.SubmitReport)

	th, err := repo.CreateThought(context.Background(), db, &domain.Thought{
		UserID: "author", Content: "reported twice", IsPublic: true,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"thought_id":"` + th.ID + `","reported_user_id":"author","reason":"` + string(domain.ReasonHarassment) + `"}`
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "u1")
		req.Header.Set(middleware.HeaderIdempotencyKey, "report-retry-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	if first.Code != http.StatusCreated {
		t.Fatalf("first -> %d body=%s", first.Code, first.Body.String())
	}
	var orig domain.ContentReport
	if err := json.Unmarshal(first.Body.Bytes(), &orig); err != nil {
		t.Fatalf("json: %v", err)
	}

	second := send()
	if second.Code != http.StatusCreated {
		t.Fatalf("second -> %d body=%s", second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("missing replay header")
	}
	var replayed domain.ContentReport
	if err := json.Unmarshal(second.Body.Bytes(), &replayed); err != nil {
		t.Fatalf("json: %v", err)
	}
	if replayed.ID != orig.ID {
		t.Fatalf("replay returned %q, want %q", replayed.ID, orig.ID)
	}

	var n int64
	if err := db.Model(&domain.ContentReport{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("reports persisted = %d", n)
	}
}

// ---------- Mindfulness ----------

func TestListMindfulness_ReturnsCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newAPI(t)
	r := gin.New()
	r.GET("/mindfulness", h.ListMindfulness)

	w := doJSON(t, r, http.MethodGet, "/mindfulness", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("catalog -> %d", w.Code)
	}
	var items []mindfulness.Exercise
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(items) != len(mindfulness.Catalog()) || len(items) == 0 {
		t.Fatalf("catalog size = %d", len(items))
	}
	if items[0].ID == "" || items[0].DurationMinutes <= 0 {
		t.Fatalf("first exercise: %#v", items[0])
	}
}

// ---------- Sessions ----------

func TestNewSession_OptionalBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newAPI(t)
	r := gin.New()
	r.POST("/auth/session", h.NewSession)

	// No body at all still mints a session
	w := doJSON(t, r, http.MethodPost, "/auth/session", "", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("empty body -> %d body=%s", w.Code, w.Body.String())
	}
	var s1 NewSessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &s1); err != nil {
		t.Fatalf("json: %v", err)
	}
	if s1.UserID == "" || s1.Token == "" || !s1.ExpiresAt.After(time.Now()) {
		t.Fatalf("session: %#v", s1)
	}

	w = doJSON(t, r, http.MethodPost, "/auth/session", "", `{"display_name":"River"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("named -> %d", w.Code)
	}
	var s2 NewSessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &s2); err != nil {
		t.Fatalf("json: %v", err)
	}
	if s2.UserID == s1.UserID {
		t.Fatalf("user ids not unique")
	}

	// The minted token round-trips through the verifier
	mgr := auth.NewJWTManager("handlers-test-secret", time.Hour)
	claims, err := mgr.VerifyToken(s2.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != s2.UserID || claims.DisplayName != "River" {
		t.Fatalf("claims: %#v", claims)
	}
}

// ---------- Account ----------

func TestDeleteAccount_RemovesOwnedRows(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, db := newAPI(t)
	r := gin.New()
	r.POST("/thoughts", h.CreateThought)
	r.POST("/messages", h.SendMessage)
	r.POST("/mood", h.SaveMood)
	r.DELETE("/account", h.DeleteAccount)

	if w := doJSON(t, r, http.MethodPost, "/thoughts", "u1", `{"content":"mine"}`); w.Code != http.StatusCreated {
		t.Fatalf("seed thought -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/messages", "u1", `{"recipient_name":"Mom","content":"bye"}`); w.Code != http.StatusCreated {
		t.Fatalf("seed message -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/mood", "u1", `{"mood":3}`); w.Code != http.StatusCreated {
		t.Fatalf("seed mood -> %d", w.Code)
	}
	// A bystander's thought must survive the teardown
	if w := doJSON(t, r, http.MethodPost, "/thoughts", "u2", `{"content":"not mine"}`); w.Code != http.StatusCreated {
		t.Fatalf("seed foreign -> %d", w.Code)
	}

	if w := doJSON(t, r, http.MethodDelete, "/account", "u1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("teardown -> %d body=%s", w.Code, w.Body.String())
	}

	for _, tbl := range []struct {
		name  string
		model any
	}{
		{"thoughts", &domain.Thought{}},
		{"messages", &domain.Message{}},
		{"moods", &domain.MoodEntry{}},
	} {
		var n int64
		if err := db.Model(tbl.model).Where("user_id = ?", "u1").Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", tbl.name, err)
		}
		if n != 0 {
			t.Fatalf("%s left behind: %d", tbl.name, n)
		}
	}

	var foreign int64
	if err := db.Model(&domain.Thought{}).Where("user_id = ?", "u2").Count(&foreign).Error; err != nil {
		t.Fatalf("count foreign: %v", err)
	}
	if foreign != 1 {
		t.Fatalf("bystander thoughts = %d", foreign)
	}
}
