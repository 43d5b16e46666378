package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/laezzii/LenteXhibit/models"
	"github.com/laezzii/LenteXhibit/testutil"
)

func TestCreateVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	handler := NewVoteHandler(db, cfg, sessions)

	alice := testutil.CreateTestUser(t, db, "Alice", models.TypeMember)
	bob := testutil.CreateTestUser(t, db, "Bob", models.TypeMember)
	testutil.CreateTestPortfolio(t, db, alice.ID)
	work := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)

	// First vote lands
	req := testutil.MakeRequest("POST", "/api/votes", models.CreateVoteRequest{WorkID: work.ID})
	w := serve(sessions, &bob, handler.Create, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.VoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.VoteCount != 1 {
		t.Errorf("Expected vote_count 1, got %d", resp.VoteCount)
	}

	// Second identical vote conflicts and the count holds
	req = testutil.MakeRequest("POST", "/api/votes", models.CreateVoteRequest{WorkID: work.ID})
	w = serve(sessions, &bob, handler.Create, req)
	testutil.AssertStatus(t, w, http.StatusConflict)

	var count int
	if err := db.QueryRow(`SELECT vote_count FROM work WHERE id = $1`, work.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to query vote count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected vote_count to stay 1 after duplicate, got %d", count)
	}

	// Portfolio total tracks the vote
	var total int
	if err := db.QueryRow(`SELECT total_votes FROM portfolio WHERE user_id = $1`, alice.ID).Scan(&total); err != nil {
		t.Fatalf("Failed to query portfolio total: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected portfolio total 1, got %d", total)
	}

	// Unknown work
	req = testutil.MakeRequest("POST", "/api/votes", models.CreateVoteRequest{WorkID: "no-such-work"})
	w = serve(sessions, &bob, handler.Create, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestThemeScopedVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	handler := NewVoteHandler(db, cfg, sessions)

	admin := testutil.CreateTestUser(t, db, "Admin", models.TypeAdmin)
	alice := testutil.CreateTestUser(t, db, "Alice", models.TypeMember)
	bob := testutil.CreateTestUser(t, db, "Bob", models.TypeMember)

	now := time.Now()
	theme := testutil.CreateTestTheme(t, db, admin.ID, models.CategoryPhotos, now.Add(-time.Hour), now.Add(time.Hour))
	ended := testutil.CreateTestTheme(t, db, admin.ID, models.CategoryPhotos, now.Add(-2*time.Hour), now.Add(-time.Hour))

	submitted := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)
	testutil.SubmitTestWork(t, db, theme.ID, submitted.ID)
	outsider := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)

	tests := []struct {
		name           string
		requestBody    models.CreateVoteRequest
		expectedStatus int
	}{
		{
			name:           "scoped vote on submitted work",
			requestBody:    models.CreateVoteRequest{WorkID: submitted.ID, ThemeID: theme.ID},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "work not in theme",
			requestBody:    models.CreateVoteRequest{WorkID: outsider.ID, ThemeID: theme.ID},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "ended theme rejects votes",
			requestBody:    models.CreateVoteRequest{WorkID: submitted.ID, ThemeID: ended.ID},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown theme",
			requestBody:    models.CreateVoteRequest{WorkID: submitted.ID, ThemeID: "no-such-theme"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/votes", tt.requestBody)
			w := serve(sessions, &bob, handler.Create, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	// A scoped vote and an unscoped vote on the same work can coexist
	req := testutil.MakeRequest("POST", "/api/votes", models.CreateVoteRequest{WorkID: submitted.ID})
	w := serve(sessions, &bob, handler.Create, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var count int
	if err := db.QueryRow(`SELECT vote_count FROM work WHERE id = $1`, submitted.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to query vote count: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected vote_count 2 across scopes, got %d", count)
	}
}

func TestDeleteVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	handler := NewVoteHandler(db, cfg, sessions)

	alice := testutil.CreateTestUser(t, db, "Alice", models.TypeMember)
	bob := testutil.CreateTestUser(t, db, "Bob", models.TypeMember)
	testutil.CreateTestPortfolio(t, db, alice.ID)
	work := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)
	testutil.CreateTestVote(t, db, bob.ID, work.ID, "")

	// Remove the vote
	req := testutil.MakeRequest("DELETE", "/api/votes/"+work.ID, nil)
	req.SetPathValue("work_id", work.ID)
	w := serve(sessions, &bob, handler.Delete, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.VoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.VoteCount != 0 {
		t.Errorf("Expected vote_count 0 after removal, got %d", resp.VoteCount)
	}

	var total int
	if err := db.QueryRow(`SELECT total_votes FROM portfolio WHERE user_id = $1`, alice.ID).Scan(&total); err != nil {
		t.Fatalf("Failed to query portfolio total: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected portfolio total 0 after removal, got %d", total)
	}

	// Removing again is a 404 and nothing goes negative
	req = testutil.MakeRequest("DELETE", "/api/votes/"+work.ID, nil)
	req.SetPathValue("work_id", work.ID)
	w = serve(sessions, &bob, handler.Delete, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	var count int
	if err := db.QueryRow(`SELECT vote_count FROM work WHERE id = $1`, work.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to query vote count: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected vote_count to stay 0, got %d", count)
	}
}

func TestDeleteVoteScopeMismatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	handler := NewVoteHandler(db, cfg, sessions)

	admin := testutil.CreateTestUser(t, db, "Admin", models.TypeAdmin)
	alice := testutil.CreateTestUser(t, db, "Alice", models.TypeMember)
	bob := testutil.CreateTestUser(t, db, "Bob", models.TypeMember)

	now := time.Now()
	theme := testutil.CreateTestTheme(t, db, admin.ID, models.CategoryPhotos, now.Add(-time.Hour), now.Add(time.Hour))
	work := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)
	testutil.SubmitTestWork(t, db, theme.ID, work.ID)
	testutil.CreateTestVote(t, db, bob.ID, work.ID, theme.ID)

	// Unscoped delete does not match the scoped vote
	req := testutil.MakeRequest("DELETE", "/api/votes/"+work.ID, nil)
	req.SetPathValue("work_id", work.ID)
	w := serve(sessions, &bob, handler.Delete, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	// Scoped delete matches
	req = testutil.MakeRequest("DELETE", "/api/votes/"+work.ID+"?theme_id="+theme.ID, nil)
	req.SetPathValue("work_id", work.ID)
	w = serve(sessions, &bob, handler.Delete, req)
	testutil.AssertStatus(t, w, http.StatusOK)
}
