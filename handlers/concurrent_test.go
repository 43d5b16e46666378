// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/laezzii/LenteXhibit/models"
	"github.com/laezzii/LenteXhibit/testutil"
)

// TestConcurrentVotes verifies that simultaneous votes from different users
// all land and the denormalized counters come out exact
func TestConcurrentVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	voteHandler := NewVoteHandler(db, cfg, sessions)

	alice := testutil.CreateTestUser(t, db, "Alice", models.TypeMember)
	testutil.CreateTestPortfolio(t, db, alice.ID)
	work := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)

	numVoters := 10
	voters := make([]models.User, numVoters)
	for i := 0; i < numVoters; i++ {
		voters[i] = testutil.CreateTestUser(t, db, "Voter"+string(rune('A'+i)), models.TypeMember)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/api/votes", models.CreateVoteRequest{WorkID: work.ID})
			w := serve(sessions, &voters[idx], voteHandler.Create, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	var voteCount int
	if err := db.QueryRow(`SELECT vote_count FROM work WHERE id = $1`, work.ID).Scan(&voteCount); err != nil {
		t.Fatalf("Failed to query vote count: %v", err)
	}
	if voteCount != numVoters {
		t.Errorf("Expected vote_count %d, got %d", numVoters, voteCount)
	}

	var total int
	if err := db.QueryRow(`SELECT total_votes FROM portfolio WHERE user_id = $1`, alice.ID).Scan(&total); err != nil {
		t.Fatalf("Failed to query portfolio total: %v", err)
	}
	if total != numVoters {
		t.Errorf("Expected portfolio total %d, got %d", numVoters, total)
	}
}

// TestConcurrentDuplicateVotes verifies that when one user fires the same
// vote many times at once, exactly one lands and the count stays at one
func TestConcurrentDuplicateVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	voteHandler := NewVoteHandler(db, cfg, sessions)

	alice := testutil.CreateTestUser(t, db, "Alice", models.TypeMember)
	bob := testutil.CreateTestUser(t, db, "Bob", models.TypeMember)
	testutil.CreateTestPortfolio(t, db, alice.ID)
	work := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)

	numAttempts := 5
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/api/votes", models.CreateVoteRequest{WorkID: work.ID})
			w := serve(sessions, &bob, voteHandler.Create, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful vote, got %d", successCount.Load())
	}

	var voteRows int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM vote WHERE user_id = $1 AND work_id = $2
	`, bob.ID, work.ID).Scan(&voteRows); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if voteRows != 1 {
		t.Errorf("Expected 1 vote row, got %d", voteRows)
	}

	var voteCount int
	if err := db.QueryRow(`SELECT vote_count FROM work WHERE id = $1`, work.ID).Scan(&voteCount); err != nil {
		t.Fatalf("Failed to query vote count: %v", err)
	}
	if voteCount != 1 {
		t.Errorf("Expected vote_count 1, got %d", voteCount)
	}
}

// TestConcurrentThemeEnding verifies that when multiple readers race on an
// expired theme, the transition happens once and every racer sees the same
// winner
func TestConcurrentThemeEnding(t *testing.T) {
	db := testutil.SetupTestDB(t)

	admin := testutil.CreateTestUser(t, db, "Admin", models.TypeAdmin)
	alice := testutil.CreateTestUser(t, db, "Alice", models.TypeMember)
	bob := testutil.CreateTestUser(t, db, "Bob", models.TypeMember)

	now := time.Now()
	theme := testutil.CreateTestTheme(t, db, admin.ID, models.CategoryPhotos, now.Add(-2*time.Hour), now.Add(-time.Hour))
	// Fixture derives status from the window; force it back to active so the
	// racers all observe a stale stored status.
	if _, err := db.Exec(`UPDATE theme SET status = $1 WHERE id = $2`, models.ThemeActive, theme.ID); err != nil {
		t.Fatalf("Failed to reset theme status: %v", err)
	}
	theme.Status = models.ThemeActive

	work := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)
	testutil.SubmitTestWork(t, db, theme.ID, work.ID)
	testutil.CreateTestVote(t, db, bob.ID, work.ID, theme.ID)

	numRacers := 8
	results := make([]models.Theme, numRacers)
	errs := make([]error, numRacers)
	var wg sync.WaitGroup

	for i := 0; i < numRacers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			local := theme
			errs[idx] = AdvanceTheme(db, &local, now)
			results[idx] = local
		}(i)
	}

	wg.Wait()

	for i := 0; i < numRacers; i++ {
		if errs[i] != nil {
			t.Fatalf("Racer %d failed: %v", i, errs[i])
		}
		if results[i].Status != models.ThemeEnded {
			t.Errorf("Racer %d saw status %q, expected ended", i, results[i].Status)
		}
		if results[i].WinnerWorkID == nil || *results[i].WinnerWorkID != work.ID {
			t.Errorf("Racer %d saw winner %v, expected %s", i, results[i].WinnerWorkID, work.ID)
		}
	}

	var winnerID *string
	if err := db.QueryRow(`SELECT winner_work_id FROM theme WHERE id = $1`, theme.ID).Scan(&winnerID); err != nil {
		t.Fatalf("Failed to query theme: %v", err)
	}
	if winnerID == nil || *winnerID != work.ID {
		t.Errorf("Expected stored winner %s, got %v", work.ID, winnerID)
	}
}
