package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/laezzii/LenteXhibit/models"
	"github.com/laezzii/LenteXhibit/testutil"
)

func TestCreateTheme(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	handler := NewThemeHandler(db, cfg, sessions)

	admin := testutil.CreateTestUser(t, db, "Admin", models.TypeAdmin)
	now := time.Now()

	tests := []struct {
		name           string
		requestBody    models.CreateThemeRequest
		expectedStatus int
		expectedState  string
	}{
		{
			name: "upcoming theme",
			requestBody: models.CreateThemeRequest{
				Title:    "Next Month",
				Category: models.CategoryPhotos,
				StartsAt: now.Add(24 * time.Hour),
				EndsAt:   now.Add(48 * time.Hour),
			},
			expectedStatus: http.StatusCreated,
			expectedState:  models.ThemeUpcoming,
		},
		{
			name: "immediately active theme",
			requestBody: models.CreateThemeRequest{
				Title:    "Right Now",
				Category: models.CategoryAll,
				StartsAt: now.Add(-time.Hour),
				EndsAt:   now.Add(time.Hour),
			},
			expectedStatus: http.StatusCreated,
			expectedState:  models.ThemeActive,
		},
		{
			name: "window inverted",
			requestBody: models.CreateThemeRequest{
				Title:    "Backwards",
				Category: models.CategoryPhotos,
				StartsAt: now.Add(2 * time.Hour),
				EndsAt:   now.Add(time.Hour),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid category",
			requestBody: models.CreateThemeRequest{
				Title:    "Whatever",
				Category: "Paintings",
				StartsAt: now.Add(time.Hour),
				EndsAt:   now.Add(2 * time.Hour),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing title",
			requestBody: models.CreateThemeRequest{
				Category: models.CategoryPhotos,
				StartsAt: now.Add(time.Hour),
				EndsAt:   now.Add(2 * time.Hour),
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/themes", tt.requestBody)
			w := serve(sessions, &admin, handler.Create, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var theme models.Theme
				testutil.AssertJSON(t, w, &theme)
				if theme.Status != tt.expectedState {
					t.Errorf("Expected status %q, got %q", tt.expectedState, theme.Status)
				}
				if theme.CreatedBy != admin.ID {
					t.Errorf("Expected created_by %s, got %s", admin.ID, theme.CreatedBy)
				}
			}
		})
	}
}

func TestListAndActiveThemes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	handler := NewThemeHandler(db, cfg, sessions)

	admin := testutil.CreateTestUser(t, db, "Admin", models.TypeAdmin)
	now := time.Now()
	testutil.CreateTestTheme(t, db, admin.ID, models.CategoryPhotos, now.Add(time.Hour), now.Add(2*time.Hour))
	active := testutil.CreateTestTheme(t, db, admin.ID, models.CategoryAll, now.Add(-time.Hour), now.Add(time.Hour))
	testutil.CreateTestTheme(t, db, admin.ID, models.CategoryVideos, now.Add(-3*time.Hour), now.Add(-2*time.Hour))

	req := testutil.MakeRequest("GET", "/api/themes", nil)
	w := serve(sessions, nil, handler.List, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var all models.ThemeListResponse
	testutil.AssertJSON(t, w, &all)
	if len(all.Themes) != 3 {
		t.Fatalf("Expected 3 themes, got %d", len(all.Themes))
	}

	req = testutil.MakeRequest("GET", "/api/themes/active", nil)
	w = serve(sessions, nil, handler.Active, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var actives models.ThemeListResponse
	testutil.AssertJSON(t, w, &actives)
	if len(actives.Themes) != 1 || actives.Themes[0].ID != active.ID {
		t.Errorf("Expected only the active theme, got %d themes", len(actives.Themes))
	}
}

func TestGetThemeWithWorks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	handler := NewThemeHandler(db, cfg, sessions)

	admin := testutil.CreateTestUser(t, db, "Admin", models.TypeAdmin)
	alice := testutil.CreateTestUser(t, db, "Alice", models.TypeMember)

	now := time.Now()
	theme := testutil.CreateTestTheme(t, db, admin.ID, models.CategoryPhotos, now.Add(-time.Hour), now.Add(time.Hour))
	first := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)
	second := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)
	testutil.SubmitTestWork(t, db, theme.ID, first.ID)
	testutil.SubmitTestWork(t, db, theme.ID, second.ID)

	req := testutil.MakeRequest("GET", "/api/themes/"+theme.ID, nil)
	req.SetPathValue("id", theme.ID)
	w := serve(sessions, nil, handler.Get, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ThemeWithWorks
	testutil.AssertJSON(t, w, &resp)
	if resp.Theme.ID != theme.ID {
		t.Errorf("Expected theme %s, got %s", theme.ID, resp.Theme.ID)
	}
	if len(resp.Works) != 2 {
		t.Fatalf("Expected 2 submitted works, got %d", len(resp.Works))
	}

	req = testutil.MakeRequest("GET", "/api/themes/no-such-theme", nil)
	req.SetPathValue("id", "no-such-theme")
	w = serve(sessions, nil, handler.Get, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestUpdateThemeShiftsLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	handler := NewThemeHandler(db, cfg, sessions)

	admin := testutil.CreateTestUser(t, db, "Admin", models.TypeAdmin)
	now := time.Now()
	theme := testutil.CreateTestTheme(t, db, admin.ID, models.CategoryPhotos, now.Add(-time.Hour), now.Add(time.Hour))

	// Pull the window into the past; the theme ends on the spot
	req := testutil.MakeRequest("PUT", "/api/themes/"+theme.ID, models.UpdateThemeRequest{
		Title:    theme.Title,
		Category: theme.Category,
		StartsAt: now.Add(-3 * time.Hour),
		EndsAt:   now.Add(-2 * time.Hour),
	})
	req.SetPathValue("id", theme.ID)
	w := serve(sessions, &admin, handler.Update, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var updated models.Theme
	testutil.AssertJSON(t, w, &updated)
	if updated.Status != models.ThemeEnded {
		t.Errorf("Expected theme to end after window shrank, got %q", updated.Status)
	}
}

func TestDeleteThemeReversesScopedVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	sessions := testutil.NewTestSessions(db)
	handler := NewThemeHandler(db, cfg, sessions)

	admin := testutil.CreateTestUser(t, db, "Admin", models.TypeAdmin)
	alice := testutil.CreateTestUser(t, db, "Alice", models.TypeMember)
	bob := testutil.CreateTestUser(t, db, "Bob", models.TypeMember)
	carol := testutil.CreateTestUser(t, db, "Carol", models.TypeMember)
	testutil.CreateTestPortfolio(t, db, alice.ID)

	now := time.Now()
	theme := testutil.CreateTestTheme(t, db, admin.ID, models.CategoryPhotos, now.Add(-time.Hour), now.Add(time.Hour))
	work := testutil.CreateTestWork(t, db, alice.ID, models.CategoryPhotos)
	testutil.SubmitTestWork(t, db, theme.ID, work.ID)

	// Two scoped votes, one unscoped
	testutil.CreateTestVote(t, db, bob.ID, work.ID, theme.ID)
	testutil.CreateTestVote(t, db, carol.ID, work.ID, theme.ID)
	testutil.CreateTestVote(t, db, bob.ID, work.ID, "")

	req := testutil.MakeRequest("DELETE", "/api/themes/"+theme.ID, nil)
	req.SetPathValue("id", theme.ID)
	w := serve(sessions, &admin, handler.Delete, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var count int
	if err := db.QueryRow(`SELECT vote_count FROM work WHERE id = $1`, work.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to query vote count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected only the unscoped vote to remain, got count %d", count)
	}

	var total int
	if err := db.QueryRow(`SELECT total_votes FROM portfolio WHERE user_id = $1`, alice.ID).Scan(&total); err != nil {
		t.Fatalf("Failed to query portfolio total: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected portfolio total 1 after theme deletion, got %d", total)
	}

	// The work survives with its theme link cleared
	var themeID *string
	if err := db.QueryRow(`SELECT theme_id FROM work WHERE id = $1`, work.ID).Scan(&themeID); err != nil {
		t.Fatalf("Failed to query work: %v", err)
	}
	if themeID != nil {
		t.Error("Expected work.theme_id to clear when the theme is deleted")
	}

	var votes int
	if err := db.QueryRow(`SELECT COUNT(*) FROM vote WHERE theme_id = $1`, theme.ID).Scan(&votes); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if votes != 0 {
		t.Errorf("Expected scoped votes to be deleted, found %d", votes)
	}
}
