// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mvoronkov/cafevoter/models"
	"github.com/mvoronkov/cafevoter/testutil"
)

func toggleVote(t *testing.T, handler *VoteHandler, cafeID string, user models.User) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("GET", "/cafes/"+cafeID+"/vote", nil, nil)
	req.SetPathValue("id", cafeID)
	req = asUser(req, user)

	w := httptest.NewRecorder()
	handler.Toggle(w, req)
	return w
}

func TestToggleVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	cafeID := testutil.CreateTestCafe(t, db, "Blue Bottle")
	u1 := testutil.CreateTestUser(t, db, "u1@example.com", "secret1")
	u2 := testutil.CreateTestUser(t, db, "u2@example.com", "secret2")

	// U1 toggles twice: cast then retract, back to the original state
	w := toggleVote(t, handler, cafeID, u1)
	testutil.AssertStatus(t, w, http.StatusOK)

	var cafe models.Cafe
	testutil.AssertJSON(t, w, &cafe)
	if cafe.VotesCount != 1 || !cafe.Voted {
		t.Errorf("After first toggle: want count 1 voted, got count %d voted %v", cafe.VotesCount, cafe.Voted)
	}

	w = toggleVote(t, handler, cafeID, u1)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &cafe)
	if cafe.VotesCount != 0 || cafe.Voted {
		t.Errorf("After double toggle: want count 0 not voted, got count %d voted %v", cafe.VotesCount, cafe.Voted)
	}

	// U1 casts, then U2 casts: both in the set
	w = toggleVote(t, handler, cafeID, u1)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = toggleVote(t, handler, cafeID, u2)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &cafe)
	if cafe.VotesCount != 2 || !cafe.Voted {
		t.Errorf("After both voted: want count 2 voted, got count %d voted %v", cafe.VotesCount, cafe.Voted)
	}
}

func TestToggleVoteSwitchesCafe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	cafeA := testutil.CreateTestCafe(t, db, "Cafe A")
	cafeB := testutil.CreateTestCafe(t, db, "Cafe B")
	user := testutil.CreateTestUser(t, db, "switcher@example.com", "secret")

	w := toggleVote(t, handler, cafeA, user)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Toggling B while voted for A retracts from A and casts for B
	w = toggleVote(t, handler, cafeB, user)
	testutil.AssertStatus(t, w, http.StatusOK)

	var cafe models.Cafe
	testutil.AssertJSON(t, w, &cafe)
	if cafe.VotesCount != 1 || !cafe.Voted {
		t.Errorf("Cafe B: want count 1 voted, got count %d voted %v", cafe.VotesCount, cafe.Voted)
	}

	var countA int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM vote WHERE cafe_id = $1
	`, cafeA).Scan(&countA)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if countA != 0 {
		t.Errorf("Cafe A should have no votes after switch, got %d", countA)
	}

	// Only one vote row total for the user
	var total int
	err = db.QueryRow(`SELECT COUNT(*) FROM vote WHERE user_id = $1`, user.ID).Scan(&total)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if total != 1 {
		t.Errorf("User should hold exactly one vote row, got %d", total)
	}
}

func TestToggleVoteCafeNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	user := testutil.CreateTestUser(t, db, "voter@example.com", "secret")

	w := toggleVote(t, handler, "no-such-cafe", user)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestToggleVoteIgnoresPreviousDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	cafeID := testutil.CreateTestCafe(t, db, "Daily Grind")
	user := testutil.CreateTestUser(t, db, "regular@example.com", "secret")

	// Yesterday's vote does not count toward today and does not block a new cast
	testutil.CastTestVoteOn(t, db, cafeID, user.ID, time.Now().Add(-24*time.Hour))

	w := toggleVote(t, handler, cafeID, user)
	testutil.AssertStatus(t, w, http.StatusOK)

	var cafe models.Cafe
	testutil.AssertJSON(t, w, &cafe)
	if cafe.VotesCount != 1 || !cafe.Voted {
		t.Errorf("Today's tally: want count 1 voted, got count %d voted %v", cafe.VotesCount, cafe.Voted)
	}

	var total int
	err := db.QueryRow(`SELECT COUNT(*) FROM vote WHERE user_id = $1`, user.ID).Scan(&total)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected yesterday's row plus today's, got %d rows", total)
	}
}
