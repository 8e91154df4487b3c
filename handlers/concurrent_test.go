// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mvoronkov/cafevoter/models"
	"github.com/mvoronkov/cafevoter/testutil"
)

// TestConcurrentVotesDistinctUsers verifies that simultaneous toggles by
// different users on the same cafe neither lose votes nor duplicate them.
func TestConcurrentVotesDistinctUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	cafeID := testutil.CreateTestCafe(t, db, "Popular Place")

	numVoters := 10
	users := make([]models.User, numVoters)
	for i := 0; i < numVoters; i++ {
		email := "voter" + string(rune('a'+i)) + "@example.com"
		users[i] = testutil.CreateTestUser(t, db, email, "secret")
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("GET", "/cafes/"+cafeID+"/vote", nil, nil)
			req.SetPathValue("id", cafeID)
			req = asUser(req, users[idx])

			w := httptest.NewRecorder()
			handler.Toggle(w, req)

			if w.Code == 200 {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if got := successCount.Load(); got != int32(numVoters) {
		t.Errorf("Expected %d successful toggles, got %d", numVoters, got)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM vote WHERE cafe_id = $1`, cafeID).Scan(&count); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if count != numVoters {
		t.Errorf("Expected %d vote rows, got %d", numVoters, count)
	}
}

// TestConcurrentTogglesSamePair verifies the per-cafe serialization point:
// an even number of concurrent toggles by one user on one cafe must land
// back at NOT_VOTED with every request succeeding.
func TestConcurrentTogglesSamePair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	cafeID := testutil.CreateTestCafe(t, db, "Contended Cafe")
	user := testutil.CreateTestUser(t, db, "flipper@example.com", "secret")

	numToggles := 8 // even
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numToggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("GET", "/cafes/"+cafeID+"/vote", nil, nil)
			req.SetPathValue("id", cafeID)
			req = asUser(req, user)

			w := httptest.NewRecorder()
			handler.Toggle(w, req)

			if w.Code == 200 {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if got := successCount.Load(); got != int32(numToggles) {
		t.Errorf("Expected %d successful toggles, got %d", numToggles, got)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM vote WHERE user_id = $1`, user.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if count != 0 {
		t.Errorf("Even toggle count must round-trip to no vote, got %d rows", count)
	}
}
