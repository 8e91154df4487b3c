// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvoronkov/cafevoter/auth"
	"github.com/mvoronkov/cafevoter/models"
	"github.com/mvoronkov/cafevoter/testutil"
)

func TestRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewProfileHandler(db, cfg)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.User)
	}{
		{
			name: "valid registration",
			body: models.RegisterRequest{
				Email:    "Alice@Example.com",
				Password: "hunter22",
				Name:     "Alice",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.User) {
				if resp.Email != "alice@example.com" {
					t.Errorf("Expected normalized email, got %q", resp.Email)
				}
				if len(resp.Roles) != 1 || resp.Roles[0] != models.RoleUser {
					t.Errorf("Expected default USER role, got %v", resp.Roles)
				}

				// The stored credential must be a hash, not the plaintext
				var stored string
				err := db.QueryRow(`SELECT password FROM users WHERE id = $1`, resp.ID).Scan(&stored)
				if err != nil {
					t.Fatalf("Failed to read stored password: %v", err)
				}
				if stored == "hunter22" {
					t.Error("Password stored in plaintext")
				}
				if !auth.CheckPassword("hunter22", stored) {
					t.Error("Stored hash does not verify the password")
				}
			},
		},
		{
			name: "duplicate email different case",
			body: models.RegisterRequest{
				Email:    "ALICE@example.COM",
				Password: "other",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing email",
			body:           models.RegisterRequest{Password: "x"},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "missing password",
			body:           models.RegisterRequest{Email: "bob@example.com"},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/users/register", tt.body, nil)
			w := httptest.NewRecorder()
			handler.Register(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.checkResponse != nil {
				var resp models.User
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewProfileHandler(db, cfg)

	user := testutil.CreateTestUser(t, db, "login@example.com", "correct-horse")

	tests := []struct {
		name           string
		body           models.LoginRequest
		expectedStatus int
	}{
		{
			name:           "valid credentials",
			body:           models.LoginRequest{Email: "Login@Example.com", Password: "correct-horse"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			body:           models.LoginRequest{Email: "login@example.com", Password: "battery-staple"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown email",
			body:           models.LoginRequest{Email: "ghost@example.com", Password: "whatever"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/users/login", tt.body, nil)
			w := httptest.NewRecorder()
			handler.Login(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp models.LoginResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.User.ID != user.ID {
					t.Errorf("Expected user %s, got %s", user.ID, resp.User.ID)
				}

				// The token must resolve back to the user
				userID, err := auth.ParseToken(resp.Token, cfg.TokenSecret)
				if err != nil {
					t.Fatalf("Issued token does not parse: %v", err)
				}
				if userID != user.ID {
					t.Errorf("Token subject %s, want %s", userID, user.ID)
				}
			}
		})
	}
}

func TestGetProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewProfileHandler(db, cfg)

	user := testutil.CreateTestUser(t, db, "me@example.com", "secret")

	req := asUser(testutil.MakeRequest("GET", "/users/profile", nil, nil), user)
	w := httptest.NewRecorder()
	handler.Get(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.User
	testutil.AssertJSON(t, w, &resp)
	if resp.ID != user.ID || resp.Email != "me@example.com" {
		t.Errorf("Unexpected profile: %+v", resp)
	}
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewProfileHandler(db, cfg)

	user := testutil.CreateTestUser(t, db, "before@example.com", "old-pass")
	other := testutil.CreateTestUser(t, db, "taken@example.com", "x")
	_ = other

	// Email and password change
	req := asUser(testutil.MakeRequest("PUT", "/users/profile", models.UpdateProfileRequest{
		Email:    "After@Example.com",
		Name:     "Renamed",
		Password: "new-pass",
	}, nil), user)
	w := httptest.NewRecorder()
	handler.Update(w, req)

	testutil.AssertStatus(t, w, http.StatusNoContent)

	var email, name, hash string
	err := db.QueryRow(`SELECT email, name, password FROM users WHERE id = $1`, user.ID).Scan(&email, &name, &hash)
	if err != nil {
		t.Fatalf("Failed to read user: %v", err)
	}
	if email != "after@example.com" || name != "Renamed" {
		t.Errorf("Unexpected update result: %s %s", email, name)
	}
	if !auth.CheckPassword("new-pass", hash) {
		t.Error("New password does not verify")
	}

	// Empty password keeps the stored credential
	req = asUser(testutil.MakeRequest("PUT", "/users/profile", models.UpdateProfileRequest{
		Email: "after@example.com",
		Name:  "Renamed",
	}, nil), user)
	w = httptest.NewRecorder()
	handler.Update(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	var unchanged string
	if err := db.QueryRow(`SELECT password FROM users WHERE id = $1`, user.ID).Scan(&unchanged); err != nil {
		t.Fatalf("Failed to read user: %v", err)
	}
	if unchanged != hash {
		t.Error("Password changed on update without password field")
	}

	// Moving onto someone else's email is a conflict
	req = asUser(testutil.MakeRequest("PUT", "/users/profile", models.UpdateProfileRequest{
		Email: "taken@example.com",
	}, nil), user)
	w = httptest.NewRecorder()
	handler.Update(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Missing email
	req = asUser(testutil.MakeRequest("PUT", "/users/profile", models.UpdateProfileRequest{}, nil), user)
	w = httptest.NewRecorder()
	handler.Update(w, req)
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)
}

func TestDeleteProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewProfileHandler(db, cfg)

	user := testutil.CreateTestUser(t, db, "leaver@example.com", "secret")
	cafeID := testutil.CreateTestCafe(t, db, "Regular Spot")
	testutil.CastTestVote(t, db, cafeID, user.ID)

	req := asUser(testutil.MakeRequest("DELETE", "/users/profile", nil, nil), user)
	w := httptest.NewRecorder()
	handler.Delete(w, req)

	testutil.AssertStatus(t, w, http.StatusNoContent)

	var users, votes int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE id = $1`, user.ID).Scan(&users); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM vote WHERE user_id = $1`, user.ID).Scan(&votes); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if users != 0 || votes != 0 {
		t.Errorf("Expected account and votes gone, got %d users %d votes", users, votes)
	}
}
