package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"loyaltybot-backend/models"
)

func TestRegister(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]interface{}{
		"telegram_id": "111222333",
		"name":        "New User",
		"username":    "newuser",
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["token"] == nil || resp["refresh_token"] == nil {
		t.Error("expected tokens in response")
	}
	user := resp["user"].(map[string]interface{})
	if user["telegram_id"] != "111222333" {
		t.Errorf("unexpected telegram_id: %v", user["telegram_id"])
	}
	if user["points"].(float64) != 0 {
		t.Errorf("expected fresh user to have 0 points, got %v", user["points"])
	}
}

func TestRegisterDuplicateTelegramID(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	body := map[string]interface{}{"telegram_id": "555", "name": "First"}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate, got %d", w.Code)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]interface{}{
		"username": "nameless",
	}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	user, _ := seedTestUser(db, "Dash Admin", 0, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]interface{}{
		"email":    user.Email,
		"password": "password123",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["token"] == nil {
		t.Error("expected token in response")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	user, _ := seedTestUser(db, "Dash Admin", 0, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]interface{}{
		"email":    user.Email,
		"password": "wrong-password",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestLoginBlockedUser(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	user, _ := seedTestUser(db, "Blocked", 0, false)
	db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_blocked", true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]interface{}{
		"email":    user.Email,
		"password": "password123",
	}))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestGetProfile(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	user, token := seedTestUser(db, "Profile User", 42, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp["id"] != user.ID.String() {
		t.Errorf("expected id %s, got %v", user.ID, resp["id"])
	}
	if resp["points"].(float64) != 42 {
		t.Errorf("expected 42 points, got %v", resp["points"])
	}
}

func TestUpdateProfile(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	_, token := seedTestUser(db, "Old Name", 0, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("PUT", "/api/auth/profile", map[string]interface{}{
		"name":  "New Name",
		"phone": "+123456",
	}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["name"] != "New Name" {
		t.Errorf("expected name updated, got %v", resp["name"])
	}
	if resp["phone"] != "+123456" {
		t.Errorf("expected phone updated, got %v", resp["phone"])
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]interface{}{
		"telegram_id": "777",
		"name":        "Refresher",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	refreshToken := parseResponse(w)["refresh_token"].(string)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]interface{}{
		"refresh_token": refreshToken,
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The old token is revoked; a second use must fail.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]interface{}{
		"refresh_token": refreshToken,
	}))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 on reused refresh token, got %d", w.Code)
	}
}
