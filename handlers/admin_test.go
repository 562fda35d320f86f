package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loyaltybot-backend/models"
)

func TestGrantReward(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	admin, adminToken := seedTestUser(db, "Admin", 0, true)
	user, _ := seedTestUser(db, "Lucky", 0, false)
	reward := seedReward(db, "Coffee", 100, 5)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/grants", map[string]interface{}{
		"user_id":   user.ID,
		"reward_id": reward.ID,
	}, adminToken))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["cost_points"].(float64) != 0 {
		t.Errorf("expected zero-cost grant, got %v", resp["cost_points"])
	}
	if resp["granted_by"] != admin.ID.String() {
		t.Errorf("expected granted_by %s, got %v", admin.ID, resp["granted_by"])
	}

	// Grants never touch the ledger or the balance.
	var stored models.User
	db.First(&stored, "id = ?", user.ID)
	if stored.Points != 0 {
		t.Errorf("expected balance unchanged, got %d", stored.Points)
	}
}

func TestGrantRewardUnknownUser(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	_, adminToken := seedTestUser(db, "Admin", 0, true)
	reward := seedReward(db, "Coffee", 100, 5)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/grants", map[string]interface{}{
		"user_id":   "00000000-0000-0000-0000-000000000001",
		"reward_id": reward.ID,
	}, adminToken))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPendingGrantLifecycle(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	_, adminToken := seedTestUser(db, "Admin", 0, true)
	user, _ := seedTestUser(db, "Lucky", 0, false)
	reward := seedReward(db, "Coffee", 100, 5)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/pending-grants", map[string]interface{}{
		"user_id":   user.ID,
		"reward_id": reward.ID,
	}, adminToken))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	grantID := parseResponse(w)["id"].(string)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/pending-grants/"+grantID+"/resolve", nil, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	claim := parseResponse(w)
	if claim["user_id"] != user.ID.String() {
		t.Errorf("expected claim for %s, got %v", user.ID, claim["user_id"])
	}

	// Second resolve must refuse: the grant is single use.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/pending-grants/"+grantID+"/resolve", nil, adminToken))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on reuse, got %d: %s", w.Code, w.Body.String())
	}
}

func TestResolveExpiredPendingGrant(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	admin, adminToken := seedTestUser(db, "Admin", 0, true)
	user, _ := seedTestUser(db, "Lucky", 0, false)
	reward := seedReward(db, "Coffee", 100, 5)

	grant := models.PendingGrant{
		AdminID:   admin.ID,
		UserID:    user.ID,
		RewardID:  reward.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	db.Create(&grant)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/pending-grants/"+grant.ID.String()+"/resolve", nil, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateClaimStatusDeliver(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	_, adminToken := seedTestUser(db, "Admin", 0, true)
	user, _ := seedTestUser(db, "Lucky", 0, false)
	reward := seedReward(db, "Coffee", 100, 5)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/grants", map[string]interface{}{
		"user_id":   user.ID,
		"reward_id": reward.ID,
	}, adminToken))
	if w.Code != http.StatusCreated {
		t.Fatalf("grant failed: %d", w.Code)
	}
	claimID := parseResponse(w)["id"].(string)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("PUT", "/api/admin/claims/"+claimID+"/status", map[string]interface{}{
		"status": "delivered",
	}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["status"] != "delivered" {
		t.Errorf("expected delivered, got %v", resp["status"])
	}
	if resp["delivered_at"] == nil {
		t.Error("expected delivered_at set")
	}

	// Delivered is terminal.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("PUT", "/api/admin/claims/"+claimID+"/status", map[string]interface{}{
		"status": "cancelled",
	}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetClaimsPaged(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	_, adminToken := seedTestUser(db, "Admin", 0, true)
	user, _ := seedTestUser(db, "Lucky", 0, false)
	reward := seedReward(db, "Coffee", 100, 10)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, authRequest("POST", "/api/admin/grants", map[string]interface{}{
			"user_id":   user.ID,
			"reward_id": reward.ID,
		}, adminToken))
		if w.Code != http.StatusCreated {
			t.Fatalf("grant failed: %d", w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/admin/claims?page=1&limit=2", nil, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp["total"].(float64) != 3 {
		t.Errorf("expected total 3, got %v", resp["total"])
	}
	if len(resp["claims"].([]interface{})) != 2 {
		t.Errorf("expected 2 claims on page, got %v", resp["claims"])
	}
	if resp["pages"].(float64) != 2 {
		t.Errorf("expected 2 pages, got %v", resp["pages"])
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/admin/claims?status=delivered", nil, adminToken))
	resp = parseResponse(w)
	if resp["total"].(float64) != 0 {
		t.Errorf("expected no delivered claims, got %v", resp["total"])
	}
}

func TestBroadcastEndpoint(t *testing.T) {
	db := freshDB()
	sender := &recordingSender{}
	r := setupAdminRouter(db, sender)
	_, adminToken := seedTestUser(db, "Admin", 0, true)
	seedTestUser(db, "One", 0, false)
	seedTestUser(db, "Two", 0, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/broadcast", map[string]interface{}{
		"text": "hello everyone",
	}, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["success_count"].(float64) != 3 {
		t.Errorf("expected 3 successful sends, got %v", resp["success_count"])
	}
	if sender.count() != 3 {
		t.Errorf("expected 3 deliveries, got %d", sender.count())
	}
}

func TestBroadcastUsersSegment(t *testing.T) {
	db := freshDB()
	sender := &recordingSender{}
	r := setupAdminRouter(db, sender)
	_, adminToken := seedTestUser(db, "Admin", 0, true)
	seedTestUser(db, "One", 0, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/broadcast", map[string]interface{}{
		"segment": "users",
		"text":    "members only",
	}, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if sender.count() != 1 {
		t.Errorf("expected 1 delivery, got %d", sender.count())
	}
}

func TestBroadcastValidation(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, &recordingSender{})
	_, adminToken := seedTestUser(db, "Admin", 0, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/broadcast", map[string]interface{}{
		"segment": "nobody",
		"text":    "hi",
	}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad segment, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/admin/broadcast", map[string]interface{}{
		"segment": "all",
	}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing text, got %d", w.Code)
	}
}

func TestListUsersSearch(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	_, adminToken := seedTestUser(db, "Admin", 0, true)
	seedTestUser(db, "Alice Smith", 0, false)
	seedTestUser(db, "Bob Jones", 0, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/admin/users?search=alice", nil, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	users := resp["users"].([]interface{})
	if len(users) != 1 {
		t.Fatalf("expected 1 match, got %d", len(users))
	}
	if users[0].(map[string]interface{})["name"] != "Alice Smith" {
		t.Errorf("unexpected match: %v", users[0])
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/admin/users", nil, adminToken))
	resp = parseResponse(w)
	if resp["total"].(float64) != 3 {
		t.Errorf("expected total 3, got %v", resp["total"])
	}
}

func TestSetAdmin(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	_, adminToken := seedTestUser(db, "Admin", 0, true)
	user, _ := seedTestUser(db, "Promoted", 0, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+user.ID.String()+"/admin", map[string]interface{}{
		"is_admin": true,
	}, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.User
	db.First(&stored, "id = ?", user.ID)
	if !stored.IsAdmin {
		t.Error("expected user promoted")
	}
}

func TestSetAdminSelfDemoteBlocked(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	admin, adminToken := seedTestUser(db, "Admin", 0, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+admin.ID.String()+"/admin", map[string]interface{}{
		"is_admin": false,
	}, adminToken))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSetBlocked(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	admin, adminToken := seedTestUser(db, "Admin", 0, true)
	user, _ := seedTestUser(db, "Trouble", 0, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+user.ID.String()+"/block", map[string]interface{}{
		"is_blocked": true,
	}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.User
	db.First(&stored, "id = ?", user.ID)
	if !stored.IsBlocked {
		t.Error("expected user blocked")
	}

	// Self-block is refused.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+admin.ID.String()+"/block", map[string]interface{}{
		"is_blocked": true,
	}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 on self-block, got %d", w.Code)
	}
}

func TestGetSessionCreatesIdle(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	_, adminToken := seedTestUser(db, "Admin", 0, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/admin/session", nil, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["state"] != "idle" {
		t.Errorf("expected idle, got %v", resp["state"])
	}
}

func TestUpdateSessionTransitions(t *testing.T) {
	db := freshDB()
	r := setupAdminRouter(db, nil)
	_, adminToken := seedTestUser(db, "Admin", 0, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("PUT", "/api/admin/session", map[string]interface{}{
		"state":   "points_amount",
		"context": `{"user_id":"abc"}`,
	}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["state"] != "points_amount" {
		t.Errorf("expected points_amount, got %v", resp["state"])
	}

	// broadcast is only reachable from idle.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("PUT", "/api/admin/session", map[string]interface{}{
		"state": "broadcast",
	}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("PUT", "/api/admin/session", map[string]interface{}{
		"state": "points_reason",
	}, adminToken))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
