package social

import (
	"errors"
	"fmt"
	"testing"

	"linkup/backend/internal/database"
	"linkup/backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
		FirstName:    "Test",
		LastName:     "User",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func TestAcceptRequestCreatesSymmetricEdge(t *testing.T) {
	db := testDB(t)
	graph := NewGraph(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	if err := graph.SendRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if err := graph.AcceptRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}

	// Both lookup directions must see the friendship.
	for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		friends, err := graph.AreFriends(pair[0], pair[1])
		if err != nil {
			t.Fatalf("AreFriends(%d, %d): %v", pair[0], pair[1], err)
		}
		if !friends {
			t.Errorf("AreFriends(%d, %d) = false, want true", pair[0], pair[1])
		}
	}

	// The pending request must be gone.
	pending, err := graph.HasPendingRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("HasPendingRequest: %v", err)
	}
	if pending {
		t.Error("pending request still exists after accept")
	}
}

func TestAcceptRequestWithoutPendingEdge(t *testing.T) {
	db := testDB(t)
	graph := NewGraph(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	err := graph.AcceptRequest(alice.ID, bob.ID)
	if !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("AcceptRequest without request = %v, want ErrRequestNotFound", err)
	}

	friends, _ := graph.AreFriends(alice.ID, bob.ID)
	if friends {
		t.Error("accept without a request must not create a friendship")
	}
}

func TestRejectRequestDeletesOnlyTheRequest(t *testing.T) {
	db := testDB(t)
	graph := NewGraph(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	if err := graph.SendRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if err := graph.RejectRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}

	pending, _ := graph.HasPendingRequest(alice.ID, bob.ID)
	if pending {
		t.Error("request still pending after reject")
	}
	friends, _ := graph.AreFriends(alice.ID, bob.ID)
	if friends {
		t.Error("reject must not create a friendship")
	}

	// The pair can try again after a rejection.
	if err := graph.SendRequest(alice.ID, bob.ID); err != nil {
		t.Errorf("re-send after reject: %v", err)
	}
}

func TestRevokeRequestIsIdempotent(t *testing.T) {
	db := testDB(t)
	graph := NewGraph(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	if err := graph.SendRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if err := graph.RevokeRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("RevokeRequest: %v", err)
	}
	// Revoking again is a no-op, not an error.
	if err := graph.RevokeRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("second RevokeRequest: %v", err)
	}
}

func TestSendRequestGuards(t *testing.T) {
	db := testDB(t)
	graph := NewGraph(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	if err := graph.SendRequest(alice.ID, alice.ID); !errors.Is(err, ErrSelfRequest) {
		t.Errorf("self request = %v, want ErrSelfRequest", err)
	}

	if err := graph.SendRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if err := graph.SendRequest(alice.ID, bob.ID); !errors.Is(err, ErrDuplicateRequest) {
		t.Errorf("duplicate request = %v, want ErrDuplicateRequest", err)
	}
	// A request in the opposite direction is also a duplicate.
	if err := graph.SendRequest(bob.ID, alice.ID); !errors.Is(err, ErrDuplicateRequest) {
		t.Errorf("reverse duplicate request = %v, want ErrDuplicateRequest", err)
	}

	if err := graph.AcceptRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	if err := graph.SendRequest(bob.ID, alice.ID); !errors.Is(err, ErrAlreadyFriends) {
		t.Errorf("request between friends = %v, want ErrAlreadyFriends", err)
	}
}

func TestRemoveFriendIsSymmetric(t *testing.T) {
	db := testDB(t)
	graph := NewGraph(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	if err := graph.SendRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if err := graph.AcceptRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}

	// Removal initiated by the receiver of the original request.
	if err := graph.RemoveFriend(bob.ID, alice.ID); err != nil {
		t.Fatalf("RemoveFriend: %v", err)
	}

	for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		friends, _ := graph.AreFriends(pair[0], pair[1])
		if friends {
			t.Errorf("AreFriends(%d, %d) = true after removal", pair[0], pair[1])
		}
	}

	if err := graph.RemoveFriend(bob.ID, alice.ID); !errors.Is(err, ErrNotFriends) {
		t.Errorf("second RemoveFriend = %v, want ErrNotFriends", err)
	}
}

func TestFriendsListsBothDirections(t *testing.T) {
	db := testDB(t)
	graph := NewGraph(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	// alice initiated one friendship, received the other.
	if err := graph.SendRequest(alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	if err := graph.AcceptRequest(alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	if err := graph.SendRequest(carol.ID, alice.ID); err != nil {
		t.Fatal(err)
	}
	if err := graph.AcceptRequest(carol.ID, alice.ID); err != nil {
		t.Fatal(err)
	}

	friends, err := graph.Friends(alice.ID)
	if err != nil {
		t.Fatalf("Friends: %v", err)
	}
	if len(friends) != 2 {
		t.Fatalf("len(Friends) = %d, want 2", len(friends))
	}

	count, _ := graph.FriendsCount(alice.ID)
	if count != 2 {
		t.Errorf("FriendsCount = %d, want 2", count)
	}

	bobCount, _ := graph.FriendsCount(bob.ID)
	if bobCount != 1 {
		t.Errorf("FriendsCount(bob) = %d, want 1", bobCount)
	}
}
