package state

import (
	"errors"
	"testing"

	"cmms/internal/models"
)

func TestUpdateUserKeepsStoredHash(t *testing.T) {
	app := setupState(t)

	u, err := app.AddUser(models.User{
		Name:         "Dana Fields",
		Initials:     "DF",
		Role:         models.RoleEmployee,
		PasswordHash: "original-hash",
	})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	u.Department = "Powder Coat"
	u.PasswordHash = ""
	updated, err := app.UpdateUser(u)
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Department != "Powder Coat" {
		t.Errorf("Department not updated: %q", updated.Department)
	}
	if updated.PasswordHash != "original-hash" {
		t.Errorf("Empty password hash overwrote the stored one: %q", updated.PasswordHash)
	}
}

func TestSetUserPassword(t *testing.T) {
	app := setupState(t)

	u, _ := app.AddUser(models.User{Name: "Dana Fields", Initials: "DF", PasswordHash: "old"})
	if err := app.SetUserPassword(u.ID, "new-hash"); err != nil {
		t.Fatalf("SetUserPassword: %v", err)
	}
	if app.Users()[0].PasswordHash != "new-hash" {
		t.Error("Password hash not replaced")
	}

	if err := app.SetUserPassword("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUserRemovesFromMemory(t *testing.T) {
	app := setupState(t)

	u, _ := app.AddUser(models.User{Name: "Dana Fields", Initials: "DF"})
	if err := app.DeleteUser(u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if len(app.Users()) != 0 {
		t.Error("User survived delete")
	}
}

func TestRecordLoginStampsLastLogin(t *testing.T) {
	app := setupState(t)

	u, _ := app.AddUser(models.User{Name: "Dana Fields", Initials: "DF"})
	app.RecordLogin(u.ID)
	if app.Users()[0].LastLogin == nil {
		t.Error("LastLogin not stamped")
	}
}

func TestRecordLoginFailedPersistLeavesMemoryUntouched(t *testing.T) {
	app := setupState(t)
	u, _ := app.AddUser(models.User{Name: "Dana Fields", Initials: "DF"})

	app.gw.Close()
	app.RecordLogin(u.ID)
	if app.Users()[0].LastLogin != nil {
		t.Error("Failed stamp committed to memory")
	}
}
