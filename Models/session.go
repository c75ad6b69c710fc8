package Models

import (
	"log"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// SessionSnapshot is the last-known resolved user, persisted so a role can
// still be produced when the database read fails. Never the source of truth
// while the database is reachable.
type SessionSnapshot struct {
	UserID      uint      `json:"uid" gorm:"primaryKey"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName string    `json:"displayName"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (SessionSnapshot) TableName() string {
	return "session_snapshots"
}

var (
	sessionMu    sync.RWMutex
	sessionCache = make(map[uint]User)
)

// ResolveUser resolves an authenticated principal to a User with a role.
// Resolution order: process cache, fresh database read, persisted snapshot,
// then a minimal least-privilege default. A request must never hang or fail
// outright on the role lookup, so every step degrades instead of erroring.
func ResolveUser(db *gorm.DB, uid uint) User {
	sessionMu.RLock()
	cached, ok := sessionCache[uid]
	sessionMu.RUnlock()
	if ok {
		return cached
	}

	var user User
	if err := db.First(&user, uid).Error; err == nil {
		if !ValidRole(user.Role) {
			user.Role = RoleEmployee
		}
		rememberUser(db, user)
		return user
	} else if err != gorm.ErrRecordNotFound {
		log.Printf("Warning: user %d lookup failed, trying snapshot: %v", uid, err)
	}

	var snap SessionSnapshot
	if err := db.First(&snap, uid).Error; err == nil {
		role := snap.Role
		if !ValidRole(role) {
			role = RoleEmployee
		}
		return User{
			ID:          snap.UserID,
			Email:       snap.Email,
			DisplayName: snap.DisplayName,
			Role:        role,
		}
	}

	// Least-privileged default. A role is never escalated by a fallback.
	return User{
		ID:   uid,
		Role: RoleEmployee,
	}
}

// rememberUser refreshes the cache and the persisted snapshot for uid.
func rememberUser(db *gorm.DB, user User) {
	sessionMu.Lock()
	sessionCache[user.ID] = user
	sessionMu.Unlock()

	snap := SessionSnapshot{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
		DisplayName: user.DisplayName,
		LastUpdated: time.Now(),
	}
	if err := db.Save(&snap).Error; err != nil {
		log.Printf("Warning: failed to persist session snapshot for %d: %v", user.ID, err)
	}
}

// ForgetUser drops the cached user and its snapshot. Called on logout and
// whenever a user record changes.
func ForgetUser(db *gorm.DB, uid uint) {
	sessionMu.Lock()
	delete(sessionCache, uid)
	sessionMu.Unlock()

	if err := db.Delete(&SessionSnapshot{}, uid).Error; err != nil {
		log.Printf("Warning: failed to remove session snapshot for %d: %v", uid, err)
	}
}

// ResetSessionCache clears the in-process cache. Used by tests.
func ResetSessionCache() {
	sessionMu.Lock()
	sessionCache = make(map[uint]User)
	sessionMu.Unlock()
}

// DeriveDisplayName produces a display name from the local part of an email
// address. Used when a user registers without one and by the default
// fallback.
func DeriveDisplayName(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
