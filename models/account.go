package models

import (
	"encoding/json"
	"time"
)

// DefaultAvatarURL is assigned to every newly registered account.
const DefaultAvatarURL = "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D&auto=format&fit=crop&w=1170&q=80"

// Account is a registered user together with their watchlist.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // bcrypt hash, never returned to clients
	Avatar       *string   `json:"avatar"`
	Watchlist    []int64   `json:"watchlist"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// MarshalJSON guarantees the watchlist is rendered as a list even when empty.
func (a Account) MarshalJSON() ([]byte, error) {
	type accountAlias Account // prevent recursion
	alias := accountAlias(a)
	if alias.Watchlist == nil {
		alias.Watchlist = []int64{}
	}
	return json.Marshal(alias)
}

// InWatchlist reports whether the title id is already saved.
func (a Account) InWatchlist(titleID int64) bool {
	for _, id := range a.Watchlist {
		if id == titleID {
			return true
		}
	}
	return false
}

// AccountStorage is the document persisted by the file and document stores.
// Unlike Account, it carries the password hash.
type AccountStorage struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"passwordHash" bson:"password_hash"`
	Avatar       *string   `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Watchlist    []int64   `json:"watchlist" bson:"watchlist"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// ToStorage converts an Account to AccountStorage for persistence.
func (a Account) ToStorage() AccountStorage {
	watchlist := a.Watchlist
	if watchlist == nil {
		watchlist = []int64{}
	}
	return AccountStorage{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Avatar:       a.Avatar,
		Watchlist:    watchlist,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToAccount converts an AccountStorage back to Account.
func (as AccountStorage) ToAccount() Account {
	watchlist := as.Watchlist
	if watchlist == nil {
		watchlist = []int64{}
	}
	return Account{
		ID:           as.ID,
		Name:         as.Name,
		Email:        as.Email,
		PasswordHash: as.PasswordHash,
		Avatar:       as.Avatar,
		Watchlist:    watchlist,
		CreatedAt:    as.CreatedAt,
		UpdatedAt:    as.UpdatedAt,
	}
}

// AccountUpdate is a partial update. Nil fields are left untouched.
type AccountUpdate struct {
	Name      *string
	Email     *string
	Avatar    *string
	Watchlist *[]int64
	UpdatedAt time.Time
}

// Apply returns a copy of the account with the update applied.
func (u AccountUpdate) Apply(a Account) Account {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.Avatar != nil {
		avatar := *u.Avatar
		a.Avatar = &avatar
	}
	if u.Watchlist != nil {
		a.Watchlist = append([]int64(nil), (*u.Watchlist)...)
		if a.Watchlist == nil {
			a.Watchlist = []int64{}
		}
	}
	if !u.UpdatedAt.IsZero() {
		a.UpdatedAt = u.UpdatedAt
	}
	return a
}
