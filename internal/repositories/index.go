package repositories

import "usermgmt/internal/models"

// UserIndex is the in-memory record set, keyed by id and kept in insertion order.
// It does no locking; its owner serializes access.
type UserIndex struct {
	order []string
	users map[string]models.User
}

// NewUserIndex returns an empty index.
func NewUserIndex() *UserIndex {
	return &UserIndex{users: make(map[string]models.User)}
}

// Len returns the number of records.
func (ix *UserIndex) Len() int {
	return len(ix.order)
}

// Get returns the record with the given id.
func (ix *UserIndex) Get(id string) (models.User, bool) {
	u, ok := ix.users[id]
	return u, ok
}

// FindByEmail returns the record registered under email, compared exactly.
func (ix *UserIndex) FindByEmail(email string) (models.User, bool) {
	for _, id := range ix.order {
		if u := ix.users[id]; u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

// Put appends u, or replaces it in place when its id is already present.
func (ix *UserIndex) Put(u models.User) {
	if _, ok := ix.users[u.ID]; !ok {
		ix.order = append(ix.order, u.ID)
	}
	ix.users[u.ID] = u
}

// Delete removes id and returns the removed record with the position it held.
func (ix *UserIndex) Delete(id string) (models.User, int, bool) {
	u, ok := ix.users[id]
	if !ok {
		return models.User{}, -1, false
	}
	pos := 0
	for i, v := range ix.order {
		if v == id {
			pos = i
			break
		}
	}
	ix.order = append(ix.order[:pos], ix.order[pos+1:]...)
	delete(ix.users, id)
	return u, pos, true
}

// Restore puts a deleted record back at pos. A pos past the end appends.
func (ix *UserIndex) Restore(pos int, u models.User) {
	if _, ok := ix.users[u.ID]; ok {
		ix.users[u.ID] = u
		return
	}
	if pos < 0 || pos > len(ix.order) {
		pos = len(ix.order)
	}
	ix.order = append(ix.order, "")
	copy(ix.order[pos+1:], ix.order[pos:])
	ix.order[pos] = u.ID
	ix.users[u.ID] = u
}

// All returns a copy of every record in insertion order.
func (ix *UserIndex) All() []models.User {
	out := make([]models.User, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, ix.users[id])
	}
	return out
}
