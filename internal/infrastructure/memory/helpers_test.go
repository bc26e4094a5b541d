package memory

import "context"

// Delete removes a user; their entries stay in the entry store.
func (r *UserRepo) Delete(_ context.Context, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[userID]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, userID)
	}
}
