package syncx

import "github.com/linkvault/linkvault/internal/remote"

// IdentifierReconciler translates between a category's permanent local UUID
// and the identifier assigned by the remote store. It holds no state beyond
// a lookup table built once per pass from a remote listing; category upserts
// performed during the same pass feed their server-assigned ids back in via
// Add so that bookmarks uploaded afterwards resolve fresh categories.
type IdentifierReconciler struct {
	localToRemote map[string]string
	remoteToLocal map[string]string
}

// NewIdentifierReconciler builds the bidirectional map from a user's remote
// category records. Records without a local_id are skipped: nothing local
// can reference them.
func NewIdentifierReconciler(cats []remote.CategoryRecord) *IdentifierReconciler {
	r := &IdentifierReconciler{
		localToRemote: make(map[string]string, len(cats)),
		remoteToLocal: make(map[string]string, len(cats)),
	}
	for _, c := range cats {
		if c.LocalID == "" || c.ID == "" {
			continue
		}
		r.Add(c.LocalID, c.ID)
	}
	return r
}

// Add records a mapping, replacing any previous entry for either id.
func (r *IdentifierReconciler) Add(localID, remoteID string) {
	r.localToRemote[localID] = remoteID
	r.remoteToLocal[remoteID] = localID
}

// RemoteID resolves a local category UUID to its remote identifier.
func (r *IdentifierReconciler) RemoteID(localID string) (string, bool) {
	id, ok := r.localToRemote[localID]
	return id, ok
}

// LocalID resolves a remote category identifier to its local UUID.
func (r *IdentifierReconciler) LocalID(remoteID string) (string, bool) {
	id, ok := r.remoteToLocal[remoteID]
	return id, ok
}
