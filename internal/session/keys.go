package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Durable storage keys. The mia_ prefix namespaces them against anything else
// sharing the device store.
const (
	keySessionID       = "mia_session_id"
	keyLastUserID      = "mia_last_user_id"
	keyPendingInvite   = "mia_pending_invite"
	keyPendingMetaLink = "mia_pending_meta_link"
)

// newSessionID mints a client-side session identifier. The timestamp makes
// ids sortable in backend logs; the uuid fragment makes collisions between
// devices minted in the same millisecond a non-issue.
func newSessionID(now time.Time) string {
	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), fragment)
}
