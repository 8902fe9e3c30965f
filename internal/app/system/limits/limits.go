// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxRenovationFormSize is the maximum size for renovation create/edit
	// form submissions. Descriptions are rich text so this is generous.
	MaxRenovationFormSize = 1 << 20 // 1 MB

	// MaxInviteFormSize is the maximum size for invitation form submissions.
	// An invite batch is a list of email addresses; 64 KB is far more than
	// any legitimate batch.
	MaxInviteFormSize = 64 << 10 // 64 KB

	// MaxInviteBatch is the maximum number of email addresses accepted in a
	// single invitation batch.
	MaxInviteBatch = 50
)
