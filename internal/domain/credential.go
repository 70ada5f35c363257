package domain

import "time"

// Credential is the auth identity backing a user account. It is provisioned
// and removed by admin operations, separately from the user row.
type Credential struct {
	ID                 int64
	Username           string
	PasswordHash       string
	MustChangePassword bool
	CreatedAt          time.Time
}
