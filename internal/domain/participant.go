package domain

import (
	"fmt"
	"time"
)

// Level is a Xenith verification stage (1..3).
type Level int

const (
	Level1 Level = 1
	Level2 Level = 2
	Level3 Level = 3
)

// Valid reports whether l is one of the three known levels.
func (l Level) Valid() bool { return l >= Level1 && l <= Level3 }

// Stamp is the key used for this level inside Participant.VerifiedAt.
func (l Level) Stamp() string { return fmt.Sprintf("level%d", int(l)) }

// Participant is the per-email Xenith progression record.
// PK: email. Level keys are unique across all participants.
type Participant struct {
	Email       string               `json:"email" dynamodbav:"email"`
	TeamName    string               `json:"teamName" dynamodbav:"team_name"`
	DisplayName string               `json:"displayName" dynamodbav:"display_name"`
	Level1Key   string               `json:"level1Key,omitempty" dynamodbav:"level1_key,omitempty"`
	Level2Key   string               `json:"level2Key,omitempty" dynamodbav:"level2_key,omitempty"`
	Level3Key   string               `json:"level3Key,omitempty" dynamodbav:"level3_key,omitempty"`
	VerifiedAt  map[string]time.Time `json:"verifiedAt" dynamodbav:"verified_at"`
	CreatedAt   time.Time            `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" dynamodbav:"updated_at"`
}

// KeyFor returns the issued key for level l, or "" if none.
func (p *Participant) KeyFor(l Level) string {
	switch l {
	case Level1:
		return p.Level1Key
	case Level2:
		return p.Level2Key
	case Level3:
		return p.Level3Key
	}
	return ""
}

// IssuedKey is the result of a key issuance: the stored key and whether it
// was already present before the call.
type IssuedKey struct {
	Key      string `json:"key"`
	Existing bool   `json:"existing"`
}
