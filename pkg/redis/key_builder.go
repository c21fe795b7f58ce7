package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Entitlement key builders
func (kb *KeyBuilder) KeyMemberRoles(teamID int, address string) string {
	return kb.BuildKey(fmt.Sprintf(KeyMemberRoles, teamID, address))
}

// Action queue key builders
func (kb *KeyBuilder) KeyActionSummary(teamID int) string {
	return kb.BuildKey(fmt.Sprintf(KeyActionSummary, teamID))
}

// Election key builders
func (kb *KeyBuilder) KeyElectionResults(electionID int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyElectionResults, electionID))
}

func (kb *KeyBuilder) KeyElectionStatus(electionID int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyElectionStatus, electionID))
}

// Generic key builders for custom patterns
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	key := fmt.Sprintf(pattern, args...)
	return kb.BuildKey(key)
}
