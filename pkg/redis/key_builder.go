package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
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

func (kb *KeyBuilder) KeyLeaderboard(gameID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyLeaderboard, gameID))
}

func (kb *KeyBuilder) KeyQuestionSet(round int, suit string) string {
	return kb.BuildKey(fmt.Sprintf(KeyQuestionSet, round, suit))
}

func (kb *KeyBuilder) KeySubmitLock(teamID string, round, index int) string {
	return kb.BuildKey(fmt.Sprintf(KeySubmitLock, teamID, round, index))
}

func (kb *KeyBuilder) KeyViolation(teamID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyViolation, teamID))
}

func (kb *KeyBuilder) KeySessionRevoked(tokenID string) string {
	return kb.BuildKey(fmt.Sprintf(KeySessionRevoked, tokenID))
}

func (kb *KeyBuilder) KeyRateLimit(scope, ip string) string {
	return kb.BuildKey(fmt.Sprintf(KeyRateLimit, scope, ip))
}

// Pub/sub channels share the environment prefix so staging and prod never cross

func (kb *KeyBuilder) ChannelGameEvents(gameID string) string {
	return kb.BuildKey(fmt.Sprintf(ChannelGameEvents, gameID))
}

// ChannelGameEventsPattern matches every game channel
func (kb *KeyBuilder) ChannelGameEventsPattern() string {
	return kb.BuildKey(fmt.Sprintf(ChannelGameEvents, "*"))
}

// Generic key builders for custom patterns
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	key := fmt.Sprintf(pattern, args...)
	return kb.BuildKey(key)
}
