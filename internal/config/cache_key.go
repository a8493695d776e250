package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session.
func (r *CacheKeyStruct) StudentSessionKey(studentEmail string) string {
	return fmt.Sprintf("login:%s", studentEmail)
}

// StudentAnswersKey returns the cache key for a student's buffered answers
// within a jam session.
func (r *CacheKeyStruct) StudentAnswersKey(sessionID, studentEmail string) string {
	return fmt.Sprintf("student:%s:session:%s:answers", studentEmail, sessionID)
}

// SessionPhaseKey returns the cache key for a session's current phase.
func (r *CacheKeyStruct) SessionPhaseKey(sessionID string) string {
	return fmt.Sprintf("session:%s:phase", sessionID)
}

// SessionEndAtKey returns the cache key for a session's advisory countdown end.
func (r *CacheKeyStruct) SessionEndAtKey(sessionID string) string {
	return fmt.Sprintf("session:%s:end_at", sessionID)
}

// SessionMonitorChannel returns the Redis PubSub channel for a session's
// live monitor stream.
func (r *CacheKeyStruct) SessionMonitorChannel(sessionID string) string {
	return fmt.Sprintf("session:%s:monitor", sessionID)
}

var CacheKey = NewCacheKeyStruct()
