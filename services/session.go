package services

import (
	"strings"

	"github.com/google/uuid"
)

const namespacePrefix = "podcast_"

// SessionManager allocates retrieval namespaces. It holds no state, so one value can be
// shared by every request.
type SessionManager struct{}

func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// NewNamespace returns a fresh "podcast_<uuid>" namespace. Namespaces are never reused.
func (SessionManager) NewNamespace() string {
	return namespacePrefix + uuid.NewString()
}

// ValidNamespace reports whether ns has the shape produced by NewNamespace.
func ValidNamespace(ns string) bool {
	id, ok := strings.CutPrefix(ns, namespacePrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
