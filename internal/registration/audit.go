package registration

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// AuditLog is the append-only record of successful workshop registrations,
// one "<email> : <title>" line each.
type AuditLog struct {
	mu   sync.Mutex
	path string
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

func (a *AuditLog) Append(email, title string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if dir := filepath.Dir(a.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create audit log directory: %w", err)
		}
	}

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s : %s\n", email, title); err != nil {
		return fmt.Errorf("append audit line: %w", err)
	}
	return nil
}
