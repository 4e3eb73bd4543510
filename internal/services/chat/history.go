// File: internal/services/chat/history.go
package chat

import "github.com/iyunix/go-counselor/internal/domain"

// RecentHistory returns the last window messages, oldest first, as a new slice.
func RecentHistory(messages []domain.Message, window int) []domain.Message {
	if window <= 0 || len(messages) == 0 {
		return nil
	}
	start := len(messages) - window
	if start < 0 {
		start = 0
	}
	return append([]domain.Message(nil), messages[start:]...)
}
