package logging

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)

	if conversationID := ConversationIDFromContext(ctx); conversationID != "" {
		fields = append(fields, zap.String("conversation.id", conversationID))
	}
	if analysisID := AnalysisIDFromContext(ctx); analysisID != "" {
		fields = append(fields, zap.String("analysis.id", analysisID))
	}

	return fields
}

// Context key types
type conversationCtxKey struct{}
type analysisCtxKey struct{}
type loggerCtxKey struct{}

const maxIDLen = 128

// idPattern allows alphanumeric, hyphen, underscore.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateID validates a conversation or analysis ID. IDs come from
// callers (including CLI flags), so the check is exported for use before
// an ID reaches the panicking context setters.
func ValidateID(id, name string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%s contains invalid UTF-8", name)
	}
	if len(id) > maxIDLen {
		return fmt.Errorf("%s exceeds max length %d", name, maxIDLen)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (must be alphanumeric, hyphen, underscore)", name)
	}
	return nil
}

// ConversationIDFromContext extracts conversation ID from context.
func ConversationIDFromContext(ctx context.Context) string {
	if c, ok := ctx.Value(conversationCtxKey{}).(string); ok {
		return c
	}
	return ""
}

// WithConversationID adds conversation ID to context.
// Panics if conversationID is empty or contains invalid characters.
func WithConversationID(ctx context.Context, conversationID string) context.Context {
	if err := ValidateID(conversationID, "conversationID"); err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	return context.WithValue(ctx, conversationCtxKey{}, conversationID)
}

// AnalysisIDFromContext extracts analysis ID from context.
func AnalysisIDFromContext(ctx context.Context) string {
	if a, ok := ctx.Value(analysisCtxKey{}).(string); ok {
		return a
	}
	return ""
}

// WithAnalysisID adds analysis ID to context.
// Panics if analysisID is empty or contains invalid characters.
func WithAnalysisID(ctx context.Context, analysisID string) context.Context {
	if err := ValidateID(analysisID, "analysisID"); err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	return context.WithValue(ctx, analysisCtxKey{}, analysisID)
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
