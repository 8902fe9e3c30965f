// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"

	"github.com/dalemusser/renohub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout, registration).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Activity controls logging for invitation, membership, and renovation events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Activity string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr with the port stripped
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.RenovationID != nil {
		fields = append(fields, zap.String("renovation_id", event.RenovationID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	// Determine which config setting applies based on event category
	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryInvitation, audit.CategoryMembership, audit.CategoryRenovation:
		setting = l.config.Activity
	default:
		setting = "all" // Default to logging everything for unknown categories
	}

	// Check if logging is disabled for this category
	if setting == "off" {
		return
	}

	// Log to zap if configured
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	// Log to MongoDB if configured
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"auth_method": authMethod,
			"email":       email,
		},
	})
}

// LoginFailedUserNotFound logs a failed login due to user not found.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user not found",
		Details: map[string]string{
			"attempted_email": attemptedEmail,
		},
	})
}

// LoginFailedWrongPassword logs a failed login due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "wrong password",
		Details: map[string]string{
			"email": email,
		},
	})
}

// Logout logs a user logout.
// Accepts the string ID from SessionUser and converts it to an ObjectID.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}

	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// UserRegistered logs a new account registration.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserRegistered,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"auth_method": authMethod,
			"email":       email,
		},
	})
}

// GoogleSignIn logs a completed Google OAuth sign-in.
func (l *Logger) GoogleSignIn(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventGoogleSignIn,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"email": email,
		},
	})
}

// --- Invitation Events ---

// InvitationSent logs an invitation being issued.
func (l *Logger) InvitationSent(ctx context.Context, r *http.Request, actorID, renovationID primitive.ObjectID, inviteeEmail string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryInvitation,
		EventType:    audit.EventInvitationSent,
		ActorID:      &actorID,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
		Details: map[string]string{
			"invitee_email": inviteeEmail,
		},
	})
}

// InvitationAccepted logs an invitation being accepted.
func (l *Logger) InvitationAccepted(ctx context.Context, r *http.Request, userID, renovationID primitive.ObjectID, inviteeEmail string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryInvitation,
		EventType:    audit.EventInvitationAccepted,
		UserID:       &userID,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
		Details: map[string]string{
			"invitee_email": inviteeEmail,
		},
	})
}

// InvitationDeclined logs an invitation being declined.
func (l *Logger) InvitationDeclined(ctx context.Context, r *http.Request, renovationID primitive.ObjectID, inviteeEmail string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryInvitation,
		EventType:    audit.EventInvitationDeclined,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
		Details: map[string]string{
			"invitee_email": inviteeEmail,
		},
	})
}

// InvitationRevoked logs an owner revoking a pending invitation.
func (l *Logger) InvitationRevoked(ctx context.Context, r *http.Request, actorID, renovationID primitive.ObjectID, inviteeEmail string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryInvitation,
		EventType:    audit.EventInvitationRevoked,
		ActorID:      &actorID,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
		Details: map[string]string{
			"invitee_email": inviteeEmail,
		},
	})
}

// --- Membership Events ---

// MemberJoined logs a user becoming a member of a renovation.
func (l *Logger) MemberJoined(ctx context.Context, r *http.Request, userID, renovationID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryMembership,
		EventType:    audit.EventMemberJoined,
		UserID:       &userID,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
	})
}

// MemberRemoved logs the owner removing a member.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorID, targetUserID, renovationID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryMembership,
		EventType:    audit.EventMemberRemoved,
		UserID:       &targetUserID,
		ActorID:      &actorID,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
	})
}

// MemberLeft logs a member leaving a renovation on their own.
func (l *Logger) MemberLeft(ctx context.Context, r *http.Request, userID, renovationID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryMembership,
		EventType:    audit.EventMemberLeft,
		UserID:       &userID,
		ActorID:      &userID,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
	})
}

// --- Renovation Events ---

// RenovationCreated logs a new renovation.
func (l *Logger) RenovationCreated(ctx context.Context, r *http.Request, actorID, renovationID primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryRenovation,
		EventType:    audit.EventRenovationCreated,
		ActorID:      &actorID,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
		Details: map[string]string{
			"name": name,
		},
	})
}

// RenovationUpdated logs a renovation edit.
func (l *Logger) RenovationUpdated(ctx context.Context, r *http.Request, actorID, renovationID primitive.ObjectID, fieldsChanged string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryRenovation,
		EventType:    audit.EventRenovationUpdated,
		ActorID:      &actorID,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
		Details: map[string]string{
			"fields_changed": fieldsChanged,
		},
	})
}

// RenovationDeleted logs a renovation delete, including the cascade.
func (l *Logger) RenovationDeleted(ctx context.Context, r *http.Request, actorID, renovationID primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryRenovation,
		EventType:    audit.EventRenovationDeleted,
		ActorID:      &actorID,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
		Details: map[string]string{
			"name": name,
		},
	})
}

// VisibilityChanged logs a renovation going public or private.
func (l *Logger) VisibilityChanged(ctx context.Context, r *http.Request, actorID, renovationID primitive.ObjectID, isPublic bool) {
	eventType := audit.EventRenovationMadePrivate
	if isPublic {
		eventType = audit.EventRenovationMadePublic
	}
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryRenovation,
		EventType:    eventType,
		ActorID:      &actorID,
		RenovationID: &renovationID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
	})
}
