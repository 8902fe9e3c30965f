// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for RenoHub.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration. WAFFLE's CoreConfig handles
// framework-level settings like HTTP ports, TLS, and log levels; everything
// specific to this application lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionDomain string // Cookie domain (blank means current host)

	// CSRF protection
	CSRFKey string // key for signing CSRF tokens; falls back to SessionKey when blank

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit, email-smtp.us-east-1.amazonaws.com for SES)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., invites@renohub.com)

	// Base URL used in emailed invitation links
	BaseURL string // e.g., "https://renohub.com" or "http://localhost:3000"

	// Invitation lifecycle
	InviteExpiry        time.Duration // how long an invitation stays open
	InviteSweepInterval time.Duration // how often the background sweep expires lapsed invitations

	// Audit logging settings ("all", "db", "log", or "off")
	AuditLogAuth     string
	AuditLogActivity string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Site branding
	SiteName string
}
