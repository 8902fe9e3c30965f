package mailer_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/renohub/internal/app/system/mailer"
)

func TestBuildInvitationEmail(t *testing.T) {
	data := mailer.InvitationEmailData{
		SiteName:       "RenoHub",
		InviterName:    "Alice Smith",
		RenovationName: "Kitchen Remodel",
		AcceptLink:     "https://renohub.example/invitation?token=abc-123",
		DeclineLink:    "https://renohub.example/decline-invitation?token=abc-123",
		ExpiresIn:      "7 days",
	}

	msg := mailer.BuildInvitationEmail(data)

	if !strings.Contains(msg.Subject, "Alice Smith") {
		t.Errorf("subject missing inviter name: %q", msg.Subject)
	}
	if !strings.Contains(msg.Subject, "Kitchen Remodel") {
		t.Errorf("subject missing renovation name: %q", msg.Subject)
	}

	for _, body := range []string{msg.TextBody, msg.HTMLBody} {
		if !strings.Contains(body, data.AcceptLink) {
			t.Error("body missing accept link")
		}
		if !strings.Contains(body, data.DeclineLink) {
			t.Error("body missing decline link")
		}
		if !strings.Contains(body, "7 days") {
			t.Error("body missing expiry")
		}
	}
}

func TestBuildInvitationEmail_EscapesHTML(t *testing.T) {
	data := mailer.InvitationEmailData{
		SiteName:       "RenoHub",
		InviterName:    "<script>alert(1)</script>",
		RenovationName: "Kitchen",
		AcceptLink:     "https://renohub.example/invitation?token=abc",
		DeclineLink:    "https://renohub.example/decline-invitation?token=abc",
		ExpiresIn:      "7 days",
	}

	msg := mailer.BuildInvitationEmail(data)
	if strings.Contains(msg.HTMLBody, "<script>") {
		t.Error("HTML body should escape inviter name")
	}
}
