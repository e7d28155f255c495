package templates

import "fmt"

// RenderVerificationApprovedEmail generates the HTML body sent to a
// professional whose verification request was approved
func RenderVerificationApprovedEmail() string {
	body := `Hi there,

Great news! Your professional verification request has been approved.

Your account now carries a verified professional badge, and families using TeamLexia can find and book sessions with you.

Welcome aboard,
The TeamLexia Team`
	return RenderGenericEmail("You're Verified!", body)
}

// RenderVerificationRejectedEmail generates the HTML body sent to a
// professional whose verification request was rejected
func RenderVerificationRejectedEmail(reason string) string {
	body := `Hi there,

Thank you for submitting your professional verification request. After review, we were unable to approve it at this time.`
	if reason != "" {
		body += fmt.Sprintf(`

Reviewer notes: %s`, reason)
	}
	body += `

You are welcome to submit a new request with updated credentials or documentation.

The TeamLexia Team`
	return RenderGenericEmail("Verification Update", body)
}
