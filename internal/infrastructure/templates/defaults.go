package templates

// defaultTemplates are written by EnsureDefaults when missing.
var defaultTemplates = map[string]string{
	"header.md": "# User Accounts\n",
	"footer.md": "---\n\nThis message was sent automatically, please do not reply.\n",
	"email_verification.html": `<h1>Verify Your Account</h1>
<p>Hello {{name}},</p>
<p>Please confirm your email address by following the link below.</p>
<p><a href="{{verification_url}}">Verify Email</a></p>
<footer>If you did not create an account you can ignore this message.</footer>
`,
	"verification_email.md": `## Verify Your Account

Hello {{name}},

Please confirm your email address by following the link below.

[Verify Email]({{verification_url}})
`,
	"account_locked.md": `## Account Locked

Hello {{name}},

Your account has been locked after too many failed login attempts.
Please contact an administrator to unlock it.
`,
	"password_reset.md": `## Password Reset

Hello {{name}},

Follow the link below to choose a new password.

[Reset Password]({{reset_url}})

If you did not ask for a reset you can ignore this message.
`,
}
