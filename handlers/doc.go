// Package handlers contains the built-in HR request handlers:
// recruitment, employee management, onboarding and performance. Each
// embeds handler.Base for capability-based scoring and dispatches on
// keywords in the request text.
package handlers
