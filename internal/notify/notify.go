// Package notify sends desktop notifications for submit outcomes.
package notify

import "github.com/gen2brain/beeep"

// Send shows a desktop notification, ignoring delivery errors: a missing
// notification daemon should never fail a submit.
func Send(title, message string) {
	_ = beeep.Notify(title, message, "")
}
