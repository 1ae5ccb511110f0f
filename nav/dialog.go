package nav

import "github.com/turnwise/navkit/core/route"

// DialogKind tags the UI-facing dialog projection.
type DialogKind string

const (
	DialogNone              DialogKind = "none"
	DialogError             DialogKind = "error"
	DialogRouteConfirmation DialogKind = "route_confirmation"
)

// Dialog is the transient UI-facing prompt state. At most one dialog is
// active; publishing a new one supersedes the previous (the dialog signal
// enforces this).
type Dialog struct {
	Kind DialogKind

	// Error dialog fields.
	Title   string
	Message string

	// Route confirmation fields.
	Route       *route.Route
	IsSimulated bool
	Summary     string
}

// NoDialog clears the dialog projection.
func NoDialog() Dialog {
	return Dialog{Kind: DialogNone}
}

// ErrorDialog builds an error prompt.
func ErrorDialog(title, message string) Dialog {
	return Dialog{Kind: DialogError, Title: title, Message: message}
}

// RouteConfirmationDialog builds the proposal prompt shown before
// navigation starts.
func RouteConfirmationDialog(r *route.Route, isSimulated bool) Dialog {
	return Dialog{
		Kind:        DialogRouteConfirmation,
		Route:       r,
		IsSimulated: isSimulated,
		Summary:     r.Summary(),
	}
}
