package pagewriter

import (
	"fmt"
	"net/http"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

// LandingPageOpts is the content of one of the login flow's terminal pages.
type LandingPageOpts struct {
	Status  int
	Header  string
	Message string
}

const authenticationFailedHeader = "Authentication Failed"

// LoggedOut is the page shown after a logout.
func LoggedOut() LandingPageOpts {
	return LandingPageOpts{
		Status:  http.StatusOK,
		Header:  "Logged out",
		Message: "You have been successfully logged out",
	}
}

// Unauthorized is the page shown when the authorization predicate rejects
// an authenticated user.
func Unauthorized() LandingPageOpts {
	return LandingPageOpts{
		Status:  http.StatusForbidden,
		Header:  authenticationFailedHeader,
		Message: "Your canvas account is unauthorized to view this resource",
	}
}

// LoginFailure is the page shown when the login flow could not complete.
// A non-empty reason is appended in parentheses.
func LoginFailure(reason string) LandingPageOpts {
	msg := "Login could not be completed."
	if reason != "" {
		msg += " (" + reason + ")"
	}
	return LandingPageOpts{
		Status:  http.StatusForbidden,
		Header:  authenticationFailedHeader,
		Message: msg,
	}
}

// WriteLandingPage renders the landing template with opts.
func (w *Writer) WriteLandingPage(rw http.ResponseWriter, _ *http.Request, opts LandingPageOpts) {
	w.render(rw, landingTemplateName, page{
		Header:     opts.Header,
		Message:    opts.Message,
		StatusCode: opts.Status,
	})
}

// errorMessages are shown for these statuses unless debug is on or the
// caller supplies its own message.
var errorMessages = map[int]string{
	http.StatusInternalServerError: "Oops! Something went wrong. For more information contact your server administrator.",
	http.StatusNotFound:            "We could not find the resource you were looking for.",
	http.StatusForbidden:           "You do not have permission to access this resource.",
	http.StatusUnauthorized:        "You need to be logged in to access this resource.",
	http.StatusBadGateway:          "There was a problem connecting to the upstream server.",
}

// ErrorPageOpts is the content of an error page.
type ErrorPageOpts struct {
	Status int
	// RedirectURL, when set, adds a "Sign in again" link returning there.
	RedirectURL string
	RequestID   string
	// AppError is the underlying error. It is only shown in debug mode.
	AppError string
	// Messages is a format string and its arguments.
	Messages []interface{}
}

// WriteErrorPage renders the error template with opts.
func (w *Writer) WriteErrorPage(rw http.ResponseWriter, opts ErrorPageOpts) {
	w.render(rw, errorTemplateName, page{
		Header:     http.StatusText(opts.Status),
		Message:    w.errorMessage(opts),
		StatusCode: opts.Status,
		LoginURL:   w.loginURL,
		Redirect:   opts.RedirectURL,
		RequestID:  opts.RequestID,
	})
}

func (w *Writer) errorMessage(opts ErrorPageOpts) string {
	switch {
	case w.debug:
		return opts.AppError
	case len(opts.Messages) > 0:
		return fmt.Sprintf(fmt.Sprint(opts.Messages[0]), opts.Messages[1:]...)
	}
	if msg, ok := errorMessages[opts.Status]; ok {
		return msg
	}
	return "Unknown error"
}

// ProxyErrorHandler renders a bad gateway page when the upstream cannot be
// reached.
func (w *Writer) ProxyErrorHandler(rw http.ResponseWriter, req *http.Request, proxyErr error) {
	logger.Errorf("Error proxying to upstream server: %v", proxyErr)
	w.WriteErrorPage(rw, ErrorPageOpts{
		Status:    http.StatusBadGateway,
		RequestID: requestID(req),
		AppError:  proxyErr.Error(),
	})
}
