package domain

import "errors"

const (
	noticeTooLarge  = "Socrata API unable to process such a large incident request at the moment. Please try something smaller."
	noticeTransport = "Unable to reach the SF incident data service. Please try again later."
)

// NoticeFor returns the user-facing message for a failed query.
func NoticeFor(err error) string {
	switch {
	case errors.Is(err, ErrResponseNotList):
		return noticeTooLarge
	case errors.Is(err, ErrTransport):
		return noticeTransport
	default:
		return err.Error()
	}
}
