package phpmyadmin

import "fmt"

// TransportError reports a request that failed to complete or came back
// with a non-2xx status.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthenticationError means the credentials were rejected, or the
// post-login page carried none of the known navigation markers.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("could not log in: %s", e.Reason)
}

// MarkupNotFoundError means an element this scraper depends on is absent
// from the page, usually because the console's markup has drifted.
type MarkupNotFoundError struct {
	What string
}

func (e *MarkupNotFoundError) Error() string {
	return fmt.Sprintf("markup not found: %s", e.What)
}

// FilenameError means the download response carried no usable
// Content-Disposition filename.
type FilenameError struct {
	Header string
}

func (e *FilenameError) Error() string {
	return fmt.Sprintf("could not determine backup filename from %q", e.Header)
}
