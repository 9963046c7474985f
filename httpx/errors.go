package httpx

import "errors"

// ErrInsecureConnection is returned when the SSRF guard rejects a
// connection to a non-unicast address range.
var ErrInsecureConnection = errors.New("httpx: insecure connection (private/loopback/link-local address blocked)")

// ClassifyDialError normalizes a low-level dial/handshake error into one of
// the transport error codes named in spec.md §4.1 / §7.
func ClassifyDialError(err error) (code string, wrapped error) {
	if err == nil {
		return "", nil
	}
	if errors.Is(err, ErrInsecureConnection) {
		return "INSECURE_CONNECTION", err
	}
	if isCertificateError(err) {
		return "SSL_ERROR", err
	}
	if isDNSError(err) {
		return "DNS_RESOLUTION_FAILED", err
	}
	return "ENGINE_ERROR", err
}
