package apperrors

import "net/http"

// HTTPStatus maps an error to the status code a handler responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUploadFailed:
		return http.StatusBadGateway
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message is the user-facing text for an error. Store and unknown failures
// get a generic notice.
func Message(err error) string {
	switch KindOf(err) {
	case KindNotFound, KindValidationFailed, KindConflict:
		return err.Error()
	case KindUploadFailed:
		return "upload failed"
	default:
		return "something went wrong"
	}
}
