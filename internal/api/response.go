package api

import (
	"net/http"

	"github.com/hbomb79/Siphon/internal/youtube"
	"github.com/labstack/echo/v4"
)

// Stable machine-readable failure kinds. Clients branch on these rather
// than parsing human-readable messages.
const (
	ReasonURLNotPermitted = "url_not_permitted"
	ReasonValidation      = "validation"
	ReasonToolUnavailable = "tool_unavailable"
	ReasonToolTimeout     = "tool_timeout"
	ReasonToolError       = "tool_error"
	ReasonOutputInvalid   = "tool_output_invalid"
	ReasonThumbnailFetch  = "thumbnail_fetch_failed"
	ReasonInternal        = "internal"
)

type (
	responseKind int

	// Response is the single value a handler produces: exactly one of a
	// JSON payload, raw bytes with a content type, or a failure carrying
	// a machine-readable reason. Respond is the only serialisation path.
	Response struct {
		kind        responseKind
		status      int
		payload     any
		raw         []byte
		contentType string
		reason      string
		message     string
	}

	failureBody struct {
		Status  string `json:"status"`
		Reason  string `json:"reason,omitempty"`
		Message string `json:"message"`
	}
)

const (
	jsonResponse responseKind = iota
	rawResponse
	failureResponse
)

// JsonResponse wraps a payload for marshalling to the client with a 200.
func JsonResponse(payload any) Response {
	return JsonStatusResponse(http.StatusOK, payload)
}

// JsonStatusResponse wraps a payload for marshalling under a caller-chosen
// HTTP status, for the rare success-shaped body that is not a plain 200.
func JsonStatusResponse(status int, payload any) Response {
	return Response{kind: jsonResponse, status: status, payload: payload}
}

// RawResponse carries pre-encoded bytes which are written to the client
// verbatim under the provided content type.
func RawResponse(bytes []byte, contentType string) Response {
	return Response{kind: rawResponse, status: http.StatusOK, raw: bytes, contentType: contentType}
}

// FailureResponse builds an error response for the given reason kind; the
// HTTP status is derived from the reason.
func FailureResponse(reason string, message string) Response {
	return Response{kind: failureResponse, status: statusForReason(reason), reason: reason, message: message}
}

// MissingParamResponse is the fixed-shape rejection for a request missing
// a required query parameter. Unlike other failures it carries no reason
// kind; the body contains only the status and message keys.
func MissingParamResponse(param string) Response {
	return Response{
		kind:    failureResponse,
		status:  http.StatusBadRequest,
		message: "Missing '" + param + "' query parameter.",
	}
}

// FailureFromError classifies a domain error into a wire failure. The
// error types raised by the youtube package each map to a stable reason;
// anything unrecognized is reported as an internal fault.
func FailureFromError(err error) Response {
	switch err.(type) {
	case *youtube.URLNotPermittedError:
		return FailureResponse(ReasonURLNotPermitted, err.Error())
	case *youtube.ToolUnavailableError:
		return FailureResponse(ReasonToolUnavailable, err.Error())
	case *youtube.ToolTimeoutError:
		return FailureResponse(ReasonToolTimeout, err.Error())
	case *youtube.ToolFailureError:
		return FailureResponse(ReasonToolError, err.Error())
	case *youtube.OutputParseError:
		return FailureResponse(ReasonOutputInvalid, err.Error())
	case *youtube.ThumbnailFetchError:
		return FailureResponse(ReasonThumbnailFetch, err.Error())
	default:
		return FailureResponse(ReasonInternal, err.Error())
	}
}

// Respond writes the response to the client. Every handler return path
// funnels through here so identical failures serialise identically
// regardless of which endpoint produced them.
func Respond(ec echo.Context, response Response) error {
	switch response.kind {
	case rawResponse:
		return ec.Blob(response.status, response.contentType, response.raw)
	case failureResponse:
		return ec.JSON(response.status, failureBody{Status: "error", Reason: response.reason, Message: response.message})
	default:
		return ec.JSON(response.status, response.payload)
	}
}

func statusForReason(reason string) int {
	switch reason {
	case ReasonURLNotPermitted, ReasonValidation:
		return http.StatusBadRequest
	case ReasonToolUnavailable:
		return http.StatusServiceUnavailable
	case ReasonToolTimeout:
		return http.StatusGatewayTimeout
	case ReasonToolError, ReasonOutputInvalid, ReasonThumbnailFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
