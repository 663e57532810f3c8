// Package retry classifies upstream failures and retries retryable ones
// with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/aws/smithy-go"
	"github.com/go-playground/validator/v10"
)

type ErrorType string

const (
	NetworkError    ErrorType = "NETWORK_ERROR"
	TimeoutError    ErrorType = "TIMEOUT_ERROR"
	BedrockError    ErrorType = "BEDROCK_ERROR"
	ValidationError ErrorType = "VALIDATION_ERROR"
	UnknownError    ErrorType = "UNKNOWN_ERROR"
)

// User-facing messages per category.
const (
	msgTimeout      = "요청 시간이 초과되었습니다. 잠시 후 다시 시도해주세요."
	msgNetwork      = "네트워크 연결에 문제가 있습니다. 연결 상태를 확인해주세요."
	msgAccessDenied = "AI 서비스 접근 권한이 없습니다. 관리자에게 문의해주세요."
	msgRateLimited  = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."
	msgValidation   = "요청 형식이 올바르지 않습니다."
	msgUnknown      = "알 수 없는 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

// ErrValidation marks a locally detected schema or response-shape failure.
var ErrValidation = errors.New("validation failed")

// Error is a classified failure. It wraps the original error.
type Error struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var (
	timeoutCodes    = []string{"timeouterror", "requesttimeout", "requesttimeoutexception", "etimedout"}
	networkCodes    = []string{"enotfound", "econnrefused", "econnreset", "networkingerror"}
	validationCodes = []string{"validationexception", "validationerror"}
)

// Classify maps an error onto a category. Rules are checked in order and the
// first match wins; an already classified error is returned as is.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	code := strings.ToLower(errorCode(err))

	if isTimeout(err) || matches(code, timeoutCodes) {
		return &Error{Type: TimeoutError, Message: msgTimeout, Retryable: true, Err: err}
	}
	if isNetwork(err) || matches(code, networkCodes) {
		return &Error{Type: NetworkError, Message: msgNetwork, Retryable: true, Err: err}
	}
	switch httpStatus(err) {
	case 403:
		return &Error{Type: BedrockError, Message: msgAccessDenied, Retryable: false, Err: err}
	case 429:
		return &Error{Type: BedrockError, Message: msgRateLimited, Retryable: true, Err: err}
	}
	if isValidation(err) || matches(code, validationCodes) {
		return &Error{Type: ValidationError, Message: msgValidation, Retryable: false, Err: err}
	}
	return &Error{Type: UnknownError, Message: msgUnknown, Retryable: true, Err: err}
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func matches(code string, candidates []string) bool {
	if code == "" {
		return false
	}
	for _, c := range candidates {
		if code == c {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetwork(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

// httpStatus digs the HTTP status out of SDK response errors (or anything
// exposing HTTPStatusCode), returning 0 when absent.
func httpStatus(err error) int {
	var withStatus interface{ HTTPStatusCode() int }
	if errors.As(err, &withStatus) {
		return withStatus.HTTPStatusCode()
	}
	return 0
}

func isValidation(err error) bool {
	if errors.Is(err, ErrValidation) {
		return true
	}
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}
