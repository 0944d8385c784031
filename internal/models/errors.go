package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable response code carried in every envelope.
type Code string

// Success codes.
const (
	CodeOK                Code = "OK"
	CodeSignupSuccess     Code = "SIGNUP_SUCCESS"
	CodeLoginSuccess      Code = "LOGIN_SUCCESS"
	CodeLogoutSuccess     Code = "LOGOUT_SUCCESS"
	CodeAuthSuccess       Code = "AUTH_SUCCESS"
	CodeUserRetrieved     Code = "USER_RETRIEVED"
	CodeUserUpdated       Code = "USER_UPDATED"
	CodePasswordUpdated   Code = "PASSWORD_UPDATED"
	CodePostUploaded      Code = "POST_UPLOADED"
	CodePostsRetrieved    Code = "POSTS_RETRIEVED"
	CodePostRetrieved     Code = "POST_RETRIEVED"
	CodePostUpdated       Code = "POST_UPDATED"
	CodePostLikeUploaded  Code = "POSTLIKE_UPLOADED"
	CodeLikeDeleted       Code = "LIKE_DELETED"
	CodeCommentUploaded   Code = "COMMENT_UPLOADED"
	CodeCommentsRetrieved Code = "COMMENTS_RETRIEVED"
	CodeCommentUpdated    Code = "COMMENT_UPDATED"
	CodeImageUploaded     Code = "IMAGE_UPLOADED"
)

// Validation failures (400).
const (
	CodeInvalidRequest         Code = "INVALID_REQUEST"
	CodeInvalidRequestBody     Code = "INVALID_REQUEST_BODY"
	CodeMissingRequiredField   Code = "MISSING_REQUIRED_FIELD"
	CodeInvalidEmailFormat     Code = "INVALID_EMAIL_FORMAT"
	CodeInvalidPasswordFormat  Code = "INVALID_PASSWORD_FORMAT"
	CodeInvalidNicknameFormat  Code = "INVALID_NICKNAME_FORMAT"
	CodeInvalidFileURL         Code = "INVALID_FILE_URL"
	CodeInvalidTitleFormat     Code = "INVALID_TITLE_FORMAT"
	CodeInvalidContentFormat   Code = "INVALID_CONTENT_FORMAT"
	CodeInvalidCommentFormat   Code = "INVALID_COMMENT_FORMAT"
	CodeInvalidPostIDFormat    Code = "INVALID_POSTID_FORMAT"
	CodeInvalidCommentIDFormat Code = "INVALID_COMMENTID_FORMAT"
	CodeInvalidImageIDFormat   Code = "INVALID_IMAGEID_FORMAT"
	CodeInvalidImageID         Code = "INVALID_IMAGE_ID"
	CodeInvalidPagination      Code = "INVALID_PAGINATION"
	CodePostFileLimitExceeded  Code = "POST_FILE_LIMIT_EXCEEDED"
	CodeCommentPostMismatch    Code = "COMMENT_POST_MISMATCH"
	CodeInvalidFileType        Code = "INVALID_FILE_TYPE"
	CodeInvalidImageFile       Code = "INVALID_IMAGE_FILE"
	CodeFileSizeExceeded       Code = "FILE_SIZE_EXCEEDED"
	CodeInvalidUploadType      Code = "INVALID_UPLOAD_TYPE"
)

// Authentication and authorization failures.
const (
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeForbidden          Code = "FORBIDDEN"
)

// Lookup failures (404).
const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeUserNotFound    Code = "USER_NOT_FOUND"
	CodePostNotFound    Code = "POST_NOT_FOUND"
	CodeCommentNotFound Code = "COMMENT_NOT_FOUND"
	CodeLikeNotFound    Code = "LIKE_NOT_FOUND"
	CodeImageNotFound   Code = "IMAGE_NOT_FOUND"
)

// Conflicts (409).
const (
	CodeConflict              Code = "CONFLICT"
	CodeEmailAlreadyExists    Code = "EMAIL_ALREADY_EXISTS"
	CodeNicknameAlreadyExists Code = "NICKNAME_ALREADY_EXISTS"
	CodeAlreadyLiked          Code = "ALREADY_LIKED"
)

// Transport-level and internal failures.
const (
	CodeMethodNotAllowed    Code = "METHOD_NOT_ALLOWED"
	CodePayloadTooLarge     Code = "PAYLOAD_TOO_LARGE"
	CodeUnprocessable       Code = "UNPROCESSABLE_ENTITY"
	CodeRateLimitExceeded   Code = "RATE_LIMIT_EXCEEDED"
	CodeInternalServerError Code = "INTERNAL_SERVER_ERROR"
	CodeDBError             Code = "DB_ERROR"
	CodeConstraintError     Code = "CONSTRAINT_ERROR"
	CodeStorageError        Code = "STORAGE_ERROR"
	CodeServiceUnavailable  Code = "SERVICE_UNAVAILABLE"
)

var codeStatus = map[Code]int{
	CodeOK:                http.StatusOK,
	CodeSignupSuccess:     http.StatusCreated,
	CodeLoginSuccess:      http.StatusOK,
	CodeLogoutSuccess:     http.StatusOK,
	CodeAuthSuccess:       http.StatusOK,
	CodeUserRetrieved:     http.StatusOK,
	CodeUserUpdated:       http.StatusOK,
	CodePasswordUpdated:   http.StatusOK,
	CodePostUploaded:      http.StatusCreated,
	CodePostsRetrieved:    http.StatusOK,
	CodePostRetrieved:     http.StatusOK,
	CodePostUpdated:       http.StatusOK,
	CodePostLikeUploaded:  http.StatusCreated,
	CodeLikeDeleted:       http.StatusOK,
	CodeCommentUploaded:   http.StatusCreated,
	CodeCommentsRetrieved: http.StatusOK,
	CodeCommentUpdated:    http.StatusOK,
	CodeImageUploaded:     http.StatusCreated,

	CodeInvalidRequest:         http.StatusBadRequest,
	CodeInvalidRequestBody:     http.StatusBadRequest,
	CodeMissingRequiredField:   http.StatusBadRequest,
	CodeInvalidEmailFormat:     http.StatusBadRequest,
	CodeInvalidPasswordFormat:  http.StatusBadRequest,
	CodeInvalidNicknameFormat:  http.StatusBadRequest,
	CodeInvalidFileURL:         http.StatusBadRequest,
	CodeInvalidTitleFormat:     http.StatusBadRequest,
	CodeInvalidContentFormat:   http.StatusBadRequest,
	CodeInvalidCommentFormat:   http.StatusBadRequest,
	CodeInvalidPostIDFormat:    http.StatusBadRequest,
	CodeInvalidCommentIDFormat: http.StatusBadRequest,
	CodeInvalidImageIDFormat:   http.StatusBadRequest,
	CodeInvalidImageID:         http.StatusBadRequest,
	CodeInvalidPagination:      http.StatusBadRequest,
	CodePostFileLimitExceeded:  http.StatusBadRequest,
	CodeCommentPostMismatch:    http.StatusBadRequest,
	CodeInvalidFileType:        http.StatusBadRequest,
	CodeInvalidImageFile:       http.StatusBadRequest,
	CodeFileSizeExceeded:       http.StatusBadRequest,
	CodeInvalidUploadType:      http.StatusBadRequest,

	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,

	CodeNotFound:        http.StatusNotFound,
	CodeUserNotFound:    http.StatusNotFound,
	CodePostNotFound:    http.StatusNotFound,
	CodeCommentNotFound: http.StatusNotFound,
	CodeLikeNotFound:    http.StatusNotFound,
	CodeImageNotFound:   http.StatusNotFound,

	CodeConflict:              http.StatusConflict,
	CodeEmailAlreadyExists:    http.StatusConflict,
	CodeNicknameAlreadyExists: http.StatusConflict,
	CodeAlreadyLiked:          http.StatusConflict,

	CodeMethodNotAllowed:    http.StatusMethodNotAllowed,
	CodePayloadTooLarge:     http.StatusRequestEntityTooLarge,
	CodeUnprocessable:       http.StatusUnprocessableEntity,
	CodeRateLimitExceeded:   http.StatusTooManyRequests,
	CodeInternalServerError: http.StatusInternalServerError,
	CodeDBError:             http.StatusInternalServerError,
	CodeConstraintError:     http.StatusInternalServerError,
	CodeStorageError:        http.StatusInternalServerError,
	CodeServiceUnavailable:  http.StatusServiceUnavailable,
}

// Status returns the HTTP status bound to the code. Unknown codes map to 500.
func (c Code) Status() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Known reports whether the code belongs to the closed set.
func (c Code) Known() bool {
	_, ok := codeStatus[c]
	return ok
}

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Code Code `json:"code"`
	Data any  `json:"data"`
}

// AppError represents a failure carrying a response code. Err holds the
// underlying cause for logs and is never rendered to clients.
type AppError struct {
	Code Code
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status for the error's code.
func (e *AppError) Status() int {
	return e.Code.Status()
}

// NewError returns an AppError for code.
func NewError(code Code) *AppError {
	return &AppError{Code: code}
}

// WrapError returns an AppError for code that keeps err as its cause.
func WrapError(code Code, err error) *AppError {
	return &AppError{Code: code, Err: err}
}

// Predefined error constructors
func NewNotFoundError(code Code) *AppError {
	if code == "" {
		code = CodeNotFound
	}
	return NewError(code)
}

func NewValidationError(code Code) *AppError {
	if code == "" {
		code = CodeInvalidRequest
	}
	return NewError(code)
}

func NewUnauthorizedError() *AppError {
	return NewError(CodeUnauthorized)
}

func NewForbiddenError() *AppError {
	return NewError(CodeForbidden)
}

func NewConflictError(code Code) *AppError {
	if code == "" {
		code = CodeConflict
	}
	return NewError(code)
}

func NewInternalError(err error) *AppError {
	return WrapError(CodeInternalServerError, err)
}

// NewDBError wraps a storage fault.
func NewDBError(err error) *AppError {
	return WrapError(CodeDBError, err)
}

// CodeOf extracts the response code from err. Errors that carry no code map
// to INTERNAL_SERVER_ERROR.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalServerError
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
