package service

import "errors"

var (
	ErrChatServiceNotConfigured = errors.New("chat service not configured")
	ErrInvalidRequest           = errors.New("invalid request")
	ErrModelInvocation          = errors.New("model invocation failed")
	ErrStorage                  = errors.New("storage failure")
	ErrRateLimited              = errors.New("rate limited")
	ErrFileExtraction           = errors.New("file extraction failed")
)
