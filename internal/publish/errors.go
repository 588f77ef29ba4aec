package publish

import "codeberg.org/vasker/fleetsim/internal/errors"

const (
	// Configuration errors (fatal at startup)
	ErrMissingToken    = errors.ErrMissingCredential
	ErrLoadTokens      = errors.ErrorCode("publish_load_tokens_failed")
	ErrInvalidProtocol = errors.ErrorCode("publish_invalid_protocol")

	// Transport errors (transient, retried by the scheduler)
	ErrConnect = errors.ErrorCode("publish_connect_failed")
	ErrPublish = errors.ErrDispatch
	ErrEncode  = errors.ErrorCode("publish_encode_failed")
	ErrStatus  = errors.ErrorCode("publish_bad_status")
	ErrTimeout = errors.ErrTimeout
)
