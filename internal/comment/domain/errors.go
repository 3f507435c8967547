package domain

import "errors"

var (
	ErrCommentNotFound   = errors.New("comment_not_found")
	ErrInvalidComment    = errors.New("invalid_comment")
	ErrAlreadyReplied    = errors.New("comment_already_replied")
	ErrReplyNotSupported = errors.New("comment_reply_not_supported_for_platform")
)
