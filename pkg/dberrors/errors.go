package dberrors

import "errors"

var (
	ErrClosed               = errors.New("lsmkv: closed")
	ErrInvalidArgument      = errors.New("lsmkv: invalid argument")
	ErrUnsupportedOperation = errors.New("lsmkv: unsupported operation")
	ErrCorruptedSegment     = errors.New("lsmkv: corrupted segment")
)
