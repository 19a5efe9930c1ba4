package store

import (
	"fmt"

	"lsmkv/pkg/dberrors"
)

func checkKey(op string, key []byte) error {
	if key == nil {
		return fmt.Errorf("%s: nil key: %w", op, dberrors.ErrInvalidArgument)
	}
	return nil
}
