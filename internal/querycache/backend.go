package querycache

import (
	"github.com/athebyme/gomarket-storefront/pkg/errors"
)

func isCacheMiss(err error) bool {
	return errors.Is(err, errors.ErrCacheMiss)
}
