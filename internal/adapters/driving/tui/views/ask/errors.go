package ask

import "errors"

// ErrNoQueryService is returned when asking without a query service.
var ErrNoQueryService = errors.New("query service not available")
