package realtime

import (
	"fmt"

	"linguahub/internal/domain"
)

// ErrAnonymousConnection is returned when a connection without a
// verified identity attempts to register.
var ErrAnonymousConnection = fmt.Errorf("%w: connection has no verified identity", domain.ErrAuth)
