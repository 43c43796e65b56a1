package http

import (
	"go.uber.org/fx"

	ordertransport "github.com/sello-app/sello/internal/transport/http/order"
	qrtransport "github.com/sello-app/sello/internal/transport/http/qr"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	qrtransport.Module,
)
