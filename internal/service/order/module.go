package order

import (
	"go.uber.org/fx"

	"github.com/sello-app/sello/internal/qr"
)

// Module provides the order service and its default encoder to Fx.
var Module = fx.Options(
	fx.Provide(func() Encoder { return qr.Encode }),
	fx.Provide(NewService),
)
