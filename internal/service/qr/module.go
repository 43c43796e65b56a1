package qr

import "go.uber.org/fx"

// Module provides the QR service to Fx.
var Module = fx.Provide(NewService)
