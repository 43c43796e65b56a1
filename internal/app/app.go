package app

import (
	"go.uber.org/fx"

	"github.com/sello-app/sello/internal/cache"
	"github.com/sello-app/sello/internal/config"
	"github.com/sello-app/sello/internal/logger"
	"github.com/sello-app/sello/internal/messaging"
	"github.com/sello-app/sello/internal/observability"
	httpserver "github.com/sello-app/sello/internal/server/http"
	serviceorder "github.com/sello-app/sello/internal/service/order"
	serviceqr "github.com/sello-app/sello/internal/service/qr"
	storeorder "github.com/sello-app/sello/internal/store/order"
	transporthttp "github.com/sello-app/sello/internal/transport/http"
	"github.com/sello-app/sello/internal/worker"
	workerorder "github.com/sello-app/sello/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	storeorder.Module,
	serviceorder.Module,
	serviceqr.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background event processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
