// Package di provides dependency injection configuration for the clip
// caption service.
package di

import (
	"github.com/samber/do/v2"

	"github.com/droth0951/audio2-sub001/internal/config"
	"github.com/droth0951/audio2-sub001/internal/di/providers"
	"github.com/droth0951/audio2-sub001/internal/logger"
	"github.com/droth0951/audio2-sub001/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Transcription provider
	do.Provide(injector, providers.ProvideTranscriptionClient)

	// Business services
	do.Provide(injector, providers.ProvideClipService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap eagerly invokes every provider so startup failures surface
// immediately instead of on first request.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.TranscriptionClientHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.ClipService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
