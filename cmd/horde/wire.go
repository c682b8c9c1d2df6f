//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
)

func initApp(cfg Config) (*App, func(), error) {
	wire.Build(provideLogger, provideRecorder, provideWorld, newApp)
	return nil, nil, nil
}
