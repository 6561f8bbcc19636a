package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestAppGraphIsComplete(t *testing.T) {
	// граф собирается целиком: каждый модуль находит свои зависимости
	require.NoError(t, fx.ValidateApp(appOptions()...))
}
