package main

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/medication-reminder/internal/application/usecase"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/memory"
	"github.com/oksasatya/medication-reminder/internal/session"
)

func TestSeedUserLogsNoCredentials(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	ucs := usecase.NewUserUseCases(memory.New(memory.WithHashCost(4)).Users())
	ctx := session.NewContext(context.Background(), session.NewHolder(nil))

	first, err := seedUser(ctx, ucs, logger)
	require.NoError(t, err)
	// A second run finds the account and signs in instead.
	again, err := seedUser(ctx, ucs, logger)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	require.Len(t, hook.AllEntries(), 2)
	for _, e := range hook.AllEntries() {
		assert.Equal(t, "seeded user", e.Message)
		assert.NotContains(t, e.Data, "password")
		for k, v := range e.Data {
			assert.NotEqual(t, demoPassword, v, "field %s", k)
		}
	}
}
