package progrock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/adapters/telemetry/progrock"
	"go.trai.ch/permc/internal/core/domain"
)

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorder_Record(t *testing.T) {
	recorder := progrock.New()

	ctx := context.Background()
	got, vertex := recorder.Record(ctx, "permutation 0: default")
	assert.Equal(t, ctx, got)
	require.NotNil(t, vertex)

	_, err := vertex.Stdout().Write([]byte("compiled\n"))
	require.NoError(t, err)
	vertex.Log(domain.LogLevelDebug, "checked out 3 classes")
	vertex.Complete(nil)

	_, failed := recorder.Record(ctx, "permutation 1: locale=fr")
	failed.Complete(errors.New("boom"))

	require.NoError(t, recorder.Close())
}
