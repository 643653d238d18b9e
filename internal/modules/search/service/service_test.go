package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDecodeHitIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	raw := []byte(`{"hits":[{"id":"` + a.String() + `"},{"id":"not-a-uuid"},{"id":"` + b.String() + `"}],"estimatedTotalHits":3}`)

	ids, err := decodeHitIDs(raw)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = decodeHitIDs([]byte(`{`))
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	s := &meiliSearchService{sanitizer: bluemonday.StrictPolicy()}
	assert.Equal(t, "Intro Rock & roll line", s.cleanText("<p>Intro</p><b>Rock</b> &amp; roll<br>line"))
}

func TestNoopSearch(t *testing.T) {
	svc := NewSearchService(nil, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, svc.IndexEvent(ctx, nil))
	assert.NoError(t, svc.DeleteTalk(ctx, uuid.New()))

	_, err := svc.SearchEvents(ctx, "go", 10)
	assert.ErrorIs(t, err, ErrUnavailable)
}
