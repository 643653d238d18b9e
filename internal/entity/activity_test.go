package entity

import (
	"testing"

	"anoa.com/cfptracker/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActivityTarget(t *testing.T) {
	id := uuid.New()
	other := uuid.New()

	target, err := NewActivityTarget(&id, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, TargetProposal, target.Kind())
	assert.Equal(t, id, target.ID())
	assert.Equal(t, "proposal_id", target.Column())
	assert.Equal(t, "/proposals/"+id.String(), target.Link())

	target, err = NewActivityTarget(nil, nil, &id)
	require.NoError(t, err)
	assert.Equal(t, TargetTalk, target.Kind())

	_, err = NewActivityTarget(nil, nil, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = NewActivityTarget(&id, &other, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = NewActivityTarget(&id, &other, &other)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	nilID := uuid.Nil
	_, err = NewActivityTarget(nil, &nilID, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestActivitySetTargetRoundTrip(t *testing.T) {
	eventID := uuid.New()
	a := &Activity{}
	a.SetTarget(ProposalTarget(uuid.New()))
	a.SetTarget(EventTarget(eventID))

	assert.Nil(t, a.ProposalID)
	assert.Nil(t, a.TalkID)
	require.NotNil(t, a.EventID)
	assert.Equal(t, eventID, *a.EventID)
	assert.Equal(t, EventTarget(eventID), a.Target())

	assert.True(t, (&Activity{}).Target().IsZero())
}

func TestValidScore(t *testing.T) {
	for _, n := range []int{0, 1, 3, 9} {
		assert.True(t, ValidScore(n), n)
	}
	for _, n := range []int{-1, 2, 4, 10} {
		assert.False(t, ValidScore(n), n)
	}
}
