package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/cfptracker/internal/entity"
	eventRepo "anoa.com/cfptracker/internal/modules/event/repository"
	proposalRepo "anoa.com/cfptracker/internal/modules/proposal/repository"
	"anoa.com/cfptracker/internal/modules/user/repository"
	"anoa.com/cfptracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverview(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewStatService(
		repository.NewUserRepository(db),
		eventRepo.NewEventRepository(db),
		proposalRepo.NewProposalRepository(db),
	)

	alice := testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")
	open := testutil.CreateEvent(t, db, "GopherCon", testutil.Date(2026, time.June, 1))
	closed := testutil.CreateEvent(t, db, "FOSDEM", testutil.Date(2026, time.January, 10))
	testutil.CreateEvent(t, db, "Meetup", nil)

	talk := testutil.CreateTalk(t, db, alice, "Generics in practice")
	testutil.CreateProposal(t, db, talk, open, entity.ProposalStatusSubmitted)
	testutil.CreateProposal(t, db, talk, closed, entity.ProposalStatusRejected)

	res, err := svc.Overview(context.Background(), time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalUsers)
	assert.Equal(t, int64(3), res.TotalEvents)
	assert.Equal(t, int64(1), res.OpenCFPs)
	assert.Equal(t, int64(1), res.ProposalsByStatus[entity.ProposalStatusSubmitted])
	assert.Equal(t, int64(1), res.ProposalsByStatus[entity.ProposalStatusRejected])
}
