package royalty

import (
	"testing"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
)

func TestWorkValidate(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	cases := map[string]struct {
		model   Work
		wantErr *errors.Error
	}{
		"valid work": {
			model: Work{
				Metadata:      &weave.Metadata{Schema: 1},
				Title:         "Silent Running",
				Creator:       alice,
				Collaborators: []weave.Address{alice, bob},
				Status:        Work_Active,
			},
		},
		"missing metadata": {
			model: Work{
				Title:         "Silent Running",
				Creator:       alice,
				Collaborators: []weave.Address{alice, bob},
				Status:        Work_Active,
			},
			wantErr: errors.ErrMetadata,
		},
		"missing title": {
			model: Work{
				Metadata:      &weave.Metadata{Schema: 1},
				Creator:       alice,
				Collaborators: []weave.Address{alice, bob},
				Status:        Work_Active,
			},
			wantErr: errors.ErrModel,
		},
		"no collaborators": {
			model: Work{
				Metadata: &weave.Metadata{Schema: 1},
				Title:    "Silent Running",
				Creator:  alice,
				Status:   Work_Active,
			},
			wantErr: errors.ErrModel,
		},
		"duplicated collaborator": {
			model: Work{
				Metadata:      &weave.Metadata{Schema: 1},
				Title:         "Silent Running",
				Creator:       alice,
				Collaborators: []weave.Address{bob, bob},
				Status:        Work_Active,
			},
			wantErr: errors.ErrModel,
		},
		"negative total revenue": {
			model: Work{
				Metadata:      &weave.Metadata{Schema: 1},
				Title:         "Silent Running",
				Creator:       alice,
				Collaborators: []weave.Address{alice, bob},
				TotalRevenue:  -1,
				Status:        Work_Active,
			},
			wantErr: errors.ErrModel,
		},
		"invalid status": {
			model: Work{
				Metadata:      &weave.Metadata{Schema: 1},
				Title:         "Silent Running",
				Creator:       alice,
				Collaborators: []weave.Address{alice, bob},
				Status:        Work_Invalid,
			},
			wantErr: errors.ErrState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.model.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.wantErr, err)
			}
		})
	}
}

func TestShareValidate(t *testing.T) {
	alice := weavetest.NewCondition().Address()

	cases := map[string]struct {
		model   Share
		wantErr *errors.Error
	}{
		"valid share": {
			model: Share{
				Metadata:      &weave.Metadata{Schema: 1},
				Collaborator:  alice,
				PercentageBps: 2500,
			},
		},
		"percentage of zero": {
			model: Share{
				Metadata:      &weave.Metadata{Schema: 1},
				Collaborator:  alice,
				PercentageBps: 0,
			},
			wantErr: errors.ErrModel,
		},
		"percentage above the whole": {
			model: Share{
				Metadata:      &weave.Metadata{Schema: 1},
				Collaborator:  alice,
				PercentageBps: 10001,
			},
			wantErr: errors.ErrModel,
		},
		"negative earned": {
			model: Share{
				Metadata:      &weave.Metadata{Schema: 1},
				Collaborator:  alice,
				PercentageBps: 2500,
				Earned:        -1,
			},
			wantErr: errors.ErrModel,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.model.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.wantErr, err)
			}
		})
	}
}

func TestWorkHasCollaborator(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()
	eve := weavetest.NewCondition().Address()

	w := Work{Collaborators: []weave.Address{alice, bob}}
	if !w.HasCollaborator(alice) {
		t.Error("alice must be a collaborator")
	}
	if !w.HasCollaborator(bob) {
		t.Error("bob must be a collaborator")
	}
	if w.HasCollaborator(eve) {
		t.Error("eve must not be a collaborator")
	}
}
