package mocksleeper

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/sleeper"
)

type Client struct {
	mock.Mock
}

var _ sleeper.Client = (*Client)(nil)

func (c *Client) DraftPicks(ctx context.Context, draftID model.DraftID) ([]model.Pick, error) {
	args := c.Called(ctx, draftID)

	var res []model.Pick
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Pick)
	}

	return res, args.Error(1)
}

func (c *Client) Draft(ctx context.Context, draftID model.DraftID) (*model.DraftInfo, error) {
	args := c.Called(ctx, draftID)

	var res *model.DraftInfo
	if args.Get(0) != nil {
		res = args.Get(0).(*model.DraftInfo)
	}

	return res, args.Error(1)
}

func (c *Client) Players(ctx context.Context) (map[string]sleeper.Player, error) {
	args := c.Called(ctx)

	var res map[string]sleeper.Player
	if args.Get(0) != nil {
		res = args.Get(0).(map[string]sleeper.Player)
	}

	return res, args.Error(1)
}
