package marzban

import (
	"context"
	"errors"

	apperrors "github.com/MaxConsolas/marzban-shop/internal/errors"
	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// GrantOrExtend provisions access for the given panel username. A missing
// user is created with expire = now + duration. An existing user is
// reactivated; a lapsed or unset expiry restarts from now, while a
// still-valid expiry is pushed out by the full duration. Extending a
// valid subscription never reduces remaining time, and reactivating a
// lapsed one never stacks unused past duration.
func (c *Client) GrantOrExtend(ctx context.Context, username string, durationSeconds int64) (*models.PanelUser, error) {
	now := c.now().Unix()

	user, err := c.GetUser(ctx, username)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		return c.CreateUser(ctx, &models.PanelUser{
			Username:               username,
			Proxies:                c.proxies,
			Inbounds:               c.inbounds,
			Expire:                 now + durationSeconds,
			DataLimit:              0,
			DataLimitResetStrategy: "no_reset",
		})
	}

	user.Status = models.PanelStatusActive
	if user.Expire == 0 || user.Expire < now {
		user.Expire = now + durationSeconds
	} else {
		user.Expire += durationSeconds
	}

	return c.ModifyUser(ctx, username, user)
}
