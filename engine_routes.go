package campusride

import (
	"context"
	"errors"

	"github.com/MrEthical07/campusride/catalogue"
)

// Routes lists the catalogue for a signed-in caller.
func (e *Engine) Routes(ctx context.Context, token string) ([]catalogue.Route, error) {
	if e == nil || e.catalogue == nil {
		return nil, ErrEngineNotReady
	}
	if _, err := e.loadSession(ctx, token); err != nil {
		return nil, err
	}
	return e.catalogue.List(), nil
}

// Directions builds walking and riding steps for one route in the
// session's language.
func (e *Engine) Directions(ctx context.Context, token string, routeID int) (catalogue.Directions, error) {
	if e == nil || e.catalogue == nil {
		return catalogue.Directions{}, ErrEngineNotReady
	}
	sess, err := e.loadSession(ctx, token)
	if err != nil {
		return catalogue.Directions{}, err
	}

	d, err := e.catalogue.Directions(routeID, sessionInfo(sess).Language)
	if errors.Is(err, catalogue.ErrRouteNotFound) {
		return catalogue.Directions{}, ErrRouteNotFound
	}
	return d, err
}
