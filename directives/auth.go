package directives

import (
	"context"

	"github.com/99designs/gqlgen/graphql"
	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Auth requires an authenticated session: the auth middleware must have
// stamped the context with a username, and the user must still exist and be
// active (the redis-backed lookup catches deletions mid-session).
func Auth(ctx context.Context, obj interface{}, next graphql.Resolver) (interface{}, error) {

	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return nil, &gqlerror.Error{
			Message: "Access Denied",
		}
	}

	user, err := models.GetUserByUsername(ctx, username)
	if err != nil {
		if err == utils.ErrorRecordNotFound {
			// destroy current session if user has been deleted
			models.Logout(ctx)
		}
		return nil, &gqlerror.Error{
			Message: err.Error(),
		}
	}
	if user.IsActive == nil || !*user.IsActive {
		return nil, &gqlerror.Error{
			Message: "User is disabled",
		}
	}

	ctx = utils.SetFirmIdInContext(ctx, user.FirmId)
	ctx = utils.SetUserIdInContext(ctx, user.ID)
	ctx = utils.SetUserNameInContext(ctx, user.Name)
	ctx = utils.SetUserRoleInContext(ctx, string(user.Role))
	ctx = utils.SetIsAdminInContext(ctx, user.Role == models.UserRoleAdmin)

	return next(ctx)
}

// HasRole gates a field on the acting user's role. Runs after Auth, so the
// role is already in the context.
func HasRole(ctx context.Context, obj interface{}, next graphql.Resolver, roles []models.UserRole) (interface{}, error) {

	roleStr, ok := utils.GetUserRoleFromContext(ctx)
	if !ok || roleStr == "" {
		return nil, &gqlerror.Error{
			Message: "Access Denied",
		}
	}
	role := models.UserRole(roleStr)

	for _, allowed := range roles {
		if role == allowed {
			return next(ctx)
		}
	}

	config.LogError(config.GetLogger(), "directives", "HasRole", "role check",
		map[string]interface{}{"role": role, "path": graphql.GetPath(ctx).String()},
		utils.NewPermissionError("role %s is not allowed here", role))
	return nil, &gqlerror.Error{
		Message: "Unauthorized",
	}
}
