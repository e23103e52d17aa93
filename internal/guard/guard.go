// Package guard holds the authorization checks shared by the service layer.
// Both return errors from the apperror package so handlers map them straight
// to 403.
package guard

import (
	"fmt"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/model"
)

// Owner allows the action only for the user who owns the resource. The
// not-found/forbidden split is deliberate: a caller probing someone else's
// resource learns it exists, which is fine for a public forum.
func Owner(resource string, ownerID, actingID int64) error {
	if ownerID != actingID {
		return apperror.Forbidden(fmt.Sprintf("you do not own this %s", resource))
	}
	return nil
}

// Admin allows the action only for admin users.
func Admin(user *model.User) error {
	if user == nil || !user.IsAdmin() {
		return apperror.Forbidden("admin access required")
	}
	return nil
}
