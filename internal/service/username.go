package service

import (
	"strconv"

	"github.com/foliocms/folio/backend/internal/models"
	"github.com/foliocms/folio/backend/pkg/sanitize"
)

const (
	usernameMaxLength  = 20
	usernameKeepLength = 15
)

// UsernameFormatter renders an account name for a listing cell.
type UsernameFormatter interface {
	Format(account *models.Account, viewer Viewer) models.UsernameView
}

// DefaultUsernameFormatter shortens long names and links to the profile
// when the viewer may see it.
type DefaultUsernameFormatter struct{}

func (DefaultUsernameFormatter) Format(account *models.Account, viewer Viewer) models.UsernameView {
	view := models.UsernameView{
		Name: sanitize.PlainText(sanitize.Truncate(account.Name, usernameMaxLength, usernameKeepLength, "...")),
	}
	if view.Name != sanitize.PlainText(account.Name) {
		view.Title = sanitize.PlainText(account.Name)
	}
	if viewer.HasPermission(PermissionAccessUserProfiles) || viewer.HasPermission(PermissionAdministerUsers) {
		view.Href = "/user/" + strconv.FormatInt(account.ID, 10)
	}
	return view
}
