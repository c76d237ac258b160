// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown in the header and page titles.
const DefaultSiteName = "Sistema de Gestão Alimentar"

// BaseVM carries what the layout templates read on every page. Page
// view models embed it.
type BaseVM struct {
	SiteName string

	IsLoggedIn bool
	UserID     string

	Title       string
	BackURL     string
	CurrentPath string

	// CSRFToken fills the hidden csrf_token field of POST forms.
	CSRFToken string

	// Flash is a one-shot notice carried over a redirect.
	Flash string
}

// NewBaseVM is New plus a title and a back link, falling back to
// backDefault when the request names none.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := New(r)
	vm.Title = title
	vm.BackURL = httpnav.ResolveBackURL(r, backDefault)
	return vm
}

// New fills the fields derivable from the request alone.
func New(r *http.Request) BaseVM {
	vm := BaseVM{
		SiteName:    DefaultSiteName,
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if user, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.UserID = user.ID
	}
	return vm
}
