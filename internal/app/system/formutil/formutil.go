// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, the form should be re-rendered with
// the user's previously entered values and an error message.
//
// Example usage:
//
//	type loginData struct {
//		formutil.Base
//		Email string
//	}
//
//	data := loginData{
//		Base:  formutil.NewBase(r, "Entrar", "/"),
//		Email: email,
//	}
//	data.SetError("Email ou senha inválidos.")
//	templates.Render(w, r, "login", data)
package formutil

import (
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/viewdata"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	viewdata.BaseVM
	Error string
}

// NewBase creates a fully populated Base for a form page.
func NewBase(r *http.Request, title, backDefault string) Base {
	return Base{
		BaseVM: viewdata.NewBaseVM(r, title, backDefault),
	}
}

// SetError sets the error message shown above the form.
func (b *Base) SetError(msg string) {
	b.Error = msg
}

// HasError reports whether an error message is set.
func (b Base) HasError() bool { return b.Error != "" }
