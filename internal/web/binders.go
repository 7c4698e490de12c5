package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/medstock/binder"
	"github.com/dmitrymomot/medstock/handler"
)

var (
	pathBinder = binder.Path(chi.URLParam)

	queryBinders       = []handler.Bind{binder.Query()}
	formBinders        = []handler.Bind{binder.Query(), binder.Form()}
	pathBinders        = []handler.Bind{pathBinder}
	bodyBinders        = []handler.Bind{binder.JSON(), binder.Form()}
	bodyAndPathBinders = []handler.Bind{binder.JSON(), binder.Form(), pathBinder}
)
