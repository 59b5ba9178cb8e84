package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path of the route group.
	RootPath = "/"

	// ErrNilACDFatalLogMsg is used if an app, cfg, db or store pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg, db or session store is nil"
)
