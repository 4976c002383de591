package loader

import "errors"

var (
	ErrSessionReuse      = errors.New("cannot reuse a loader")
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrManifest          = errors.New("could not fetch manifest")
	ErrMaterialize       = errors.New("could not materialize file")
	ErrOpenDestination   = errors.New("could not open destination")
	ErrDownload          = errors.New("could not download file")
)
