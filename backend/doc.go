// Package backend resolves request strings to storage backends and loads
// and saves entry trees through them.
//
// A backend is an entry.Object which can also Load and Save. Backends are
// registered by name on a Registry, optionally with regular expressions
// which claim further request strings:
//
//	reg := backend.NewRegistry()
//	reg.Register("h5", newH5, backend.WithPatterns(`\.hdf5$`))
//	root, err := reg.Load("data/run.hdf5")
//
// Resolution takes the scheme before the first colon, or the file
// extension when there is no colon. An empty scheme selects the mem
// backend.
package backend
