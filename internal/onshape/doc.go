// Package onshape speaks the CAD translation service's HTTP API.
//
// The Client covers the three boundaries the viewer needs: listing the
// selectable elements of a document workspace (with the part breakdown of
// part studios), initiating glTF translation jobs, and polling a job until it
// turns terminal. Translation status follows the service contract exactly:
// an in-progress job reports pending with no body; a terminal job yields
// either the raw model payload or a body carrying an explicit error field.
package onshape
