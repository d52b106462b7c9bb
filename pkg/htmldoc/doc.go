// Package htmldoc implements widget.Document over a parsed HTML page.
//
// Controls are <select> elements addressed by their id attribute. Markers
// are elements carrying data-inline-create; a marker placed on the select
// itself may omit data-inline-create-select. Attach wraps the select in a wrapper
// element and inserts the add button rendered by the markup package.
package htmldoc
