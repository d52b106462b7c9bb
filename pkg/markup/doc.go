// Package markup renders the HTML fragments of an augmented control: the
// wrapper class, the add button and the creation modal. Templates ship
// embedded and can be replaced; class names come from built-in defaults
// overridden by go-theme tokens.
package markup
