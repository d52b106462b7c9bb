// Package references provides the creation endpoint inline create widgets
// post to, as a small net/http component.
//
// The handler accepts POST requests carrying {"model","name","parent_id"},
// validates them against an embedded OpenAPI contract and an allow-list of
// models, stores the new entry and answers {"success","id","label","name"}.
// Failures answer {"success":false,"error"} with a 4xx or 5xx status.
package references
