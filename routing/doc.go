// Package routing selects the request handler for a free-text HR
// request. Scores come from each handler's own capability match,
// optionally averaged with an oracle's judgment, and selection is
// deterministic with ties broken by ascending handler name.
package routing
