// Package page resolves what an incoming request is about: which kind of
// page it addresses (its Prefix), which project it is bound to, and the
// request-scoped attributes handlers attach while serving it, such as a
// search result.
//
// A Config is created once per request, before the handler chain runs, and
// is read again after the chain returns. Handlers find it with FromContext.
package page
