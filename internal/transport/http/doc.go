// Package http implements the HTTP handlers of the inventory dashboard.
// Handlers parse and validate requests, call the service layer and render
// the result; they hold no business logic.
//
// Successful responses use one envelope:
//
//	{"status": "success", "data": ..., "count": n}
//
// Failures are RFC 7807 problem documents produced by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/inventory/parse-empty",
//	    "title": "No Valid Rows",
//	    "status": 422,
//	    "detail": "The document contained no valid inventory rows; the current dataset was kept",
//	    "instance": "/api/inventory/upload"
//	}
//
// Handlers are tested with httptest against mock.Mock service doubles.
package http
