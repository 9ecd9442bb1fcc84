// Package shared holds helpers used across the inventory service's packages.
//
// The testutil subpackage captures slog output so tests can assert on log
// messages and attributes without parsing JSON:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    svc := services.NewInventoryService(nil, logger)
//	    ...
//	    testutil.AssertLogContains(t, handler, slog.LevelInfo, "Dataset replaced")
//	}
//
// Only test support and domain-free helpers belong here.
package shared
