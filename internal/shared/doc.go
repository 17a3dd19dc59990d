// Package shared holds helpers used by more than one package.
//
// The testutil subpackage generates input fixtures (the alcohol and fire CSV
// files and the population and area workbooks) and captures slog output for
// assertions:
//
//	func TestSomething(t *testing.T) {
//		logger, handler := testutil.NewTestLogger(t)
//		dir := testutil.WriteInputDir(t)
//		// ...
//		testutil.AssertNoErrors(t, handler)
//	}
package shared
