// Package harness runs query scenarios: YAML files that pin down the SQL a
// set of query definitions compiles to and the rows it returns.
//
// # Scenario Format
//
//	name: shop-adults
//	description: "Adults are listed by name"
//	catalog: shop            # CUE catalog directory
//	queries: queries.yaml    # query definitions
//	schema: schema.sql       # optional; seeds an in-memory SQLite database
//	cases:
//	  - query: adults
//	    params: {min_age: 30}
//	    expect:
//	      sql: "SELECT * FROM users AS user WHERE user.age > :filter0_min_age"
//	      params: {filter0_min_age: 30}
//	      rows:
//	        - {name: chen}
//	      count: 1
//	  - query: broken
//	    expect:
//	      error: "has no column"
//
// Paths are relative to the scenario file.
//
// # Expectations
//
//   - sql: the compiled statement, compared exactly
//   - params: compiled parameter values, subset match
//   - columns: the result columns, in order
//   - rows: the page of rows, in order; each row is a subset match
//   - row_count: the number of rows in the page
//   - count: the number of rows the query yields, ignoring its cursor
//   - error: a substring of the build or compile error
//
// rows, row_count and count need a schema.
//
// # Deterministic Runs
//
// Each scenario runs against a fresh in-memory database with sequential
// query ids, so the snapshot of a run can be compared with a golden file:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/shop.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
