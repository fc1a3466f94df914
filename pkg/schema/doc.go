// Package schema checks the shape of row data before it is committed.
//
// A Schema maps field names to types written as short strings:
//
//	word: string
//	trial: int
//	rt: float?        // optional
//	tags: [string]
//	payload: any
//
// Design files declare schemas next to their tables so a typo in a column name
// fails at build time instead of in the middle of a session.
package schema
