// Package machine holds the factory machine record shared by the solvers:
// a light pattern, the button wirings, and the counter targets, all over the
// same L outputs.
//
// A Machine is built once (New or Parser) and read only afterwards. The
// Parser reads the line format
//
//	[.##.] (3) (1,3) (2) (2,3) (0,2) (0,1) {3,5,4,7}
//
// where the bracketed pattern marks lit outputs with '#', each parenthesised
// list is one button's wiring, and the braces hold the counter targets.
package machine
