/*
Package layout reads and writes Pyth v2 oracle accounts in place.

Every account is a fixed little-endian layout. A decoded record is a view:
getters and setters go straight to the caller's bytes, nothing is copied.

	+--------------------+  16B header: magic, version, account type, size
	| header             |
	+--------------------+
	| record body        |  price: 3296B, product: 496B, mapping: 20520B
	+--------------------+

A Buffer can be checked out by one view at a time. Decode marks it borrowed,
Release on the view returns it.

Records are trusted only after validation. Checks run in a fixed order and stop
at the first failure:

 1. magic == 0xA1B2C3D4
 2. account type matches the decoded shape
 3. version == 2

Mapping accounts form a linked list of pages. EnumerateProducts reads at most a
window of occupied slots from one page; callers follow Next across pages.
*/
package layout
