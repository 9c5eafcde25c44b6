/*
Package royalty implements registration of collaborative works and exact
revenue sharing between their collaborators.

A work is registered together with an ordered list of collaborators and a
royalty share for each of them, expressed in basis points. Shares of a
single work always sum up to 10000 at creation time. Every work owns a
revenue account. Incoming payments are moved onto that account, the
platform fee is deducted and the remainder is tracked as pending
distribution. A distribute request pays out the whole pending amount to
all collaborators according to their shares in a single all-or-nothing
batch.

All amounts are integer units of the currency configured for the
platform. Percentage arithmetic is integer only, so repeated
distributions never drift. Floor rounding can leave up to n-1 units per
distribution on the revenue account, where n is the number of
collaborators. This residue is not redistributed.
*/
package royalty
