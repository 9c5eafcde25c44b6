/*
Package workgov implements per work governance.

Collaborators of a governance enabled work can propose changes to the work and
vote on them. Voting power is equal, one collaborator has one vote. The set of
eligible voters is snapshotted at proposal creation time, so collaborators
added later cannot vote on earlier proposals.

A proposal passes when the votes in favour reach the majority threshold of the
snapshotted voter count. Passing is checked with integer arithmetic only.
Anyone can execute a passed proposal before its voting period ends.
*/
package workgov
