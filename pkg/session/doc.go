/*
Package session coordinates access to persisted sequences.

A Manager serializes operations on one session name inside the process with
reference-counted mutexes and, when a ports.DistributedLocker is configured,
across replicas as well. The router that assigns participants to sequences
decides the names; the Manager only guarantees that two requests for the same
name never interleave their read-modify-write cycles.
*/
package session
